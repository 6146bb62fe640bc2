package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	inErrors "github.com/modernshop/storefront/internal/errors"
)

type PostgresWishlist struct {
	db *Postgres
}

const wishlistColumns = `we.id, we.user_id, we.product_id, we.created_at, ` + productColumns

func scanWishlistEntry(row pgx.Row) (WishlistEntry, error) {
	var (
		entry   WishlistEntry
		product Product
		price   pgtype.Numeric
	)
	err := row.Scan(
		&entry.ID,
		&entry.UserID,
		&entry.ProductID,
		&entry.CreatedAt,
		&product.ID,
		&product.Name,
		&product.Description,
		&price,
		&product.Category,
		&product.StockQuantity,
		&product.IsActive,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		return WishlistEntry{}, err
	}
	product.Price = numericToDecimal(price)
	entry.Product = &product
	return entry, nil
}

func (s *PostgresWishlist) FindByUser(
	c context.Context,
	userId uuid.UUID,
) ([]WishlistEntry, error) {
	rows, err := s.db.pool.Query(
		c,
		`SELECT `+wishlistColumns+`
		   FROM wishlist_entries we
		   JOIN products p ON p.id = we.product_id
		  WHERE we.user_id = $1
		  ORDER BY we.created_at DESC`,
		userId,
	)
	if err != nil {
		return nil, fmt.Errorf("failed finding wishlist_entries by user with error=%w", err)
	}
	defer rows.Close()

	entries := []WishlistEntry{}
	for rows.Next() {
		entry, err := scanWishlistEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed scanning wishlist_entry with error=%w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading wishlist_entries with error=%w", err)
	}

	if err := s.attachImages(c, entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *PostgresWishlist) FindByID(c context.Context, entryId uuid.UUID) (WishlistEntry, error) {
	row := s.db.pool.QueryRow(
		c,
		`SELECT `+wishlistColumns+`
		   FROM wishlist_entries we
		   JOIN products p ON p.id = we.product_id
		  WHERE we.id = $1`,
		entryId,
	)
	entry, err := scanWishlistEntry(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return WishlistEntry{}, inErrors.ErrEntryNotFound
	}
	if err != nil {
		return WishlistEntry{}, fmt.Errorf("failed finding wishlist_entry with error=%w", err)
	}

	if err := s.attachImages(c, []WishlistEntry{entry}); err != nil {
		return WishlistEntry{}, err
	}
	return entry, nil
}

// Insert adds the membership marker. A (user_id, product_id) conflict means
// another session already wishlisted the product; the existing entry is read
// back and created is false.
func (s *PostgresWishlist) Insert(
	c context.Context,
	userId, productId uuid.UUID,
) (WishlistEntry, bool, error) {
	var entry WishlistEntry
	err := s.db.pool.QueryRow(
		c,
		`INSERT INTO wishlist_entries (id, user_id, product_id)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_id, product_id) DO NOTHING
		 RETURNING id, user_id, product_id, created_at`,
		uuid.New(),
		userId,
		productId,
	).Scan(&entry.ID, &entry.UserID, &entry.ProductID, &entry.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		existing, err := s.findByUserAndProduct(c, userId, productId)
		if err != nil {
			return WishlistEntry{}, false, err
		}
		return existing, false, nil
	}
	if err != nil {
		return WishlistEntry{}, false, fmt.Errorf(
			"failed inserting wishlist_entry with error=%w",
			err,
		)
	}
	return entry, true, nil
}

func (s *PostgresWishlist) Delete(c context.Context, entryId uuid.UUID) error {
	_, err := s.db.pool.Exec(c, `DELETE FROM wishlist_entries WHERE id = $1`, entryId)
	if err != nil {
		return fmt.Errorf("failed deleting wishlist_entry with error=%w", err)
	}
	return nil
}

func (s *PostgresWishlist) DeleteByUserAndProduct(
	c context.Context,
	userId, productId uuid.UUID,
) error {
	_, err := s.db.pool.Exec(
		c,
		`DELETE FROM wishlist_entries WHERE user_id = $1 AND product_id = $2`,
		userId,
		productId,
	)
	if err != nil {
		return fmt.Errorf("failed deleting wishlist_entry by product with error=%w", err)
	}
	return nil
}

func (s *PostgresWishlist) findByUserAndProduct(
	c context.Context,
	userId, productId uuid.UUID,
) (WishlistEntry, error) {
	var entry WishlistEntry
	err := s.db.pool.QueryRow(
		c,
		`SELECT id, user_id, product_id, created_at
		   FROM wishlist_entries
		  WHERE user_id = $1 AND product_id = $2`,
		userId,
		productId,
	).Scan(&entry.ID, &entry.UserID, &entry.ProductID, &entry.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return WishlistEntry{}, inErrors.ErrEntryNotFound
	}
	if err != nil {
		return WishlistEntry{}, fmt.Errorf("failed finding wishlist_entry with error=%w", err)
	}
	return entry, nil
}

func (s *PostgresWishlist) attachImages(c context.Context, entries []WishlistEntry) error {
	products := map[uuid.UUID]*Product{}
	for i := range entries {
		if entries[i].Product != nil {
			products[entries[i].ProductID] = entries[i].Product
		}
	}
	if err := s.db.loadImages(c, products); err != nil {
		return fmt.Errorf("failed loading product_images with error=%w", err)
	}
	return nil
}
