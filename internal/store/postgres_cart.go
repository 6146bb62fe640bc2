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

type PostgresCartLines struct {
	db *Postgres
}

const cartLineColumns = `cl.id, cl.user_id, cl.product_id, cl.quantity, cl.created_at, cl.updated_at, ` + productColumns

func scanCartLine(row pgx.Row) (CartLine, error) {
	var (
		line    CartLine
		product Product
		price   pgtype.Numeric
	)
	err := row.Scan(
		&line.ID,
		&line.UserID,
		&line.ProductID,
		&line.Quantity,
		&line.CreatedAt,
		&line.UpdatedAt,
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
		return CartLine{}, err
	}
	product.Price = numericToDecimal(price)
	line.Product = &product
	return line, nil
}

func (s *PostgresCartLines) FindByUser(c context.Context, userId uuid.UUID) ([]CartLine, error) {
	rows, err := s.db.pool.Query(
		c,
		`SELECT `+cartLineColumns+`
		   FROM cart_lines cl
		   JOIN products p ON p.id = cl.product_id
		  WHERE cl.user_id = $1
		  ORDER BY cl.created_at ASC`,
		userId,
	)
	if err != nil {
		return nil, fmt.Errorf("failed finding cart_lines by user with error=%w", err)
	}
	defer rows.Close()

	lines := []CartLine{}
	for rows.Next() {
		line, err := scanCartLine(rows)
		if err != nil {
			return nil, fmt.Errorf("failed scanning cart_line with error=%w", err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading cart_lines with error=%w", err)
	}

	if err := s.attachImages(c, lines); err != nil {
		return nil, err
	}
	return lines, nil
}

func (s *PostgresCartLines) FindByUserAndProduct(
	c context.Context,
	userId, productId uuid.UUID,
) (CartLine, error) {
	row := s.db.pool.QueryRow(
		c,
		`SELECT `+cartLineColumns+`
		   FROM cart_lines cl
		   JOIN products p ON p.id = cl.product_id
		  WHERE cl.user_id = $1 AND cl.product_id = $2`,
		userId,
		productId,
	)
	line, err := scanCartLine(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return CartLine{}, inErrors.ErrLineNotFound
	}
	if err != nil {
		return CartLine{}, fmt.Errorf("failed finding cart_line with error=%w", err)
	}

	if err := s.attachImages(c, []CartLine{line}); err != nil {
		return CartLine{}, err
	}
	return line, nil
}

func (s *PostgresCartLines) Upsert(
	c context.Context,
	param UpsertCartLineParams,
) (CartLine, error) {
	var line CartLine
	err := s.db.pool.QueryRow(
		c,
		`INSERT INTO cart_lines (id, user_id, product_id, quantity)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (user_id, product_id)
		 DO UPDATE SET quantity = cart_lines.quantity + EXCLUDED.quantity, updated_at = now()
		 RETURNING id, user_id, product_id, quantity, created_at, updated_at`,
		param.ID,
		param.UserID,
		param.ProductID,
		param.Quantity,
	).Scan(
		&line.ID,
		&line.UserID,
		&line.ProductID,
		&line.Quantity,
		&line.CreatedAt,
		&line.UpdatedAt,
	)
	if err != nil {
		return CartLine{}, fmt.Errorf("failed upserting cart_line with error=%w", err)
	}

	product, err := s.db.findProductByID(c, param.ProductID, false)
	if err != nil {
		return CartLine{}, err
	}
	line.Product = &product
	return line, nil
}

// UpdateQuantity writes the new quantity. Zero rows affected means the line
// was removed while the edit was in flight; the stale write is dropped.
func (s *PostgresCartLines) UpdateQuantity(
	c context.Context,
	lineId uuid.UUID,
	quantity int32,
) error {
	_, err := s.db.pool.Exec(
		c,
		`UPDATE cart_lines SET quantity = $2, updated_at = now() WHERE id = $1`,
		lineId,
		quantity,
	)
	if err != nil {
		return fmt.Errorf("failed updating cart_line quantity with error=%w", err)
	}
	return nil
}

func (s *PostgresCartLines) Delete(c context.Context, lineId uuid.UUID) error {
	_, err := s.db.pool.Exec(c, `DELETE FROM cart_lines WHERE id = $1`, lineId)
	if err != nil {
		return fmt.Errorf("failed deleting cart_line with error=%w", err)
	}
	return nil
}

func (s *PostgresCartLines) DeleteByUser(c context.Context, userId uuid.UUID) error {
	_, err := s.db.pool.Exec(c, `DELETE FROM cart_lines WHERE user_id = $1`, userId)
	if err != nil {
		return fmt.Errorf("failed deleting cart_lines by user with error=%w", err)
	}
	return nil
}

func (s *PostgresCartLines) attachImages(c context.Context, lines []CartLine) error {
	products := map[uuid.UUID]*Product{}
	for i := range lines {
		if lines[i].Product != nil {
			products[lines[i].ProductID] = lines[i].Product
		}
	}
	if err := s.db.loadImages(c, products); err != nil {
		return fmt.Errorf("failed loading product_images with error=%w", err)
	}
	return nil
}
