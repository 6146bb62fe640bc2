package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type PostgresProducts struct {
	db *Postgres
}

// Find lists active products, optionally narrowed to one category. SortBy
// follows the storefront's listing controls; anything unrecognized falls back
// to newest-first.
func (s *PostgresProducts) Find(c context.Context, filter ProductFilter) ([]Product, error) {
	query := `SELECT ` + productColumns + ` FROM products p WHERE p.is_active = TRUE`
	args := []interface{}{}
	if filter.Category != "" {
		query += ` AND p.category = $1`
		args = append(args, filter.Category)
	}
	switch filter.SortBy {
	case SortPriceLow:
		query += ` ORDER BY p.price ASC`
	case SortPriceHigh:
		query += ` ORDER BY p.price DESC`
	default:
		query += ` ORDER BY p.created_at DESC`
	}

	rows, err := s.db.pool.Query(c, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed finding products with error=%w", err)
	}
	defer rows.Close()

	products := []Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed scanning product with error=%w", err)
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading products with error=%w", err)
	}

	byId := map[uuid.UUID]*Product{}
	for i := range products {
		byId[products[i].ID] = &products[i]
	}
	if err := s.db.loadImages(c, byId); err != nil {
		return nil, fmt.Errorf("failed loading product_images with error=%w", err)
	}
	return products, nil
}

func (s *PostgresProducts) FindByID(c context.Context, productId uuid.UUID) (Product, error) {
	return s.db.findProductByID(c, productId, true)
}
