package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	inErrors "github.com/modernshop/storefront/internal/errors"
)

// Postgres is the shared handle to the managed Postgres instance behind the
// hosted data service. Collection accessors return the typed CRUD surfaces.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (p *Postgres) CartLines() *PostgresCartLines {
	return &PostgresCartLines{db: p}
}

func (p *Postgres) Wishlist() *PostgresWishlist {
	return &PostgresWishlist{db: p}
}

func (p *Postgres) Products() *PostgresProducts {
	return &PostgresProducts{db: p}
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(n.Int, n.Exp)
}

const productColumns = `p.id, p.name, COALESCE(p.description, ''), p.price, p.category, p.stock_quantity, p.is_active, p.created_at, p.updated_at`

func scanProduct(row pgx.Row) (Product, error) {
	var (
		product Product
		price   pgtype.Numeric
	)
	err := row.Scan(
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
		return Product{}, err
	}
	product.Price = numericToDecimal(price)
	return product, nil
}

// findProductByID reads one product. Cart lines keep their product attached
// after it is deactivated, so only the catalog asks for active rows.
func (p *Postgres) findProductByID(c context.Context, productId uuid.UUID, activeOnly bool) (Product, error) {
	query := `SELECT ` + productColumns + ` FROM products p WHERE p.id = $1`
	if activeOnly {
		query += ` AND p.is_active = TRUE`
	}
	row := p.pool.QueryRow(c, query, productId)
	product, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, inErrors.ErrProductMissing
	}
	if err != nil {
		return Product{}, fmt.Errorf("failed finding product with error=%w", err)
	}
	if err := p.loadImages(c, map[uuid.UUID]*Product{product.ID: &product}); err != nil {
		return Product{}, fmt.Errorf("failed loading product_images with error=%w", err)
	}
	return product, nil
}

// loadImages stitches ordered image lists onto the given products.
func (p *Postgres) loadImages(c context.Context, products map[uuid.UUID]*Product) error {
	if len(products) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(products))
	for id := range products {
		ids = append(ids, id)
	}

	rows, err := p.pool.Query(
		c,
		`SELECT id, product_id, image_url, COALESCE(alt_text, ''), display_order
		   FROM product_images
		  WHERE product_id = ANY($1)
		  ORDER BY display_order ASC`,
		ids,
	)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var image ProductImage
		err = rows.Scan(
			&image.ID,
			&image.ProductID,
			&image.ImageURL,
			&image.AltText,
			&image.DisplayOrder,
		)
		if err != nil {
			return err
		}
		if product, ok := products[image.ProductID]; ok {
			product.Images = append(product.Images, image)
		}
	}
	return rows.Err()
}
