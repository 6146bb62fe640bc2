package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

func setupPostgres(t *testing.T, c context.Context) (*Postgres, *pgxpool.Pool) {
	t.Helper()

	pgContainer, err := postgres.Run(
		c,
		"postgres:16.6-alpine3.21",
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		postgres.WithDatabase("postgres"),
		postgres.BasicWaitStrategies(),
		postgres.WithInitScripts(
			filepath.Join("..", "..", "migrations", "000001_create_table_products.up.sql"),
			filepath.Join("..", "..", "migrations", "000002_create_table_product_images.up.sql"),
			filepath.Join("..", "..", "migrations", "000003_create_table_cart_lines.up.sql"),
			filepath.Join("..", "..", "migrations", "000004_create_table_wishlist_entries.up.sql"),
		),
	)
	if err != nil {
		t.Fatalf("failed running postgres container with error: %s", err)
	}
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(pgContainer); err != nil {
			t.Fatalf("failed to terminate container: %s", err)
		}
	})

	connStr, err := pgContainer.ConnectionString(c)
	if err != nil {
		t.Fatalf("failed getting postgres connection string with error: %s", err)
	}

	pool, err := pgxpool.New(c, connStr)
	if err != nil {
		t.Fatalf("failed creating postgres pool with error: %s", err)
	}
	t.Cleanup(pool.Close)

	if err := pool.Ping(c); err != nil {
		t.Fatalf("failed ping postgres pool with error: %s", err)
	}

	return NewPostgres(pool), pool
}

func seedProduct(
	t *testing.T,
	c context.Context,
	pool *pgxpool.Pool,
	name, category string,
	price float64,
	active bool,
) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := pool.Exec(
		c,
		`INSERT INTO products (id, name, description, price, category, stock_quantity, is_active)
		 VALUES ($1, $2, $3, $4, $5, 100, $6)`,
		id, name, name+" description", price, category, active,
	)
	if err != nil {
		t.Fatalf("failed seeding product with error: %s", err)
	}
	return id
}

func seedProductImage(
	t *testing.T,
	c context.Context,
	pool *pgxpool.Pool,
	productId uuid.UUID,
	imageUrl string,
	displayOrder int32,
) {
	t.Helper()

	_, err := pool.Exec(
		c,
		`INSERT INTO product_images (product_id, image_url, alt_text, display_order)
		 VALUES ($1, $2, $3, $4)`,
		productId, imageUrl, "", displayOrder,
	)
	if err != nil {
		t.Fatalf("failed seeding product image with error: %s", err)
	}
}
