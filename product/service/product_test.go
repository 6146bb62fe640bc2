package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	inErrors "github.com/modernshop/storefront/internal/errors"
	"github.com/modernshop/storefront/internal/store"
)

func TestFindProductsByCategoryAndSort(t *testing.T) {
	c := context.Background()
	svc, pool := setup(t, c)

	seedProduct(t, c, pool, "Cast Iron Pan", "kitchen", 60.00, true)
	seedProduct(t, c, pool, "Paring Knife", "kitchen", 15.00, true)
	seedProduct(t, c, pool, "Retired Kettle", "kitchen", 30.00, false)
	seedProduct(t, c, pool, "Floor Lamp", "decor", 80.00, true)

	products, err := svc.FindProducts(c, store.ProductFilter{
		Category: "kitchen",
		SortBy:   store.SortPriceLow,
	})
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "Paring Knife", products[0].Name)
	assert.Equal(t, "Cast Iron Pan", products[1].Name)
}

func TestFindProductsDefaultsToNewest(t *testing.T) {
	c := context.Background()
	svc, pool := setup(t, c)

	seedProduct(t, c, pool, "First", "decor", 10.00, true)
	seedProduct(t, c, pool, "Second", "decor", 20.00, true)

	products, err := svc.FindProducts(c, store.ProductFilter{})
	require.NoError(t, err)
	assert.Len(t, products, 2)
}

func TestFindProductByIdReturnsProduct(t *testing.T) {
	c := context.Background()
	svc, pool := setup(t, c)

	id := seedProduct(t, c, pool, "Oak Shelf", "furniture", 120.00, true)

	product, err := svc.FindProductById(c, id)
	require.NoError(t, err)
	assert.Equal(t, "Oak Shelf", product.Name)
	assert.Equal(t, "furniture", product.Category)

	// Second read goes through the same path regardless of cache state.
	again, err := svc.FindProductById(c, id)
	require.NoError(t, err)
	assert.Equal(t, product.ID, again.ID)
}

func TestFindProductByIdMissing(t *testing.T) {
	c := context.Background()
	svc, _ := setup(t, c)

	_, err := svc.FindProductById(c, uuid.New())
	assert.ErrorIs(t, err, inErrors.ErrProductMissing)
}
