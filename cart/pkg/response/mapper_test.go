package response

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modernshop/storefront/internal/store"
)

func TestNewCartTotalsLines(t *testing.T) {
	lines := []store.CartLine{
		{
			ID:        uuid.New(),
			ProductID: uuid.New(),
			Quantity:  2,
			Product:   &store.Product{Name: "Mug", Price: decimal.NewFromFloat(18.50)},
		},
		{
			ID:        uuid.New(),
			ProductID: uuid.New(),
			Quantity:  1,
			Product:   &store.Product{Name: "Coaster", Price: decimal.NewFromFloat(4.25)},
		},
	}

	cart := NewCart(lines)
	require.Len(t, cart.Lines, 2)
	assert.Equal(t, int32(3), cart.Count)
	assert.True(t, decimal.NewFromFloat(41.25).Equal(cart.Subtotal))
	assert.True(t, decimal.NewFromFloat(37.00).Equal(cart.Lines[0].LineTotal))
}

func TestNewCartToleratesMissingProduct(t *testing.T) {
	cart := NewCart([]store.CartLine{
		{ID: uuid.New(), ProductID: uuid.New(), Quantity: 4},
	})
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, int32(4), cart.Count)
	assert.True(t, cart.Subtotal.IsZero())
	assert.True(t, cart.Lines[0].LineTotal.IsZero())
}

func TestNewCartEmpty(t *testing.T) {
	cart := NewCart(nil)
	assert.Empty(t, cart.Lines)
	assert.Equal(t, int32(0), cart.Count)
	assert.True(t, cart.Subtotal.IsZero())
}
