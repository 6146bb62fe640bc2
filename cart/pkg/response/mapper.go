package response

import (
	"github.com/shopspring/decimal"

	"github.com/modernshop/storefront/internal/store"
)

// NewCart renders store lines into the cart payload. Lines whose product was
// deactivated after being carted still render, just without product detail.
func NewCart(lines []store.CartLine) Cart {
	cart := Cart{Lines: make([]CartLine, len(lines)), Subtotal: decimal.Zero}
	for i, line := range lines {
		lineTotal := decimal.Zero
		if line.Product != nil {
			lineTotal = line.Product.Price.Mul(decimal.NewFromInt32(line.Quantity))
		}
		cart.Lines[i] = CartLine{
			ID:        line.ID,
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			Product:   line.Product,
			LineTotal: lineTotal,
			CreatedAt: line.CreatedAt,
			UpdatedAt: line.UpdatedAt,
		}
		cart.Count += line.Quantity
		cart.Subtotal = cart.Subtotal.Add(lineTotal)
	}
	return cart
}
