package response

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/modernshop/storefront/internal/store"
)

type Cart struct {
	Lines    []CartLine      `json:"lines"`
	Count    int32           `json:"count"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

type CartLine struct {
	ID        uuid.UUID       `json:"id"`
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  int32           `json:"quantity"`
	Product   *store.Product  `json:"product,omitempty"`
	LineTotal decimal.Decimal `json:"line_total"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
