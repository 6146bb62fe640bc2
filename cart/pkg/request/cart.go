package request

import "github.com/google/uuid"

type AddCartItem struct {
	ProductId uuid.UUID `validate:"required,uuid" json:"product_id"`
}

type UpdateQuantity struct {
	Quantity int32 `validate:"required" json:"quantity"`
}
