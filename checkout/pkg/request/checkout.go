package request

import "github.com/shopspring/decimal"

// CreateSession is the body submitted to the payment session provider.
type CreateSession struct {
	Items      []LineItem `json:"items"`
	SuccessUrl string     `json:"successUrl"`
	CancelUrl  string     `json:"cancelUrl"`
}

type LineItem struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int32           `json:"quantity"`
	Images      []string        `json:"images"`
}
