// Package store is the boundary to the remote per-user collections. The
// backing service owns durability and ownership scoping; this package only
// issues scoped CRUD over the cart_lines and wishlist_entries collections
// plus read-only catalog lookups.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Product struct {
	ID            uuid.UUID       `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	Category      string          `json:"category"`
	StockQuantity int32           `json:"stock_quantity"`
	IsActive      bool            `json:"is_active"`
	Images        []ProductImage  `json:"images"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type ProductImage struct {
	ID           uuid.UUID `json:"id"`
	ProductID    uuid.UUID `json:"product_id"`
	ImageURL     string    `json:"image_url"`
	AltText      string    `json:"alt_text"`
	DisplayOrder int32     `json:"display_order"`
}

// CartLine is one product's quantity in one user's cart. UserID is nullable
// in the schema for guest carts, but every server-side operation scopes by an
// authenticated user. Product is denormalized for display and pricing.
type CartLine struct {
	ID        uuid.UUID     `json:"id"`
	UserID    uuid.NullUUID `json:"user_id"`
	ProductID uuid.UUID     `json:"product_id"`
	Quantity  int32         `json:"quantity"`
	Product   *Product      `json:"product,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// WishlistEntry is a boolean favorite marker; presence is the whole fact.
type WishlistEntry struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	ProductID uuid.UUID `json:"product_id"`
	Product   *Product  `json:"product,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

const (
	SortNewest    = "newest"
	SortPriceLow  = "price_low"
	SortPriceHigh = "price_high"
)

type ProductFilter struct {
	Category string
	SortBy   string
}

type UpsertCartLineParams struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	ProductID uuid.UUID
	Quantity  int32
}

type CartLines interface {
	FindByUser(c context.Context, userId uuid.UUID) ([]CartLine, error)
	// FindByUserAndProduct returns ErrLineNotFound when no line exists.
	FindByUserAndProduct(c context.Context, userId, productId uuid.UUID) (CartLine, error)
	// Upsert inserts a new line or, on a (user_id, product_id) conflict,
	// adds param.Quantity to the existing line. Dedup is a storage-level
	// fact, not an application-level race.
	Upsert(c context.Context, param UpsertCartLineParams) (CartLine, error)
	UpdateQuantity(c context.Context, lineId uuid.UUID, quantity int32) error
	// Delete is idempotent; deleting an absent line is not an error.
	Delete(c context.Context, lineId uuid.UUID) error
	// DeleteByUser clears the user's entire cart.
	DeleteByUser(c context.Context, userId uuid.UUID) error
}

type WishlistEntries interface {
	FindByUser(c context.Context, userId uuid.UUID) ([]WishlistEntry, error)
	// FindByID returns ErrEntryNotFound when no entry exists.
	FindByID(c context.Context, entryId uuid.UUID) (WishlistEntry, error)
	// Insert adds the (user, product) marker. created is false when the
	// entry already existed, including an out-of-band insert racing this
	// one; that is "already wishlisted", never an error.
	Insert(c context.Context, userId, productId uuid.UUID) (entry WishlistEntry, created bool, err error)
	// Delete is idempotent.
	Delete(c context.Context, entryId uuid.UUID) error
	DeleteByUserAndProduct(c context.Context, userId, productId uuid.UUID) error
}

type Products interface {
	Find(c context.Context, filter ProductFilter) ([]Product, error)
	// FindByID returns ErrProductMissing when no active product exists.
	FindByID(c context.Context, productId uuid.UUID) (Product, error)
}
