package response

import (
	"time"

	"github.com/google/uuid"

	"github.com/modernshop/storefront/internal/store"
)

type Wishlist struct {
	Entries []WishlistEntry `json:"entries"`
}

type WishlistEntry struct {
	ID        uuid.UUID      `json:"id"`
	ProductID uuid.UUID      `json:"product_id"`
	Product   *store.Product `json:"product,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

func NewWishlist(entries []store.WishlistEntry) Wishlist {
	wishlist := Wishlist{Entries: make([]WishlistEntry, len(entries))}
	for i, entry := range entries {
		wishlist.Entries[i] = WishlistEntry{
			ID:        entry.ID,
			ProductID: entry.ProductID,
			Product:   entry.Product,
			CreatedAt: entry.CreatedAt,
		}
	}
	return wishlist
}
