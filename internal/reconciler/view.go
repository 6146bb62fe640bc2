package reconciler

import (
	"sort"

	"github.com/google/uuid"

	"github.com/modernshop/storefront/internal/store"
)

// view is one user's in-memory rendering of the remote cart and wishlist
// collections. A view is built lazily on first use, replaced wholesale on a
// successful load, and dropped when the user signs out; operations that held
// a pointer to a dropped view discard their remote confirmations.
type view struct {
	userId   uuid.UUID
	lines    map[uuid.UUID]store.CartLine
	entries  map[uuid.UUID]store.WishlistEntry
	byProd   map[uuid.UUID]uuid.UUID
	loaded   bool
	wlLoaded bool
}

func newView(userId uuid.UUID) *view {
	return &view{
		userId:  userId,
		lines:   map[uuid.UUID]store.CartLine{},
		entries: map[uuid.UUID]store.WishlistEntry{},
		byProd:  map[uuid.UUID]uuid.UUID{},
	}
}

func (v *view) replaceLines(lines []store.CartLine) {
	v.lines = make(map[uuid.UUID]store.CartLine, len(lines))
	for _, line := range lines {
		v.lines[line.ID] = line
	}
	v.loaded = true
}

func (v *view) replaceEntries(entries []store.WishlistEntry) {
	v.entries = make(map[uuid.UUID]store.WishlistEntry, len(entries))
	v.byProd = make(map[uuid.UUID]uuid.UUID, len(entries))
	for _, entry := range entries {
		v.entries[entry.ID] = entry
		v.byProd[entry.ProductID] = entry.ID
	}
	v.wlLoaded = true
}

func (v *view) lineByProduct(productId uuid.UUID) (store.CartLine, bool) {
	for _, line := range v.lines {
		if line.ProductID == productId {
			return line, true
		}
	}
	return store.CartLine{}, false
}

func (v *view) putEntry(entry store.WishlistEntry) {
	v.entries[entry.ID] = entry
	v.byProd[entry.ProductID] = entry.ID
}

func (v *view) dropEntry(entry store.WishlistEntry) {
	delete(v.entries, entry.ID)
	delete(v.byProd, entry.ProductID)
}

func (v *view) sortedLines() []store.CartLine {
	lines := make([]store.CartLine, 0, len(v.lines))
	for _, line := range v.lines {
		lines = append(lines, line)
	}
	sort.Slice(lines, func(i, j int) bool {
		if lines[i].CreatedAt.Equal(lines[j].CreatedAt) {
			return lines[i].ID.String() < lines[j].ID.String()
		}
		return lines[i].CreatedAt.Before(lines[j].CreatedAt)
	})
	return lines
}

func (v *view) sortedEntries() []store.WishlistEntry {
	entries := make([]store.WishlistEntry, 0, len(v.entries))
	for _, entry := range v.entries {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].ID.String() < entries[j].ID.String()
		}
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
	return entries
}

func (v *view) cartCount() int32 {
	var total int32
	for _, line := range v.lines {
		total += line.Quantity
	}
	return total
}
