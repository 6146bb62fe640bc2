// Package reconciler keeps the rendered cart/wishlist state consistent with
// the remote per-user collections. Every mutation is two-phase: the local
// view is updated optimistically, the remote write is attempted, and the
// local change is committed or reverted on the remote outcome. Failures are
// reported to the caller, never swallowed into a false success.
package reconciler

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	inErrors "github.com/modernshop/storefront/internal/errors"
	"github.com/modernshop/storefront/internal/identity"
	"github.com/modernshop/storefront/internal/log"
	inOtel "github.com/modernshop/storefront/internal/otel"
	"github.com/modernshop/storefront/internal/store"
)

type Reconciler struct {
	provider identity.Provider
	cart     store.CartLines
	wishlist store.WishlistEntries

	mu          sync.Mutex
	views       map[uuid.UUID]*view
	unsubscribe func()
}

func New(
	provider identity.Provider,
	cart store.CartLines,
	wishlist store.WishlistEntries,
) *Reconciler {
	r := &Reconciler{
		provider: provider,
		cart:     cart,
		wishlist: wishlist,
		views:    map[uuid.UUID]*view{},
	}
	r.unsubscribe = provider.OnAuthChange(func(userId uuid.UUID, signedIn bool) {
		if signedIn {
			return
		}
		r.mu.Lock()
		delete(r.views, userId)
		r.mu.Unlock()
	})
	return r
}

// Close unsubscribes from auth changes and drops all views.
func (r *Reconciler) Close() {
	if r.unsubscribe != nil {
		r.unsubscribe()
	}
	r.mu.Lock()
	r.views = map[uuid.UUID]*view{}
	r.mu.Unlock()
}

// currentView returns the caller's view, creating it lazily. ok is false for
// anonymous callers.
func (r *Reconciler) currentView(c context.Context) (*view, bool) {
	userId, ok := r.provider.CurrentUser(c)
	if !ok {
		return nil, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.views[userId]
	if !ok {
		v = newView(userId)
		r.views[userId] = v
	}
	return v, true
}

// live reports whether v is still the caller's mounted view. A remote
// confirmation that arrives after the view was dropped is discarded.
func (r *Reconciler) live(v *view) bool {
	return r.views[v.userId] == v
}

// Load fetches the caller's cart from the remote collection. An anonymous
// caller gets an empty list and no error (guest cart). A remote failure is
// returned and the previous in-memory state is left untouched, so a
// transient read error never wipes the rendered cart.
func (r *Reconciler) Load(c context.Context) ([]store.CartLine, error) {
	c, span := inOtel.Tracer.Start(c, "Reconciler Load")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "Reconciler Load").
		Logger()

	v, ok := r.currentView(c)
	if !ok {
		logger.Debug().Msg("anonymous load, returning empty cart")
		return []store.CartLine{}, nil
	}

	logger = logger.With().
		Str(log.KeyUserID, v.userId.String()).
		Str(log.KeyProcess, "finding cart_lines").
		Logger()
	logger.Info().Msg("finding cart_lines")
	lines, err := r.cart.FindByUser(c, v.userId)
	if err != nil {
		err = fmt.Errorf("failed loading cart with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Info().Msgf("found %d cart_lines", len(lines))

	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.live(v) {
		logger.Debug().Msg("view discarded before confirmation, dropping result")
		return []store.CartLine{}, nil
	}
	v.replaceLines(lines)
	return v.sortedLines(), nil
}

// LoadWishlist mirrors Load for the favorite set.
func (r *Reconciler) LoadWishlist(c context.Context) ([]store.WishlistEntry, error) {
	c, span := inOtel.Tracer.Start(c, "Reconciler LoadWishlist")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "Reconciler LoadWishlist").
		Logger()

	v, ok := r.currentView(c)
	if !ok {
		logger.Debug().Msg("anonymous load, returning empty wishlist")
		return []store.WishlistEntry{}, nil
	}

	logger = logger.With().
		Str(log.KeyUserID, v.userId.String()).
		Str(log.KeyProcess, "finding wishlist_entries").
		Logger()
	logger.Info().Msg("finding wishlist_entries")
	entries, err := r.wishlist.FindByUser(c, v.userId)
	if err != nil {
		err = fmt.Errorf("failed loading wishlist with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Info().Msgf("found %d wishlist_entries", len(entries))

	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.live(v) {
		logger.Debug().Msg("view discarded before confirmation, dropping result")
		return []store.WishlistEntry{}, nil
	}
	v.replaceEntries(entries)
	return v.sortedEntries(), nil
}

// AddOrIncrement puts one more unit of the product into the caller's cart.
// The (user, product) pair maps to at most one line: an existing line gets
// its quantity bumped, both locally and by the remote upsert.
func (r *Reconciler) AddOrIncrement(
	c context.Context,
	productId uuid.UUID,
) (store.CartLine, error) {
	c, span := inOtel.Tracer.Start(c, "Reconciler AddOrIncrement")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "Reconciler AddOrIncrement").
		Str(log.KeyProductID, productId.String()).
		Logger()

	v, ok := r.currentView(c)
	if !ok {
		logger.Warn().Msg("add to cart requires a signed in user")
		return store.CartLine{}, inErrors.ErrNotSignedIn
	}
	logger = logger.With().Str(log.KeyUserID, v.userId.String()).Logger()

	logger = logger.With().Str(log.KeyProcess, "applying optimistic update").Logger()
	logger.Info().Msg("applying optimistic update")
	r.mu.Lock()
	prev, existed := v.lineByProduct(productId)
	var lineId uuid.UUID
	if existed {
		lineId = prev.ID
		next := prev
		next.Quantity++
		v.lines[lineId] = next
	} else {
		lineId = uuid.New()
		v.lines[lineId] = store.CartLine{
			ID:        lineId,
			UserID:    uuid.NullUUID{UUID: v.userId, Valid: true},
			ProductID: productId,
			Quantity:  1,
		}
	}
	r.mu.Unlock()
	logger.Info().Msg("applied optimistic update")

	logger = logger.With().Str(log.KeyProcess, "upserting cart_line").Logger()
	logger.Info().Msg("upserting cart_line")
	line, err := r.cart.Upsert(c, store.UpsertCartLineParams{
		ID:        lineId,
		UserID:    v.userId,
		ProductID: productId,
		Quantity:  1,
	})

	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.live(v) {
		logger.Debug().Msg("view discarded before confirmation, dropping result")
		if err != nil {
			return store.CartLine{}, fmt.Errorf("failed adding to cart with error=%w", err)
		}
		return line, nil
	}
	if err != nil {
		if existed {
			v.lines[lineId] = prev
		} else {
			delete(v.lines, lineId)
		}
		err = fmt.Errorf("failed adding to cart with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return store.CartLine{}, err
	}

	// The remote line is authoritative: it carries the denormalized product
	// and the converged quantity when another tab raced this add.
	if line.ID != lineId {
		delete(v.lines, lineId)
	}
	v.lines[line.ID] = line
	logger.Info().Int32(log.KeyQuantity, line.Quantity).Msg("upserted cart_line")
	return line, nil
}

// SetQuantity writes an absolute quantity for one line. Values below 1 are
// silently ignored; the storefront never deletes a line through decrements,
// removal is its own affordance.
func (r *Reconciler) SetQuantity(c context.Context, lineId uuid.UUID, quantity int32) error {
	c, span := inOtel.Tracer.Start(c, "Reconciler SetQuantity")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "Reconciler SetQuantity").
		Str(log.KeyLineID, lineId.String()).
		Int32(log.KeyQuantity, quantity).
		Logger()

	if quantity < 1 {
		logger.Debug().Msg("ignoring quantity below 1")
		return nil
	}

	v, ok := r.currentView(c)
	if !ok {
		logger.Warn().Msg("quantity edit requires a signed in user")
		return inErrors.ErrNotSignedIn
	}
	logger = logger.With().Str(log.KeyUserID, v.userId.String()).Logger()

	logger = logger.With().Str(log.KeyProcess, "applying optimistic update").Logger()
	r.mu.Lock()
	prev, present := v.lines[lineId]
	if present {
		next := prev
		next.Quantity = quantity
		v.lines[lineId] = next
	}
	r.mu.Unlock()
	if !present {
		// The line vanished under a concurrent remove; nothing to edit.
		logger.Debug().Msg("line not in view, dropping stale edit")
		return nil
	}
	logger.Info().Msg("applied optimistic update")

	logger = logger.With().Str(log.KeyProcess, "updating cart_line quantity").Logger()
	logger.Info().Msg("updating cart_line quantity")
	err := r.cart.UpdateQuantity(c, lineId, quantity)

	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.live(v) {
		logger.Debug().Msg("view discarded before confirmation, dropping result")
		if err != nil {
			return fmt.Errorf("failed updating quantity with error=%w", err)
		}
		return nil
	}
	if err != nil {
		if current, ok := v.lines[lineId]; ok && current.Quantity == quantity {
			v.lines[lineId] = prev
		}
		err = fmt.Errorf("failed updating quantity with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("updated cart_line quantity")
	return nil
}

// Remove deletes one line. Removing a line that is already gone is not an
// error, locally or remotely.
func (r *Reconciler) Remove(c context.Context, lineId uuid.UUID) error {
	c, span := inOtel.Tracer.Start(c, "Reconciler Remove")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "Reconciler Remove").
		Str(log.KeyLineID, lineId.String()).
		Logger()

	v, ok := r.currentView(c)
	if !ok {
		logger.Warn().Msg("remove requires a signed in user")
		return inErrors.ErrNotSignedIn
	}
	logger = logger.With().Str(log.KeyUserID, v.userId.String()).Logger()

	logger = logger.With().Str(log.KeyProcess, "applying optimistic update").Logger()
	r.mu.Lock()
	prev, present := v.lines[lineId]
	delete(v.lines, lineId)
	r.mu.Unlock()
	logger.Info().Msg("applied optimistic update")

	logger = logger.With().Str(log.KeyProcess, "deleting cart_line").Logger()
	logger.Info().Msg("deleting cart_line")
	err := r.cart.Delete(c, lineId)

	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.live(v) {
		logger.Debug().Msg("view discarded before confirmation, dropping result")
		if err != nil {
			return fmt.Errorf("failed removing cart_line with error=%w", err)
		}
		return nil
	}
	if err != nil {
		if present {
			v.lines[lineId] = prev
		}
		err = fmt.Errorf("failed removing cart_line with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("deleted cart_line")
	return nil
}

// ToggleWishlist flips the favorite marker for the product and returns the
// new membership state. An insert that loses a race to another session is
// reported as "already wishlisted", not an error.
func (r *Reconciler) ToggleWishlist(c context.Context, productId uuid.UUID) (bool, error) {
	c, span := inOtel.Tracer.Start(c, "Reconciler ToggleWishlist")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "Reconciler ToggleWishlist").
		Str(log.KeyProductID, productId.String()).
		Logger()

	v, ok := r.currentView(c)
	if !ok {
		logger.Warn().Msg("wishlist toggle requires a signed in user")
		return false, inErrors.ErrNotSignedIn
	}
	logger = logger.With().Str(log.KeyUserID, v.userId.String()).Logger()

	r.mu.Lock()
	entryId, wishlisted := v.byProd[productId]
	if wishlisted {
		prev := v.entries[entryId]
		v.dropEntry(prev)
		r.mu.Unlock()

		logger = logger.With().Str(log.KeyProcess, "deleting wishlist_entry").Logger()
		logger.Info().Msg("deleting wishlist_entry")
		err := r.wishlist.DeleteByUserAndProduct(c, v.userId, productId)

		r.mu.Lock()
		defer r.mu.Unlock()
		if !r.live(v) {
			logger.Debug().Msg("view discarded before confirmation, dropping result")
			if err != nil {
				return false, fmt.Errorf("failed toggling wishlist with error=%w", err)
			}
			return false, nil
		}
		if err != nil {
			v.putEntry(prev)
			err = fmt.Errorf("failed toggling wishlist with error=%w", err)
			inOtel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return true, err
		}
		logger.Info().Bool(log.KeyWishlisted, false).Msg("deleted wishlist_entry")
		return false, nil
	}

	provisional := store.WishlistEntry{
		ID:        uuid.New(),
		UserID:    v.userId,
		ProductID: productId,
	}
	v.putEntry(provisional)
	r.mu.Unlock()

	logger = logger.With().Str(log.KeyProcess, "inserting wishlist_entry").Logger()
	logger.Info().Msg("inserting wishlist_entry")
	entry, created, err := r.wishlist.Insert(c, v.userId, productId)

	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.live(v) {
		logger.Debug().Msg("view discarded before confirmation, dropping result")
		if err != nil {
			return false, fmt.Errorf("failed toggling wishlist with error=%w", err)
		}
		return true, nil
	}
	if err != nil {
		v.dropEntry(provisional)
		err = fmt.Errorf("failed toggling wishlist with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return false, err
	}
	v.dropEntry(provisional)
	v.putEntry(entry)
	if !created {
		logger.Info().Msg("wishlist_entry already existed, treating as wishlisted")
	}
	logger.Info().Bool(log.KeyWishlisted, true).Msg("inserted wishlist_entry")
	return true, nil
}

// MoveToCart converts a wishlist entry into a cart line: add-or-increment
// first, wishlist delete second. When the cart write fails the entry is left
// in place, so a favorite is never lost without its cart effect.
func (r *Reconciler) MoveToCart(c context.Context, entryId uuid.UUID) error {
	c, span := inOtel.Tracer.Start(c, "Reconciler MoveToCart")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "Reconciler MoveToCart").
		Str(log.KeyEntryID, entryId.String()).
		Logger()

	v, ok := r.currentView(c)
	if !ok {
		logger.Warn().Msg("move to cart requires a signed in user")
		return inErrors.ErrNotSignedIn
	}
	logger = logger.With().Str(log.KeyUserID, v.userId.String()).Logger()

	r.mu.Lock()
	entry, present := v.entries[entryId]
	r.mu.Unlock()
	if !present {
		logger = logger.With().Str(log.KeyProcess, "finding wishlist_entry").Logger()
		logger.Info().Msg("entry not in view, finding wishlist_entry")
		var err error
		entry, err = r.wishlist.FindByID(c, entryId)
		if err != nil {
			err = fmt.Errorf("failed finding wishlist_entry with error=%w", err)
			inOtel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return err
		}
		logger.Info().Msg("found wishlist_entry")
	}

	logger = logger.With().
		Str(log.KeyProductID, entry.ProductID.String()).
		Str(log.KeyProcess, "adding to cart").
		Logger()
	logger.Info().Msg("adding to cart")
	if _, err := r.AddOrIncrement(c, entry.ProductID); err != nil {
		// The wishlist delete must not run: the entry survives a failed
		// cart write.
		err = fmt.Errorf("failed moving to cart with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("added to cart")

	logger = logger.With().Str(log.KeyProcess, "deleting wishlist_entry").Logger()
	r.mu.Lock()
	_, inView := v.entries[entryId]
	if inView {
		v.dropEntry(entry)
	}
	r.mu.Unlock()

	logger.Info().Msg("deleting wishlist_entry")
	err := r.wishlist.Delete(c, entryId)

	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.live(v) {
		logger.Debug().Msg("view discarded before confirmation, dropping result")
		if err != nil {
			return fmt.Errorf("failed deleting wishlist_entry with error=%w", err)
		}
		return nil
	}
	if err != nil {
		if inView {
			v.putEntry(entry)
		}
		err = fmt.Errorf("failed deleting wishlist_entry with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("deleted wishlist_entry")
	return nil
}

// Clear empties the caller's entire cart. The post-payment return uses this
// as a deliberate coarse invalidation: nothing tracks which subset of lines
// the completed session actually contained.
func (r *Reconciler) Clear(c context.Context) error {
	c, span := inOtel.Tracer.Start(c, "Reconciler Clear")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "Reconciler Clear").
		Logger()

	v, ok := r.currentView(c)
	if !ok {
		logger.Warn().Msg("clear requires a signed in user")
		return inErrors.ErrNotSignedIn
	}
	logger = logger.With().Str(log.KeyUserID, v.userId.String()).Logger()

	r.mu.Lock()
	prev := v.lines
	v.lines = map[uuid.UUID]store.CartLine{}
	r.mu.Unlock()

	logger = logger.With().Str(log.KeyProcess, "deleting cart_lines").Logger()
	logger.Info().Msg("deleting cart_lines")
	err := r.cart.DeleteByUser(c, v.userId)

	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.live(v) {
		logger.Debug().Msg("view discarded before confirmation, dropping result")
		if err != nil {
			return fmt.Errorf("failed clearing cart with error=%w", err)
		}
		return nil
	}
	if err != nil {
		v.lines = prev
		err = fmt.Errorf("failed clearing cart with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("deleted cart_lines")
	return nil
}

// Lines returns the current in-memory cart snapshot without a remote read.
func (r *Reconciler) Lines(c context.Context) []store.CartLine {
	v, ok := r.currentView(c)
	if !ok {
		return []store.CartLine{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return v.sortedLines()
}

// CartCount is the total quantity across the view, the navbar badge number.
func (r *Reconciler) CartCount(c context.Context) int32 {
	v, ok := r.currentView(c)
	if !ok {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return v.cartCount()
}
