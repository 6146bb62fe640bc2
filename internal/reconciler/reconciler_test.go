package reconciler

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	inErrors "github.com/modernshop/storefront/internal/errors"
)

var errRemoteDown = errors.New("remote store unavailable")

func newTestReconciler() (*Reconciler, *fakeProvider, *fakeCartStore, *fakeWishlistStore) {
	provider := newFakeProvider(uuid.New())
	cart := newFakeCartStore()
	wishlist := newFakeWishlistStore()
	return New(provider, cart, wishlist), provider, cart, wishlist
}

func TestLoadAnonymousReturnsEmptyCart(t *testing.T) {
	rec, provider, _, _ := newTestReconciler()
	defer rec.Close()
	provider.signOut()

	lines, err := rec.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestLoadFailurePreservesPreviousState(t *testing.T) {
	rec, _, cart, _ := newTestReconciler()
	defer rec.Close()
	c := context.Background()

	line, err := rec.AddOrIncrement(c, uuid.New())
	require.NoError(t, err)

	cart.failFind = errRemoteDown
	_, err = rec.Load(c)
	require.Error(t, err)

	lines := rec.Lines(c)
	require.Len(t, lines, 1)
	assert.Equal(t, line.ID, lines[0].ID)
}

func TestAddOrIncrementRequiresSignIn(t *testing.T) {
	rec, provider, _, _ := newTestReconciler()
	defer rec.Close()
	provider.signOut()

	_, err := rec.AddOrIncrement(context.Background(), uuid.New())
	assert.ErrorIs(t, err, inErrors.ErrNotSignedIn)
}

func TestAddOrIncrementTwiceYieldsOneLine(t *testing.T) {
	rec, _, cart, _ := newTestReconciler()
	defer rec.Close()
	c := context.Background()
	productId := uuid.New()

	first, err := rec.AddOrIncrement(c, productId)
	require.NoError(t, err)
	assert.Equal(t, int32(1), first.Quantity)

	second, err := rec.AddOrIncrement(c, productId)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, int32(2), second.Quantity)

	assert.Len(t, cart.lines, 1)
	lines := rec.Lines(c)
	require.Len(t, lines, 1)
	assert.Equal(t, int32(2), lines[0].Quantity)
	assert.Equal(t, int32(2), rec.CartCount(c))
}

func TestAddOrIncrementFailureRevertsOptimisticLine(t *testing.T) {
	rec, _, cart, _ := newTestReconciler()
	defer rec.Close()
	c := context.Background()

	cart.failUpsert = errRemoteDown
	_, err := rec.AddOrIncrement(c, uuid.New())
	require.Error(t, err)
	assert.Empty(t, rec.Lines(c))
}

func TestAddOrIncrementFailureRevertsOptimisticIncrement(t *testing.T) {
	rec, _, cart, _ := newTestReconciler()
	defer rec.Close()
	c := context.Background()
	productId := uuid.New()

	_, err := rec.AddOrIncrement(c, productId)
	require.NoError(t, err)

	cart.failUpsert = errRemoteDown
	_, err = rec.AddOrIncrement(c, productId)
	require.Error(t, err)

	lines := rec.Lines(c)
	require.Len(t, lines, 1)
	assert.Equal(t, int32(1), lines[0].Quantity)
}

func TestSetQuantityBelowOneIsNoOp(t *testing.T) {
	rec, _, cart, _ := newTestReconciler()
	defer rec.Close()
	c := context.Background()

	line, err := rec.AddOrIncrement(c, uuid.New())
	require.NoError(t, err)

	require.NoError(t, rec.SetQuantity(c, line.ID, 0))
	require.NoError(t, rec.SetQuantity(c, line.ID, -1))

	lines := rec.Lines(c)
	require.Len(t, lines, 1)
	assert.Equal(t, int32(1), lines[0].Quantity)
	assert.Equal(t, int32(1), cart.lines[line.ID].Quantity)
}

func TestSetQuantityUpdatesLocalAndRemote(t *testing.T) {
	rec, _, cart, _ := newTestReconciler()
	defer rec.Close()
	c := context.Background()

	line, err := rec.AddOrIncrement(c, uuid.New())
	require.NoError(t, err)

	require.NoError(t, rec.SetQuantity(c, line.ID, 5))
	lines := rec.Lines(c)
	require.Len(t, lines, 1)
	assert.Equal(t, int32(5), lines[0].Quantity)
	assert.Equal(t, int32(5), cart.lines[line.ID].Quantity)
}

func TestSetQuantityFailureRevertsOptimisticEdit(t *testing.T) {
	rec, _, cart, _ := newTestReconciler()
	defer rec.Close()
	c := context.Background()

	line, err := rec.AddOrIncrement(c, uuid.New())
	require.NoError(t, err)

	cart.failUpdate = errRemoteDown
	require.Error(t, rec.SetQuantity(c, line.ID, 9))

	lines := rec.Lines(c)
	require.Len(t, lines, 1)
	assert.Equal(t, int32(1), lines[0].Quantity)
}

func TestRemoveIsIdempotent(t *testing.T) {
	rec, _, _, _ := newTestReconciler()
	defer rec.Close()
	c := context.Background()

	line, err := rec.AddOrIncrement(c, uuid.New())
	require.NoError(t, err)

	require.NoError(t, rec.Remove(c, line.ID))
	require.NoError(t, rec.Remove(c, line.ID))
	assert.Empty(t, rec.Lines(c))
}

func TestRemoveFailureRestoresLine(t *testing.T) {
	rec, _, cart, _ := newTestReconciler()
	defer rec.Close()
	c := context.Background()

	line, err := rec.AddOrIncrement(c, uuid.New())
	require.NoError(t, err)

	cart.failDelete = errRemoteDown
	require.Error(t, rec.Remove(c, line.ID))

	lines := rec.Lines(c)
	require.Len(t, lines, 1)
	assert.Equal(t, line.ID, lines[0].ID)
}

func TestToggleWishlistOnThenOff(t *testing.T) {
	rec, _, _, wishlist := newTestReconciler()
	defer rec.Close()
	c := context.Background()
	productId := uuid.New()

	wishlisted, err := rec.ToggleWishlist(c, productId)
	require.NoError(t, err)
	assert.True(t, wishlisted)
	assert.Len(t, wishlist.entries, 1)

	wishlisted, err = rec.ToggleWishlist(c, productId)
	require.NoError(t, err)
	assert.False(t, wishlisted)
	assert.Empty(t, wishlist.entries)
}

func TestToggleWishlistToleratesOutOfBandInsert(t *testing.T) {
	rec, provider, _, wishlist := newTestReconciler()
	defer rec.Close()
	c := context.Background()
	productId := uuid.New()

	// Another session of the same user inserted the marker already.
	_, created, err := wishlist.Insert(c, provider.userId, productId)
	require.NoError(t, err)
	require.True(t, created)

	wishlisted, err := rec.ToggleWishlist(c, productId)
	require.NoError(t, err)
	assert.True(t, wishlisted)
	assert.Len(t, wishlist.entries, 1)
}

func TestToggleWishlistInsertFailureReverts(t *testing.T) {
	rec, _, _, wishlist := newTestReconciler()
	defer rec.Close()
	c := context.Background()

	wishlist.failInsert = errRemoteDown
	wishlisted, err := rec.ToggleWishlist(c, uuid.New())
	require.Error(t, err)
	assert.False(t, wishlisted)

	entries, loadErr := rec.LoadWishlist(c)
	require.NoError(t, loadErr)
	assert.Empty(t, entries)
}

func TestMoveToCartFailureKeepsEntry(t *testing.T) {
	rec, _, cart, wishlist := newTestReconciler()
	defer rec.Close()
	c := context.Background()
	productId := uuid.New()

	_, err := rec.ToggleWishlist(c, productId)
	require.NoError(t, err)
	var entryId uuid.UUID
	for id := range wishlist.entries {
		entryId = id
	}

	cart.failUpsert = errRemoteDown
	require.Error(t, rec.MoveToCart(c, entryId))

	assert.Len(t, wishlist.entries, 1)
	assert.Empty(t, cart.lines)
}

func TestMoveToCartAddsLineAndDeletesEntry(t *testing.T) {
	rec, _, cart, wishlist := newTestReconciler()
	defer rec.Close()
	c := context.Background()
	productId := uuid.New()

	_, err := rec.ToggleWishlist(c, productId)
	require.NoError(t, err)
	var entryId uuid.UUID
	for id := range wishlist.entries {
		entryId = id
	}

	require.NoError(t, rec.MoveToCart(c, entryId))

	assert.Empty(t, wishlist.entries)
	assert.Len(t, cart.lines, 1)
	lines := rec.Lines(c)
	require.Len(t, lines, 1)
	assert.Equal(t, productId, lines[0].ProductID)
}

func TestClearEmptiesCart(t *testing.T) {
	rec, _, cart, _ := newTestReconciler()
	defer rec.Close()
	c := context.Background()

	_, err := rec.AddOrIncrement(c, uuid.New())
	require.NoError(t, err)
	_, err = rec.AddOrIncrement(c, uuid.New())
	require.NoError(t, err)

	require.NoError(t, rec.Clear(c))
	assert.Empty(t, rec.Lines(c))
	assert.Empty(t, cart.lines)
	assert.Equal(t, int32(0), rec.CartCount(c))
}

func TestSignOutDropsView(t *testing.T) {
	rec, provider, cart, _ := newTestReconciler()
	defer rec.Close()
	c := context.Background()

	line, err := rec.AddOrIncrement(c, uuid.New())
	require.NoError(t, err)
	require.Equal(t, int32(1), rec.CartCount(c))

	provider.signOut()
	assert.Equal(t, int32(0), rec.CartCount(c))
	assert.Empty(t, rec.Lines(c))

	// The remote row survives sign-out; only the rendering is dropped.
	assert.Contains(t, cart.lines, line.ID)
}

func TestSignOutMidFlightDropsConfirmation(t *testing.T) {
	rec, provider, cart, _ := newTestReconciler()
	defer rec.Close()
	c := context.Background()

	// The session ends while the write is still in flight; the late
	// confirmation must be dropped without error, not replayed into a view
	// that no longer exists.
	cart.beforeUpsertReturn = provider.signOut

	line, err := rec.AddOrIncrement(c, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, int32(1), line.Quantity)

	assert.Empty(t, rec.Lines(c))
	assert.Equal(t, int32(0), rec.CartCount(c))

	// The remote row landed before the sign-out and survives it.
	assert.Contains(t, cart.lines, line.ID)
}
