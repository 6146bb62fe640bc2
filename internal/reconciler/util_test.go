package reconciler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	inErrors "github.com/modernshop/storefront/internal/errors"
	"github.com/modernshop/storefront/internal/store"
)

// fakeProvider is a switchable identity for tests; notify mirrors the real
// provider's auth-change fanout.
type fakeProvider struct {
	mu       sync.Mutex
	userId   uuid.UUID
	signedIn bool
	subs     []func(uuid.UUID, bool)
}

func newFakeProvider(userId uuid.UUID) *fakeProvider {
	return &fakeProvider{userId: userId, signedIn: true}
}

func (p *fakeProvider) CurrentUser(_ context.Context) (uuid.UUID, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.signedIn {
		return uuid.Nil, false
	}
	return p.userId, true
}

func (p *fakeProvider) OnAuthChange(fn func(uuid.UUID, bool)) func() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subs = append(p.subs, fn)
	return func() {}
}

func (p *fakeProvider) signOut() {
	p.mu.Lock()
	userId := p.userId
	p.signedIn = false
	subs := append([]func(uuid.UUID, bool){}, p.subs...)
	p.mu.Unlock()
	for _, fn := range subs {
		fn(userId, false)
	}
}

type fakeCartStore struct {
	mu         sync.Mutex
	lines      map[uuid.UUID]store.CartLine
	failUpsert error
	failUpdate error
	failDelete error
	failFind   error

	// beforeUpsertReturn runs after the write lands but before Upsert
	// returns, letting tests race an auth change against the confirmation.
	beforeUpsertReturn func()
}

func newFakeCartStore() *fakeCartStore {
	return &fakeCartStore{lines: map[uuid.UUID]store.CartLine{}}
}

func (s *fakeCartStore) FindByUser(_ context.Context, userId uuid.UUID) ([]store.CartLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failFind != nil {
		return nil, s.failFind
	}
	lines := []store.CartLine{}
	for _, line := range s.lines {
		if line.UserID.UUID == userId {
			lines = append(lines, line)
		}
	}
	return lines, nil
}

func (s *fakeCartStore) FindByUserAndProduct(
	_ context.Context,
	userId, productId uuid.UUID,
) (store.CartLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, line := range s.lines {
		if line.UserID.UUID == userId && line.ProductID == productId {
			return line, nil
		}
	}
	return store.CartLine{}, inErrors.ErrLineNotFound
}

func (s *fakeCartStore) Upsert(
	_ context.Context,
	param store.UpsertCartLineParams,
) (store.CartLine, error) {
	s.mu.Lock()
	if s.failUpsert != nil {
		s.mu.Unlock()
		return store.CartLine{}, s.failUpsert
	}
	var result store.CartLine
	found := false
	for id, line := range s.lines {
		if line.UserID.UUID == param.UserID && line.ProductID == param.ProductID {
			line.Quantity += param.Quantity
			line.UpdatedAt = time.Now()
			s.lines[id] = line
			result, found = line, true
			break
		}
	}
	if !found {
		result = store.CartLine{
			ID:        param.ID,
			UserID:    uuid.NullUUID{UUID: param.UserID, Valid: true},
			ProductID: param.ProductID,
			Quantity:  param.Quantity,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}
		s.lines[param.ID] = result
	}
	s.mu.Unlock()
	if s.beforeUpsertReturn != nil {
		s.beforeUpsertReturn()
	}
	return result, nil
}

func (s *fakeCartStore) UpdateQuantity(
	_ context.Context,
	lineId uuid.UUID,
	quantity int32,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failUpdate != nil {
		return s.failUpdate
	}
	line, ok := s.lines[lineId]
	if !ok {
		return nil
	}
	line.Quantity = quantity
	s.lines[lineId] = line
	return nil
}

func (s *fakeCartStore) Delete(_ context.Context, lineId uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failDelete != nil {
		return s.failDelete
	}
	delete(s.lines, lineId)
	return nil
}

func (s *fakeCartStore) DeleteByUser(_ context.Context, userId uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failDelete != nil {
		return s.failDelete
	}
	for id, line := range s.lines {
		if line.UserID.UUID == userId {
			delete(s.lines, id)
		}
	}
	return nil
}

type fakeWishlistStore struct {
	mu         sync.Mutex
	entries    map[uuid.UUID]store.WishlistEntry
	failInsert error
	failDelete error
	failFind   error
}

func newFakeWishlistStore() *fakeWishlistStore {
	return &fakeWishlistStore{entries: map[uuid.UUID]store.WishlistEntry{}}
}

func (s *fakeWishlistStore) FindByUser(
	_ context.Context,
	userId uuid.UUID,
) ([]store.WishlistEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failFind != nil {
		return nil, s.failFind
	}
	entries := []store.WishlistEntry{}
	for _, entry := range s.entries {
		if entry.UserID == userId {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

func (s *fakeWishlistStore) FindByID(
	_ context.Context,
	entryId uuid.UUID,
) (store.WishlistEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[entryId]
	if !ok {
		return store.WishlistEntry{}, inErrors.ErrEntryNotFound
	}
	return entry, nil
}

func (s *fakeWishlistStore) Insert(
	_ context.Context,
	userId, productId uuid.UUID,
) (store.WishlistEntry, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failInsert != nil {
		return store.WishlistEntry{}, false, s.failInsert
	}
	for _, entry := range s.entries {
		if entry.UserID == userId && entry.ProductID == productId {
			return entry, false, nil
		}
	}
	entry := store.WishlistEntry{
		ID:        uuid.New(),
		UserID:    userId,
		ProductID: productId,
		CreatedAt: time.Now(),
	}
	s.entries[entry.ID] = entry
	return entry, true, nil
}

func (s *fakeWishlistStore) Delete(_ context.Context, entryId uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failDelete != nil {
		return s.failDelete
	}
	delete(s.entries, entryId)
	return nil
}

func (s *fakeWishlistStore) DeleteByUserAndProduct(
	_ context.Context,
	userId, productId uuid.UUID,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failDelete != nil {
		return s.failDelete
	}
	for id, entry := range s.entries {
		if entry.UserID == userId && entry.ProductID == productId {
			delete(s.entries, id)
		}
	}
	return nil
}
