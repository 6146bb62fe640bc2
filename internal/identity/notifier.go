package identity

import (
	"sync"

	"github.com/google/uuid"
)

// notifier fans auth changes out to subscribers. Callbacks run synchronously
// in subscription order; a subscriber unsubscribing mid-notification is
// skipped on the next round, not this one.
type notifier struct {
	mu   sync.Mutex
	next int
	subs map[int]func(userId uuid.UUID, signedIn bool)
}

func newNotifier() *notifier {
	return &notifier{subs: map[int]func(uuid.UUID, bool){}}
}

func (n *notifier) subscribe(fn func(userId uuid.UUID, signedIn bool)) func() {
	n.mu.Lock()
	defer n.mu.Unlock()
	id := n.next
	n.next++
	n.subs[id] = fn
	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.subs, id)
	}
}

func (n *notifier) notify(userId uuid.UUID, signedIn bool) {
	n.mu.Lock()
	fns := make([]func(uuid.UUID, bool), 0, len(n.subs))
	for _, fn := range n.subs {
		fns = append(fns, fn)
	}
	n.mu.Unlock()

	for _, fn := range fns {
		fn(userId, signedIn)
	}
}
