// Package identity is the process-wide view of "who is signed in". It wraps
// the external identity provider (a JWT issuer) behind a Provider that the
// reconciler and the HTTP surfaces consume, and fans out sign-in/out events
// to subscribers.
package identity

import (
	"context"

	"github.com/google/uuid"
)

type userIdKey struct{}

func AttachUserToContext(c context.Context, id uuid.UUID) context.Context {
	return context.WithValue(c, userIdKey{}, id)
}

// UserFromContext returns the authenticated user for this request, or false
// for an anonymous caller.
func UserFromContext(c context.Context) (uuid.UUID, bool) {
	id, ok := c.Value(userIdKey{}).(uuid.UUID)
	return id, ok
}

type Provider interface {
	// CurrentUser resolves the caller's identity; ok is false for anonymous.
	CurrentUser(c context.Context) (userId uuid.UUID, ok bool)
	// OnAuthChange registers fn to run on every sign-in (signedIn=true) and
	// sign-out (signedIn=false). The returned func unsubscribes and is safe
	// to call while a notification is in flight.
	OnAuthChange(fn func(userId uuid.UUID, signedIn bool)) (unsubscribe func())
}
