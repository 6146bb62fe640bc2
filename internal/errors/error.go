package errors

import (
	"errors"
)

var (
	ErrEmptyAuth      = errors.New("missing authorization")
	ErrEmptySubject   = errors.New("missing subject")
	ErrTokenInvalid   = errors.New("invalid token")
	ErrNotSignedIn    = errors.New("not signed in")
	ErrLineNotFound   = errors.New("cart line not found")
	ErrEntryNotFound  = errors.New("wishlist entry not found")
	ErrEmptyCart      = errors.New("cart is empty")
	ErrNoRedirectURL  = errors.New("payment session returned no redirect url")
	ErrStaleView      = errors.New("view discarded before confirmation")
	ErrProductMissing = errors.New("product not found")
)
