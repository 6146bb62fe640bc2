package middleware

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	inErrors "github.com/modernshop/storefront/internal/errors"
	"github.com/modernshop/storefront/internal/httpx"
	"github.com/modernshop/storefront/internal/identity"
	"github.com/modernshop/storefront/internal/log"
)

// Auth requires a valid bearer token and attaches the verified user id to the
// request context.
func Auth(provider *identity.TokenProvider) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := zerolog.Ctx(r.Context()).
				With().
				Str(log.KeyTag, "middleware Auth").
				Logger()
			c := logger.WithContext(r.Context())

			authorization := r.Header.Get("Authorization")
			if authorization == "" {
				logger.Error().Err(inErrors.ErrEmptyAuth).Msg(inErrors.ErrEmptyAuth.Error())
				httpx.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
					"status":     "failed",
					"statusCode": http.StatusUnauthorized,
					"message":    inErrors.ErrEmptyAuth.Error(),
				})
				return
			}

			token := strings.TrimPrefix(authorization, "Bearer ")
			userId, err := provider.Verify(c, token)
			if err != nil {
				logger.Error().Err(err).Msg(err.Error())
				httpx.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
					"status":     "failed",
					"statusCode": http.StatusUnauthorized,
					"message":    inErrors.ErrTokenInvalid.Error(),
				})
				return
			}

			c = identity.AttachUserToContext(c, userId)
			next.ServeHTTP(w, r.WithContext(c))
		})
	}
}

// OptionalAuth attaches the user id when a valid bearer token is present and
// lets anonymous requests through untouched. Guest cart reads depend on this:
// no token means an empty cart, not a 401.
func OptionalAuth(provider *identity.TokenProvider) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := zerolog.Ctx(r.Context()).
				With().
				Str(log.KeyTag, "middleware OptionalAuth").
				Logger()
			c := logger.WithContext(r.Context())

			authorization := r.Header.Get("Authorization")
			if authorization == "" {
				next.ServeHTTP(w, r.WithContext(c))
				return
			}

			token := strings.TrimPrefix(authorization, "Bearer ")
			userId, err := provider.Verify(c, token)
			if err != nil {
				logger.Warn().Err(err).Msg("ignoring invalid bearer token")
				next.ServeHTTP(w, r.WithContext(c))
				return
			}

			c = identity.AttachUserToContext(c, userId)
			next.ServeHTTP(w, r.WithContext(c))
		})
	}
}
