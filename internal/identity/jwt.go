package identity

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/modernshop/storefront/internal/config"
	"github.com/modernshop/storefront/internal/constants"
	inErrors "github.com/modernshop/storefront/internal/errors"
	"github.com/modernshop/storefront/internal/log"
)

// TokenProvider verifies bearer tokens minted by the external identity
// service and exposes the resulting identity as the process-wide Provider.
type TokenProvider struct {
	secretKey string
	notifier  *notifier
}

func NewTokenProvider(cfg config.Application) *TokenProvider {
	return &TokenProvider{secretKey: cfg.SecretKey, notifier: newNotifier()}
}

func (p *TokenProvider) CurrentUser(c context.Context) (uuid.UUID, bool) {
	return UserFromContext(c)
}

func (p *TokenProvider) OnAuthChange(fn func(userId uuid.UUID, signedIn bool)) func() {
	return p.notifier.subscribe(fn)
}

// Verify parses and validates token, returning the subject user id. A valid
// token counts as a sign-in event for subscribers.
func (p *TokenProvider) Verify(c context.Context, token string) (uuid.UUID, error) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "TokenProvider Verify").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "parsing claims").Logger()
	claims := jwt.RegisteredClaims{}
	jwtToken, err := jwt.ParseWithClaims(
		token,
		&claims,
		func(t *jwt.Token) (interface{}, error) {
			return []byte(p.secretKey), nil
		},
		jwt.WithAudience(constants.AudienceStorefront),
		jwt.WithIssuer(constants.IssuerIdentity),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	)
	if err != nil {
		err = fmt.Errorf("failed parsing with claims with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return uuid.Nil, err
	}
	if !jwtToken.Valid {
		logger.Error().Err(inErrors.ErrTokenInvalid).Msg(inErrors.ErrTokenInvalid.Error())
		return uuid.Nil, inErrors.ErrTokenInvalid
	}

	logger = logger.With().Str(log.KeyProcess, "parsing subject").Logger()
	if claims.Subject == "" {
		logger.Error().Err(inErrors.ErrEmptySubject).Msg(inErrors.ErrEmptySubject.Error())
		return uuid.Nil, inErrors.ErrEmptySubject
	}
	userId, err := uuid.Parse(claims.Subject)
	if err != nil {
		err = fmt.Errorf("failed parsing subject=%s with error=%w", claims.Subject, err)
		logger.Error().Err(err).Msg(err.Error())
		return uuid.Nil, err
	}

	p.notifier.notify(userId, true)
	return userId, nil
}

// SignOut reports an out-of-band sign-out (session revoked at the identity
// service) so subscribers can drop per-user state.
func (p *TokenProvider) SignOut(userId uuid.UUID) {
	p.notifier.notify(userId, false)
}
