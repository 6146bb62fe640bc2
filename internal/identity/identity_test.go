package identity

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modernshop/storefront/internal/config"
	"github.com/modernshop/storefront/internal/constants"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims jwt.RegisteredClaims, secret string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func testClaims(subject string) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    constants.IssuerIdentity,
		Audience:  jwt.ClaimStrings{constants.AudienceStorefront},
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
}

func TestVerifyReturnsSubject(t *testing.T) {
	provider := NewTokenProvider(config.Application{SecretKey: testSecret})
	userId := uuid.New()

	token := signToken(t, testClaims(userId.String()), testSecret)
	got, err := provider.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, userId, got)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	provider := NewTokenProvider(config.Application{SecretKey: testSecret})

	token := signToken(t, testClaims(uuid.NewString()), "another-secret")
	_, err := provider.Verify(context.Background(), token)
	assert.Error(t, err)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	provider := NewTokenProvider(config.Application{SecretKey: testSecret})

	claims := testClaims(uuid.NewString())
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	token := signToken(t, claims, testSecret)

	_, err := provider.Verify(context.Background(), token)
	assert.Error(t, err)
}

func TestVerifyRejectsWrongAudience(t *testing.T) {
	provider := NewTokenProvider(config.Application{SecretKey: testSecret})

	claims := testClaims(uuid.NewString())
	claims.Audience = jwt.ClaimStrings{"someone-else"}
	token := signToken(t, claims, testSecret)

	_, err := provider.Verify(context.Background(), token)
	assert.Error(t, err)
}

func TestVerifyRejectsWrongIssuer(t *testing.T) {
	provider := NewTokenProvider(config.Application{SecretKey: testSecret})

	claims := testClaims(uuid.NewString())
	claims.Issuer = "someone-else"
	token := signToken(t, claims, testSecret)

	_, err := provider.Verify(context.Background(), token)
	assert.Error(t, err)
}

func TestVerifyRejectsNonUuidSubject(t *testing.T) {
	provider := NewTokenProvider(config.Application{SecretKey: testSecret})

	token := signToken(t, testClaims("not-a-uuid"), testSecret)
	_, err := provider.Verify(context.Background(), token)
	assert.Error(t, err)
}

func TestSignOutNotifiesSubscribers(t *testing.T) {
	provider := NewTokenProvider(config.Application{SecretKey: testSecret})
	userId := uuid.New()

	var gotId uuid.UUID
	var gotSignedIn bool
	calls := 0
	unsubscribe := provider.OnAuthChange(func(id uuid.UUID, signedIn bool) {
		gotId, gotSignedIn = id, signedIn
		calls++
	})

	provider.SignOut(userId)
	assert.Equal(t, userId, gotId)
	assert.False(t, gotSignedIn)
	assert.Equal(t, 1, calls)

	unsubscribe()
	provider.SignOut(userId)
	assert.Equal(t, 1, calls)
}

func TestVerifyNotifiesSignIn(t *testing.T) {
	provider := NewTokenProvider(config.Application{SecretKey: testSecret})
	userId := uuid.New()

	var gotId uuid.UUID
	var gotSignedIn bool
	provider.OnAuthChange(func(id uuid.UUID, signedIn bool) {
		gotId, gotSignedIn = id, signedIn
	})

	token := signToken(t, testClaims(userId.String()), testSecret)
	_, err := provider.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, userId, gotId)
	assert.True(t, gotSignedIn)
}

func TestUserContextRoundTrip(t *testing.T) {
	userId := uuid.New()
	c := AttachUserToContext(context.Background(), userId)

	got, ok := UserFromContext(c)
	assert.True(t, ok)
	assert.Equal(t, userId, got)

	_, ok = UserFromContext(context.Background())
	assert.False(t, ok)
}
