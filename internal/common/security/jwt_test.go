package security

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resource_hub/internal/platform/config"
)

func newTestTokenService(ttl time.Duration) *TokenService {
	return NewTokenService(&config.Config{
		JWTKey: []byte("test-secret"),
		JWTExp: ttl,
	})
}

func TestIssueAndVerify(t *testing.T) {
	s := newTestTokenService(time.Hour)

	token, err := s.Issue(jwt.MapClaims{
		"email": "alice@gmail.com",
		"id":    "abc-123",
		"role":  "admin",
	})
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := s.Verify(context.Background(), token)
	require.NoError(t, err)

	email, err := GetEmailFromClaims(claims)
	require.NoError(t, err)
	assert.Equal(t, "alice@gmail.com", email)

	id, err := GetIDFromClaims(claims)
	require.NoError(t, err)
	assert.Equal(t, "abc-123", id)

	role, err := GetRoleFromClaims(claims)
	require.NoError(t, err)
	assert.Equal(t, "admin", role)
}

func TestVerifyExpiredToken(t *testing.T) {
	s := newTestTokenService(-time.Minute)

	token, err := s.Issue(jwt.MapClaims{"id": "abc", "role": "user", "email": "a@gmail.com"})
	require.NoError(t, err)

	_, err = s.Verify(context.Background(), token)
	assert.Error(t, err)
}

func TestVerifyWrongSecret(t *testing.T) {
	issuer := newTestTokenService(time.Hour)
	verifier := NewTokenService(&config.Config{JWTKey: []byte("other-secret"), JWTExp: time.Hour})

	token, err := issuer.Issue(jwt.MapClaims{"id": "abc", "role": "user", "email": "a@gmail.com"})
	require.NoError(t, err)

	_, err = verifier.Verify(context.Background(), token)
	assert.Error(t, err)
}

func TestVerifyGarbage(t *testing.T) {
	s := newTestTokenService(time.Hour)
	_, err := s.Verify(context.Background(), "not-a-token")
	assert.Error(t, err)
}

func TestClaimHelpersMissing(t *testing.T) {
	claims := jwt.MapClaims{}
	if _, err := GetIDFromClaims(claims); err == nil {
		t.Error("expected error for missing id claim")
	}
	if _, err := GetRoleFromClaims(claims); err == nil {
		t.Error("expected error for missing role claim")
	}
	if _, err := GetEmailFromClaims(claims); err == nil {
		t.Error("expected error for missing email claim")
	}
}
