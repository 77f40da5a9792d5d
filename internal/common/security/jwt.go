package security

import (
	"context"
	"errors"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"

	"resource_hub/internal/platform/config"
)

// TokenService issues and verifies the signed bearer tokens. Secret and TTL
// are fixed at construction from the process configuration.
type TokenService struct {
	auth *jwtauth.JWTAuth
	exp  time.Duration
}

func NewTokenService(cfg *config.Config) *TokenService {
	return &TokenService{
		auth: jwtauth.New("HS256", cfg.JWTKey, nil),
		exp:  cfg.JWTExp,
	}
}

// Issue signs the given claims, stamping expiry and issued-at.
func (s *TokenService) Issue(claims jwt.MapClaims) (string, error) {
	claims["exp"] = time.Now().Add(s.exp).Unix()
	claims["iat"] = time.Now().Unix()
	_, tokenString, err := s.auth.Encode(claims)
	return tokenString, err
}

// Verify checks signature and expiry and returns the decoded claims.
func (s *TokenService) Verify(ctx context.Context, tokenString string) (jwt.MapClaims, error) {
	token, err := jwtauth.VerifyToken(s.auth, tokenString)
	if err != nil {
		return nil, err
	}
	claims, err := token.AsMap(ctx)
	if err != nil {
		return nil, err
	}
	return jwt.MapClaims(claims), nil
}

// JWTAuth exposes the underlying verifier for router-level middleware.
func (s *TokenService) JWTAuth() *jwtauth.JWTAuth {
	return s.auth
}

// Helper functions to extract claims, used in middleware and services
func GetIDFromClaims(claims jwt.MapClaims) (string, error) {
	id, ok := claims["id"].(string)
	if !ok || id == "" {
		return "", errors.New("id claim is missing or not a string")
	}
	return id, nil
}

func GetRoleFromClaims(claims jwt.MapClaims) (string, error) {
	role, ok := claims["role"].(string)
	if !ok {
		return "", errors.New("role claim is missing or not a string")
	}
	return role, nil
}

func GetEmailFromClaims(claims jwt.MapClaims) (string, error) {
	email, ok := claims["email"].(string)
	if !ok {
		return "", errors.New("email claim is missing or not a string")
	}
	return email, nil
}
