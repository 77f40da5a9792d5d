package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/jwtauth/v5"

	"resource_hub/internal/common"
	"resource_hub/internal/common/security"
	"resource_hub/internal/domain/model"
)

type contextKey string

const PrincipalCtxKey contextKey = "principal"

// AccessTokenHeader carries the bearer token as <prefix><jwt>.
const AccessTokenHeader = "accesstoken"

// PrincipalResolver maps a claimed (role, id) pair to a live principal,
// branching to the matching tenant store.
type PrincipalResolver interface {
	ResolvePrincipal(ctx context.Context, role, id string) (*model.Principal, error)
}

// AccessTokenFinder feeds jwtauth.Verify from the accesstoken header,
// stripping the configured prefix. Missing or malformed headers yield no
// token; Authenticator reports the precise failure.
func AccessTokenFinder(prefix string) func(r *http.Request) string {
	return func(r *http.Request) string {
		header := r.Header.Get(AccessTokenHeader)
		if header == "" || !strings.HasPrefix(header, prefix) {
			return ""
		}
		return strings.TrimPrefix(header, prefix)
	}
}

// Authenticator walks the per-request chain: header present, prefix correct,
// token verified, identity claims present, principal still exists. It must
// run after jwtauth.Verify and attaches the resolved principal to context.
func Authenticator(prefix string, resolver PrincipalResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get(AccessTokenHeader)
			if header == "" {
				common.RespondWithError(w, http.StatusBadRequest, "please login first")
				return
			}
			if !strings.HasPrefix(header, prefix) {
				common.RespondWithError(w, http.StatusBadRequest, "invalid token prefix")
				return
			}

			token, claims, err := jwtauth.FromContext(r.Context())
			if err != nil || token == nil {
				common.RespondWithError(w, http.StatusBadRequest, "invalid token")
				return
			}

			id, err := security.GetIDFromClaims(claims)
			if err != nil {
				common.RespondWithError(w, http.StatusBadRequest, "invalid token payload")
				return
			}
			role, err := security.GetRoleFromClaims(claims)
			if err != nil {
				common.RespondWithError(w, http.StatusBadRequest, "invalid token payload")
				return
			}

			principal, err := resolver.ResolvePrincipal(r.Context(), role, id)
			if err != nil {
				if errors.Is(err, common.ErrNotFound) {
					// token is valid but the account is gone
					common.RespondWithError(w, http.StatusNotFound, "please signUp first")
					return
				}
				if errors.Is(err, common.ErrForbidden) {
					common.RespondWithError(w, http.StatusForbidden, "access denied")
					return
				}
				common.RespondWithError(w, http.StatusInternalServerError, "failed to resolve account")
				return
			}

			ctx := context.WithValue(r.Context(), PrincipalCtxKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRoles permits the request iff the attached principal's role is in
// the allow-list. Compose after Authenticator.
func RequireRoles(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := GetPrincipalFromContext(r.Context())
			if !ok {
				common.RespondWithError(w, http.StatusForbidden, "access denied")
				return
			}
			for _, role := range roles {
				if principal.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			common.RespondWithError(w, http.StatusForbidden, "access denied for role "+principal.Role)
		})
	}
}

// GetPrincipalFromContext returns the principal attached by Authenticator.
func GetPrincipalFromContext(ctx context.Context) (*model.Principal, bool) {
	principal, ok := ctx.Value(PrincipalCtxKey).(*model.Principal)
	return principal, ok
}
