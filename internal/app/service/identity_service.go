package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"resource_hub/internal/common"
	"resource_hub/internal/common/security"
	"resource_hub/internal/common/validation"
	"resource_hub/internal/domain/model"
	"resource_hub/internal/domain/repository"
	"resource_hub/internal/platform/tokencache"
)

// IdentityService owns signup and signin for both tenants. The target tenant
// is selected by role, so the admin and user flows share one implementation.
type IdentityService struct {
	adminRepo  repository.CredentialRepository
	userRepo   repository.CredentialRepository
	tokens     *security.TokenService
	cache      *tokencache.Cache
	bcryptCost int
	tokenTTL   time.Duration
}

func NewIdentityService(
	adminRepo, userRepo repository.CredentialRepository,
	tokens *security.TokenService,
	cache *tokencache.Cache,
	bcryptCost int,
	tokenTTL time.Duration,
) *IdentityService {
	return &IdentityService{
		adminRepo:  adminRepo,
		userRepo:   userRepo,
		tokens:     tokens,
		cache:      cache,
		bcryptCost: bcryptCost,
		tokenTTL:   tokenTTL,
	}
}

type SignUpRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Validate applies the boundary field rules before any service logic runs.
func (r SignUpRequest) Validate() error {
	if err := validation.Name(r.Name); err != nil {
		return fmt.Errorf("%s: %w", err.Error(), common.ErrValidation)
	}
	if err := validation.Email(r.Email); err != nil {
		return fmt.Errorf("%s: %w", err.Error(), common.ErrValidation)
	}
	if err := validation.Password(r.Password); err != nil {
		return fmt.Errorf("%s: %w", err.Error(), common.ErrValidation)
	}
	if r.Role != model.RoleAdmin && r.Role != model.RoleUser {
		return fmt.Errorf("role must be admin or user: %w", common.ErrValidation)
	}
	return nil
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r SignInRequest) Validate() error {
	if err := validation.Email(r.Email); err != nil {
		return fmt.Errorf("%s: %w", err.Error(), common.ErrValidation)
	}
	if err := validation.Password(r.Password); err != nil {
		return fmt.Errorf("%s: %w", err.Error(), common.ErrValidation)
	}
	return nil
}

// SignUp creates a credential in the tenant table selected by role. The email
// namespace is global: both tenant tables are checked before insert.
func (s *IdentityService) SignUp(ctx context.Context, role string, req SignUpRequest) (*model.Credential, error) {
	if req.Email == "" || req.Password == "" || req.Name == "" {
		return nil, common.ErrBadRequest
	}
	own, other, err := s.reposFor(role)
	if err != nil {
		return nil, err
	}

	if _, err := own.FindByEmail(ctx, req.Email); err == nil {
		return nil, fmt.Errorf("email already exists: %w", common.ErrBadRequest)
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if _, err := other.FindByEmail(ctx, req.Email); err == nil {
		return nil, fmt.Errorf("this email is already registered: %w", common.ErrBadRequest)
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hashedPassword, err := security.HashPassword(req.Password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	token, err := s.tokens.Issue(jwt.MapClaims{
		"email": req.Email,
		"name":  req.Name,
		"role":  role,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	cred := &model.Credential{
		ID:             uuid.NewString(),
		Name:           req.Name,
		Email:          req.Email,
		HashedPassword: hashedPassword,
		Role:           role,
		Token:          token,
	}
	if err := own.Create(ctx, cred); err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	s.cacheToken(ctx, role, cred.ID, token)

	cred.HashedPassword = "" // Clear before returning
	return cred, nil
}

// SignIn verifies the password and rotates the stored token. Returns only the
// new token string.
func (s *IdentityService) SignIn(ctx context.Context, role string, req SignInRequest) (string, error) {
	if req.Email == "" || req.Password == "" {
		return "", common.ErrBadRequest
	}
	own, _, err := s.reposFor(role)
	if err != nil {
		return "", err
	}

	cred, err := own.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return "", fmt.Errorf("email not found: %w", common.ErrBadRequest)
		}
		return "", fmt.Errorf("failed to find account: %w", err)
	}

	if !security.CheckPasswordHash(req.Password, cred.HashedPassword) {
		return "", fmt.Errorf("password does not match: %w", common.ErrBadRequest)
	}

	token, err := s.tokens.Issue(jwt.MapClaims{
		"email": cred.Email,
		"id":    cred.ID,
		"role":  cred.Role,
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	if err := own.UpdateToken(ctx, cred.ID, token); err != nil {
		return "", fmt.Errorf("failed to store token: %w", err)
	}
	s.cacheToken(ctx, role, cred.ID, token)

	return token, nil
}

// ResolvePrincipal looks up the tenant table matching the claimed role and
// projects id, email and role. Unknown roles fail closed.
func (s *IdentityService) ResolvePrincipal(ctx context.Context, role, id string) (*model.Principal, error) {
	switch role {
	case model.RoleAdmin:
		return s.adminRepo.FindPrincipalByID(ctx, id)
	case model.RoleUser:
		return s.userRepo.FindPrincipalByID(ctx, id)
	default:
		return nil, common.ErrForbidden
	}
}

func (s *IdentityService) reposFor(role string) (own, other repository.CredentialRepository, err error) {
	switch role {
	case model.RoleAdmin:
		return s.adminRepo, s.userRepo, nil
	case model.RoleUser:
		return s.userRepo, s.adminRepo, nil
	default:
		return nil, nil, fmt.Errorf("unknown role %q: %w", role, common.ErrBadRequest)
	}
}

// cacheToken mirrors the last-issued token into redis. Best effort: the row
// is the source of record, so cache failures only get logged.
func (s *IdentityService) cacheToken(ctx context.Context, role, id, token string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Store(ctx, role, id, token, s.tokenTTL); err != nil {
		log.Printf("token cache write failed for %s/%s: %v", role, id, err)
	}
}
