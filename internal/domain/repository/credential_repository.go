package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"resource_hub/internal/common"
	"resource_hub/internal/domain/model"
)

// CredentialRepository is implemented once per tenant table (admins, users).
type CredentialRepository interface {
	Create(ctx context.Context, cred *model.Credential) error
	FindByEmail(ctx context.Context, email string) (*model.Credential, error)
	FindByID(ctx context.Context, id string) (*model.Credential, error)
	// FindPrincipalByID projects id, email and role only.
	FindPrincipalByID(ctx context.Context, id string) (*model.Principal, error)
	UpdateToken(ctx context.Context, id, token string) error
}

type pgCredentialRepository struct {
	db    *sql.DB
	table string
}

func NewPgAdminRepository(db *sql.DB) CredentialRepository {
	return &pgCredentialRepository{db: db, table: "admins"}
}

func NewPgUserRepository(db *sql.DB) CredentialRepository {
	return &pgCredentialRepository{db: db, table: "users"}
}

func (r *pgCredentialRepository) Create(ctx context.Context, cred *model.Credential) error {
	query := fmt.Sprintf(`INSERT INTO %s (id, name, email, hashed_password, role, token)
	          VALUES ($1, $2, $3, $4, $5, $6)`, r.table)
	_, err := r.db.ExecContext(ctx, query, cred.ID, cred.Name, cred.Email, cred.HashedPassword, cred.Role, cred.Token)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique constraint violation
			return fmt.Errorf("account with given email already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgCredentialRepository.Create (%s): %w", r.table, err)
	}
	return nil
}

func (r *pgCredentialRepository) FindByEmail(ctx context.Context, email string) (*model.Credential, error) {
	query := fmt.Sprintf(`SELECT id, name, email, hashed_password, role, token, created_at, updated_at
	          FROM %s WHERE email = $1`, r.table)
	return r.scanOne(ctx, query, email)
}

func (r *pgCredentialRepository) FindByID(ctx context.Context, id string) (*model.Credential, error) {
	query := fmt.Sprintf(`SELECT id, name, email, hashed_password, role, token, created_at, updated_at
	          FROM %s WHERE id = $1`, r.table)
	return r.scanOne(ctx, query, id)
}

func (r *pgCredentialRepository) scanOne(ctx context.Context, query string, arg interface{}) (*model.Credential, error) {
	cred := &model.Credential{}
	var token sql.NullString
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&cred.ID, &cred.Name, &cred.Email, &cred.HashedPassword, &cred.Role, &token, &cred.CreatedAt, &cred.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgCredentialRepository.scanOne (%s): %w", r.table, err)
	}
	cred.Token = token.String
	return cred, nil
}

func (r *pgCredentialRepository) FindPrincipalByID(ctx context.Context, id string) (*model.Principal, error) {
	query := fmt.Sprintf(`SELECT id, email, role FROM %s WHERE id = $1`, r.table)
	p := &model.Principal{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.Email, &p.Role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgCredentialRepository.FindPrincipalByID (%s): %w", r.table, err)
	}
	return p, nil
}

func (r *pgCredentialRepository) UpdateToken(ctx context.Context, id, token string) error {
	query := fmt.Sprintf(`UPDATE %s SET token = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`, r.table)
	_, err := r.db.ExecContext(ctx, query, token, id)
	if err != nil {
		return fmt.Errorf("pgCredentialRepository.UpdateToken (%s): %w", r.table, err)
	}
	return nil
}
