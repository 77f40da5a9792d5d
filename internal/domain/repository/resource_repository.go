package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"resource_hub/internal/common"
	"resource_hub/internal/domain/model"
)

type ResourceRepository interface {
	Create(ctx context.Context, res *model.Resource) error
	// Update persists title, description and images in place.
	Update(ctx context.Context, res *model.Resource) error
	Delete(ctx context.Context, id string) error
	FindByTitle(ctx context.Context, title string) (*model.Resource, error)
	// FindByIDAndAdmin enforces ownership in the lookup itself.
	FindByIDAndAdmin(ctx context.Context, id, adminID string) (*model.Resource, error)
	List(ctx context.Context, limit, offset int) ([]model.Resource, int, error)
}

type pgResourceRepository struct {
	db *sql.DB
}

func NewPgResourceRepository(db *sql.DB) ResourceRepository {
	return &pgResourceRepository{db: db}
}

func (r *pgResourceRepository) Create(ctx context.Context, res *model.Resource) error {
	images, err := json.Marshal(res.Images)
	if err != nil {
		return fmt.Errorf("pgResourceRepository.Create marshal images: %w", err)
	}
	query := `INSERT INTO resources (id, title, description, images, folder_id, admin_id)
	          VALUES ($1, $2, $3, $4, $5, $6)`
	_, err = r.db.ExecContext(ctx, query, res.ID, res.Title, res.Description, images, res.FolderID, res.AdminID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique constraint for title
			return fmt.Errorf("resource with this title already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgResourceRepository.Create: %w", err)
	}
	return nil
}

func (r *pgResourceRepository) Update(ctx context.Context, res *model.Resource) error {
	images, err := json.Marshal(res.Images)
	if err != nil {
		return fmt.Errorf("pgResourceRepository.Update marshal images: %w", err)
	}
	query := `UPDATE resources SET title = $1, description = $2, images = $3, updated_at = CURRENT_TIMESTAMP
	          WHERE id = $4`
	_, err = r.db.ExecContext(ctx, query, res.Title, res.Description, images, res.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("resource with this title already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgResourceRepository.Update: %w", err)
	}
	return nil
}

func (r *pgResourceRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM resources WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("pgResourceRepository.Delete: %w", err)
	}
	return nil
}

func (r *pgResourceRepository) FindByTitle(ctx context.Context, title string) (*model.Resource, error) {
	query := `SELECT id, title, description, images, folder_id, admin_id, created_at, updated_at
	          FROM resources WHERE title = $1`
	return r.scanOne(ctx, query, title)
}

func (r *pgResourceRepository) FindByIDAndAdmin(ctx context.Context, id, adminID string) (*model.Resource, error) {
	query := `SELECT id, title, description, images, folder_id, admin_id, created_at, updated_at
	          FROM resources WHERE id = $1 AND admin_id = $2`
	return r.scanOne(ctx, query, id, adminID)
}

func (r *pgResourceRepository) scanOne(ctx context.Context, query string, args ...interface{}) (*model.Resource, error) {
	res := &model.Resource{}
	var images []byte
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&res.ID, &res.Title, &res.Description, &images, &res.FolderID, &res.AdminID, &res.CreatedAt, &res.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgResourceRepository.scanOne: %w", err)
	}
	if len(images) > 0 {
		if err := json.Unmarshal(images, &res.Images); err != nil {
			return nil, fmt.Errorf("pgResourceRepository.scanOne unmarshal images: %w", err)
		}
	}
	return res, nil
}

func (r *pgResourceRepository) List(ctx context.Context, limit, offset int) ([]model.Resource, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM resources`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("pgResourceRepository.List count: %w", err)
	}

	query := `SELECT id, title, description, images, folder_id, admin_id, created_at, updated_at
	          FROM resources ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("pgResourceRepository.List query: %w", err)
	}
	defer rows.Close()

	resources := []model.Resource{}
	for rows.Next() {
		var res model.Resource
		var images []byte
		if err := rows.Scan(&res.ID, &res.Title, &res.Description, &images, &res.FolderID, &res.AdminID, &res.CreatedAt, &res.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("pgResourceRepository.List scan: %w", err)
		}
		if len(images) > 0 {
			if err := json.Unmarshal(images, &res.Images); err != nil {
				return nil, 0, fmt.Errorf("pgResourceRepository.List unmarshal images: %w", err)
			}
		}
		resources = append(resources, res)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("pgResourceRepository.List rows.Err: %w", err)
	}

	return resources, total, nil
}
