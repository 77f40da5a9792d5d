package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"

	"resource_hub/internal/common"
	"resource_hub/internal/common/validation"
	"resource_hub/internal/domain/model"
	"resource_hub/internal/domain/repository"
	"resource_hub/internal/platform/media"
)

// ResourceService manages Resource records. Image binaries go to the media
// store; only the returned references are persisted.
type ResourceService struct {
	resourceRepo repository.ResourceRepository
	media        media.Store
	baseDir      string
}

func NewResourceService(resourceRepo repository.ResourceRepository, mediaStore media.Store, baseDir string) *ResourceService {
	return &ResourceService{
		resourceRepo: resourceRepo,
		media:        mediaStore,
		baseDir:      baseDir,
	}
}

// ImageUpload is one multipart file already vetted at the boundary.
type ImageUpload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

type CreateResourceRequest struct {
	Title       string
	Description string
}

func (r CreateResourceRequest) Validate() error {
	if err := validation.Title(r.Title); err != nil {
		return fmt.Errorf("%s: %w", err.Error(), common.ErrValidation)
	}
	if err := validation.Description(r.Description); err != nil {
		return fmt.Errorf("%s: %w", err.Error(), common.ErrValidation)
	}
	return nil
}

type UpdateResourceRequest struct {
	Title       string
	Description string
	OldPublicID string
}

func (r UpdateResourceRequest) Validate() error {
	if r.Title != "" {
		if err := validation.Title(r.Title); err != nil {
			return fmt.Errorf("%s: %w", err.Error(), common.ErrValidation)
		}
	}
	if r.Description != "" {
		if err := validation.Description(r.Description); err != nil {
			return fmt.Errorf("%s: %w", err.Error(), common.ErrValidation)
		}
	}
	return nil
}

// ResourceList mirrors the paginated find-and-count shape: total count plus
// the current page of rows.
type ResourceList struct {
	Count int              `json:"count"`
	Rows  []model.Resource `json:"rows"`
}

// Create uploads the image under a freshly generated folder and persists the
// record with the returned references.
func (s *ResourceService) Create(ctx context.Context, adminID string, req CreateResourceRequest, file *ImageUpload) (*model.Resource, error) {
	if file == nil {
		return nil, fmt.Errorf("please upload image: %w", common.ErrBadRequest)
	}

	if _, err := s.resourceRepo.FindByTitle(ctx, req.Title); err == nil {
		return nil, fmt.Errorf("resource already exists: %w", common.ErrBadRequest)
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("failed to check title: %w", err)
	}

	folderID := slug.Make(req.Title) + "-" + shortID()
	uploaded, err := s.media.Upload(ctx, s.folderPath(folderID), newPublicID(file.Filename), file.ContentType, file.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to upload image: %w", err)
	}

	res := &model.Resource{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Description: req.Description,
		Images:      []model.Image{{URL: uploaded.URL, PublicID: uploaded.PublicID}},
		FolderID:    folderID,
		AdminID:     adminID,
	}
	if err := s.resourceRepo.Create(ctx, res); err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}
	return res, nil
}

// Delete removes the record after a best-effort cleanup of its remote assets.
// The lookup is filtered by owner, so another admin's id yields not-found.
func (s *ResourceService) Delete(ctx context.Context, adminID, resourceID string) (bool, error) {
	res, err := s.resourceRepo.FindByIDAndAdmin(ctx, resourceID, adminID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return false, fmt.Errorf("resource not found: %w", common.ErrNotFound)
		}
		return false, fmt.Errorf("failed to find resource: %w", err)
	}

	if res.FolderID != "" {
		folder := s.folderPath(res.FolderID)
		if err := s.media.DeleteByPrefix(ctx, folder); err != nil {
			log.Printf("remote asset cleanup failed for %s: %v", folder, err)
		}
		if err := s.media.DeleteFolder(ctx, folder); err != nil {
			log.Printf("remote folder cleanup failed for %s: %v", folder, err)
		}
	}

	if err := s.resourceRepo.Delete(ctx, resourceID); err != nil {
		return false, fmt.Errorf("failed to delete resource: %w", err)
	}
	return true, nil
}

// Update mutates title, description and/or image. A replacement image reuses
// the folder and public id of the one it replaces, keeping references stable.
func (s *ResourceService) Update(ctx context.Context, adminID, resourceID string, req UpdateResourceRequest, file *ImageUpload) (*model.Resource, error) {
	res, err := s.resourceRepo.FindByIDAndAdmin(ctx, resourceID, adminID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("resource not found: %w", common.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find resource: %w", err)
	}

	if req.Title != "" {
		if _, err := s.resourceRepo.FindByTitle(ctx, req.Title); err == nil {
			return nil, fmt.Errorf("title already exists, enter another title: %w", common.ErrBadRequest)
		} else if !errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("failed to check title: %w", err)
		}
		res.Title = req.Title
	}

	if req.Description != "" {
		res.Description = req.Description
	}

	if req.OldPublicID != "" {
		if file == nil {
			return nil, fmt.Errorf("please upload image: %w", common.ErrBadRequest)
		}
		publicID := req.OldPublicID
		if i := strings.Index(publicID, res.FolderID+"/"); i >= 0 {
			publicID = publicID[i+len(res.FolderID)+1:]
		}
		uploaded, err := s.media.Upload(ctx, s.folderPath(res.FolderID), publicID, file.ContentType, file.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to upload image: %w", err)
		}
		res.Images = []model.Image{{URL: uploaded.URL, PublicID: uploaded.PublicID}}
	}

	if err := s.resourceRepo.Update(ctx, res); err != nil {
		return nil, fmt.Errorf("failed to update resource: %w", err)
	}
	return res, nil
}

// List returns one page of resources plus the total count.
func (s *ResourceService) List(ctx context.Context, page, limit int) (*ResourceList, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	offset := (page - 1) * limit

	rows, total, err := s.resourceRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list resources: %w", err)
	}
	return &ResourceList{Count: total, Rows: rows}, nil
}

// Search is an exact-match lookup by title.
func (s *ResourceService) Search(ctx context.Context, title string) (*model.Resource, error) {
	res, err := s.resourceRepo.FindByTitle(ctx, title)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("resource not found: %w", common.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to search resources: %w", err)
	}
	return res, nil
}

func (s *ResourceService) folderPath(folderID string) string {
	return s.baseDir + "/resources/" + folderID
}

func shortID() string {
	return uuid.NewString()[:8]
}

func newPublicID(filename string) string {
	ext := path.Ext(filename)
	base := strings.TrimSuffix(path.Base(filename), ext)
	return shortID() + "_" + slug.Make(base) + ext
}
