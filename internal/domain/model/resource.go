package model

import (
	"time"
)

// Image references one uploaded asset on the external media host. Only the
// returned references are kept; binaries never touch the database.
type Image struct {
	URL      string `json:"secure_url"`
	PublicID string `json:"public_id"`
}

// Resource groups its remote assets under FolderID on the media host.
// AdminID is the owning admin; only that admin may mutate or delete.
type Resource struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Images      []Image   `json:"images"`
	FolderID    string    `json:"folder_id"`
	AdminID     string    `json:"admin_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
