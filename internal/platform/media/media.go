package media

import (
	"context"
	"io"
)

// UploadResult carries the references the caller persists in place of the
// binary: the public URL and the host-side object id.
type UploadResult struct {
	URL      string
	PublicID string
}

// Store is the external media host. Binaries live there; the database keeps
// only the returned references.
type Store interface {
	// Upload stores body under folder/publicID, overwriting any previous
	// object with the same id (stable references on re-upload).
	Upload(ctx context.Context, folder, publicID, contentType string, body io.Reader) (*UploadResult, error)
	// DeleteByPrefix removes every object under the folder prefix.
	DeleteByPrefix(ctx context.Context, folder string) error
	// DeleteFolder removes the folder marker itself, if any.
	DeleteFolder(ctx context.Context, folder string) error
}
