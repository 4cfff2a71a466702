// Package blob is the profile asset port. The platform only needs upload
// and delete; everything else about the object store is opaque.
package blob

import "context"

// Asset identifies a stored blob: a public URL for display and the external
// id needed to delete it later.
type Asset struct {
	URL string
	ID  string
}

// Store uploads and deletes opaque blobs.
type Store interface {
	Upload(ctx context.Context, data []byte, contentType string) (Asset, error)
	Delete(ctx context.Context, id string) error
}
