// Package storage abstracts where uploaded images live. The API only ever
// saves, deletes and links files, so the interface is kept to exactly that.
package storage

import (
	"context"
	"io"
)

// Storage persists uploaded files under relative paths.
type Storage interface {
	// Save stores the reader's content at the given relative path.
	Save(ctx context.Context, path string, reader io.Reader) error

	// Delete removes a file. Deleting an absent file is not an error.
	Delete(ctx context.Context, path string) error

	// Exists reports whether a file is present.
	Exists(ctx context.Context, path string) (bool, error)

	// URL returns the public URL for a stored file.
	URL(path string) string
}
