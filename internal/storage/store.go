// Package storage defines the remote session store contract.
//
// A Store holds opaque blobs by key. Upload always replaces the previous
// content in full; there is no versioning and nothing is ever deleted.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Fetch when no object exists at the key.
var ErrNotFound = errors.New("storage: object not found")

// Store is the remote session store.
type Store interface {
	// Fetch returns the bytes stored at key, or ErrNotFound.
	Fetch(ctx context.Context, key string) ([]byte, error)
	// Upload stores data at key, overwriting any previous content.
	Upload(ctx context.Context, key string, data []byte) error
	// Name identifies the backend in logs and metrics.
	Name() string
}

// IsNotFound reports whether err means the object does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
