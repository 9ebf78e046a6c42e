// Package bolt stores the session artifact in a BoltDB file. It suits
// deployments that have one persistent volume but an ephemeral session root.
package bolt

import (
	"context"
	"fmt"
	"time"

	"github.com/boltdb/bolt"

	"github.com/GriffinCanCode/tgwa-bridge/internal/storage"
)

var artifactsBucket = []byte("artifacts")

// Store implements storage.Store on one bucket of a Bolt database.
type Store struct {
	db *bolt.DB
}

// Open opens (creating if needed) the database at path.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("could not open bolt database %q: %w", path, err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(artifactsBucket)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("could not ensure bucket exists: %w", err)
	}
	return &Store{db: db}, nil
}

// Name implements storage.Store.
func (s *Store) Name() string { return "bolt" }

// Fetch implements storage.Store.
func (s *Store) Fetch(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(artifactsBucket).Get([]byte(key))
		if v == nil {
			return storage.ErrNotFound
		}
		// v is only valid for the life of the transaction.
		data = append([]byte{}, v...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Upload implements storage.Store.
func (s *Store) Upload(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(artifactsBucket).Put([]byte(key), data)
	})
}

// Close closes the database file.
func (s *Store) Close() error {
	return s.db.Close()
}
