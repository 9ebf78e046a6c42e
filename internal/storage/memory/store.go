// Package memory is an in-process session store, used for dry runs and tests.
package memory

import (
	"context"
	"sync"

	"github.com/GriffinCanCode/tgwa-bridge/internal/storage"
)

// Store keeps blobs in a map.
type Store struct {
	mu      sync.RWMutex
	objects map[string][]byte
	fetches int
	uploads int
}

// New creates an empty store.
func New() *Store {
	return &Store{objects: make(map[string][]byte)}
}

// Name implements storage.Store.
func (s *Store) Name() string { return "memory" }

// Fetch implements storage.Store.
func (s *Store) Fetch(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetches++

	data, ok := s.objects[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

// Upload implements storage.Store.
func (s *Store) Upload(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploads++

	s.objects[key] = append([]byte(nil), data...)
	return nil
}

// Put seeds an object without counting it as an upload.
func (s *Store) Put(key string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = append([]byte(nil), data...)
}

// Get reads an object without counting it as a fetch.
func (s *Store) Get(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.objects[key]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), data...), true
}

// Calls returns how many fetches and uploads have been served.
func (s *Store) Calls() (fetches, uploads int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fetches, s.uploads
}
