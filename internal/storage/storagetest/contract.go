// Package storagetest holds the behaviour every storage.Store must share.
package storagetest

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/tgwa-bridge/internal/storage"
)

// RunContract exercises store against the session store contract.
func RunContract(t *testing.T, store storage.Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("fetch missing key", func(t *testing.T) {
		data, err := store.Fetch(ctx, "/contract/missing")
		assert.ErrorIs(t, err, storage.ErrNotFound)
		assert.Nil(t, data)
	})

	t.Run("round trip is byte identical", func(t *testing.T) {
		payload := make([]byte, 256)
		for i := range payload {
			payload[i] = byte(i)
		}

		require.NoError(t, store.Upload(ctx, "/contract/binary", payload))

		got, err := store.Fetch(ctx, "/contract/binary")
		require.NoError(t, err)
		assert.Equal(t, payload, got)
	})

	t.Run("upload overwrites", func(t *testing.T) {
		require.NoError(t, store.Upload(ctx, "/contract/overwrite", bytes.Repeat([]byte("long-old-content"), 64)))
		require.NoError(t, store.Upload(ctx, "/contract/overwrite", []byte("new")))

		got, err := store.Fetch(ctx, "/contract/overwrite")
		require.NoError(t, err)
		assert.Equal(t, []byte("new"), got)
	})

	t.Run("keys are independent", func(t *testing.T) {
		require.NoError(t, store.Upload(ctx, "/contract/a", []byte("A")))
		require.NoError(t, store.Upload(ctx, "/contract/b", []byte("B")))

		a, err := store.Fetch(ctx, "/contract/a")
		require.NoError(t, err)
		b, err := store.Fetch(ctx, "/contract/b")
		require.NoError(t, err)
		assert.Equal(t, []byte("A"), a)
		assert.Equal(t, []byte("B"), b)
	})

	t.Run("fetched bytes are not aliased", func(t *testing.T) {
		require.NoError(t, store.Upload(ctx, "/contract/alias", []byte("stable")))

		got, err := store.Fetch(ctx, "/contract/alias")
		require.NoError(t, err)
		got[0] = 'X'

		again, err := store.Fetch(ctx, "/contract/alias")
		require.NoError(t, err)
		assert.Equal(t, []byte("stable"), again)
	})

	t.Run("concurrent uploads leave one complete value", func(t *testing.T) {
		var wg sync.WaitGroup
		values := make(map[string]bool)
		for i := 0; i < 8; i++ {
			v := fmt.Sprintf("writer-%d-%s", i, bytes.Repeat([]byte{'x'}, i*100))
			values[v] = true
			wg.Add(1)
			go func() {
				defer wg.Done()
				assert.NoError(t, store.Upload(ctx, "/contract/race", []byte(v)))
			}()
		}
		wg.Wait()

		got, err := store.Fetch(ctx, "/contract/race")
		require.NoError(t, err)
		assert.True(t, values[string(got)], "last write wins with a complete value, got %q", got)
	})

	if store.Name() == "" {
		t.Error("store must report a backend name")
	}
}
