package bolt_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/tgwa-bridge/internal/storage/bolt"
	"github.com/GriffinCanCode/tgwa-bridge/internal/storage/storagetest"
)

func TestBoltStore_Contract(t *testing.T) {
	store, err := bolt.Open(filepath.Join(t.TempDir(), "backup.bolt"))
	require.NoError(t, err)
	defer store.Close()

	storagetest.RunContract(t, store)
}

func TestBoltStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backup.bolt")
	ctx := context.Background()

	store, err := bolt.Open(path)
	require.NoError(t, err)
	require.NoError(t, store.Upload(ctx, "/forwarder.db", []byte("device")))
	require.NoError(t, store.Close())

	store, err = bolt.Open(path)
	require.NoError(t, err)
	defer store.Close()

	got, err := store.Fetch(ctx, "/forwarder.db")
	require.NoError(t, err)
	assert.Equal(t, []byte("device"), got)
}

func TestBoltStore_OpenFailsOnDirectory(t *testing.T) {
	_, err := bolt.Open(t.TempDir())
	assert.Error(t, err)
}
