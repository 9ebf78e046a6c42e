package memory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/GriffinCanCode/tgwa-bridge/internal/storage/memory"
	"github.com/GriffinCanCode/tgwa-bridge/internal/storage/storagetest"
)

func TestMemoryStore_Contract(t *testing.T) {
	storagetest.RunContract(t, memory.New())
}

func TestMemoryStore_CancelledContext(t *testing.T) {
	store := memory.New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, store.Upload(ctx, "k", []byte("v")), context.Canceled)
	_, err := store.Fetch(ctx, "k")
	assert.ErrorIs(t, err, context.Canceled)

	fetches, uploads := store.Calls()
	assert.Zero(t, fetches)
	assert.Zero(t, uploads)
}

func TestMemoryStore_SeedingIsNotCounted(t *testing.T) {
	store := memory.New()
	store.Put("k", []byte("seed"))

	got, ok := store.Get("k")
	assert.True(t, ok)
	assert.Equal(t, []byte("seed"), got)

	fetches, uploads := store.Calls()
	assert.Zero(t, fetches)
	assert.Zero(t, uploads)
}
