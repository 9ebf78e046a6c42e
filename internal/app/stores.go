package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/tgwa-bridge/internal/infrastructure/config"
	"github.com/GriffinCanCode/tgwa-bridge/internal/storage"
	"github.com/GriffinCanCode/tgwa-bridge/internal/storage/bolt"
	"github.com/GriffinCanCode/tgwa-bridge/internal/storage/dropbox"
	"github.com/GriffinCanCode/tgwa-bridge/internal/storage/memory"
	"github.com/GriffinCanCode/tgwa-bridge/internal/storage/redis"
)

// StoreHandle is an opened session store with its lifecycle hooks.
type StoreHandle struct {
	storage.Store
	// Breaker reports the circuit state for HTTP-backed stores.
	Breaker func() string
	closer  func() error
}

// Close releases the store's connections.
func (h *StoreHandle) Close() error {
	if h.closer == nil {
		return nil
	}
	return h.closer()
}

// OpenStore builds the configured backend. Reachability is only probed,
// never required: an unreachable store degrades to a fresh login.
func OpenStore(ctx context.Context, cfg config.StoreConfig, log *zap.Logger) (*StoreHandle, error) {
	switch cfg.Backend {
	case config.BackendDropbox:
		store := dropbox.New(cfg.DropboxToken, cfg.DropboxContentURL)
		return &StoreHandle{
			Store:   store,
			Breaker: func() string { return store.Client().BreakerState().String() },
		}, nil

	case config.BackendRedis:
		store := redis.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := store.Ping(pingCtx); err != nil {
			log.Warn("Redis session store not reachable yet", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		}
		return &StoreHandle{Store: store, closer: store.Close}, nil

	case config.BackendBolt:
		store, err := bolt.Open(cfg.BoltPath)
		if err != nil {
			return nil, err
		}
		return &StoreHandle{Store: store, closer: store.Close}, nil

	case config.BackendMemory:
		log.Warn("Using in-memory session store, the session will not survive a restart")
		return &StoreHandle{Store: memory.New()}, nil

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}
