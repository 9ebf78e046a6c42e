package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("TG_BOT_TOKEN", "123:abc")
	t.Setenv("WA_CHAT_ID", "15551234567@c.us")
	t.Setenv("DROPBOX_TOKEN", "sl.token")
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "forwarder", cfg.WhatsApp.ClientID)
	assert.Equal(t, "session", cfg.Session.Root)
	assert.Equal(t, 30*time.Second, cfg.Session.SyncTimeout)
	assert.Equal(t, BackendDropbox, cfg.Store.Backend)
	assert.Equal(t, int64(64<<20), cfg.Media.MaxBytes)
	assert.Equal(t, "127.0.0.1:8080", cfg.Status.Addr)
	assert.False(t, cfg.Status.ExposeQR)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Development)

	// Credentials are never defaulted.
	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissing))
}

func TestLoadWithEnvironmentVariables(t *testing.T) {
	setRequired(t)
	t.Setenv("TG_SOURCE_CHAT_ID", "-1001234567890")
	t.Setenv("WA_CLIENT_ID", "shop")
	t.Setenv("SESSION_ROOT", "/var/lib/bridge")
	t.Setenv("SESSION_SYNC_TIMEOUT", "5s")
	t.Setenv("STORE_BACKEND", "redis")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_DEV", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "123:abc", cfg.Telegram.Token)
	assert.Equal(t, int64(-1001234567890), cfg.Telegram.SourceChatID)
	assert.Equal(t, "15551234567@c.us", cfg.WhatsApp.ChatID)
	assert.Equal(t, "shop", cfg.WhatsApp.ClientID)
	assert.Equal(t, 5*time.Second, cfg.Session.SyncTimeout)
	assert.Equal(t, BackendRedis, cfg.Store.Backend)
	assert.Equal(t, "redis:6379", cfg.Store.RedisAddr)
	assert.Equal(t, 2, cfg.Store.RedisDB)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Development)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/var/lib/bridge", "shop", "session.db"), loc.LocalPath)
	assert.Equal(t, "/whatsapp/forwarder-session.db", loc.RemoteKey)
}

func TestLoadFailsFastOnMissingTokens(t *testing.T) {
	t.Setenv("WA_CHAT_ID", "15551234567@c.us")
	t.Setenv("TG_BOT_TOKEN", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TG_BOT_TOKEN")
}

func TestLoadReportsEveryUnsetRequirement(t *testing.T) {
	for _, key := range []string{"TG_BOT_TOKEN", "WA_CHAT_ID", "DROPBOX_TOKEN", "STORE_BACKEND"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	_, err := Load()
	require.ErrorIs(t, err, ErrMissing)
	for _, key := range []string{"TG_BOT_TOKEN", "WA_CHAT_ID", "DROPBOX_TOKEN"} {
		assert.Contains(t, err.Error(), key)
	}
}

func TestLoadStatusDefaultsToLoopback(t *testing.T) {
	setRequired(t)
	t.Setenv("STATUS_ADDR", "")
	require.NoError(t, os.Unsetenv("STATUS_ADDR"))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:8080", cfg.Status.Addr)
	assert.False(t, cfg.Status.ExposeQR)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := Default()
		cfg.Telegram.Token = "123:abc"
		cfg.WhatsApp.ChatID = "15551234567"
		cfg.Store.DropboxToken = "sl.token"
		return cfg
	}

	t.Run("valid dropbox", func(t *testing.T) {
		assert.NoError(t, valid().Validate())
	})

	t.Run("dropbox needs a token", func(t *testing.T) {
		cfg := valid()
		cfg.Store.DropboxToken = ""
		err := cfg.Validate()
		require.ErrorIs(t, err, ErrMissing)
		assert.Contains(t, err.Error(), "DROPBOX_TOKEN")
	})

	t.Run("dropbox keys are absolute", func(t *testing.T) {
		cfg := valid()
		cfg.Session.RemoteKey = "session.db"
		assert.ErrorIs(t, cfg.Validate(), ErrMissing)
	})

	t.Run("memory backend needs no credentials", func(t *testing.T) {
		cfg := valid()
		cfg.Store.Backend = BackendMemory
		cfg.Store.DropboxToken = ""
		assert.NoError(t, cfg.Validate())
	})

	t.Run("unknown backend", func(t *testing.T) {
		cfg := valid()
		cfg.Store.Backend = "s3"
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), `"s3"`)
	})

	t.Run("client id must be one segment", func(t *testing.T) {
		cfg := valid()
		cfg.WhatsApp.ClientID = "../escape"
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "WA_CLIENT_ID")
	})

	t.Run("every problem is reported", func(t *testing.T) {
		cfg := Default()
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "TG_BOT_TOKEN")
		assert.Contains(t, err.Error(), "WA_CHAT_ID")
		assert.Contains(t, err.Error(), "DROPBOX_TOKEN")
	})
}
