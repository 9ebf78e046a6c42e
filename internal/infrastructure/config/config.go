package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/GriffinCanCode/tgwa-bridge/internal/shared/paths"
)

// ErrMissing is wrapped by Validate when a required setting is absent.
var ErrMissing = errors.New("missing required configuration")

// Supported session store backends.
const (
	BackendDropbox = "dropbox"
	BackendRedis   = "redis"
	BackendBolt    = "bolt"
	BackendMemory  = "memory"
)

// Config holds all application configuration.
type Config struct {
	Telegram TelegramConfig
	WhatsApp WhatsAppConfig
	Session  SessionConfig
	Store    StoreConfig
	Media    MediaConfig
	Status   StatusConfig
	Logging  LogConfig
}

// TelegramConfig holds the source bot configuration.
type TelegramConfig struct {
	Token string `envconfig:"TG_BOT_TOKEN"`
	// SourceChatID restricts forwarding to one channel. Zero accepts any.
	SourceChatID int64         `envconfig:"TG_SOURCE_CHAT_ID" default:"0"`
	PollTimeout  time.Duration `envconfig:"TG_POLL_TIMEOUT" default:"30s"`
}

// WhatsAppConfig holds the destination client configuration.
type WhatsAppConfig struct {
	ChatID   string  `envconfig:"WA_CHAT_ID"`
	ClientID string  `envconfig:"WA_CLIENT_ID" default:"forwarder"`
	SendRPS  float64 `envconfig:"WA_SEND_RPS" default:"1"`
}

// SessionConfig describes where the session artifact lives.
type SessionConfig struct {
	Root        string        `envconfig:"SESSION_ROOT" default:"session"`
	RemoteKey   string        `envconfig:"SESSION_REMOTE_KEY" default:"/whatsapp/forwarder-session.db"`
	SyncTimeout time.Duration `envconfig:"SESSION_SYNC_TIMEOUT" default:"30s"`
}

// StoreConfig selects and configures the remote session store.
type StoreConfig struct {
	Backend string `envconfig:"STORE_BACKEND" default:"dropbox"`

	DropboxToken      string `envconfig:"DROPBOX_TOKEN"`
	DropboxContentURL string `envconfig:"DROPBOX_CONTENT_URL" default:"https://content.dropboxapi.com"`

	RedisAddr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	BoltPath string `envconfig:"BOLT_PATH" default:"session-backup.bolt"`
}

// MediaConfig bounds media downloads from the source platform.
type MediaConfig struct {
	MaxBytes     int64         `envconfig:"MEDIA_MAX_BYTES" default:"67108864"`
	FetchTimeout time.Duration `envconfig:"MEDIA_FETCH_TIMEOUT" default:"60s"`
}

// StatusConfig holds the status server configuration. An empty address
// disables the server.
type StatusConfig struct {
	Addr string `envconfig:"STATUS_ADDR" default:"127.0.0.1:8080"`
	// ExposeQR publishes pairing codes on /events and /status. Anyone who
	// reads a code can link their own account, so it is off by default.
	ExposeQR bool `envconfig:"STATUS_EXPOSE_QR" default:"false"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// Load loads configuration from environment variables and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports every missing or invalid setting at once.
func (c *Config) Validate() error {
	var problems []string
	missing := func(name string) {
		problems = append(problems, name+" is required")
	}

	if strings.TrimSpace(c.Telegram.Token) == "" {
		missing("TG_BOT_TOKEN")
	}
	if strings.TrimSpace(c.WhatsApp.ChatID) == "" {
		missing("WA_CHAT_ID")
	}
	if c.Session.RemoteKey == "" {
		missing("SESSION_REMOTE_KEY")
	}

	switch c.Store.Backend {
	case BackendDropbox:
		if c.Store.DropboxToken == "" {
			missing("DROPBOX_TOKEN")
		}
		if !strings.HasPrefix(c.Session.RemoteKey, "/") {
			problems = append(problems, "SESSION_REMOTE_KEY must start with / for the dropbox backend")
		}
	case BackendRedis:
		if c.Store.RedisAddr == "" {
			missing("REDIS_ADDR")
		}
	case BackendBolt:
		if c.Store.BoltPath == "" {
			missing("BOLT_PATH")
		}
	case BackendMemory:
	default:
		problems = append(problems, fmt.Sprintf("STORE_BACKEND %q is not one of dropbox, redis, bolt, memory", c.Store.Backend))
	}

	if err := paths.ValidateClientID(c.WhatsApp.ClientID); err != nil {
		problems = append(problems, fmt.Sprintf("WA_CLIENT_ID: %v", err))
	}
	if c.Session.SyncTimeout <= 0 {
		problems = append(problems, "SESSION_SYNC_TIMEOUT must be positive")
	}
	if c.Media.MaxBytes <= 0 {
		problems = append(problems, "MEDIA_MAX_BYTES must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrMissing, strings.Join(problems, "; "))
	}
	return nil
}

// Location derives the session location from the configuration.
func (c *Config) Location() (paths.Location, error) {
	return paths.NewLocation(c.Session.Root, c.WhatsApp.ClientID, c.Session.RemoteKey)
}

// Default returns default configuration. Credentials are left empty.
func Default() *Config {
	return &Config{
		Telegram: TelegramConfig{
			PollTimeout: 30 * time.Second,
		},
		WhatsApp: WhatsAppConfig{
			ClientID: "forwarder",
			SendRPS:  1,
		},
		Session: SessionConfig{
			Root:        paths.DefaultRoot,
			RemoteKey:   "/whatsapp/forwarder-session.db",
			SyncTimeout: 30 * time.Second,
		},
		Store: StoreConfig{
			Backend:           BackendDropbox,
			DropboxContentURL: "https://content.dropboxapi.com",
			RedisAddr:         "localhost:6379",
			BoltPath:          "session-backup.bolt",
		},
		Media: MediaConfig{
			MaxBytes:     64 << 20,
			FetchTimeout: 60 * time.Second,
		},
		Status: StatusConfig{
			Addr: "127.0.0.1:8080",
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
	}
}
