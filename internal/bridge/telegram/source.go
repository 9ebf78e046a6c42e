// Package telegram receives channel posts from a Telegram bot.
package telegram

import (
	"context"
	"fmt"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/tgwa-bridge/internal/bridge"
)

// Handler processes one post. Posts are delivered one at a time in
// arrival order.
type Handler func(ctx context.Context, post bridge.Post)

// Options configures a Source.
type Options struct {
	Token string
	// SourceChatID restricts delivery to one channel. Zero accepts any.
	SourceChatID int64
	PollTimeout  time.Duration
	// Endpoint overrides the Bot API endpoint format, for tests.
	Endpoint string
	Logger   *zap.Logger
}

// Source long-polls the Bot API for channel posts.
type Source struct {
	bot    *tgbotapi.BotAPI
	opts   Options
	log    *zap.Logger
	stopMu sync.Mutex
	// running is set while Run holds the updates channel.
	running bool
}

var setLoggerOnce sync.Once

// New authenticates the bot token with the Bot API.
func New(opts Options) (*Source, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	setLoggerOnce.Do(func() {
		_ = tgbotapi.SetLogger(botLogger{log: log.Named("botapi").Sugar()})
	})

	endpoint := opts.Endpoint
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}
	bot, err := tgbotapi.NewBotAPIWithAPIEndpoint(opts.Token, endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to authenticate telegram bot: %w", err)
	}
	log.Info("Telegram bot authenticated", zap.String("username", bot.Self.UserName))

	return &Source{bot: bot, opts: opts, log: log}, nil
}

// FileURL implements bridge.FileResolver.
func (s *Source) FileURL(_ context.Context, fileID string) (string, error) {
	url, err := s.bot.GetFileDirectURL(fileID)
	if err != nil {
		return "", fmt.Errorf("failed to get file %s: %w", fileID, err)
	}
	return url, nil
}

// Run delivers channel posts to handle until ctx is done.
func (s *Source) Run(ctx context.Context, handle Handler) error {
	s.stopMu.Lock()
	if s.running {
		s.stopMu.Unlock()
		return fmt.Errorf("telegram source already running")
	}
	s.running = true
	s.stopMu.Unlock()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = int(s.opts.PollTimeout / time.Second)
	u.AllowedUpdates = []string{"channel_post"}
	updates := s.bot.GetUpdatesChan(u)

	s.log.Info("Listening for channel posts", zap.Int64("source_chat_id", s.opts.SourceChatID))
	defer s.log.Info("Stopped listening for channel posts")

	for {
		select {
		case <-ctx.Done():
			s.bot.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			msg := update.ChannelPost
			if msg == nil {
				continue
			}
			if s.opts.SourceChatID != 0 && (msg.Chat == nil || msg.Chat.ID != s.opts.SourceChatID) {
				s.log.Debug("Ignoring post from other chat", zap.Int("post_id", msg.MessageID))
				continue
			}
			handle(ctx, toPost(msg))
		}
	}
}

// botLogger routes the Bot API library's log output into zap.
type botLogger struct {
	log *zap.SugaredLogger
}

func (l botLogger) Println(v ...interface{}) { l.log.Warn(v...) }

func (l botLogger) Printf(format string, v ...interface{}) { l.log.Warnf(format, v...) }
