package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/tgwa-bridge/internal/app"
	"github.com/GriffinCanCode/tgwa-bridge/internal/bridge/telegram"
	"github.com/GriffinCanCode/tgwa-bridge/internal/chat"
	"github.com/GriffinCanCode/tgwa-bridge/internal/chat/whatsapp"
	"github.com/GriffinCanCode/tgwa-bridge/internal/httpclient"
	"github.com/GriffinCanCode/tgwa-bridge/internal/infrastructure/config"
	"github.com/GriffinCanCode/tgwa-bridge/internal/infrastructure/logging"
	"github.com/GriffinCanCode/tgwa-bridge/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/tgwa-bridge/internal/media"
	"github.com/GriffinCanCode/tgwa-bridge/internal/shared/paths"
)

func main() {
	envFile := flag.String("env-file", ".env", "Optional dotenv file loaded before reading the environment")
	flag.Parse()

	if err := run(*envFile); err != nil {
		fmt.Fprintf(os.Stderr, "bridge: %v\n", err)
		os.Exit(1)
	}
}

func run(envFile string) error {
	// Real environment variables win over the file.
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to read %s: %w", envFile, err)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logCfg := logging.DefaultConfig()
	if cfg.Logging.Development {
		logCfg = logging.DevelopmentConfig()
	}
	logCfg.Level = cfg.Logging.Level
	logger, err := logging.New(logCfg)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := monitoring.NewMetrics()

	store, err := app.OpenStore(ctx, cfg.Store, logger.Component("store"))
	if err != nil {
		return fmt.Errorf("failed to open session store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("Failed to close session store", zap.Error(err))
		}
	}()

	fileOpts := httpclient.DefaultOptions("telegram-files")
	fileOpts.Timeout = cfg.Media.FetchTimeout

	bridge, err := app.New(cfg, app.Deps{
		Logger:  logger.Logger,
		Metrics: metrics,
		Store:   store,
		NewAdapter: func(loc paths.Location) chat.Adapter {
			return whatsapp.New(whatsapp.Options{
				DBPath:   loc.LocalPath,
				SendRPS:  cfg.WhatsApp.SendRPS,
				QRWriter: os.Stdout,
				Logger:   logger.Component("whatsapp"),
			})
		},
		NewSource: func(ctx context.Context) (app.Source, error) {
			src, err := telegram.New(telegram.Options{
				Token:        cfg.Telegram.Token,
				SourceChatID: cfg.Telegram.SourceChatID,
				PollTimeout:  cfg.Telegram.PollTimeout,
				Logger:       logger.Component("telegram"),
			})
			if err != nil {
				return nil, err
			}
			return src, nil
		},
		Downloader: media.NewFetcher(httpclient.New(fileOpts), cfg.Media.MaxBytes),
	})
	if err != nil {
		return err
	}

	if err := bridge.Run(ctx); err != nil {
		logger.Error("Bridge stopped", zap.Error(err))
		return err
	}
	logger.Info("Bridge stopped")
	return nil
}
