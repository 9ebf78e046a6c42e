package app

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	apihttp "github.com/GriffinCanCode/tgwa-bridge/internal/api/http"
	"github.com/GriffinCanCode/tgwa-bridge/internal/api/ws"
	"github.com/GriffinCanCode/tgwa-bridge/internal/bridge"
	"github.com/GriffinCanCode/tgwa-bridge/internal/bridge/telegram"
	"github.com/GriffinCanCode/tgwa-bridge/internal/chat"
	"github.com/GriffinCanCode/tgwa-bridge/internal/domain/session"
	"github.com/GriffinCanCode/tgwa-bridge/internal/infrastructure/config"
	"github.com/GriffinCanCode/tgwa-bridge/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/tgwa-bridge/internal/infrastructure/server"
	"github.com/GriffinCanCode/tgwa-bridge/internal/shared/id"
	"github.com/GriffinCanCode/tgwa-bridge/internal/shared/paths"
)

// Source is where posts come from.
type Source interface {
	bridge.FileResolver
	Run(ctx context.Context, handle telegram.Handler) error
}

// Deps are the collaborators the bridge is assembled from.
type Deps struct {
	Logger  *zap.Logger
	Metrics *monitoring.Metrics
	Store   *StoreHandle
	// NewAdapter constructs the chat client. It is called after the
	// session has been restored.
	NewAdapter func(loc paths.Location) chat.Adapter
	// NewSource connects to the post source. It is called once the chat
	// client is first ready.
	NewSource  func(ctx context.Context) (Source, error)
	Downloader bridge.Downloader
}

// App runs the bridge: restore, connect, back up on milestones, forward.
type App struct {
	cfg     *config.Config
	deps    Deps
	log     *zap.Logger
	metrics *monitoring.Metrics

	location paths.Location
	session  *session.Manager
	hub      *ws.Hub

	runID     id.RunID
	startedAt time.Time
	adapter   atomic.Pointer[chat.Adapter]
	lastEvent atomic.Pointer[chat.Event]
	listening atomic.Bool
}

// New assembles the bridge without touching the network.
func New(cfg *config.Config, deps Deps) (*App, error) {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Store == nil || deps.NewAdapter == nil || deps.NewSource == nil || deps.Downloader == nil {
		return nil, fmt.Errorf("incomplete dependencies")
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	runID := id.NewRunID()
	log := deps.Logger.With(zap.String("run_id", runID.String()))

	return &App{
		cfg:      cfg,
		deps:     deps,
		log:      log,
		metrics:  deps.Metrics,
		location: loc,
		session: session.NewManager(deps.Store, loc,
			session.WithLogger(log.Named("session")),
			session.WithMetrics(deps.Metrics),
			session.WithTimeout(cfg.Session.SyncTimeout),
		),
		hub:       ws.NewHub(log.Named("events"), deps.Metrics),
		runID:     runID,
		startedAt: time.Now(),
	}, nil
}

// Session returns the session continuity manager.
func (a *App) Session() *session.Manager {
	return a.session
}

// Report implements apihttp.Reporter.
func (a *App) Report() apihttp.Report {
	r := apihttp.Report{
		RunID:     a.runID.String(),
		StartedAt: a.startedAt,
		Session:   a.session.Snapshot(),
		LastEvent: a.lastEvent.Load(),
		Listening: a.listening.Load(),
	}
	if adapter := a.adapter.Load(); adapter != nil {
		r.ClientReady = (*adapter).Ready()
	}
	if a.deps.Store.Breaker != nil {
		r.Breaker = a.deps.Store.Breaker()
	}
	return r
}

// Run blocks until ctx is done or startup fails.
func (a *App) Run(ctx context.Context) error {
	a.log.Info("Starting bridge",
		zap.String("session", a.location.String()),
		zap.String("store", a.deps.Store.Name()),
	)

	var wg sync.WaitGroup
	defer wg.Wait()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if a.cfg.Status.Addr != "" {
		srv := server.New(server.Options{
			Addr:        a.cfg.Status.Addr,
			Development: a.cfg.Logging.Development,
			Logger:      a.log.Named("status"),
			Metrics:     a.metrics,
		}, a, a.hub)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := srv.Run(ctx); err != nil {
				a.log.Error("Status server stopped", zap.Error(err))
			}
		}()
	}
	defer a.hub.Close()

	// The client must not exist before its session file is in place.
	a.session.Restore(ctx)

	adapter := a.deps.NewAdapter(a.location)
	a.adapter.Store(&adapter)
	if snap, ok := adapter.(chat.SessionSnapshotter); ok {
		a.session.UseReader(snap.SnapshotSession)
		defer a.session.UseReader(nil)
	}

	ready := make(chan struct{})
	pumpDone := make(chan struct{})
	go func() {
		defer close(pumpDone)
		a.pump(ctx, adapter.Events(), ready)
	}()
	defer func() {
		if err := adapter.Close(); err != nil {
			a.log.Warn("Failed to close chat client", zap.Error(err))
		}
		<-pumpDone
		a.metrics.SetClientReady(false)
	}()

	if err := adapter.Initialize(ctx); err != nil {
		return fmt.Errorf("failed to initialize chat client: %w", err)
	}

	select {
	case <-ready:
	case <-ctx.Done():
		return nil
	}

	src, err := a.deps.NewSource(ctx)
	if err != nil {
		return err
	}
	fwd := bridge.NewForwarder(adapter, src, a.deps.Downloader, a.cfg.WhatsApp.ChatID,
		bridge.WithLogger(a.log.Named("bridge")),
		bridge.WithMetrics(a.metrics),
		bridge.WithMaxBytes(a.cfg.Media.MaxBytes),
	)

	a.listening.Store(true)
	defer a.listening.Store(false)
	return src.Run(ctx, func(ctx context.Context, post bridge.Post) {
		// Errors are logged and counted by the forwarder.
		_ = fwd.Forward(ctx, post)
	})
}

// pump applies every lifecycle event in order until the adapter closes
// its channel. ready is closed on the first READY.
func (a *App) pump(ctx context.Context, events <-chan chat.Event, ready chan<- struct{}) {
	// A backup started just before shutdown still gets its own timeout.
	saveCtx := context.WithoutCancel(ctx)
	var once sync.Once

	for e := range events {
		public := e
		if !a.cfg.Status.ExposeQR {
			public = e.Redacted()
		}
		a.lastEvent.Store(&public)
		a.metrics.RecordClientEvent(e.Kind.String())
		a.hub.Publish(public)
		a.logEvent(e)

		switch e.Kind {
		case chat.EventReady:
			a.metrics.SetClientReady(true)
			once.Do(func() { close(ready) })
		case chat.EventAuthFailed, chat.EventDisconnected:
			a.metrics.SetClientReady(false)
		}

		a.session.HandleEvent(saveCtx, e)
	}
}

func (a *App) logEvent(e chat.Event) {
	log := a.log.Named("client")
	switch e.Kind {
	case chat.EventQRIssued:
		log.Info("Scan the QR code to link WhatsApp")
	case chat.EventAuthenticated:
		log.Info("WhatsApp authenticated")
	case chat.EventReady:
		log.Info("WhatsApp client ready")
	case chat.EventAuthFailed:
		log.Error("WhatsApp authentication failed", zap.String("reason", e.Detail), zap.Bool("reset", e.Reset))
	case chat.EventDisconnected:
		log.Warn("WhatsApp disconnected", zap.String("reason", e.Detail))
	}
}
