package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apihttp "github.com/GriffinCanCode/tgwa-bridge/internal/api/http"
	"github.com/GriffinCanCode/tgwa-bridge/internal/api/middleware"
	"github.com/GriffinCanCode/tgwa-bridge/internal/api/ws"
	"github.com/GriffinCanCode/tgwa-bridge/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/tgwa-bridge/internal/infrastructure/tracing"
)

const shutdownTimeout = 5 * time.Second

// Options configures the status server.
type Options struct {
	Addr        string
	Development bool
	Logger      *zap.Logger
	Metrics     *monitoring.Metrics
	RateLimit   middleware.RateLimitConfig
}

// Server is the read-only status server.
type Server struct {
	router *gin.Engine
	http   *http.Server
	tracer *tracing.Tracer
	log    *zap.Logger
}

// New creates the status server.
func New(opts Options, reporter apihttp.Reporter, hub *ws.Hub) *Server {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if opts.RateLimit.RequestsPerSecond == 0 {
		opts.RateLimit = middleware.DefaultRateLimitConfig()
	}

	if !opts.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	tracer := tracing.New("status", log.Named("trace"))

	router.Use(gin.Recovery())
	router.Use(tracing.HTTPMiddleware(tracer))
	router.Use(monitoring.Middleware(opts.Metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	router.Use(middleware.GlobalRateLimit(opts.RateLimit))

	handlers := apihttp.NewHandlers(reporter)

	router.GET("/", handlers.Root)
	router.GET("/health", handlers.Health)
	router.GET("/ready", handlers.Ready)
	router.GET("/status", handlers.Status)
	router.GET("/events", hub.HandleConnection)
	if opts.Metrics != nil {
		router.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))
	}

	return &Server{
		router: router,
		http: &http.Server{
			Addr:              opts.Addr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		tracer: tracer,
		log:    log,
	}
}

// Handler exposes the router, for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.http.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	defer s.tracer.Close()
	s.log.Info("Starting status server", zap.String("addr", ln.Addr().String()))

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.http.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("status server failed: %w", err)
	case <-ctx.Done():
	}

	s.log.Info("Shutting down status server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down status server: %w", err)
	}
	return nil
}
