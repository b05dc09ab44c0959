// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/shajara/internal/api"
	"github.com/starford/shajara/internal/cache"
	"github.com/starford/shajara/internal/index"
	"github.com/starford/shajara/internal/mcpserver"
	"github.com/starford/shajara/internal/metrics"
	"github.com/starford/shajara/internal/sse"
	"github.com/starford/shajara/internal/storage"
	"github.com/starford/shajara/internal/treeservice"
	"github.com/starford/shajara/internal/watcher"
)

const (
	treeThrottle    = 2 * time.Second
	shutdownTimeout = 10 * time.Second
)

// components are the long-lived pieces shared by the HTTP and MCP modes.
type components struct {
	logger *slog.Logger
	store  *storage.FS
	db     *index.DB
	cache  cache.Cache
	svc    *treeservice.Service
}

func (c *components) close() {
	if err := c.cache.Close(); err != nil {
		c.logger.Warn("cache close failed", slog.String("error", err.Error()))
	}
	if err := c.db.Close(); err != nil {
		c.logger.Warn("index close failed", slog.String("error", err.Error()))
	}
}

func newApplication(opts []Option) (*application, error) {
	app := &application{logOutput: os.Stdout, version: "dev"}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

// bootstrap opens storage, index and cache, builds the tree service and
// loads every source once.
func bootstrap(ctx context.Context, app *application, notifier treeservice.Notifier) (*components, error) {
	cfg := app.config

	logger := NewLogger(app.logOutput, cfg.App.LogLevel, cfg.App.LogFormat)
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("sources_path", cfg.Sources.Path),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("cache_backend", cfg.Cache.Backend),
		slog.Int("families", len(cfg.Families)),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Ensure sources directory exists.
	if err := os.MkdirAll(cfg.Sources.Path, 0o755); err != nil {
		return nil, fmt.Errorf("create sources dir: %w", err)
	}

	store, err := storage.NewFS(cfg.Sources.Path)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("init index: %w", err)
	}

	c, err := cache.New(ctx, cfg.Cache.Options())
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init cache: %w", err)
	}

	svcOpts := cfg.ServiceOptions()
	svcOpts.Notifier = notifier
	svc := treeservice.NewService(store, db, c, logger, svcOpts)

	// Run initial sync.
	if err := svc.Sync(ctx); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	return &components{logger: logger, store: store, db: db, cache: c, svc: svc}, nil
}

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	// SSE broker.
	broker := sse.NewBroker(treeThrottle)
	defer broker.Close()

	comp, err := bootstrap(ctx, app, broker)
	if err != nil {
		return err
	}
	defer comp.close()
	logger := comp.logger

	apiRouter := api.NewRouter(comp.svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if len(comp.svc.Sources()) == 0 {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"no sources loaded"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Prometheus metrics (unauthenticated).
	r.Handle("/metrics", metrics.Handler())

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Start source watcher. Events reach SSE clients through the service notifier.
	g.Go(func() error {
		err := watcher.Watch(gCtx, comp.svc, comp.store, logger, func(kind, path string) {
			logger.Debug("watcher: event", slog.String("kind", kind), slog.String("path", path))
		})
		if err != nil {
			logger.Error("watcher stopped", slog.String("error", err.Error()))
		}
		return nil
	})

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown cancels the group once the server has been shut down so the
// watcher returns too.
var errShutdown = errors.New("shutdown")

// RunMCP serves the MCP tools on stdin/stdout. Logs go to stderr unless
// another writer is configured, since stdout carries the protocol.
func RunMCP(ctx context.Context, opts ...Option) error {
	app, err := newApplication(append([]Option{WithLogOutput(os.Stderr)}, opts...))
	if err != nil {
		return err
	}

	comp, err := bootstrap(ctx, app, nil)
	if err != nil {
		return err
	}
	defer comp.close()

	wctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		if err := watcher.Watch(wctx, comp.svc, comp.store, comp.logger, nil); err != nil {
			comp.logger.Error("watcher stopped", slog.String("error", err.Error()))
		}
	}()

	comp.logger.Info("MCP server starting on stdio", slog.String("version", app.version))
	return mcpserver.New(comp.svc, app.version).ServeStdio()
}
