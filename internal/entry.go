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
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/starford/vetbridge/internal/api"
	"github.com/starford/vetbridge/internal/catalog"
	"github.com/starford/vetbridge/internal/llm"
	"github.com/starford/vetbridge/internal/matchservice"
	"github.com/starford/vetbridge/internal/mcpserver"
	"github.com/starford/vetbridge/internal/metrics"
	"github.com/starford/vetbridge/internal/recommend"
	"github.com/starford/vetbridge/internal/search"
	"github.com/starford/vetbridge/internal/sse"
	"github.com/starford/vetbridge/internal/storage"
	"github.com/starford/vetbridge/internal/taxonomy"
	"github.com/starford/vetbridge/internal/triage"
)

// runtime is everything the serve, mcp and sync commands share.
type runtime struct {
	cfg    *Config
	logger *slog.Logger
	store  *storage.FS
	db     *catalog.DB
	svc    *matchservice.Service
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

// bootstrap opens the catalog, runs the initial sync and wires the engine.
func bootstrap(app *application) (*runtime, error) {
	cfg := app.config

	logger := slog.New(slog.NewJSONHandler(app.logOutput, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("catalog_dir", cfg.Catalog.Dir),
		slog.String("sqlite_path", cfg.Catalog.SQLitePath),
		slog.String("llm_provider", cfg.LLM.Provider),
		slog.String("log_level", cfg.App.LogLevel.String()))

	if err := os.MkdirAll(cfg.Catalog.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create catalog dir: %w", err)
	}
	store, err := storage.NewFS(cfg.Catalog.Dir)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	db, err := catalog.Open(cfg.Catalog.SQLitePath)
	if err != nil {
		return nil, fmt.Errorf("init catalog: %w", err)
	}

	if _, err := catalog.Sync(db, store, logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	gen, err := llm.New(cfg.GeneratorConfig(), logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init llm: %w", err)
	}

	tax := taxonomy.Default()
	engine := search.NewEngine(db, tax, cfg.EngineConfig(), logger)
	builder := recommend.New(engine, cfg.RecommendBuilderConfig(), logger)
	machine := triage.New(gen, builder, tax, cfg.TriageConfig(), logger)

	return &runtime{
		cfg:    cfg,
		logger: logger,
		store:  store,
		db:     db,
		svc:    matchservice.New(engine, builder, machine, tax),
	}, nil
}

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	rt, err := bootstrap(app)
	if err != nil {
		return err
	}
	defer rt.db.Close()

	cfg := rt.cfg
	logger := rt.logger

	broker := sse.NewBroker(cfg.Catalog.EventThrottle)
	defer broker.Close()

	apiRouter := api.NewRouter(rt.svc, broker, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		writeStatus(w, http.StatusOK, "ok")
	})
	r.Get("/health/ready", func(w http.ResponseWriter, req *http.Request) {
		if err := rt.db.Ping(req.Context()); err != nil {
			logger.Warn("readiness check failed", slog.String("error", err.Error()))
			writeStatus(w, http.StatusServiceUnavailable, "catalog unavailable")
			return
		}
		writeStatus(w, http.StatusOK, "ok")
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	if cfg.Catalog.Watch {
		g.Go(func() error {
			err := catalog.Watch(gCtx, rt.db, rt.store, cfg.Catalog.Dir, logger, func(kind, id string) {
				metrics.RecordCatalogEvent(kind)
				broker.PublishResourceChange(kind, id)
			})
			if err != nil {
				logger.Error("catalog watcher stopped", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

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

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		return context.Canceled
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// RunMCP serves the engine as MCP tools on stdin/stdout until the client
// disconnects. The catalog is kept current by the watcher meanwhile.
func RunMCP(ctx context.Context, opts ...Option) error {
	app, err := newApplication(append([]Option{WithLogOutput(os.Stderr)}, opts...))
	if err != nil {
		return err
	}
	rt, err := bootstrap(app)
	if err != nil {
		return err
	}
	defer rt.db.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	if rt.cfg.Catalog.Watch {
		go func() {
			err := catalog.Watch(ctx, rt.db, rt.store, rt.cfg.Catalog.Dir, rt.logger, func(kind, _ string) {
				metrics.RecordCatalogEvent(kind)
			})
			if err != nil {
				rt.logger.Error("catalog watcher stopped", slog.String("error", err.Error()))
			}
		}()
	}

	rt.logger.Info("MCP server starting on stdio")
	if err := mcpserver.New(rt.svc, app.version).ServeStdio(); err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}

// RunSync reconciles the catalog with its directory once and returns the
// stats.
func RunSync(_ context.Context, opts ...Option) (catalog.SyncStats, error) {
	app, err := newApplication(opts)
	if err != nil {
		return catalog.SyncStats{}, err
	}
	cfg := app.config
	logger := slog.New(slog.NewJSONHandler(app.logOutput, &slog.HandlerOptions{Level: cfg.App.LogLevel}))

	store, err := storage.NewFS(cfg.Catalog.Dir)
	if err != nil {
		return catalog.SyncStats{}, fmt.Errorf("init storage: %w", err)
	}
	db, err := catalog.Open(cfg.Catalog.SQLitePath)
	if err != nil {
		return catalog.SyncStats{}, fmt.Errorf("init catalog: %w", err)
	}
	defer db.Close()
	return catalog.Sync(db, store, logger)
}

// RunInit writes the starter resource documents into the catalog directory,
// skipping any that already exist.
func RunInit(_ context.Context, opts ...Option) (int, error) {
	app, err := newApplication(opts)
	if err != nil {
		return 0, err
	}
	cfg := app.config
	logger := slog.New(slog.NewJSONHandler(app.logOutput, &slog.HandlerOptions{Level: cfg.App.LogLevel}))

	if err := os.MkdirAll(cfg.Catalog.Dir, 0o755); err != nil {
		return 0, fmt.Errorf("create catalog dir: %w", err)
	}
	store, err := storage.NewFS(cfg.Catalog.Dir)
	if err != nil {
		return 0, fmt.Errorf("init storage: %w", err)
	}
	return catalog.Seed(store, logger)
}

func writeStatus(w http.ResponseWriter, code int, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = fmt.Fprintf(w, `{"status":%q}`, status)
}
