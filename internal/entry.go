// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/othala/internal/api"
	"github.com/starford/othala/internal/dataset"
	"github.com/starford/othala/internal/mcpserver"
	"github.com/starford/othala/internal/page"
	"github.com/starford/othala/internal/peopleservice"
	"github.com/starford/othala/internal/source"
	"github.com/starford/othala/internal/sse"
	"github.com/starford/othala/internal/storage"
	"github.com/starford/othala/internal/store"
)

var errConfigRequired = errors.New("config is required")

// runtime holds the components shared by every command.
type runtime struct {
	cfg    *Config
	logger *slog.Logger
	files  *storage.FS
	db     *store.DB
	svc    *peopleservice.Service
}

// open initializes logging, the data directory, the SQLite store and the
// people service, and runs the initial sync.
func open(opts []Option) (*runtime, error) {
	app, err := newApplication(opts)
	if err != nil {
		return nil, err
	}
	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(app.logOutput, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("data_dir", cfg.Data.Dir),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("source", cfg.Source.Kind),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Ensure data directory exists.
	if err := os.MkdirAll(cfg.Data.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	files, err := storage.NewFS(cfg.Data.Dir)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	db, err := store.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}

	if err := store.Sync(db, files, logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	src, err := source.New(cfg.Source.Provider(), db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init source: %w", err)
	}

	return &runtime{
		cfg:    cfg,
		logger: logger,
		files:  files,
		db:     db,
		svc:    peopleservice.NewService(src, db, logger),
	}, nil
}

// Handler builds the full HTTP handler: middleware, health checks, the
// people page and the JSON API.
// events serves the SSE stream and notify receives dataset changes made
// through the API; both may be nil.
func Handler(svc *peopleservice.Service, cfg *Config, files storage.Provider, db *store.DB,
	events http.Handler, notify store.EventCallback) http.Handler {
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
		if _, err := db.Count(); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, page.BasePath, http.StatusFound)
	})
	r.Mount(page.BasePath, api.NewPageRouter(svc))
	r.Mount("/api", api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, events, files, db, notify))

	return r
}

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	rt, err := open(opts)
	if err != nil {
		return err
	}
	defer rt.db.Close()

	cfg, logger := rt.cfg, rt.logger

	// SSE broker.
	broker := sse.NewBroker(cfg.Events.Throttle)
	defer broker.Close()

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: Handler(rt.svc, cfg, rt.files, rt.db, broker, broker.PublishDatasetEvent),
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Start data dir watcher with SSE callback.
	g.Go(func() error {
		if err := store.Watch(gCtx, rt.db, rt.files, rt.files.Root(), logger, broker.PublishDatasetEvent); err != nil {
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

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		// Open SSE streams end with the broker.
		broker.Close()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// Import syncs the data directory into SQLite once and reports the result.
func Import(_ context.Context, opts ...Option) (int, error) {
	rt, err := open(opts)
	if err != nil {
		return 0, err
	}
	defer rt.db.Close()

	n, err := rt.db.Count()
	if err != nil {
		return 0, err
	}
	rt.logger.Info("Import finished", slog.Int("people", n))
	return n, nil
}

// Fetch downloads the people API at rawURL into out under the data directory,
// after checking that the payload is a valid dataset. An empty out derives
// the file name from the URL path.
func Fetch(ctx context.Context, rawURL, out string, opts ...Option) (string, error) {
	rt, err := open(opts)
	if err != nil {
		return "", err
	}
	defer rt.db.Close()

	if out == "" {
		if u, err := url.Parse(rawURL); err == nil {
			out = path.Base(u.Path)
		}
	}
	if out == "" || out == "." || out == "/" {
		out = "people"
	}
	if !dataset.IsDatasetFile(out) {
		out += ".json"
	}

	var hopts []source.HTTPOption
	if rt.cfg.Source.Token != "" {
		hopts = append(hopts, source.WithToken(rt.cfg.Source.Token))
	}
	data, err := source.NewHTTP(rawURL, rt.cfg.Source.Timeout, hopts...).Fetch(ctx)
	if err != nil {
		return "", err
	}
	list, err := dataset.Decode(out, data)
	if err != nil {
		return "", err
	}
	if err := rt.db.CheckSlugs(out, list); err != nil {
		return "", err
	}
	if err := rt.files.Write(out, data); err != nil {
		return "", err
	}
	if err := store.Import(rt.db, out, data); err != nil {
		return "", err
	}
	rt.logger.Info("Fetch finished", slog.String("path", out), slog.Int("people", len(list)))
	return out, nil
}

// ServeMCP serves the MCP tools on stdin/stdout. Logs go to stderr.
func ServeMCP(_ context.Context, opts ...Option) error {
	rt, err := open(append(opts, WithLogOutput(os.Stderr)))
	if err != nil {
		return err
	}
	defer rt.db.Close()

	return mcpserver.New(rt.svc, rt.files, rt.db).ServeStdio()
}
