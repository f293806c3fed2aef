// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/newsdesk/internal/api"
	"github.com/starford/newsdesk/internal/document"
	"github.com/starford/newsdesk/internal/ledger"
	"github.com/starford/newsdesk/internal/mcpserver"
	"github.com/starford/newsdesk/internal/newsletter"
	"github.com/starford/newsdesk/internal/scheduler"
	"github.com/starford/newsdesk/internal/sources/calendar"
	"github.com/starford/newsdesk/internal/sources/feed"
	"github.com/starford/newsdesk/internal/sources/github"
	"github.com/starford/newsdesk/internal/sse"
	"github.com/starford/newsdesk/internal/storage"
	"github.com/starford/newsdesk/internal/watch"
)

// App is a fully wired newsletter service for one document.
type App struct {
	Service *newsletter.Service
	File    string
	Logger  *slog.Logger

	config *Config
	store  *storage.FS
	ledger *ledger.DB
}

// Close releases the ledger.
func (a *App) Close() error {
	return a.ledger.Close()
}

// NewLogger builds the configured slog logger and installs it as the default.
func NewLogger(cfg *Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.App.LogLevel}
	var h slog.Handler
	if cfg.App.LogFormat == LogFormatText {
		h = slog.NewTextHandler(w, opts)
	} else {
		h = slog.NewJSONHandler(w, opts)
	}
	logger := slog.New(h)
	slog.SetDefault(logger)
	return logger
}

// Open wires storage, ledger, record sources and the document engine.
func Open(opts ...Option) (*App, error) {
	app, err := newApplication(opts)
	if err != nil {
		return nil, err
	}
	return app.open(nil)
}

func newApplication(opts []Option) (*application, error) {
	app := &application{logOutput: os.Stderr, version: "dev"}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if app.file == "" {
		app.file = app.config.Document.File
	}
	return app, nil
}

func (app *application) open(notify func(newsletter.Update)) (*App, error) {
	cfg := app.config
	logger := NewLogger(cfg, app.logOutput)

	logger.Debug("Configuration loaded",
		slog.String("document_dir", cfg.Document.Dir),
		slog.String("document_file", app.file),
		slog.String("ledger_path", cfg.Ledger.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	store, err := storage.NewFS(cfg.Document.Dir)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	db, err := ledger.Open(cfg.Ledger.Path)
	if err != nil {
		return nil, fmt.Errorf("init ledger: %w", err)
	}

	hc := &http.Client{Timeout: cfg.Sources.HTTPTimeout}
	feeds := feed.NewClient(
		feed.WithHTTPClient(hc),
		feed.WithVideoFeedBase(cfg.Sources.Videos.FeedBase),
		feed.WithLogger(logger))
	cal := calendar.NewClient(
		calendar.WithHTTPClient(hc),
		calendar.WithLogger(logger))
	gh := github.NewClient(
		github.WithHTTPClient(hc),
		github.WithBaseURL(cfg.Sources.GitHub.APIURL),
		github.WithToken(cfg.Sources.GitHub.Token),
		github.WithSuffix(cfg.Sources.GitHub.Suffix),
		github.WithLogger(logger))

	patcher := document.NewPatcher(store,
		document.WithRenderer(document.NewRenderer(cfg.UpcomingDefaults, logger)),
		document.WithLogger(logger))

	svcOpts := []newsletter.Option{
		newsletter.WithLedger(db),
		newsletter.WithNewsSource(feeds),
		newsletter.WithVideoSource(feeds),
		newsletter.WithCalendar(cal),
		newsletter.WithDemoLister(gh),
		newsletter.WithSettings(cfg.Settings()),
		newsletter.WithLogger(logger),
	}
	if notify != nil {
		svcOpts = append(svcOpts, newsletter.WithNotifier(notify))
	}

	return &App{
		Service: newsletter.NewService(store, patcher, svcOpts...),
		File:    app.file,
		Logger:  logger,
		config:  cfg,
		store:   store,
		ledger:  db,
	}, nil
}

// Run serves the HTTP API, the event stream, the file watcher and, when a
// schedule is configured, the periodic refresh until ctx ends or a signal
// arrives.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	a, err := app.open(func(u newsletter.Update) {
		broker.PublishDocumentEvent(sse.DocumentEvent{
			Path:     u.Path,
			Section:  u.Section,
			Checksum: u.Checksum,
			Origin:   u.Origin,
		})
	})
	if err != nil {
		return err
	}
	defer a.Close()
	logger := a.Logger

	apiRouter := api.NewRouter(a.Service, a.File, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

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
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("document", a.File))

	var sched *scheduler.Scheduler
	if cfg.App.Schedule != "" {
		sched, err = scheduler.New(cfg.App.Schedule, func(ctx context.Context) error {
			_, err := a.Service.UpdateAll(newsletter.WithOrigin(ctx, newsletter.OriginScheduler), a.File)
			return err
		}, logger)
		if err != nil {
			return err
		}
	}

	g, gCtx := errgroup.WithContext(ctx)

	// Hand edits to the document reach SSE clients too.
	g.Go(func() error {
		w := watch.New(a.store, a.File, a.ledger, logger)
		if err := w.Run(gCtx, func(c watch.Change) {
			if !c.External {
				return
			}
			broker.PublishDocumentEvent(sse.DocumentEvent{
				Path:     c.Path,
				Checksum: c.Checksum,
				External: true,
			})
		}); err != nil {
			logger.Warn("watcher stopped", slog.String("error", err.Error()))
		}
		return nil
	})

	if sched != nil {
		g.Go(func() error { return sched.Run(gCtx) })
	}

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

// errShutdown cancels the group's context so the watcher and scheduler stop
// with the HTTP server.
var errShutdown = errors.New("shutdown")

// RunMCP serves the MCP tools over stdio.
func RunMCP(_ context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	a, err := app.open(nil)
	if err != nil {
		return err
	}
	defer a.Close()

	a.Logger.Info("MCP server starting", slog.String("document", a.File))
	return mcpserver.New(a.Service, a.File, app.version).ServeStdio()
}
