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

	"github.com/starford/mdxmend/internal/api"
	"github.com/starford/mdxmend/internal/console"
	"github.com/starford/mdxmend/internal/ledger"
	"github.com/starford/mdxmend/internal/mcpserver"
	"github.com/starford/mdxmend/internal/mendservice"
	"github.com/starford/mdxmend/internal/models"
	"github.com/starford/mdxmend/internal/sse"
	"github.com/starford/mdxmend/internal/storage"
	"github.com/starford/mdxmend/internal/watcher"
)

// session is everything a command needs once configuration is loaded.
type session struct {
	app    *application
	logger *slog.Logger
	out    *console.Printer
	svc    *mendservice.Service
	ledger *ledger.DB
}

func (rt *session) Close() {
	if rt.ledger != nil {
		if err := rt.ledger.Close(); err != nil {
			rt.logger.Warn("ledger close failed", slog.String("error", err.Error()))
		}
	}
}

// bootstrap applies opts and wires logger, storage, ledger and service.
// Logs go to errOut so stdout stays the console surface. The ledger is
// opened only when the config enables it and the command records or reads
// runs.
func bootstrap(opts []Option, useLedger bool) (*session, error) {
	app := &application{
		in:      os.Stdin,
		out:     os.Stdout,
		errOut:  os.Stderr,
		version: "dev",
	}
	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	cfg := app.config

	logger := slog.New(slog.NewJSONHandler(app.errOut, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Debug("Configuration loaded",
		slog.String("docs_path", cfg.Docs.Path),
		slog.String("extension", cfg.Docs.Extension),
		slog.Bool("ledger_enabled", cfg.Ledger.Enabled),
		slog.String("ledger_path", cfg.Ledger.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	store, err := storage.NewFS(cfg.Docs.Path, cfg.Docs.Extension)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	rt := &session{
		app:    app,
		logger: logger,
		out:    console.ForWriter(app.out),
	}

	var rec ledger.Recorder
	if useLedger && cfg.Ledger.Enabled {
		db, err := ledger.Open(cfg.Ledger.Path)
		if err != nil {
			return nil, fmt.Errorf("init ledger: %w", err)
		}
		rt.ledger = db
		rec = db
	}

	rt.svc = mendservice.New(store, rec, rt.out, logger)
	return rt, nil
}

// Run is the default command: validate the directory, report findings and,
// when there are any, ask once before repairing in place.
func Run(ctx context.Context, opts ...Option) error {
	rt, err := bootstrap(opts, true)
	if err != nil {
		return err
	}
	defer rt.Close()

	findings, err := rt.svc.Check(ctx)
	if err != nil {
		return err
	}
	rt.out.Findings(findings)
	if len(findings) == 0 {
		return nil
	}

	return rt.repair(ctx, len(findings), "Do you want to fix these issues?")
}

// Check validates the directory and prints findings without changing anything.
func Check(ctx context.Context, opts ...Option) error {
	rt, err := bootstrap(opts, false)
	if err != nil {
		return err
	}
	defer rt.Close()

	findings, err := rt.svc.Check(ctx)
	if err != nil {
		return err
	}
	rt.out.Findings(findings)
	return nil
}

// Repair runs the selected passes regardless of validator findings. Broken
// titles are not something the validator reports, so this is the way to
// join them on a directory that otherwise checks clean.
func Repair(ctx context.Context, opts ...Option) error {
	rt, err := bootstrap(opts, true)
	if err != nil {
		return err
	}
	defer rt.Close()

	findings, err := rt.svc.Check(ctx)
	if err != nil {
		return err
	}
	return rt.repair(ctx, len(findings), fmt.Sprintf("Repair documents in %s?", rt.svc.Dir()))
}

func (rt *session) repair(ctx context.Context, findings int, question string) error {
	app := rt.app
	if !app.dryRun && !app.assumeYes && !rt.out.Confirm(app.in, question) {
		rt.out.Declined()
		return nil
	}

	run, err := rt.svc.Repair(ctx, mendservice.RepairOptions{
		DryRun:     app.dryRun,
		SkipTitles: app.skipTitles,
		SkipSyntax: app.skipSyntax,
		Findings:   findings,
	})
	if err != nil {
		return err
	}
	rt.out.Run(*run)
	return nil
}

// History prints recorded runs, or the outcomes of one run when runID > 0.
func History(ctx context.Context, runID int64, limit int, opts ...Option) error {
	rt, err := bootstrap(opts, true)
	if err != nil {
		return err
	}
	defer rt.Close()

	if runID > 0 {
		run, err := rt.svc.GetRun(ctx, runID)
		if err != nil {
			return fmt.Errorf("history: run %d: %w", runID, err)
		}
		rt.out.Runs([]models.Run{*run})
		rt.out.Outcomes(run.Outcomes)
		return nil
	}

	runs, err := rt.svc.Runs(ctx, limit)
	if err != nil {
		return fmt.Errorf("history: %w", err)
	}
	rt.out.Runs(runs)
	return nil
}

// Watch re-checks documents as they change until ctx is cancelled or a
// termination signal arrives.
func Watch(ctx context.Context, opts ...Option) error {
	rt, err := bootstrap(opts, false)
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := rt.app.config
	return watcher.Watch(ctx, rt.svc, watcher.Options{
		Debounce: cfg.Watch.Debounce,
		AutoFix:  cfg.Watch.AutoFix,
	}, rt.logger, rt.printEvent)
}

func (rt *session) printEvent(kind, name string, findings []models.Finding) {
	if kind == watcher.KindChecked && len(findings) > 0 {
		rt.out.Findings(findings)
	}
}

// ServeMCP exposes the service as MCP tools over stdio. Console output is
// discarded because stdout carries the protocol.
func ServeMCP(_ context.Context, opts ...Option) error {
	opts = append(opts, WithIO(os.Stdin, io.Discard, os.Stderr))
	rt, err := bootstrap(opts, true)
	if err != nil {
		return err
	}
	defer rt.Close()

	rt.logger.Info("MCP server starting on stdio", slog.String("dir", rt.svc.Dir()))
	return mcpserver.New(rt.svc, rt.app.version).ServeStdio()
}

// Serve starts the HTTP API, the SSE stream and the directory watcher.
func Serve(ctx context.Context, opts ...Option) error {
	rt, err := bootstrap(opts, true)
	if err != nil {
		return err
	}
	defer rt.Close()

	cfg := rt.app.config
	logger := rt.logger

	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	r := newHTTPRouter(rt.svc, cfg, broker)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("dir", rt.svc.Dir()))

	g, gCtx := errgroup.WithContext(ctx)

	// File watcher feeding SSE.
	g.Go(func() error {
		return watcher.Watch(gCtx, rt.svc, watcher.Options{
			Debounce: cfg.Watch.Debounce,
			AutoFix:  cfg.Watch.AutoFix,
		}, logger, broker.PublishDocumentEvent)
	})

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

		// Stop the watcher too when the shutdown came from a signal.
		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

var errShutdown = errors.New("shutdown requested")

func newHTTPRouter(svc *mendservice.Service, cfg *Config, broker *sse.Broker) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		if _, err := os.Stat(svc.Dir()); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Mount("/api", api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker))
	return r
}
