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

	"github.com/starford/munin/internal/analyze"
	"github.com/starford/munin/internal/api"
	"github.com/starford/munin/internal/mcpserver"
	"github.com/starford/munin/internal/pipeline"
	"github.com/starford/munin/internal/review"
	"github.com/starford/munin/internal/storage"
	"github.com/starford/munin/internal/vault"
)

// NewLogger builds the structured JSON logger and installs it as the
// process default.
func NewLogger(cfg *Config) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

// OpenVault wires the storage provider and vault layout from config.
// The vault root must exist; nothing below it is created here, so a
// vault without an observations directory still fails loudly at
// locate time.
func OpenVault(cfg *Config) (*vault.Vault, error) {
	store, err := storage.NewFS(cfg.Vault.Path)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	return vault.New(store, vault.Layout{
		Observations: cfg.Vault.Observations,
		Reviews:      cfg.Vault.Reviews,
		Templates:    cfg.Vault.Templates,
		Ignore:       cfg.Vault.Ignore,
	})
}

// NewPipeline assembles the review pipeline over an opened vault. A
// nil analyzer means the OpenAI-backed one, which requires an API key.
func NewPipeline(cfg *Config, v *vault.Vault, an analyze.Analyzer, logger *slog.Logger) (*pipeline.Pipeline, error) {
	var err error
	if an == nil {
		an, err = analyze.NewOpenAI(analyze.Options{
			APIKey:            cfg.OpenAI.APIKey,
			BaseURL:           cfg.OpenAI.BaseURL,
			Model:             cfg.OpenAI.Model,
			Temperature:       cfg.OpenAI.Temperature,
			MaxResponseTokens: cfg.OpenAI.MaxResponseTokens,
			MaxNoteTokens:     cfg.OpenAI.MaxNoteTokens,
		}, logger)
		if err != nil {
			return nil, err
		}
	}
	composer := review.NewComposer(v.Store(), cfg.Vault.Reviews)
	return pipeline.New(v, an, composer, logger, pipeline.Options{
		Concurrency: cfg.Review.Concurrency,
		CallTimeout: cfg.Review.CallTimeout(),
	}), nil
}

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config
	logger := NewLogger(cfg)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("vault_path", cfg.Vault.Path),
		slog.String("observations", cfg.Vault.Observations),
		slog.String("log_level", cfg.App.LogLevel.String()))

	v, err := OpenVault(cfg)
	if err != nil {
		return fmt.Errorf("init vault: %w", err)
	}
	pipe, err := NewPipeline(cfg, v, app.analyzer, logger)
	if err != nil {
		return fmt.Errorf("init pipeline: %w", err)
	}

	// Build API service and router.
	svc := api.NewService(pipe, cfg.Review.DefaultDays, logger)
	apiRouter := api.NewRouter(svc)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints.
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

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

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

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// ServeMCP runs the MCP stdio server with the given options. Logs go
// to stderr so stdout stays clean for the protocol.
func ServeMCP(_ context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	v, err := OpenVault(cfg)
	if err != nil {
		return fmt.Errorf("init vault: %w", err)
	}
	pipe, err := NewPipeline(cfg, v, app.analyzer, logger)
	if err != nil {
		return fmt.Errorf("init pipeline: %w", err)
	}

	srv := mcpserver.New(v, pipe)
	return srv.ServeStdio()
}
