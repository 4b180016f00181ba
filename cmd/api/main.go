package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/crucial707/journal-prompt-api/internal/config"
	"github.com/crucial707/journal-prompt-api/internal/db"
	"github.com/crucial707/journal-prompt-api/internal/handlers"
	"github.com/crucial707/journal-prompt-api/internal/middleware"
	"github.com/crucial707/journal-prompt-api/internal/repo"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// A local .env is optional; real environment variables take precedence.
	_ = godotenv.Load()

	cfg := config.Load()
	setupLogger(cfg.LogFormat)

	if cfg.AuthUsername == "" || cfg.AuthPassword == "" {
		slog.Warn("AUTH_USERNAME or AUTH_PASSWORD not set; POST /prompts will reject every request")
	}

	// Connect to database FIRST
	database, err := db.Connect(cfg.DatabaseURL, cfg.DBMaxOpenConns, cfg.DBMaxIdleConns)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(); err != nil {
			slog.Error("close database", "error", err)
			return
		}
		slog.Info("database connection closed")
	}()
	slog.Info("connected to database")

	if err := db.Migrate(cfg.DatabaseURL); err != nil {
		return err
	}
	slog.Info("schema up to date")

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           newRouter(database, cfg),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", srv.Addr, "tls", useTLS(cfg))
		var err error
		if useTLS(cfg) {
			err = srv.ListenAndServeTLS(cfg.TLSCertFile, cfg.TLSKeyFile)
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newRouter builds the full HTTP surface on top of database.
func newRouter(database *sql.DB, cfg config.Config) http.Handler {
	prompts := &handlers.PromptHandler{Repo: repo.NewPromptRepo(database)}
	health := &handlers.HealthHandler{DB: database}
	gate := middleware.BasicAuth{Username: cfg.AuthUsername, Password: cfg.AuthPassword}
	limiter := middleware.AuthRateLimiter()

	r := chi.NewRouter()
	if cfg.TrustProxyHeaders {
		r.Use(chimw.RealIP)
	}
	r.Use(chimw.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestLog)
	r.Use(middleware.Prometheus)
	r.Use(middleware.SecurityHeaders(useTLS(cfg)))
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))

	r.Get("/", prompts.Root)
	r.Get("/random", prompts.Random)

	r.With(
		limiter.Middleware,
		gate.Middleware,
		middleware.MaxBytes(middleware.DefaultMaxBodyBytes),
	).Post("/prompts", prompts.CreatePrompt)

	r.Get("/health", health.Health)
	r.Get("/ready", health.Ready)
	r.Handle("/metrics", promhttp.Handler())

	return r
}

func useTLS(cfg config.Config) bool {
	return cfg.TLSCertFile != "" && cfg.TLSKeyFile != ""
}

func setupLogger(format string) {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	var h slog.Handler
	if strings.EqualFold(format, "json") {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(h))
}
