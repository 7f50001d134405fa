// Package main is the entry point for the tripmatch API server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/pkordes/tripmatch/internal/config"
	"github.com/pkordes/tripmatch/internal/handler"
	"github.com/pkordes/tripmatch/internal/middleware"
	"github.com/pkordes/tripmatch/internal/repo"
	"github.com/pkordes/tripmatch/internal/service"
	"github.com/pkordes/tripmatch/migrations"
)

func main() {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		// The default slog handler writes to stderr before ours is configured.
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	logger := newLogger(os.Stdout, cfg)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Storage ----------------------------------------------------------
	repos, closeRepos, err := openRepos(ctx, cfg)
	if err != nil {
		slog.Error("storage setup failed", "error", err)
		os.Exit(1)
	}
	defer closeRepos()

	// --- Services & router ------------------------------------------------
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      newRouter(cfg, logger, repos),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown: on SIGINT/SIGTERM give in-flight requests up to
	// 15 seconds to complete before forcefully closing.
	errc := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", srv.Addr, "memory_store", cfg.UsesMemory())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	select {
	case err := <-errc:
		slog.Error("server error", "error", err)
		os.Exit(1)
	case <-ctx.Done():
	}
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// repositories bundles the repos the services consume and the transactor
// that runs their multi-step writes atomically.
type repositories struct {
	contacts repo.ContactRepo
	meetings repo.MeetingRepo
	trips    repo.TripRepo
	tx       repo.Transactor
}

// openRepos connects to Postgres, or falls back to the in-memory store when
// no DATABASE_URL is configured. The returned func releases the connection.
func openRepos(ctx context.Context, cfg config.Config) (repositories, func(), error) {
	if cfg.UsesMemory() {
		slog.Warn("DATABASE_URL not set, using in-memory store; data is lost on exit")
		store := repo.NewMemoryStore()
		return repositories{store.Contacts(), store.Meetings(), store.Trips(), store}, func() {}, nil
	}

	// pgxpool.New does not open connections immediately; the first query does.
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return repositories{}, nil, err
	}
	// Verify the DB is reachable before accepting traffic.
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return repositories{}, nil, err
	}
	slog.Info("database connection established")

	if cfg.MigrateOnStart {
		db := stdlib.OpenDBFromPool(pool)
		applied, err := migrations.Up(ctx, db)
		_ = db.Close()
		if err != nil {
			pool.Close()
			return repositories{}, nil, err
		}
		slog.Info("migrations applied", "count", applied)
	}

	return repositories{
		contacts: repo.NewContactRepo(pool),
		meetings: repo.NewMeetingRepo(pool),
		trips:    repo.NewTripRepo(pool),
		tx:       repo.NewTransactor(pool),
	}, pool.Close, nil
}

// newLogger builds the process logger from LOG_FORMAT and LOG_LEVEL.
func newLogger(w io.Writer, cfg config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	if cfg.LogFormat == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// newRouter wires services, handlers and the middleware stack.
//
// Middleware is applied in order: RequestID → RealIP → Logger → Recoverer →
// CORS → MaxBodySize. RequestID generates a trace ID per request, RealIP
// trusts X-Forwarded-For / X-Real-IP, and Recoverer turns panics into 500s.
func newRouter(cfg config.Config, logger *slog.Logger, repos repositories) http.Handler {
	server := handler.NewServer(
		service.NewContactService(repos.contacts),
		service.NewMeetingService(repos.meetings, repos.contacts, repos.tx),
		service.NewTripService(repos.trips, repos.tx),
		service.NewCorrelationService(repos.meetings, repos.trips, repos.tx, nil),
	)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))
	r.Mount("/", server.Routes())
	return r
}
