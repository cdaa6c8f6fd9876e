package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/JonMunkholm/gridview/internal/config"
	"github.com/JonMunkholm/gridview/internal/core"
	"github.com/JonMunkholm/gridview/internal/core/tables" // Registers the built-in tables
	"github.com/JonMunkholm/gridview/internal/logging"
	"github.com/JonMunkholm/gridview/internal/metrics"
	"github.com/JonMunkholm/gridview/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	cleanup := logging.Setup(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		SeqURL: cfg.Logging.SeqURL,
	})
	defer cleanup()

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"database", cfg.Database.Enabled(),
		"default_page_size", cfg.View.DefaultPageSize,
		"max_sessions", cfg.View.MaxSessions,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)
	slog.Debug("effective configuration", "config", cfg.String())

	ctx := context.Background()
	if cfg.Database.Enabled() {
		pool, err := connect(ctx, cfg.Database)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		tables.RegisterPostgres(pool)
	}

	core.LoadTimeout = cfg.View.LoadTimeout

	var m *metrics.Metrics
	var observer core.Observer
	if cfg.Metrics.Enabled {
		m = metrics.New(prometheus.NewRegistry())
		observer = m
	}

	service, err := core.NewService(core.Options{
		DefaultPageSize: cfg.View.DefaultPageSize,
		PageSizeOptions: cfg.View.PageSizeOptions,
		MaxPageSize:     cfg.View.MaxPageSize,
		MaxSessions:     cfg.View.MaxSessions,
		CacheTTL:        cfg.View.CacheTTL,
		MaxExports:      cfg.View.MaxConcurrentExports,
		ExportWait:      cfg.View.ExportWait,
		Observer:        observer,
	})
	if err != nil {
		slog.Error("failed to create service", "error", err)
		os.Exit(1)
	}

	slog.Info("tables registered",
		"count", core.TableCount(),
		"groups", len(core.Groups()),
	)
	for _, group := range core.Groups() {
		slog.Debug("table group", "group", group, "tables", len(core.ByGroup(group)))
	}

	server := web.NewServer(service, cfg, m)

	// Create cancellable context for background jobs
	jobCtx, cancelJobs := context.WithCancel(ctx)
	go service.StartSessionReaper(jobCtx, cfg.View.ReaperInterval, cfg.View.SessionIdleTimeout)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}

		// Exports in flight keep their connections until they finish
		if st := service.ExportStatus(); st.Active > 0 {
			slog.Info("waiting for exports to complete", "active", st.Active)
			if err := service.WaitForExports(shutdownCtx); err != nil {
				slog.Warn("exports did not complete in time", "error", err)
			}
		}
	}()

	if err := server.Start(cfg.Server.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		cleanup()
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// connect opens and verifies the connection pool.
func connect(ctx context.Context, db config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(db.URL)
	if err != nil {
		return nil, err
	}
	poolConfig.MaxConns = int32(db.MaxConns)
	poolConfig.MinConns = int32(db.MinConns)
	poolConfig.MaxConnLifetime = db.MaxConnLifetime
	poolConfig.MaxConnIdleTime = db.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	// Log which database we connected to
	if u, err := url.Parse(db.URL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	}
	return pool, nil
}
