package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/JonMunkholm/docimport/internal/catalog"
	"github.com/JonMunkholm/docimport/internal/config"
	"github.com/JonMunkholm/docimport/internal/core"
	"github.com/JonMunkholm/docimport/internal/database"
	"github.com/JonMunkholm/docimport/internal/logging"
	"github.com/JonMunkholm/docimport/internal/web"
)

func main() {
	// Values in .env take precedence over the inherited environment.
	envLoaded := godotenv.Overload() == nil

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("configuration loaded",
		"dotenv", envLoaded,
		"addr", cfg.Server.Addr(),
		"import_max_concurrent", cfg.Import.MaxConcurrent,
		"catalog_cache_ttl", cfg.Catalog.CacheTTL,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)
	slog.Debug("configuration", "config", cfg.String())

	if err := run(cfg); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := openPool(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()

	if cfg.Database.Migrate {
		if err := database.Migrate(ctx, pool); err != nil {
			return err
		}
		slog.Info("schema applied")
	}

	src := catalog.NewCached(catalog.NewPostgres(pool), cfg.Catalog.CacheTTL)
	service := core.NewService(src, core.NewPGStore(pool), importOptions(cfg.Import))
	server := web.NewServer(service, cfg, pool.Ping)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", cfg.Server.Addr())
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	// Stop taking requests before waiting on imports already running.
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("http shutdown", "error", err)
	}

	limiter := service.Limiter()
	if n := limiter.ActiveCount(); n > 0 {
		slog.Info("waiting for imports", "active", n)
		if err := limiter.WaitForDrain(shutdownCtx); err != nil {
			slog.Warn("imports still running at exit", "active", limiter.ActiveCount())
		}
	}
	return nil
}

// openPool connects to PostgreSQL and verifies the connection.
func openPool(ctx context.Context, db config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(db.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	poolConfig.MaxConns = int32(db.MaxConns)
	poolConfig.MinConns = int32(db.MinConns)
	poolConfig.MaxConnLifetime = db.MaxConnLifetime
	poolConfig.MaxConnIdleTime = db.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	name := ""
	if u, err := url.Parse(db.URL); err == nil {
		name = strings.TrimPrefix(u.Path, "/")
	}
	slog.Info("connected to database", "name", name, "max_conns", db.MaxConns)
	return pool, nil
}

func importOptions(c config.ImportConfig) core.Options {
	return core.Options{
		MaxFileSize:    c.MaxFileSize,
		MaxRows:        c.MaxRows,
		LenientHeaders: c.LenientHeaders,
		RequireColumns: c.RequireColumns,
		Timeout:        c.Timeout,
		MaxConcurrent:  c.MaxConcurrent,
		MaxWaitTime:    c.MaxWaitTime,
		HistoryLimit:   c.HistoryLimit,
	}
}
