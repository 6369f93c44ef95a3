package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fooddash/console-api/config"
	"github.com/fooddash/console-api/internal/bootstrap"
)

func main() {
	ctx := context.Background()
	logger := bootstrap.InitLogger("info")
	if err := run(ctx, logger); err != nil {
		logger.ErrorContext(ctx, "fatal error", "error", err)
		os.Exit(1) //nolint:forbidigo // Main entrypoint should exit with non-zero status on fatal errors.
	}
}

func run(ctx context.Context, logger *slog.Logger) error {
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return err
	}
	if cfg.Observability.LogLevel != "info" {
		logger = bootstrap.InitLogger(cfg.Observability.LogLevel)
	}

	logStartupInfo(ctx, logger, &cfg)

	db, stores, err := initInfrastructure(&cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			logger.ErrorContext(ctx, "close database failed", "error", cerr)
		}
	}()
	if stores.Redis != nil {
		defer func() {
			if cerr := stores.Redis.Close(); cerr != nil {
				logger.ErrorContext(ctx, "close redis failed", "error", cerr)
			}
		}()
	}

	if cfg.Postgres.RunMigrationsOnStart {
		if err = bootstrap.RunMigrations(ctx, db, logger); err != nil {
			return err
		}
	} else {
		logger.InfoContext(ctx, "skipping database migrations on startup", "reason", "disabled via config")
	}

	services, err := bootstrap.BuildServices(bootstrap.ServicesConfig{
		Config: &cfg,
		DB:     db,
		Stores: stores,
		Logger: logger,
	})
	if err != nil {
		return err
	}
	defer func() {
		if cerr := services.Metrics.Close(); cerr != nil {
			logger.ErrorContext(ctx, "close statsd client failed", "error", cerr)
		}
	}()

	server, err := bootstrap.StartHTTPServer(&bootstrap.HTTPServerConfig{
		Config:   &cfg,
		Services: services,
		Cache:    stores.Cache,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	// Block until interrupted, then drain in-flight requests.
	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-sigCtx.Done()

	return bootstrap.ShutdownHTTPServer(bootstrap.ShutdownConfig{
		Context: ctx,
		Server:  server,
		Timeout: cfg.HTTP.ShutdownTimeout,
		Logger:  logger,
	})
}

func logStartupInfo(ctx context.Context, logger *slog.Logger, cfg *config.AppConfig) {
	logger.InfoContext(ctx, "starting console gateway",
		"auth_mode", cfg.Auth.Mode,
		"backend", cfg.Backend.BaseURL,
		"db_host", cfg.Postgres.Host,
		"db_name", cfg.Postgres.Name,
		"addr", cfg.HTTP.Addr)
}

func initInfrastructure(cfg *config.AppConfig, logger *slog.Logger) (*sql.DB, bootstrap.Stores, error) {
	dbCfg := bootstrap.DatabaseConfig{
		DBConfig:    cfg.Postgres,
		RedisConfig: cfg.Redis,
		Logger:      logger,
	}

	db, err := bootstrap.ConnectDB(dbCfg)
	if err != nil {
		return nil, bootstrap.Stores{}, fmt.Errorf("connect db: %w", err)
	}

	stores, err := bootstrap.BuildStores(dbCfg)
	if err != nil {
		if cerr := db.Close(); cerr != nil {
			logger.Error("close database after store build failure", "error", cerr)
		}
		return nil, bootstrap.Stores{}, err
	}

	return db, stores, nil
}
