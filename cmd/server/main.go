package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/JonMunkholm/bookimport/internal/config"
	"github.com/JonMunkholm/bookimport/internal/core"
	"github.com/JonMunkholm/bookimport/internal/logging"
	"github.com/JonMunkholm/bookimport/internal/store/mongostore"
	"github.com/JonMunkholm/bookimport/internal/store/pgstore"
	"github.com/JonMunkholm/bookimport/internal/tempstore"
	"github.com/JonMunkholm/bookimport/internal/web"
)

// bookStore is what main needs from either store driver.
type bookStore interface {
	core.BookWriter
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"store", cfg.Store.Driver,
		"storage", cfg.Upload.Storage,
		"upload_max_concurrent", cfg.Upload.MaxConcurrent,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)
	slog.Debug("effective configuration", "config", cfg.String())

	ctx := context.Background()

	store, err := openStore(ctx, &cfg.Store)
	if err != nil {
		slog.Error("failed to connect to book store", "driver", cfg.Store.Driver, "error", err)
		os.Exit(1)
	}
	slog.Info("connected to book store", "driver", cfg.Store.Driver)

	temp, err := openTempStore(ctx, cfg)
	if err != nil {
		slog.Error("failed to set up temp storage", "storage", cfg.Upload.Storage, "error", err)
		os.Exit(1)
	}

	var rdb *redis.Client
	if cfg.Rate.Enabled && cfg.Rate.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.Rate.RedisURL)
		if err != nil {
			slog.Error("failed to parse redis URL", "error", err)
			os.Exit(1)
		}
		rdb = redis.NewClient(opts)
		if err := rdb.Ping(ctx).Err(); err != nil {
			// The limiter fails open, so a missing Redis is not fatal.
			slog.Warn("redis unreachable, upload rate limit will allow requests", "error", err)
		}
		defer rdb.Close()
	}

	service := core.NewService(store, temp, core.Options{
		MaxConcurrent: cfg.Upload.MaxConcurrent,
		MaxWait:       cfg.Upload.MaxWaitTime,
		Timeout:       cfg.Upload.Timeout,
	})

	server := web.NewServer(web.Deps{Service: service, Store: store, Redis: rdb}, cfg)

	// Create cancellable context for background jobs
	jobCtx, cancelJobs := context.WithCancel(context.Background())
	defer cancelJobs()

	if cfg.Upload.Retention > 0 {
		go service.StartSweeper(jobCtx, core.SweepConfig{
			Retention: cfg.Upload.Retention,
			Interval:  cfg.Upload.SweepInterval,
		})
	}

	done := make(chan struct{})
	go func() {
		defer close(done)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		// Wait for active imports to complete (with timeout)
		if status := service.LimiterStatus(); status.Active > 0 {
			slog.Info("waiting for imports to complete", "active", status.Active)
			if err := service.WaitForImports(shutdownCtx); err != nil {
				slog.Warn("imports did not complete in time", "error", err)
			} else {
				slog.Info("all imports completed")
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
		if err := store.Close(shutdownCtx); err != nil {
			slog.Error("failed to close book store", "error", err)
		}
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	<-done
	slog.Info("server stopped")
}

func openStore(ctx context.Context, cfg *config.StoreConfig) (bookStore, error) {
	switch cfg.Driver {
	case config.DriverMongo:
		s, err := mongostore.Open(ctx, mongostore.Options{
			URI:            cfg.MongoURI,
			Database:       cfg.MongoDatabase,
			Collection:     cfg.MongoCollection,
			ConnectTimeout: cfg.ConnectTimeout,
		})
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.DriverPostgres:
		s, err := pgstore.Open(ctx, pgstore.Options{
			URL:             cfg.DatabaseURL,
			MaxConns:        cfg.MaxConns,
			MinConns:        cfg.MinConns,
			MaxConnLifetime: cfg.MaxConnLifetime,
			MaxConnIdleTime: cfg.MaxConnIdleTime,
			ConnectTimeout:  cfg.ConnectTimeout,
		})
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

func openTempStore(ctx context.Context, cfg *config.Config) (core.TempStore, error) {
	switch cfg.Upload.Storage {
	case config.StorageS3:
		s, err := tempstore.NewS3(ctx, tempstore.S3Options{
			Bucket:          cfg.S3.Bucket,
			Region:          cfg.S3.Region,
			Endpoint:        cfg.S3.Endpoint,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			Prefix:          cfg.S3.Prefix,
			UsePathStyle:    cfg.S3.UsePathStyle,
		})
		if err != nil {
			return nil, err
		}
		slog.Info("temp uploads stored in S3", "bucket", cfg.S3.Bucket, "prefix", cfg.S3.Prefix)
		return s, nil
	default:
		l, err := tempstore.NewLocal(cfg.Upload.TempDir)
		if err != nil {
			return nil, err
		}
		slog.Info("temp uploads stored on disk", "dir", l.Dir())
		return l, nil
	}
}
