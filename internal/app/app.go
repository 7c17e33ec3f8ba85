package app

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/lumapix/photogallery/internal/config"
	"github.com/lumapix/photogallery/internal/gallery"
	"github.com/lumapix/photogallery/internal/server"
	"github.com/lumapix/photogallery/internal/store/blobstore"
	"github.com/lumapix/photogallery/internal/store/redisstore"
)

// App holds the application dependencies and configuration.
type App struct {
	Config  *config.Config
	Logger  *slog.Logger
	Redis   *redis.Client
	Server  *server.Server
	Handler *gallery.Handler
}

// New initializes and returns a new App instance with all dependencies wired up.
func New(ctx context.Context) (*App, error) {
	if err := loadEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := setupLogger(cfg.App.LogLevel)

	logger.Info("starting application",
		"env", cfg.App.Environment,
		"version", cfg.App.ServiceVersion,
	)

	// Connect to the metadata store
	rdb, err := connectRedis(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	// Connect to the image store
	blobs, err := blobstore.New(ctx, cfg.Blob)
	if err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to create blob store: %w", err)
	}

	// Setup application dependencies
	store := redisstore.New(rdb)
	svc := gallery.NewService(store, blobs, &gallery.ServiceConfig{
		DefaultPerPage:    cfg.Gallery.DefaultPerPage,
		RequireKnownPhoto: cfg.Gallery.RequireKnownPhoto,
	})
	handler := gallery.NewHandler(gallery.HandlerConfig{
		Service: svc,
		Logger:  logger,
	})

	// Create server; health reports degraded when redis is unreachable
	srv := server.New(cfg, logger, handler, func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	})

	logger.Info("application initialized",
		"port", cfg.Server.Port,
		"redis_addr", cfg.Redis.Addr,
		"blob_bucket", cfg.Blob.Bucket,
	)

	return &App{
		Config:  cfg,
		Logger:  logger,
		Redis:   rdb,
		Server:  srv,
		Handler: handler,
	}, nil
}

// Start starts the application server.
func (a *App) Start(ctx context.Context) error {
	a.Logger.Info("server starting",
		"port", a.Config.Server.Port,
	)

	if err := a.Server.Start(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the application.
func (a *App) Shutdown() error {
	a.Logger.Info("shutting down application")

	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			a.Logger.Warn("failed to close redis client", "error", err.Error())
		} else {
			a.Logger.Info("redis connection closed")
		}
	}

	return nil
}

// loadEnv loads .env file only in non-production environments.
func loadEnv() error {
	env := os.Getenv("APP_ENV")
	if env == "development" || env == "test" {
		if err := godotenv.Load("../.env"); err != nil {
			log.Println("no .env file found.")
		}
	}
	return nil
}

// setupLogger creates a structured logger based on the log level.
func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: logLevel,
	}

	handler := slog.NewJSONHandler(os.Stdout, opts)
	return slog.New(handler)
}

// connectRedis establishes a connection to the Redis metadata store.
func connectRedis(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*redis.Client, error) {
	logger.Info("connecting to redis",
		"addr", cfg.Redis.Addr,
		"db", cfg.Redis.DB,
	)

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Redis.Addr,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
		PoolSize:     cfg.Redis.PoolSize,
	})

	// Verify connection
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	logger.Info("redis connection established")

	return rdb, nil
}
