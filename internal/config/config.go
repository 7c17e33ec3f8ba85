package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig
	Redis   RedisConfig
	Blob    BlobConfig
	Gallery GalleryConfig
	App     AppConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port            string        `envconfig:"SERVER_PORT" required:"true"`
	Host            string        `envconfig:"SERVER_HOST" required:"true"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" required:"true"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" required:"true"`
	IdleTimeout     time.Duration `envconfig:"SERVER_IDLE_TIMEOUT" required:"true"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" required:"true"`
}

// Validate validates the server configuration.
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("port cannot be empty")
	}
	if c.Host == "" {
		return fmt.Errorf("host cannot be empty")
	}
	if c.ReadTimeout <= 0 {
		return fmt.Errorf("read timeout must be positive")
	}
	if c.WriteTimeout <= 0 {
		return fmt.Errorf("write timeout must be positive")
	}
	if c.IdleTimeout <= 0 {
		return fmt.Errorf("idle timeout must be positive")
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown timeout must be positive")
	}
	return nil
}

// RedisConfig holds connection configuration for the metadata key-value store.
type RedisConfig struct {
	Addr         string        `envconfig:"REDIS_ADDR" required:"true"`
	Password     string        `envconfig:"REDIS_PASSWORD"`
	DB           int           `envconfig:"REDIS_DB" default:"0"`
	DialTimeout  time.Duration `envconfig:"REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"REDIS_WRITE_TIMEOUT" default:"3s"`
	PoolSize     int           `envconfig:"REDIS_POOL_SIZE" default:"10"`
}

// Validate validates the Redis configuration.
func (c *RedisConfig) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("addr cannot be empty")
	}
	if c.DB < 0 {
		return fmt.Errorf("db must be non-negative")
	}
	if c.DialTimeout <= 0 {
		return fmt.Errorf("dial timeout must be positive")
	}
	if c.PoolSize <= 0 {
		return fmt.Errorf("pool size must be positive")
	}
	return nil
}

// BlobConfig holds connection configuration for the S3-compatible image
// store. Endpoint and path-style addressing accommodate R2 and MinIO.
type BlobConfig struct {
	Endpoint        string `envconfig:"BLOB_ENDPOINT" required:"true"`
	Region          string `envconfig:"BLOB_REGION" default:"auto"`
	Bucket          string `envconfig:"BLOB_BUCKET" required:"true"`
	AccessKeyID     string `envconfig:"BLOB_ACCESS_KEY_ID" required:"true"`
	SecretAccessKey string `envconfig:"BLOB_SECRET_ACCESS_KEY" required:"true"`
	UsePathStyle    bool   `envconfig:"BLOB_USE_PATH_STYLE" default:"true"`
}

// Validate validates the blob store configuration.
func (c *BlobConfig) Validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("endpoint cannot be empty")
	}
	if c.Bucket == "" {
		return fmt.Errorf("bucket cannot be empty")
	}
	if c.AccessKeyID == "" {
		return fmt.Errorf("access key id cannot be empty")
	}
	if c.SecretAccessKey == "" {
		return fmt.Errorf("secret access key cannot be empty")
	}
	return nil
}

// GalleryConfig holds gallery-specific behavior.
type GalleryConfig struct {
	DefaultPerPage    int  `envconfig:"GALLERY_DEFAULT_PER_PAGE" default:"30"`
	RequireKnownPhoto bool `envconfig:"GALLERY_REQUIRE_KNOWN_PHOTO" default:"false"`
}

// Validate validates the gallery configuration.
func (c *GalleryConfig) Validate() error {
	if c.DefaultPerPage <= 0 {
		return fmt.Errorf("default per page must be positive")
	}
	return nil
}

// AppConfig holds application-specific configuration.
type AppConfig struct {
	Environment    string `envconfig:"APP_ENV" required:"true"`   // development, staging, production, test
	LogLevel       string `envconfig:"LOG_LEVEL" required:"true"` // debug, info, warn, error
	ServiceName    string `envconfig:"APP_SERVICE_NAME" default:"photogallery"`
	ServiceVersion string `envconfig:"APP_SERVICE_VERSION" default:"dev"`
}

// Validate validates the app configuration.
func (c *AppConfig) Validate() error {
	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
		"test":        true,
	}
	if !validEnvs[c.Environment] {
		return fmt.Errorf("invalid environment: %s (must be one of: development, staging, production, test)", c.Environment)
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}
	return nil
}

// Load loads configuration from environment variables only.
// (Do .env loading in cmd/server/main.go for dev, not here.)
func Load() (*Config, error) {
	cfg := &Config{}

	if err := envconfig.Process("", &cfg.Server); err != nil {
		return nil, fmt.Errorf("failed to load Server config: %w", err)
	}
	if err := cfg.Server.Validate(); err != nil {
		return nil, fmt.Errorf("invalid Server config: %w", err)
	}

	if err := envconfig.Process("", &cfg.Redis); err != nil {
		return nil, fmt.Errorf("failed to load Redis config: %w", err)
	}
	if err := cfg.Redis.Validate(); err != nil {
		return nil, fmt.Errorf("invalid Redis config: %w", err)
	}

	if err := envconfig.Process("", &cfg.Blob); err != nil {
		return nil, fmt.Errorf("failed to load Blob config: %w", err)
	}
	if err := cfg.Blob.Validate(); err != nil {
		return nil, fmt.Errorf("invalid Blob config: %w", err)
	}

	if err := envconfig.Process("", &cfg.Gallery); err != nil {
		return nil, fmt.Errorf("failed to load Gallery config: %w", err)
	}
	if err := cfg.Gallery.Validate(); err != nil {
		return nil, fmt.Errorf("invalid Gallery config: %w", err)
	}

	if err := envconfig.Process("", &cfg.App); err != nil {
		return nil, fmt.Errorf("failed to load App config: %w", err)
	}
	if err := cfg.App.Validate(); err != nil {
		return nil, fmt.Errorf("invalid App config: %w", err)
	}

	return cfg, nil
}
