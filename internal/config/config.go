// Package config handles application configuration loading from environment
// variables. It provides a centralized Config struct used across the application.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage backends selectable with STORAGE_BACKEND.
const (
	BackendPostgres = "postgres"
	BackendValkey   = "valkey"
	BackendMemory   = "memory"
)

// DefaultJWTSecret is only acceptable outside production.
const DefaultJWTSecret = "kartela-dev-secret-change-me"

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host string
	Port string
	Env  string // "development", "production", "testing"

	// Catalog persistence: "postgres", "valkey" or "memory"
	StorageBackend string

	// PostgreSQL connection. DatabaseURL wins over the individual fields.
	DatabaseURL string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string

	// Valkey (Redis-compatible cache and key-value catalog)
	ValkeyHost     string
	ValkeyPort     string
	ValkeyPassword string

	// Authentication
	JWTSecret string
	JWTTTL    time.Duration

	// Uploads. When S3Bucket is empty files go to UploadDir on local disk.
	UploadDir        string
	UploadPublicPath string
	S3Endpoint       string
	S3Region         string
	S3AccessKey      string
	S3SecretKey      string
	S3Bucket         string
	S3PublicURL      string

	// Image processing and palette webhooks
	WebhookDefaultURL      string
	ImageProcessingMock    bool
	MockAllowProduction    bool
	MockDelay              time.Duration
	ImageProcessingTimeout time.Duration
	WebhookNotifyTimeout   time.Duration
	ProcessImageRateLimit  int

	// CORS
	CORSAllowedOrigins []string
}

// LoadEnvFile reads KEY=VALUE pairs from path into the process environment.
// Variables that are already set win. A missing file is not an error.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

// Load reads configuration from environment variables, applying defaults
// for development where appropriate. Returns an error if critical values
// are missing in production mode.
func Load() (*Config, error) {
	cfg := &Config{
		Host: envOrDefault("APP_HOST", "0.0.0.0"),
		Port: envOrDefault("APP_PORT", envOrDefault("PORT", "8080")),
		Env:  envOrDefault("APP_ENV", "development"),

		StorageBackend: strings.ToLower(envOrDefault("STORAGE_BACKEND", BackendPostgres)),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		DBHost:      envOrDefault("POSTGRES_HOST", "localhost"),
		DBPort:      envOrDefault("POSTGRES_PORT", "5432"),
		DBUser:      envOrDefault("POSTGRES_USER", "kartela"),
		DBPassword:  envOrDefault("POSTGRES_PASSWORD", "changeme"),
		DBName:      envOrDefault("POSTGRES_DB", "kartela"),

		ValkeyHost:     envOrDefault("VALKEY_HOST", "localhost"),
		ValkeyPort:     envOrDefault("VALKEY_PORT", "6379"),
		ValkeyPassword: os.Getenv("VALKEY_PASSWORD"),

		JWTSecret: envOrDefault("JWT_SECRET", DefaultJWTSecret),

		UploadDir:        envOrDefault("UPLOAD_DIR", "./uploads"),
		UploadPublicPath: "/" + strings.Trim(envOrDefault("UPLOAD_PUBLIC_PATH", "/uploads"), "/"),
		S3Endpoint:       os.Getenv("S3_ENDPOINT"),
		S3Region:         envOrDefault("S3_REGION", "us-east-1"),
		S3AccessKey:      os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey:      os.Getenv("S3_SECRET_KEY"),
		S3Bucket:         os.Getenv("S3_BUCKET"),
		S3PublicURL:      os.Getenv("S3_PUBLIC_URL"),

		WebhookDefaultURL: strings.TrimSpace(os.Getenv("WEBHOOK_DEFAULT_URL")),

		CORSAllowedOrigins: splitList(envOrDefault("CORS_ALLOWED_ORIGINS", "*")),
	}

	var err error
	if cfg.JWTTTL, err = envDuration("JWT_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.ImageProcessingMock, err = envBool("IMAGE_PROCESSING_MOCK", false); err != nil {
		return nil, err
	}
	if cfg.MockAllowProduction, err = envBool("IMAGE_PROCESSING_MOCK_ALLOW_PRODUCTION", false); err != nil {
		return nil, err
	}
	if cfg.MockDelay, err = envDuration("IMAGE_PROCESSING_MOCK_DELAY", 2*time.Second); err != nil {
		return nil, err
	}
	if cfg.ImageProcessingTimeout, err = envDuration("IMAGE_PROCESSING_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.WebhookNotifyTimeout, err = envDuration("WEBHOOK_NOTIFY_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.ProcessImageRateLimit, err = envInt("PROCESS_IMAGE_RATE_LIMIT", 20); err != nil {
		return nil, err
	}

	if cfg.ImageProcessingTimeout <= cfg.WebhookNotifyTimeout {
		return nil, fmt.Errorf("IMAGE_PROCESSING_TIMEOUT (%s) must be longer than WEBHOOK_NOTIFY_TIMEOUT (%s)",
			cfg.ImageProcessingTimeout, cfg.WebhookNotifyTimeout)
	}

	switch cfg.StorageBackend {
	case BackendPostgres, BackendValkey, BackendMemory:
	default:
		return nil, fmt.Errorf("STORAGE_BACKEND must be one of postgres, valkey, memory (got %q)", cfg.StorageBackend)
	}

	if cfg.Env == "production" {
		if cfg.StorageBackend == BackendPostgres && cfg.DatabaseURL == "" && cfg.DBPassword == "changeme" {
			return nil, fmt.Errorf("POSTGRES_PASSWORD must be set in production")
		}
		if cfg.JWTSecret == DefaultJWTSecret {
			return nil, fmt.Errorf("JWT_SECRET must be set in production")
		}
		if cfg.ImageProcessingMock && !cfg.MockAllowProduction {
			return nil, fmt.Errorf("IMAGE_PROCESSING_MOCK in production requires IMAGE_PROCESSING_MOCK_ALLOW_PRODUCTION=true")
		}
	}

	return cfg, nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true if the application is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// S3Enabled reports whether uploads go to object storage.
func (c *Config) S3Enabled() bool {
	return c.S3Bucket != "" && c.S3Endpoint != ""
}

// envOrDefault reads an environment variable, returning a fallback if unset or empty.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q", key, v)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s: must be positive", key)
	}
	return d, nil
}

func envBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: invalid boolean %q", key, v)
	}
	return b, nil
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s: must be a positive integer (got %q)", key, v)
	}
	return n, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
