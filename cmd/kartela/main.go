// Package main is the entry point for the Kartela API server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"kartela/internal/auth"
	"kartela/internal/cache"
	"kartela/internal/catalog"
	"kartela/internal/config"
	"kartela/internal/database"
	"kartela/internal/handlers"
	"kartela/internal/imageproc"
	"kartela/internal/kvstore"
	"kartela/internal/router"
	"kartela/internal/storage"
	"kartela/internal/store"
	"kartela/internal/webhook"
)

// backend bundles the persistence chosen by STORAGE_BACKEND.
type backend struct {
	catalog catalog.Store
	users   auth.UserStore
	uploads handlers.UploadLog // nil outside Postgres
	checks  map[string]handlers.Check
}

func main() {
	if err := config.LoadEnvFile(".env"); err != nil {
		slog.Error("failed to read .env", "error", err)
		os.Exit(1)
	}

	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Structured logger: JSON in production, text elsewhere.
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if cfg.IsDev() {
		opts.Level = slog.LevelDebug
	}
	var logHandler slog.Handler = slog.NewTextHandler(os.Stdout, opts)
	if cfg.IsProduction() {
		logHandler = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(logHandler))

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"backend", cfg.StorageBackend,
	)

	ctx := context.Background()

	// Valkey is required for the valkey backend and optional otherwise,
	// where it only backs the response cache.
	var valkeyClient *redis.Client
	if cfg.StorageBackend != config.BackendMemory {
		valkeyClient, err = cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
		if err != nil {
			if cfg.StorageBackend == config.BackendValkey {
				slog.Error("failed to connect to valkey", "error", err)
				os.Exit(1)
			}
			slog.Warn("valkey not reachable, response cache disabled", "error", err)
			valkeyClient = nil
		} else {
			defer valkeyClient.Close()
		}
	}

	var be *backend
	switch cfg.StorageBackend {
	case config.BackendPostgres:
		db, err := database.Connect(cfg.DSN())
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		be, err = postgresBackend(db)
		if err != nil {
			slog.Error("failed to prepare database", "error", err)
			os.Exit(1)
		}
	case config.BackendValkey:
		be, err = keyValueBackend(ctx, kvstore.NewValkeyBlobs(valkeyClient, "kartela:"))
		if err != nil {
			slog.Error("failed to seed valkey catalog", "error", err)
			os.Exit(1)
		}
	default:
		slog.Warn("using in-memory catalog, data is lost on restart")
		be, err = keyValueBackend(ctx, kvstore.NewMemoryBlobs())
		if err != nil {
			slog.Error("failed to seed memory catalog", "error", err)
			os.Exit(1)
		}
	}

	var responses *cache.ResponseCache
	if valkeyClient != nil {
		responses = cache.NewResponseCache(valkeyClient, cache.DefaultResponseTTL)
		be.checks["valkey"] = func(ctx context.Context) error { return valkeyClient.Ping(ctx).Err() }
	}

	// Upload storage: S3-compatible bucket when configured, local disk otherwise.
	var files storage.Backend
	uploadDir := ""
	s3Client, err := storage.NewS3(cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3PublicURL)
	if err != nil {
		slog.Error("failed to initialize s3 storage", "error", err)
		os.Exit(1)
	}
	if s3Client != nil {
		files = s3Client
		slog.Info("s3 storage configured", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket)
	} else {
		disk, err := storage.NewDisk(cfg.UploadDir, cfg.UploadPublicPath)
		if err != nil {
			slog.Error("failed to prepare upload dir", "error", err)
			os.Exit(1)
		}
		files = disk
		uploadDir = disk.Root()
		slog.Info("uploads stored on disk", "dir", uploadDir, "public_path", cfg.UploadPublicPath)
	}

	var processor imageproc.Processor
	if cfg.ImageProcessingMock {
		processor = imageproc.NewMockProcessor(cfg.MockDelay)
		slog.Warn("image processing mock enabled, previews echo the uploaded photo",
			"delay", cfg.MockDelay,
		)
	} else {
		processor = imageproc.NewWebhookClient(be.catalog, cfg.ImageProcessingTimeout)
	}

	tokens, err := auth.NewManager(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		slog.Error("failed to initialize token manager", "error", err)
		os.Exit(1)
	}
	if cfg.JWTSecret == config.DefaultJWTSecret {
		slog.Warn("using the development JWT secret, set JWT_SECRET")
	}

	notifier := webhook.NewNotifier(cfg.WebhookNotifyTimeout)

	// Set up the Chi router with all middleware and routes.
	r := router.New(router.Options{
		Tokens:                tokens,
		Catalog:               handlers.NewCatalog(be.catalog, responses, notifier, cfg.WebhookDefaultURL),
		Auth:                  handlers.NewAuth(be.users, tokens),
		Media:                 handlers.NewMedia(files, be.uploads),
		Preview:               handlers.NewPreview(processor),
		Health:                handlers.Health(cfg.StorageBackend, cfg.ImageProcessingMock, be.checks),
		CORSAllowedOrigins:    cfg.CORSAllowedOrigins,
		HSTS:                  cfg.IsProduction(),
		ProcessImageRateLimit: cfg.ProcessImageRateLimit,
		UploadDir:             uploadDir,
		UploadPublicPath:      cfg.UploadPublicPath,
	})

	// WriteTimeout must outlast the slowest webhook call.
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.ImageProcessingTimeout + 15*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	// Give active requests up to 30 seconds to complete.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	// Let in-flight palette notifications finish.
	notifier.Wait()
	slog.Info("server stopped gracefully")
}

// postgresBackend migrates and seeds db and wraps it in the SQL stores.
func postgresBackend(db *sql.DB) (*backend, error) {
	if err := database.Migrate(db); err != nil {
		return nil, err
	}
	if err := database.Seed(db); err != nil {
		return nil, err
	}
	return &backend{
		catalog: store.NewCatalog(db),
		users:   store.NewUserStore(db),
		uploads: store.NewUploadStore(db),
		checks: map[string]handlers.Check{
			"postgres": db.PingContext,
		},
	}, nil
}

// keyValueBackend seeds blobs with the default catalog and admin account.
func keyValueBackend(ctx context.Context, blobs kvstore.Blobs) (*backend, error) {
	if err := kvstore.Seed(ctx, blobs, catalog.DefaultCatalog(time.Now())); err != nil {
		return nil, err
	}
	users := kvstore.NewUserStore(blobs)
	if err := users.SeedAdmin(ctx, database.DefaultAdminUsername, database.DefaultAdminPassword); err != nil {
		return nil, err
	}
	return &backend{
		catalog: kvstore.New(blobs),
		users:   users,
		checks:  map[string]handlers.Check{},
	}, nil
}
