package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"filedrive/docs"
	"filedrive/internal/auth"
	"filedrive/internal/config"
	"filedrive/internal/database"
	"filedrive/internal/database/migration"
	handlers "filedrive/internal/http/handler"
	"filedrive/internal/http/middleware"
	"filedrive/internal/logging"
	"filedrive/internal/metrics"
	tracing "filedrive/internal/otel"
	"filedrive/internal/progress"
	"filedrive/internal/repository/postgres"
	"filedrive/internal/service"
	"filedrive/internal/storage"
)

const shutdownTimeout = 10 * time.Second

// @title filedrive API
// @version 1.0
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	log := logging.New(cfg.LogLevel, cfg.Location())
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, log)
	if err != nil {
		fatal(log, "failed to initialize tracing", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			log.Error("tracing_shutdown_failed", "error", err.Error())
		}
	}()

	// Initialize PostgreSQL connection (with pooling via database/sql)
	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		fatal(log, "failed to connect to database", err)
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, log, cfg.Database.Host); err != nil {
		fatal(log, "failed to migrate database", err)
	}

	// Initialize reusable S3-compatible object storage client (MinIO-supported)
	objStore, err := storage.NewMinIO(ctx, cfg.MinIO, cfg.Upload)
	if err != nil {
		fatal(log, "failed to initialize object storage", err)
	}

	tracker, closeTracker, err := newTracker(ctx, cfg.Redis, log)
	if err != nil {
		fatal(log, "failed to initialize progress tracker", err)
	}
	defer closeTracker()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	uploadMetrics, err := metrics.NewUploads(reg)
	if err != nil {
		fatal(log, "failed to register upload metrics", err)
	}
	promMiddleware, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		fatal(log, "failed to register http metrics", err)
	}

	issuer, err := auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)
	if err != nil {
		fatal(log, "failed to initialize token issuer", err)
	}
	limiter := auth.NewLimiter(cfg.Auth.LoginRatePerMinute, cfg.Auth.LoginBurst)

	// Initialize repositories and services
	fileRepo := postgres.NewFilePostgres(db)
	userRepo := postgres.NewUserPostgres(db)

	uploadSvc := service.NewUploadService(objStore, fileRepo, tracker, service.UploadOptions{
		MaxSizeBytes:  cfg.Upload.MaxSizeBytes,
		PartSizeBytes: cfg.Upload.PartSizeBytes,
	}, uploadMetrics, log)
	fileSvc := service.NewFileService(objStore, fileRepo, cfg.Upload.URLExpiry)
	authSvc := service.NewAuthService(userRepo, issuer, limiter, cfg.Auth.AllowSignup, log)

	app := fiber.New(handlers.ServerConfig(handlers.DefaultBufferedBodyLimit))

	// Register global middleware
	app.Use(middleware.RequestID())
	app.Use(otelfiber.Middleware())
	app.Use(promMiddleware.Handler())
	app.Use(middleware.Logger(log))

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	// Register HTTP routes with injected services
	handlers.RegisterRoutes(app, db, uploadSvc, fileSvc, authSvc)

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	addr := ":" + cfg.Port

	errCh := make(chan error, 1)
	go func() {
		log.Info("server_starting", "addr", addr)
		errCh <- app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			fatal(log, "failed to start server", err)
		}
	case <-ctx.Done():
		log.Info("server_stopping")
		if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			log.Error("server_shutdown_failed", "error", err.Error())
		}
	}
}

// newTracker returns the Redis tracker when an address is configured,
// otherwise the in-process one.
func newTracker(ctx context.Context, c config.RedisConfig, log *slog.Logger) (progress.Tracker, func(), error) {
	if c.Addr == "" {
		log.Info("progress_tracker_configured", "backend", "memory")
		return progress.NewMemoryTracker(nil), func() {}, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     c.Addr,
		Password: c.Password,
		DB:       c.DB,
	})
	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, fmt.Errorf("redis ping: %w", err)
	}
	log.Info("progress_tracker_configured", "backend", "redis", "addr", c.Addr)
	return progress.NewRedisTracker(rdb, c.EntryTTL), func() { _ = rdb.Close() }, nil
}

func fatal(log *slog.Logger, msg string, err error) {
	log.Error(msg, "error", err.Error())
	os.Exit(1)
}
