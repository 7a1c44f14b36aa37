package main

import (
	"context"
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
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"dmsreport/docs"
	"dmsreport/internal/cache"
	"dmsreport/internal/config"
	"dmsreport/internal/database"
	handlers "dmsreport/internal/http/handler"
	"dmsreport/internal/http/middleware"
	"dmsreport/internal/loader"
	"dmsreport/internal/logger"
	"dmsreport/internal/metrics"
	"dmsreport/internal/otel"
	"dmsreport/internal/repository/sqlstore"
	"dmsreport/internal/service"
)

// @title DMS Analytics API
// @version 1.0
// @description Dashboard views, data exports and PDF reports over the document management database.
// @BasePath /
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()

	log, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, log)
	if err != nil {
		log.Fatal("tracing_init_failed", zap.Error(err))
	}

	// Read-only connection pool, MySQL by default
	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatal("database_open_failed", zap.Error(err))
	}
	defer db.Close()

	store, err := cache.New(cfg.Cache)
	if err != nil {
		log.Fatal("cache_init_failed", zap.Error(err))
	}

	collector, err := metrics.New(prometheus.DefaultRegisterer)
	if err != nil {
		log.Fatal("metrics_init_failed", zap.Error(err))
	}
	promMiddleware, err := middleware.NewPrometheusMiddleware(prometheus.DefaultRegisterer)
	if err != nil {
		log.Fatal("metrics_init_failed", zap.Error(err))
	}

	ld := loader.New(sqlstore.NewTableSQL(db), store, log, collector)
	svc := service.NewAnalyticsService(ld, cfg.Report, log, collector)

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Minute,
	})

	// Register global middleware
	app.Use(otelfiber.Middleware())
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(log))
	app.Use(promMiddleware.Handler())

	handlers.RegisterRoutes(app, db, svc, handlers.Options{
		DetailedByDefault: cfg.Report.IncludeDetailed,
		Logger:            log,
	})

	app.Get("/metrics", adaptor.HTTPHandler(otelhttp.NewHandler(promhttp.Handler(), "metrics")))

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

	go func() {
		<-ctx.Done()
		log.Info("server_stopping")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Error("server_shutdown_failed", zap.Error(err))
		}
	}()

	addr := ":" + cfg.Port
	log.Info("server_starting", zap.String("addr", addr), zap.String("db_driver", cfg.Database.Driver), zap.String("cache", cfg.Cache.Backend))
	if err := app.Listen(addr); err != nil {
		log.Error("server_failed", zap.Error(err))
	}

	flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdownTracing(flushCtx); err != nil {
		log.Warn("tracing_shutdown_failed", zap.Error(err))
	}
}
