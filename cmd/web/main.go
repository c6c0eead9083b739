package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"sales-dashboard/internal/config"
	"sales-dashboard/internal/dataset"
	"sales-dashboard/internal/middleware"
	"sales-dashboard/internal/observability"
	"sales-dashboard/internal/server"
	"sales-dashboard/internal/services"
	"sales-dashboard/internal/session"
	"sales-dashboard/internal/ui/format"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Logger, os.Stdout)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("application stopped gracefully")
}

func run(cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting application",
		"version", observability.ServiceVersion,
		"addr", cfg.Address(),
		"locale", cfg.Dashboard.Locale,
		"tracing", cfg.Tracing.Exporter,
	)

	shutdownTracing, err := observability.InitTracing(cfg.Tracing, os.Stderr)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}

	handler, err := newHandler(cfg, logger, prometheus.NewRegistry())
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:         cfg.Address(),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	gracefulServer := server.NewGracefulServer(httpServer, logger, cfg.Server)
	gracefulServer.RegisterShutdownHook(func(ctx context.Context) error {
		logger.Info("flushing traces")
		return shutdownTracing(ctx)
	})

	return gracefulServer.ListenAndServe()
}

// newHandler wires the application graph behind the middleware chain.
func newHandler(cfg *config.Config, logger *slog.Logger, registry *prometheus.Registry) (http.Handler, error) {
	seed, err := loadSeed(cfg.Dataset.SeedFile, logger)
	if err != nil {
		return nil, err
	}

	metrics := observability.NewMetrics(registry)
	srv := server.NewServer(server.Deps{
		Dashboard:      services.NewDashboard(logger, metrics, cfg.Dashboard.Workers),
		Sessions:       session.NewStore(cfg.Session, seed, metrics, logger),
		Metrics:        metrics,
		Format:         format.New(cfg.Dashboard.Locale),
		Logger:         logger,
		MaxUploadBytes: cfg.Dataset.MaxUploadBytes,
	})

	rateLimiter := middleware.NewRateLimiter(cfg.Security)

	middlewareChain := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Tracing(),
		middleware.Logger(logger),
		middleware.SecurityHeaders(),
		middleware.CORS(cfg.Security),
		middleware.TrustedProxy(cfg.Security),
		middleware.RateLimit(rateLimiter, logger),
	)

	return middlewareChain(srv), nil
}

// loadSeed reads the optional startup dataset. An empty path means sessions
// start without data.
func loadSeed(path string, logger *slog.Logger) (*dataset.Dataset, error) {
	if path == "" {
		return nil, nil
	}

	start := time.Now()
	ds, err := dataset.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load seed dataset %s: %w", path, err)
	}

	logger.Info("seed dataset loaded",
		"source", ds.Source,
		"records", len(ds.Records),
		"branches", len(ds.Branches),
		"products", len(ds.Products),
		"duration", time.Since(start),
	)
	return ds, nil
}

