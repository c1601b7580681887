// Command assetserve serves a directory or an S3 prefix over HTTP with
// conditional caching, health probes and Prometheus metrics.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/assetserve/core/handler"
	"github.com/dmitrymomot/assetserve/core/health"
	"github.com/dmitrymomot/assetserve/core/logger"
	"github.com/dmitrymomot/assetserve/core/response"
	"github.com/dmitrymomot/assetserve/core/router"
	"github.com/dmitrymomot/assetserve/core/server"
	"github.com/dmitrymomot/assetserve/core/static"
	"github.com/dmitrymomot/assetserve/integration/storage/s3"
	"github.com/dmitrymomot/assetserve/middleware"
)

func main() {
	configPath := flag.String("config", os.Getenv("ASSETSERVE_CONFIG"), "path to a YAML config file")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		logger.New().Error("Failed to load config", logger.Component("config"), logger.Error(err))
		os.Exit(1)
	}

	log, err := newLogger(cfg, os.Stderr)
	if err != nil {
		logger.New().Error("Failed to create logger", logger.Component("logger"), logger.Error(err))
		os.Exit(1)
	}

	if err := run(ctx, cfg, log); err != nil {
		log.Error("Application failed", logger.Error(err))
		os.Exit(1)
	}

	log.Info("Application stopped")
}

// run wires the router, static plugin and server, and blocks until ctx is
// canceled or the server fails.
func run(ctx context.Context, cfg Config, log *slog.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	r := router.New[*router.Context](
		router.WithErrorHandler[*router.Context](response.ErrorHandler[*router.Context]),
		router.WithLogger[*router.Context](log.With(logger.Component("router"))),
		router.WithMiddleware(
			middleware.RequestID[*router.Context](),
			middleware.LoggingWithLogger[*router.Context](log.With(logger.Component("http.request"))),
		),
	)

	staticOpts, err := cfg.Static.Options()
	if err != nil {
		return fmt.Errorf("static config: %w", err)
	}
	staticOpts = append(staticOpts,
		static.WithLogger(log),
		static.WithMetrics(static.NewMetrics(reg)),
	)

	if cfg.S3.Bucket != "" {
		fsys, err := s3.New(ctx, cfg.S3)
		if err != nil {
			return fmt.Errorf("s3 file system: %w", err)
		}
		staticOpts = append(staticOpts, static.WithFileSystem(fsys))
	}

	plugin, err := static.New[*router.Context](ctx, r, staticOpts...)
	if err != nil {
		return fmt.Errorf("static assets: %w", err)
	}
	defer plugin.Close()

	// Health check endpoints
	r.Get("/health/live", health.Liveness[*router.Context])
	r.Get("/health/ready", health.Readiness[*router.Context](log, plugin.Check))

	r.Get("/metrics", handler.FromHTTP[*router.Context](promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))

	s, err := server.NewFromConfig(cfg.Server, server.WithLogger(log.With(logger.Component("server"))))
	if err != nil {
		return err
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(s.Run(ctx, r))
	return eg.Wait()
}
