package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/logistica/backend/internal/audit"
	"github.com/logistica/backend/internal/config"
	"github.com/logistica/backend/internal/db"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// The worker persists audit captures published to the Redis stream by the
// API. It is only needed when AUDIT_DELIVERY=stream.
func main() {
	cfg := config.Load()

	log, _ := zap.NewProduction()
	if !cfg.IsProduction() {
		log, _ = zap.NewDevelopment()
	}
	defer log.Sync()

	cfg.Validate(log)
	if cfg.AuditDelivery != "stream" {
		log.Warn("AUDIT_DELIVERY is not stream, the API will not publish to this worker",
			zap.String("mode", cfg.AuditDelivery))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	pool, err := db.NewPostgresPool(ctx, cfg.PostgresDSN, db.PoolOptions{MaxConns: 4, MinConns: 1}, log)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := audit.NewMetrics(registry)

	queue := audit.NewStreamQueue(rdb, audit.StreamOptions{
		Stream:   cfg.AuditStream,
		Group:    cfg.AuditConsumerGroup,
		Consumer: cfg.AuditConsumerName,
	}, log.Named("audit"))
	worker := audit.NewWorker(audit.NewPostgresStore(pool), metrics, log.Named("audit"))

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Get("/health", func(c *fiber.Ctx) error {
		if err := rdb.Ping(c.UserContext()).Err(); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "redis unavailable"})
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return worker.Run(gctx, queue)
	})
	g.Go(func() error {
		addr := fmt.Sprintf(":%s", cfg.WorkerPort)
		log.Info("worker started",
			zap.String("addr", addr),
			zap.String("stream", cfg.AuditStream),
			zap.String("consumer", cfg.AuditConsumerName))
		return app.Listen(addr)
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down worker")
		return app.Shutdown()
	})

	if err := g.Wait(); err != nil {
		log.Fatal("worker error", zap.Error(err))
	}
}
