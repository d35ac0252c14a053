package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/logistica/backend/internal/audit"
	"github.com/logistica/backend/internal/config"
	"github.com/logistica/backend/internal/db"
	"github.com/logistica/backend/internal/events"
	apphttp "github.com/logistica/backend/internal/http"
	"github.com/logistica/backend/internal/http/handlers"
	"github.com/logistica/backend/internal/repositories"
	"github.com/logistica/backend/internal/services"
	"github.com/logistica/backend/migrations"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg := config.Load()

	log, _ := zap.NewProduction()
	if !cfg.IsProduction() {
		log, _ = zap.NewDevelopment()
	}
	defer log.Sync()

	cfg.Validate(log)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Database
	pool, err := db.NewPostgresPool(ctx, cfg.PostgresDSN, db.PoolOptions{MaxConns: cfg.DBMaxConns, MinConns: cfg.DBMinConns}, log)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	// Run migrations
	var migrationFS fs.FS = migrations.FS
	if cfg.MigrationsDir != "" {
		migrationFS = os.DirFS(cfg.MigrationsDir)
	}
	if err := db.RunMigrations(ctx, pool, migrationFS, log); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	// Redis
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	auditMetrics := audit.NewMetrics(registry)

	// Audit
	auditStore := audit.NewPostgresStore(pool)
	g, gctx := errgroup.WithContext(ctx)

	var (
		sink       audit.Sink
		closeQueue = func() {}
	)
	switch cfg.AuditDelivery {
	case "sync":
		sink = audit.NewStoreSink(auditStore, auditMetrics)
	case "channel":
		queue := audit.NewChannelQueue(cfg.AuditBufferSize)
		worker := audit.NewWorker(auditStore, auditMetrics, log.Named("audit"))
		g.Go(func() error { return worker.Run(gctx, queue) })
		sink, closeQueue = queue, queue.Close
	default:
		sink = audit.NewStreamQueue(rdb, audit.StreamOptions{
			Stream:   cfg.AuditStream,
			Group:    cfg.AuditConsumerGroup,
			Consumer: cfg.AuditConsumerName,
		}, log.Named("audit"))
	}
	recorder := audit.NewRecorder(sink, log.Named("audit"), audit.WithMetrics(auditMetrics))
	auditor := services.NewAuditor(recorder, log)
	trail := audit.NewTrail(auditStore, cfg.AuditQueryMaxLimit)
	log.Info("audit delivery configured", zap.String("mode", cfg.AuditDelivery))

	// Repositories
	userRepo := repositories.NewUserRepo(pool)
	pedidoRepo := repositories.NewPedidoRepo(pool)
	conductorRepo := repositories.NewConductorRepo(pool)
	vehiculoRepo := repositories.NewVehiculoRepo(pool)
	rutaRepo := repositories.NewRutaRepo(pool)
	asociacionRepo := repositories.NewAsociacionRepo(pool)
	seguimientoRepo := repositories.NewSeguimientoRepo(pool)
	notificacionRepo := repositories.NewNotificacionRepo(pool)

	// Events
	publisher := events.NewRedisPublisher(rdb, log)
	subscriber := events.NewRedisSubscriber(rdb, log)

	// Services
	tx := db.NewTxRunner(pool)
	notifier := services.NewNotifier(notificacionRepo, publisher, log)
	authService := services.NewAuthService(userRepo, cfg, log)
	pedidoService := services.NewPedidoService(pedidoRepo, conductorRepo, vehiculoRepo, rutaRepo, notifier, publisher, tx, auditor, log)
	conductorService := services.NewConductorService(conductorRepo, userRepo, notifier, tx, auditor, log)
	vehiculoService := services.NewVehiculoService(vehiculoRepo, conductorRepo, tx, auditor, log)
	rutaService := services.NewRutaService(rutaRepo, tx, auditor, log)
	asociacionService := services.NewAsociacionService(asociacionRepo, conductorRepo, tx, auditor, log)
	seguimientoService := services.NewSeguimientoService(seguimientoRepo, pedidoRepo, conductorRepo, publisher, tx, auditor, log)

	// Handlers
	wsHub := handlers.NewWSHub(cfg, subscriber, log)
	if err := wsHub.Start(gctx); err != nil {
		log.Fatal("failed to subscribe to events", zap.Error(err))
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})

	apphttp.SetupRouter(app, cfg, log, rdb, registry, apphttp.Handlers{
		Auth:         handlers.NewAuthHandler(authService, log),
		User:         handlers.NewUserHandler(authService, log),
		Pedido:       handlers.NewPedidoHandler(pedidoService, log),
		Conductor:    handlers.NewConductorHandler(conductorService, log),
		Vehiculo:     handlers.NewVehiculoHandler(vehiculoService, log),
		Ruta:         handlers.NewRutaHandler(rutaService, log),
		Asociacion:   handlers.NewAsociacionHandler(asociacionService, log),
		Seguimiento:  handlers.NewSeguimientoHandler(seguimientoService, log),
		Notificacion: handlers.NewNotificacionHandler(notificacionRepo, log),
		Audit:        handlers.NewAuditHandler(trail, log),
		WSHub:        wsHub,
	})

	// Graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down...")
		err := app.Shutdown()
		// the channel worker drains what is buffered, then returns
		closeQueue()
		return err
	})

	g.Go(func() error {
		addr := fmt.Sprintf(":%s", cfg.APIPort)
		log.Info("starting API server", zap.String("addr", addr))
		return app.Listen(addr)
	})

	if err := g.Wait(); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}
