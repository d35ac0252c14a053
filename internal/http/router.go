package http

import (
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/logistica/backend/internal/config"
	"github.com/logistica/backend/internal/http/handlers"
	"github.com/logistica/backend/internal/middleware"
	"github.com/logistica/backend/internal/models"
	"github.com/logistica/backend/internal/rbac"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Handlers struct {
	Auth         *handlers.AuthHandler
	User         *handlers.UserHandler
	Pedido       *handlers.PedidoHandler
	Conductor    *handlers.ConductorHandler
	Vehiculo     *handlers.VehiculoHandler
	Ruta         *handlers.RutaHandler
	Asociacion   *handlers.AsociacionHandler
	Seguimiento  *handlers.SeguimientoHandler
	Notificacion *handlers.NotificacionHandler
	Audit        *handlers.AuditHandler
	WSHub        *handlers.WSHub
}

func SetupRouter(
	app *fiber.App,
	cfg *config.Config,
	log *zap.Logger,
	rdb *redis.Client,
	gatherer prometheus.Gatherer,
	h Handlers,
) {
	// Global middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID",
	}))
	app.Use(middleware.RequestIDMiddleware())
	app.Use(middleware.LoggerMiddleware(log))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	api := app.Group("/api/v1")
	api.Use(middleware.RateLimitMiddleware(rdb, cfg.RateLimitPerMinute, time.Minute))

	// Auth (public)
	api.Post("/auth/register", h.Auth.Register)
	api.Post("/auth/login", h.Auth.Login)

	// Protected endpoints
	protected := api.Group("", middleware.AuthMiddleware(cfg, log))

	protected.Get("/me", h.User.GetMe)

	RegisterPedidoRoutes(protected, h.Pedido, h.Seguimiento)
	RegisterConductorRoutes(protected, h.Conductor)

	// Vehiculos
	manageVehiculos := middleware.RequirePermission(rbac.PermManageVehiculos)
	protected.Get("/vehiculos", h.Vehiculo.ListVehiculos)
	protected.Get("/vehiculos/:id", h.Vehiculo.GetVehiculo)
	protected.Post("/vehiculos", manageVehiculos, h.Vehiculo.CreateVehiculo)
	protected.Put("/vehiculos/:id", manageVehiculos, h.Vehiculo.UpdateVehiculo)
	protected.Delete("/vehiculos/:id", manageVehiculos, h.Vehiculo.DeleteVehiculo)
	protected.Post("/vehiculos/:id/conductor", manageVehiculos, h.Vehiculo.AssignConductor)
	protected.Delete("/vehiculos/:id/conductor", manageVehiculos, h.Vehiculo.UnassignDriver)

	// Rutas
	manageRutas := middleware.RequirePermission(rbac.PermManageRutas)
	protected.Get("/rutas", h.Ruta.ListRutas)
	protected.Get("/rutas/:id", h.Ruta.GetRuta)
	protected.Post("/rutas", manageRutas, h.Ruta.CreateRuta)
	protected.Put("/rutas/:id", manageRutas, h.Ruta.UpdateRuta)
	protected.Delete("/rutas/:id", manageRutas, h.Ruta.DeleteRuta)

	// Asociaciones
	manageAsociaciones := middleware.RequirePermission(rbac.PermManageAsociaciones)
	protected.Get("/asociaciones", h.Asociacion.ListAsociaciones)
	protected.Get("/asociaciones/:id", h.Asociacion.GetAsociacion)
	protected.Post("/asociaciones", manageAsociaciones, h.Asociacion.CreateAsociacion)
	protected.Put("/asociaciones/:id", manageAsociaciones, h.Asociacion.UpdateAsociacion)
	protected.Delete("/asociaciones/:id", manageAsociaciones, h.Asociacion.DeleteAsociacion)
	protected.Get("/asociaciones/:id/conductores", manageAsociaciones, h.Asociacion.ListConductores)
	protected.Post("/asociaciones/:id/conductores", manageAsociaciones, h.Asociacion.LinkConductor)
	protected.Delete("/asociaciones/:id/conductores/:conductorId", manageAsociaciones, h.Asociacion.UnlinkConductor)

	// Notificaciones
	protected.Get("/notificaciones", h.Notificacion.ListMine)
	protected.Post("/notificaciones/:id/read", h.Notificacion.MarkRead)

	// Audits (admin only)
	RegisterAuditRoutes(protected, h.Audit)

	// WebSocket
	app.Use("/ws", handlers.WSUpgradeMiddleware())
	app.Get("/ws", websocket.New(h.WSHub.HandleWS))
}

// RegisterAuditRoutes mounts the audit trail under r. Fixed segments are
// registered before /audits/:id.
func RegisterAuditRoutes(r fiber.Router, h *handlers.AuditHandler) {
	audits := r.Group("/audits", middleware.RequirePermission(rbac.PermViewAudits))
	audits.Get("/", h.ListAudits)
	audits.Get("/actions", h.ListActions)
	audits.Get("/model/:model", h.ListByModel)
	audits.Get("/user/:userId", h.ListByUser)
	audits.Get("/action/:action", h.ListByAction)
	audits.Get("/:id", h.GetAudit)
}

// RegisterPedidoRoutes mounts orders and their tracking points. Ownership
// rules (own order, assigned driver) are enforced by the services.
func RegisterPedidoRoutes(r fiber.Router, pedido *handlers.PedidoHandler, seguimiento *handlers.SeguimientoHandler) {
	r.Post("/pedidos", middleware.RequirePermission(rbac.PermCreatePedido), pedido.CreatePedido)
	r.Get("/pedidos", middleware.RequirePermission(rbac.PermViewPedidos), pedido.ListPedidos)
	r.Get("/pedidos/:id", middleware.RequirePermission(rbac.PermViewPedidos), pedido.GetPedido)
	r.Put("/pedidos/:id", pedido.UpdatePedido)
	r.Delete("/pedidos/:id", pedido.DeletePedido)
	r.Post("/pedidos/:id/estado", middleware.RequirePermission(rbac.PermUpdatePedidoEstado), pedido.UpdateEstado)
	r.Post("/pedidos/:id/assign", middleware.RequirePermission(rbac.PermAssignPedido), pedido.AssignConductor)
	r.Post("/pedidos/:id/ruta", middleware.RequirePermission(rbac.PermAssignPedido), pedido.AssignRuta)
	r.Post("/pedidos/:id/seguimientos", middleware.RequirePermission(rbac.PermTrackPedido), seguimiento.ReportPosition)
	r.Get("/pedidos/:id/seguimientos", middleware.RequirePermission(rbac.PermViewPedidos), seguimiento.ListPositions)
}

// RegisterConductorRoutes mounts driver profiles. Drivers may create and edit
// their own profile; the service rejects edits to anyone else's.
func RegisterConductorRoutes(r fiber.Router, h *handlers.ConductorHandler) {
	manage := middleware.RequirePermission(rbac.PermManageConductores)
	adminOrSelf := middleware.RequireRoles(models.RoleAdmin, models.RoleConductor)

	r.Get("/conductores/me", middleware.RequireRoles(models.RoleConductor), h.MyProfile)
	r.Post("/conductores", adminOrSelf, h.CreateConductor)
	r.Get("/conductores", manage, h.ListConductores)
	r.Get("/conductores/:id", manage, h.GetConductor)
	r.Put("/conductores/:id", adminOrSelf, h.UpdateConductor)
	r.Delete("/conductores/:id", manage, h.DeleteConductor)
	r.Post("/conductores/:id/verify", middleware.RequirePermission(rbac.PermVerifyConductor), h.VerifyConductor)
}
