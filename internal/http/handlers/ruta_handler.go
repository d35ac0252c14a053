package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/logistica/backend/internal/http/dto"
	"github.com/logistica/backend/internal/middleware"
	"github.com/logistica/backend/internal/services"
	"go.uber.org/zap"
)

type RutaHandler struct {
	rutaService *services.RutaService
	log         *zap.Logger
}

func NewRutaHandler(rutaService *services.RutaService, log *zap.Logger) *RutaHandler {
	return &RutaHandler{rutaService: rutaService, log: log}
}

func rutaInput(req dto.RutaRequest) services.RutaInput {
	return services.RutaInput{Nombre: req.Nombre, Origen: req.Origen, Destino: req.Destino, DistanciaKm: req.DistanciaKm}
}

func (h *RutaHandler) CreateRuta(c *fiber.Ctx) error {
	var req dto.RutaRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request")
	}
	ruta, err := h.rutaService.Create(c.UserContext(), middleware.GetActor(c), rutaInput(req))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: ruta})
}

func (h *RutaHandler) ListRutas(c *fiber.Ctx) error {
	rutas, err := h.rutaService.List(c.UserContext())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: rutas})
}

func (h *RutaHandler) GetRuta(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid ruta id")
	}
	ruta, err := h.rutaService.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: ruta})
}

func (h *RutaHandler) UpdateRuta(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid ruta id")
	}
	var req dto.RutaRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request")
	}
	ruta, err := h.rutaService.Update(c.UserContext(), middleware.GetActor(c), id, rutaInput(req))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: ruta})
}

func (h *RutaHandler) DeleteRuta(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid ruta id")
	}
	if err := h.rutaService.Delete(c.UserContext(), middleware.GetActor(c), id); err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true})
}
