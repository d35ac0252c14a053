package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/logistica/backend/internal/http/dto"
	"github.com/logistica/backend/internal/middleware"
	"github.com/logistica/backend/internal/services"
	"go.uber.org/zap"
)

type SeguimientoHandler struct {
	seguimientoService *services.SeguimientoService
	log                *zap.Logger
}

func NewSeguimientoHandler(seguimientoService *services.SeguimientoService, log *zap.Logger) *SeguimientoHandler {
	return &SeguimientoHandler{seguimientoService: seguimientoService, log: log}
}

// ReportPosition handles POST /pedidos/:id/seguimientos.
func (h *SeguimientoHandler) ReportPosition(c *fiber.Ctx) error {
	pedidoID, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid pedido id")
	}
	var req dto.SeguimientoRequest
	if err := c.BodyParser(&req); err != nil || req.Latitud == nil || req.Longitud == nil {
		return badRequest(c, "latitud and longitud are required")
	}

	seg, err := h.seguimientoService.Report(c.UserContext(), middleware.GetActor(c), pedidoID, *req.Latitud, *req.Longitud)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: seg})
}

func (h *SeguimientoHandler) ListPositions(c *fiber.Ctx) error {
	pedidoID, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid pedido id")
	}
	segs, err := h.seguimientoService.List(c.UserContext(), middleware.GetActor(c), pedidoID, queryInt(c, "limit", 100))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: segs})
}
