package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/logistica/backend/internal/http/dto"
	"github.com/logistica/backend/internal/middleware"
	"github.com/logistica/backend/internal/repositories"
	"github.com/logistica/backend/internal/services"
	"go.uber.org/zap"
)

type PedidoHandler struct {
	pedidoService *services.PedidoService
	log           *zap.Logger
}

func NewPedidoHandler(pedidoService *services.PedidoService, log *zap.Logger) *PedidoHandler {
	return &PedidoHandler{pedidoService: pedidoService, log: log}
}

func (h *PedidoHandler) CreatePedido(c *fiber.Ctx) error {
	var req dto.CreatePedidoRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request")
	}

	pedido, err := h.pedidoService.Create(c.UserContext(), middleware.GetActor(c), services.CreatePedidoInput{
		ClienteID:   req.ClienteID,
		Origen:      req.Origen,
		Destino:     req.Destino,
		Descripcion: req.Descripcion,
		PesoKg:      req.PesoKg,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: pedido})
}

func (h *PedidoHandler) ListPedidos(c *fiber.Ctx) error {
	filter := repositories.PedidoFilter{
		Limit:  queryInt(c, "limit", 20),
		Offset: queryInt(c, "offset", 0),
	}
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	if v := c.Query("estado"); v != "" {
		filter.Estado = &v
	}

	pedidos, err := h.pedidoService.List(c.UserContext(), middleware.GetActor(c), filter)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.PageResponse{OK: true, Data: pedidos, Limit: filter.Limit, Offset: filter.Offset})
}

func (h *PedidoHandler) GetPedido(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid pedido id")
	}
	pedido, err := h.pedidoService.Get(c.UserContext(), middleware.GetActor(c), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: pedido})
}

func (h *PedidoHandler) UpdatePedido(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid pedido id")
	}
	var req dto.UpdatePedidoRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request")
	}

	pedido, err := h.pedidoService.Update(c.UserContext(), middleware.GetActor(c), id, services.UpdatePedidoInput{
		Origen:      req.Origen,
		Destino:     req.Destino,
		Descripcion: req.Descripcion,
		PesoKg:      req.PesoKg,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: pedido})
}

func (h *PedidoHandler) UpdateEstado(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid pedido id")
	}
	var req dto.UpdateEstadoRequest
	if err := c.BodyParser(&req); err != nil || req.Estado == "" {
		return badRequest(c, "estado is required")
	}

	pedido, err := h.pedidoService.UpdateEstado(c.UserContext(), middleware.GetActor(c), id, req.Estado)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: pedido})
}

func (h *PedidoHandler) DeletePedido(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid pedido id")
	}
	if err := h.pedidoService.Delete(c.UserContext(), middleware.GetActor(c), id); err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true})
}

func (h *PedidoHandler) AssignConductor(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid pedido id")
	}
	var req dto.AssignConductorRequest
	if err := c.BodyParser(&req); err != nil || req.ConductorID <= 0 {
		return badRequest(c, "conductor_id is required")
	}

	pedido, err := h.pedidoService.AssignConductor(c.UserContext(), middleware.GetActor(c), id, req.ConductorID, req.VehiculoID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: pedido})
}

func (h *PedidoHandler) AssignRuta(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid pedido id")
	}
	var req dto.AssignRutaRequest
	if err := c.BodyParser(&req); err != nil || req.RutaID <= 0 {
		return badRequest(c, "ruta_id is required")
	}

	pedido, err := h.pedidoService.AssignRuta(c.UserContext(), middleware.GetActor(c), id, req.RutaID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: pedido})
}
