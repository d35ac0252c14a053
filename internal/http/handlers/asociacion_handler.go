package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/logistica/backend/internal/http/dto"
	"github.com/logistica/backend/internal/middleware"
	"github.com/logistica/backend/internal/services"
	"go.uber.org/zap"
)

type AsociacionHandler struct {
	asociacionService *services.AsociacionService
	log               *zap.Logger
}

func NewAsociacionHandler(asociacionService *services.AsociacionService, log *zap.Logger) *AsociacionHandler {
	return &AsociacionHandler{asociacionService: asociacionService, log: log}
}

func (h *AsociacionHandler) CreateAsociacion(c *fiber.Ctx) error {
	var req dto.AsociacionRequest
	if err := c.BodyParser(&req); err != nil || req.Nombre == nil {
		return badRequest(c, "nombre is required")
	}
	asociacion, err := h.asociacionService.Create(c.UserContext(), middleware.GetActor(c), *req.Nombre, req.Descripcion)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: asociacion})
}

func (h *AsociacionHandler) ListAsociaciones(c *fiber.Ctx) error {
	asociaciones, err := h.asociacionService.List(c.UserContext())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: asociaciones})
}

func (h *AsociacionHandler) GetAsociacion(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid asociacion id")
	}
	asociacion, err := h.asociacionService.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: asociacion})
}

func (h *AsociacionHandler) UpdateAsociacion(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid asociacion id")
	}
	var req dto.AsociacionRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request")
	}
	asociacion, err := h.asociacionService.Update(c.UserContext(), middleware.GetActor(c), id, req.Nombre, req.Descripcion)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: asociacion})
}

func (h *AsociacionHandler) DeleteAsociacion(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid asociacion id")
	}
	if err := h.asociacionService.Delete(c.UserContext(), middleware.GetActor(c), id); err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true})
}

func (h *AsociacionHandler) ListConductores(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid asociacion id")
	}
	links, err := h.asociacionService.ListConductores(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: links})
}

func (h *AsociacionHandler) LinkConductor(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid asociacion id")
	}
	var req dto.LinkConductorRequest
	if err := c.BodyParser(&req); err != nil || req.ConductorID <= 0 {
		return badRequest(c, "conductor_id is required")
	}
	link, err := h.asociacionService.LinkConductor(c.UserContext(), middleware.GetActor(c), id, req.ConductorID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: link})
}

func (h *AsociacionHandler) UnlinkConductor(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid asociacion id")
	}
	conductorID, ok := paramID(c, "conductorId")
	if !ok {
		return badRequest(c, "invalid conductor id")
	}
	if err := h.asociacionService.UnlinkConductor(c.UserContext(), middleware.GetActor(c), id, conductorID); err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true})
}
