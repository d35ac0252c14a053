package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/logistica/backend/internal/http/dto"
	"github.com/logistica/backend/internal/middleware"
	"github.com/logistica/backend/internal/services"
	"go.uber.org/zap"
)

type ConductorHandler struct {
	conductorService *services.ConductorService
	log              *zap.Logger
}

func NewConductorHandler(conductorService *services.ConductorService, log *zap.Logger) *ConductorHandler {
	return &ConductorHandler{conductorService: conductorService, log: log}
}

func (h *ConductorHandler) CreateConductor(c *fiber.Ctx) error {
	var req dto.ConductorRequest
	if err := c.BodyParser(&req); err != nil || req.Licencia == nil {
		return badRequest(c, "licencia is required")
	}

	conductor, err := h.conductorService.Create(c.UserContext(), middleware.GetActor(c), services.ConductorInput{
		UserID:   req.UserID,
		Licencia: *req.Licencia,
		Telefono: req.Telefono,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: conductor})
}

func (h *ConductorHandler) ListConductores(c *fiber.Ctx) error {
	conductores, err := h.conductorService.List(c.UserContext(), c.Query("estado_verificacion"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: conductores})
}

func (h *ConductorHandler) MyProfile(c *fiber.Ctx) error {
	conductor, err := h.conductorService.Me(c.UserContext(), middleware.GetActor(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: conductor})
}

func (h *ConductorHandler) GetConductor(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid conductor id")
	}
	conductor, err := h.conductorService.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: conductor})
}

func (h *ConductorHandler) UpdateConductor(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid conductor id")
	}
	var req dto.ConductorRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request")
	}

	conductor, err := h.conductorService.Update(c.UserContext(), middleware.GetActor(c), id, req.Licencia, req.Telefono)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: conductor})
}

func (h *ConductorHandler) VerifyConductor(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid conductor id")
	}
	var req dto.VerifyConductorRequest
	// empty body means verificado
	_ = c.BodyParser(&req)

	conductor, err := h.conductorService.Verify(c.UserContext(), middleware.GetActor(c), id, req.EstadoVerificacion)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: conductor})
}

func (h *ConductorHandler) DeleteConductor(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid conductor id")
	}
	if err := h.conductorService.Delete(c.UserContext(), middleware.GetActor(c), id); err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true})
}
