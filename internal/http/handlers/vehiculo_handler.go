package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/logistica/backend/internal/http/dto"
	"github.com/logistica/backend/internal/middleware"
	"github.com/logistica/backend/internal/services"
	"go.uber.org/zap"
)

type VehiculoHandler struct {
	vehiculoService *services.VehiculoService
	log             *zap.Logger
}

func NewVehiculoHandler(vehiculoService *services.VehiculoService, log *zap.Logger) *VehiculoHandler {
	return &VehiculoHandler{vehiculoService: vehiculoService, log: log}
}

func vehiculoInput(req dto.VehiculoRequest) services.VehiculoInput {
	return services.VehiculoInput{Placa: req.Placa, Marca: req.Marca, Modelo: req.Modelo, CapacidadKg: req.CapacidadKg}
}

func (h *VehiculoHandler) CreateVehiculo(c *fiber.Ctx) error {
	var req dto.VehiculoRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request")
	}
	vehiculo, err := h.vehiculoService.Create(c.UserContext(), middleware.GetActor(c), vehiculoInput(req))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: vehiculo})
}

func (h *VehiculoHandler) ListVehiculos(c *fiber.Ctx) error {
	vehiculos, err := h.vehiculoService.List(c.UserContext())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: vehiculos})
}

func (h *VehiculoHandler) GetVehiculo(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid vehiculo id")
	}
	vehiculo, err := h.vehiculoService.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: vehiculo})
}

func (h *VehiculoHandler) UpdateVehiculo(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid vehiculo id")
	}
	var req dto.VehiculoRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request")
	}
	vehiculo, err := h.vehiculoService.Update(c.UserContext(), middleware.GetActor(c), id, vehiculoInput(req))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: vehiculo})
}

func (h *VehiculoHandler) DeleteVehiculo(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid vehiculo id")
	}
	if err := h.vehiculoService.Delete(c.UserContext(), middleware.GetActor(c), id); err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true})
}

func (h *VehiculoHandler) AssignConductor(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid vehiculo id")
	}
	var req dto.AssignConductorRequest
	if err := c.BodyParser(&req); err != nil || req.ConductorID <= 0 {
		return badRequest(c, "conductor_id is required")
	}
	vehiculo, err := h.vehiculoService.AssignConductor(c.UserContext(), middleware.GetActor(c), id, req.ConductorID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: vehiculo})
}

func (h *VehiculoHandler) UnassignDriver(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid vehiculo id")
	}
	vehiculo, err := h.vehiculoService.UnassignDriver(c.UserContext(), middleware.GetActor(c), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: vehiculo})
}
