package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/logistica/backend/internal/http/dto"
	"github.com/logistica/backend/internal/middleware"
	"github.com/logistica/backend/internal/repositories"
	"go.uber.org/zap"
)

type NotificacionHandler struct {
	notificacionRepo *repositories.NotificacionRepo
	log              *zap.Logger
}

func NewNotificacionHandler(notificacionRepo *repositories.NotificacionRepo, log *zap.Logger) *NotificacionHandler {
	return &NotificacionHandler{notificacionRepo: notificacionRepo, log: log}
}

func (h *NotificacionHandler) ListMine(c *fiber.Ctx) error {
	items, err := h.notificacionRepo.ListByUser(c.UserContext(), middleware.GetUserID(c), c.QueryBool("unread"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: items})
}

func (h *NotificacionHandler) MarkRead(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid notificacion id")
	}
	err := h.notificacionRepo.MarkRead(c.UserContext(), id, middleware.GetUserID(c))
	if errors.Is(err, repositories.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "not found"})
	}
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true})
}
