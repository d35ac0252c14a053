package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/logistica/backend/internal/http/dto"
	"github.com/logistica/backend/internal/middleware"
	"github.com/logistica/backend/internal/services"
	"go.uber.org/zap"
)

type UserHandler struct {
	authService *services.AuthService
	log         *zap.Logger
}

func NewUserHandler(authService *services.AuthService, log *zap.Logger) *UserHandler {
	return &UserHandler{authService: authService, log: log}
}

func (h *UserHandler) GetMe(c *fiber.Ctx) error {
	user, err := h.authService.Me(c.UserContext(), middleware.GetUserID(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: user})
}
