package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/logistica/backend/internal/auth"
	"github.com/logistica/backend/internal/http/dto"
	"github.com/logistica/backend/internal/middleware"
	"github.com/logistica/backend/internal/services"
	"go.uber.org/zap"
)

// respondError maps service errors onto status codes. Storage details never
// reach the client.
func respondError(c *fiber.Ctx, log *zap.Logger, err error) error {
	reqID, _ := c.Locals(middleware.CtxRequestID).(string)

	status, msg := fiber.StatusInternalServerError, "internal error"
	switch {
	case errors.Is(err, services.ErrValidation):
		status, msg = fiber.StatusBadRequest, err.Error()
	case errors.Is(err, services.ErrInvalidTransition):
		status, msg = fiber.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, services.ErrForbidden):
		status, msg = fiber.StatusForbidden, "not authorized"
	case errors.Is(err, services.ErrNotFound):
		status, msg = fiber.StatusNotFound, "not found"
	case errors.Is(err, services.ErrConflict):
		status, msg = fiber.StatusConflict, "already exists"
	case errors.Is(err, auth.ErrInvalidCredentials):
		status, msg = fiber.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, services.ErrOperationIncomplete):
		msg = services.ErrOperationIncomplete.Error()
	}

	if status >= fiber.StatusInternalServerError {
		log.Error("request failed",
			zap.String("request_id", reqID),
			zap.String("path", c.Path()),
			zap.Int64("user_id", middleware.GetUserID(c)),
			zap.Error(err),
		)
	}
	return c.Status(status).JSON(dto.ErrorResponse{Error: msg, RequestID: reqID})
}

func badRequest(c *fiber.Ctx, msg string) error {
	reqID, _ := c.Locals(middleware.CtxRequestID).(string)
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: msg, RequestID: reqID})
}

// paramID parses a positive integer route parameter.
func paramID(c *fiber.Ctx, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func queryInt(c *fiber.Ctx, name string, fallback int) int {
	if v := c.Query(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
