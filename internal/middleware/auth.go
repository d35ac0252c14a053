package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/logistica/backend/internal/audit"
	"github.com/logistica/backend/internal/auth"
	"github.com/logistica/backend/internal/config"
	"github.com/logistica/backend/internal/rbac"
	"go.uber.org/zap"
)

const (
	CtxUserID   = "user_id"
	CtxUserRole = "user_role"
	CtxUserName = "user_name"
)

func AuthMiddleware(cfg *config.Config, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing authorization header"})
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenStr == authHeader {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid authorization format"})
		}

		claims, err := auth.ParseJWT(cfg.JWTSecret, tokenStr)
		if err != nil {
			log.Debug("jwt parse error", zap.Error(err))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid or expired token"})
		}

		c.Locals(CtxUserID, claims.UserID)
		c.Locals(CtxUserRole, claims.Role)
		c.Locals(CtxUserName, claims.Name)

		return c.Next()
	}
}

func GetUserID(c *fiber.Ctx) int64 {
	id, _ := c.Locals(CtxUserID).(int64)
	return id
}

func GetUserRole(c *fiber.Ctx) string {
	role, _ := c.Locals(CtxUserRole).(string)
	return role
}

// GetActor returns the authenticated user as an audit actor.
func GetActor(c *fiber.Ctx) audit.Actor {
	name, _ := c.Locals(CtxUserName).(string)
	return audit.Actor{ID: GetUserID(c), Name: name, Role: GetUserRole(c)}
}

// RequireRoles rejects users whose role is not listed.
func RequireRoles(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := GetUserRole(c)
		for _, r := range roles {
			if r == role {
				return c.Next()
			}
		}
		return forbidden(c)
	}
}

func RequirePermission(permission string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !rbac.HasPermission(GetUserRole(c), permission) {
			return forbidden(c)
		}
		return c.Next()
	}
}

func forbidden(c *fiber.Ctx) error {
	reqID, _ := c.Locals(CtxRequestID).(string)
	return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "not authorized", "request_id": reqID})
}
