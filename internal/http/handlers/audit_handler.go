package handlers

import (
	"errors"
	"net/url"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/logistica/backend/internal/audit"
	"github.com/logistica/backend/internal/http/dto"
	"github.com/logistica/backend/internal/models"
	"go.uber.org/zap"
)

// AuditHandler serves the read-only audit trail. Routes are mounted behind
// the view_audits permission, so every handler here assumes an admin caller.
type AuditHandler struct {
	trail *audit.Trail
	log   *zap.Logger
}

func NewAuditHandler(trail *audit.Trail, log *zap.Logger) *AuditHandler {
	return &AuditHandler{trail: trail, log: log}
}

// ListAudits handles GET /audits?action=&model_type=&user_id=&limit=&offset=.
func (h *AuditHandler) ListAudits(c *fiber.Ctx) error {
	f := audit.Filter{
		Action:     c.Query("action"),
		EntityType: c.Query("model_type"),
		Limit:      queryInt(c, "limit", 0),
		Offset:     queryInt(c, "offset", 0),
	}
	if raw := c.Query("user_id"); raw != "" {
		actorID, ok := parseActorID(raw)
		if !ok {
			return c.JSON([]models.AuditRecord{})
		}
		f.ActorID = actorID
	}

	records, err := h.trail.List(c.UserContext(), f)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(records)
}

func (h *AuditHandler) ListActions(c *fiber.Ctx) error {
	return c.JSON(h.trail.Actions())
}

func (h *AuditHandler) ListByModel(c *fiber.Ctx) error {
	model, err := url.PathUnescape(c.Params("model"))
	if err != nil {
		return badRequest(c, "invalid model")
	}
	records, err := h.trail.ListByEntityType(c.UserContext(), model)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(records)
}

func (h *AuditHandler) ListByUser(c *fiber.Ctx) error {
	actorID, ok := parseActorID(c.Params("userId"))
	if !ok {
		return c.JSON([]models.AuditRecord{})
	}
	records, err := h.trail.ListByActor(c.UserContext(), actorID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(records)
}

func (h *AuditHandler) ListByAction(c *fiber.Ctx) error {
	action, err := url.PathUnescape(c.Params("action"))
	if err != nil {
		return badRequest(c, "invalid action")
	}
	records, err := h.trail.ListByAction(c.UserContext(), action)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(records)
}

func (h *AuditHandler) GetAudit(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "not found"})
	}
	record, err := h.trail.Get(c.UserContext(), id)
	if errors.Is(err, audit.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "not found"})
	}
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(record)
}

// parseActorID accepts only positive ids; anything else can match no record.
func parseActorID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
