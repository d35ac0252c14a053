package audit

import (
	"context"

	"github.com/logistica/backend/internal/models"
)

// Store persists audit records. There is deliberately no update or delete.
type Store interface {
	// Append writes c once. Appending a CaptureID that already exists returns
	// the existing record without writing.
	Append(ctx context.Context, c Capture) (*models.AuditRecord, error)
	Get(ctx context.Context, id int64) (*models.AuditRecord, error)
	// List returns matching records ordered by created_at DESC, id DESC.
	List(ctx context.Context, f Filter) ([]models.AuditRecord, error)
}

// Filter narrows List. Zero values mean "no constraint".
type Filter struct {
	Action     string
	EntityType string
	ActorID    int64
	Limit      int // <= 0 means unlimited
	Offset     int
}

// ByAction, ByEntityType and ByActor build single-field filters.
func ByAction(action string) Filter         { return Filter{Action: action} }
func ByEntityType(entityType string) Filter { return Filter{EntityType: entityType} }
func ByActor(actorID int64) Filter          { return Filter{ActorID: actorID} }

func (f Filter) matches(r *models.AuditRecord) bool {
	if f.Action != "" && r.Action != f.Action {
		return false
	}
	if f.EntityType != "" && r.ModelType != f.EntityType {
		return false
	}
	if f.ActorID > 0 && r.UserID != f.ActorID {
		return false
	}
	return true
}
