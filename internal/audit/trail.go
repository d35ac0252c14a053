package audit

import (
	"context"

	"github.com/logistica/backend/internal/models"
)

// Trail is the read side of the audit log.
type Trail struct {
	store    Store
	maxLimit int
}

// NewTrail builds a Trail. maxLimit caps the page size a caller may request;
// a filter without a limit is never truncated.
func NewTrail(store Store, maxLimit int) *Trail {
	return &Trail{store: store, maxLimit: maxLimit}
}

// List returns records matching every non-empty field of f, newest first.
func (t *Trail) List(ctx context.Context, f Filter) ([]models.AuditRecord, error) {
	if f.Limit < 0 {
		f.Limit = 0
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	if t.maxLimit > 0 && f.Limit > t.maxLimit {
		f.Limit = t.maxLimit
	}
	records, err := t.store.List(ctx, f)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []models.AuditRecord{}
	}
	return records, nil
}

func (t *Trail) ListByEntityType(ctx context.Context, entityType string) ([]models.AuditRecord, error) {
	return t.List(ctx, ByEntityType(entityType))
}

func (t *Trail) ListByActor(ctx context.Context, actorID int64) ([]models.AuditRecord, error) {
	return t.List(ctx, ByActor(actorID))
}

func (t *Trail) ListByAction(ctx context.Context, action string) ([]models.AuditRecord, error) {
	return t.List(ctx, ByAction(action))
}

func (t *Trail) Get(ctx context.Context, id int64) (*models.AuditRecord, error) {
	return t.store.Get(ctx, id)
}

// Actions lists the action tags the application emits.
func (t *Trail) Actions() []ActionInfo {
	return KnownActions()
}
