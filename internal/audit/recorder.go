package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Delivery disciplines. One is chosen per deployment.
const (
	DeliverySync    = "sync"
	DeliveryChannel = "channel"
	DeliveryStream  = "stream"
)

// Sink receives validated captures.
type Sink interface {
	Submit(ctx context.Context, c Capture) error
	// Synchronous reports whether Submit returns only after the record is
	// durably written.
	Synchronous() bool
}

// Recorder is the single capture entry point for business operations.
type Recorder struct {
	sink    Sink
	metrics *Metrics
	log     *zap.Logger
	now     func() time.Time
}

type RecorderOption func(*Recorder)

func WithMetrics(m *Metrics) RecorderOption {
	return func(r *Recorder) { r.metrics = m }
}

func WithClock(now func() time.Time) RecorderOption {
	return func(r *Recorder) { r.now = now }
}

func NewRecorder(sink Sink, log *zap.Logger, opts ...RecorderOption) *Recorder {
	r := &Recorder{sink: sink, log: log, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Synchronous reports whether captures are persisted before Record returns.
func (r *Recorder) Synchronous() bool {
	return r.sink.Synchronous()
}

// Record validates and submits one capture. changes may be nil.
func (r *Recorder) Record(ctx context.Context, actor Actor, action string, entity Entity, changes map[string]any) error {
	c, err := r.PrepareAt(CallSite(1), actor, action, entity, changes)
	if err != nil {
		return err
	}
	return r.Submit(ctx, c)
}

// PrepareAt builds a Capture without submitting it. site names the business
// call site in error messages.
func (r *Recorder) PrepareAt(site string, actor Actor, action string, entity Entity, changes map[string]any) (Capture, error) {
	if err := validate(actor, action, entity); err != nil {
		r.metrics.incRejected()
		return Capture{}, fmt.Errorf("%w at %s: %v", ErrInvalidCapture, site, err)
	}

	if changes == nil {
		changes = map[string]any{}
	}
	raw, err := json.Marshal(changes)
	if err != nil {
		r.metrics.incRejected()
		return Capture{}, fmt.Errorf("%w at %s (action=%s %s#%d): %v",
			ErrMalformedChanges, site, action, entity.AuditType(), entity.AuditID(), err)
	}

	return Capture{
		CaptureID:  uuid.New(),
		ActorID:    actor.ID,
		Action:     action,
		EntityType: entity.AuditType(),
		EntityID:   entity.AuditID(),
		Changes:    raw,
		OccurredAt: r.now().UTC(),
		CallSite:   site,
	}, nil
}

// Submit hands a prepared capture to the sink.
func (r *Recorder) Submit(ctx context.Context, c Capture) error {
	if err := r.sink.Submit(ctx, c); err != nil {
		r.metrics.incFailed()
		return fmt.Errorf("submit audit %s %s#%d: %w", c.Action, c.EntityType, c.EntityID, err)
	}
	if !r.sink.Synchronous() {
		r.metrics.incEnqueued()
	}
	r.log.Debug("audit captured",
		zap.String("action", c.Action),
		zap.String("model_type", c.EntityType),
		zap.Int64("model_id", c.EntityID),
		zap.Int64("user_id", c.ActorID),
	)
	return nil
}

func validate(actor Actor, action string, entity Entity) error {
	if actor.ID <= 0 {
		return fmt.Errorf("actor is required")
	}
	if strings.TrimSpace(action) == "" {
		return fmt.Errorf("action is required")
	}
	if entity == nil {
		return fmt.Errorf("entity is required")
	}
	if entity.AuditType() == "" {
		return fmt.Errorf("entity type is required")
	}
	if entity.AuditID() <= 0 {
		return fmt.Errorf("entity %s has no persisted id", entity.AuditType())
	}
	return nil
}

// StoreSink writes captures straight to the store. When the caller runs inside
// a database transaction the audit row commits or rolls back with it.
type StoreSink struct {
	store   Store
	metrics *Metrics
}

func NewStoreSink(store Store, metrics *Metrics) *StoreSink {
	return &StoreSink{store: store, metrics: metrics}
}

func (s *StoreSink) Submit(ctx context.Context, c Capture) error {
	start := time.Now()
	if _, err := s.store.Append(ctx, c); err != nil {
		return err
	}
	s.metrics.observePersisted(time.Since(start))
	return nil
}

func (s *StoreSink) Synchronous() bool { return true }
