package services

import (
	"context"
	"fmt"

	"github.com/logistica/backend/internal/audit"
	"github.com/logistica/backend/internal/db"
	"go.uber.org/zap"
)

// Auditor applies one capture policy for every business operation.
//
// With synchronous delivery the audit row is written inside the caller's unit
// of work and a write failure fails the operation. With queued delivery the
// capture is prepared immediately and submitted once the unit of work
// commits, so rolled-back operations never produce a record; submit failures
// are logged and counted instead of reaching the end user.
type Auditor struct {
	recorder *audit.Recorder
	log      *zap.Logger
}

func NewAuditor(recorder *audit.Recorder, log *zap.Logger) *Auditor {
	return &Auditor{recorder: recorder, log: log}
}

// Capture records a mutation of entity with an explicit changes payload.
func (a *Auditor) Capture(ctx context.Context, actor audit.Actor, action string, entity audit.Entity, changes map[string]any) error {
	return a.capture(ctx, audit.CallSite(1), actor, action, entity, changes)
}

// CaptureDiff records a mutation whose changes are the fields that differ
// between before and after.
func (a *Auditor) CaptureDiff(ctx context.Context, actor audit.Actor, action string, before, after audit.Entity) error {
	site := audit.CallSite(1)
	changes, err := audit.Diff(before, after)
	if err != nil {
		return fmt.Errorf("%w: diff at %s: %w", ErrOperationIncomplete, site, err)
	}
	return a.capture(ctx, site, actor, action, after, changes)
}

func (a *Auditor) capture(ctx context.Context, site string, actor audit.Actor, action string, entity audit.Entity, changes map[string]any) error {
	c, err := a.recorder.PrepareAt(site, actor, action, entity, changes)
	if err != nil {
		a.log.Error("audit capture rejected", zap.String("call_site", site), zap.Error(err))
		return fmt.Errorf("%w: %w", ErrOperationIncomplete, err)
	}

	if a.recorder.Synchronous() {
		if err := a.recorder.Submit(ctx, c); err != nil {
			a.log.Error("audit write failed, rolling back", captureFields(c, err)...)
			return fmt.Errorf("%w: %w", ErrOperationIncomplete, err)
		}
		return nil
	}

	db.AfterCommit(ctx, func(ctx context.Context) {
		if err := a.recorder.Submit(context.WithoutCancel(ctx), c); err != nil {
			a.log.Error("audit capture not delivered", captureFields(c, err)...)
		}
	})
	return nil
}

func captureFields(c audit.Capture, err error) []zap.Field {
	return []zap.Field{
		zap.String("capture_id", c.CaptureID.String()),
		zap.String("action", c.Action),
		zap.String("model_type", c.EntityType),
		zap.Int64("model_id", c.EntityID),
		zap.Int64("user_id", c.ActorID),
		zap.String("call_site", c.CallSite),
		zap.Error(err),
	}
}
