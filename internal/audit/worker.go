package audit

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Consumer feeds queued captures to a handler until ctx ends or the queue is
// closed and drained.
type Consumer interface {
	Consume(ctx context.Context, handle func(context.Context, Capture) error) error
}

// Worker is the single writer behind an asynchronous queue.
type Worker struct {
	store   Store
	metrics *Metrics
	log     *zap.Logger
}

func NewWorker(store Store, metrics *Metrics, log *zap.Logger) *Worker {
	return &Worker{store: store, metrics: metrics, log: log}
}

func (w *Worker) Run(ctx context.Context, source Consumer) error {
	w.log.Info("audit worker started")
	defer w.log.Info("audit worker stopped")
	return source.Consume(ctx, w.Persist)
}

// Persist writes one capture. Failures are logged with the full capture so an
// operator can replay it.
func (w *Worker) Persist(ctx context.Context, c Capture) error {
	start := time.Now()
	rec, err := w.store.Append(ctx, c)
	if err != nil {
		w.metrics.incFailed()
		w.log.Error("audit persist failed",
			zap.String("capture_id", c.CaptureID.String()),
			zap.String("action", c.Action),
			zap.String("model_type", c.EntityType),
			zap.Int64("model_id", c.EntityID),
			zap.Int64("user_id", c.ActorID),
			zap.ByteString("changes", c.Changes),
			zap.String("call_site", c.CallSite),
			zap.Error(err),
		)
		return err
	}
	w.metrics.observePersisted(time.Since(start))
	w.log.Debug("audit persisted", zap.Int64("id", rec.ID), zap.String("capture_id", c.CaptureID.String()))
	return nil
}
