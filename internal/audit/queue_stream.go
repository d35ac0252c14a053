package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const streamField = "capture"

type StreamOptions struct {
	Stream   string
	Group    string
	Consumer string
	// MinIdle is how long another consumer's pending entry must sit before it
	// is reclaimed.
	MinIdle time.Duration
	Block   time.Duration
	Batch   int64
}

func (o *StreamOptions) defaults() {
	if o.Stream == "" {
		o.Stream = "audit:captures"
	}
	if o.Group == "" {
		o.Group = "audit-writers"
	}
	if o.Consumer == "" {
		o.Consumer = "worker-1"
	}
	if o.MinIdle <= 0 {
		o.MinIdle = time.Minute
	}
	if o.Block <= 0 {
		o.Block = 5 * time.Second
	}
	if o.Batch <= 0 {
		o.Batch = 50
	}
}

// StreamQueue carries captures over a Redis stream. Entries are acknowledged
// only after the Store accepted them, so delivery is at least once; the
// Store's capture_id uniqueness makes redelivery harmless.
type StreamQueue struct {
	client *redis.Client
	opts   StreamOptions
	log    *zap.Logger
}

func NewStreamQueue(client *redis.Client, opts StreamOptions, log *zap.Logger) *StreamQueue {
	opts.defaults()
	return &StreamQueue{client: client, opts: opts, log: log}
}

func (q *StreamQueue) Submit(ctx context.Context, c Capture) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode capture: %w", err)
	}
	return q.client.XAdd(ctx, &redis.XAddArgs{
		Stream: q.opts.Stream,
		Values: map[string]any{streamField: string(data)},
	}).Err()
}

func (q *StreamQueue) Synchronous() bool { return false }

// EnsureGroup creates the consumer group (and stream) if missing.
func (q *StreamQueue) EnsureGroup(ctx context.Context) error {
	err := q.client.XGroupCreateMkStream(ctx, q.opts.Stream, q.opts.Group, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("create consumer group: %w", err)
	}
	return nil
}

// Consume first replays this consumer's own pending entries, reclaims stale
// entries left by dead consumers, then reads new entries until ctx ends.
func (q *StreamQueue) Consume(ctx context.Context, handle func(context.Context, Capture) error) error {
	if err := q.EnsureGroup(ctx); err != nil {
		return err
	}

	if err := q.drainPending(ctx, handle); err != nil {
		return err
	}
	q.reclaim(ctx, handle)

	lastReclaim := time.Now()
	for {
		if ctx.Err() != nil {
			return nil
		}

		streams, err := q.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    q.opts.Group,
			Consumer: q.opts.Consumer,
			Streams:  []string{q.opts.Stream, ">"},
			Count:    q.opts.Batch,
			Block:    q.opts.Block,
		}).Result()
		switch {
		case errors.Is(err, redis.Nil):
		case err != nil:
			if ctx.Err() != nil {
				return nil
			}
			q.log.Warn("audit stream read failed", zap.Error(err))
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(time.Second):
			}
			continue
		default:
			for _, s := range streams {
				q.process(ctx, s.Messages, handle)
			}
		}

		if time.Since(lastReclaim) > q.opts.MinIdle {
			q.reclaim(ctx, handle)
			lastReclaim = time.Now()
		}
	}
}

func (q *StreamQueue) drainPending(ctx context.Context, handle func(context.Context, Capture) error) error {
	for {
		streams, err := q.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    q.opts.Group,
			Consumer: q.opts.Consumer,
			Streams:  []string{q.opts.Stream, "0"},
			Count:    q.opts.Batch,
			Block:    -1,
		}).Result()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read pending captures: %w", err)
		}

		n := 0
		for _, s := range streams {
			n += len(s.Messages)
			if acked := q.process(ctx, s.Messages, handle); acked < len(s.Messages) {
				// leave the rest pending for the next restart
				return nil
			}
		}
		if n == 0 {
			return nil
		}
	}
}

// reclaim walks the pending list with XAUTOCLAIM's cursor until it wraps, so
// every stale entry is taken over in one pass.
func (q *StreamQueue) reclaim(ctx context.Context, handle func(context.Context, Capture) error) {
	start := "0-0"
	total := 0
	for {
		msgs, next, err := q.client.XAutoClaim(ctx, &redis.XAutoClaimArgs{
			Stream:   q.opts.Stream,
			Group:    q.opts.Group,
			Consumer: q.opts.Consumer,
			MinIdle:  q.opts.MinIdle,
			Start:    start,
			Count:    q.opts.Batch,
		}).Result()
		if err != nil {
			if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
				q.log.Warn("audit stream reclaim failed", zap.Error(err))
			}
			break
		}
		if len(msgs) > 0 {
			total += len(msgs)
			q.process(ctx, msgs, handle)
		}
		if next == "" || next == "0-0" || ctx.Err() != nil {
			break
		}
		start = next
	}
	if total > 0 {
		q.log.Info("reclaimed stale audit captures", zap.Int("count", total))
	}
}

// process handles msgs in order and returns how many were acknowledged.
func (q *StreamQueue) process(ctx context.Context, msgs []redis.XMessage, handle func(context.Context, Capture) error) int {
	acked := 0
	for _, msg := range msgs {
		raw, _ := msg.Values[streamField].(string)
		var c Capture
		if err := json.Unmarshal([]byte(raw), &c); err != nil {
			// poison entry, nothing will ever decode it
			q.log.Error("dropping undecodable audit capture",
				zap.String("stream_id", msg.ID), zap.String("payload", raw), zap.Error(err))
			q.ack(ctx, msg.ID)
			acked++
			continue
		}

		if err := handle(ctx, c); err != nil {
			continue
		}
		q.ack(ctx, msg.ID)
		acked++
	}
	return acked
}

// ack acknowledges id and deletes it from the stream. Every capture has a
// single consumer group, so an acknowledged entry is never read again.
func (q *StreamQueue) ack(ctx context.Context, id string) {
	ctx = context.WithoutCancel(ctx)
	_, err := q.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.XAck(ctx, q.opts.Stream, q.opts.Group, id)
		pipe.XDel(ctx, q.opts.Stream, id)
		return nil
	})
	if err != nil {
		q.log.Warn("audit stream ack failed", zap.String("stream_id", id), zap.Error(err))
	}
}
