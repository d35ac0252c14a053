package audit

import (
	"context"
	"sync"
)

// ChannelQueue is an in-process buffered queue drained by a Worker in the same
// binary. Captures still buffered when the process dies are lost; use
// StreamQueue when that matters.
type ChannelQueue struct {
	mu     sync.RWMutex
	ch     chan Capture
	closed bool
}

func NewChannelQueue(size int) *ChannelQueue {
	if size <= 0 {
		size = 1024
	}
	return &ChannelQueue{ch: make(chan Capture, size)}
}

// Submit blocks while the buffer is full, until ctx ends.
func (q *ChannelQueue) Submit(ctx context.Context, c Capture) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}
	select {
	case q.ch <- c:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *ChannelQueue) Synchronous() bool { return false }

// Close stops accepting captures. Consume drains what is buffered and returns.
func (q *ChannelQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.closed {
		q.closed = true
		close(q.ch)
	}
}

// Len reports buffered captures.
func (q *ChannelQueue) Len() int {
	return len(q.ch)
}

// Consume runs until Close has been called and the buffer is empty. ctx is
// only used for the writes, detached from cancellation so shutdown still
// drains.
func (q *ChannelQueue) Consume(ctx context.Context, handle func(context.Context, Capture) error) error {
	writeCtx := context.WithoutCancel(ctx)
	for c := range q.ch {
		_ = handle(writeCtx, c)
	}
	return nil
}
