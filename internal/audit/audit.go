// Package audit captures who did what to which entity and serves the
// resulting trail back to administrators.
//
// Business services call Recorder.Record after a mutation has succeeded. The
// Recorder validates and serialises the capture, then hands it to a Sink. The
// Sink decides the delivery discipline for the whole deployment: a StoreSink
// writes synchronously, a ChannelQueue or StreamQueue defers the write to a
// Worker.
package audit

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrInvalidCapture is returned when actor, action or entity are missing.
	ErrInvalidCapture = errors.New("invalid audit capture")
	// ErrMalformedChanges is returned when the changes payload cannot be
	// serialised to JSON. It is a programming error at the call site.
	ErrMalformedChanges = errors.New("malformed audit changes")
	// ErrNotFound is returned by Store.Get for an unknown record id.
	ErrNotFound = errors.New("audit record not found")
	// ErrQueueClosed is returned when submitting to a closed queue.
	ErrQueueClosed = errors.New("audit queue closed")
)

// Entity is anything whose mutations are tracked.
type Entity interface {
	AuditType() string
	AuditID() int64
}

// Actor is the authenticated identity performing an operation.
type Actor struct {
	ID   int64
	Name string
	Role string
}

// Capture is one audit write in flight. It crosses the delivery boundary
// between the business operation and the Worker, so it carries everything the
// Store needs.
type Capture struct {
	CaptureID  uuid.UUID       `json:"capture_id"`
	ActorID    int64           `json:"actor_id"`
	Action     string          `json:"action"`
	EntityType string          `json:"entity_type"`
	EntityID   int64           `json:"entity_id"`
	Changes    json.RawMessage `json:"changes"`
	OccurredAt time.Time       `json:"occurred_at"`
	CallSite   string          `json:"call_site,omitempty"`
}

// EntityRef is a bare Entity for callers that only hold a type and id.
type EntityRef struct {
	Type string
	ID   int64
}

func (r EntityRef) AuditType() string { return r.Type }
func (r EntityRef) AuditID() int64    { return r.ID }

// CallSite returns "file.go:line" for the caller skip frames above the caller
// of CallSite.
func CallSite(skip int) string {
	_, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return "unknown"
	}
	return fmt.Sprintf("%s:%d", filepath.Base(file), line)
}
