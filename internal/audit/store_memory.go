package audit

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/logistica/backend/internal/models"
)

// MemoryStore is an in-process Store used by tests and single-node demos.
type MemoryStore struct {
	mu        sync.RWMutex
	nextID    int64
	records   []models.AuditRecord
	byCapture map[uuid.UUID]int
	actors    map[int64]models.AuditUser
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byCapture: make(map[uuid.UUID]int),
		actors:    make(map[int64]models.AuditUser),
	}
}

// RegisterActor makes u available for actor enrichment on reads.
func (s *MemoryStore) RegisterActor(u models.AuditUser) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.actors[u.ID] = u
}

// ForgetActor simulates the actor row being deleted.
func (s *MemoryStore) ForgetActor(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.actors, id)
}

func (s *MemoryStore) Append(_ context.Context, c Capture) (*models.AuditRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if idx, ok := s.byCapture[c.CaptureID]; ok {
		rec := s.enrich(s.records[idx])
		return &rec, nil
	}

	s.nextID++
	changes := c.Changes
	if len(changes) == 0 {
		changes = []byte("{}")
	}
	rec := models.AuditRecord{
		ID:        s.nextID,
		UserID:    c.ActorID,
		Action:    c.Action,
		ModelType: c.EntityType,
		ModelID:   c.EntityID,
		Changes:   append([]byte(nil), changes...),
		CreatedAt: c.OccurredAt,
		UpdatedAt: c.OccurredAt,
	}
	s.records = append(s.records, rec)
	s.byCapture[c.CaptureID] = len(s.records) - 1

	out := s.enrich(rec)
	return &out, nil
}

func (s *MemoryStore) Get(_ context.Context, id int64) (*models.AuditRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.records {
		if r.ID == id {
			out := s.enrich(r)
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) List(_ context.Context, f Filter) ([]models.AuditRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.AuditRecord, 0, len(s.records))
	for i := range s.records {
		if f.matches(&s.records[i]) {
			out = append(out, s.enrich(s.records[i]))
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})

	if f.Offset > 0 {
		if f.Offset >= len(out) {
			return []models.AuditRecord{}, nil
		}
		out = out[f.Offset:]
	}
	if f.Limit > 0 && f.Limit < len(out) {
		out = out[:f.Limit]
	}
	return out, nil
}

// enrich copies r so callers can never mutate stored bytes.
func (s *MemoryStore) enrich(r models.AuditRecord) models.AuditRecord {
	r.Changes = append([]byte(nil), r.Changes...)
	if u, ok := s.actors[r.UserID]; ok {
		r.User = &u
	}
	return r
}
