package audit

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/logistica/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type TrailSuite struct {
	suite.Suite
	store *MemoryStore
	trail *Trail
	base  time.Time
}

func TestTrailSuite(t *testing.T) {
	suite.Run(t, new(TrailSuite))
}

func (s *TrailSuite) SetupTest() {
	s.store = NewMemoryStore()
	s.store.RegisterActor(models.AuditUser{ID: 1, Name: "Ana Admin", Role: "admin"})
	s.store.RegisterActor(models.AuditUser{ID: 2, Name: "Bruno Cliente", Role: "cliente"})
	s.trail = NewTrail(s.store, 0)
	s.base = time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)
}

func (s *TrailSuite) append(actorID int64, action, entityType string, entityID int64, offset time.Duration) *models.AuditRecord {
	rec, err := s.store.Append(context.Background(), Capture{
		CaptureID:  uuid.New(),
		ActorID:    actorID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Changes:    []byte(`{}`),
		OccurredAt: s.base.Add(offset),
	})
	s.Require().NoError(err)
	return rec
}

func (s *TrailSuite) seed() {
	s.append(1, ActionCreate, "pedido", 10, 0)
	s.append(2, ActionCreate, "pedido", 11, time.Minute)
	s.append(1, ActionVerify, "conductor", 3, 2*time.Minute)
	s.append(2, ActionUpdate, "pedido", 11, 3*time.Minute)
	s.append(1, ActionAssignConductor, "pedido", 11, 4*time.Minute)
}

func (s *TrailSuite) TestListNewestFirst() {
	s.seed()

	records, err := s.trail.List(context.Background(), Filter{})
	s.Require().NoError(err)
	s.Require().Len(records, 5)
	for i := 1; i < len(records); i++ {
		s.True(records[i-1].CreatedAt.After(records[i].CreatedAt), "records must be strictly newest first")
	}
	s.Equal(ActionAssignConductor, records[0].Action)
}

func (s *TrailSuite) TestTiesBrokenByIDDescending() {
	first := s.append(1, ActionCreate, "ruta", 1, 0)
	second := s.append(1, ActionCreate, "ruta", 2, 0)
	third := s.append(1, ActionCreate, "ruta", 3, 0)

	records, err := s.trail.List(context.Background(), Filter{})
	s.Require().NoError(err)
	s.Require().Len(records, 3)
	s.Equal([]int64{third.ID, second.ID, first.ID}, []int64{records[0].ID, records[1].ID, records[2].ID})
}

func (s *TrailSuite) TestSingleFilterEqualsConvenienceQuery() {
	s.seed()
	ctx := context.Background()

	byFilter, err := s.trail.List(ctx, Filter{Action: ActionCreate})
	s.Require().NoError(err)
	byAction, err := s.trail.ListByAction(ctx, ActionCreate)
	s.Require().NoError(err)
	s.Equal(byFilter, byAction)

	byFilter, err = s.trail.List(ctx, Filter{EntityType: "pedido"})
	s.Require().NoError(err)
	byType, err := s.trail.ListByEntityType(ctx, "pedido")
	s.Require().NoError(err)
	s.Equal(byFilter, byType)
	s.Len(byType, 4)
}

func (s *TrailSuite) TestFiltersCombineWithAnd() {
	s.seed()

	records, err := s.trail.List(context.Background(), Filter{Action: ActionCreate, EntityType: "pedido", ActorID: 2})
	s.Require().NoError(err)
	s.Require().Len(records, 1)
	s.Equal(int64(11), records[0].ModelID)
}

func (s *TrailSuite) TestListByActorOnlyReturnsThatActor() {
	s.seed()

	records, err := s.trail.ListByActor(context.Background(), 1)
	s.Require().NoError(err)
	s.Require().Len(records, 3)
	for i, r := range records {
		s.Equal(int64(1), r.UserID)
		s.Require().NotNil(r.User)
		s.Equal("Ana Admin", r.User.Name)
		if i > 0 {
			s.True(records[i-1].CreatedAt.After(r.CreatedAt))
		}
	}
}

func (s *TrailSuite) TestEmptyFilterValuesAreAbsent() {
	s.seed()

	records, err := s.trail.List(context.Background(), Filter{Action: "", EntityType: "", ActorID: 0})
	s.Require().NoError(err)
	s.Len(records, 5)
}

func (s *TrailSuite) TestUnknownEntityTypeYieldsEmptyList() {
	s.seed()

	records, err := s.trail.ListByEntityType(context.Background(), "App\\Models\\Nope")
	s.Require().NoError(err)
	s.NotNil(records)
	s.Empty(records)
}

func (s *TrailSuite) TestPagination() {
	s.seed()

	page, err := s.trail.List(context.Background(), Filter{Limit: 2, Offset: 1})
	s.Require().NoError(err)
	s.Require().Len(page, 2)
	s.Equal(ActionUpdate, page[0].Action)
	s.Equal(ActionVerify, page[1].Action)

	page, err = s.trail.List(context.Background(), Filter{Offset: 10})
	s.Require().NoError(err)
	s.Empty(page)
}

func (s *TrailSuite) TestMaxLimitCapsRequestedPage() {
	s.seed()
	capped := NewTrail(s.store, 2)

	records, err := capped.List(context.Background(), Filter{Limit: 50})
	s.Require().NoError(err)
	s.Len(records, 2)

	records, err = capped.List(context.Background(), Filter{Limit: 1})
	s.Require().NoError(err)
	s.Len(records, 1)
}

func (s *TrailSuite) TestUnpagedQueriesReturnEveryRecord() {
	const maxLimit = 500
	capped := NewTrail(s.store, maxLimit)
	oldest := s.append(1, ActionCreate, "pedido", 1, 0)
	for i := 1; i <= maxLimit; i++ {
		s.append(1, ActionUpdate, "pedido", 1, time.Duration(i)*time.Second)
	}
	ctx := context.Background()

	all, err := capped.List(ctx, Filter{})
	s.Require().NoError(err)
	s.Len(all, maxLimit+1)
	s.Equal(oldest.ID, all[len(all)-1].ID, "the oldest record must stay reachable")

	byActor, err := capped.ListByActor(ctx, 1)
	s.Require().NoError(err)
	s.Len(byActor, maxLimit+1)

	byType, err := capped.ListByEntityType(ctx, "pedido")
	s.Require().NoError(err)
	s.Len(byType, maxLimit+1)

	byAction, err := capped.ListByAction(ctx, ActionCreate)
	s.Require().NoError(err)
	s.Require().Len(byAction, 1)
	s.Equal(oldest.ID, byAction[0].ID)
}

func (s *TrailSuite) TestRecordsAreImmutableCopies() {
	rec, err := s.store.Append(context.Background(), Capture{
		CaptureID: uuid.New(), ActorID: 1, Action: ActionUpdate, EntityType: "vehiculo", EntityID: 4,
		Changes: []byte(`{"placa":"PBB-0001"}`), OccurredAt: s.base,
	})
	s.Require().NoError(err)

	got, err := s.trail.Get(context.Background(), rec.ID)
	s.Require().NoError(err)
	got.Changes[2] = 'X'
	got.Action = "tampered"

	again, err := s.trail.Get(context.Background(), rec.ID)
	s.Require().NoError(err)
	s.Equal(`{"placa":"PBB-0001"}`, string(again.Changes))
	s.Equal(ActionUpdate, again.Action)
	s.Equal(rec.CreatedAt, again.CreatedAt)
}

func (s *TrailSuite) TestOrphanedActorKeepsHistory() {
	s.seed()
	s.store.ForgetActor(2)

	records, err := s.trail.ListByActor(context.Background(), 2)
	s.Require().NoError(err)
	s.Len(records, 2)
	for _, r := range records {
		s.Nil(r.User)
	}
}

func (s *TrailSuite) TestGetUnknownID() {
	_, err := s.trail.Get(context.Background(), 999)
	s.ErrorIs(err, ErrNotFound)
}

func TestMemoryStore_AppendIsIdempotentPerCapture(t *testing.T) {
	store := NewMemoryStore()
	c := Capture{CaptureID: uuid.New(), ActorID: 1, Action: ActionCreate, EntityType: "ruta", EntityID: 1, OccurredAt: time.Now()}

	first, err := store.Append(context.Background(), c)
	require.NoError(t, err)
	second, err := store.Append(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	records, err := store.List(context.Background(), Filter{})
	require.NoError(t, err)
	assert.Len(t, records, 1)
	assert.JSONEq(t, `{}`, string(records[0].Changes))
}

func TestTrail_ActionsRegistry(t *testing.T) {
	actions := NewTrail(NewMemoryStore(), 0).Actions()
	ids := make([]string, 0, len(actions))
	for _, a := range actions {
		ids = append(ids, a.ID)
	}
	assert.Contains(t, ids, ActionVerify)
	assert.Contains(t, ids, ActionCreateSeguimiento)

	actions[0].ID = "mutated"
	assert.Equal(t, ActionCreate, KnownActions()[0].ID)
}
