package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/logistica/backend/internal/events"
	"github.com/logistica/backend/internal/models"
	"github.com/logistica/backend/internal/repositories"
)

// table is a tiny in-memory keyed store shared by the fakes below.
type table[T any] struct {
	mu   sync.Mutex
	rows map[int64]T
	next int64
}

func newTable[T any]() *table[T] {
	return &table[T]{rows: map[int64]T{}}
}

func (t *table[T]) insert(fn func(id int64) T) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.next++
	t.rows[t.next] = fn(t.next)
}

func (t *table[T]) get(id int64) (T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	v, ok := t.rows[id]
	if !ok {
		var zero T
		return zero, repositories.ErrNotFound
	}
	return v, nil
}

func (t *table[T]) put(id int64, v T) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.rows[id]; !ok {
		return repositories.ErrNotFound
	}
	t.rows[id] = v
	return nil
}

func (t *table[T]) remove(id int64) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.rows[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(t.rows, id)
	return nil
}

func (t *table[T]) all() []T {
	t.mu.Lock()
	defer t.mu.Unlock()
	ids := make([]int64, 0, len(t.rows))
	for id := range t.rows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		out = append(out, t.rows[id])
	}
	return out
}

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fakeUsers struct{ t *table[models.User] }

func (f *fakeUsers) Create(_ context.Context, u *models.User) error {
	for _, existing := range f.t.all() {
		if existing.Email == u.Email {
			return repositories.ErrConflict
		}
	}
	f.t.insert(func(id int64) models.User {
		u.ID, u.CreatedAt, u.UpdatedAt = id, fixedNow, fixedNow
		return *u
	})
	return nil
}

func (f *fakeUsers) GetByID(_ context.Context, id int64) (*models.User, error) {
	u, err := f.t.get(id)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range f.t.all() {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repositories.ErrNotFound
}

type fakePedidos struct{ t *table[models.Pedido] }

func (f *fakePedidos) Create(_ context.Context, p *models.Pedido) error {
	f.t.insert(func(id int64) models.Pedido {
		p.ID, p.CreatedAt, p.UpdatedAt = id, fixedNow, fixedNow
		return *p
	})
	return nil
}

func (f *fakePedidos) GetByID(_ context.Context, id int64) (*models.Pedido, error) {
	p, err := f.t.get(id)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (f *fakePedidos) GetForUpdate(ctx context.Context, id int64) (*models.Pedido, error) {
	return f.GetByID(ctx, id)
}

func (f *fakePedidos) Update(_ context.Context, p *models.Pedido) error {
	p.UpdatedAt = time.Now()
	return f.t.put(p.ID, *p)
}

func (f *fakePedidos) Delete(_ context.Context, id int64) error { return f.t.remove(id) }

func (f *fakePedidos) List(_ context.Context, filter repositories.PedidoFilter) ([]models.Pedido, error) {
	out := []models.Pedido{}
	for _, p := range f.t.all() {
		if filter.ClienteID != nil && p.ClienteID != *filter.ClienteID {
			continue
		}
		if filter.ConductorID != nil && (p.ConductorID == nil || *p.ConductorID != *filter.ConductorID) {
			continue
		}
		if filter.Estado != nil && p.Estado != *filter.Estado {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

type fakeConductores struct{ t *table[models.Conductor] }

func (f *fakeConductores) Create(_ context.Context, c *models.Conductor) error {
	f.t.insert(func(id int64) models.Conductor {
		c.ID, c.CreatedAt, c.UpdatedAt = id, fixedNow, fixedNow
		return *c
	})
	return nil
}

func (f *fakeConductores) GetByID(_ context.Context, id int64) (*models.Conductor, error) {
	c, err := f.t.get(id)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (f *fakeConductores) GetByUserID(_ context.Context, userID int64) (*models.Conductor, error) {
	for _, c := range f.t.all() {
		if c.UserID == userID {
			return &c, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeConductores) Update(_ context.Context, c *models.Conductor) error {
	c.UpdatedAt = time.Now()
	return f.t.put(c.ID, *c)
}

func (f *fakeConductores) Delete(_ context.Context, id int64) error { return f.t.remove(id) }

func (f *fakeConductores) List(_ context.Context, estado *string) ([]models.Conductor, error) {
	out := []models.Conductor{}
	for _, c := range f.t.all() {
		if estado == nil || c.EstadoVerificacion == *estado {
			out = append(out, c)
		}
	}
	return out, nil
}

type fakeVehiculos struct{ t *table[models.Vehiculo] }

func (f *fakeVehiculos) Create(_ context.Context, v *models.Vehiculo) error {
	for _, existing := range f.t.all() {
		if existing.Placa == v.Placa {
			return repositories.ErrConflict
		}
	}
	f.t.insert(func(id int64) models.Vehiculo {
		v.ID, v.CreatedAt, v.UpdatedAt = id, fixedNow, fixedNow
		return *v
	})
	return nil
}

func (f *fakeVehiculos) GetByID(_ context.Context, id int64) (*models.Vehiculo, error) {
	v, err := f.t.get(id)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (f *fakeVehiculos) Update(_ context.Context, v *models.Vehiculo) error {
	v.UpdatedAt = time.Now()
	return f.t.put(v.ID, *v)
}

func (f *fakeVehiculos) Delete(_ context.Context, id int64) error { return f.t.remove(id) }

func (f *fakeVehiculos) List(context.Context) ([]models.Vehiculo, error) { return f.t.all(), nil }

type fakeRutas struct{ t *table[models.Ruta] }

func (f *fakeRutas) Create(_ context.Context, r *models.Ruta) error {
	f.t.insert(func(id int64) models.Ruta {
		r.ID, r.CreatedAt, r.UpdatedAt = id, fixedNow, fixedNow
		return *r
	})
	return nil
}

func (f *fakeRutas) GetByID(_ context.Context, id int64) (*models.Ruta, error) {
	r, err := f.t.get(id)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (f *fakeRutas) Update(_ context.Context, r *models.Ruta) error {
	r.UpdatedAt = time.Now()
	return f.t.put(r.ID, *r)
}

func (f *fakeRutas) Delete(_ context.Context, id int64) error { return f.t.remove(id) }

func (f *fakeRutas) List(context.Context) ([]models.Ruta, error) { return f.t.all(), nil }

type fakeAsociaciones struct {
	t     *table[models.Asociacion]
	links *table[models.ConductorAsociacion]
}

func (f *fakeAsociaciones) Create(_ context.Context, a *models.Asociacion) error {
	f.t.insert(func(id int64) models.Asociacion {
		a.ID, a.CreatedAt, a.UpdatedAt = id, fixedNow, fixedNow
		return *a
	})
	return nil
}

func (f *fakeAsociaciones) GetByID(_ context.Context, id int64) (*models.Asociacion, error) {
	a, err := f.t.get(id)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (f *fakeAsociaciones) Update(_ context.Context, a *models.Asociacion) error {
	a.UpdatedAt = time.Now()
	return f.t.put(a.ID, *a)
}

func (f *fakeAsociaciones) Delete(_ context.Context, id int64) error { return f.t.remove(id) }

func (f *fakeAsociaciones) List(context.Context) ([]models.Asociacion, error) { return f.t.all(), nil }

func (f *fakeAsociaciones) CreateLink(_ context.Context, l *models.ConductorAsociacion) error {
	for _, existing := range f.links.all() {
		if existing.ConductorID == l.ConductorID && existing.AsociacionID == l.AsociacionID {
			return repositories.ErrConflict
		}
	}
	f.links.insert(func(id int64) models.ConductorAsociacion {
		l.ID, l.CreatedAt = id, fixedNow
		return *l
	})
	return nil
}

func (f *fakeAsociaciones) GetLink(_ context.Context, conductorID, asociacionID int64) (*models.ConductorAsociacion, error) {
	for _, l := range f.links.all() {
		if l.ConductorID == conductorID && l.AsociacionID == asociacionID {
			return &l, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeAsociaciones) DeleteLink(_ context.Context, id int64) error { return f.links.remove(id) }

func (f *fakeAsociaciones) ListLinks(_ context.Context, asociacionID int64) ([]models.ConductorAsociacion, error) {
	out := []models.ConductorAsociacion{}
	for _, l := range f.links.all() {
		if l.AsociacionID == asociacionID {
			out = append(out, l)
		}
	}
	return out, nil
}

type fakeSeguimientos struct{ t *table[models.Seguimiento] }

func (f *fakeSeguimientos) Create(_ context.Context, s *models.Seguimiento) error {
	f.t.insert(func(id int64) models.Seguimiento {
		s.ID, s.CreatedAt = id, fixedNow
		return *s
	})
	return nil
}

func (f *fakeSeguimientos) ListByPedido(_ context.Context, pedidoID int64, _ int) ([]models.Seguimiento, error) {
	out := []models.Seguimiento{}
	all := f.t.all()
	for i := len(all) - 1; i >= 0; i-- {
		if all[i].PedidoID == pedidoID {
			out = append(out, all[i])
		}
	}
	return out, nil
}

type fakeNotificaciones struct {
	t    *table[models.Notificacion]
	fail bool
}

func (f *fakeNotificaciones) Create(_ context.Context, n *models.Notificacion) error {
	if f.fail {
		return errors.New("notificaciones table unavailable")
	}
	f.t.insert(func(id int64) models.Notificacion {
		n.ID, n.CreatedAt = id, fixedNow
		return *n
	})
	return nil
}

type publishedEvent struct {
	channel string
	event   events.Event
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *recordingPublisher) Publish(_ context.Context, channel string, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{channel: channel, event: e})
	return nil
}

func (p *recordingPublisher) published() []publishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]publishedEvent(nil), p.events...)
}
