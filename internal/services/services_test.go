package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/logistica/backend/internal/audit"
	"github.com/logistica/backend/internal/db"
	"github.com/logistica/backend/internal/events"
	"github.com/logistica/backend/internal/models"
	"github.com/logistica/backend/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	adminActor   = audit.Actor{ID: 1, Name: "Ana Admin", Role: models.RoleAdmin}
	clienteActor = audit.Actor{ID: 2, Name: "Carla Cliente", Role: models.RoleCliente}
	otherCliente = audit.Actor{ID: 3, Name: "Otro Cliente", Role: models.RoleCliente}
	driverActor  = audit.Actor{ID: 4, Name: "Diego Conductor", Role: models.RoleConductor}
)

type env struct {
	audits         *audit.MemoryStore
	queue          *audit.ChannelQueue // nil in sync mode
	publisher      *recordingPublisher
	users          *fakeUsers
	pedidos        *fakePedidos
	conductores    *fakeConductores
	vehiculos      *fakeVehiculos
	rutas          *fakeRutas
	asociaciones   *fakeAsociaciones
	seguimientos   *fakeSeguimientos
	notificaciones *fakeNotificaciones

	pedidoSvc      *PedidoService
	conductorSvc   *ConductorService
	vehiculoSvc    *VehiculoService
	rutaSvc        *RutaService
	asociacionSvc  *AsociacionService
	seguimientoSvc *SeguimientoService
}

func newEnv(t *testing.T, sink audit.Sink, audits *audit.MemoryStore) *env {
	t.Helper()
	log := zap.NewNop()
	e := &env{
		audits:         audits,
		publisher:      &recordingPublisher{},
		users:          &fakeUsers{t: newTable[models.User]()},
		pedidos:        &fakePedidos{t: newTable[models.Pedido]()},
		conductores:    &fakeConductores{t: newTable[models.Conductor]()},
		vehiculos:      &fakeVehiculos{t: newTable[models.Vehiculo]()},
		rutas:          &fakeRutas{t: newTable[models.Ruta]()},
		asociaciones:   &fakeAsociaciones{t: newTable[models.Asociacion](), links: newTable[models.ConductorAsociacion]()},
		seguimientos:   &fakeSeguimientos{t: newTable[models.Seguimiento]()},
		notificaciones: &fakeNotificaciones{t: newTable[models.Notificacion]()},
	}
	if q, ok := sink.(*audit.ChannelQueue); ok {
		e.queue = q
	}

	auditor := NewAuditor(audit.NewRecorder(sink, log), log)
	tx := db.LocalTxRunner{}
	notifier := NewNotifier(e.notificaciones, e.publisher, log)

	e.pedidoSvc = NewPedidoService(e.pedidos, e.conductores, e.vehiculos, e.rutas, notifier, e.publisher, tx, auditor, log)
	e.conductorSvc = NewConductorService(e.conductores, e.users, notifier, tx, auditor, log)
	e.vehiculoSvc = NewVehiculoService(e.vehiculos, e.conductores, tx, auditor, log)
	e.rutaSvc = NewRutaService(e.rutas, tx, auditor, log)
	e.asociacionSvc = NewAsociacionService(e.asociaciones, e.conductores, tx, auditor, log)
	e.seguimientoSvc = NewSeguimientoService(e.seguimientos, e.pedidos, e.conductores, e.publisher, tx, auditor, log)
	return e
}

func newSyncEnv(t *testing.T) *env {
	store := audit.NewMemoryStore()
	return newEnv(t, audit.NewStoreSink(store, nil), store)
}

func (e *env) records(t *testing.T) []models.AuditRecord {
	t.Helper()
	records, err := e.audits.List(context.Background(), audit.Filter{})
	require.NoError(t, err)
	return records
}

func changesOf(t *testing.T, r models.AuditRecord) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(r.Changes, &m))
	return m
}

// verifiedDriver registers driverActor as a verified conductor.
func (e *env) verifiedDriver(t *testing.T) *models.Conductor {
	t.Helper()
	c := &models.Conductor{UserID: driverActor.ID, Licencia: "B-123", EstadoVerificacion: models.VerificacionVerificado}
	require.NoError(t, e.conductores.Create(context.Background(), c))
	return c
}

func (e *env) pedido(t *testing.T) *models.Pedido {
	t.Helper()
	p, err := e.pedidoSvc.Create(context.Background(), clienteActor, CreatePedidoInput{Origen: "Lima", Destino: "Cusco", PesoKg: 12})
	require.NoError(t, err)
	return p
}

func TestPedidoCreate_RecordsCreateWithEmptyChanges(t *testing.T) {
	e := newSyncEnv(t)

	p := e.pedido(t)

	records := e.records(t)
	require.Len(t, records, 1)
	assert.Equal(t, audit.ActionCreate, records[0].Action)
	assert.Equal(t, "pedido", records[0].ModelType)
	assert.Equal(t, p.ID, records[0].ModelID)
	assert.Equal(t, clienteActor.ID, records[0].UserID)
	assert.JSONEq(t, `{}`, string(records[0].Changes))
}

func TestPedidoCreate_FailedValidationRecordsNothing(t *testing.T) {
	e := newSyncEnv(t)
	ctx := context.Background()

	_, err := e.pedidoSvc.Create(ctx, clienteActor, CreatePedidoInput{Origen: " ", Destino: "Cusco"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = e.pedidoSvc.Create(ctx, driverActor, CreatePedidoInput{Origen: "Lima", Destino: "Cusco"})
	assert.ErrorIs(t, err, ErrForbidden)

	assert.Empty(t, e.records(t))
}

func TestPedidoUpdate_DiffContainsOnlyChangedFields(t *testing.T) {
	e := newSyncEnv(t)
	p := e.pedido(t)

	destino := "Cusco" // unchanged
	peso := 20.5
	_, err := e.pedidoSvc.Update(context.Background(), clienteActor, p.ID, UpdatePedidoInput{Destino: &destino, PesoKg: &peso})
	require.NoError(t, err)

	records := e.records(t)
	require.Len(t, records, 2)
	update := records[0]
	assert.Equal(t, audit.ActionUpdate, update.Action)
	assert.Equal(t, map[string]any{"peso_kg": 20.5}, changesOf(t, update))
}

func TestPedidoUpdate_ForbiddenForOtherClient(t *testing.T) {
	e := newSyncEnv(t)
	p := e.pedido(t)

	origen := "Arequipa"
	_, err := e.pedidoSvc.Update(context.Background(), otherCliente, p.ID, UpdatePedidoInput{Origen: &origen})
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Len(t, e.records(t), 1, "only the create")
}

func TestPedidoDelete_RecordsDelete(t *testing.T) {
	e := newSyncEnv(t)
	p := e.pedido(t)

	require.NoError(t, e.pedidoSvc.Delete(context.Background(), clienteActor, p.ID))

	records := e.records(t)
	require.Len(t, records, 2)
	assert.Equal(t, audit.ActionDelete, records[0].Action)
	assert.Equal(t, p.ID, records[0].ModelID)
	assert.JSONEq(t, `{}`, string(records[0].Changes))

	_, err := e.pedidoSvc.Get(context.Background(), adminActor, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPedidoAssignConductor(t *testing.T) {
	e := newSyncEnv(t)
	ctx := context.Background()
	p := e.pedido(t)

	pending := &models.Conductor{UserID: 99, Licencia: "X", EstadoVerificacion: models.VerificacionPendiente}
	require.NoError(t, e.conductores.Create(ctx, pending))
	_, err := e.pedidoSvc.AssignConductor(ctx, adminActor, p.ID, pending.ID, nil)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Len(t, e.records(t), 1)

	c := e.verifiedDriver(t)
	updated, err := e.pedidoSvc.AssignConductor(ctx, adminActor, p.ID, c.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, models.PedidoEstadoAsignado, updated.Estado)

	records := e.records(t)
	require.Len(t, records, 2)
	assert.Equal(t, audit.ActionAssignConductor, records[0].Action)
	assert.Equal(t, map[string]any{"conductor_id": float64(c.ID), "estado": "asignado"}, changesOf(t, records[0]))

	notifs := e.notificaciones.t.all()
	require.Len(t, notifs, 2)
	assert.Equal(t, clienteActor.ID, notifs[0].UserID)
	assert.Equal(t, driverActor.ID, notifs[1].UserID)

	var estadoEvents int
	for _, ev := range e.publisher.published() {
		if ev.channel == events.ChannelPedido {
			estadoEvents++
		}
	}
	assert.Equal(t, 1, estadoEvents)
}

func TestPedidoUpdateEstado(t *testing.T) {
	e := newSyncEnv(t)
	ctx := context.Background()
	p := e.pedido(t)
	c := e.verifiedDriver(t)
	_, err := e.pedidoSvc.AssignConductor(ctx, adminActor, p.ID, c.ID, nil)
	require.NoError(t, err)

	_, err = e.pedidoSvc.UpdateEstado(ctx, driverActor, p.ID, models.PedidoEstadoEntregado)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = e.pedidoSvc.UpdateEstado(ctx, clienteActor, p.ID, models.PedidoEstadoEnTransito)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Len(t, e.records(t), 2, "failed attempts record nothing")

	_, err = e.pedidoSvc.UpdateEstado(ctx, driverActor, p.ID, models.PedidoEstadoEnTransito)
	require.NoError(t, err)

	records := e.records(t)
	require.Len(t, records, 3)
	assert.Equal(t, audit.ActionUpdate, records[0].Action)
	assert.Equal(t, map[string]any{"estado": "en_transito"}, changesOf(t, records[0]))
}

func TestPedidoAssignRuta(t *testing.T) {
	e := newSyncEnv(t)
	ctx := context.Background()
	p := e.pedido(t)

	_, err := e.pedidoSvc.AssignRuta(ctx, adminActor, p.ID, 77)
	assert.ErrorIs(t, err, ErrValidation)

	r, err := e.rutaSvc.Create(ctx, adminActor, RutaInput{Nombre: ptr("Sur"), Origen: ptr("Lima"), Destino: ptr("Cusco")})
	require.NoError(t, err)
	_, err = e.pedidoSvc.AssignRuta(ctx, adminActor, p.ID, r.ID)
	require.NoError(t, err)

	latest := e.records(t)[0]
	assert.Equal(t, audit.ActionAssignRuta, latest.Action)
	assert.Equal(t, map[string]any{"ruta_id": float64(r.ID)}, changesOf(t, latest))
}

func TestPedidoList_ScopedByRole(t *testing.T) {
	e := newSyncEnv(t)
	ctx := context.Background()
	mine := e.pedido(t)
	_, err := e.pedidoSvc.Create(ctx, otherCliente, CreatePedidoInput{Origen: "A", Destino: "B"})
	require.NoError(t, err)

	list, err := e.pedidoSvc.List(ctx, clienteActor, repositories.PedidoFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, mine.ID, list[0].ID)

	list, err = e.pedidoSvc.List(ctx, adminActor, repositories.PedidoFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 2)

	list, err = e.pedidoSvc.List(ctx, driverActor, repositories.PedidoFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = e.pedidoSvc.Get(ctx, otherCliente, mine.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestConductorVerify_RecordsOnlyChangedField(t *testing.T) {
	e := newSyncEnv(t)
	ctx := context.Background()
	require.NoError(t, e.users.Create(ctx, &models.User{Name: "D", Email: "d@example.com", Role: models.RoleConductor}))

	c, err := e.conductorSvc.Create(ctx, driverActor, ConductorInput{Licencia: "B-1"})
	// driverActor.ID is 4 and no such user exists yet
	require.ErrorIs(t, err, ErrValidation)
	require.Nil(t, c)

	u, err := e.users.GetByEmail(ctx, "d@example.com")
	require.NoError(t, err)
	c, err = e.conductorSvc.Create(ctx, adminActor, ConductorInput{UserID: &u.ID, Licencia: "B-1"})
	require.NoError(t, err)
	assert.Equal(t, models.VerificacionPendiente, c.EstadoVerificacion)

	_, err = e.conductorSvc.Verify(ctx, clienteActor, c.ID, models.VerificacionVerificado)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = e.conductorSvc.Verify(ctx, adminActor, c.ID, models.VerificacionVerificado)
	require.NoError(t, err)

	records := e.records(t)
	require.Len(t, records, 2)
	verify := records[0]
	assert.Equal(t, audit.ActionVerify, verify.Action)
	assert.Equal(t, "conductor", verify.ModelType)
	assert.Equal(t, c.ID, verify.ModelID)
	assert.JSONEq(t, `{"estado_verificacion":"verificado"}`, string(verify.Changes))

	notifs := e.notificaciones.t.all()
	require.Len(t, notifs, 1)
	assert.Equal(t, u.ID, notifs[0].UserID)
}

func TestVehiculo_AssignAndUnassignDriver(t *testing.T) {
	e := newSyncEnv(t)
	ctx := context.Background()
	c := e.verifiedDriver(t)

	v, err := e.vehiculoSvc.Create(ctx, adminActor, VehiculoInput{Placa: ptr("abc-123"), Marca: ptr("Volvo"), Modelo: ptr("FH"), CapacidadKg: ptrF(18000)})
	require.NoError(t, err)
	assert.Equal(t, "ABC-123", v.Placa)

	_, err = e.vehiculoSvc.Create(ctx, adminActor, VehiculoInput{Placa: ptr("ABC-123"), Marca: ptr("Volvo"), Modelo: ptr("FH")})
	assert.ErrorIs(t, err, ErrConflict)

	_, err = e.vehiculoSvc.AssignConductor(ctx, adminActor, v.ID, c.ID)
	require.NoError(t, err)
	_, err = e.vehiculoSvc.UnassignDriver(ctx, adminActor, v.ID)
	require.NoError(t, err)
	_, err = e.vehiculoSvc.UnassignDriver(ctx, adminActor, v.ID)
	assert.ErrorIs(t, err, ErrValidation)

	records := e.records(t)
	require.Len(t, records, 3)
	assert.Equal(t, audit.ActionUnassignDriver, records[0].Action)
	assert.Equal(t, map[string]any{"conductor_id": nil}, changesOf(t, records[0]))
	assert.Equal(t, audit.ActionAssignConductor, records[1].Action)
	assert.Equal(t, map[string]any{"conductor_id": float64(c.ID)}, changesOf(t, records[1]))
	assert.Equal(t, audit.ActionCreate, records[2].Action)

	_, err = e.vehiculoSvc.Create(ctx, clienteActor, VehiculoInput{Placa: ptr("Z")})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestRutaAndAsociacion_CRUDRecordsEachMutation(t *testing.T) {
	e := newSyncEnv(t)
	ctx := context.Background()

	r, err := e.rutaSvc.Create(ctx, adminActor, RutaInput{Nombre: ptr("Norte"), Origen: ptr("Lima"), Destino: ptr("Piura"), DistanciaKm: ptrF(980)})
	require.NoError(t, err)
	_, err = e.rutaSvc.Update(ctx, adminActor, r.ID, RutaInput{DistanciaKm: ptrF(990)})
	require.NoError(t, err)
	require.NoError(t, e.rutaSvc.Delete(ctx, adminActor, r.ID))

	a, err := e.asociacionSvc.Create(ctx, adminActor, "Transportistas Unidos", nil)
	require.NoError(t, err)
	c := e.verifiedDriver(t)
	link, err := e.asociacionSvc.LinkConductor(ctx, adminActor, a.ID, c.ID)
	require.NoError(t, err)
	_, err = e.asociacionSvc.LinkConductor(ctx, adminActor, a.ID, c.ID)
	assert.ErrorIs(t, err, ErrConflict)
	require.NoError(t, e.asociacionSvc.UnlinkConductor(ctx, adminActor, a.ID, c.ID))

	records := e.records(t)
	require.Len(t, records, 6)

	type key struct{ action, model string }
	got := map[key]int{}
	for _, r := range records {
		got[key{r.Action, r.ModelType}]++
	}
	assert.Equal(t, map[key]int{
		{audit.ActionCreate, "ruta"}:                 1,
		{audit.ActionUpdate, "ruta"}:                 1,
		{audit.ActionDelete, "ruta"}:                 1,
		{audit.ActionCreate, "asociacion"}:           1,
		{audit.ActionCreate, "conductor_asociacion"}: 1,
		{audit.ActionDelete, "conductor_asociacion"}: 1,
	}, got)

	assert.Equal(t, map[string]any{"distancia_km": float64(990)}, changesOf(t, records[4]))
	assert.Equal(t, link.ID, records[0].ModelID)
}

func TestSeguimientoReport(t *testing.T) {
	e := newSyncEnv(t)
	ctx := context.Background()
	p := e.pedido(t)
	c := e.verifiedDriver(t)

	_, err := e.seguimientoSvc.Report(ctx, driverActor, p.ID, -12.04, -77.03)
	assert.ErrorIs(t, err, ErrForbidden, "not assigned yet")

	_, err = e.pedidoSvc.AssignConductor(ctx, adminActor, p.ID, c.ID, nil)
	require.NoError(t, err)

	_, err = e.seguimientoSvc.Report(ctx, driverActor, p.ID, 91, 0)
	assert.ErrorIs(t, err, ErrValidation)

	seg, err := e.seguimientoSvc.Report(ctx, driverActor, p.ID, -12.04, -77.03)
	require.NoError(t, err)

	latest := e.records(t)[0]
	assert.Equal(t, audit.ActionCreateSeguimiento, latest.Action)
	assert.Equal(t, "seguimiento", latest.ModelType)
	assert.Equal(t, seg.ID, latest.ModelID)

	var found bool
	for _, ev := range e.publisher.published() {
		if ev.channel == events.ChannelSeguimiento {
			found = true
			assert.Equal(t, events.EventSeguimientoCreated, ev.event.Type)
			cliente, _ := ev.event.Int64("cliente_id")
			assert.Equal(t, clienteActor.ID, cliente)
		}
	}
	assert.True(t, found)

	list, err := e.seguimientoSvc.List(ctx, clienteActor, p.ID, 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	_, err = e.seguimientoSvc.List(ctx, otherCliente, p.ID, 0)
	assert.ErrorIs(t, err, ErrForbidden)
}

// failingAudits rejects every write.
type failingAudits struct{ *audit.MemoryStore }

func (failingAudits) Append(context.Context, audit.Capture) (*models.AuditRecord, error) {
	return nil, errors.New("audit table unavailable")
}

func TestSyncDelivery_AuditFailureFailsOperation(t *testing.T) {
	store := audit.NewMemoryStore()
	e := newEnv(t, audit.NewStoreSink(failingAudits{store}, nil), store)

	_, err := e.pedidoSvc.Create(context.Background(), clienteActor, CreatePedidoInput{Origen: "Lima", Destino: "Cusco"})
	require.ErrorIs(t, err, ErrOperationIncomplete)
	assert.Equal(t, "operation could not be completed", ErrOperationIncomplete.Error())
}

func TestQueuedDelivery_SubmitsOnlyAfterCommit(t *testing.T) {
	store := audit.NewMemoryStore()
	queue := audit.NewChannelQueue(16)
	e := newEnv(t, queue, store)
	ctx := context.Background()

	p := e.pedido(t)
	assert.Equal(t, 1, queue.Len())

	// validation failure: nothing enqueued
	bad := " "
	_, err := e.pedidoSvc.Update(ctx, clienteActor, p.ID, UpdatePedidoInput{Origen: &bad})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, 1, queue.Len())

	// failure after the capture was prepared rolls the capture back too
	c := e.verifiedDriver(t)
	e.notificaciones.fail = true
	_, err = e.pedidoSvc.AssignConductor(ctx, adminActor, p.ID, c.ID, nil)
	require.Error(t, err)
	assert.Equal(t, 1, queue.Len())

	e.notificaciones.fail = false
	_, err = e.pedidoSvc.AssignConductor(ctx, adminActor, p.ID, c.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, queue.Len())

	queue.Close()
	require.NoError(t, audit.NewWorker(store, nil, zap.NewNop()).Run(ctx, queue))
	records := e.records(t)
	require.Len(t, records, 2)
	assert.Equal(t, audit.ActionAssignConductor, records[0].Action)
}

func TestQueuedDelivery_SubmitFailureDoesNotFailOperation(t *testing.T) {
	store := audit.NewMemoryStore()
	queue := audit.NewChannelQueue(1)
	queue.Close()
	e := newEnv(t, queue, store)

	p, err := e.pedidoSvc.Create(context.Background(), clienteActor, CreatePedidoInput{Origen: "Lima", Destino: "Cusco"})
	require.NoError(t, err)
	assert.NotZero(t, p.ID)
}

func ptr(s string) *string { return &s }
func ptrF(f float64) *float64 { return &f }
