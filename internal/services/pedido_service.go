package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/logistica/backend/internal/audit"
	"github.com/logistica/backend/internal/db"
	"github.com/logistica/backend/internal/events"
	"github.com/logistica/backend/internal/models"
	"github.com/logistica/backend/internal/repositories"
	"go.uber.org/zap"
)

type PedidoService struct {
	pedidos     PedidoStore
	conductores ConductorStore
	vehiculos   VehiculoStore
	rutas       RutaStore
	notifier    *Notifier
	publisher   events.Publisher
	tx          db.TxRunner
	auditor     *Auditor
	log         *zap.Logger
}

func NewPedidoService(
	pedidos PedidoStore,
	conductores ConductorStore,
	vehiculos VehiculoStore,
	rutas RutaStore,
	notifier *Notifier,
	publisher events.Publisher,
	tx db.TxRunner,
	auditor *Auditor,
	log *zap.Logger,
) *PedidoService {
	return &PedidoService{
		pedidos:     pedidos,
		conductores: conductores,
		vehiculos:   vehiculos,
		rutas:       rutas,
		notifier:    notifier,
		publisher:   publisher,
		tx:          tx,
		auditor:     auditor,
		log:         log,
	}
}

type CreatePedidoInput struct {
	ClienteID   *int64 // admins may create on behalf of a client
	Origen      string
	Destino     string
	Descripcion *string
	PesoKg      float64
}

type UpdatePedidoInput struct {
	Origen      *string
	Destino     *string
	Descripcion *string
	PesoKg      *float64
}

func (s *PedidoService) Create(ctx context.Context, actor audit.Actor, in CreatePedidoInput) (*models.Pedido, error) {
	if actor.Role != models.RoleCliente && actor.Role != models.RoleAdmin {
		return nil, ErrForbidden
	}
	origen, destino := strings.TrimSpace(in.Origen), strings.TrimSpace(in.Destino)
	if origen == "" || destino == "" {
		return nil, validationError("origen and destino are required")
	}
	if in.PesoKg < 0 {
		return nil, validationError("peso_kg must not be negative")
	}

	clienteID := actor.ID
	if actor.Role == models.RoleAdmin && in.ClienteID != nil {
		clienteID = *in.ClienteID
	}

	p := &models.Pedido{
		ClienteID:   clienteID,
		Origen:      origen,
		Destino:     destino,
		Descripcion: in.Descripcion,
		PesoKg:      in.PesoKg,
		Estado:      models.PedidoEstadoPendiente,
	}

	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.pedidos.Create(ctx, p); err != nil {
			return storeError("create pedido", err)
		}
		return s.auditor.Capture(ctx, actor, audit.ActionCreate, p, nil)
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PedidoService) Update(ctx context.Context, actor audit.Actor, id int64, in UpdatePedidoInput) (*models.Pedido, error) {
	var updated *models.Pedido
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		before, err := s.pedidos.GetForUpdate(ctx, id)
		if err != nil {
			return storeError("get pedido", err)
		}
		if !canEditPedido(actor, before) {
			return ErrForbidden
		}

		after := *before
		if in.Origen != nil {
			if after.Origen = strings.TrimSpace(*in.Origen); after.Origen == "" {
				return validationError("origen must not be empty")
			}
		}
		if in.Destino != nil {
			if after.Destino = strings.TrimSpace(*in.Destino); after.Destino == "" {
				return validationError("destino must not be empty")
			}
		}
		if in.Descripcion != nil {
			after.Descripcion = in.Descripcion
		}
		if in.PesoKg != nil {
			if *in.PesoKg < 0 {
				return validationError("peso_kg must not be negative")
			}
			after.PesoKg = *in.PesoKg
		}

		if err := s.pedidos.Update(ctx, &after); err != nil {
			return storeError("update pedido", err)
		}
		updated = &after
		return s.auditor.CaptureDiff(ctx, actor, audit.ActionUpdate, before, &after)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// UpdateEstado moves the order through its lifecycle. Only the assigned
// driver or an admin may do so.
func (s *PedidoService) UpdateEstado(ctx context.Context, actor audit.Actor, id int64, estado string) (*models.Pedido, error) {
	var updated *models.Pedido
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		before, err := s.pedidos.GetForUpdate(ctx, id)
		if err != nil {
			return storeError("get pedido", err)
		}

		switch actor.Role {
		case models.RoleAdmin:
		case models.RoleConductor:
			if !s.isAssignedConductor(ctx, actor, before) {
				return ErrForbidden
			}
		default:
			return ErrForbidden
		}

		if !models.IsValidPedidoTransition(before.Estado, estado) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, before.Estado, estado)
		}

		after := *before
		after.Estado = estado
		if estado == models.PedidoEstadoPendiente {
			// back to the pool
			after.ConductorID, after.VehiculoID = nil, nil
		}
		if err := s.pedidos.Update(ctx, &after); err != nil {
			return storeError("update pedido", err)
		}
		if err := s.auditor.CaptureDiff(ctx, actor, audit.ActionUpdate, before, &after); err != nil {
			return err
		}

		if err := s.notifier.Notify(ctx, after.ClienteID, "Estado del pedido",
			fmt.Sprintf("Tu pedido #%d ahora está %s", after.ID, after.Estado)); err != nil {
			return err
		}
		s.publishEstado(ctx, before.Estado, &after)
		updated = &after
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *PedidoService) Delete(ctx context.Context, actor audit.Actor, id int64) error {
	return s.tx.InTx(ctx, func(ctx context.Context) error {
		p, err := s.pedidos.GetForUpdate(ctx, id)
		if err != nil {
			return storeError("get pedido", err)
		}
		if !canEditPedido(actor, p) {
			return ErrForbidden
		}
		if err := s.pedidos.Delete(ctx, id); err != nil {
			return storeError("delete pedido", err)
		}
		return s.auditor.Capture(ctx, actor, audit.ActionDelete, p, nil)
	})
}

// AssignConductor hands the order to a verified driver and, optionally, a
// vehicle.
func (s *PedidoService) AssignConductor(ctx context.Context, actor audit.Actor, id, conductorID int64, vehiculoID *int64) (*models.Pedido, error) {
	if actor.Role != models.RoleAdmin {
		return nil, ErrForbidden
	}

	var updated *models.Pedido
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		before, err := s.pedidos.GetForUpdate(ctx, id)
		if err != nil {
			return storeError("get pedido", err)
		}
		if before.Estado != models.PedidoEstadoPendiente && before.Estado != models.PedidoEstadoAsignado {
			return validationError("pedido in estado %s cannot be reassigned", before.Estado)
		}

		conductor, err := s.conductores.GetByID(ctx, conductorID)
		if errors.Is(err, repositories.ErrNotFound) {
			return validationError("conductor %d does not exist", conductorID)
		}
		if err != nil {
			return storeError("get conductor", err)
		}
		if conductor.EstadoVerificacion != models.VerificacionVerificado {
			return validationError("conductor %d is not verified", conductorID)
		}
		if vehiculoID != nil {
			if _, err := s.vehiculos.GetByID(ctx, *vehiculoID); errors.Is(err, repositories.ErrNotFound) {
				return validationError("vehiculo %d does not exist", *vehiculoID)
			} else if err != nil {
				return storeError("get vehiculo", err)
			}
		}

		after := *before
		after.ConductorID = &conductor.ID
		after.VehiculoID = vehiculoID
		after.Estado = models.PedidoEstadoAsignado
		if err := s.pedidos.Update(ctx, &after); err != nil {
			return storeError("update pedido", err)
		}
		if err := s.auditor.CaptureDiff(ctx, actor, audit.ActionAssignConductor, before, &after); err != nil {
			return err
		}

		if err := s.notifier.Notify(ctx, after.ClienteID, "Conductor asignado",
			fmt.Sprintf("Tu pedido #%d fue asignado a un conductor", after.ID)); err != nil {
			return err
		}
		if err := s.notifier.Notify(ctx, conductor.UserID, "Nuevo pedido",
			fmt.Sprintf("Se te asignó el pedido #%d (%s -> %s)", after.ID, after.Origen, after.Destino)); err != nil {
			return err
		}
		if before.Estado != after.Estado {
			s.publishEstado(ctx, before.Estado, &after)
		}
		updated = &after
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *PedidoService) AssignRuta(ctx context.Context, actor audit.Actor, id, rutaID int64) (*models.Pedido, error) {
	if actor.Role != models.RoleAdmin {
		return nil, ErrForbidden
	}

	var updated *models.Pedido
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		before, err := s.pedidos.GetForUpdate(ctx, id)
		if err != nil {
			return storeError("get pedido", err)
		}
		if _, err := s.rutas.GetByID(ctx, rutaID); errors.Is(err, repositories.ErrNotFound) {
			return validationError("ruta %d does not exist", rutaID)
		} else if err != nil {
			return storeError("get ruta", err)
		}

		after := *before
		after.RutaID = &rutaID
		if err := s.pedidos.Update(ctx, &after); err != nil {
			return storeError("update pedido", err)
		}
		updated = &after
		return s.auditor.CaptureDiff(ctx, actor, audit.ActionAssignRuta, before, &after)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *PedidoService) Get(ctx context.Context, actor audit.Actor, id int64) (*models.Pedido, error) {
	p, err := s.pedidos.GetByID(ctx, id)
	if err != nil {
		return nil, storeError("get pedido", err)
	}
	if !s.canView(ctx, actor, p) {
		// hide existence from outsiders
		return nil, fmt.Errorf("get pedido: %w", ErrNotFound)
	}
	return p, nil
}

// List scopes results by role: clients see their own orders, drivers the ones
// assigned to them, admins everything.
func (s *PedidoService) List(ctx context.Context, actor audit.Actor, f repositories.PedidoFilter) ([]models.Pedido, error) {
	switch actor.Role {
	case models.RoleAdmin:
	case models.RoleCliente:
		f.ClienteID = &actor.ID
	case models.RoleConductor:
		c, err := s.conductores.GetByUserID(ctx, actor.ID)
		if errors.Is(err, repositories.ErrNotFound) {
			return []models.Pedido{}, nil
		}
		if err != nil {
			return nil, storeError("get conductor", err)
		}
		f.ConductorID = &c.ID
	default:
		return nil, ErrForbidden
	}

	pedidos, err := s.pedidos.List(ctx, f)
	if err != nil {
		return nil, storeError("list pedidos", err)
	}
	return pedidos, nil
}

func (s *PedidoService) canView(ctx context.Context, actor audit.Actor, p *models.Pedido) bool {
	switch actor.Role {
	case models.RoleAdmin:
		return true
	case models.RoleCliente:
		return p.ClienteID == actor.ID
	case models.RoleConductor:
		return s.isAssignedConductor(ctx, actor, p)
	}
	return false
}

func (s *PedidoService) isAssignedConductor(ctx context.Context, actor audit.Actor, p *models.Pedido) bool {
	if p.ConductorID == nil {
		return false
	}
	c, err := s.conductores.GetByUserID(ctx, actor.ID)
	if err != nil {
		return false
	}
	return c.ID == *p.ConductorID
}

func (s *PedidoService) publishEstado(ctx context.Context, from string, p *models.Pedido) {
	payload := map[string]any{
		"pedido_id":  p.ID,
		"cliente_id": p.ClienteID,
		"old_estado": from,
		"new_estado": p.Estado,
	}
	db.AfterCommit(ctx, func(ctx context.Context) {
		_ = s.publisher.Publish(context.WithoutCancel(ctx), events.ChannelPedido, events.Event{
			Type:    events.EventPedidoEstadoChanged,
			Payload: payload,
		})
	})
}

// canEditPedido: owners may edit while the order is still pendiente; admins
// always.
func canEditPedido(actor audit.Actor, p *models.Pedido) bool {
	if actor.Role == models.RoleAdmin {
		return true
	}
	return actor.Role == models.RoleCliente && p.ClienteID == actor.ID && p.Estado == models.PedidoEstadoPendiente
}
