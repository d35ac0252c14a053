package services

import (
	"context"

	"github.com/logistica/backend/internal/audit"
	"github.com/logistica/backend/internal/db"
	"github.com/logistica/backend/internal/events"
	"github.com/logistica/backend/internal/models"
	"go.uber.org/zap"
)

type SeguimientoService struct {
	seguimientos SeguimientoStore
	pedidos      PedidoStore
	conductores  ConductorStore
	publisher    events.Publisher
	tx           db.TxRunner
	auditor      *Auditor
	log          *zap.Logger
}

func NewSeguimientoService(
	seguimientos SeguimientoStore,
	pedidos PedidoStore,
	conductores ConductorStore,
	publisher events.Publisher,
	tx db.TxRunner,
	auditor *Auditor,
	log *zap.Logger,
) *SeguimientoService {
	return &SeguimientoService{
		seguimientos: seguimientos,
		pedidos:      pedidos,
		conductores:  conductores,
		publisher:    publisher,
		tx:           tx,
		auditor:      auditor,
		log:          log,
	}
}

// Report stores a GPS position from the driver assigned to the order and
// broadcasts it to the order's client and to admins.
func (s *SeguimientoService) Report(ctx context.Context, actor audit.Actor, pedidoID int64, lat, lng float64) (*models.Seguimiento, error) {
	if actor.Role != models.RoleConductor {
		return nil, ErrForbidden
	}
	if !models.IsValidCoordinate(lat, lng) {
		return nil, validationError("coordinates out of range")
	}

	var seg *models.Seguimiento
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		p, err := s.pedidos.GetByID(ctx, pedidoID)
		if err != nil {
			return storeError("get pedido", err)
		}
		c, err := s.conductores.GetByUserID(ctx, actor.ID)
		if err != nil || p.ConductorID == nil || *p.ConductorID != c.ID {
			return ErrForbidden
		}
		if p.Estado != models.PedidoEstadoAsignado && p.Estado != models.PedidoEstadoEnTransito {
			return validationError("pedido in estado %s is not being delivered", p.Estado)
		}

		seg = &models.Seguimiento{PedidoID: p.ID, ConductorID: c.ID, Latitud: lat, Longitud: lng}
		if err := s.seguimientos.Create(ctx, seg); err != nil {
			return storeError("create seguimiento", err)
		}
		if err := s.auditor.Capture(ctx, actor, audit.ActionCreateSeguimiento, seg, map[string]any{
			"pedido_id": seg.PedidoID,
			"latitud":   seg.Latitud,
			"longitud":  seg.Longitud,
		}); err != nil {
			return err
		}

		event := events.Event{
			Type: events.EventSeguimientoCreated,
			Payload: map[string]any{
				"id":           seg.ID,
				"pedido_id":    seg.PedidoID,
				"cliente_id":   p.ClienteID,
				"conductor_id": seg.ConductorID,
				"latitud":      seg.Latitud,
				"longitud":     seg.Longitud,
				"created_at":   seg.CreatedAt,
			},
		}
		db.AfterCommit(ctx, func(ctx context.Context) {
			_ = s.publisher.Publish(context.WithoutCancel(ctx), events.ChannelSeguimiento, event)
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return seg, nil
}

// List returns the order's positions newest first, for anyone who can see the
// order.
func (s *SeguimientoService) List(ctx context.Context, actor audit.Actor, pedidoID int64, limit int) ([]models.Seguimiento, error) {
	p, err := s.pedidos.GetByID(ctx, pedidoID)
	if err != nil {
		return nil, storeError("get pedido", err)
	}
	switch actor.Role {
	case models.RoleAdmin:
	case models.RoleCliente:
		if p.ClienteID != actor.ID {
			return nil, ErrForbidden
		}
	case models.RoleConductor:
		c, err := s.conductores.GetByUserID(ctx, actor.ID)
		if err != nil || p.ConductorID == nil || *p.ConductorID != c.ID {
			return nil, ErrForbidden
		}
	default:
		return nil, ErrForbidden
	}

	out, err := s.seguimientos.ListByPedido(ctx, pedidoID, limit)
	if err != nil {
		return nil, storeError("list seguimientos", err)
	}
	return out, nil
}
