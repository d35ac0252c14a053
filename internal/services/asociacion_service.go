package services

import (
	"context"
	"errors"
	"strings"

	"github.com/logistica/backend/internal/audit"
	"github.com/logistica/backend/internal/db"
	"github.com/logistica/backend/internal/models"
	"github.com/logistica/backend/internal/repositories"
	"go.uber.org/zap"
)

type AsociacionService struct {
	asociaciones AsociacionStore
	conductores  ConductorStore
	tx           db.TxRunner
	auditor      *Auditor
	log          *zap.Logger
}

func NewAsociacionService(asociaciones AsociacionStore, conductores ConductorStore, tx db.TxRunner, auditor *Auditor, log *zap.Logger) *AsociacionService {
	return &AsociacionService{asociaciones: asociaciones, conductores: conductores, tx: tx, auditor: auditor, log: log}
}

func (s *AsociacionService) Create(ctx context.Context, actor audit.Actor, nombre string, descripcion *string) (*models.Asociacion, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	nombre = strings.TrimSpace(nombre)
	if nombre == "" {
		return nil, validationError("nombre is required")
	}

	a := &models.Asociacion{Nombre: nombre, Descripcion: descripcion}
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.asociaciones.Create(ctx, a); err != nil {
			return storeError("create asociacion", err)
		}
		return s.auditor.Capture(ctx, actor, audit.ActionCreate, a, nil)
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (s *AsociacionService) Update(ctx context.Context, actor audit.Actor, id int64, nombre, descripcion *string) (*models.Asociacion, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	var updated *models.Asociacion
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		before, err := s.asociaciones.GetByID(ctx, id)
		if err != nil {
			return storeError("get asociacion", err)
		}
		after := *before
		if nombre != nil {
			if after.Nombre = strings.TrimSpace(*nombre); after.Nombre == "" {
				return validationError("nombre must not be empty")
			}
		}
		if descripcion != nil {
			after.Descripcion = descripcion
		}
		if err := s.asociaciones.Update(ctx, &after); err != nil {
			return storeError("update asociacion", err)
		}
		updated = &after
		return s.auditor.CaptureDiff(ctx, actor, audit.ActionUpdate, before, &after)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *AsociacionService) Delete(ctx context.Context, actor audit.Actor, id int64) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	return s.tx.InTx(ctx, func(ctx context.Context) error {
		a, err := s.asociaciones.GetByID(ctx, id)
		if err != nil {
			return storeError("get asociacion", err)
		}
		if err := s.asociaciones.Delete(ctx, id); err != nil {
			return storeError("delete asociacion", err)
		}
		return s.auditor.Capture(ctx, actor, audit.ActionDelete, a, nil)
	})
}

func (s *AsociacionService) Get(ctx context.Context, id int64) (*models.Asociacion, error) {
	a, err := s.asociaciones.GetByID(ctx, id)
	if err != nil {
		return nil, storeError("get asociacion", err)
	}
	return a, nil
}

func (s *AsociacionService) List(ctx context.Context) ([]models.Asociacion, error) {
	out, err := s.asociaciones.List(ctx)
	if err != nil {
		return nil, storeError("list asociaciones", err)
	}
	return out, nil
}

// LinkConductor adds a driver to an association. The link row is the tracked
// entity.
func (s *AsociacionService) LinkConductor(ctx context.Context, actor audit.Actor, asociacionID, conductorID int64) (*models.ConductorAsociacion, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	link := &models.ConductorAsociacion{ConductorID: conductorID, AsociacionID: asociacionID}
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		if _, err := s.asociaciones.GetByID(ctx, asociacionID); err != nil {
			return storeError("get asociacion", err)
		}
		if _, err := s.conductores.GetByID(ctx, conductorID); errors.Is(err, repositories.ErrNotFound) {
			return validationError("conductor %d does not exist", conductorID)
		} else if err != nil {
			return storeError("get conductor", err)
		}
		if err := s.asociaciones.CreateLink(ctx, link); err != nil {
			return storeError("link conductor", err)
		}
		return s.auditor.Capture(ctx, actor, audit.ActionCreate, link, map[string]any{
			"conductor_id":  conductorID,
			"asociacion_id": asociacionID,
		})
	})
	if err != nil {
		return nil, err
	}
	return link, nil
}

func (s *AsociacionService) UnlinkConductor(ctx context.Context, actor audit.Actor, asociacionID, conductorID int64) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	return s.tx.InTx(ctx, func(ctx context.Context) error {
		link, err := s.asociaciones.GetLink(ctx, conductorID, asociacionID)
		if err != nil {
			return storeError("get link", err)
		}
		if err := s.asociaciones.DeleteLink(ctx, link.ID); err != nil {
			return storeError("unlink conductor", err)
		}
		return s.auditor.Capture(ctx, actor, audit.ActionDelete, link, nil)
	})
}

func (s *AsociacionService) ListConductores(ctx context.Context, asociacionID int64) ([]models.ConductorAsociacion, error) {
	if _, err := s.asociaciones.GetByID(ctx, asociacionID); err != nil {
		return nil, storeError("get asociacion", err)
	}
	out, err := s.asociaciones.ListLinks(ctx, asociacionID)
	if err != nil {
		return nil, storeError("list links", err)
	}
	return out, nil
}
