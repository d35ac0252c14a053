package services

import (
	"context"
	"strings"

	"github.com/logistica/backend/internal/audit"
	"github.com/logistica/backend/internal/db"
	"github.com/logistica/backend/internal/models"
	"go.uber.org/zap"
)

type RutaService struct {
	rutas   RutaStore
	tx      db.TxRunner
	auditor *Auditor
	log     *zap.Logger
}

func NewRutaService(rutas RutaStore, tx db.TxRunner, auditor *Auditor, log *zap.Logger) *RutaService {
	return &RutaService{rutas: rutas, tx: tx, auditor: auditor, log: log}
}

type RutaInput struct {
	Nombre      *string
	Origen      *string
	Destino     *string
	DistanciaKm *float64
}

func (s *RutaService) Create(ctx context.Context, actor audit.Actor, in RutaInput) (*models.Ruta, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	r := &models.Ruta{}
	if err := applyRuta(r, in); err != nil {
		return nil, err
	}
	if r.Nombre == "" || r.Origen == "" || r.Destino == "" {
		return nil, validationError("nombre, origen and destino are required")
	}

	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.rutas.Create(ctx, r); err != nil {
			return storeError("create ruta", err)
		}
		return s.auditor.Capture(ctx, actor, audit.ActionCreate, r, nil)
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (s *RutaService) Update(ctx context.Context, actor audit.Actor, id int64, in RutaInput) (*models.Ruta, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	var updated *models.Ruta
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		before, err := s.rutas.GetByID(ctx, id)
		if err != nil {
			return storeError("get ruta", err)
		}
		after := *before
		if err := applyRuta(&after, in); err != nil {
			return err
		}
		if err := s.rutas.Update(ctx, &after); err != nil {
			return storeError("update ruta", err)
		}
		updated = &after
		return s.auditor.CaptureDiff(ctx, actor, audit.ActionUpdate, before, &after)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *RutaService) Delete(ctx context.Context, actor audit.Actor, id int64) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	return s.tx.InTx(ctx, func(ctx context.Context) error {
		r, err := s.rutas.GetByID(ctx, id)
		if err != nil {
			return storeError("get ruta", err)
		}
		if err := s.rutas.Delete(ctx, id); err != nil {
			return storeError("delete ruta", err)
		}
		return s.auditor.Capture(ctx, actor, audit.ActionDelete, r, nil)
	})
}

func (s *RutaService) Get(ctx context.Context, id int64) (*models.Ruta, error) {
	r, err := s.rutas.GetByID(ctx, id)
	if err != nil {
		return nil, storeError("get ruta", err)
	}
	return r, nil
}

func (s *RutaService) List(ctx context.Context) ([]models.Ruta, error) {
	out, err := s.rutas.List(ctx)
	if err != nil {
		return nil, storeError("list rutas", err)
	}
	return out, nil
}

func applyRuta(r *models.Ruta, in RutaInput) error {
	if in.Nombre != nil {
		if r.Nombre = strings.TrimSpace(*in.Nombre); r.Nombre == "" {
			return validationError("nombre must not be empty")
		}
	}
	if in.Origen != nil {
		if r.Origen = strings.TrimSpace(*in.Origen); r.Origen == "" {
			return validationError("origen must not be empty")
		}
	}
	if in.Destino != nil {
		if r.Destino = strings.TrimSpace(*in.Destino); r.Destino == "" {
			return validationError("destino must not be empty")
		}
	}
	if in.DistanciaKm != nil {
		if *in.DistanciaKm < 0 {
			return validationError("distancia_km must not be negative")
		}
		r.DistanciaKm = *in.DistanciaKm
	}
	return nil
}
