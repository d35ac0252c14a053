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

type VehiculoService struct {
	vehiculos   VehiculoStore
	conductores ConductorStore
	tx          db.TxRunner
	auditor     *Auditor
	log         *zap.Logger
}

func NewVehiculoService(vehiculos VehiculoStore, conductores ConductorStore, tx db.TxRunner, auditor *Auditor, log *zap.Logger) *VehiculoService {
	return &VehiculoService{vehiculos: vehiculos, conductores: conductores, tx: tx, auditor: auditor, log: log}
}

type VehiculoInput struct {
	Placa       *string
	Marca       *string
	Modelo      *string
	CapacidadKg *float64
}

func (s *VehiculoService) Create(ctx context.Context, actor audit.Actor, in VehiculoInput) (*models.Vehiculo, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	v := &models.Vehiculo{}
	if err := applyVehiculo(v, in); err != nil {
		return nil, err
	}
	if v.Placa == "" || v.Marca == "" || v.Modelo == "" {
		return nil, validationError("placa, marca and modelo are required")
	}

	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.vehiculos.Create(ctx, v); err != nil {
			return storeError("create vehiculo", err)
		}
		return s.auditor.Capture(ctx, actor, audit.ActionCreate, v, nil)
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (s *VehiculoService) Update(ctx context.Context, actor audit.Actor, id int64, in VehiculoInput) (*models.Vehiculo, error) {
	return s.mutate(ctx, actor, id, audit.ActionUpdate, func(ctx context.Context, v *models.Vehiculo) error {
		return applyVehiculo(v, in)
	})
}

// AssignConductor puts a verified driver behind the wheel.
func (s *VehiculoService) AssignConductor(ctx context.Context, actor audit.Actor, id, conductorID int64) (*models.Vehiculo, error) {
	return s.mutate(ctx, actor, id, audit.ActionAssignConductor, func(ctx context.Context, v *models.Vehiculo) error {
		c, err := s.conductores.GetByID(ctx, conductorID)
		if errors.Is(err, repositories.ErrNotFound) {
			return validationError("conductor %d does not exist", conductorID)
		}
		if err != nil {
			return storeError("get conductor", err)
		}
		if c.EstadoVerificacion != models.VerificacionVerificado {
			return validationError("conductor %d is not verified", conductorID)
		}
		v.ConductorID = &c.ID
		return nil
	})
}

func (s *VehiculoService) UnassignDriver(ctx context.Context, actor audit.Actor, id int64) (*models.Vehiculo, error) {
	return s.mutate(ctx, actor, id, audit.ActionUnassignDriver, func(_ context.Context, v *models.Vehiculo) error {
		if v.ConductorID == nil {
			return validationError("vehiculo %d has no conductor", id)
		}
		v.ConductorID = nil
		return nil
	})
}

func (s *VehiculoService) Delete(ctx context.Context, actor audit.Actor, id int64) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	return s.tx.InTx(ctx, func(ctx context.Context) error {
		v, err := s.vehiculos.GetByID(ctx, id)
		if err != nil {
			return storeError("get vehiculo", err)
		}
		if err := s.vehiculos.Delete(ctx, id); err != nil {
			return storeError("delete vehiculo", err)
		}
		return s.auditor.Capture(ctx, actor, audit.ActionDelete, v, nil)
	})
}

func (s *VehiculoService) Get(ctx context.Context, id int64) (*models.Vehiculo, error) {
	v, err := s.vehiculos.GetByID(ctx, id)
	if err != nil {
		return nil, storeError("get vehiculo", err)
	}
	return v, nil
}

func (s *VehiculoService) List(ctx context.Context) ([]models.Vehiculo, error) {
	out, err := s.vehiculos.List(ctx)
	if err != nil {
		return nil, storeError("list vehiculos", err)
	}
	return out, nil
}

// mutate loads the vehicle, applies fn to a copy, saves it and records the
// diff under action.
func (s *VehiculoService) mutate(ctx context.Context, actor audit.Actor, id int64, action string, fn func(context.Context, *models.Vehiculo) error) (*models.Vehiculo, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	var updated *models.Vehiculo
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		before, err := s.vehiculos.GetByID(ctx, id)
		if err != nil {
			return storeError("get vehiculo", err)
		}
		after := *before
		if err := fn(ctx, &after); err != nil {
			return err
		}
		if err := s.vehiculos.Update(ctx, &after); err != nil {
			return storeError("update vehiculo", err)
		}
		updated = &after
		return s.auditor.CaptureDiff(ctx, actor, action, before, &after)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func applyVehiculo(v *models.Vehiculo, in VehiculoInput) error {
	if in.Placa != nil {
		if v.Placa = strings.ToUpper(strings.TrimSpace(*in.Placa)); v.Placa == "" {
			return validationError("placa must not be empty")
		}
	}
	if in.Marca != nil {
		if v.Marca = strings.TrimSpace(*in.Marca); v.Marca == "" {
			return validationError("marca must not be empty")
		}
	}
	if in.Modelo != nil {
		if v.Modelo = strings.TrimSpace(*in.Modelo); v.Modelo == "" {
			return validationError("modelo must not be empty")
		}
	}
	if in.CapacidadKg != nil {
		if *in.CapacidadKg < 0 {
			return validationError("capacidad_kg must not be negative")
		}
		v.CapacidadKg = *in.CapacidadKg
	}
	return nil
}
