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

type ConductorService struct {
	conductores ConductorStore
	users       UserStore
	notifier    *Notifier
	tx          db.TxRunner
	auditor     *Auditor
	log         *zap.Logger
}

func NewConductorService(conductores ConductorStore, users UserStore, notifier *Notifier, tx db.TxRunner, auditor *Auditor, log *zap.Logger) *ConductorService {
	return &ConductorService{conductores: conductores, users: users, notifier: notifier, tx: tx, auditor: auditor, log: log}
}

type ConductorInput struct {
	UserID   *int64 // admin only; drivers register themselves
	Licencia string
	Telefono *string
}

func (s *ConductorService) Create(ctx context.Context, actor audit.Actor, in ConductorInput) (*models.Conductor, error) {
	userID := actor.ID
	switch actor.Role {
	case models.RoleConductor:
	case models.RoleAdmin:
		if in.UserID == nil {
			return nil, validationError("user_id is required")
		}
		userID = *in.UserID
	default:
		return nil, ErrForbidden
	}
	licencia := strings.TrimSpace(in.Licencia)
	if licencia == "" {
		return nil, validationError("licencia is required")
	}

	c := &models.Conductor{
		UserID:             userID,
		Licencia:           licencia,
		Telefono:           in.Telefono,
		EstadoVerificacion: models.VerificacionPendiente,
	}
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		u, err := s.users.GetByID(ctx, userID)
		if errors.Is(err, repositories.ErrNotFound) {
			return validationError("user %d does not exist", userID)
		}
		if err != nil {
			return storeError("get user", err)
		}
		if u.Role != models.RoleConductor {
			return validationError("user %d is not a conductor", userID)
		}
		if err := s.conductores.Create(ctx, c); err != nil {
			return storeError("create conductor", err)
		}
		return s.auditor.Capture(ctx, actor, audit.ActionCreate, c, nil)
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *ConductorService) Update(ctx context.Context, actor audit.Actor, id int64, licencia, telefono *string) (*models.Conductor, error) {
	var updated *models.Conductor
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		before, err := s.conductores.GetByID(ctx, id)
		if err != nil {
			return storeError("get conductor", err)
		}
		if actor.Role != models.RoleAdmin && !(actor.Role == models.RoleConductor && before.UserID == actor.ID) {
			return ErrForbidden
		}

		after := *before
		if licencia != nil {
			if after.Licencia = strings.TrimSpace(*licencia); after.Licencia == "" {
				return validationError("licencia must not be empty")
			}
			if after.Licencia != before.Licencia && actor.Role != models.RoleAdmin {
				// a new licence has to be checked again
				after.EstadoVerificacion = models.VerificacionPendiente
			}
		}
		if telefono != nil {
			after.Telefono = telefono
		}

		if err := s.conductores.Update(ctx, &after); err != nil {
			return storeError("update conductor", err)
		}
		updated = &after
		return s.auditor.CaptureDiff(ctx, actor, audit.ActionUpdate, before, &after)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Verify sets the driver's verification state (admin only).
func (s *ConductorService) Verify(ctx context.Context, actor audit.Actor, id int64, estado string) (*models.Conductor, error) {
	if actor.Role != models.RoleAdmin {
		return nil, ErrForbidden
	}
	if estado == "" {
		estado = models.VerificacionVerificado
	}
	if !models.IsValidVerificacion(estado) {
		return nil, validationError("invalid estado_verificacion %q", estado)
	}

	var updated *models.Conductor
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		before, err := s.conductores.GetByID(ctx, id)
		if err != nil {
			return storeError("get conductor", err)
		}

		after := *before
		after.EstadoVerificacion = estado
		if err := s.conductores.Update(ctx, &after); err != nil {
			return storeError("update conductor", err)
		}
		if err := s.auditor.CaptureDiff(ctx, actor, audit.ActionVerify, before, &after); err != nil {
			return err
		}
		updated = &after

		if before.EstadoVerificacion == after.EstadoVerificacion {
			return nil
		}
		return s.notifier.Notify(ctx, after.UserID, "Verificación de conductor",
			"Tu estado de verificación ahora es "+after.EstadoVerificacion)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *ConductorService) Delete(ctx context.Context, actor audit.Actor, id int64) error {
	if actor.Role != models.RoleAdmin {
		return ErrForbidden
	}
	return s.tx.InTx(ctx, func(ctx context.Context) error {
		c, err := s.conductores.GetByID(ctx, id)
		if err != nil {
			return storeError("get conductor", err)
		}
		if err := s.conductores.Delete(ctx, id); err != nil {
			return storeError("delete conductor", err)
		}
		return s.auditor.Capture(ctx, actor, audit.ActionDelete, c, nil)
	})
}

func (s *ConductorService) Get(ctx context.Context, id int64) (*models.Conductor, error) {
	c, err := s.conductores.GetByID(ctx, id)
	if err != nil {
		return nil, storeError("get conductor", err)
	}
	return c, nil
}

// Me returns the driver profile of the calling user.
func (s *ConductorService) Me(ctx context.Context, actor audit.Actor) (*models.Conductor, error) {
	c, err := s.conductores.GetByUserID(ctx, actor.ID)
	if err != nil {
		return nil, storeError("get conductor", err)
	}
	return c, nil
}

func (s *ConductorService) List(ctx context.Context, estado string) ([]models.Conductor, error) {
	var filter *string
	if estado != "" {
		filter = &estado
	}
	out, err := s.conductores.List(ctx, filter)
	if err != nil {
		return nil, storeError("list conductores", err)
	}
	return out, nil
}
