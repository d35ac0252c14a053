package services

import (
	"errors"
	"fmt"

	"github.com/logistica/backend/internal/audit"
	"github.com/logistica/backend/internal/models"
	"github.com/logistica/backend/internal/repositories"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("not authorized")
	ErrValidation        = errors.New("validation failed")
	ErrConflict          = errors.New("already exists")
	ErrInvalidTransition = errors.New("invalid estado transition")
	// ErrOperationIncomplete means the mutation was rolled back because its
	// audit record could not be written.
	ErrOperationIncomplete = errors.New("operation could not be completed")
)

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// storeError maps repository sentinels onto service sentinels.
func storeError(what string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrNotFound):
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	case errors.Is(err, repositories.ErrConflict):
		return fmt.Errorf("%s: %w", what, ErrConflict)
	}
	return fmt.Errorf("%s: %w", what, err)
}

func requireAdmin(actor audit.Actor) error {
	if actor.Role != models.RoleAdmin {
		return ErrForbidden
	}
	return nil
}
