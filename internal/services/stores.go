package services

import (
	"context"

	"github.com/logistica/backend/internal/models"
	"github.com/logistica/backend/internal/repositories"
)

// Persistence contracts consumed by the services. The repositories package
// satisfies them with pgx; tests use in-memory fakes.

type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

type PedidoStore interface {
	Create(ctx context.Context, p *models.Pedido) error
	GetByID(ctx context.Context, id int64) (*models.Pedido, error)
	GetForUpdate(ctx context.Context, id int64) (*models.Pedido, error)
	Update(ctx context.Context, p *models.Pedido) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, f repositories.PedidoFilter) ([]models.Pedido, error)
}

type ConductorStore interface {
	Create(ctx context.Context, c *models.Conductor) error
	GetByID(ctx context.Context, id int64) (*models.Conductor, error)
	GetByUserID(ctx context.Context, userID int64) (*models.Conductor, error)
	Update(ctx context.Context, c *models.Conductor) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, estado *string) ([]models.Conductor, error)
}

type VehiculoStore interface {
	Create(ctx context.Context, v *models.Vehiculo) error
	GetByID(ctx context.Context, id int64) (*models.Vehiculo, error)
	Update(ctx context.Context, v *models.Vehiculo) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]models.Vehiculo, error)
}

type RutaStore interface {
	Create(ctx context.Context, r *models.Ruta) error
	GetByID(ctx context.Context, id int64) (*models.Ruta, error)
	Update(ctx context.Context, r *models.Ruta) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]models.Ruta, error)
}

type AsociacionStore interface {
	Create(ctx context.Context, a *models.Asociacion) error
	GetByID(ctx context.Context, id int64) (*models.Asociacion, error)
	Update(ctx context.Context, a *models.Asociacion) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]models.Asociacion, error)
	CreateLink(ctx context.Context, l *models.ConductorAsociacion) error
	GetLink(ctx context.Context, conductorID, asociacionID int64) (*models.ConductorAsociacion, error)
	DeleteLink(ctx context.Context, id int64) error
	ListLinks(ctx context.Context, asociacionID int64) ([]models.ConductorAsociacion, error)
}

type SeguimientoStore interface {
	Create(ctx context.Context, s *models.Seguimiento) error
	ListByPedido(ctx context.Context, pedidoID int64, limit int) ([]models.Seguimiento, error)
}
