package repositories

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/logistica/backend/internal/db"
	"github.com/logistica/backend/internal/models"
)

type SeguimientoRepo struct {
	pool *pgxpool.Pool
}

func NewSeguimientoRepo(pool *pgxpool.Pool) *SeguimientoRepo {
	return &SeguimientoRepo{pool: pool}
}

func (r *SeguimientoRepo) Create(ctx context.Context, s *models.Seguimiento) error {
	err := db.Conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO seguimientos (pedido_id, conductor_id, latitud, longitud)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, s.PedidoID, s.ConductorID, s.Latitud, s.Longitud).Scan(&s.ID, &s.CreatedAt)
	return translate(err)
}

// ListByPedido returns positions newest first.
func (r *SeguimientoRepo) ListByPedido(ctx context.Context, pedidoID int64, limit int) ([]models.Seguimiento, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := db.Conn(ctx, r.pool).Query(ctx, `
		SELECT id, pedido_id, conductor_id, latitud, longitud, created_at
		FROM seguimientos WHERE pedido_id = $1
		ORDER BY created_at DESC, id DESC LIMIT $2
	`, pedidoID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Seguimiento{}
	for rows.Next() {
		var s models.Seguimiento
		if err := rows.Scan(&s.ID, &s.PedidoID, &s.ConductorID, &s.Latitud, &s.Longitud, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
