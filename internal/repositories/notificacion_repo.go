package repositories

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/logistica/backend/internal/db"
	"github.com/logistica/backend/internal/models"
)

type NotificacionRepo struct {
	pool *pgxpool.Pool
}

func NewNotificacionRepo(pool *pgxpool.Pool) *NotificacionRepo {
	return &NotificacionRepo{pool: pool}
}

func (r *NotificacionRepo) Create(ctx context.Context, n *models.Notificacion) error {
	err := db.Conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO notificaciones (user_id, titulo, mensaje) VALUES ($1, $2, $3)
		RETURNING id, leida, created_at
	`, n.UserID, n.Titulo, n.Mensaje).Scan(&n.ID, &n.Leida, &n.CreatedAt)
	return translate(err)
}

func (r *NotificacionRepo) ListByUser(ctx context.Context, userID int64, unreadOnly bool) ([]models.Notificacion, error) {
	rows, err := db.Conn(ctx, r.pool).Query(ctx, `
		SELECT id, user_id, titulo, mensaje, leida, created_at FROM notificaciones
		WHERE user_id = $1 AND (NOT $2 OR NOT leida)
		ORDER BY created_at DESC, id DESC LIMIT 100
	`, userID, unreadOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Notificacion{}
	for rows.Next() {
		var n models.Notificacion
		if err := rows.Scan(&n.ID, &n.UserID, &n.Titulo, &n.Mensaje, &n.Leida, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// MarkRead only touches notifications owned by userID.
func (r *NotificacionRepo) MarkRead(ctx context.Context, id, userID int64) error {
	return expectOne(db.Conn(ctx, r.pool).Exec(ctx,
		`UPDATE notificaciones SET leida = true WHERE id = $1 AND user_id = $2`, id, userID))
}
