package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/logistica/backend/internal/db"
	"github.com/logistica/backend/internal/models"
)

type ConductorRepo struct {
	pool *pgxpool.Pool
}

func NewConductorRepo(pool *pgxpool.Pool) *ConductorRepo {
	return &ConductorRepo{pool: pool}
}

const conductorColumns = `id, user_id, licencia, telefono, estado_verificacion, created_at, updated_at`

func scanConductor(row pgx.Row) (*models.Conductor, error) {
	var c models.Conductor
	if err := row.Scan(&c.ID, &c.UserID, &c.Licencia, &c.Telefono, &c.EstadoVerificacion, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *ConductorRepo) Create(ctx context.Context, c *models.Conductor) error {
	err := db.Conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO conductores (user_id, licencia, telefono, estado_verificacion)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`, c.UserID, c.Licencia, c.Telefono, c.EstadoVerificacion).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	return translate(err)
}

func (r *ConductorRepo) GetByID(ctx context.Context, id int64) (*models.Conductor, error) {
	return scanConductor(db.Conn(ctx, r.pool).QueryRow(ctx, `SELECT `+conductorColumns+` FROM conductores WHERE id = $1`, id))
}

func (r *ConductorRepo) GetByUserID(ctx context.Context, userID int64) (*models.Conductor, error) {
	return scanConductor(db.Conn(ctx, r.pool).QueryRow(ctx, `SELECT `+conductorColumns+` FROM conductores WHERE user_id = $1`, userID))
}

func (r *ConductorRepo) Update(ctx context.Context, c *models.Conductor) error {
	err := db.Conn(ctx, r.pool).QueryRow(ctx, `
		UPDATE conductores SET licencia = $2, telefono = $3, estado_verificacion = $4, updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`, c.ID, c.Licencia, c.Telefono, c.EstadoVerificacion).Scan(&c.UpdatedAt)
	return translate(err)
}

func (r *ConductorRepo) Delete(ctx context.Context, id int64) error {
	return expectOne(db.Conn(ctx, r.pool).Exec(ctx, `DELETE FROM conductores WHERE id = $1`, id))
}

func (r *ConductorRepo) List(ctx context.Context, estado *string) ([]models.Conductor, error) {
	rows, err := db.Conn(ctx, r.pool).Query(ctx, `
		SELECT `+conductorColumns+` FROM conductores
		WHERE ($1::text IS NULL OR estado_verificacion = $1)
		ORDER BY id
	`, estado)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Conductor{}
	for rows.Next() {
		c, err := scanConductor(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}
