package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/logistica/backend/internal/db"
	"github.com/logistica/backend/internal/models"
)

type AsociacionRepo struct {
	pool *pgxpool.Pool
}

func NewAsociacionRepo(pool *pgxpool.Pool) *AsociacionRepo {
	return &AsociacionRepo{pool: pool}
}

const asociacionColumns = `id, nombre, descripcion, created_at, updated_at`

func scanAsociacion(row pgx.Row) (*models.Asociacion, error) {
	var a models.Asociacion
	if err := row.Scan(&a.ID, &a.Nombre, &a.Descripcion, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func (r *AsociacionRepo) Create(ctx context.Context, a *models.Asociacion) error {
	err := db.Conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO asociaciones (nombre, descripcion) VALUES ($1, $2)
		RETURNING id, created_at, updated_at
	`, a.Nombre, a.Descripcion).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	return translate(err)
}

func (r *AsociacionRepo) GetByID(ctx context.Context, id int64) (*models.Asociacion, error) {
	return scanAsociacion(db.Conn(ctx, r.pool).QueryRow(ctx, `SELECT `+asociacionColumns+` FROM asociaciones WHERE id = $1`, id))
}

func (r *AsociacionRepo) Update(ctx context.Context, a *models.Asociacion) error {
	err := db.Conn(ctx, r.pool).QueryRow(ctx, `
		UPDATE asociaciones SET nombre = $2, descripcion = $3, updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`, a.ID, a.Nombre, a.Descripcion).Scan(&a.UpdatedAt)
	return translate(err)
}

func (r *AsociacionRepo) Delete(ctx context.Context, id int64) error {
	return expectOne(db.Conn(ctx, r.pool).Exec(ctx, `DELETE FROM asociaciones WHERE id = $1`, id))
}

func (r *AsociacionRepo) List(ctx context.Context) ([]models.Asociacion, error) {
	rows, err := db.Conn(ctx, r.pool).Query(ctx, `SELECT `+asociacionColumns+` FROM asociaciones ORDER BY nombre`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Asociacion{}
	for rows.Next() {
		a, err := scanAsociacion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

// Driver membership links

func (r *AsociacionRepo) CreateLink(ctx context.Context, l *models.ConductorAsociacion) error {
	err := db.Conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO conductor_asociacion (conductor_id, asociacion_id) VALUES ($1, $2)
		RETURNING id, created_at
	`, l.ConductorID, l.AsociacionID).Scan(&l.ID, &l.CreatedAt)
	return translate(err)
}

func (r *AsociacionRepo) GetLink(ctx context.Context, conductorID, asociacionID int64) (*models.ConductorAsociacion, error) {
	var l models.ConductorAsociacion
	err := db.Conn(ctx, r.pool).QueryRow(ctx, `
		SELECT id, conductor_id, asociacion_id, created_at FROM conductor_asociacion
		WHERE conductor_id = $1 AND asociacion_id = $2
	`, conductorID, asociacionID).Scan(&l.ID, &l.ConductorID, &l.AsociacionID, &l.CreatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return &l, nil
}

func (r *AsociacionRepo) DeleteLink(ctx context.Context, id int64) error {
	return expectOne(db.Conn(ctx, r.pool).Exec(ctx, `DELETE FROM conductor_asociacion WHERE id = $1`, id))
}

func (r *AsociacionRepo) ListLinks(ctx context.Context, asociacionID int64) ([]models.ConductorAsociacion, error) {
	rows, err := db.Conn(ctx, r.pool).Query(ctx, `
		SELECT id, conductor_id, asociacion_id, created_at FROM conductor_asociacion
		WHERE asociacion_id = $1 ORDER BY id
	`, asociacionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.ConductorAsociacion{}
	for rows.Next() {
		var l models.ConductorAsociacion
		if err := rows.Scan(&l.ID, &l.ConductorID, &l.AsociacionID, &l.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
