package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/logistica/backend/internal/db"
	"github.com/logistica/backend/internal/models"
)

type RutaRepo struct {
	pool *pgxpool.Pool
}

func NewRutaRepo(pool *pgxpool.Pool) *RutaRepo {
	return &RutaRepo{pool: pool}
}

const rutaColumns = `id, nombre, origen, destino, distancia_km, created_at, updated_at`

func scanRuta(row pgx.Row) (*models.Ruta, error) {
	var r models.Ruta
	if err := row.Scan(&r.ID, &r.Nombre, &r.Origen, &r.Destino, &r.DistanciaKm, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, translate(err)
	}
	return &r, nil
}

func (r *RutaRepo) Create(ctx context.Context, ruta *models.Ruta) error {
	err := db.Conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO rutas (nombre, origen, destino, distancia_km)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`, ruta.Nombre, ruta.Origen, ruta.Destino, ruta.DistanciaKm).Scan(&ruta.ID, &ruta.CreatedAt, &ruta.UpdatedAt)
	return translate(err)
}

func (r *RutaRepo) GetByID(ctx context.Context, id int64) (*models.Ruta, error) {
	return scanRuta(db.Conn(ctx, r.pool).QueryRow(ctx, `SELECT `+rutaColumns+` FROM rutas WHERE id = $1`, id))
}

func (r *RutaRepo) Update(ctx context.Context, ruta *models.Ruta) error {
	err := db.Conn(ctx, r.pool).QueryRow(ctx, `
		UPDATE rutas SET nombre = $2, origen = $3, destino = $4, distancia_km = $5, updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`, ruta.ID, ruta.Nombre, ruta.Origen, ruta.Destino, ruta.DistanciaKm).Scan(&ruta.UpdatedAt)
	return translate(err)
}

func (r *RutaRepo) Delete(ctx context.Context, id int64) error {
	return expectOne(db.Conn(ctx, r.pool).Exec(ctx, `DELETE FROM rutas WHERE id = $1`, id))
}

func (r *RutaRepo) List(ctx context.Context) ([]models.Ruta, error) {
	rows, err := db.Conn(ctx, r.pool).Query(ctx, `SELECT `+rutaColumns+` FROM rutas ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Ruta{}
	for rows.Next() {
		ruta, err := scanRuta(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *ruta)
	}
	return out, rows.Err()
}
