package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/logistica/backend/internal/db"
	"github.com/logistica/backend/internal/models"
)

type VehiculoRepo struct {
	pool *pgxpool.Pool
}

func NewVehiculoRepo(pool *pgxpool.Pool) *VehiculoRepo {
	return &VehiculoRepo{pool: pool}
}

const vehiculoColumns = `id, placa, marca, modelo, capacidad_kg, conductor_id, created_at, updated_at`

func scanVehiculo(row pgx.Row) (*models.Vehiculo, error) {
	var v models.Vehiculo
	if err := row.Scan(&v.ID, &v.Placa, &v.Marca, &v.Modelo, &v.CapacidadKg, &v.ConductorID, &v.CreatedAt, &v.UpdatedAt); err != nil {
		return nil, translate(err)
	}
	return &v, nil
}

func (r *VehiculoRepo) Create(ctx context.Context, v *models.Vehiculo) error {
	err := db.Conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO vehiculos (placa, marca, modelo, capacidad_kg, conductor_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`, v.Placa, v.Marca, v.Modelo, v.CapacidadKg, v.ConductorID).Scan(&v.ID, &v.CreatedAt, &v.UpdatedAt)
	return translate(err)
}

func (r *VehiculoRepo) GetByID(ctx context.Context, id int64) (*models.Vehiculo, error) {
	return scanVehiculo(db.Conn(ctx, r.pool).QueryRow(ctx, `SELECT `+vehiculoColumns+` FROM vehiculos WHERE id = $1`, id))
}

func (r *VehiculoRepo) Update(ctx context.Context, v *models.Vehiculo) error {
	err := db.Conn(ctx, r.pool).QueryRow(ctx, `
		UPDATE vehiculos SET placa = $2, marca = $3, modelo = $4, capacidad_kg = $5, conductor_id = $6, updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`, v.ID, v.Placa, v.Marca, v.Modelo, v.CapacidadKg, v.ConductorID).Scan(&v.UpdatedAt)
	return translate(err)
}

func (r *VehiculoRepo) Delete(ctx context.Context, id int64) error {
	return expectOne(db.Conn(ctx, r.pool).Exec(ctx, `DELETE FROM vehiculos WHERE id = $1`, id))
}

func (r *VehiculoRepo) List(ctx context.Context) ([]models.Vehiculo, error) {
	rows, err := db.Conn(ctx, r.pool).Query(ctx, `SELECT `+vehiculoColumns+` FROM vehiculos ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Vehiculo{}
	for rows.Next() {
		v, err := scanVehiculo(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, rows.Err()
}
