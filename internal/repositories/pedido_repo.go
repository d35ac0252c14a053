package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/logistica/backend/internal/db"
	"github.com/logistica/backend/internal/models"
)

type PedidoRepo struct {
	pool *pgxpool.Pool
}

func NewPedidoRepo(pool *pgxpool.Pool) *PedidoRepo {
	return &PedidoRepo{pool: pool}
}

type PedidoFilter struct {
	ClienteID   *int64
	ConductorID *int64
	Estado      *string
	Limit       int
	Offset      int
}

const pedidoColumns = `id, cliente_id, origen, destino, descripcion, peso_kg, estado,
	conductor_id, vehiculo_id, ruta_id, created_at, updated_at`

func scanPedido(row pgx.Row) (*models.Pedido, error) {
	var p models.Pedido
	err := row.Scan(&p.ID, &p.ClienteID, &p.Origen, &p.Destino, &p.Descripcion, &p.PesoKg, &p.Estado,
		&p.ConductorID, &p.VehiculoID, &p.RutaID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *PedidoRepo) Create(ctx context.Context, p *models.Pedido) error {
	err := db.Conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO pedidos (cliente_id, origen, destino, descripcion, peso_kg, estado)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`, p.ClienteID, p.Origen, p.Destino, p.Descripcion, p.PesoKg, p.Estado).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	return translate(err)
}

func (r *PedidoRepo) GetByID(ctx context.Context, id int64) (*models.Pedido, error) {
	return scanPedido(db.Conn(ctx, r.pool).QueryRow(ctx, `SELECT `+pedidoColumns+` FROM pedidos WHERE id = $1`, id))
}

// GetForUpdate locks the row until the surrounding transaction ends.
func (r *PedidoRepo) GetForUpdate(ctx context.Context, id int64) (*models.Pedido, error) {
	return scanPedido(db.Conn(ctx, r.pool).QueryRow(ctx, `SELECT `+pedidoColumns+` FROM pedidos WHERE id = $1 FOR UPDATE`, id))
}

// Update writes every mutable column of p and refreshes UpdatedAt.
func (r *PedidoRepo) Update(ctx context.Context, p *models.Pedido) error {
	err := db.Conn(ctx, r.pool).QueryRow(ctx, `
		UPDATE pedidos SET origen = $2, destino = $3, descripcion = $4, peso_kg = $5, estado = $6,
			conductor_id = $7, vehiculo_id = $8, ruta_id = $9, updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`, p.ID, p.Origen, p.Destino, p.Descripcion, p.PesoKg, p.Estado, p.ConductorID, p.VehiculoID, p.RutaID).Scan(&p.UpdatedAt)
	return translate(err)
}

func (r *PedidoRepo) Delete(ctx context.Context, id int64) error {
	return expectOne(db.Conn(ctx, r.pool).Exec(ctx, `DELETE FROM pedidos WHERE id = $1`, id))
}

func (r *PedidoRepo) List(ctx context.Context, f PedidoFilter) ([]models.Pedido, error) {
	query := `SELECT ` + pedidoColumns + ` FROM pedidos`
	args := []any{}
	argIdx := 1
	where := []string{}

	if f.ClienteID != nil {
		where = append(where, fmt.Sprintf("cliente_id = $%d", argIdx))
		args = append(args, *f.ClienteID)
		argIdx++
	}
	if f.ConductorID != nil {
		where = append(where, fmt.Sprintf("conductor_id = $%d", argIdx))
		args = append(args, *f.ConductorID)
		argIdx++
	}
	if f.Estado != nil {
		where = append(where, fmt.Sprintf("estado = $%d", argIdx))
		args = append(args, *f.Estado)
		argIdx++
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}

	if f.Limit <= 0 {
		f.Limit = 50
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, f.Limit, f.Offset)

	rows, err := db.Conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	pedidos := []models.Pedido{}
	for rows.Next() {
		p, err := scanPedido(rows)
		if err != nil {
			return nil, err
		}
		pedidos = append(pedidos, *p)
	}
	return pedidos, rows.Err()
}
