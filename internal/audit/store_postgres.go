package audit

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/logistica/backend/internal/db"
	"github.com/logistica/backend/internal/models"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const selectAudit = `
	SELECT a.id, a.user_id, a.action, a.model_type, a.model_id, a.changes,
	       a.created_at, a.updated_at,
	       u.id, u.name, u.email, u.role
	FROM audits a
	LEFT JOIN users u ON u.id = a.user_id
`

// Append inserts c inside the caller's transaction when ctx carries one.
func (s *PostgresStore) Append(ctx context.Context, c Capture) (*models.AuditRecord, error) {
	changes := c.Changes
	if len(changes) == 0 {
		changes = []byte("{}")
	}

	conn := db.Conn(ctx, s.pool)

	var id int64
	err := conn.QueryRow(ctx, `
		INSERT INTO audits (capture_id, user_id, action, model_type, model_id, changes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		ON CONFLICT (capture_id) DO NOTHING
		RETURNING id
	`, c.CaptureID, c.ActorID, c.Action, c.EntityType, c.EntityID, changes, c.OccurredAt).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		// redelivered capture
		err = conn.QueryRow(ctx, `SELECT id FROM audits WHERE capture_id = $1`, c.CaptureID).Scan(&id)
	}
	if err != nil {
		return nil, fmt.Errorf("insert audit: %w", err)
	}

	return scanAudit(conn.QueryRow(ctx, selectAudit+" WHERE a.id = $1", id))
}

func (s *PostgresStore) Get(ctx context.Context, id int64) (*models.AuditRecord, error) {
	rec, err := scanAudit(db.Conn(ctx, s.pool).QueryRow(ctx, selectAudit+" WHERE a.id = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return rec, err
}

func (s *PostgresStore) List(ctx context.Context, f Filter) ([]models.AuditRecord, error) {
	query := selectAudit
	args := []any{}
	argIdx := 1
	where := []string{}

	if f.Action != "" {
		where = append(where, fmt.Sprintf("a.action = $%d", argIdx))
		args = append(args, f.Action)
		argIdx++
	}
	if f.EntityType != "" {
		where = append(where, fmt.Sprintf("a.model_type = $%d", argIdx))
		args = append(args, f.EntityType)
		argIdx++
	}
	if f.ActorID > 0 {
		where = append(where, fmt.Sprintf("a.user_id = $%d", argIdx))
		args = append(args, f.ActorID)
		argIdx++
	}

	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY a.created_at DESC, a.id DESC"

	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, f.Limit)
		argIdx++
	}
	if f.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIdx)
		args = append(args, f.Offset)
	}

	rows, err := db.Conn(ctx, s.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list audits: %w", err)
	}
	defer rows.Close()

	records := []models.AuditRecord{}
	for rows.Next() {
		rec, err := scanAudit(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

func scanAudit(row pgx.Row) (*models.AuditRecord, error) {
	var (
		r       models.AuditRecord
		changes []byte
		uID     *int64
		uName   *string
		uEmail  *string
		uRole   *string
	)
	if err := row.Scan(&r.ID, &r.UserID, &r.Action, &r.ModelType, &r.ModelID, &changes,
		&r.CreatedAt, &r.UpdatedAt, &uID, &uName, &uEmail, &uRole); err != nil {
		return nil, err
	}
	r.Changes = changes
	if uID != nil {
		r.User = &models.AuditUser{ID: *uID, Name: deref(uName), Email: deref(uEmail), Role: deref(uRole)}
	}
	return &r, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
