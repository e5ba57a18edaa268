package cases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ohs/ohs/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const caseCols = `id, worker_id, employer_id, case_manager_id, clinician_id, incident_id,
	priority, work_restrictions, status, created_at, updated_at`

func scanCase(row pgx.Row) (*Case, error) {
	var c Case
	var restrictions []byte
	err := row.Scan(&c.ID, &c.WorkerID, &c.EmployerID, &c.CaseManagerID, &c.ClinicianID,
		&c.IncidentID, &c.Priority, &restrictions, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if len(restrictions) > 0 {
		if err := json.Unmarshal(restrictions, &c.WorkRestrictions); err != nil {
			return nil, fmt.Errorf("decode work restrictions: %w", err)
		}
	}
	return &c, nil
}

func (r *repoPG) Create(ctx context.Context, c *Case) error {
	c.ID = uuid.New()
	if c.Status == "" {
		c.Status = StatusNew
	}
	restrictions, err := json.Marshal(c.WorkRestrictions)
	if err != nil {
		return fmt.Errorf("encode work restrictions: %w", err)
	}
	_, err = r.conn(ctx).Exec(ctx, `
		INSERT INTO cases (id, worker_id, employer_id, case_manager_id, clinician_id,
			incident_id, priority, work_restrictions, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		c.ID, c.WorkerID, c.EmployerID, c.CaseManagerID, c.ClinicianID,
		c.IncidentID, c.Priority, restrictions, c.Status)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrIncidentAlreadyCased
	}
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Case, error) {
	return scanCase(r.conn(ctx).QueryRow(ctx,
		`SELECT `+caseCols+` FROM cases WHERE id = $1`, id))
}

func (r *repoPG) GetByIncident(ctx context.Context, incidentID uuid.UUID) (*Case, error) {
	return scanCase(r.conn(ctx).QueryRow(ctx,
		`SELECT `+caseCols+` FROM cases WHERE incident_id = $1`, incidentID))
}

func (r *repoPG) ListByManager(ctx context.Context, managerID uuid.UUID, limit, offset int) ([]*Case, int, error) {
	return r.list(ctx, `case_manager_id`, managerID, limit, offset)
}

func (r *repoPG) ListByWorker(ctx context.Context, workerID uuid.UUID, limit, offset int) ([]*Case, int, error) {
	return r.list(ctx, `worker_id`, workerID, limit, offset)
}

func (r *repoPG) list(ctx context.Context, col string, id uuid.UUID, limit, offset int) ([]*Case, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM cases WHERE `+col+` = $1`, id).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+caseCols+` FROM cases WHERE `+col+` = $1
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`, id, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Case
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, c)
	}
	return items, total, rows.Err()
}
