package incident

import (
	"context"
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

const incidentCols = `id, reporter_id, worker_id, employer_id, incident_type, severity,
	description, incident_date, photo_urls, status, created_at, updated_at`

func scanIncident(row pgx.Row) (*Incident, error) {
	var in Incident
	err := row.Scan(&in.ID, &in.ReporterID, &in.WorkerID, &in.EmployerID,
		&in.IncidentType, &in.Severity, &in.Description, &in.IncidentDate,
		&in.PhotoURLs, &in.Status, &in.CreatedAt, &in.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &in, nil
}

func (r *repoPG) Create(ctx context.Context, in *Incident) error {
	in.ID = uuid.New()
	if in.Status == "" {
		in.Status = StatusReported
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO incidents (id, reporter_id, worker_id, employer_id, incident_type,
			severity, description, incident_date, photo_urls, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		in.ID, in.ReporterID, in.WorkerID, in.EmployerID, in.IncidentType,
		in.Severity, in.Description, in.IncidentDate, in.PhotoURLs, in.Status)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Incident, error) {
	return scanIncident(r.conn(ctx).QueryRow(ctx,
		`SELECT `+incidentCols+` FROM incidents WHERE id = $1`, id))
}

func (r *repoPG) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error {
	current, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !current.Status.CanTransition(status) {
		return fmt.Errorf("cannot transition incident %s from %s to %s", id, current.Status, status)
	}
	_, err = r.conn(ctx).Exec(ctx,
		`UPDATE incidents SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	return err
}

func (r *repoPG) ListByWorker(ctx context.Context, workerID uuid.UUID, limit, offset int) ([]*Incident, int, error) {
	return r.list(ctx, `WHERE worker_id = $3`, limit, offset, workerID)
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Incident, int, error) {
	return r.list(ctx, ``, limit, offset)
}

func (r *repoPG) list(ctx context.Context, where string, limit, offset int, extra ...interface{}) ([]*Incident, int, error) {
	countArgs := extra
	var total int
	countWhere := where
	if where != "" {
		countWhere = `WHERE worker_id = $1`
	}
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM incidents `+countWhere, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args := append([]interface{}{limit, offset}, extra...)
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+incidentCols+` FROM incidents `+where+
			` ORDER BY created_at DESC LIMIT $1 OFFSET $2`, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Incident
	for rows.Next() {
		in, err := scanIncident(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, in)
	}
	return items, total, rows.Err()
}
