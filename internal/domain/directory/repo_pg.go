package directory

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ohs/ohs/internal/platform/db"
)

// ErrNotFound is returned when a user id does not exist in the directory.
var ErrNotFound = errors.New("user not found")

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

const userCols = `id, first_name, last_name, email, role, is_active, created_at, updated_at`

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	var u User
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT `+userCols+` FROM users WHERE id = $1`, id).
		Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Open cases are those not yet closed; the count drives least-loaded
// assignment, so the ordering here is the selection strategy.
func (r *repoPG) ListActiveByRole(ctx context.Context, role Role) ([]*Candidate, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT u.id, u.first_name, u.last_name, u.email, u.role, u.is_active,
			u.created_at, u.updated_at,
			COUNT(c.id) FILTER (WHERE c.status <> 'closed') AS open_cases
		FROM users u
		LEFT JOIN cases c ON c.case_manager_id = u.id OR c.clinician_id = u.id
		WHERE u.role = $1 AND u.is_active
		GROUP BY u.id
		ORDER BY open_cases ASC, u.id ASC`, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Candidate
	for rows.Next() {
		var c Candidate
		if err := rows.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Role,
			&c.IsActive, &c.CreatedAt, &c.UpdatedAt, &c.OpenCases); err != nil {
			return nil, err
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}
