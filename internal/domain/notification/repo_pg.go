package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

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

const notificationCols = `id, recipient_id, sender_id, type, title, message, priority,
	related_entity, is_read, created_at, read_at`

func scanNotification(row pgx.Row) (*Notification, error) {
	var n Notification
	var related []byte
	err := row.Scan(&n.ID, &n.RecipientID, &n.SenderID, &n.Type, &n.Title, &n.Message,
		&n.Priority, &related, &n.IsRead, &n.CreatedAt, &n.ReadAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if len(related) > 0 {
		n.RelatedEntity = &RelatedEntity{}
		if err := json.Unmarshal(related, n.RelatedEntity); err != nil {
			return nil, fmt.Errorf("decode related entity: %w", err)
		}
	}
	return &n, nil
}

func (r *repoPG) Create(ctx context.Context, n *Notification) error {
	n.ID = uuid.New()
	if n.Priority == "" {
		n.Priority = PriorityNormal
	}
	n.CreatedAt = time.Now().UTC()

	var related []byte
	if n.RelatedEntity != nil {
		var err error
		related, err = json.Marshal(n.RelatedEntity)
		if err != nil {
			return fmt.Errorf("encode related entity: %w", err)
		}
	}

	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO notifications (id, recipient_id, sender_id, type, title, message, priority, related_entity, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, false, $9)`,
		n.ID, n.RecipientID, n.SenderID, n.Type, n.Title, n.Message, n.Priority, related, n.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Notification, error) {
	row := r.conn(ctx).QueryRow(ctx,
		`SELECT `+notificationCols+` FROM notifications WHERE id = $1`, id)
	return scanNotification(row)
}

func (r *repoPG) ListByRecipient(ctx context.Context, recipientID uuid.UUID, unreadOnly bool, limit, offset int) ([]*Notification, int, error) {
	where := `WHERE recipient_id = $1`
	if unreadOnly {
		where += ` AND is_read = false`
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM notifications `+where, recipientID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count notifications: %w", err)
	}

	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+notificationCols+` FROM notifications `+where+`
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		recipientID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	out := make([]*Notification, 0, limit)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, n)
	}
	return out, total, rows.Err()
}

func (r *repoPG) UnreadCount(ctx context.Context, recipientID uuid.UUID) (int, error) {
	var count int
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM notifications WHERE recipient_id = $1 AND is_read = false`,
		recipientID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return count, nil
}

func (r *repoPG) MarkRead(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE notifications SET is_read = true, read_at = COALESCE(read_at, now())
		WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int, error) {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE notifications SET is_read = true, read_at = now()
		WHERE recipient_id = $1 AND is_read = false`, recipientID)
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM notifications WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
