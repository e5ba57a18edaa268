package notification

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a notification id does not exist.
	ErrNotFound = errors.New("notification not found")
	// ErrAccessDenied is returned when a caller addresses a notification
	// they do not own.
	ErrAccessDenied = errors.New("notification belongs to another user")
)

type Repository interface {
	Create(ctx context.Context, n *Notification) error
	GetByID(ctx context.Context, id uuid.UUID) (*Notification, error)
	ListByRecipient(ctx context.Context, recipientID uuid.UUID, unreadOnly bool, limit, offset int) ([]*Notification, int, error)
	UnreadCount(ctx context.Context, recipientID uuid.UUID) (int, error)
	MarkRead(ctx context.Context, id uuid.UUID) error
	MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
