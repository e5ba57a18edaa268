package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ohs/ohs/internal/platform/realtime"
)

// Broadcaster pushes an event to every live stream of a recipient and
// reports how many streams took it. *realtime.Registry satisfies it.
type Broadcaster interface {
	Broadcast(recipient uuid.UUID, event realtime.Event) int
}

// BatchResult reports the outcome of a batch create. Attempts are
// independent; one failed insert never discards its siblings.
type BatchResult struct {
	Succeeded   []*Notification `json:"succeeded"`
	FailedCount int             `json:"failed_count"`
}

// ListResult is a page of notifications plus the recipient's unread total.
type ListResult struct {
	Notifications []*Notification `json:"notifications"`
	Total         int             `json:"total"`
	UnreadCount   int             `json:"unread_count"`
}

type Service struct {
	repo      Repository
	broadcast Broadcaster
	logger    zerolog.Logger
}

func NewService(repo Repository, broadcast Broadcaster, logger zerolog.Logger) *Service {
	return &Service{
		repo:      repo,
		broadcast: broadcast,
		logger:    logger.With().Str("component", "notification").Logger(),
	}
}

func (s *Service) validate(n *Notification) error {
	if n.RecipientID == uuid.Nil {
		return &ValidationError{Field: "recipient_id", Reason: "required"}
	}
	if !n.Type.Valid() {
		return &ValidationError{Field: "type", Reason: fmt.Sprintf("unknown type %q", n.Type)}
	}
	if n.Priority != "" && !n.Priority.Valid() {
		return &ValidationError{Field: "priority", Reason: fmt.Sprintf("unknown priority %q", n.Priority)}
	}
	if n.Title == "" {
		return &ValidationError{Field: "title", Reason: "required"}
	}
	return nil
}

// Create persists a notification and then pushes it to the recipient's live
// streams. Push delivery is best-effort; a recipient with no open stream
// still gets the row and reads it on their next fetch.
func (s *Service) Create(ctx context.Context, n *Notification) (*Notification, error) {
	if err := s.validate(n); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, err
	}
	s.push(n)
	return n, nil
}

// CreateBatch attempts each notification independently and reports the
// split. A persistence failure for one recipient is logged and counted, and
// never escapes to the caller.
func (s *Service) CreateBatch(ctx context.Context, notifications []*Notification) *BatchResult {
	result := &BatchResult{Succeeded: make([]*Notification, 0, len(notifications))}
	for _, n := range notifications {
		if _, err := s.Create(ctx, n); err != nil {
			result.FailedCount++
			s.logger.Error().Err(err).Str("recipient_id", n.RecipientID.String()).
				Str("type", string(n.Type)).Msg("batch notification failed")
			continue
		}
		result.Succeeded = append(result.Succeeded, n)
	}
	return result
}

func (s *Service) push(n *Notification) {
	data, err := json.Marshal(n)
	if err != nil {
		s.logger.Error().Err(err).Str("notification_id", n.ID.String()).Msg("encode push payload")
		return
	}
	delivered := s.broadcast.Broadcast(n.RecipientID, realtime.Event{
		Type:      string(n.Type),
		Timestamp: time.Now().UTC(),
		Data:      data,
	})
	s.logger.Debug().Str("notification_id", n.ID.String()).
		Str("recipient_id", n.RecipientID.String()).Int("delivered", delivered).
		Msg("pushed notification")
}

// List returns a page of the user's notifications, newest first, together
// with their unread total.
func (s *Service) List(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit, offset int) (*ListResult, error) {
	notifications, total, err := s.repo.ListByRecipient(ctx, userID, unreadOnly, limit, offset)
	if err != nil {
		return nil, err
	}
	unread, err := s.repo.UnreadCount(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &ListResult{Notifications: notifications, Total: total, UnreadCount: unread}, nil
}

// UnreadCount returns how many of the user's notifications are unread.
func (s *Service) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.repo.UnreadCount(ctx, userID)
}

// MarkRead flips a single notification owned by userID to read. Marking an
// already-read notification succeeds without changing read_at.
func (s *Service) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if n.RecipientID != userID {
		return ErrAccessDenied
	}
	return s.repo.MarkRead(ctx, id)
}

// MarkAllRead flips every unread notification of the user and returns the
// flipped count.
func (s *Service) MarkAllRead(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.repo.MarkAllRead(ctx, userID)
}

// Delete removes a notification owned by userID.
func (s *Service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if n.RecipientID != userID {
		return ErrAccessDenied
	}
	return s.repo.Delete(ctx, id)
}
