package directory

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the user directory read contract consumed by auto-assignment
// and (for recipient validation) the notification service. The directory is
// owned by an external identity workflow; this side never mutates it.
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	// ListActiveByRole returns active users holding the role, annotated with
	// their open-case count and ordered by (open_cases ASC, id ASC) so the
	// first entry is the deterministic least-loaded candidate.
	ListActiveByRole(ctx context.Context, role Role) ([]*Candidate, error)
}
