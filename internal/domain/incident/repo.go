package incident

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned when an incident id does not exist.
var ErrNotFound = errors.New("incident not found")

type Repository interface {
	Create(ctx context.Context, in *Incident) error
	GetByID(ctx context.Context, id uuid.UUID) (*Incident, error)
	// UpdateStatus advances the incident lifecycle. Implementations must
	// reject backward moves.
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error
	ListByWorker(ctx context.Context, workerID uuid.UUID, limit, offset int) ([]*Incident, int, error)
	List(ctx context.Context, limit, offset int) ([]*Incident, int, error)
}
