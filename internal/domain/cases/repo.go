package cases

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a case id does not exist.
	ErrNotFound = errors.New("case not found")
	// ErrIncidentAlreadyCased is returned when a case already references
	// the incident; an incident gets at most one auto-created case.
	ErrIncidentAlreadyCased = errors.New("incident already has a case")
)

type Repository interface {
	Create(ctx context.Context, c *Case) error
	GetByID(ctx context.Context, id uuid.UUID) (*Case, error)
	GetByIncident(ctx context.Context, incidentID uuid.UUID) (*Case, error)
	ListByManager(ctx context.Context, managerID uuid.UUID, limit, offset int) ([]*Case, int, error)
	ListByWorker(ctx context.Context, workerID uuid.UUID, limit, offset int) ([]*Case, int, error)
}
