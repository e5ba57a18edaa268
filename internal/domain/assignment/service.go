package assignment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/ohs/ohs/internal/domain/directory"
)

// ErrNoEligibleUser is returned when no active user holds the required role.
var ErrNoEligibleUser = errors.New("no eligible user for role")

// Selector picks assignees for new cases from the user directory. Selection
// is least-loaded with the lowest id as tie-break, so the same directory
// state always yields the same assignee.
type Selector struct {
	users   directory.Repository
	timeout time.Duration
	logger  zerolog.Logger
}

// NewSelector creates a Selector. timeout bounds each directory lookup; a
// lookup that exceeds it is treated the same as an empty directory.
func NewSelector(users directory.Repository, timeout time.Duration, logger zerolog.Logger) *Selector {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Selector{
		users:   users,
		timeout: timeout,
		logger:  logger.With().Str("component", "assignment").Logger(),
	}
}

// SelectCaseManager returns the least-loaded active case manager, or
// ErrNoEligibleUser when none exists.
func (s *Selector) SelectCaseManager(ctx context.Context) (*directory.Candidate, error) {
	return s.selectByRole(ctx, directory.RoleCaseManager)
}

// SelectClinician returns the least-loaded active clinician, or
// ErrNoEligibleUser when none exists.
func (s *Selector) SelectClinician(ctx context.Context) (*directory.Candidate, error) {
	return s.selectByRole(ctx, directory.RoleClinician)
}

func (s *Selector) selectByRole(ctx context.Context, role directory.Role) (*directory.Candidate, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	candidates, err := s.users.ListActiveByRole(ctx, role)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			s.logger.Warn().Str("role", string(role)).Dur("timeout", s.timeout).
				Msg("directory lookup timed out, treating as no eligible user")
			return nil, ErrNoEligibleUser
		}
		return nil, fmt.Errorf("list active %s users: %w", role, err)
	}
	if len(candidates) == 0 {
		return nil, ErrNoEligibleUser
	}

	picked := candidates[0]
	s.logger.Debug().Str("role", string(role)).Str("user_id", picked.ID.String()).
		Int("open_cases", picked.OpenCases).Msg("selected assignee")
	return picked, nil
}
