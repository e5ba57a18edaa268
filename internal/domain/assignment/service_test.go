package assignment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ohs/ohs/internal/domain/directory"
)

type stubDirectory struct {
	byRole map[directory.Role][]*directory.Candidate
	err    error
	calls  []directory.Role
}

func (s *stubDirectory) GetByID(ctx context.Context, id uuid.UUID) (*directory.User, error) {
	return nil, directory.ErrNotFound
}

func (s *stubDirectory) ListActiveByRole(ctx context.Context, role directory.Role) ([]*directory.Candidate, error) {
	s.calls = append(s.calls, role)
	if s.err != nil {
		return nil, s.err
	}
	return s.byRole[role], nil
}

func candidate(id byte, openCases int) *directory.Candidate {
	return &directory.Candidate{
		User:      directory.User{ID: uuid.UUID{id}, IsActive: true},
		OpenCases: openCases,
	}
}

func TestSelectCaseManager_PicksFirstCandidate(t *testing.T) {
	dir := &stubDirectory{byRole: map[directory.Role][]*directory.Candidate{
		directory.RoleCaseManager: {candidate(1, 2), candidate(2, 5)},
	}}
	sel := NewSelector(dir, time.Second, zerolog.Nop())

	got, err := sel.SelectCaseManager(context.Background())
	if err != nil {
		t.Fatalf("SelectCaseManager: %v", err)
	}
	if got.ID != (uuid.UUID{1}) {
		t.Errorf("selected %s, want least-loaded candidate", got.ID)
	}
	if len(dir.calls) != 1 || dir.calls[0] != directory.RoleCaseManager {
		t.Errorf("directory calls = %v, want one case_manager lookup", dir.calls)
	}
}

func TestSelectCaseManager_Deterministic(t *testing.T) {
	dir := &stubDirectory{byRole: map[directory.Role][]*directory.Candidate{
		directory.RoleCaseManager: {candidate(3, 0), candidate(4, 0)},
	}}
	sel := NewSelector(dir, time.Second, zerolog.Nop())

	for i := 0; i < 5; i++ {
		got, err := sel.SelectCaseManager(context.Background())
		if err != nil {
			t.Fatalf("SelectCaseManager: %v", err)
		}
		if got.ID != (uuid.UUID{3}) {
			t.Fatalf("run %d selected %s, want the same candidate every time", i, got.ID)
		}
	}
}

func TestSelectClinician_NoEligibleUser(t *testing.T) {
	dir := &stubDirectory{byRole: map[directory.Role][]*directory.Candidate{}}
	sel := NewSelector(dir, time.Second, zerolog.Nop())

	if _, err := sel.SelectClinician(context.Background()); !errors.Is(err, ErrNoEligibleUser) {
		t.Errorf("err = %v, want ErrNoEligibleUser", err)
	}
}

func TestSelectCaseManager_TimeoutTreatedAsNoUser(t *testing.T) {
	dir := &stubDirectory{err: context.DeadlineExceeded}
	sel := NewSelector(dir, 10*time.Millisecond, zerolog.Nop())

	if _, err := sel.SelectCaseManager(context.Background()); !errors.Is(err, ErrNoEligibleUser) {
		t.Errorf("err = %v, want ErrNoEligibleUser on deadline", err)
	}
}

func TestSelectCaseManager_RepoErrorPropagates(t *testing.T) {
	boom := errors.New("directory unavailable")
	dir := &stubDirectory{err: boom}
	sel := NewSelector(dir, time.Second, zerolog.Nop())

	if _, err := sel.SelectCaseManager(context.Background()); !errors.Is(err, boom) {
		t.Errorf("err = %v, want wrapped repo error", err)
	}
}

func TestSelectCaseManager_BoundsLookup(t *testing.T) {
	dir := &stubDirectory{byRole: map[directory.Role][]*directory.Candidate{
		directory.RoleCaseManager: {candidate(1, 0)},
	}}
	sel := NewSelector(dir, time.Second, zerolog.Nop())

	var gotDeadline bool
	probe := probeDirectory{inner: dir, onList: func(ctx context.Context) {
		_, gotDeadline = ctx.Deadline()
	}}
	sel.users = probe

	if _, err := sel.SelectCaseManager(context.Background()); err != nil {
		t.Fatalf("SelectCaseManager: %v", err)
	}
	if !gotDeadline {
		t.Error("expected the directory lookup context to carry a deadline")
	}
}

type probeDirectory struct {
	inner  directory.Repository
	onList func(ctx context.Context)
}

func (p probeDirectory) GetByID(ctx context.Context, id uuid.UUID) (*directory.User, error) {
	return p.inner.GetByID(ctx, id)
}

func (p probeDirectory) ListActiveByRole(ctx context.Context, role directory.Role) ([]*directory.Candidate, error) {
	p.onList(ctx)
	return p.inner.ListActiveByRole(ctx, role)
}
