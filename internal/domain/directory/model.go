package directory

import (
	"time"

	"github.com/google/uuid"
)

// Role is the closed set of platform roles.
type Role string

const (
	RoleWorker      Role = "worker"
	RoleSupervisor  Role = "supervisor"
	RoleClinician   Role = "clinician"
	RoleCaseManager Role = "case_manager"
	RoleEmployer    Role = "employer"
	RoleAdmin       Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleWorker, RoleSupervisor, RoleClinician, RoleCaseManager, RoleEmployer, RoleAdmin:
		return true
	}
	return false
}

// User is a directory entry.
type User struct {
	ID        uuid.UUID `db:"id" json:"id"`
	FirstName string    `db:"first_name" json:"first_name"`
	LastName  string    `db:"last_name" json:"last_name"`
	Email     string    `db:"email" json:"email"`
	Role      Role      `db:"role" json:"role"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Candidate is a directory entry annotated with its current open-case load,
// used by auto-assignment to pick the least-loaded eligible user.
type Candidate struct {
	User
	OpenCases int `db:"open_cases" json:"open_cases"`
}
