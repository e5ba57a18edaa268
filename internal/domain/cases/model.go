package cases

import (
	"time"

	"github.com/google/uuid"
)

// Priority is the closed set of case priorities.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Status is the case lifecycle state.
type Status string

const (
	StatusNew          Status = "new"
	StatusTriaged      Status = "triaged"
	StatusAssessed     Status = "assessed"
	StatusInRehab      Status = "in_rehab"
	StatusReturnToWork Status = "return_to_work"
	StatusClosed       Status = "closed"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusNew, StatusTriaged, StatusAssessed, StatusInRehab, StatusReturnToWork, StatusClosed:
		return true
	}
	return false
}

// LiftLimit caps how much the worker may lift.
type LiftLimit struct {
	MaxWeightKg int `json:"max_weight_kg"`
}

// PostureLimit caps how long the worker may hold a posture.
type PostureLimit struct {
	MaxDurationMinutes int `json:"max_duration_minutes"`
}

// Restrictions describes the structured work limits attached to a case.
// Zero max values with all flags set means fully restricted.
type Restrictions struct {
	Lifting    LiftLimit    `json:"lifting"`
	Standing   PostureLimit `json:"standing"`
	Sitting    PostureLimit `json:"sitting"`
	NoBending  bool         `json:"no_bending"`
	NoTwisting bool         `json:"no_twisting"`
	NoClimbing bool         `json:"no_climbing"`
	NoDriving  bool         `json:"no_driving"`
}

// Case is a tracked rehabilitation record created from exactly one incident.
// The incident link is a weak reference by id; neither side embeds the other.
type Case struct {
	ID               uuid.UUID    `db:"id" json:"id"`
	WorkerID         uuid.UUID    `db:"worker_id" json:"worker_id"`
	EmployerID       *uuid.UUID   `db:"employer_id" json:"employer_id,omitempty"`
	CaseManagerID    uuid.UUID    `db:"case_manager_id" json:"case_manager_id"`
	ClinicianID      *uuid.UUID   `db:"clinician_id" json:"clinician_id,omitempty"`
	IncidentID       uuid.UUID    `db:"incident_id" json:"incident_id"`
	Priority         Priority     `db:"priority" json:"priority"`
	WorkRestrictions Restrictions `db:"work_restrictions" json:"work_restrictions"`
	Status           Status       `db:"status" json:"status"`
	CreatedAt        time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time    `db:"updated_at" json:"updated_at"`
}
