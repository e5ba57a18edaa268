package incident

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Severity is the closed set of incident severities, ordered from least to
// most severe.
type Severity string

const (
	SeverityNearMiss         Severity = "near_miss"
	SeverityFirstAid         Severity = "first_aid"
	SeverityMedicalTreatment Severity = "medical_treatment"
	SeverityLostTime         Severity = "lost_time"
	SeverityFatality         Severity = "fatality"
)

// Severities lists every severity in ascending order.
var Severities = []Severity{
	SeverityNearMiss,
	SeverityFirstAid,
	SeverityMedicalTreatment,
	SeverityLostTime,
	SeverityFatality,
}

// Valid reports whether s is a known severity.
func (s Severity) Valid() bool {
	switch s {
	case SeverityNearMiss, SeverityFirstAid, SeverityMedicalTreatment, SeverityLostTime, SeverityFatality:
		return true
	}
	return false
}

// Type is the closed set of incident categories.
type Type string

const (
	TypeOverexertion     Type = "overexertion"
	TypeSlipTripFall     Type = "slip_trip_fall"
	TypeStruckBy         Type = "struck_by"
	TypeCutLaceration    Type = "cut_laceration"
	TypeBurn             Type = "burn"
	TypeCrush            Type = "crush"
	TypeChemicalExposure Type = "chemical_exposure"
	TypeVehicle          Type = "vehicle"
	TypeOther            Type = "other"
)

// Types lists every incident type.
var Types = []Type{
	TypeOverexertion, TypeSlipTripFall, TypeStruckBy, TypeCutLaceration,
	TypeBurn, TypeCrush, TypeChemicalExposure, TypeVehicle, TypeOther,
}

// Valid reports whether t is a known incident type.
func (t Type) Valid() bool {
	switch t {
	case TypeOverexertion, TypeSlipTripFall, TypeStruckBy, TypeCutLaceration,
		TypeBurn, TypeCrush, TypeChemicalExposure, TypeVehicle, TypeOther:
		return true
	}
	return false
}

// Status is the incident lifecycle state. Status only advances forward; the
// single shortcut is reported -> closed, taken when a case is auto-created
// at intake.
type Status string

const (
	StatusReported      Status = "reported"
	StatusInvestigating Status = "investigating"
	StatusInvestigated  Status = "investigated"
	StatusClosed        Status = "closed"
)

var statusRank = map[Status]int{
	StatusReported:      0,
	StatusInvestigating: 1,
	StatusInvestigated:  2,
	StatusClosed:        3,
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	_, ok := statusRank[s]
	return ok
}

// CanTransition reports whether moving from s to next is a forward move.
func (s Status) CanTransition(next Status) bool {
	from, ok := statusRank[s]
	if !ok {
		return false
	}
	to, ok := statusRank[next]
	if !ok {
		return false
	}
	return to > from
}

// Incident is a reported workplace safety event.
type Incident struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	ReporterID   uuid.UUID  `db:"reporter_id" json:"reporter_id"`
	WorkerID     uuid.UUID  `db:"worker_id" json:"worker_id"`
	EmployerID   *uuid.UUID `db:"employer_id" json:"employer_id,omitempty"`
	IncidentType Type       `db:"incident_type" json:"incident_type"`
	Severity     Severity   `db:"severity" json:"severity"`
	Description  string     `db:"description" json:"description"`
	IncidentDate time.Time  `db:"incident_date" json:"incident_date"`
	PhotoURLs    []string   `db:"photo_urls" json:"photo_urls,omitempty"`
	Status       Status     `db:"status" json:"status"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// ValidationError reports a malformed intake request. It is raised before
// any side effect is performed.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
