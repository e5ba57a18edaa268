// Package notification persists per-user notifications and pushes them to
// live streams. The stored row is the source of truth; push delivery is
// best-effort and a recipient with no open stream catches up on their next
// list or unread-count fetch.
package notification

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Type is the closed set of notification categories.
type Type string

const (
	TypeIncidentReported    Type = "incident_reported"
	TypeCaseCreated         Type = "case_created"
	TypeCaseAssigned        Type = "case_assigned"
	TypeAppointmentReminder Type = "appointment_reminder"
	TypeShiftAssigned       Type = "shift_assigned"
	TypeSystem              Type = "system"
)

// Valid reports whether t is a known notification type.
func (t Type) Valid() bool {
	switch t {
	case TypeIncidentReported, TypeCaseCreated, TypeCaseAssigned,
		TypeAppointmentReminder, TypeShiftAssigned, TypeSystem:
		return true
	}
	return false
}

// Priority is the notification display priority.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// RelatedEntity points at the domain object a notification is about. It is
// a weak reference; the target may be deleted independently.
type RelatedEntity struct {
	Type string    `json:"type"`
	ID   uuid.UUID `json:"id"`
}

// ValidationError reports a malformed notification before any insert.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Notification is one persisted per-user message.
type Notification struct {
	ID            uuid.UUID      `db:"id" json:"id"`
	RecipientID   uuid.UUID      `db:"recipient_id" json:"recipient_id"`
	SenderID      *uuid.UUID     `db:"sender_id" json:"sender_id,omitempty"`
	Type          Type           `db:"type" json:"type"`
	Title         string         `db:"title" json:"title"`
	Message       string         `db:"message" json:"message"`
	Priority      Priority       `db:"priority" json:"priority"`
	RelatedEntity *RelatedEntity `db:"related_entity" json:"related_entity,omitempty"`
	IsRead        bool           `db:"is_read" json:"is_read"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
	ReadAt        *time.Time     `db:"read_at" json:"read_at,omitempty"`
}
