// Package assignment computes case priority and work restrictions from
// incident facts and selects the case manager and clinician for a new case.
// The policy functions are pure and total over the severity and incident
// type domains; the selector is the only part that touches the directory.
package assignment

import (
	"github.com/ohs/ohs/internal/domain/cases"
	"github.com/ohs/ohs/internal/domain/incident"
)

// PriorityFor maps incident facts to a case priority. Severity decides
// first; the incident type only refines within a severity band. Unknown
// severities fall back to medium so the function stays total.
func PriorityFor(severity incident.Severity, incidentType incident.Type) cases.Priority {
	switch severity {
	case incident.SeverityFatality:
		return cases.PriorityUrgent
	case incident.SeverityLostTime:
		// Overexertion lost-time incidents carry the same priority; the
		// type only affects restrictions, not urgency.
		return cases.PriorityHigh
	case incident.SeverityMedicalTreatment:
		return cases.PriorityMedium
	case incident.SeverityFirstAid, incident.SeverityNearMiss:
		return cases.PriorityLow
	default:
		return cases.PriorityMedium
	}
}

// restrictionRow is a per-severity restriction baseline.
type restrictionRow struct {
	liftKg   int
	standMin int
	sitMin   int
	flags    bool
}

var restrictionTable = map[incident.Severity]restrictionRow{
	incident.SeverityNearMiss:         {liftKg: 25, standMin: 480, sitMin: 480, flags: false},
	incident.SeverityFirstAid:         {liftKg: 15, standMin: 240, sitMin: 480, flags: false},
	incident.SeverityMedicalTreatment: {liftKg: 10, standMin: 120, sitMin: 240, flags: true},
	incident.SeverityLostTime:         {liftKg: 5, standMin: 60, sitMin: 120, flags: true},
	incident.SeverityFatality:         {liftKg: 0, standMin: 0, sitMin: 0, flags: true},
}

// RestrictionsFor produces the structured work limits for a case. Limits
// scale inversely with severity: near-miss incidents get normal working
// values with no flags, a fatality is fully restricted. Overexertion
// incidents halve the lifting cap within their severity band. Unknown
// severities get the medical-treatment baseline so the function stays total.
func RestrictionsFor(severity incident.Severity, incidentType incident.Type) cases.Restrictions {
	row, ok := restrictionTable[severity]
	if !ok {
		row = restrictionTable[incident.SeverityMedicalTreatment]
	}

	liftKg := row.liftKg
	if incidentType == incident.TypeOverexertion {
		liftKg /= 2
	}

	return cases.Restrictions{
		Lifting:    cases.LiftLimit{MaxWeightKg: liftKg},
		Standing:   cases.PostureLimit{MaxDurationMinutes: row.standMin},
		Sitting:    cases.PostureLimit{MaxDurationMinutes: row.sitMin},
		NoBending:  row.flags,
		NoTwisting: row.flags,
		NoClimbing: row.flags,
		NoDriving:  row.flags,
	}
}
