package assignment

import (
	"testing"

	"github.com/ohs/ohs/internal/domain/cases"
	"github.com/ohs/ohs/internal/domain/incident"
)

func TestPriorityFor(t *testing.T) {
	tests := []struct {
		severity incident.Severity
		itype    incident.Type
		want     cases.Priority
	}{
		{incident.SeverityFatality, incident.TypeVehicle, cases.PriorityUrgent},
		{incident.SeverityFatality, incident.TypeOverexertion, cases.PriorityUrgent},
		{incident.SeverityLostTime, incident.TypeSlipTripFall, cases.PriorityHigh},
		{incident.SeverityLostTime, incident.TypeOverexertion, cases.PriorityHigh},
		{incident.SeverityMedicalTreatment, incident.TypeBurn, cases.PriorityMedium},
		{incident.SeverityFirstAid, incident.TypeCutLaceration, cases.PriorityLow},
		{incident.SeverityNearMiss, incident.TypeStruckBy, cases.PriorityLow},
	}
	for _, tc := range tests {
		if got := PriorityFor(tc.severity, tc.itype); got != tc.want {
			t.Errorf("PriorityFor(%s, %s) = %s, want %s", tc.severity, tc.itype, got, tc.want)
		}
	}
}

func TestPriorityFor_Total(t *testing.T) {
	for _, sev := range incident.Severities {
		for _, it := range incident.Types {
			if got := PriorityFor(sev, it); !got.Valid() {
				t.Errorf("PriorityFor(%s, %s) = %q, not a valid priority", sev, it, got)
			}
		}
	}
	if got := PriorityFor(incident.Severity("bogus"), incident.TypeOther); got != cases.PriorityMedium {
		t.Errorf("unknown severity priority = %s, want %s", got, cases.PriorityMedium)
	}
}

func TestRestrictionsFor_Fatality(t *testing.T) {
	r := RestrictionsFor(incident.SeverityFatality, incident.TypeCrush)
	if r.Lifting.MaxWeightKg != 0 {
		t.Errorf("lifting cap = %d, want 0", r.Lifting.MaxWeightKg)
	}
	if r.Standing.MaxDurationMinutes != 0 || r.Sitting.MaxDurationMinutes != 0 {
		t.Errorf("posture limits = %d/%d, want 0/0", r.Standing.MaxDurationMinutes, r.Sitting.MaxDurationMinutes)
	}
	if !r.NoBending || !r.NoTwisting || !r.NoClimbing || !r.NoDriving {
		t.Error("expected all activity flags set for a fatality")
	}
}

func TestRestrictionsFor_NearMiss(t *testing.T) {
	r := RestrictionsFor(incident.SeverityNearMiss, incident.TypeOther)
	if r.Lifting.MaxWeightKg != 25 {
		t.Errorf("lifting cap = %d, want 25", r.Lifting.MaxWeightKg)
	}
	if r.NoBending || r.NoTwisting || r.NoClimbing || r.NoDriving {
		t.Error("expected no activity flags for a near miss")
	}
}

func TestRestrictionsFor_OverexertionHalvesLifting(t *testing.T) {
	base := RestrictionsFor(incident.SeverityFirstAid, incident.TypeOther)
	over := RestrictionsFor(incident.SeverityFirstAid, incident.TypeOverexertion)
	if over.Lifting.MaxWeightKg != base.Lifting.MaxWeightKg/2 {
		t.Errorf("overexertion lifting cap = %d, want %d", over.Lifting.MaxWeightKg, base.Lifting.MaxWeightKg/2)
	}
	if over.Standing != base.Standing || over.Sitting != base.Sitting {
		t.Error("overexertion should only change the lifting cap")
	}
}

func TestRestrictionsFor_SeverityMonotone(t *testing.T) {
	prev := RestrictionsFor(incident.Severities[0], incident.TypeOther)
	for _, sev := range incident.Severities[1:] {
		cur := RestrictionsFor(sev, incident.TypeOther)
		if cur.Lifting.MaxWeightKg > prev.Lifting.MaxWeightKg {
			t.Errorf("%s lifting cap %d exceeds less severe %d", sev, cur.Lifting.MaxWeightKg, prev.Lifting.MaxWeightKg)
		}
		if cur.Standing.MaxDurationMinutes > prev.Standing.MaxDurationMinutes {
			t.Errorf("%s standing limit %d exceeds less severe %d", sev, cur.Standing.MaxDurationMinutes, prev.Standing.MaxDurationMinutes)
		}
		prev = cur
	}
}

func TestRestrictionsFor_UnknownSeverity(t *testing.T) {
	got := RestrictionsFor(incident.Severity("bogus"), incident.TypeOther)
	want := RestrictionsFor(incident.SeverityMedicalTreatment, incident.TypeOther)
	if got != want {
		t.Errorf("unknown severity restrictions = %+v, want medical-treatment baseline %+v", got, want)
	}
}
