package incident

import "testing"

func TestSeverity_Valid(t *testing.T) {
	for _, s := range Severities {
		if !s.Valid() {
			t.Errorf("expected %q to be valid", s)
		}
	}
	if Severity("catastrophic").Valid() {
		t.Error("unknown severity accepted")
	}
}

func TestType_Valid(t *testing.T) {
	for _, tp := range Types {
		if !tp.Valid() {
			t.Errorf("expected %q to be valid", tp)
		}
	}
	if Type("asteroid").Valid() {
		t.Error("unknown type accepted")
	}
}

func TestStatus_ForwardOnly(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		{StatusReported, StatusInvestigating, true},
		{StatusReported, StatusClosed, true}, // auto-case shortcut
		{StatusInvestigating, StatusInvestigated, true},
		{StatusInvestigated, StatusClosed, true},
		{StatusClosed, StatusReported, false},
		{StatusInvestigated, StatusInvestigating, false},
		{StatusClosed, StatusClosed, false},
		{Status("bogus"), StatusClosed, false},
	}
	for _, tc := range cases {
		if got := tc.from.CanTransition(tc.to); got != tc.want {
			t.Errorf("%s -> %s: expected %v, got %v", tc.from, tc.to, tc.want, got)
		}
	}
}

func TestValidationError_Message(t *testing.T) {
	err := &ValidationError{Field: "severity", Reason: "unknown value"}
	if err.Error() != "invalid severity: unknown value" {
		t.Errorf("unexpected message %q", err.Error())
	}
}
