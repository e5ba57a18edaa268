package cases

import "testing"

func TestPriority_Valid(t *testing.T) {
	for _, p := range []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent} {
		if !p.Valid() {
			t.Errorf("expected %q to be valid", p)
		}
	}
	if Priority("critical").Valid() {
		t.Error("unknown priority accepted")
	}
}

func TestStatus_Valid(t *testing.T) {
	for _, s := range []Status{StatusNew, StatusTriaged, StatusAssessed, StatusInRehab, StatusReturnToWork, StatusClosed} {
		if !s.Valid() {
			t.Errorf("expected %q to be valid", s)
		}
	}
	if Status("archived").Valid() {
		t.Error("unknown status accepted")
	}
}
