package ops

import "testing"

func TestTrackerKeysAreIndependent(t *testing.T) {
	tr := NewTracker()

	tr.Begin("availability.create")
	tr.Begin("appointment.cancel")
	tr.Fail("appointment.cancel", "Appointment not found or already cancelled")

	if !tr.InFlight("availability.create") {
		t.Fatal("availability.create should still be in flight")
	}
	got := tr.Get("appointment.cancel")
	if got.State != Failed || got.Reason != "Appointment not found or already cancelled" {
		t.Fatalf("unexpected status: %+v", got)
	}

	tr.Succeed("availability.create")
	if tr.Get("availability.create").State != Succeeded {
		t.Fatal("availability.create should have succeeded")
	}
}

func TestUnknownKeyIsIdle(t *testing.T) {
	tr := NewTracker()
	if got := tr.Get("never-started"); got.State != Idle || got.Reason != "" {
		t.Fatalf("unexpected status for unknown key: %+v", got)
	}
}
