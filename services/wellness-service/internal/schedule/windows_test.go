package schedule

import (
	"testing"
	"time"

	"github.com/sharif-mahmud/wellpoint/services/wellness-service/internal/model"
)

func TestValidateWindow(t *testing.T) {
	day := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	if err := ValidateWindow(day.Add(9*time.Hour), day.Add(10*time.Hour)); err != nil {
		t.Fatalf("valid window rejected: %v", err)
	}
	// 09:00 -> 08:00 must be rejected.
	if err := ValidateWindow(day.Add(9*time.Hour), day.Add(8*time.Hour)); err != ErrEndNotAfterStart {
		t.Fatalf("expected ErrEndNotAfterStart, got %v", err)
	}
	if err := ValidateWindow(day.Add(9*time.Hour), day.Add(9*time.Hour)); err != ErrEndNotAfterStart {
		t.Fatalf("zero-length window should be rejected, got %v", err)
	}
}

func TestUnexpiredDropsExactlyTheExpired(t *testing.T) {
	now := time.Date(2026, 1, 28, 12, 0, 0, 0, time.UTC)
	windows := []model.ProviderAvailability{
		{ID: 1, EndTime: now.Add(-time.Minute)},
		{ID: 2, EndTime: now}, // ended exactly now: expired
		{ID: 3, EndTime: now.Add(time.Second)},
		{ID: 4, EndTime: now.Add(24 * time.Hour)},
	}

	kept := Unexpired(windows, now)
	if len(kept) != 2 {
		t.Fatalf("expected 2 unexpired windows, got %d", len(kept))
	}
	if kept[0].ID != 3 || kept[1].ID != 4 {
		t.Fatalf("wrong windows kept: %+v", kept)
	}
}

func TestOpenFiltersBookedAndStarted(t *testing.T) {
	now := time.Date(2026, 1, 28, 12, 0, 0, 0, time.UTC)
	windows := []model.ProviderAvailability{
		{ID: 1, StartTime: now.Add(time.Hour), IsBooked: true},
		{ID: 2, StartTime: now.Add(-time.Hour)},
		{ID: 3, StartTime: now}, // started exactly now: no longer bookable
		{ID: 4, StartTime: now.Add(time.Hour)},
	}

	open := Open(windows, now)
	if len(open) != 1 || open[0].ID != 4 {
		t.Fatalf("expected only window 4 to be open, got %+v", open)
	}
}

// Overlapping windows for the same provider are accepted as-is today; this
// documents the behavior rather than endorsing it.
func TestOverlappingWindowsAccepted(t *testing.T) {
	day := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	if err := ValidateWindow(day.Add(9*time.Hour), day.Add(11*time.Hour)); err != nil {
		t.Fatalf("first window rejected: %v", err)
	}
	// Same provider, overlapping 10:00-12:00 window passes validation too.
	if err := ValidateWindow(day.Add(10*time.Hour), day.Add(12*time.Hour)); err != nil {
		t.Fatalf("overlapping window rejected: %v", err)
	}
}
