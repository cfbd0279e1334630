package discovery

import (
	"context"
	"testing"
	"time"

	"github.com/sharif-mahmud/wellpoint/clients/portal/internal/api"
)

type fakeStore struct {
	windows []api.AvailabilityWindow
	slots   []api.AvailableSlot
}

func (f *fakeStore) AvailableSlots(context.Context, int64) ([]api.AvailabilityWindow, error) {
	return f.windows, nil
}

func (f *fakeStore) AllAvailableSlots(context.Context) ([]api.AvailableSlot, error) {
	return f.slots, nil
}

func TestFilterOpen(t *testing.T) {
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	windows := []api.AvailabilityWindow{
		{ID: 1, StartTime: now.Add(time.Hour)},
		{ID: 2, StartTime: now.Add(time.Hour), IsBooked: true},
		{ID: 3, StartTime: now.Add(-time.Minute)},
		{ID: 4, StartTime: now}, // starting right now is no longer bookable
	}

	open := FilterOpen(windows, now)
	if len(open) != 1 || open[0].ID != 1 {
		t.Fatalf("expected only window 1, got %+v", open)
	}
}

func TestSlotsForProviderRefilters(t *testing.T) {
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	// The server considers a window open until it ends; one that already
	// started must still be dropped here.
	store := &fakeStore{windows: []api.AvailabilityWindow{
		{ID: 1, StartTime: now.Add(-time.Minute), EndTime: now.Add(time.Hour)},
		{ID: 2, StartTime: now.Add(2 * time.Hour), EndTime: now.Add(3 * time.Hour)},
	}}
	f := NewFinder(store)
	f.now = func() time.Time { return now }

	got, err := f.SlotsForProvider(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].ID != 2 {
		t.Fatalf("expected only window 2, got %+v", got)
	}
}

func TestAllSlotsKeepsProviderIdentity(t *testing.T) {
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	store := &fakeStore{slots: []api.AvailableSlot{
		{
			AvailabilityWindow: api.AvailabilityWindow{ID: 1, StartTime: now.Add(time.Hour)},
			ProviderName:       "Dr. Rahman",
			Specialty:          "Cardiology",
		},
		{
			AvailabilityWindow: api.AvailabilityWindow{ID: 2, StartTime: now.Add(-time.Hour)},
			ProviderName:       "Dr. Akter",
		},
	}}
	f := NewFinder(store)
	f.now = func() time.Time { return now }

	got, err := f.AllSlots(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 slot, got %d", len(got))
	}
	if got[0].ProviderName != "Dr. Rahman" || got[0].Specialty != "Cardiology" {
		t.Fatalf("provider identity lost: %+v", got[0])
	}
}
