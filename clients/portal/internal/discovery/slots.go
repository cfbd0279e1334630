package discovery

import (
	"context"
	"time"

	"github.com/sharif-mahmud/wellpoint/clients/portal/internal/api"
)

// Store is the slice of the wellness API slot discovery needs.
type Store interface {
	AvailableSlots(ctx context.Context, providerID int64) ([]api.AvailabilityWindow, error)
	AllAvailableSlots(ctx context.Context) ([]api.AvailableSlot, error)
}

// Finder surfaces bookable slots. The server already excludes booked and
// ended windows; the finder re-filters on start time so a slot that began
// while the response was in flight is never offered.
type Finder struct {
	store Store
	now   func() time.Time
}

func NewFinder(store Store) *Finder {
	return &Finder{store: store, now: time.Now}
}

func (f *Finder) SlotsForProvider(ctx context.Context, providerID int64) ([]api.AvailabilityWindow, error) {
	windows, err := f.store.AvailableSlots(ctx, providerID)
	if err != nil {
		return nil, err
	}
	return FilterOpen(windows, f.now()), nil
}

func (f *Finder) AllSlots(ctx context.Context) ([]api.AvailableSlot, error) {
	slots, err := f.store.AllAvailableSlots(ctx)
	if err != nil {
		return nil, err
	}
	now := f.now()
	out := make([]api.AvailableSlot, 0, len(slots))
	for _, s := range slots {
		if bookable(s.AvailabilityWindow, now) {
			out = append(out, s)
		}
	}
	return out, nil
}

// FilterOpen keeps windows that are unbooked and start strictly in the
// future.
func FilterOpen(windows []api.AvailabilityWindow, now time.Time) []api.AvailabilityWindow {
	out := make([]api.AvailabilityWindow, 0, len(windows))
	for _, w := range windows {
		if bookable(w, now) {
			out = append(out, w)
		}
	}
	return out
}

func bookable(w api.AvailabilityWindow, now time.Time) bool {
	return !w.IsBooked && w.StartTime.After(now)
}
