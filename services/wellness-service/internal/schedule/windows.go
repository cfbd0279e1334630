package schedule

import (
	"errors"
	"time"

	"github.com/sharif-mahmud/wellpoint/services/wellness-service/internal/model"
)

var ErrEndNotAfterStart = errors.New("end time must be later than start time")

// ValidateWindow rejects windows whose end instant is not strictly later than
// the start instant. Overlap with other windows for the same provider is not
// checked here; overlapping windows are accepted.
func ValidateWindow(start, end time.Time) error {
	if !end.After(start) {
		return ErrEndNotAfterStart
	}
	return nil
}

// Unexpired keeps windows that have not yet ended. A window is expired exactly
// when end_time <= now; nothing else is dropped.
func Unexpired(windows []model.ProviderAvailability, now time.Time) []model.ProviderAvailability {
	out := make([]model.ProviderAvailability, 0, len(windows))
	for _, w := range windows {
		if w.EndTime.After(now) {
			out = append(out, w)
		}
	}
	return out
}

// Open keeps bookable windows: unbooked and not yet started.
func Open(windows []model.ProviderAvailability, now time.Time) []model.ProviderAvailability {
	out := make([]model.ProviderAvailability, 0, len(windows))
	for _, w := range windows {
		if !w.IsBooked && w.StartTime.After(now) {
			out = append(out, w)
		}
	}
	return out
}
