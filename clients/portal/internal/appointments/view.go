package appointments

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/sharif-mahmud/wellpoint/clients/portal/internal/api"
	"github.com/sharif-mahmud/wellpoint/clients/portal/internal/ops"
)

// Lifecycle status values derived from an appointment record, never stored.
const (
	StatusUpcoming  = "upcoming"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

const (
	opRefresh = "appointments.refresh"
	opCancel  = "appointments.cancel"
)

// Status derives the lifecycle phase of an appointment at the given instant.
// Cancellation wins over time: a cancelled appointment stays cancelled even
// after its date passes.
func Status(a api.Appointment, now time.Time) string {
	if a.Cancelled {
		return StatusCancelled
	}
	// An appointment whose time has arrived is no longer upcoming.
	if !a.DateTime.After(now) {
		return StatusCompleted
	}
	return StatusUpcoming
}

// Store is the slice of the wellness API the view needs.
type Store interface {
	ListUserAppointments(ctx context.Context, userID int64) ([]api.Appointment, error)
	CancelAppointment(ctx context.Context, id int64, reason string) (api.Appointment, error)
}

// View maintains a user's appointment list. Refresh replaces the whole list
// from the server; Cancel flips a record only after the server confirms.
type View struct {
	store   Store
	userID  int64
	tracker *ops.Tracker

	mu    sync.Mutex
	appts []api.Appointment

	now          func() time.Time
	providerName func(int64) string
}

type Option func(*View)

// WithProviderNames supplies a provider id to display-name resolver so Search
// can match on provider names.
func WithProviderNames(fn func(int64) string) Option {
	return func(v *View) { v.providerName = fn }
}

func withNow(fn func() time.Time) Option {
	return func(v *View) { v.now = fn }
}

func NewView(store Store, userID int64, tracker *ops.Tracker, opts ...Option) *View {
	v := &View{
		store:   store,
		userID:  userID,
		tracker: tracker,
		now:     time.Now,
	}
	if v.tracker == nil {
		v.tracker = ops.NewTracker()
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Refresh replaces the cached list with the server's view.
func (v *View) Refresh(ctx context.Context) error {
	v.tracker.Begin(opRefresh)
	appts, err := v.store.ListUserAppointments(ctx, v.userID)
	if err != nil {
		v.tracker.Fail(opRefresh, err.Error())
		return err
	}
	v.tracker.Succeed(opRefresh)

	v.mu.Lock()
	v.appts = appts
	v.mu.Unlock()
	return nil
}

// Appointments returns a snapshot of the cached list.
func (v *View) Appointments() []api.Appointment {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]api.Appointment, len(v.appts))
	copy(out, v.appts)
	return out
}

// Cancel rejects anything not currently upcoming, then asks the server. The
// cached record flips only after the server confirms, so a failed cancel
// leaves the list exactly as it was.
func (v *View) Cancel(ctx context.Context, id int64, reason string) error {
	appt, ok := v.find(id)
	if !ok {
		return &api.ValidationError{Message: "Appointment not found or already cancelled"}
	}
	switch Status(appt, v.now()) {
	case StatusCancelled:
		return &api.ValidationError{Message: "Appointment not found or already cancelled"}
	case StatusCompleted:
		return &api.ValidationError{Message: "Cannot cancel a past appointment"}
	}

	v.tracker.Begin(opCancel)
	confirmed, err := v.store.CancelAppointment(ctx, id, reason)
	if err != nil {
		v.tracker.Fail(opCancel, err.Error())
		return err
	}
	v.tracker.Succeed(opCancel)

	v.mu.Lock()
	for i := range v.appts {
		if v.appts[i].ID == id {
			v.appts[i] = confirmed
			break
		}
	}
	v.mu.Unlock()
	return nil
}

// Search filters the cached list by case-insensitive substring over provider
// name, consultation type, notes, and the appointment token. An empty query
// returns everything.
func (v *View) Search(query string) []api.Appointment {
	query = strings.ToLower(strings.TrimSpace(query))
	appts := v.Appointments()
	if query == "" {
		return appts
	}

	out := make([]api.Appointment, 0, len(appts))
	for _, a := range appts {
		if v.matches(a, query) {
			out = append(out, a)
		}
	}
	return out
}

func (v *View) matches(a api.Appointment, query string) bool {
	fields := []string{a.ConsultationType, a.Notes, a.AppointmentID}
	if v.providerName != nil {
		fields = append(fields, v.providerName(a.ProviderID))
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), query) {
			return true
		}
	}
	return false
}

func (v *View) find(id int64) (api.Appointment, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, a := range v.appts {
		if a.ID == id {
			return a, true
		}
	}
	return api.Appointment{}, false
}
