package availability

import (
	"context"
	"sync"
	"time"

	"github.com/sharif-mahmud/wellpoint/clients/portal/internal/api"
	"github.com/sharif-mahmud/wellpoint/clients/portal/internal/ops"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"

	// sweepInterval bounds how stale an expired window can stay visible.
	sweepInterval = time.Minute

	opCreate = "availability.create"
	opLoad   = "availability.load"
	opDelete = "availability.delete"
)

// Store is the slice of the wellness API the manager needs.
type Store interface {
	CreateAvailability(ctx context.Context, req api.CreateAvailabilityRequest) (api.AvailabilityWindow, error)
	ListAvailability(ctx context.Context, providerID int64) ([]api.AvailabilityWindow, error)
	DeleteAvailability(ctx context.Context, id int64) error
}

// Manager owns a provider's availability windows: validated creation, cached
// listing with expiry, and guarded deletion. The cache never holds windows
// that have already ended.
type Manager struct {
	store      Store
	providerID int64
	tracker    *ops.Tracker

	mu      sync.Mutex
	windows []api.AvailabilityWindow

	now      func() time.Time
	onChange func([]api.AvailabilityWindow)
	confirm  func(api.AvailabilityWindow) bool
}

type Option func(*Manager)

// WithChangeListener registers a callback invoked with a fresh snapshot after
// every cache change.
func WithChangeListener(fn func([]api.AvailabilityWindow)) Option {
	return func(m *Manager) { m.onChange = fn }
}

// WithDeleteConfirm gates deletion behind a prompt. Returning false aborts
// without touching the server.
func WithDeleteConfirm(fn func(api.AvailabilityWindow) bool) Option {
	return func(m *Manager) { m.confirm = fn }
}

func withNow(fn func() time.Time) Option {
	return func(m *Manager) { m.now = fn }
}

func NewManager(store Store, providerID int64, tracker *ops.Tracker, opts ...Option) *Manager {
	m := &Manager{
		store:      store,
		providerID: providerID,
		tracker:    tracker,
		now:        time.Now,
	}
	if m.tracker == nil {
		m.tracker = ops.NewTracker()
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create validates the date and clock inputs locally, then publishes the
// window and refreshes the cache. Validation failures never reach the server.
func (m *Manager) Create(ctx context.Context, date, start, end string) (api.AvailabilityWindow, error) {
	startAt, err := parseLocal(date, start)
	if err != nil {
		return api.AvailabilityWindow{}, &api.ValidationError{Message: "Invalid date or time format"}
	}
	endAt, err := parseLocal(date, end)
	if err != nil {
		return api.AvailabilityWindow{}, &api.ValidationError{Message: "Invalid date or time format"}
	}
	if !endAt.After(startAt) {
		return api.AvailabilityWindow{}, &api.ValidationError{Message: "End time must be later than start time"}
	}

	m.tracker.Begin(opCreate)
	window, err := m.store.CreateAvailability(ctx, api.CreateAvailabilityRequest{
		ProviderID: m.providerID,
		StartTime:  startAt.Format(time.RFC3339),
		EndTime:    endAt.Format(time.RFC3339),
	})
	if err != nil {
		m.tracker.Fail(opCreate, err.Error())
		return api.AvailabilityWindow{}, err
	}
	m.tracker.Succeed(opCreate)

	if err := m.Load(ctx); err != nil {
		// The window exists server-side; a refresh failure must not fail
		// the create.
		return window, nil
	}
	return window, nil
}

// Load replaces the cache with the server's view, minus expired windows.
func (m *Manager) Load(ctx context.Context) error {
	m.tracker.Begin(opLoad)
	windows, err := m.store.ListAvailability(ctx, m.providerID)
	if err != nil {
		m.tracker.Fail(opLoad, err.Error())
		return err
	}
	m.tracker.Succeed(opLoad)

	m.replace(unexpired(windows, m.now()))
	return nil
}

// Delete removes an unbooked window after the optional confirmation hook
// approves. Booked windows are refused locally.
func (m *Manager) Delete(ctx context.Context, id int64) error {
	window, ok := m.find(id)
	if ok {
		if window.IsBooked {
			return &api.ValidationError{Message: "Cannot delete a booked availability window"}
		}
		if m.confirm != nil && !m.confirm(window) {
			return nil
		}
	}

	m.tracker.Begin(opDelete)
	if err := m.store.DeleteAvailability(ctx, id); err != nil {
		m.tracker.Fail(opDelete, err.Error())
		return err
	}
	m.tracker.Succeed(opDelete)

	m.mu.Lock()
	kept := make([]api.AvailabilityWindow, 0, len(m.windows))
	for _, w := range m.windows {
		if w.ID != id {
			kept = append(kept, w)
		}
	}
	m.windows = kept
	m.mu.Unlock()
	m.notify()
	return nil
}

// Windows returns a snapshot of the cached, unexpired windows.
func (m *Manager) Windows() []api.AvailabilityWindow {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]api.AvailabilityWindow, len(m.windows))
	copy(out, m.windows)
	return out
}

// Run sweeps expired windows out of the cache every minute until ctx is
// cancelled. The sweep stops with the owning context, never beyond it.
func (m *Manager) Run(ctx context.Context) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.sweep()
		}
	}
}

func (m *Manager) sweep() {
	now := m.now()
	m.mu.Lock()
	kept := unexpired(m.windows, now)
	changed := len(kept) != len(m.windows)
	m.windows = kept
	m.mu.Unlock()
	if changed {
		m.notify()
	}
}

func (m *Manager) replace(windows []api.AvailabilityWindow) {
	m.mu.Lock()
	m.windows = windows
	m.mu.Unlock()
	m.notify()
}

func (m *Manager) find(id int64) (api.AvailabilityWindow, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, w := range m.windows {
		if w.ID == id {
			return w, true
		}
	}
	return api.AvailabilityWindow{}, false
}

func (m *Manager) notify() {
	if m.onChange != nil {
		m.onChange(m.Windows())
	}
}

func parseLocal(date, clock string) (time.Time, error) {
	return time.ParseInLocation(dateLayout+" "+timeLayout, date+" "+clock, time.Local)
}

func unexpired(windows []api.AvailabilityWindow, now time.Time) []api.AvailabilityWindow {
	out := make([]api.AvailabilityWindow, 0, len(windows))
	for _, w := range windows {
		if w.EndTime.After(now) {
			out = append(out, w)
		}
	}
	return out
}
