package availability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sharif-mahmud/wellpoint/clients/portal/internal/api"
)

type fakeStore struct {
	windows   []api.AvailabilityWindow
	created   []api.CreateAvailabilityRequest
	deleted   []int64
	createErr error
	deleteErr error
	nextID    int64
}

func (f *fakeStore) CreateAvailability(_ context.Context, req api.CreateAvailabilityRequest) (api.AvailabilityWindow, error) {
	if f.createErr != nil {
		return api.AvailabilityWindow{}, f.createErr
	}
	f.created = append(f.created, req)
	f.nextID++
	start, _ := time.Parse(time.RFC3339, req.StartTime)
	end, _ := time.Parse(time.RFC3339, req.EndTime)
	w := api.AvailabilityWindow{ID: f.nextID, ProviderID: req.ProviderID, StartTime: start, EndTime: end}
	f.windows = append(f.windows, w)
	return w, nil
}

func (f *fakeStore) ListAvailability(context.Context, int64) ([]api.AvailabilityWindow, error) {
	return append([]api.AvailabilityWindow(nil), f.windows...), nil
}

func (f *fakeStore) DeleteAvailability(_ context.Context, id int64) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func TestCreateRejectsMalformedInputLocally(t *testing.T) {
	store := &fakeStore{}
	m := NewManager(store, 1, nil)

	_, err := m.Create(context.Background(), "not-a-date", "09:00", "10:00")
	var vErr *api.ValidationError
	if !errors.As(err, &vErr) || vErr.Message != "Invalid date or time format" {
		t.Fatalf("expected format validation error, got %v", err)
	}
	if len(store.created) != 0 {
		t.Fatal("malformed input must not reach the server")
	}
}

func TestCreateRejectsInvertedWindow(t *testing.T) {
	store := &fakeStore{}
	m := NewManager(store, 1, nil)

	// 09:00 -> 08:00 on the same day.
	_, err := m.Create(context.Background(), "2026-03-01", "09:00", "08:00")
	var vErr *api.ValidationError
	if !errors.As(err, &vErr) || vErr.Message != "End time must be later than start time" {
		t.Fatalf("expected ordering validation error, got %v", err)
	}
	if len(store.created) != 0 {
		t.Fatal("inverted window must not reach the server")
	}
}

func TestCreateRefreshesCache(t *testing.T) {
	store := &fakeStore{}
	var notified int
	m := NewManager(store, 1, nil, WithChangeListener(func([]api.AvailabilityWindow) { notified++ }))

	date := time.Now().AddDate(0, 0, 1).Format(dateLayout)
	if _, err := m.Create(context.Background(), date, "09:00", "10:00"); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if got := m.Windows(); len(got) != 1 {
		t.Fatalf("cache has %d windows, want 1", len(got))
	}
	if notified == 0 {
		t.Fatal("change listener not invoked")
	}
}

func TestLoadDropsExpiredWindows(t *testing.T) {
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	store := &fakeStore{windows: []api.AvailabilityWindow{
		{ID: 1, EndTime: now.Add(-time.Hour)},
		{ID: 2, EndTime: now.Add(time.Hour)},
	}}
	m := NewManager(store, 1, nil, withNow(func() time.Time { return now }))

	if err := m.Load(context.Background()); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	got := m.Windows()
	if len(got) != 1 || got[0].ID != 2 {
		t.Fatalf("expected only window 2 after load, got %+v", got)
	}
}

func TestSweepEvictsWindowsAsTheyExpire(t *testing.T) {
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	store := &fakeStore{windows: []api.AvailabilityWindow{
		{ID: 1, EndTime: now.Add(30 * time.Second)},
		{ID: 2, EndTime: now.Add(time.Hour)},
	}}

	current := now
	var notified int
	m := NewManager(store, 1, nil,
		withNow(func() time.Time { return current }),
		WithChangeListener(func([]api.AvailabilityWindow) { notified++ }),
	)
	if err := m.Load(context.Background()); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	notified = 0

	// One sweep interval later, window 1 has ended.
	current = now.Add(sweepInterval)
	m.sweep()

	got := m.Windows()
	if len(got) != 1 || got[0].ID != 2 {
		t.Fatalf("expected window 1 evicted, got %+v", got)
	}
	if notified != 1 {
		t.Fatalf("expected one change notification, got %d", notified)
	}

	// Nothing left to evict; no further notifications.
	m.sweep()
	if notified != 1 {
		t.Fatalf("no-op sweep must not notify, got %d notifications", notified)
	}
}

func TestRunStopsWithContext(t *testing.T) {
	m := NewManager(&fakeStore{}, 1, nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after context cancellation")
	}
}

func TestDeleteRefusesBookedWindow(t *testing.T) {
	now := time.Now()
	store := &fakeStore{windows: []api.AvailabilityWindow{
		{ID: 1, EndTime: now.Add(time.Hour), IsBooked: true},
	}}
	m := NewManager(store, 1, nil)
	if err := m.Load(context.Background()); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	err := m.Delete(context.Background(), 1)
	var vErr *api.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected local validation error, got %v", err)
	}
	if len(store.deleted) != 0 {
		t.Fatal("booked window deletion must not reach the server")
	}
}

func TestDeleteHonorsConfirmHook(t *testing.T) {
	now := time.Now()
	store := &fakeStore{windows: []api.AvailabilityWindow{
		{ID: 1, EndTime: now.Add(time.Hour)},
	}}
	m := NewManager(store, 1, nil, WithDeleteConfirm(func(api.AvailabilityWindow) bool { return false }))
	if err := m.Load(context.Background()); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if err := m.Delete(context.Background(), 1); err != nil {
		t.Fatalf("declined confirmation should not error: %v", err)
	}
	if len(store.deleted) != 0 {
		t.Fatal("declined confirmation must abort the delete")
	}
	if got := m.Windows(); len(got) != 1 {
		t.Fatalf("cache must be untouched after aborted delete, got %+v", got)
	}
}
