package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sharif-mahmud/wellpoint/clients/portal/internal/api"
)

type fakeStore struct {
	mu      sync.Mutex
	created []api.CreateAppointmentRequest
	err     error
	block   chan struct{} // when set, CreateAppointment waits until closed
}

func (f *fakeStore) CreateAppointment(_ context.Context, userID int64, req api.CreateAppointmentRequest) (api.Appointment, error) {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return api.Appointment{}, f.err
	}
	f.created = append(f.created, req)
	dt, _ := time.Parse(time.RFC3339, req.DateTime)
	return api.Appointment{
		ID:               int64(len(f.created)),
		AppointmentID:    req.AppointmentID,
		UserID:           userID,
		ProviderID:       req.ProviderID,
		DateTime:         dt,
		ConsultationType: req.ConsultationType,
	}, nil
}

func (f *fakeStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.created)
}

type fakeSlots struct {
	slots []api.AvailabilityWindow
}

func (f *fakeSlots) SlotsForProvider(context.Context, int64) ([]api.AvailabilityWindow, error) {
	return f.slots, nil
}

func TestSubmitRequiresAuth(t *testing.T) {
	store := &fakeStore{}
	c := NewCoordinator(store, &fakeSlots{}, 0, nil)

	_, err := c.Submit(context.Background(), Request{ProviderID: 1, Date: "2026-03-01", Time: "10:00"})
	if !errors.Is(err, api.ErrAuthRequired) {
		t.Fatalf("expected ErrAuthRequired, got %v", err)
	}
	if store.count() != 0 {
		t.Fatal("unauthenticated submit must not reach the server")
	}
	if state, _ := c.State(); state != Failed {
		t.Fatalf("state = %v, want Failed", state)
	}
}

func TestSubmitRejectsStaleSlotSelection(t *testing.T) {
	store := &fakeStore{}
	slots := &fakeSlots{slots: []api.AvailabilityWindow{
		{ID: 7, StartTime: time.Now().Add(time.Hour)},
	}}
	c := NewCoordinator(store, slots, 42, nil)

	// Slot 9 was visible earlier but is no longer offered.
	_, err := c.Submit(context.Background(), Request{ProviderID: 1, SlotID: 9})
	var vErr *api.ValidationError
	if !errors.As(err, &vErr) || vErr.Message != "Selected slot is invalid" {
		t.Fatalf("expected stale-slot rejection, got %v", err)
	}
	if store.count() != 0 {
		t.Fatal("stale slot must not reach the server")
	}
}

func TestSubmitRequiresManualFields(t *testing.T) {
	c := NewCoordinator(&fakeStore{}, &fakeSlots{}, 42, nil)

	_, err := c.Submit(context.Background(), Request{ProviderID: 1, Date: "2026-03-01"})
	var vErr *api.ValidationError
	if !errors.As(err, &vErr) || vErr.Message != "Please fill in date and time or select from available slots" {
		t.Fatalf("expected missing-fields rejection, got %v", err)
	}
}

func TestSubmitRejectsMalformedManualEntry(t *testing.T) {
	c := NewCoordinator(&fakeStore{}, &fakeSlots{}, 42, nil)

	_, err := c.Submit(context.Background(), Request{ProviderID: 1, Date: "03/01/2026", Time: "10am"})
	var vErr *api.ValidationError
	if !errors.As(err, &vErr) || vErr.Message != "Invalid date or time format" {
		t.Fatalf("expected format rejection, got %v", err)
	}
}

func TestSubmitSelectedSlotSucceeds(t *testing.T) {
	start := time.Now().Add(2 * time.Hour).Truncate(time.Second)
	store := &fakeStore{}
	slots := &fakeSlots{slots: []api.AvailabilityWindow{
		{ID: 7, ProviderID: 3, StartTime: start},
	}}

	var booked []api.Appointment
	c := NewCoordinator(store, slots, 42, nil,
		WithBookedListener(func(a api.Appointment) { booked = append(booked, a) }),
		withNow(func() time.Time { return time.UnixMilli(1767225600000) }),
	)

	appt, err := c.Submit(context.Background(), Request{ProviderID: 3, SlotID: 7, ConsultationType: "virtual"})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if appt.AppointmentID != "APT-1767225600000" {
		t.Fatalf("appointment id = %q", appt.AppointmentID)
	}
	if !appt.DateTime.Equal(start) {
		t.Fatalf("date_time = %v, want slot start %v", appt.DateTime, start)
	}
	if state, _ := c.State(); state != Succeeded {
		t.Fatalf("state = %v, want Succeeded", state)
	}
	if len(booked) != 1 {
		t.Fatalf("booked listener called %d times, want 1", len(booked))
	}
}

func TestSubmitSurfacesServerRejection(t *testing.T) {
	store := &fakeStore{err: &api.StoreError{Status: 404, Message: "Provider not found"}}
	c := NewCoordinator(store, &fakeSlots{}, 42, nil)

	_, err := c.Submit(context.Background(), Request{ProviderID: 1, Date: "2026-03-01", Time: "10:00"})
	var storeErr *api.StoreError
	if !errors.As(err, &storeErr) || storeErr.Message != "Provider not found" {
		t.Fatalf("server message must surface verbatim, got %v", err)
	}
	state, reason := c.State()
	if state != Failed || reason != "Provider not found" {
		t.Fatalf("state = %v reason = %q", state, reason)
	}
}

func TestDoubleSubmitRejected(t *testing.T) {
	store := &fakeStore{block: make(chan struct{})}
	c := NewCoordinator(store, &fakeSlots{}, 42, nil)

	firstDone := make(chan error, 1)
	go func() {
		_, err := c.Submit(context.Background(), Request{ProviderID: 1, Date: "2026-03-01", Time: "10:00"})
		firstDone <- err
	}()

	// Wait until the first submission is holding the server call.
	deadline := time.After(2 * time.Second)
	for {
		if state, _ := c.State(); state == Submitting {
			break
		}
		select {
		case <-deadline:
			t.Fatal("first submission never reached Submitting")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	_, err := c.Submit(context.Background(), Request{ProviderID: 1, Date: "2026-03-01", Time: "11:00"})
	var vErr *api.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected in-progress rejection, got %v", err)
	}

	close(store.block)
	if err := <-firstDone; err != nil {
		t.Fatalf("first submission failed: %v", err)
	}
	if store.count() != 1 {
		t.Fatalf("server saw %d submissions, want 1", store.count())
	}
}

func TestResetReturnsToIdle(t *testing.T) {
	c := NewCoordinator(&fakeStore{}, &fakeSlots{}, 0, nil)
	_, _ = c.Submit(context.Background(), Request{ProviderID: 1, Date: "2026-03-01", Time: "10:00"})
	if state, _ := c.State(); state != Failed {
		t.Fatalf("state = %v, want Failed", state)
	}
	c.Reset()
	if state, reason := c.State(); state != Idle || reason != "" {
		t.Fatalf("state = %v reason = %q after reset", state, reason)
	}
}
