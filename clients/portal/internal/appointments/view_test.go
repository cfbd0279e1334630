package appointments

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sharif-mahmud/wellpoint/clients/portal/internal/api"
)

type fakeStore struct {
	appts     []api.Appointment
	cancelErr error
	cancelled []int64
}

func (f *fakeStore) ListUserAppointments(context.Context, int64) ([]api.Appointment, error) {
	return append([]api.Appointment(nil), f.appts...), nil
}

func (f *fakeStore) CancelAppointment(_ context.Context, id int64, reason string) (api.Appointment, error) {
	if f.cancelErr != nil {
		return api.Appointment{}, f.cancelErr
	}
	f.cancelled = append(f.cancelled, id)
	for _, a := range f.appts {
		if a.ID == id {
			a.Cancelled = true
			a.CancellationReason = reason
			return a, nil
		}
	}
	return api.Appointment{}, &api.StoreError{Status: 404, Message: "Appointment not found or already cancelled"}
}

func TestStatusDerivation(t *testing.T) {
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		name string
		appt api.Appointment
		want string
	}{
		{"future", api.Appointment{DateTime: now.Add(time.Hour)}, StatusUpcoming},
		{"past", api.Appointment{DateTime: now.Add(-time.Hour)}, StatusCompleted},
		{"exactly now", api.Appointment{DateTime: now}, StatusCompleted},
		{"cancelled future", api.Appointment{DateTime: now.Add(time.Hour), Cancelled: true}, StatusCancelled},
		// Cancellation outlives the appointment date.
		{"cancelled past", api.Appointment{DateTime: now.Add(-time.Hour), Cancelled: true}, StatusCancelled},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Status(tc.appt, now); got != tc.want {
				t.Fatalf("Status = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestCancelFlipsOnlyAfterConfirmation(t *testing.T) {
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	store := &fakeStore{appts: []api.Appointment{
		{ID: 1, DateTime: now.Add(time.Hour)},
	}}
	v := NewView(store, 42, nil, withNow(func() time.Time { return now }))
	if err := v.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}

	if err := v.Cancel(context.Background(), 1, "schedule conflict"); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	got := v.Appointments()
	if !got[0].Cancelled || got[0].CancellationReason != "schedule conflict" {
		t.Fatalf("cached record not updated from confirmation: %+v", got[0])
	}
}

func TestCancelFailureLeavesCacheUntouched(t *testing.T) {
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	store := &fakeStore{
		appts:     []api.Appointment{{ID: 1, DateTime: now.Add(time.Hour)}},
		cancelErr: &api.NetworkError{Err: errors.New("connection reset")},
	}
	v := NewView(store, 42, nil, withNow(func() time.Time { return now }))
	if err := v.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}

	err := v.Cancel(context.Background(), 1, "nope")
	var netErr *api.NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("expected NetworkError, got %v", err)
	}
	if v.Appointments()[0].Cancelled {
		t.Fatal("failed cancel must not flip the cached record")
	}
}

func TestCancelRejectsNonUpcoming(t *testing.T) {
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	store := &fakeStore{appts: []api.Appointment{
		{ID: 1, DateTime: now.Add(-time.Hour)},                  // completed
		{ID: 2, DateTime: now.Add(time.Hour), Cancelled: true},  // cancelled
	}}
	v := NewView(store, 42, nil, withNow(func() time.Time { return now }))
	if err := v.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}

	var vErr *api.ValidationError
	if err := v.Cancel(context.Background(), 1, "too late"); !errors.As(err, &vErr) {
		t.Fatalf("completed appointment cancel should be rejected locally, got %v", err)
	}
	if err := v.Cancel(context.Background(), 2, "again"); !errors.As(err, &vErr) {
		t.Fatalf("cancelled appointment cancel should be rejected locally, got %v", err)
	}
	if err := v.Cancel(context.Background(), 99, "ghost"); !errors.As(err, &vErr) {
		t.Fatalf("unknown appointment cancel should be rejected locally, got %v", err)
	}
	if len(store.cancelled) != 0 {
		t.Fatalf("server saw %d cancels, want 0", len(store.cancelled))
	}
}

func TestSearchIsCaseInsensitiveAndIdempotent(t *testing.T) {
	store := &fakeStore{appts: []api.Appointment{
		{ID: 1, ProviderID: 10, ConsultationType: "virtual"},
		{ID: 2, ProviderID: 11, ConsultationType: "in-person", Notes: "follow-up bloodwork"},
	}}
	names := map[int64]string{10: "Dr. Rahman", 11: "Dr. Akter"}
	v := NewView(store, 42, nil, WithProviderNames(func(id int64) string { return names[id] }))
	if err := v.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}

	if got := v.Search("RAHMAN"); len(got) != 1 || got[0].ID != 1 {
		t.Fatalf("provider name search failed: %+v", got)
	}
	if got := v.Search("bloodwork"); len(got) != 1 || got[0].ID != 2 {
		t.Fatalf("notes search failed: %+v", got)
	}
	// Searching filters a snapshot; the cached list itself is untouched.
	if got := v.Search(""); len(got) != 2 {
		t.Fatalf("empty query should return the full list, got %d", len(got))
	}
	if got := v.Search("rahman"); len(got) != 1 {
		t.Fatalf("repeat search should give the same result, got %d", len(got))
	}
}
