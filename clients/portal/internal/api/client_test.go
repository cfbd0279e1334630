package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestErrorMessageExtractionOrder(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"detail wins", `{"detail":"Provider not found","message":"nope"}`, "Provider not found"},
		{"message next", `{"message":"slot taken"}`, "slot taken"},
		{"error last", `{"error":"boom"}`, "boom"},
		{"fallback", `not json at all`, "HTTP 404: not json at all"},
		{"empty detail skipped", `{"detail":"","message":"real reason"}`, "real reason"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			client := NewClient(srv.URL)
			_, err := client.ListAvailability(context.Background(), 1)

			var storeErr *StoreError
			if !errors.As(err, &storeErr) {
				t.Fatalf("expected StoreError, got %v", err)
			}
			if storeErr.Status != http.StatusNotFound {
				t.Fatalf("status = %d, want 404", storeErr.Status)
			}
			if storeErr.Message != tc.want {
				t.Fatalf("message = %q, want %q", storeErr.Message, tc.want)
			}
		})
	}
}

func TestNetworkErrorWrapsTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	client := NewClient(srv.URL)
	_, err := client.AllAvailableSlots(context.Background())

	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("expected NetworkError, got %v", err)
	}
	if netErr.Unwrap() == nil {
		t.Fatal("NetworkError must carry the underlying cause")
	}
}

func TestBearerTokenAttached(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, WithToken("tok-123"))
	if _, err := client.ListUserAppointments(context.Background(), 7); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotAuth != "Bearer tok-123" {
		t.Fatalf("Authorization = %q", gotAuth)
	}
}

func TestDeleteAvailabilityNoContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("method = %s", r.Method)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	if err := client.DeleteAvailability(context.Background(), 42); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
