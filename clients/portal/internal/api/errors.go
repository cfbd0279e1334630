package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrAuthRequired is returned when an operation needs a signed-in user and no
// token is configured.
var ErrAuthRequired = errors.New("authentication required")

// ValidationError is a local pre-flight rejection. Nothing was sent to the
// server when one of these comes back.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// StoreError is a non-2xx response from the wellness API with the
// human-readable message extracted from the body.
type StoreError struct {
	Status  int
	Message string
}

func (e *StoreError) Error() string { return e.Message }

// NetworkError wraps a transport failure; no HTTP status was received.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string { return "network error: " + e.Err.Error() }
func (e *NetworkError) Unwrap() error { return e.Err }

// newStoreError extracts a message from an error body, trying the keys the
// API emits in order: detail, then message, then error. Unparseable bodies
// fall back to a generic status line.
func newStoreError(status int, body []byte) *StoreError {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err == nil {
		for _, key := range []string{"detail", "message", "error"} {
			raw, ok := payload[key]
			if !ok {
				continue
			}
			var msg string
			if err := json.Unmarshal(raw, &msg); err == nil && strings.TrimSpace(msg) != "" {
				return &StoreError{Status: status, Message: msg}
			}
		}
	}
	return &StoreError{Status: status, Message: fmt.Sprintf("HTTP %d: %s", status, strings.TrimSpace(string(body)))}
}
