package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Client talks to the wellness API. It is safe for concurrent use.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

type Option func(*Client)

func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout:   15 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetToken swaps the bearer token, e.g. after login.
func (c *Client) SetToken(token string) { c.token = token }

func (c *Client) HasToken() bool { return c.token != "" }

// Token returns the current bearer token, empty when signed out.
func (c *Client) Token() string { return c.token }

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	UserID      int64  `json:"user_id"`
}

func (c *Client) Login(ctx context.Context, healthID, password string) (int64, error) {
	var resp tokenResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", nil, map[string]string{
		"health_id": healthID,
		"password":  password,
	}, &resp)
	if err != nil {
		return 0, err
	}
	c.token = resp.AccessToken
	return resp.UserID, nil
}

func (c *Client) Register(ctx context.Context, healthID, name, phone, password string) (int64, error) {
	var resp tokenResponse
	err := c.do(ctx, http.MethodPost, "/auth/register", nil, map[string]string{
		"health_id":    healthID,
		"name":         name,
		"phone_number": phone,
		"password":     password,
	}, &resp)
	if err != nil {
		return 0, err
	}
	c.token = resp.AccessToken
	return resp.UserID, nil
}

func (c *Client) CreateAvailability(ctx context.Context, req CreateAvailabilityRequest) (AvailabilityWindow, error) {
	var out AvailabilityWindow
	err := c.do(ctx, http.MethodPost, "/providers-availability/", nil, req, &out)
	return out, err
}

func (c *Client) ListAvailability(ctx context.Context, providerID int64) ([]AvailabilityWindow, error) {
	var out []AvailabilityWindow
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/providers-availability/%d", providerID), nil, nil, &out)
	return out, err
}

func (c *Client) AvailableSlots(ctx context.Context, providerID int64) ([]AvailabilityWindow, error) {
	var out []AvailabilityWindow
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/providers-availability/%d/available", providerID), nil, nil, &out)
	return out, err
}

func (c *Client) AllAvailableSlots(ctx context.Context) ([]AvailableSlot, error) {
	var out []AvailableSlot
	err := c.do(ctx, http.MethodGet, "/providers-availability/all/available", nil, nil, &out)
	return out, err
}

func (c *Client) DeleteAvailability(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/providers-availability/%d", id), nil, nil, nil)
}

func (c *Client) CreateAppointment(ctx context.Context, userID int64, req CreateAppointmentRequest) (Appointment, error) {
	var out Appointment
	query := url.Values{"user_id": {fmt.Sprintf("%d", userID)}}
	err := c.do(ctx, http.MethodPost, "/appointments/", query, req, &out)
	return out, err
}

func (c *Client) ListUserAppointments(ctx context.Context, userID int64) ([]Appointment, error) {
	var out []Appointment
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/appointments/user/%d", userID), nil, nil, &out)
	return out, err
}

func (c *Client) CancelAppointment(ctx context.Context, id int64, reason string) (Appointment, error) {
	var out Appointment
	err := c.do(ctx, http.MethodPut, fmt.Sprintf("/appointments/%d/cancel", id), nil, map[string]string{
		"reason": reason,
	}, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return newStoreError(resp.StatusCode, raw)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
