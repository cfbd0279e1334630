package booking

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/sharif-mahmud/wellpoint/clients/portal/internal/api"
	"github.com/sharif-mahmud/wellpoint/clients/portal/internal/ops"
)

// State of the booking flow. Exactly one submission moves through
// Validating and Submitting at a time.
type State int

const (
	Idle State = iota
	Validating
	Submitting
	Succeeded
	Failed
)

func (s State) String() string {
	switch s {
	case Validating:
		return "validating"
	case Submitting:
		return "submitting"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "idle"
	}
}

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"

	opBook = "appointment.book"
)

// Store is the slice of the wellness API the coordinator needs.
type Store interface {
	CreateAppointment(ctx context.Context, userID int64, req api.CreateAppointmentRequest) (api.Appointment, error)
}

// SlotSource supplies the currently bookable slots used to validate slot
// selections at submit time.
type SlotSource interface {
	SlotsForProvider(ctx context.Context, providerID int64) ([]api.AvailabilityWindow, error)
}

// Request describes one booking attempt. Either SlotID refers to a currently
// open slot, or Date and Time carry a manual entry.
type Request struct {
	ProviderID       int64
	SlotID           int64
	Date             string
	Time             string
	ConsultationType string
	Notes            string
}

// Coordinator drives a booking from validation through submission. A second
// Submit while one is in flight is rejected without touching the server.
type Coordinator struct {
	store   Store
	slots   SlotSource
	tracker *ops.Tracker

	mu     sync.Mutex
	state  State
	reason string

	userID   int64
	onBooked func(api.Appointment)
	now      func() time.Time
}

type Option func(*Coordinator)

// WithBookedListener registers a callback invoked after a successful booking,
// typically to refresh slot and appointment views. The confirmed record comes
// from the server, never from a local splice.
func WithBookedListener(fn func(api.Appointment)) Option {
	return func(c *Coordinator) { c.onBooked = fn }
}

func withNow(fn func() time.Time) Option {
	return func(c *Coordinator) { c.now = fn }
}

func NewCoordinator(store Store, slots SlotSource, userID int64, tracker *ops.Tracker, opts ...Option) *Coordinator {
	c := &Coordinator{
		store:   store,
		slots:   slots,
		tracker: tracker,
		userID:  userID,
		now:     time.Now,
	}
	if c.tracker == nil {
		c.tracker = ops.NewTracker()
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State reports the current phase and, for Failed, the reason.
func (c *Coordinator) State() (State, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state, c.reason
}

// Reset returns a finished coordinator to Idle for the next attempt.
func (c *Coordinator) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Succeeded || c.state == Failed {
		c.state = Idle
		c.reason = ""
	}
}

// Submit validates the request and creates the appointment. Validation
// failures leave the flow in Failed without any server call; a submission
// already in flight is rejected outright.
func (c *Coordinator) Submit(ctx context.Context, req Request) (api.Appointment, error) {
	c.mu.Lock()
	if c.state == Validating || c.state == Submitting {
		c.mu.Unlock()
		return api.Appointment{}, &api.ValidationError{Message: "A booking is already in progress"}
	}
	c.state = Validating
	c.reason = ""
	c.mu.Unlock()

	dateTime, err := c.validate(ctx, req)
	if err != nil {
		c.fail(err)
		return api.Appointment{}, err
	}

	c.setState(Submitting)
	c.tracker.Begin(opBook)

	appt, err := c.store.CreateAppointment(ctx, c.userID, api.CreateAppointmentRequest{
		AppointmentID:    "APT-" + strconv.FormatInt(c.now().UnixMilli(), 10),
		ProviderID:       req.ProviderID,
		DateTime:         dateTime.Format(time.RFC3339),
		ConsultationType: req.ConsultationType,
		Notes:            req.Notes,
	})
	if err != nil {
		c.tracker.Fail(opBook, err.Error())
		c.fail(err)
		return api.Appointment{}, err
	}
	c.tracker.Succeed(opBook)
	c.setState(Succeeded)

	if c.onBooked != nil {
		c.onBooked(appt)
	}
	return appt, nil
}

func (c *Coordinator) validate(ctx context.Context, req Request) (time.Time, error) {
	if c.userID <= 0 {
		return time.Time{}, api.ErrAuthRequired
	}
	if req.ProviderID <= 0 {
		return time.Time{}, &api.ValidationError{Message: "Please select a provider"}
	}

	if req.SlotID > 0 {
		slots, err := c.slots.SlotsForProvider(ctx, req.ProviderID)
		if err != nil {
			return time.Time{}, err
		}
		for _, s := range slots {
			if s.ID == req.SlotID {
				return s.StartTime, nil
			}
		}
		return time.Time{}, &api.ValidationError{Message: "Selected slot is invalid"}
	}

	if req.Date == "" || req.Time == "" {
		return time.Time{}, &api.ValidationError{Message: "Please fill in date and time or select from available slots"}
	}
	dateTime, err := time.ParseInLocation(dateLayout+" "+timeLayout, req.Date+" "+req.Time, time.Local)
	if err != nil {
		return time.Time{}, &api.ValidationError{Message: "Invalid date or time format"}
	}
	return dateTime, nil
}

func (c *Coordinator) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

func (c *Coordinator) fail(err error) {
	c.mu.Lock()
	c.state = Failed
	c.reason = err.Error()
	c.mu.Unlock()
}
