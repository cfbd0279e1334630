package outbox

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/sharif-mahmud/wellpoint/services/wellness-service/internal/model"
)

// Topic per event type; the Kafka topic name equals EventType.
const (
	EventAppointmentBooked    = "wellness.appointment.booked.v1"
	EventAppointmentCancelled = "wellness.appointment.cancelled.v1"
	EventAvailabilityCreated  = "wellness.availability.created.v1"
)

// Event is the domain event envelope written to the outbox table.
type Event struct {
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

type appointmentPayload struct {
	AppointmentID      string    `json:"appointment_id"`
	UserID             int64     `json:"user_id"`
	ProviderID         int64     `json:"provider_id"`
	DateTime           time.Time `json:"date_time"`
	ConsultationType   string    `json:"consultation_type"`
	CancellationReason string    `json:"cancellation_reason,omitempty"`
}

func AppointmentBooked(a model.Appointment) (Event, error) {
	payload, err := json.Marshal(appointmentPayload{
		AppointmentID:    a.AppointmentID,
		UserID:           a.UserID,
		ProviderID:       a.ProviderID,
		DateTime:         a.DateTime,
		ConsultationType: a.ConsultationType,
	})
	if err != nil {
		return Event{}, err
	}
	return Event{
		AggregateType: "appointment",
		AggregateID:   a.AppointmentID,
		EventType:     EventAppointmentBooked,
		Payload:       payload,
	}, nil
}

func AppointmentCancelled(a model.Appointment, reason string) (Event, error) {
	payload, err := json.Marshal(appointmentPayload{
		AppointmentID:      a.AppointmentID,
		UserID:             a.UserID,
		ProviderID:         a.ProviderID,
		DateTime:           a.DateTime,
		ConsultationType:   a.ConsultationType,
		CancellationReason: reason,
	})
	if err != nil {
		return Event{}, err
	}
	return Event{
		AggregateType: "appointment",
		AggregateID:   a.AppointmentID,
		EventType:     EventAppointmentCancelled,
		Payload:       payload,
	}, nil
}

func AvailabilityCreated(a model.ProviderAvailability) (Event, error) {
	payload, err := json.Marshal(struct {
		ID         int64     `json:"id"`
		ProviderID int64     `json:"provider_id"`
		StartTime  time.Time `json:"start_time"`
		EndTime    time.Time `json:"end_time"`
	}{a.ID, a.ProviderID, a.StartTime, a.EndTime})
	if err != nil {
		return Event{}, err
	}
	return Event{
		AggregateType: "provider_availability",
		AggregateID:   strconv.FormatInt(a.ProviderID, 10),
		EventType:     EventAvailabilityCreated,
		Payload:       payload,
	}, nil
}
