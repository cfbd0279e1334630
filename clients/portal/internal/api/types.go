package api

import "time"

type AvailabilityWindow struct {
	ID         int64     `json:"id"`
	ProviderID int64     `json:"provider_id"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
	IsBooked   bool      `json:"is_booked"`
	CreatedAt  time.Time `json:"created_at"`
}

// AvailableSlot is a window enriched with the owning provider's identity,
// returned by the cross-provider discovery endpoint.
type AvailableSlot struct {
	AvailabilityWindow
	ProviderName string `json:"name"`
	Specialty    string `json:"specialty"`
}

type Appointment struct {
	ID                 int64     `json:"id"`
	AppointmentID      string    `json:"appointment_id"`
	UserID             int64     `json:"user_id"`
	ProviderID         int64     `json:"provider_id"`
	DateTime           time.Time `json:"date_time"`
	ConsultationType   string    `json:"consultation_type"`
	Notes              string    `json:"notes,omitempty"`
	Cancelled          bool      `json:"cancelled"`
	CancellationReason string    `json:"cancellation_reason,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
}

type CreateAvailabilityRequest struct {
	ProviderID int64  `json:"provider_id"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
}

type CreateAppointmentRequest struct {
	AppointmentID    string `json:"appointment_id,omitempty"`
	ProviderID       int64  `json:"provider_id"`
	DateTime         string `json:"date_time"`
	ConsultationType string `json:"consultation_type"`
	Notes            string `json:"notes,omitempty"`
}
