package model

import "time"

type User struct {
	ID            int64
	HealthID      string
	Name          string
	PhoneNumber   string
	PhoneVerified bool
	PasswordHash  string
	CreatedAt     time.Time
}

type Provider struct {
	ID            int64
	LicenseNumber string
	Name          string
	Specialty     string
	Verified      bool
	CreatedAt     time.Time
}

// ProviderAvailability is a bookable time window offered by a provider.
// A window is consumed (is_booked flips true) when an appointment lands on
// its start time, and may only be deleted while unbooked.
type ProviderAvailability struct {
	ID         int64
	ProviderID int64
	StartTime  time.Time
	EndTime    time.Time
	IsBooked   bool
	CreatedAt  time.Time
}

// AvailableSlot is an availability window enriched with provider identity
// for cross-provider discovery.
type AvailableSlot struct {
	ProviderAvailability
	ProviderName string
	Specialty    string
}

type Appointment struct {
	ID                 int64
	AppointmentID      string // client-generated opaque token, e.g. "APT-..."
	UserID             int64
	ProviderID         int64
	DateTime           time.Time
	ConsultationType   string // "in-person", "virtual" or "general"
	Notes              string
	Cancelled          bool
	CancellationReason string
	CreatedAt          time.Time
}
