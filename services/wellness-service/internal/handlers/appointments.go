package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sharif-mahmud/wellpoint/services/wellness-service/internal/model"
	"github.com/sharif-mahmud/wellpoint/services/wellness-service/internal/outbox"
	"github.com/sharif-mahmud/wellpoint/services/wellness-service/internal/storage"
)

type AppointmentHandler struct {
	appointments *storage.AppointmentRepository
	users        *storage.UserRepository
	providers    *storage.ProviderRepository
	outbox       *outbox.Repository
	logger       *slog.Logger
}

func NewAppointmentHandler(
	appointments *storage.AppointmentRepository,
	users *storage.UserRepository,
	providers *storage.ProviderRepository,
	outboxRepo *outbox.Repository,
	logger *slog.Logger,
) *AppointmentHandler {
	return &AppointmentHandler{
		appointments: appointments,
		users:        users,
		providers:    providers,
		outbox:       outboxRepo,
		logger:       logger,
	}
}

type createAppointmentRequest struct {
	AppointmentID    string `json:"appointment_id"`
	ProviderID       int64  `json:"provider_id"`
	DateTime         string `json:"date_time"`
	ConsultationType string `json:"consultation_type"`
	Notes            string `json:"notes"`
}

type cancelAppointmentRequest struct {
	Reason string `json:"reason"`
}

type appointmentItem struct {
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

func (h *AppointmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(strings.TrimSpace(r.URL.Query().Get("user_id")), 10, 64)
	if err != nil || userID <= 0 {
		writeDetail(w, http.StatusBadRequest, "user_id query parameter required")
		return
	}

	var req createAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if req.ProviderID <= 0 {
		writeDetail(w, http.StatusBadRequest, "provider_id required")
		return
	}
	dateTime, err := time.Parse(time.RFC3339, req.DateTime)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid date or time format")
		return
	}
	consultationType := strings.TrimSpace(req.ConsultationType)
	if consultationType == "" {
		consultationType = "general"
	}
	appointmentID := strings.TrimSpace(req.AppointmentID)
	if appointmentID == "" {
		appointmentID = "APT-" + uuid.NewString()
	}

	ctx := r.Context()
	if _, err := h.users.GetByID(ctx, userID); err != nil {
		if storage.IsNotFound(err) {
			writeDetail(w, http.StatusNotFound, "User not found")
			return
		}
		h.logger.Error("user lookup failed", "err", err)
		writeDetail(w, http.StatusInternalServerError, "failed to lookup user")
		return
	}
	exists, err := h.providers.Exists(ctx, req.ProviderID)
	if err != nil {
		h.logger.Error("provider check failed", "err", err)
		writeDetail(w, http.StatusInternalServerError, "failed to check provider")
		return
	}
	if !exists {
		writeDetail(w, http.StatusNotFound, "Provider not found")
		return
	}

	tx, err := h.appointments.Begin(ctx)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "db error")
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Claim the matching availability window when one exists. Manual bookings
	// outside any published window are accepted without claiming one.
	if _, err := storage.MarkBookedAt(ctx, tx, req.ProviderID, dateTime); err != nil {
		h.logger.Error("window claim failed", "err", err)
		writeDetail(w, http.StatusInternalServerError, "failed to reserve slot")
		return
	}

	appt := &model.Appointment{
		AppointmentID:    appointmentID,
		UserID:           userID,
		ProviderID:       req.ProviderID,
		DateTime:         dateTime,
		ConsultationType: consultationType,
		Notes:            strings.TrimSpace(req.Notes),
	}
	if err := h.appointments.CreateTx(ctx, tx, appt); err != nil {
		if storage.IsUniqueViolation(err) {
			writeDetail(w, http.StatusConflict, "Appointment already exists")
			return
		}
		h.logger.Error("appointment create failed", "err", err)
		writeDetail(w, http.StatusInternalServerError, "failed to create appointment")
		return
	}

	evt, err := outbox.AppointmentBooked(*appt)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "failed to build event")
		return
	}
	if err := h.outbox.Insert(ctx, tx, evt); err != nil {
		writeDetail(w, http.StatusInternalServerError, "failed to write outbox event")
		return
	}
	if err := tx.Commit(ctx); err != nil {
		writeDetail(w, http.StatusInternalServerError, "failed to commit")
		return
	}

	writeJSON(w, http.StatusCreated, toAppointmentItem(*appt))
}

func (h *AppointmentHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(r.PathValue("user_id"), 10, 64)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid user id")
		return
	}
	appts, err := h.appointments.ListByUser(r.Context(), userID)
	if err != nil {
		h.logger.Error("appointment list failed", "err", err)
		writeDetail(w, http.StatusInternalServerError, "failed to list appointments")
		return
	}

	items := make([]appointmentItem, 0, len(appts))
	for _, a := range appts {
		items = append(items, toAppointmentItem(a))
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *AppointmentHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid appointment id")
		return
	}

	var req cancelAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid json body")
		return
	}
	reason := strings.TrimSpace(req.Reason)

	ctx := r.Context()
	tx, err := h.appointments.Begin(ctx)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "db error")
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	appt, err := h.appointments.GetActiveForUpdate(ctx, tx, id)
	if err != nil {
		if storage.IsNotFound(err) {
			writeDetail(w, http.StatusNotFound, "Appointment not found or already cancelled")
			return
		}
		h.logger.Error("appointment lookup failed", "err", err)
		writeDetail(w, http.StatusInternalServerError, "failed to load appointment")
		return
	}
	if appt.DateTime.Before(time.Now()) {
		writeDetail(w, http.StatusConflict, "Cannot cancel a past appointment")
		return
	}

	if err := h.appointments.CancelTx(ctx, tx, id, reason); err != nil {
		if storage.IsNotFound(err) {
			writeDetail(w, http.StatusNotFound, "Appointment not found or already cancelled")
			return
		}
		h.logger.Error("appointment cancel failed", "err", err)
		writeDetail(w, http.StatusInternalServerError, "failed to cancel appointment")
		return
	}

	evt, err := outbox.AppointmentCancelled(appt, reason)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "failed to build event")
		return
	}
	if err := h.outbox.Insert(ctx, tx, evt); err != nil {
		writeDetail(w, http.StatusInternalServerError, "failed to write outbox event")
		return
	}
	if err := tx.Commit(ctx); err != nil {
		writeDetail(w, http.StatusInternalServerError, "failed to commit")
		return
	}

	appt.Cancelled = true
	appt.CancellationReason = reason
	writeJSON(w, http.StatusOK, toAppointmentItem(appt))
}

func toAppointmentItem(a model.Appointment) appointmentItem {
	return appointmentItem{
		ID:                 a.ID,
		AppointmentID:      a.AppointmentID,
		UserID:             a.UserID,
		ProviderID:         a.ProviderID,
		DateTime:           a.DateTime,
		ConsultationType:   a.ConsultationType,
		Notes:              a.Notes,
		Cancelled:          a.Cancelled,
		CancellationReason: a.CancellationReason,
		CreatedAt:          a.CreatedAt,
	}
}
