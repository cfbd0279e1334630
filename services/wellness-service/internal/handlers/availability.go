package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/sharif-mahmud/wellpoint/services/wellness-service/internal/model"
	"github.com/sharif-mahmud/wellpoint/services/wellness-service/internal/outbox"
	"github.com/sharif-mahmud/wellpoint/services/wellness-service/internal/schedule"
	"github.com/sharif-mahmud/wellpoint/services/wellness-service/internal/storage"
)

type AvailabilityHandler struct {
	availability *storage.AvailabilityRepository
	providers    *storage.ProviderRepository
	outbox       *outbox.Repository
	logger       *slog.Logger
}

func NewAvailabilityHandler(
	availabilityRepo *storage.AvailabilityRepository,
	providers *storage.ProviderRepository,
	outboxRepo *outbox.Repository,
	logger *slog.Logger,
) *AvailabilityHandler {
	return &AvailabilityHandler{
		availability: availabilityRepo,
		providers:    providers,
		outbox:       outboxRepo,
		logger:       logger,
	}
}

type createAvailabilityRequest struct {
	ProviderID int64  `json:"provider_id"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
}

type availabilityItem struct {
	ID         int64     `json:"id"`
	ProviderID int64     `json:"provider_id"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
	IsBooked   bool      `json:"is_booked"`
	CreatedAt  time.Time `json:"created_at"`
}

type availableSlotItem struct {
	availabilityItem
	ProviderName string `json:"name"`
	Specialty    string `json:"specialty"`
}

func (h *AvailabilityHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createAvailabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if req.ProviderID <= 0 {
		writeDetail(w, http.StatusBadRequest, "provider_id required")
		return
	}

	start, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid date or time format")
		return
	}
	end, err := time.Parse(time.RFC3339, req.EndTime)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid date or time format")
		return
	}
	if err := schedule.ValidateWindow(start, end); err != nil {
		if errors.Is(err, schedule.ErrEndNotAfterStart) {
			writeDetail(w, http.StatusBadRequest, "End time must be later than start time")
			return
		}
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()
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

	tx, err := h.availability.Begin(ctx)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "db error")
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	window := &model.ProviderAvailability{
		ProviderID: req.ProviderID,
		StartTime:  start,
		EndTime:    end,
	}
	if err := h.availability.CreateTx(ctx, tx, window); err != nil {
		h.logger.Error("availability create failed", "err", err)
		writeDetail(w, http.StatusInternalServerError, "failed to create availability")
		return
	}

	evt, err := outbox.AvailabilityCreated(*window)
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

	writeJSON(w, http.StatusCreated, toAvailabilityItem(*window))
}

func (h *AvailabilityHandler) ListByProvider(w http.ResponseWriter, r *http.Request) {
	providerID, ok := providerIDFromPath(w, r)
	if !ok {
		return
	}
	windows, err := h.availability.ListByProvider(r.Context(), providerID)
	if err != nil {
		h.logger.Error("availability list failed", "err", err)
		writeDetail(w, http.StatusInternalServerError, "failed to list availability")
		return
	}
	writeJSON(w, http.StatusOK, toAvailabilityItems(windows))
}

// OpenByProvider returns unbooked windows that have not yet ended. Clients
// re-filter on start_time for strictly future slots.
func (h *AvailabilityHandler) OpenByProvider(w http.ResponseWriter, r *http.Request) {
	providerID, ok := providerIDFromPath(w, r)
	if !ok {
		return
	}
	windows, err := h.availability.ListOpenByProvider(r.Context(), providerID, time.Now().UTC())
	if err != nil {
		h.logger.Error("open availability list failed", "err", err)
		writeDetail(w, http.StatusInternalServerError, "failed to list availability")
		return
	}
	writeJSON(w, http.StatusOK, toAvailabilityItems(windows))
}

func (h *AvailabilityHandler) AllOpen(w http.ResponseWriter, r *http.Request) {
	slots, err := h.availability.ListAllOpen(r.Context(), time.Now().UTC())
	if err != nil {
		h.logger.Error("cross-provider slot list failed", "err", err)
		writeDetail(w, http.StatusInternalServerError, "failed to list availability")
		return
	}

	items := make([]availableSlotItem, 0, len(slots))
	for _, s := range slots {
		items = append(items, availableSlotItem{
			availabilityItem: toAvailabilityItem(s.ProviderAvailability),
			ProviderName:     s.ProviderName,
			Specialty:        s.Specialty,
		})
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *AvailabilityHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid availability id")
		return
	}

	ctx := r.Context()
	window, err := h.availability.GetByID(ctx, id)
	if err != nil {
		if storage.IsNotFound(err) {
			writeDetail(w, http.StatusNotFound, "Availability not found")
			return
		}
		h.logger.Error("availability lookup failed", "err", err)
		writeDetail(w, http.StatusInternalServerError, "failed to load availability")
		return
	}
	if window.IsBooked {
		writeDetail(w, http.StatusConflict, "Cannot delete a booked availability window")
		return
	}

	if err := h.availability.Delete(ctx, id); err != nil {
		if storage.IsNotFound(err) {
			writeDetail(w, http.StatusNotFound, "Availability not found")
			return
		}
		h.logger.Error("availability delete failed", "err", err)
		writeDetail(w, http.StatusInternalServerError, "failed to delete availability")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func providerIDFromPath(w http.ResponseWriter, r *http.Request) (int64, bool) {
	providerID, err := strconv.ParseInt(r.PathValue("provider_id"), 10, 64)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid provider id")
		return 0, false
	}
	return providerID, true
}

func toAvailabilityItem(a model.ProviderAvailability) availabilityItem {
	return availabilityItem{
		ID:         a.ID,
		ProviderID: a.ProviderID,
		StartTime:  a.StartTime,
		EndTime:    a.EndTime,
		IsBooked:   a.IsBooked,
		CreatedAt:  a.CreatedAt,
	}
}

func toAvailabilityItems(windows []model.ProviderAvailability) []availabilityItem {
	items := make([]availabilityItem, 0, len(windows))
	for _, w := range windows {
		items = append(items, toAvailabilityItem(w))
	}
	return items
}
