package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sharif-mahmud/wellpoint/services/wellness-service/internal/model"
	"github.com/sharif-mahmud/wellpoint/services/wellness-service/internal/storage"
)

type ProviderHandler struct {
	providers *storage.ProviderRepository
	logger    *slog.Logger
}

func NewProviderHandler(providers *storage.ProviderRepository, logger *slog.Logger) *ProviderHandler {
	return &ProviderHandler{providers: providers, logger: logger}
}

type createProviderRequest struct {
	LicenseNumber string `json:"license_number"`
	Name          string `json:"name"`
	Specialty     string `json:"specialty"`
}

type providerItem struct {
	ID            int64     `json:"id"`
	LicenseNumber string    `json:"license_number"`
	Name          string    `json:"name"`
	Specialty     string    `json:"specialty"`
	Verified      bool      `json:"verified"`
	CreatedAt     time.Time `json:"created_at"`
}

func (h *ProviderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createProviderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid json body")
		return
	}
	req.LicenseNumber = strings.TrimSpace(req.LicenseNumber)
	req.Name = strings.TrimSpace(req.Name)
	if req.LicenseNumber == "" || req.Name == "" {
		writeDetail(w, http.StatusBadRequest, "license_number and name required")
		return
	}

	p := &model.Provider{
		LicenseNumber: req.LicenseNumber,
		Name:          req.Name,
		Specialty:     strings.TrimSpace(req.Specialty),
	}
	id, err := h.providers.Create(r.Context(), p)
	if err != nil {
		if storage.IsUniqueViolation(err) {
			writeDetail(w, http.StatusConflict, "license_number already registered")
			return
		}
		h.logger.Error("provider create failed", "err", err)
		writeDetail(w, http.StatusInternalServerError, "failed to create provider")
		return
	}
	p.ID = id
	writeJSON(w, http.StatusCreated, toProviderItem(*p))
}

func (h *ProviderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid provider id")
		return
	}
	p, err := h.providers.GetByID(r.Context(), id)
	if err != nil {
		if storage.IsNotFound(err) {
			writeDetail(w, http.StatusNotFound, "Provider not found")
			return
		}
		h.logger.Error("provider lookup failed", "err", err)
		writeDetail(w, http.StatusInternalServerError, "failed to load provider")
		return
	}
	writeJSON(w, http.StatusOK, toProviderItem(p))
}

func toProviderItem(p model.Provider) providerItem {
	return providerItem{
		ID:            p.ID,
		LicenseNumber: p.LicenseNumber,
		Name:          p.Name,
		Specialty:     p.Specialty,
		Verified:      p.Verified,
		CreatedAt:     p.CreatedAt,
	}
}
