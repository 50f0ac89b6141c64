// Package handlers provides the HTTP handlers of the medicine info API:
// medicine info, alternatives and health.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/kairomed/medicine-info-api/interfaces"
	"github.com/kairomed/medicine-info-api/logging"
	"github.com/kairomed/medicine-info-api/medicine"
	"github.com/kairomed/medicine-info-api/validation"
)

// InfoRequest is the body of POST /medicine/info
type InfoRequest struct {
	Name string `json:"name"`
}

// AlternativesResponse is the body of GET /medicine/alternatives
type AlternativesResponse struct {
	Alternatives []medicine.AlternativeItem `json:"alternatives"`
}

// HealthResponse keeps the JSON field order stable
type HealthResponse struct {
	Status     string `json:"status"`
	Service    any    `json:"service"`
	Store      any    `json:"store"`
	AIFallback any    `json:"ai_fallback"`
	LastCheck  any    `json:"last_check"`
	StoreError any    `json:"store_error,omitempty"`
}

// MedicineHandler serves the medicine endpoints
type MedicineHandler struct {
	service interfaces.MedicineService
	health  interfaces.HealthChecker
}

// NewMedicineHandler creates a handler with injected dependencies
func NewMedicineHandler(service interfaces.MedicineService, health interfaces.HealthChecker) *MedicineHandler {
	return &MedicineHandler{
		service: service,
		health:  health,
	}
}

// Info handles POST /medicine/info
func (h *MedicineHandler) Info(w http.ResponseWriter, r *http.Request) {
	var req InfoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			RespondWithError(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return
		}
		logging.Warn("Malformed info request body", "request_id", middleware.GetReqID(r.Context()), "error", err)
		RespondWithError(w, http.StatusBadRequest, "Request body must be a JSON object with a \"name\" string")
		return
	}

	name, err := validation.ValidateMedicineName(req.Name)
	if err != nil {
		logging.Warn("Unusual user input", "name", req.Name, "error", err)
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.service.Info(r.Context(), name)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}

	RespondWithJSON(w, http.StatusOK, result)
}

// Alternatives handles GET /medicine/alternatives?name=
func (h *MedicineHandler) Alternatives(w http.ResponseWriter, r *http.Request) {
	name, err := validation.ValidateMedicineName(r.URL.Query().Get("name"))
	if err != nil {
		logging.Warn("Unusual user input", "name", r.URL.Query().Get("name"), "error", err)
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	alternatives, err := h.service.Alternatives(r.Context(), name)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	if alternatives == nil {
		alternatives = []medicine.AlternativeItem{}
	}

	RespondWithJSON(w, http.StatusOK, AlternativesResponse{Alternatives: alternatives})
}

// Health handles GET /health from the cached probe state
func (h *MedicineHandler) Health(w http.ResponseWriter, r *http.Request) {
	status, details, httpStatus := h.health.HealthCheck()

	RespondWithJSON(w, httpStatus, HealthResponse{
		Status:     status,
		Service:    details["service"],
		Store:      details["store"],
		AIFallback: details["ai_fallback"],
		LastCheck:  details["last_check"],
		StoreError: details["store_error"],
	})
}

// respondWithServiceError maps the domain error taxonomy onto HTTP codes
func (h *MedicineHandler) respondWithServiceError(w http.ResponseWriter, r *http.Request, err error) {
	code, message := statusForError(err)

	attrs := []any{
		"request_id", middleware.GetReqID(r.Context()),
		"path", r.URL.Path,
		"status_code", code,
		"error", err,
	}
	if code >= http.StatusInternalServerError {
		logging.Error("Request failed", attrs...)
	} else {
		logging.Info("Request rejected", attrs...)
	}

	RespondWithError(w, code, message)
}

func statusForError(err error) (int, string) {
	switch {
	case errors.Is(err, medicine.ErrUnknownMedicine):
		return http.StatusNotFound, "Medicine not recognized"
	case errors.Is(err, medicine.ErrStoreUnavailable):
		return http.StatusServiceUnavailable, "Medicine database is temporarily unavailable"
	case errors.Is(err, medicine.ErrConfiguration):
		return http.StatusInternalServerError, "No confident match and the AI fallback is not configured"
	case errors.Is(err, medicine.ErrAIProvider):
		return http.StatusInternalServerError, "No confident match and the AI fallback failed"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

// RespondWithJSON writes payload as JSON with the given status code
func RespondWithJSON(w http.ResponseWriter, code int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		logging.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Last-Modified", time.Now().UTC().Format(http.TimeFormat))
	w.WriteHeader(code)
	w.Write(data)
}

// RespondWithError writes a JSON error response
func RespondWithError(w http.ResponseWriter, code int, message string) {
	RespondWithJSON(w, code, map[string]any{
		"error":   http.StatusText(code),
		"message": message,
		"code":    code,
	})
}
