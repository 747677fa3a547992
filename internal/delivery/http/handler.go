package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/vogiaan1904/ticketbottle-checkin/internal/models"
	"github.com/vogiaan1904/ticketbottle-checkin/internal/service"
	"github.com/vogiaan1904/ticketbottle-checkin/pkg/logger"
)

type HTTPHandler struct {
	checkInService      service.CheckInService
	registrationService service.RegistrationService
	logger              logger.Logger
	validator           *validator.Validate
}

func NewHTTPHandler(
	checkInService service.CheckInService,
	registrationService service.RegistrationService,
	logger logger.Logger,
) *HTTPHandler {
	return &HTTPHandler{
		checkInService:      checkInService,
		registrationService: registrationService,
		logger:              logger,
		validator:           validator.New(),
	}
}

// HealthCheck handles health check requests
func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":  "healthy",
		"service": "checkin-service",
		"version": "1.0.0",
	}
	respondJSON(w, http.StatusOK, response)
}

type checkInRequest struct {
	Token    string `json:"token" validate:"required"`
	Location string `json:"location"`
	Method   string `json:"method" validate:"omitempty,oneof=qr_scan manual"`
}

// CheckIn handles a scanned or manually entered ticket token.
func (h *HTTPHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")
	if eventID == "" {
		respondError(w, http.StatusBadRequest, "Event ID is required")
		return
	}

	op, ok := OperatorFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Operator identity is required")
		return
	}

	var req checkInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, "Validation failed")
		return
	}

	method := models.VerificationMethod(req.Method)
	if method == "" {
		method = models.VerificationMethodQRScan
	}

	out, err := h.checkInService.CheckIn(r.Context(), service.CheckInInput{
		TokenString: req.Token,
		EventID:     eventID,
		Operator:    op,
		Location:    req.Location,
		Method:      method,
	})
	if err != nil {
		h.logger.Error(r.Context(), "Failed to check in ticket", "error", err, "event_id", eventID)
		respondJSON(w, http.StatusBadGateway, out)
		return
	}

	respondJSON(w, checkInStatusCode(out.Status), out)
}

// History returns the recent verification results for an event.
func (h *HTTPHandler) History(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")
	if eventID == "" {
		respondError(w, http.StatusBadRequest, "Event ID is required")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}

	entries, err := h.checkInService.History(r.Context(), eventID, limit)
	if err != nil {
		h.logger.Error(r.Context(), "Failed to load verification history", "error", err, "event_id", eventID)
		respondError(w, http.StatusInternalServerError, "Failed to load verification history")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"event_id": eventID,
		"entries":  entries,
	})
}

// Register handles attendee self-registration.
func (h *HTTPHandler) Register(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")
	if eventID == "" {
		respondError(w, http.StatusBadRequest, "Event ID is required")
		return
	}

	var req service.RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.EventID = eventID

	if err := h.validator.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, "Validation failed")
		return
	}

	out, err := h.registrationService.Register(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEventNotFound):
			respondError(w, http.StatusNotFound, "Event not found")
		case errors.Is(err, service.ErrSoldOut):
			respondError(w, http.StatusConflict, "Event is sold out")
		case errors.Is(err, service.ErrTimeSlotRequired), errors.Is(err, service.ErrInvalidTimeSlot):
			respondError(w, http.StatusBadRequest, err.Error())
		default:
			h.logger.Error(r.Context(), "Failed to register", "error", err, "event_id", eventID)
			respondError(w, http.StatusInternalServerError, "Failed to register")
		}
		return
	}

	respondJSON(w, http.StatusCreated, out)
}

func checkInStatusCode(status service.CheckInStatus) int {
	switch status {
	case service.CheckInStatusApproved:
		return http.StatusOK
	case service.CheckInStatusInvalidFormat:
		return http.StatusBadRequest
	case service.CheckInStatusWrongEvent:
		return http.StatusUnprocessableEntity
	case service.CheckInStatusExpired:
		return http.StatusGone
	case service.CheckInStatusNotFound:
		return http.StatusNotFound
	case service.CheckInStatusAlreadyUsed:
		return http.StatusConflict
	default:
		return http.StatusBadGateway
	}
}

func respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	// Headers are already written; an encode failure has nowhere to go.
	_ = json.NewEncoder(w).Encode(data)
}
