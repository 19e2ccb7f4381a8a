package leads

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ironbridge-it/website-api/internal/ratelimit"
	"github.com/ironbridge-it/website-api/pkg/logging"
)

const (
	maxBodyBytes = 64 << 10

	msgThankYou       = "Thank you for contacting us. We will get back to you soon."
	msgMissingFields  = "Missing required fields: name, email, message"
	msgInvalidEmail   = "Invalid email address"
	msgTooManyRequest = "Too many requests. Please try again later."
	msgSubmitFailed   = "Failed to submit contact form"
	msgInternalError  = "Internal server error"
)

// Handler handles HTTP requests for the contact form
type Handler struct {
	intake *Intake
	logger *logging.Logger
}

// NewHandler creates a new leads handler
func NewHandler(intake *Intake, logger *logging.Logger) *Handler {
	if intake == nil {
		panic("leads: intake required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		intake: intake,
		logger: logger,
	}
}

// SubmitResponse is returned when a lead was stored.
type SubmitResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	LeadID  string `json:"leadId,omitempty"`
}

// ErrorResponse carries the caller-facing error text.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Submit handles POST /api/contact requests
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	result := h.intake.SubmitJSON(r.Context(), ratelimit.ClientKey(r), body)

	switch result.State {
	case StatePersisted:
		writeJSON(w, http.StatusCreated, SubmitResponse{
			Success: true,
			Message: msgThankYou,
			LeadID:  result.LeadID,
		})
	case StateRateLimited:
		writeJSON(w, http.StatusTooManyRequests, ErrorResponse{Error: msgTooManyRequest})
	case StateInvalid:
		msg := msgMissingFields
		if errors.Is(result.Err, ErrInvalidEmail) {
			msg = msgInvalidEmail
		}
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: msg})
	case StateStoreFailed:
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: msgSubmitFailed})
	default:
		h.logger.Error("contact submission failed", "state", result.State, "error", result.Err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: msgInternalError})
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
