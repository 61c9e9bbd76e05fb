package helpers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"venuebooking/internal/domain"
)

// Error codes for API error responses. Use these with WriteJSONError.
const (
	ErrCodeBadRequest           = "bad_request"
	ErrCodeUnauthorized         = "unauthorized"
	ErrCodeNotFound             = "not_found"
	ErrCodeConflict             = "conflict"
	ErrCodeGone                 = "gone"
	ErrCodeCalendarAuthRequired = "calendar_auth_required"
	ErrCodeCalendarUnavailable  = "calendar_unavailable"
	ErrCodeCalendarError        = "calendar_error"
	ErrCodeInternalError        = "internal_error"
)

// APIError is the error object in the standardized API response envelope.
// swagger:model APIError
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// APIResponse is the standardized envelope for all API responses.
// On success: Data is set, Error is nil. On error: Data is nil, Error is set.
// swagger:model APIResponse
type APIResponse struct {
	Data  any       `json:"data"`
	Error *APIError `json:"error"`
}

// WriteJSONSuccess sets Content-Type to application/json, writes statusCode, and
// encodes an APIResponse with the given data and error set to nil.
func WriteJSONSuccess(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(APIResponse{Data: data, Error: nil})
}

// WriteJSONError sets Content-Type to application/json, writes statusCode, and
// encodes an APIResponse with data nil and the given error code and message.
func WriteJSONError(w http.ResponseWriter, statusCode int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(APIResponse{
		Data:  nil,
		Error: &APIError{Code: code, Message: message},
	})
}

// ErrorStatus maps a service error to its HTTP status and error code.
func ErrorStatus(err error) (int, string) {
	var remote *domain.RemoteError
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, ErrCodeBadRequest
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, ErrCodeUnauthorized
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrInvalidToken):
		return http.StatusNotFound, ErrCodeNotFound
	case errors.Is(err, domain.ErrAlreadyClaimed),
		errors.Is(err, domain.ErrEventExists),
		errors.Is(err, domain.ErrSlotTaken),
		errors.Is(err, domain.ErrNotBooked),
		errors.Is(err, domain.ErrEventInUse):
		return http.StatusConflict, ErrCodeConflict
	case errors.Is(err, domain.ErrInvitationExpired):
		return http.StatusGone, ErrCodeGone
	case errors.Is(err, domain.ErrCalendarAuthRequired):
		return http.StatusPreconditionRequired, ErrCodeCalendarAuthRequired
	case errors.Is(err, domain.ErrCalendarConfigMissing):
		return http.StatusServiceUnavailable, ErrCodeCalendarUnavailable
	case errors.As(err, &remote):
		return http.StatusBadGateway, ErrCodeCalendarError
	}
	return http.StatusInternalServerError, ErrCodeInternalError
}

// WriteServiceError writes err using ErrorStatus. Server-side failures are logged.
func WriteServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	status, code := ErrorStatus(err)
	if status >= http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
	}
	WriteJSONError(w, status, code, err.Error())
}
