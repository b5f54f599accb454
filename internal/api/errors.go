package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nerrad567/gray-logic-inventory/internal/device"
)

// Error represents a structured error response.
type Error struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Common error codes.
const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeNotFound         = "not_found"
	ErrCodeConflict         = "conflict"
	ErrCodeInternal         = "internal_error"
	ErrCodeValidation       = "validation_error"
	ErrCodeNotApplicable    = "not_applicable"
	ErrCodePowerRejected    = "power_rejected"
	ErrCodeCapacityExceeded = "capacity_exceeded"
	ErrCodeUnavailable      = "unavailable"
)

// writeJSON writes a JSON response with the given status code and payload.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		//nolint:errcheck // Best-effort write to response; connection may be closed
		json.NewEncoder(w).Encode(v)
	}
}

// writeError writes a structured error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, Error{
		Status:  status,
		Code:    code,
		Message: message,
	})
}

// writeBadRequest writes a 400 error response.
func writeBadRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, ErrCodeBadRequest, message)
}

// writeNotFound writes a 404 error response.
func writeNotFound(w http.ResponseWriter, message string) {
	writeError(w, http.StatusNotFound, ErrCodeNotFound, message)
}

// writeInternalError writes a 500 error response.
func writeInternalError(w http.ResponseWriter, message string) {
	writeError(w, http.StatusInternalServerError, ErrCodeInternal, message)
}

// writeDeviceError maps a registry error to its HTTP status.
func writeDeviceError(w http.ResponseWriter, err error) {
	status, code := deviceErrorStatus(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal server error"
	}
	writeError(w, status, code, message)
}

func deviceErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, device.ErrDeviceNotFound):
		return http.StatusNotFound, ErrCodeNotFound
	case errors.Is(err, device.ErrDeviceExists):
		return http.StatusConflict, ErrCodeConflict
	case errors.Is(err, device.ErrCapacityExceeded):
		return http.StatusUnprocessableEntity, ErrCodeCapacityExceeded
	case errors.Is(err, device.ErrInsufficientPower),
		errors.Is(err, device.ErrMissingOperatingSystem),
		errors.Is(err, device.ErrConnectionRefused):
		return http.StatusConflict, ErrCodePowerRejected
	case errors.Is(err, device.ErrStoreNotConfigured):
		return http.StatusServiceUnavailable, ErrCodeUnavailable
	case errors.Is(err, device.ErrInvalidDevice),
		errors.Is(err, device.ErrInvalidID),
		errors.Is(err, device.ErrInvalidName),
		errors.Is(err, device.ErrOutOfRange),
		errors.Is(err, device.ErrInvalidFormat),
		errors.Is(err, device.ErrUnknownKind),
		errors.Is(err, device.ErrUnknownField):
		return http.StatusBadRequest, ErrCodeValidation
	default:
		return http.StatusInternalServerError, ErrCodeInternal
	}
}
