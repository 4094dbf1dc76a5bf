package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/sagarc03/swiftgate"
)

// ErrorResponse represents a JSON error response
type ErrorResponse struct {
	Status  string `json:"status"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// WriteError writes a JSON error response
func WriteError(w http.ResponseWriter, code int, errCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(ErrorResponse{
		Status:  "error",
		Error:   errCode,
		Message: message,
	}); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

// HandleError writes appropriate error response based on error type
func HandleError(w http.ResponseWriter, err error) {
	var serr *swiftgate.StorageError
	var urlErr *url.Error

	switch {
	case errors.Is(err, swiftgate.ErrNotFound):
		WriteError(w, http.StatusNotFound, "not_found", "Object not found")
	case errors.Is(err, ErrUploadTooLarge):
		WriteError(w, http.StatusRequestEntityTooLarge, "too_large", "Upload exceeds the size limit")
	case errors.Is(err, ErrNoFile):
		WriteError(w, http.StatusBadRequest, "no_file", "No file in upload")
	case errors.Is(err, swiftgate.ErrInvalidInput):
		WriteError(w, http.StatusBadRequest, "invalid_input", "Invalid request")
	case errors.Is(err, swiftgate.ErrUnauthorized):
		WriteError(w, http.StatusUnauthorized, "unauthorized", err.Error())
	case errors.Is(err, swiftgate.ErrNotAuthenticated), errors.Is(err, swiftgate.ErrClosed):
		WriteError(w, http.StatusServiceUnavailable, "unavailable", "Storage is not available")
	case errors.As(err, &serr):
		WriteError(w, http.StatusBadGateway, "upstream_error", serr.Message)
	case errors.Is(err, swiftgate.ErrAuthentication), errors.Is(err, swiftgate.ErrTransferAborted), errors.As(err, &urlErr):
		slog.Warn("upstream request failed", "error", err)
		WriteError(w, http.StatusBadGateway, "upstream_error", "Storage request failed")
	default:
		slog.Error("request error", "error", err)
		WriteError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
	}
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, code int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	return json.NewEncoder(w).Encode(data)
}
