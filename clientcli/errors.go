package clientcli

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
)

// Errors for profile operations.
var (
	ErrProfileNotFound     = errors.New("profile not found")
	ErrNoProfiles          = errors.New("no profiles configured")
	ErrProfileNameRequired = errors.New("profile name is required")
)

// Errors for configuration validation.
var (
	ErrAccessKeyRequired = errors.New("access key is required")
	ErrSecretKeyRequired = errors.New("secret key is required")
	ErrConfigRequired    = errors.New("config is required")
)

// Errors for input validation.
var (
	ErrEmptyPath = errors.New("path is required")
	ErrEmptyID   = errors.New("object id is required")
)

// APIError represents an error response from the gateway.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if e.Code != "" {
		return "server error: " + strconv.Itoa(e.StatusCode) + " " + e.Code + " - " + msg
	}
	return "server error: " + strconv.Itoa(e.StatusCode) + " - " + msg
}

// Is reports whether target matches this error.
// It matches if target is an *APIError with the same StatusCode.
func (e *APIError) Is(target error) bool {
	var t *APIError
	if !errors.As(target, &t) {
		return false
	}
	return t.StatusCode == e.StatusCode
}

// Sentinel errors for common API error conditions.
// Use errors.Is() to check for these conditions.
var (
	// ErrNotFound is returned when the requested object does not exist (404).
	ErrNotFound = &APIError{StatusCode: http.StatusNotFound}

	// ErrUnauthorized is returned when the presigned URL is rejected (401).
	ErrUnauthorized = &APIError{StatusCode: http.StatusUnauthorized}

	// ErrTooLarge is returned when the upload exceeds the gateway limit (413).
	ErrTooLarge = &APIError{StatusCode: http.StatusRequestEntityTooLarge}

	// ErrBadGateway is returned when the upstream store failed the request (502).
	ErrBadGateway = &APIError{StatusCode: http.StatusBadGateway}
)

// parseServerError builds an APIError from a gateway response body. Bodies
// that are not the gateway's JSON error format are kept as the message.
func parseServerError(statusCode int, body []byte) error {
	apiErr := &APIError{StatusCode: statusCode}

	var se serverError
	if err := json.Unmarshal(body, &se); err == nil && (se.Error != "" || se.Message != "") {
		apiErr.Code = se.Error
		apiErr.Message = se.Message
		return apiErr
	}

	apiErr.Message = string(body)
	return apiErr
}
