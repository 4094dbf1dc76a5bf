package http_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/sagarc03/swiftgate"
	gatewayhttp "github.com/sagarc03/swiftgate/http"
	"github.com/stretchr/testify/assert"
)

func TestHandleError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantBody string
	}{
		{name: "not found", err: swiftgate.ErrNotFound, wantCode: http.StatusNotFound, wantBody: "not_found"},
		{name: "wrapped not found", err: errors.Join(errors.New("context"), swiftgate.ErrNotFound), wantCode: http.StatusNotFound, wantBody: "not_found"},
		{name: "invalid input", err: fmt.Errorf("upload: %w", swiftgate.ErrInvalidInput), wantCode: http.StatusBadRequest, wantBody: "invalid_input"},
		{name: "no file", err: gatewayhttp.ErrNoFile, wantCode: http.StatusBadRequest, wantBody: "no_file"},
		{name: "too large", err: fmt.Errorf("%w: read chunk: %w", swiftgate.ErrTransferAborted, gatewayhttp.ErrUploadTooLarge), wantCode: http.StatusRequestEntityTooLarge, wantBody: "too_large"},
		{name: "unauthorized", err: fmt.Errorf("signature mismatch: %w", swiftgate.ErrUnauthorized), wantCode: http.StatusUnauthorized, wantBody: "unauthorized"},
		{name: "not authenticated", err: swiftgate.ErrNotAuthenticated, wantCode: http.StatusServiceUnavailable, wantBody: "unavailable"},
		{name: "closed", err: fmt.Errorf("upload: %w", swiftgate.ErrClosed), wantCode: http.StatusServiceUnavailable, wantBody: "unavailable"},
		{name: "storage error keeps upstream message", err: &swiftgate.StorageError{Op: "upload", StatusCode: 500, Message: "Internal Server Error"}, wantCode: http.StatusBadGateway, wantBody: "Internal Server Error"},
		{name: "transfer aborted", err: fmt.Errorf("%w: write chunk", swiftgate.ErrTransferAborted), wantCode: http.StatusBadGateway, wantBody: "upstream_error"},
		{name: "network failure", err: &url.Error{Op: "Put", URL: "http://swift", Err: errors.New("connection refused")}, wantCode: http.StatusBadGateway, wantBody: "upstream_error"},
		{name: "unexpected", err: context.Canceled, wantCode: http.StatusInternalServerError, wantBody: "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()

			gatewayhttp.HandleError(rec, tt.err)

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
			assert.Contains(t, rec.Body.String(), `"status":"error"`)
		})
	}
}

func TestWriteError_Success(t *testing.T) {
	rec := httptest.NewRecorder()

	gatewayhttp.WriteError(rec, http.StatusBadRequest, "bad_request", "Invalid request")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"status":"error","error":"bad_request","message":"Invalid request"}`, rec.Body.String())
}

func TestWriteJSON_Success(t *testing.T) {
	rec := httptest.NewRecorder()

	err := gatewayhttp.WriteJSON(rec, http.StatusOK, map[string]string{"key": "value"})

	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), `"key":"value"`)
}

func TestWriteJSON_EncodingError(t *testing.T) {
	rec := httptest.NewRecorder()

	// Channels cannot be JSON encoded
	err := gatewayhttp.WriteJSON(rec, http.StatusOK, make(chan int))

	assert.Error(t, err)
}
