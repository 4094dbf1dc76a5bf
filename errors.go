package swiftgate

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound is returned when an object or record does not exist
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")
	// ErrAuthentication is returned when the auth exchange with upstream fails
	ErrAuthentication = errors.New("authentication failed")
	// ErrStorage is returned when upstream answers with an unexpected status
	ErrStorage = errors.New("storage error")
	// ErrNotAuthenticated is returned when a session has no token yet
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrClosed is returned once the client has been closed
	ErrClosed = errors.New("client closed")
	// ErrTransferAborted is returned when a stream breaks mid-transfer
	ErrTransferAborted = errors.New("transfer aborted")
	// ErrUnauthorized is returned when an inbound request fails authentication
	ErrUnauthorized = errors.New("unauthorized")
)

// AuthError carries the upstream answer of a failed auth exchange.
type AuthError struct {
	StatusCode int
	Message    string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed: %d %s", e.StatusCode, e.Message)
}

func (e *AuthError) Unwrap() error {
	return ErrAuthentication
}

// StorageError carries the upstream status of a failed storage operation.
// Op names the operation (upload, download, read, write).
type StorageError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: upstream returned %d %s", e.Op, e.StatusCode, e.Message)
}

func (e *StorageError) Unwrap() error {
	return ErrStorage
}

// Is reports a 404 from upstream as ErrNotFound.
func (e *StorageError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

func newStorageError(op string, resp *http.Response) *StorageError {
	return &StorageError{
		Op:         op,
		StatusCode: resp.StatusCode,
		Message:    statusMessage(resp),
	}
}
