package http

import "errors"

var (
	// ErrNoFile is returned when a multipart upload carries no file part.
	ErrNoFile = errors.New("no file part in upload")
	// ErrUploadTooLarge is returned when an upload exceeds the configured limit.
	ErrUploadTooLarge = errors.New("upload too large")
)
