package swiftgate

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"time"
)

// StoredObject is a fully materialized object. It is built by the caller
// before Write or by Read on success and is not modified afterwards.
type StoredObject struct {
	ID          string
	Content     []byte
	Filename    string
	ContentType string
}

// FileMetadata describes an uploaded file. Keys follow the upload result
// format returned to inbound clients.
type FileMetadata struct {
	Name        string `json:"name,omitempty"`
	Filename    string `json:"filename"`
	ContentType string `json:"content-type"`
	Charset     string `json:"charset,omitempty"`
	Size        int64  `json:"size"`
	ETag        string `json:"etag,omitempty"`
}

// FileUpload is one file of a multipart upload. Body must not have been
// read yet: the relay starts consuming it only once the outbound request
// is in flight.
type FileUpload struct {
	ID       string
	Body     io.Reader
	Metadata FileMetadata
}

// UploadResult is returned by a successful upload relay.
type UploadResult struct {
	ID       string       `json:"_id"`
	Status   string       `json:"status"`
	Metadata FileMetadata `json:"metadata"`
}

// DownloadRequest holds everything the download relay needs besides the
// response sink.
type DownloadRequest struct {
	ID        string
	Container string
	// Inline false sets a Content-Disposition attachment header.
	Inline       bool
	DownloadName string
	// Metadata is an optional hint used to derive the attachment filename.
	Metadata *FileMetadata
	// ETag overrides the upstream ETag on 200 and 304 answers.
	ETag        string
	IfNoneMatch string
}

// TransferStats summarizes one relay transfer.
type TransferStats struct {
	ID             string
	StatusCode     int
	Bytes          int64
	Chunks         int
	State          TransferState
	HeadersWritten bool
}

// ObjectEntry is what the gateway records after a successful upload.
type ObjectEntry struct {
	ID          string
	Container   string
	Filename    string
	ContentType string
	ETag        string
	SizeBytes   int64
}

// ObjectRecord is a recorded upload.
type ObjectRecord struct {
	ID          string    `json:"id"`
	Container   string    `json:"container"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	ETag        string    `json:"etag"`
	SizeBytes   int64     `json:"size_bytes"`
	CreatedAt   time.Time `json:"created_at"`
}

// Metadata returns the record as a download metadata hint.
func (r ObjectRecord) Metadata() *FileMetadata {
	return &FileMetadata{
		Filename:    r.Filename,
		ContentType: r.ContentType,
		Size:        r.SizeBytes,
		ETag:        r.ETag,
	}
}

// ListQuery selects registry records. Empty Container lists every container;
// Prefix matches the start of the filename.
type ListQuery struct {
	Container string
	Prefix    string
	Limit     int
	Cursor    string
}

type ListResult struct {
	Items      []ObjectRecord `json:"items"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

// Tables holds configurable table names for the upload registry.
type Tables struct {
	Objects string `mapstructure:"objects"`
}

var validTableNameRegex = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// IsValidTableName checks if a table name is valid (lowercase, alphanumeric with underscores, max 63 chars).
func IsValidTableName(name string) bool {
	return validTableNameRegex.MatchString(name) && len(name) <= 63
}

// Validate checks that all required table names are set and valid.
func (t Tables) Validate() error {
	if t.Objects == "" {
		return errors.New("validate tables: objects table name cannot be empty")
	}

	if !IsValidTableName(t.Objects) {
		return fmt.Errorf("validate tables: invalid objects table name: %s (must match ^[a-z_][a-z0-9_]*$ and be <= 63 chars)", t.Objects)
	}

	return nil
}
