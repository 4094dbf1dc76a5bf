package clientcli

import (
	"time"
)

// UploadOptions configures an upload operation.
type UploadOptions struct {
	LocalPath   string
	Container   string // empty = configured container, then the gateway default
	ID          string // optional object id, single file only
	ContentType string // optional, auto-detect if empty
	Recursive   bool
}

// UploadResult represents the result of uploading a single file.
type UploadResult struct {
	LocalPath   string `json:"local_path"`
	ID          string `json:"id"`
	Container   string `json:"container,omitempty"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	ETag        string `json:"etag,omitempty"`
	Size        int64  `json:"size_bytes"`
	Err         error  `json:"-"` // nil on success
}

// DownloadOptions configures a download operation.
type DownloadOptions struct {
	ID        string
	Container string
	LocalPath string // empty = derive from response, "-" = stdout
	// Name overrides the download filename announced by the gateway.
	Name string
	// IfNoneMatch makes the download conditional on the ETag.
	IfNoneMatch string
}

// DownloadResult represents the result of downloading a file.
type DownloadResult struct {
	ID          string `json:"id"`
	Container   string `json:"container,omitempty"`
	LocalPath   string `json:"local_path"`
	ETag        string `json:"etag"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size_bytes"`
	NotModified bool   `json:"not_modified,omitempty"`
}

// ListOptions configures a list operation.
type ListOptions struct {
	Container string
	Prefix    string
	Limit     int
	Cursor    string
	All       bool // auto-paginate through all results

	// AllContainers skips the configured container when Container is empty.
	AllContainers bool
}

// ListResult contains paginated list results.
type ListResult struct {
	Items      []ObjectInfo `json:"items"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

// ObjectInfo represents a recorded upload.
type ObjectInfo struct {
	ID          string    `json:"id"`
	Container   string    `json:"container"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	ETag        string    `json:"etag"`
	Size        int64     `json:"size_bytes"`
	CreatedAt   time.Time `json:"created_at"`
}

// serverUploadResult mirrors the JSON response of an upload.
type serverUploadResult struct {
	ID       string `json:"_id"`
	Status   string `json:"status"`
	Metadata struct {
		Filename    string `json:"filename"`
		ContentType string `json:"content-type"`
		Size        int64  `json:"size"`
		ETag        string `json:"etag"`
	} `json:"metadata"`
}

// serverListResult mirrors the JSON response of the list endpoint.
type serverListResult struct {
	Items      []ObjectInfo `json:"items"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

// serverError mirrors the JSON error body of the gateway.
type serverError struct {
	Status  string `json:"status"`
	Error   string `json:"error"`
	Message string `json:"message"`
}
