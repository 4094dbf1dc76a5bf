package clientcli

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	stowry "github.com/sagarc03/stowry-go"
)

const (
	// DefaultTimeout is the default HTTP client timeout. It covers whole
	// transfers, so large files may need WithTimeout.
	DefaultTimeout = 10 * time.Minute

	// DefaultExpires is the default presigned URL expiry in seconds (15 minutes).
	DefaultExpires = 900

	// MaxExpires is the longest presigned URL validity the gateway accepts (7 days).
	MaxExpires = 604800
)

// Client performs operations against a swiftgate gateway.
type Client struct {
	config     *Config
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// New creates a new Client with the given config and options. Requests are
// presigned when the config carries credentials and sent plain otherwise.
// cfg.Container becomes the container of calls that name none.
func New(cfg *Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, ErrConfigRequired
	}

	c := &Client{
		config:     Resolve(cfg),
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Upload uploads file(s) to the gateway.
// For recursive uploads, walks the directory and uploads every regular file.
func (c *Client) Upload(ctx context.Context, opts UploadOptions) ([]UploadResult, error) {
	if opts.LocalPath == "" {
		return nil, fmt.Errorf("upload: %w", ErrEmptyPath)
	}
	opts.Container = c.container(opts.Container)
	if opts.Recursive {
		return c.uploadRecursive(ctx, opts)
	}
	result, err := c.uploadSingle(ctx, opts.LocalPath, opts.Container, opts.ID, opts.ContentType)
	if err != nil {
		return nil, err
	}
	return []UploadResult{result}, nil
}

// uploadRecursive walks a directory and uploads all files. Per-file failures
// are collected in the results.
func (c *Client) uploadRecursive(ctx context.Context, opts UploadOptions) ([]UploadResult, error) {
	info, err := os.Stat(opts.LocalPath)
	if err != nil {
		return nil, fmt.Errorf("stat local path: %w", err)
	}

	if !info.IsDir() {
		result, uploadErr := c.uploadSingle(ctx, opts.LocalPath, opts.Container, opts.ID, opts.ContentType)
		if uploadErr != nil {
			return nil, uploadErr
		}
		return []UploadResult{result}, nil
	}

	var results []UploadResult
	walkErr := filepath.WalkDir(opts.LocalPath, func(path string, d fs.DirEntry, fileErr error) error {
		if fileErr != nil {
			return fileErr
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if !d.Type().IsRegular() {
			return nil
		}

		result, uploadErr := c.uploadSingle(ctx, path, opts.Container, "", "")
		if uploadErr != nil {
			result = UploadResult{LocalPath: path, Container: opts.Container, Err: uploadErr}
		}
		results = append(results, result)
		return nil
	})

	if walkErr != nil {
		return results, fmt.Errorf("walk directory: %w", walkErr)
	}

	return results, nil
}

// uploadSingle streams one file as a multipart form. The body is produced
// while the request is being sent, so the file is never held in memory.
func (c *Client) uploadSingle(ctx context.Context, localPath, container, id, contentType string) (UploadResult, error) {
	file, err := os.Open(localPath) //#nosec G304 -- localPath is user-provided input
	if err != nil {
		return UploadResult{}, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	if contentType == "" {
		contentType = detectContentType(localPath)
	}

	query := url.Values{}
	if id != "" {
		query.Set("id", id)
	}

	pr, pw := io.Pipe()
	defer func() { _ = pr.Close() }()

	mw := multipart.NewWriter(pw)
	go func() {
		pw.CloseWithError(writeFilePart(mw, file, filepath.Base(localPath), contentType))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(http.MethodPost, uploadPath(container), query), pr)
	if err != nil {
		return UploadResult{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return UploadResult{}, fmt.Errorf("do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return UploadResult{}, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return UploadResult{}, parseServerError(resp.StatusCode, body)
	}

	var sr serverUploadResult
	if err := json.Unmarshal(body, &sr); err != nil {
		return UploadResult{}, fmt.Errorf("parse response: %w", err)
	}

	return UploadResult{
		LocalPath:   localPath,
		ID:          sr.ID,
		Container:   container,
		Filename:    sr.Metadata.Filename,
		ContentType: sr.Metadata.ContentType,
		ETag:        sr.Metadata.ETag,
		Size:        sr.Metadata.Size,
	}, nil
}

func writeFilePart(mw *multipart.Writer, r io.Reader, filename, contentType string) error {
	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", mime.FormatMediaType("form-data", map[string]string{
		"name":     "file",
		"filename": filename,
	}))
	h.Set("Content-Type", contentType)

	part, err := mw.CreatePart(h)
	if err != nil {
		return fmt.Errorf("create part: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return fmt.Errorf("copy file: %w", err)
	}
	return mw.Close()
}

// Download downloads an object from the gateway.
// If opts.LocalPath is "-", the content is returned via the io.ReadCloser and must be closed by the caller.
// Otherwise, the content is written to the file and the io.ReadCloser is nil.
// A 304 answer to IfNoneMatch returns a result with NotModified set and no body.
func (c *Client) Download(ctx context.Context, opts DownloadOptions) (*DownloadResult, io.ReadCloser, error) {
	if opts.ID == "" {
		return nil, nil, fmt.Errorf("download: %w", ErrEmptyID)
	}
	opts.Container = c.container(opts.Container)

	// The gateway only announces a filename on attachment responses.
	query := url.Values{}
	if opts.Name != "" || opts.LocalPath == "" {
		query.Set("inline", "false")
	}
	if opts.Name != "" {
		query.Set("name", opts.Name)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(http.MethodGet, downloadPath(opts.Container, opts.ID), query), http.NoBody)
	if err != nil {
		return nil, nil, fmt.Errorf("create request: %w", err)
	}
	if opts.IfNoneMatch != "" {
		req.Header.Set("If-None-Match", opts.IfNoneMatch)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("do request: %w", err)
	}

	result := &DownloadResult{
		ID:          opts.ID,
		Container:   opts.Container,
		ETag:        strings.Trim(resp.Header.Get("ETag"), `"`),
		ContentType: resp.Header.Get("Content-Type"),
		Size:        resp.ContentLength,
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotModified:
		_ = resp.Body.Close()
		result.NotModified = true
		result.Size = 0
		return result, nil, nil
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		_ = resp.Body.Close()
		return nil, nil, parseServerError(resp.StatusCode, body)
	}

	if opts.LocalPath == "-" {
		result.LocalPath = "-"
		return result, resp.Body, nil
	}
	defer func() { _ = resp.Body.Close() }()

	localPath := opts.LocalPath
	if localPath == "" {
		localPath = filenameFromDisposition(resp.Header.Get("Content-Disposition"))
		if localPath == "" {
			localPath = opts.ID
		}
	}
	result.LocalPath = localPath

	dir := filepath.Dir(localPath)
	if dir != "" && dir != "." {
		if mkdirErr := os.MkdirAll(dir, 0o750); mkdirErr != nil {
			return nil, nil, fmt.Errorf("create directory: %w", mkdirErr)
		}
	}

	file, err := os.Create(localPath) //#nosec G304 -- localPath is user-provided input
	if err != nil {
		return nil, nil, fmt.Errorf("create file: %w", err)
	}

	written, copyErr := io.Copy(file, resp.Body)
	if copyErr != nil {
		_ = file.Close()
		_ = os.Remove(localPath)
		return nil, nil, fmt.Errorf("write file: %w", copyErr)
	}

	if closeErr := file.Close(); closeErr != nil {
		return nil, nil, fmt.Errorf("close file: %w", closeErr)
	}

	result.Size = written
	return result, nil, nil
}

// List lists recorded uploads.
// If opts.All is true, paginates through all results.
func (c *Client) List(ctx context.Context, opts ListOptions) (*ListResult, error) {
	if !opts.AllContainers {
		opts.Container = c.container(opts.Container)
	}
	if opts.All {
		return c.listAll(ctx, opts)
	}
	return c.listPage(ctx, opts)
}

// listPage fetches a single page of results.
func (c *Client) listPage(ctx context.Context, opts ListOptions) (*ListResult, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 100
	}
	if limit > 1000 {
		limit = 1000
	}

	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	if opts.Container != "" {
		query.Set("container", opts.Container)
	}
	if opts.Prefix != "" {
		query.Set("prefix", opts.Prefix)
	}
	if opts.Cursor != "" {
		query.Set("cursor", opts.Cursor)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(http.MethodGet, "/files", query), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, parseServerError(resp.StatusCode, body)
	}

	var serverResult serverListResult
	if err := json.Unmarshal(body, &serverResult); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	return &ListResult{
		Items:      serverResult.Items,
		NextCursor: serverResult.NextCursor,
	}, nil
}

// listAll fetches all pages of results.
func (c *Client) listAll(ctx context.Context, opts ListOptions) (*ListResult, error) {
	var allItems []ObjectInfo
	cursor := opts.Cursor

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page, err := c.listPage(ctx, ListOptions{
			Container: opts.Container,
			Prefix:    opts.Prefix,
			Limit:     opts.Limit,
			Cursor:    cursor,
		})
		if err != nil {
			return nil, err
		}

		allItems = append(allItems, page.Items...)

		if page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}

	return &ListResult{Items: allItems}, nil
}

// TotalSize calculates the total size of all items in bytes.
func (r *ListResult) TotalSize() int64 {
	var total int64
	for _, item := range r.Items {
		total += item.Size
	}
	return total
}

// Presign returns a presigned URL for method on path, valid for expires
// seconds (0 means DefaultExpires). Extra query parameters are kept; they
// are not covered by the signature.
func (c *Client) Presign(method, path string, expires int, query url.Values) (string, error) {
	if err := c.config.requireKeys(); err != nil {
		return "", err
	}
	if expires <= 0 {
		expires = DefaultExpires
	}
	if expires > MaxExpires {
		return "", fmt.Errorf("presign: expires must be at most %d seconds", MaxExpires)
	}
	if query == nil {
		query = url.Values{}
	}
	return c.sign(strings.ToUpper(method), normalizePath(path), query, expires), nil
}

// container returns explicit, or the configured container when it is empty.
func (c *Client) container(explicit string) string {
	return cmp.Or(explicit, c.config.Container)
}

// url builds the request URL for path, presigned when credentials are set.
func (c *Client) url(method, path string, query url.Values) string {
	if c.config.signed() {
		return c.sign(method, path, query, DefaultExpires)
	}
	return c.build(path, query)
}

func (c *Client) sign(method, path string, query url.Values, expires int) string {
	timestamp := time.Now().Unix()
	query.Set(stowry.StowryCredentialParam, c.config.AccessKey)
	query.Set(stowry.StowryDateParam, strconv.FormatInt(timestamp, 10))
	query.Set(stowry.StowryExpiresParam, strconv.Itoa(expires))
	query.Set(stowry.StowrySignatureParam, stowry.Sign(c.config.SecretKey, method, path, timestamp, int64(expires)))
	return c.build(path, query)
}

func (c *Client) build(path string, query url.Values) string {
	u := c.config.Endpoint + (&url.URL{Path: path}).EscapedPath()
	if enc := query.Encode(); enc != "" {
		u += "?" + enc
	}
	return u
}

func uploadPath(container string) string {
	if container == "" {
		return "/files"
	}
	return "/files/" + container
}

func downloadPath(container, id string) string {
	if container == "" {
		return "/files/" + id
	}
	return "/files/" + container + "/" + id
}

// normalizePath ensures path has leading slash and no trailing slash.
func normalizePath(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return strings.TrimSuffix(path, "/")
}

func filenameFromDisposition(v string) string {
	if v == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(v)
	if err != nil {
		return ""
	}
	name := filepath.Base(params["filename"])
	if name == "." || name == "/" || name == ".." {
		return ""
	}
	return name
}

// detectContentType sniffs the file content, falling back to its extension.
func detectContentType(path string) string {
	if mt, err := mimetype.DetectFile(path); err == nil && !mt.Is("application/octet-stream") {
		return mt.String()
	}

	if byExt := mime.TypeByExtension(filepath.Ext(path)); byExt != "" {
		return byExt
	}

	return "application/octet-stream"
}
