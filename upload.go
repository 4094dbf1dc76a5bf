package swiftgate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
)

// errUpstreamAnswered ends an upload pipe once upstream has responded.
var errUpstreamAnswered = errors.New("upstream answered before the body was consumed")

const defaultContentType = "application/octet-stream"

// Upload relays one file of a multipart upload to a chunked PUT on
// /v1/{account}/{container}/{id}.
//
// up.Body must not have been read: it is consumed only once the outbound
// request is in flight, one chunk at a time, and each chunk is handed to the
// transport before the next one is read. The call returns once upstream has
// answered and the inbound body is no longer being read. An empty container
// uses the session default; an empty up.ID gets a new UUID.
//
// Any status other than 201 returns a *StorageError carrying the upstream
// status and message.
func (c *Client) Upload(ctx context.Context, sess *Session, up *FileUpload, container string) (UploadResult, error) {
	if up == nil || up.Body == nil {
		return UploadResult{}, fmt.Errorf("upload: %w: missing file body", ErrInvalidInput)
	}

	token, container, err := sess.resolve(container)
	if err != nil {
		return UploadResult{}, fmt.Errorf("upload: %w", err)
	}

	id, err := objectID(up.ID)
	if err != nil {
		return UploadResult{}, fmt.Errorf("upload: %w", err)
	}

	ctx, done, err := c.begin(ctx)
	if err != nil {
		return UploadResult{}, fmt.Errorf("upload: %w", err)
	}
	defer done()

	t := newTransfer("upload", c.chunkSize)
	pr, pw := io.Pipe()

	req, err := c.newRequest(ctx, http.MethodPut, objectPath(sess.Account(), container, id), pr)
	if err != nil {
		return UploadResult{}, fmt.Errorf("upload: %w", err)
	}
	req.ContentLength = -1
	req.Header.Set(headerStorageToken, token)
	req.Header.Set("Content-Type", headerContentType(up.Metadata))
	if up.Metadata.Filename != "" {
		req.Header.Set(headerFilename, up.Metadata.Filename)
	}

	// pumped is filled before pw is closed, so the result is ready by the
	// time upstream can have seen the end of the body.
	pumped := make(chan error, 1)
	go func() {
		pumpErr := t.pump(ctx, pw, nil, up.Body)
		pumped <- pumpErr
		_ = pw.CloseWithError(pumpErr)
	}()

	// Upstream may answer while the inbound body is stalled mid-read. The
	// pump is not waited on after that: it stops at its next write into the
	// closed pipe, or when done cancels ctx.
	resp, doErr := c.http.Do(req)
	_ = pr.CloseWithError(errUpstreamAnswered)

	if doErr != nil {
		t.finish(doErr)
		select {
		case pumpErr := <-pumped:
			if pumpErr != nil && !errors.Is(pumpErr, errUpstreamAnswered) {
				return UploadResult{}, fmt.Errorf("upload %s: %w", id, pumpErr)
			}
		default:
		}
		return UploadResult{}, fmt.Errorf("upload %s: %w", id, withCause(ctx, doErr))
	}
	defer closeBody(resp)

	if resp.StatusCode != http.StatusCreated {
		serr := newStorageError("upload", resp)
		t.finish(serr)
		slog.Warn("upload rejected by upstream",
			"transfer", t.id, "container", container, "id", id,
			"status", resp.StatusCode, "bytes", t.bytes.Load())
		return UploadResult{}, serr
	}

	var pumpErr error
	select {
	case pumpErr = <-pumped:
	default:
		pumpErr = fmt.Errorf("%w: %w", ErrTransferAborted, errUpstreamAnswered)
	}
	if pumpErr != nil {
		t.finish(pumpErr)
		return UploadResult{}, fmt.Errorf("upload %s: %w", id, pumpErr)
	}
	t.finish(nil)

	meta := up.Metadata
	meta.ContentType = orDefault(meta.ContentType, defaultContentType)
	meta.Size = t.bytes.Load()
	meta.ETag = resp.Header.Get("ETag")

	slog.Debug("upload relayed",
		"transfer", t.id, "container", container, "id", id,
		"bytes", meta.Size, "chunks", t.chunks)

	return UploadResult{ID: id, Status: "ok", Metadata: meta}, nil
}

// objectID returns id, or a new UUID when id is empty.
func objectID(id string) (string, error) {
	if id == "" {
		return uuid.NewString(), nil
	}
	if !IsValidName(id) {
		return "", fmt.Errorf("%w: invalid object id %q", ErrInvalidInput, id)
	}
	return id, nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
