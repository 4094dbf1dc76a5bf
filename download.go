package swiftgate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
)

// Download relays GET /v1/{account}/{container}/{id} into w.
//
// Headers are always complete before the first body byte. For a 200 the body
// is copied one chunk at a time and each chunk is flushed to the client
// before the next upstream read, so a slow client slows the upstream read. A
// 304 gets its ETag and no body. Any other status is written to w without a
// body and returned as a *StorageError.
//
// When the returned error is non-nil and stats.HeadersWritten is true the
// response is already committed; the caller should abort the connection
// instead of writing an error body.
func (c *Client) Download(ctx context.Context, sess *Session, w http.ResponseWriter, dr DownloadRequest) (TransferStats, error) {
	t := newTransfer("download", c.chunkSize)

	token, container, err := sess.resolve(dr.Container)
	if err != nil {
		return t.stats(0, false), fmt.Errorf("download: %w", err)
	}
	if !IsValidName(dr.ID) {
		return t.stats(0, false), fmt.Errorf("download: %w: invalid object id %q", ErrInvalidInput, dr.ID)
	}

	ctx, done, err := c.begin(ctx)
	if err != nil {
		return t.stats(0, false), fmt.Errorf("download: %w", err)
	}
	defer done()

	req, err := c.newRequest(ctx, http.MethodGet, objectPath(sess.Account(), container, dr.ID), nil)
	if err != nil {
		return t.stats(0, false), fmt.Errorf("download: %w", err)
	}
	req.Header.Set(headerStorageToken, token)
	if dr.IfNoneMatch != "" {
		req.Header.Set("If-None-Match", dr.IfNoneMatch)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		t.finish(err)
		return t.stats(0, false), fmt.Errorf("download %s: %w", dr.ID, withCause(ctx, err))
	}
	defer closeBody(resp)

	h := w.Header()
	if !dr.Inline {
		h.Set("Content-Disposition", ContentDisposition(NameWithExtension(dr.DownloadName, dr.Metadata)))
	}

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNotModified:
		etag := dr.ETag
		if etag == "" {
			etag = resp.Header.Get("ETag")
		}
		if etag != "" {
			h.Set("ETag", etag)
		}
	}

	switch resp.StatusCode {
	case http.StatusOK:
		if ct := resp.Header.Get("Content-Type"); ct != "" {
			h.Set("Content-Type", ct)
		}
		h.Del("Content-Length")
		w.WriteHeader(http.StatusOK)

		rc := http.NewResponseController(w)
		flush := func() error {
			if err := rc.Flush(); err != nil && !errors.Is(err, http.ErrNotSupported) {
				return err
			}
			return nil
		}

		err := t.pump(ctx, w, flush, resp.Body)
		t.finish(err)
		if err != nil {
			slog.Warn("download aborted",
				"transfer", t.id, "container", container, "id", dr.ID,
				"bytes", t.bytes.Load(), "err", err)
			return t.stats(http.StatusOK, true), fmt.Errorf("download %s: %w", dr.ID, withCause(ctx, err))
		}

		slog.Debug("download relayed",
			"transfer", t.id, "container", container, "id", dr.ID,
			"bytes", t.bytes.Load(), "chunks", t.chunks)
		return t.stats(http.StatusOK, true), nil

	case http.StatusNotModified:
		w.WriteHeader(http.StatusNotModified)
		t.transition(StateIdle, StateDraining)
		t.finish(nil)
		return t.stats(http.StatusNotModified, true), nil

	default:
		serr := newStorageError("download", resp)
		w.WriteHeader(resp.StatusCode)
		t.finish(serr)
		slog.Debug("download passthrough",
			"transfer", t.id, "container", container, "id", dr.ID,
			"status", resp.StatusCode, "message", serr.Message)
		return t.stats(resp.StatusCode, true), serr
	}
}
