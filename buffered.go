package swiftgate

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
)

// maxReadPresize bounds how much of a declared Content-Length Read allocates
// up front. Larger bodies still read fully, growing as they arrive.
const maxReadPresize = 8 << 20

// Read fetches an object fully into memory. Use Download to stream.
func (c *Client) Read(ctx context.Context, sess *Session, id, container string) (StoredObject, error) {
	token, container, err := sess.resolve(container)
	if err != nil {
		return StoredObject{}, fmt.Errorf("read: %w", err)
	}
	if !IsValidName(id) {
		return StoredObject{}, fmt.Errorf("read: %w: invalid object id %q", ErrInvalidInput, id)
	}

	ctx, done, err := c.begin(ctx)
	if err != nil {
		return StoredObject{}, fmt.Errorf("read: %w", err)
	}
	defer done()

	req, err := c.newRequest(ctx, http.MethodGet, objectPath(sess.Account(), container, id), nil)
	if err != nil {
		return StoredObject{}, fmt.Errorf("read: %w", err)
	}
	req.Header.Set(headerStorageToken, token)

	resp, err := c.http.Do(req)
	if err != nil {
		return StoredObject{}, fmt.Errorf("read %s: %w", id, withCause(ctx, err))
	}
	defer closeBody(resp)

	if resp.StatusCode != http.StatusOK {
		return StoredObject{}, newStorageError("read", resp)
	}

	var buf bytes.Buffer
	if resp.ContentLength > 0 {
		buf.Grow(int(min(resp.ContentLength, maxReadPresize)))
	}

	t := newTransfer("read", c.chunkSize)
	err = t.pump(ctx, &buf, nil, resp.Body)
	t.finish(err)
	if err != nil {
		return StoredObject{}, fmt.Errorf("read %s: %w", id, withCause(ctx, err))
	}

	return StoredObject{
		ID:          id,
		Content:     buf.Bytes(),
		Filename:    resp.Header.Get(headerFilename),
		ContentType: resp.Header.Get("Content-Type"),
	}, nil
}

// Write stores obj with a single fixed-length PUT and returns its id. An
// empty obj.ID gets a new UUID.
func (c *Client) Write(ctx context.Context, sess *Session, obj StoredObject, container string) (string, error) {
	token, container, err := sess.resolve(container)
	if err != nil {
		return "", fmt.Errorf("write: %w", err)
	}

	id, err := objectID(obj.ID)
	if err != nil {
		return "", fmt.Errorf("write: %w", err)
	}

	ctx, done, err := c.begin(ctx)
	if err != nil {
		return "", fmt.Errorf("write: %w", err)
	}
	defer done()

	req, err := c.newRequest(ctx, http.MethodPut, objectPath(sess.Account(), container, id), bytes.NewReader(obj.Content))
	if err != nil {
		return "", fmt.Errorf("write: %w", err)
	}
	req.Header.Set(headerStorageToken, token)
	req.Header.Set("Content-Type", orDefault(obj.ContentType, defaultContentType))
	if obj.Filename != "" {
		req.Header.Set(headerFilename, obj.Filename)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("write %s: %w", id, withCause(ctx, err))
	}
	defer closeBody(resp)

	if resp.StatusCode != http.StatusCreated {
		return "", newStorageError("write", resp)
	}

	return id, nil
}
