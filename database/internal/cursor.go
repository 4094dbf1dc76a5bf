// Package internal holds helpers shared by the registry backends.
package internal

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// DefaultLimit is the page size used when a query sets none.
	DefaultLimit = 100
	// MaxLimit caps the page size of a single query.
	MaxLimit = 1000
)

// Cursor marks the last record of a page. Records are ordered by creation
// time, then container, then id.
type Cursor struct {
	CreatedAt time.Time
	Container string
	ID        string
}

// EncodeCursor encodes the position of a record as an opaque string.
func EncodeCursor(createdAt time.Time, container, id string) string {
	raw := createdAt.UTC().Format(time.RFC3339Nano) + "|" + container + "/" + id
	return base64.URLEncoding.EncodeToString([]byte(raw))
}

// DecodeCursor parses a cursor produced by EncodeCursor. An empty string
// decodes to the zero Cursor.
func DecodeCursor(encoded string) (Cursor, error) {
	if encoded == "" {
		return Cursor{}, nil
	}

	raw, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		return Cursor{}, fmt.Errorf("decode cursor: invalid encoding: %w", err)
	}

	ts, key, found := strings.Cut(string(raw), "|")
	if !found {
		return Cursor{}, errors.New("decode cursor: invalid format")
	}

	container, id, found := strings.Cut(key, "/")
	if !found || container == "" || id == "" {
		return Cursor{}, errors.New("decode cursor: empty container or id")
	}

	createdAt, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return Cursor{}, fmt.Errorf("decode cursor: invalid timestamp: %w", err)
	}

	return Cursor{CreatedAt: createdAt, Container: container, ID: id}, nil
}

// EscapeLikePattern escapes the LIKE wildcards of s, using backslash as the
// escape character.
func EscapeLikePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// Limit clamps a requested page size to [1, MaxLimit], with DefaultLimit for
// anything not positive.
func Limit(requested int) int {
	switch {
	case requested <= 0:
		return DefaultLimit
	case requested > MaxLimit:
		return MaxLimit
	default:
		return requested
	}
}
