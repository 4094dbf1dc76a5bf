// Package sqlite implements the object registry using SQLite
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sagarc03/swiftgate"
	"github.com/sagarc03/swiftgate/database/internal"
)

// timeFormat is fixed width so that text comparison orders chronologically.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

type repo struct {
	db        *sql.DB
	tableName string
}

func (r *repo) Record(ctx context.Context, entry swiftgate.ObjectEntry) (swiftgate.ObjectRecord, error) {
	if err := validateEntry(entry); err != nil {
		return swiftgate.ObjectRecord{}, fmt.Errorf("record: %w", err)
	}

	now := time.Now().UTC().Format(timeFormat)
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`INSERT INTO %s (container, id, filename, content_type, etag, size_bytes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (container, id) DO UPDATE
		SET filename = excluded.filename,
			content_type = excluded.content_type,
			etag = excluded.etag,
			size_bytes = excluded.size_bytes,
			updated_at = excluded.updated_at
		RETURNING created_at`, r.tableName)

	var createdAt string
	err := r.db.QueryRowContext(ctx, query,
		entry.Container, entry.ID, entry.Filename, entry.ContentType, entry.ETag, entry.SizeBytes, now, now,
	).Scan(&createdAt)
	if err != nil {
		return swiftgate.ObjectRecord{}, fmt.Errorf("record: %w", err)
	}

	rec := swiftgate.ObjectRecord{
		ID:          entry.ID,
		Container:   entry.Container,
		Filename:    entry.Filename,
		ContentType: entry.ContentType,
		ETag:        entry.ETag,
		SizeBytes:   entry.SizeBytes,
	}
	rec.CreatedAt, err = time.Parse(timeFormat, createdAt)
	if err != nil {
		return swiftgate.ObjectRecord{}, fmt.Errorf("record: parse created_at: %w", err)
	}

	return rec, nil
}

func (r *repo) Get(ctx context.Context, container, id string) (swiftgate.ObjectRecord, error) {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`SELECT container, id, filename, content_type, etag, size_bytes, created_at
		FROM %s
		WHERE container = ? AND id = ?`, r.tableName)

	rec, err := scanRecord(r.db.QueryRowContext(ctx, query, container, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return swiftgate.ObjectRecord{}, swiftgate.ErrNotFound
		}
		return swiftgate.ObjectRecord{}, fmt.Errorf("get: %w", err)
	}

	return rec, nil
}

func (r *repo) List(ctx context.Context, q swiftgate.ListQuery) (swiftgate.ListResult, error) {
	cursor, err := internal.DecodeCursor(q.Cursor)
	if err != nil {
		return swiftgate.ListResult{}, fmt.Errorf("list: %w: %w", swiftgate.ErrInvalidInput, err)
	}
	limit := internal.Limit(q.Limit)

	conditions := []string{"1 = 1"}
	var args []any

	if q.Container != "" {
		conditions = append(conditions, "container = ?")
		args = append(args, q.Container)
	}
	if q.Prefix != "" {
		conditions = append(conditions, `filename LIKE ? || '%' ESCAPE '\'`)
		args = append(args, internal.EscapeLikePattern(q.Prefix))
	}
	if q.Cursor != "" {
		conditions = append(conditions, "(created_at, container, id) > (?, ?, ?)")
		args = append(args, cursor.CreatedAt.UTC().Format(timeFormat), cursor.Container, cursor.ID)
	}
	args = append(args, limit+1)

	query := fmt.Sprintf(`
		SELECT container, id, filename, content_type, etag, size_bytes, created_at
		FROM %s
		WHERE %s
		ORDER BY created_at, container, id
		LIMIT ?
	`, r.tableName, strings.Join(conditions, " AND "))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return swiftgate.ListResult{}, fmt.Errorf("list: %w", err)
	}
	defer func() { _ = rows.Close() }()

	items := make([]swiftgate.ObjectRecord, 0, limit)
	for rows.Next() {
		rec, scanErr := scanRecord(rows)
		if scanErr != nil {
			return swiftgate.ListResult{}, fmt.Errorf("list: scan: %w", scanErr)
		}
		items = append(items, rec)
	}

	if err := rows.Err(); err != nil {
		return swiftgate.ListResult{}, fmt.Errorf("list: rows: %w", err)
	}

	var nextCursor string
	if len(items) > limit {
		last := items[limit-1]
		nextCursor = internal.EncodeCursor(last.CreatedAt, last.Container, last.ID)
		items = items[:limit]
	}

	return swiftgate.ListResult{Items: items, NextCursor: nextCursor}, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (swiftgate.ObjectRecord, error) {
	var rec swiftgate.ObjectRecord
	var createdAt string

	if err := row.Scan(&rec.Container, &rec.ID, &rec.Filename, &rec.ContentType, &rec.ETag, &rec.SizeBytes, &createdAt); err != nil {
		return swiftgate.ObjectRecord{}, err
	}

	var err error
	rec.CreatedAt, err = time.Parse(timeFormat, createdAt)
	if err != nil {
		return swiftgate.ObjectRecord{}, fmt.Errorf("parse created_at: %w", err)
	}

	return rec, nil
}

func validateEntry(entry swiftgate.ObjectEntry) error {
	if !swiftgate.IsValidName(entry.Container) {
		return fmt.Errorf("%w: invalid container %q", swiftgate.ErrInvalidInput, entry.Container)
	}
	if !swiftgate.IsValidName(entry.ID) {
		return fmt.Errorf("%w: invalid id %q", swiftgate.ErrInvalidInput, entry.ID)
	}
	if entry.SizeBytes < 0 {
		return fmt.Errorf("%w: negative size", swiftgate.ErrInvalidInput)
	}
	return nil
}
