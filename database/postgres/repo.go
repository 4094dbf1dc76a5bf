// Package postgres implements the object registry using PostgreSQL
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sagarc03/swiftgate"
	"github.com/sagarc03/swiftgate/database/internal"
)

type Repo struct {
	pool      *pgxpool.Pool
	tableName string
}

func NewRepo(pool *pgxpool.Pool, tables swiftgate.Tables) (*Repo, error) {
	if err := tables.Validate(); err != nil {
		return nil, fmt.Errorf("new repo: %w", err)
	}

	return &Repo{pool: pool, tableName: pgx.Identifier{tables.Objects}.Sanitize()}, nil
}

func (r *Repo) Record(ctx context.Context, entry swiftgate.ObjectEntry) (swiftgate.ObjectRecord, error) {
	if err := validateEntry(entry); err != nil {
		return swiftgate.ObjectRecord{}, fmt.Errorf("record: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (container, id, filename, content_type, etag, size_bytes)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (container, id) DO UPDATE
		SET filename = EXCLUDED.filename,
			content_type = EXCLUDED.content_type,
			etag = EXCLUDED.etag,
			size_bytes = EXCLUDED.size_bytes,
			updated_at = NOW()
		RETURNING container, id, filename, content_type, etag, size_bytes, created_at
	`, r.tableName)

	rec, err := scanRecord(r.pool.QueryRow(ctx, query,
		entry.Container, entry.ID, entry.Filename, entry.ContentType, entry.ETag, entry.SizeBytes,
	))
	if err != nil {
		return swiftgate.ObjectRecord{}, fmt.Errorf("record: %w", err)
	}

	return rec, nil
}

func (r *Repo) Get(ctx context.Context, container, id string) (swiftgate.ObjectRecord, error) {
	query := fmt.Sprintf(`
		SELECT container, id, filename, content_type, etag, size_bytes, created_at
		FROM %s
		WHERE container = $1 AND id = $2
	`, r.tableName)

	rec, err := scanRecord(r.pool.QueryRow(ctx, query, container, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return swiftgate.ObjectRecord{}, swiftgate.ErrNotFound
		}
		return swiftgate.ObjectRecord{}, fmt.Errorf("get: %w", err)
	}

	return rec, nil
}

func (r *Repo) List(ctx context.Context, q swiftgate.ListQuery) (swiftgate.ListResult, error) {
	cursor, err := internal.DecodeCursor(q.Cursor)
	if err != nil {
		return swiftgate.ListResult{}, fmt.Errorf("list: %w: %w", swiftgate.ErrInvalidInput, err)
	}
	limit := internal.Limit(q.Limit)

	conditions := []string{"TRUE"}
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if q.Container != "" {
		conditions = append(conditions, "container = "+arg(q.Container))
	}
	if q.Prefix != "" {
		conditions = append(conditions, "filename LIKE "+arg(internal.EscapeLikePattern(q.Prefix))+" || '%'")
	}
	if q.Cursor != "" {
		conditions = append(conditions, fmt.Sprintf("(created_at, container, id) > (%s, %s, %s)",
			arg(cursor.CreatedAt), arg(cursor.Container), arg(cursor.ID)))
	}

	query := fmt.Sprintf(`
		SELECT container, id, filename, content_type, etag, size_bytes, created_at
		FROM %s
		WHERE %s
		ORDER BY created_at, container, id
		LIMIT %s
	`, r.tableName, strings.Join(conditions, " AND "), arg(limit+1))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return swiftgate.ListResult{}, fmt.Errorf("list: %w", err)
	}
	defer rows.Close()

	items := make([]swiftgate.ObjectRecord, 0, limit)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return swiftgate.ListResult{}, fmt.Errorf("list: scan: %w", err)
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

func scanRecord(row pgx.Row) (swiftgate.ObjectRecord, error) {
	var rec swiftgate.ObjectRecord
	err := row.Scan(&rec.Container, &rec.ID, &rec.Filename, &rec.ContentType, &rec.ETag, &rec.SizeBytes, &rec.CreatedAt)
	return rec, err
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
