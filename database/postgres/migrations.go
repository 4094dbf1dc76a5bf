package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

func createObjectsTable(ctx context.Context, pool *pgxpool.Pool, tableName string) error {
	quotedTable := pgx.Identifier{tableName}.Sanitize()
	indexList := pgx.Identifier{fmt.Sprintf("idx_%s_list", tableName)}.Sanitize()
	indexFilename := pgx.Identifier{fmt.Sprintf("idx_%s_filename", tableName)}.Sanitize()

	sql := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			container TEXT NOT NULL,
			id TEXT NOT NULL,
			filename TEXT NOT NULL,
			content_type TEXT NOT NULL,
			etag TEXT NOT NULL,
			size_bytes BIGINT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (container, id)
		);

		CREATE INDEX IF NOT EXISTS %s
		ON %s (created_at, container, id);

		CREATE INDEX IF NOT EXISTS %s
		ON %s (container, filename text_pattern_ops);
	`,
		quotedTable,
		indexList, quotedTable,
		indexFilename, quotedTable,
	)

	_, err := pool.Exec(ctx, sql)
	if err != nil {
		return fmt.Errorf("create objects table: %w", err)
	}
	return nil
}
