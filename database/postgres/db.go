package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sagarc03/swiftgate"
	"github.com/sagarc03/swiftgate/database/internal"
)

// registryColumns spells the registry layout the way information_schema
// reports the types declared in createObjectsTable.
var registryColumns = internal.RegistryColumns("text", "bigint", "timestamp with time zone")

// describe lists the columns of table in the current schema. A missing
// table has none.
func describe(ctx context.Context, pool *pgxpool.Pool, table string) ([]internal.Column, error) {
	rows, err := pool.Query(ctx, `
		SELECT column_name, data_type, is_nullable = 'YES'
		FROM information_schema.columns
		WHERE table_schema = current_schema() AND table_name = $1
		ORDER BY ordinal_position
	`, table)
	if err != nil {
		return nil, fmt.Errorf("describe %s: %w", table, err)
	}

	cols, err := pgx.CollectRows(rows, pgx.RowToStructByPos[internal.Column])
	if err != nil {
		return nil, fmt.Errorf("describe %s: %w", table, err)
	}
	return cols, nil
}

func checkRegistryTable(ctx context.Context, pool *pgxpool.Pool, table string) error {
	if !swiftgate.IsValidTableName(table) {
		return fmt.Errorf("invalid table name: %s", table)
	}
	cols, err := describe(ctx, pool, table)
	if err != nil {
		return err
	}
	return internal.CheckColumns(table, registryColumns, cols)
}
