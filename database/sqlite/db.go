package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sagarc03/swiftgate"
	"github.com/sagarc03/swiftgate/database/internal"
)

// registryColumns spells the registry layout the way PRAGMA table_info
// reports the types declared in createObjectsTable.
var registryColumns = internal.RegistryColumns("text", "integer", "text")

// describe lists the columns of table. A missing table has none.
func describe(ctx context.Context, db *sql.DB, table string) ([]internal.Column, error) {
	rows, err := db.QueryContext(ctx, `SELECT name, type, "notnull" FROM pragma_table_info(?)`, table)
	if err != nil {
		return nil, fmt.Errorf("describe %s: %w", table, err)
	}
	defer func() { _ = rows.Close() }()

	var cols []internal.Column
	for rows.Next() {
		var c internal.Column
		var notNull bool
		if err := rows.Scan(&c.Name, &c.Type, &notNull); err != nil {
			return nil, fmt.Errorf("describe %s: %w", table, err)
		}
		c.Nullable = !notNull
		cols = append(cols, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("describe %s: %w", table, err)
	}
	return cols, nil
}

func checkRegistryTable(ctx context.Context, db *sql.DB, table string) error {
	if !swiftgate.IsValidTableName(table) {
		return fmt.Errorf("invalid table name: %s", table)
	}
	cols, err := describe(ctx, db, table)
	if err != nil {
		return err
	}
	return internal.CheckColumns(table, registryColumns, cols)
}
