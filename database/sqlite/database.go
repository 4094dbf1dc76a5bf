package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sagarc03/swiftgate"

	_ "modernc.org/sqlite" // SQLite driver
)

// database provides SQLite database operations.
type database struct {
	db     *sql.DB
	tables swiftgate.Tables
}

// Connect opens a SQLite database. Tables should be validated before calling
// Connect.
func Connect(ctx context.Context, dsn string, tables swiftgate.Tables) (*database, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect sqlite: %w", err)
	}
	// A single connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connect sqlite: %w", err)
	}

	return &database{
		db:     db,
		tables: tables,
	}, nil
}

// Ping verifies the database connection is alive.
func (d *database) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

// Migrate creates the registry tables.
func (d *database) Migrate(ctx context.Context) error {
	for _, m := range getTableMigrations(d.tables) {
		if err := m.Up(ctx, d.db); err != nil {
			return fmt.Errorf("migrate %s: %w", m.TableName, err)
		}
	}
	return nil
}

// Validate checks that the registry table has the layout the repo expects.
func (d *database) Validate(ctx context.Context) error {
	if err := checkRegistryTable(ctx, d.db, d.tables.Objects); err != nil {
		return fmt.Errorf("validate schema: %w", err)
	}
	return nil
}

// Drop removes the registry tables.
func (d *database) Drop(ctx context.Context) error {
	migrations := getTableMigrations(d.tables)
	for i := len(migrations) - 1; i >= 0; i-- {
		if err := migrations[i].Down(ctx, d.db); err != nil {
			return fmt.Errorf("drop %s: %w", migrations[i].TableName, err)
		}
	}
	return nil
}

// GetRepo returns the object registry backed by this database.
func (d *database) GetRepo() swiftgate.ObjectRegistry {
	return &repo{db: d.db, tableName: d.tables.Objects}
}

// Close closes the database connection.
func (d *database) Close() error {
	return d.db.Close()
}
