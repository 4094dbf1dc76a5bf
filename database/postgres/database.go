package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sagarc03/swiftgate"
)

type database struct {
	pool   *pgxpool.Pool
	tables swiftgate.Tables
}

// Connect establishes a connection pool to PostgreSQL.
// Tables should be validated before calling Connect.
func Connect(ctx context.Context, dsn string, tables swiftgate.Tables) (*database, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	return &database{
		pool:   pool,
		tables: tables,
	}, nil
}

// Ping verifies the database connection is alive.
func (d *database) Ping(ctx context.Context) error {
	return d.pool.Ping(ctx)
}

// Migrate creates the registry tables.
func (d *database) Migrate(ctx context.Context) error {
	if err := createObjectsTable(ctx, d.pool, d.tables.Objects); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Validate checks that the registry table has the layout the repo expects.
func (d *database) Validate(ctx context.Context) error {
	if err := checkRegistryTable(ctx, d.pool, d.tables.Objects); err != nil {
		return fmt.Errorf("validate schema: %w", err)
	}
	return nil
}

// Drop removes the registry tables.
func (d *database) Drop(ctx context.Context) error {
	sql := fmt.Sprintf("DROP TABLE IF EXISTS %s", pgx.Identifier{d.tables.Objects}.Sanitize())
	if _, err := d.pool.Exec(ctx, sql); err != nil {
		return fmt.Errorf("drop %s: %w", d.tables.Objects, err)
	}
	return nil
}

// GetRepo returns the object registry backed by this database.
func (d *database) GetRepo() swiftgate.ObjectRegistry {
	return &Repo{pool: d.pool, tableName: pgx.Identifier{d.tables.Objects}.Sanitize()}
}

// Close closes the database connection pool.
func (d *database) Close() error {
	d.pool.Close()
	return nil
}
