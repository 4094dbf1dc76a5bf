// Package database connects the upload registry to its backend.
//
// Two backends are supported:
//
//   - PostgreSQL: pgx connection pool, for shared deployments
//   - SQLite: modernc.org/sqlite, for single-node gateways and tests
//
// # Usage
//
//	cfg := database.Config{
//	    Type:   "sqlite",
//	    DSN:    "swiftgate.db",
//	    Tables: swiftgate.Tables{Objects: "swiftgate_objects"},
//	}
//
//	registry, cleanup, err := database.Open(ctx, cfg, true)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer cleanup()
//
// Open pings the backend, creates the tables when asked to, and validates the
// schema before handing out the registry. Connect returns the raw Database for
// tooling that needs Migrate, Validate or Drop on their own.
package database
