// Package config provides configuration loading and validation for swiftgate.
//
// The package handles YAML configuration files, environment variables, and CLI flags
// with automatic merging and validation using go-playground/validator.
//
// # Configuration Precedence
//
// Values are loaded in this order (later sources override earlier ones):
//
//  1. Default values
//  2. Configuration file(s) - multiple files merged left-to-right
//  3. Environment variables (SWIFTGATE_ prefix)
//  4. CLI flags
//
// # Usage
//
//	cfg, err := config.Load([]string{"config.yaml"}, cmd.Flags())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Store in context for subcommands
//	ctx = config.WithContext(ctx, cfg)
//
//	// Retrieve later
//	cfg, err = config.FromContext(ctx)
//
// # Environment Variables
//
// All config keys map to environment variables with SWIFTGATE_ prefix:
//   - server.port → SWIFTGATE_SERVER_PORT
//   - upstream.key → SWIFTGATE_UPSTREAM_KEY
//   - auth.read → SWIFTGATE_AUTH_READ
//
// # Configuration Structure
//
// The Config struct contains:
//   - Server: port, public URL, max_upload_size and shutdown timeout
//   - Upstream: storage URL, account, default container, credentials and pool settings
//   - Service: registry write timeout
//   - Database: type, DSN, and table names of the upload registry
//   - Auth: public or private reads and writes, and access keys
//   - CORS: cross-origin resource sharing settings
//   - Log: level and environment (dev or prod)
package config
