package e2e_test

import (
	"context"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	pgcontainer "github.com/testcontainers/testcontainers-go/modules/postgres"
)

var (
	testPool     *pgxpool.Pool
	testPoolOnce sync.Once
	testDSN      string
	testStartErr error
)

// getSharedPostgresDatabase returns the DSN of a PostgreSQL container shared
// by all E2E tests. testPool is connected to the same database so tests can
// inspect registry rows directly.
func getSharedPostgresDatabase(t *testing.T) string {
	t.Helper()

	testPoolOnce.Do(func() {
		ctx := context.Background()

		pgContainer, err := pgcontainer.Run(ctx,
			"postgres:18-alpine",
			pgcontainer.WithDatabase("swiftgate"),
			pgcontainer.WithUsername("swiftgate"),
			pgcontainer.WithPassword("swiftgate"),
			pgcontainer.BasicWaitStrategies(),
		)
		if err != nil {
			testStartErr = err
			return
		}

		connectionStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
		if err != nil {
			_ = testcontainers.TerminateContainer(pgContainer)
			testStartErr = err
			return
		}

		pool, err := pgxpool.New(ctx, connectionStr)
		if err != nil {
			_ = testcontainers.TerminateContainer(pgContainer)
			testStartErr = err
			return
		}

		testPool = pool
		testDSN = connectionStr
		cleanups = append(cleanups, func() {
			pool.Close()
			_ = testcontainers.TerminateContainer(pgContainer)
		})
	})

	if testStartErr != nil {
		t.Fatalf("failed to start postgres container: %v", testStartErr)
	}

	return testDSN
}
