package sqlite_test

import (
	"context"
	"crypto/rand"
	"fmt"
	"math"
	"math/big"
	"testing"

	"github.com/sagarc03/swiftgate"
	"github.com/sagarc03/swiftgate/database/sqlite"
	"github.com/stretchr/testify/require"
)

func getRandomString(t *testing.T) string {
	t.Helper()
	n, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
	require.NoError(t, err, "random string")
	return fmt.Sprintf("test%x", n.Int64())
}

// setupTestRepo creates a migrated in-memory registry with a unique table name.
func setupTestRepo(t *testing.T) swiftgate.ObjectRegistry {
	t.Helper()

	ctx := context.Background()
	tables := swiftgate.Tables{Objects: fmt.Sprintf("objects_%s", getRandomString(t))}

	db, err := sqlite.Connect(ctx, ":memory:", tables)
	require.NoError(t, err, "failed to connect")
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.Migrate(ctx), "failed to migrate")

	return db.GetRepo()
}

func entry(container, id, filename string) swiftgate.ObjectEntry {
	return swiftgate.ObjectEntry{
		ID:          id,
		Container:   container,
		Filename:    filename,
		ContentType: "application/pdf",
		ETag:        "etag-" + id,
		SizeBytes:   1024,
	}
}
