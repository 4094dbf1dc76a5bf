package postgres_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/sagarc03/swiftgate"
	"github.com/sagarc03/swiftgate/database/postgres"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDatabase_MigrateValidate(t *testing.T) {
	pool := getSharedTestDatabase(t)
	ctx := context.Background()

	t.Run("success - valid schema after migrate", func(t *testing.T) {
		tableName := "migrate_" + getRandomString(t)
		db, err := postgres.Connect(ctx, getDSN(pool), swiftgate.Tables{Objects: tableName})
		require.NoError(t, err)
		defer func() {
			_ = db.Close()
			_ = dropTable(ctx, pool, tableName)
		}()

		require.NoError(t, db.Ping(ctx))
		require.NoError(t, db.Migrate(ctx))
		require.NoError(t, db.Migrate(ctx), "migrate should be idempotent")
		assert.NoError(t, db.Validate(ctx))

		require.NoError(t, db.Drop(ctx))
		assert.Error(t, db.Validate(ctx))
	})

	t.Run("error - table does not exist", func(t *testing.T) {
		db, err := postgres.Connect(ctx, getDSN(pool), swiftgate.Tables{Objects: "missing_" + getRandomString(t)})
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		err = db.Validate(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "does not exist")
	})

	t.Run("error - wrong column type", func(t *testing.T) {
		tableName := "drift_" + getRandomString(t)
		_, err := pool.Exec(ctx, fmt.Sprintf(`CREATE TABLE %s (container TEXT NOT NULL, id TEXT NOT NULL, size_bytes INTEGER NOT NULL)`, tableName))
		require.NoError(t, err)
		defer func() { _ = dropTable(ctx, pool, tableName) }()

		db, err := postgres.Connect(ctx, getDSN(pool), swiftgate.Tables{Objects: tableName})
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		err = db.Validate(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing columns")
		assert.Contains(t, err.Error(), "size_bytes: expected bigint, got integer")
	})
}

func TestNewRepo_InvalidTables(t *testing.T) {
	_, err := postgres.NewRepo(nil, swiftgate.Tables{Objects: "Bad-Name"})
	assert.Error(t, err)
}

func TestRepo_Record(t *testing.T) {
	ctx := context.Background()

	t.Run("insert then replace keeps created_at", func(t *testing.T) {
		repo := setupTestRepo(t)

		first, err := repo.Record(ctx, entry("documents", "T123", "v1.pdf"))
		require.NoError(t, err)
		assert.False(t, first.CreatedAt.IsZero())

		updated := entry("documents", "T123", "v2.pdf")
		updated.SizeBytes = 2048
		second, err := repo.Record(ctx, updated)
		require.NoError(t, err)
		assert.True(t, first.CreatedAt.Equal(second.CreatedAt))
		assert.Equal(t, "v2.pdf", second.Filename)

		got, err := repo.Get(ctx, "documents", "T123")
		require.NoError(t, err)
		assert.Equal(t, int64(2048), got.SizeBytes)
	})

	t.Run("error - invalid entry", func(t *testing.T) {
		repo := setupTestRepo(t)

		_, err := repo.Record(ctx, entry("documents", "", "a.pdf"))
		assert.ErrorIs(t, err, swiftgate.ErrInvalidInput)
	})
}

func TestRepo_Get(t *testing.T) {
	ctx := context.Background()
	repo := setupTestRepo(t)

	_, err := repo.Record(ctx, entry("documents", "T123", "annual.pdf"))
	require.NoError(t, err)

	got, err := repo.Get(ctx, "documents", "T123")
	require.NoError(t, err)
	assert.Equal(t, "annual.pdf", got.Filename)
	assert.Equal(t, "etag-T123", got.ETag)

	_, err = repo.Get(ctx, "photos", "T123")
	assert.ErrorIs(t, err, swiftgate.ErrNotFound)
}

func TestRepo_List(t *testing.T) {
	ctx := context.Background()

	t.Run("pagination with cursor", func(t *testing.T) {
		repo := setupTestRepo(t)
		for i := range 5 {
			_, err := repo.Record(ctx, entry("documents", fmt.Sprintf("id%d", i), "f.pdf"))
			require.NoError(t, err)
		}

		first, err := repo.List(ctx, swiftgate.ListQuery{Limit: 3})
		require.NoError(t, err)
		require.Len(t, first.Items, 3)
		require.NotEmpty(t, first.NextCursor)

		second, err := repo.List(ctx, swiftgate.ListQuery{Limit: 3, Cursor: first.NextCursor})
		require.NoError(t, err)
		require.Len(t, second.Items, 2)
		assert.Empty(t, second.NextCursor)
		assert.Equal(t, "id3", second.Items[0].ID)
	})

	t.Run("filters by container and escaped prefix", func(t *testing.T) {
		repo := setupTestRepo(t)
		for _, e := range []swiftgate.ObjectEntry{
			entry("documents", "d1", "100%_done.pdf"),
			entry("documents", "d2", "100xydone.pdf"),
			entry("photos", "p1", "100%_done.png"),
		} {
			_, err := repo.Record(ctx, e)
			require.NoError(t, err)
		}

		result, err := repo.List(ctx, swiftgate.ListQuery{Container: "documents", Prefix: "100%_"})
		require.NoError(t, err)
		require.Len(t, result.Items, 1)
		assert.Equal(t, "d1", result.Items[0].ID)
	})

	t.Run("error - invalid cursor", func(t *testing.T) {
		repo := setupTestRepo(t)

		_, err := repo.List(ctx, swiftgate.ListQuery{Cursor: "!!!"})
		assert.ErrorIs(t, err, swiftgate.ErrInvalidInput)
	})
}
