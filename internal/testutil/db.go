package testutil

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
	"github.com/stretchr/testify/require"

	"github.com/softglow/assetdb/internal/source"
)

// NewTestDB creates an in-memory SQLite database. The caller is
// responsible for closing it (use t.Cleanup).
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// NewSeededSQLiteSource returns a SQLite source over an in-memory
// database seeded with the same fixture set as DefaultManifest.
func NewSeededSQLiteSource(t *testing.T) *source.SQLiteSource {
	t.Helper()
	src, err := source.NewSQLiteSource(NewTestDB(t), NewKinds())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, src.Put(ctx, "broadsword", "sword",
		"name: broadsword\ndamage: 12\nweight: 6\n", "core", "melee"))
	require.NoError(t, src.Put(ctx, "rapier", "sword",
		"name: rapier\ndamage: 7\nweight: 2\n", "core"))
	require.NoError(t, src.Put(ctx, "tower-shield", "shield",
		"name: tower-shield\nblock: 9\nweight: 11\n", "core"))
	return src
}
