package db

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestOpen(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	db, err := Open(context.Background(), dbPath)
	require.NoError(t, err, "should open database without error")
	defer func() { _ = db.Close() }()

	_, err = os.Stat(dbPath)
	assert.NoError(t, err, "database file should exist")
	assert.Equal(t, dbPath, db.Path())
}

func TestSchemaVersion(t *testing.T) {
	db := openTestDB(t)

	version, err := db.Version(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SchemaVersion, version)
}

func TestTablesExist(t *testing.T) {
	db := openTestDB(t)

	for _, table := range []string{"user", "game", "user_games", "schema_version"} {
		var name string
		err := db.Conn().QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?",
			table,
		).Scan(&name)
		assert.NoError(t, err, "table %s should exist", table)
		assert.Equal(t, table, name)
	}
}

func TestForeignKeysEnabled(t *testing.T) {
	db := openTestDB(t)

	var enabled int
	err := db.Conn().QueryRow("PRAGMA foreign_keys").Scan(&enabled)
	require.NoError(t, err)
	assert.Equal(t, 1, enabled)
}

func TestMigrationIdempotent(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := Open(ctx, dbPath)
	require.NoError(t, err)
	_, err = db.InsertUser(ctx, User{Username: "ana", Email: "ana@x.com", Password: "pw1"})
	require.NoError(t, err)
	_ = db.Close()

	for i := 0; i < 3; i++ {
		db, err := Open(ctx, dbPath)
		require.NoError(t, err, "should open database on attempt %d", i+1)
		_ = db.Close()
	}

	db, err = Open(ctx, dbPath)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	stats, err := db.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Users, "reopening at the same version must keep data")
}

func TestUpgradeDropsData(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := Open(ctx, dbPath)
	require.NoError(t, err)
	_, err = db.InsertUser(ctx, User{Username: "ana", Email: "ana@x.com", Password: "pw1"})
	require.NoError(t, err)

	// Pretend the store was written by an older build.
	_, err = db.Conn().Exec("UPDATE schema_version SET version = ?", SchemaVersion-1)
	require.NoError(t, err)
	_ = db.Close()

	db, err = Open(ctx, dbPath)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	stats, err := db.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{}, stats, "upgrade recreates empty tables")

	version, err := db.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, SchemaVersion, version)
}

func TestNewerSchemaRejected(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := Open(ctx, dbPath)
	require.NoError(t, err)
	_, err = db.Conn().Exec("UPDATE schema_version SET version = ?", SchemaVersion+1)
	require.NoError(t, err)
	_ = db.Close()

	_, err = Open(ctx, dbPath)
	assert.ErrorIs(t, err, ErrSchemaTooNew)
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	_, err := db.InsertGame(ctx, Game{ID: 1, Name: "Portal"})
	require.NoError(t, err)

	require.NoError(t, db.Reset(ctx))

	g, err := db.GetGame(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, g)
}

func TestClose(t *testing.T) {
	db, err := Open(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)

	err = db.Close()
	assert.NoError(t, err)

	_, err = db.Conn().Query("SELECT 1")
	assert.Error(t, err)
}
