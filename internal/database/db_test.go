package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchema = `CREATE TABLE IF NOT EXISTS kv (k TEXT PRIMARY KEY, v BLOB NOT NULL);`

func TestNew_CreatesDirectoryAndMigrates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "client_data.db")

	db, err := New(Config{Path: path, Profile: ProfileCache, Name: "client_data"})
	require.NoError(t, err)
	defer db.Close()

	assert.Equal(t, path, db.Path())
	assert.Equal(t, ProfileCache, db.Profile())
	assert.Equal(t, "client_data", db.Name())

	require.NoError(t, db.Migrate(testSchema))
	// Re-running is a no-op
	require.NoError(t, db.Migrate(testSchema))

	_, err = db.Conn().Exec("INSERT INTO kv (k, v) VALUES (?, ?)", "a", []byte{1})
	require.NoError(t, err)

	assert.NoError(t, db.QuickCheck(context.Background()))
	assert.NoError(t, db.IntegrityCheck(context.Background()))
	assert.NoError(t, db.WALCheckpoint(""))

	stats, err := db.GetStats()
	require.NoError(t, err)
	assert.Greater(t, stats.PageCount, int64(0))
	assert.Greater(t, stats.SizeBytes, int64(0))
}

func TestMigrate_InvalidSchema(t *testing.T) {
	db, err := New(Config{Path: filepath.Join(t.TempDir(), "x.db"), Name: "x"})
	require.NoError(t, err)
	defer db.Close()

	assert.Error(t, db.Migrate("CREATE TABLE ("))
}

func TestBuildConnectionString(t *testing.T) {
	conn := buildConnectionString("/data/client_data.db", ProfileCache)
	assert.Contains(t, conn, "/data/client_data.db?_pragma=journal_mode(WAL)")
	assert.Contains(t, conn, "synchronous(OFF)")

	conn = buildConnectionString("file:test?mode=memory", ProfileStandard)
	assert.Contains(t, conn, "file:test?mode=memory&_pragma=journal_mode(WAL)")
	assert.Contains(t, conn, "synchronous(NORMAL)")
}
