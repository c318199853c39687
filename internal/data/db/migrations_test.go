package db

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	database, err := Open(t.TempDir(), DefaultOpenOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	return database
}

func openRawConn(t *testing.T) *sql.DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), FileName)
	conn, err := sql.Open("sqlite", fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)", dbPath))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestMigrateUp_FreshDB(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	// Verify schema_migrations has all versions recorded.
	rows, err := database.Conn().QueryContext(ctx, "SELECT version FROM schema_migrations ORDER BY version")
	require.NoError(t, err)
	defer func() { _ = rows.Close() }()

	var versions []int
	for rows.Next() {
		var v int
		require.NoError(t, rows.Scan(&v))
		versions = append(versions, v)
	}
	require.NoError(t, rows.Err())

	migrations, err := loadMigrations()
	require.NoError(t, err)

	require.Len(t, versions, len(migrations))
	for i, m := range migrations {
		assert.Equal(t, m.Version, versions[i])
	}

	_, err = database.Conn().ExecContext(ctx, "SELECT 1 FROM local_storage LIMIT 0")
	require.NoError(t, err, "local_storage table should exist")
}

func TestMigrateUp_Idempotent(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	// Running migrateUp again should be a no-op.
	err := migrateUp(ctx, database.Conn())
	assert.NoError(t, err, "second migrateUp should be idempotent")
}

func TestMigrateDown(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()
	conn := database.Conn()

	_, err := conn.ExecContext(ctx, `
		INSERT INTO local_storage (key, value, updated_at) VALUES ('elfateh_cart', '[]', 1)
	`)
	require.NoError(t, err)

	// Revert the index migration only.
	err = MigrateDown(ctx, conn, 1)
	require.NoError(t, err)

	var count int
	err = conn.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='index' AND name='idx_local_storage_updated_at'",
	).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 0, count, "index should be dropped")

	err = conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM local_storage").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count, "stored row should be preserved")

	// Re-applying brings the index back.
	require.NoError(t, migrateUp(ctx, conn))
	applied, latest, err := database.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, latest, applied)
}

func TestMigrateDown_InvalidN(t *testing.T) {
	conn := openRawConn(t)
	ctx := context.Background()

	err := MigrateDown(ctx, conn, 0)
	require.Error(t, err, "n=0 should fail")

	err = MigrateDown(ctx, conn, -1)
	require.Error(t, err, "n=-1 should fail")
}

func TestMigrateDown_TooMany(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	migrations, err := loadMigrations()
	require.NoError(t, err)

	err = MigrateDown(ctx, database.Conn(), len(migrations)+1)
	assert.Error(t, err, "requesting more down migrations than applied should fail")
}

func TestLoadMigrations_Valid(t *testing.T) {
	migrations, err := loadMigrations()
	require.NoError(t, err)
	require.NotEmpty(t, migrations)

	// Verify ascending version order.
	for i := 1; i < len(migrations); i++ {
		assert.Greater(t, migrations[i].Version, migrations[i-1].Version,
			"migrations should be in ascending version order")
	}

	// Every migration must have both up and down SQL.
	for _, m := range migrations {
		assert.NotEmpty(t, m.UpSQL, "migration %d up SQL should not be empty", m.Version)
		assert.NotEmpty(t, m.DownSQL, "migration %d down SQL should not be empty", m.Version)
		assert.NotEmpty(t, m.Name, "migration %d name should not be empty", m.Version)
	}
}

func TestMigratorLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		files fstest.MapFS
	}{
		{
			name: "missing down",
			files: fstest.MapFS{
				"m/0001_a.up.sql": {Data: []byte("SELECT 1")},
			},
		},
		{
			name: "missing up",
			files: fstest.MapFS{
				"m/0001_a.down.sql": {Data: []byte("SELECT 1")},
			},
		},
		{
			name: "duplicate version",
			files: fstest.MapFS{
				"m/0001_a.up.sql":   {Data: []byte("SELECT 1")},
				"m/0001_b.up.sql":   {Data: []byte("SELECT 1")},
				"m/0001_a.down.sql": {Data: []byte("SELECT 1")},
			},
		},
		{
			name: "bad name",
			files: fstest.MapFS{
				"m/first.up.sql": {Data: []byte("SELECT 1")},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := migrator{fsys: tt.files, dir: "m", logger: zerolog.Nop()}
			_, err := m.load()
			assert.Error(t, err)
		})
	}
}

func TestMigratorUp_CustomFS(t *testing.T) {
	files := fstest.MapFS{
		"m/0002_b.up.sql":   {Data: []byte("CREATE TABLE b (id INTEGER)")},
		"m/0002_b.down.sql": {Data: []byte("DROP TABLE b")},
		"m/0001_a.up.sql":   {Data: []byte("CREATE TABLE a (id INTEGER)")},
		"m/0001_a.down.sql": {Data: []byte("DROP TABLE a")},
	}
	m := migrator{fsys: files, dir: "m", logger: zerolog.Nop()}
	conn := openRawConn(t)
	ctx := context.Background()

	migrations, err := m.load()
	require.NoError(t, err)
	require.Len(t, migrations, 2)
	assert.Equal(t, 1, migrations[0].Version)

	require.NoError(t, m.up(ctx, conn))
	_, err = conn.ExecContext(ctx, "SELECT 1 FROM b LIMIT 0")
	require.NoError(t, err)

	require.NoError(t, m.down(ctx, conn, 1))
	_, err = conn.ExecContext(ctx, "SELECT 1 FROM b LIMIT 0")
	require.Error(t, err, "newest migration is reverted first")
	_, err = conn.ExecContext(ctx, "SELECT 1 FROM a LIMIT 0")
	require.NoError(t, err)
}

func TestParseFilename(t *testing.T) {
	tests := []struct {
		filename    string
		wantVersion int
		wantName    string
		wantUp      bool
		wantErr     bool
	}{
		{"0001_initial.up.sql", 1, "initial", true, false},
		{"0001_initial.down.sql", 1, "initial", false, false},
		{"0002_local_storage_updated_at.up.sql", 2, "local_storage_updated_at", true, false},
		{"0100_big_version.down.sql", 100, "big_version", false, false},
		{"bad.sql", 0, "", false, true},
		{"0001_initial.sql", 0, "", false, true},
		{"0000_zero.up.sql", 0, "", false, true},
		{"-1_negative.up.sql", 0, "", false, true},
		{"abc_notnumber.up.sql", 0, "", false, true},
		{"0001_.up.sql", 0, "", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			f, err := parseFilename(tt.filename)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantVersion, f.version)
			assert.Equal(t, tt.wantName, f.name)
			assert.Equal(t, tt.wantUp, f.up)
		})
	}
}
