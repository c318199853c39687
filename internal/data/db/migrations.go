package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/storefront/internal/core/logging"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migration is one schema version with its forward and reverse SQL.
type Migration struct {
	Version int
	Name    string
	UpSQL   string
	DownSQL string
}

// migrationFile is the parsed form of "NNNN_name.up.sql" / "NNNN_name.down.sql".
type migrationFile struct {
	version int
	name    string
	up      bool
}

// migrator applies the SQL files found in dir of fsys and tracks them in
// the schema_migrations table.
type migrator struct {
	fsys   fs.FS
	dir    string
	logger zerolog.Logger
}

func newMigrator() migrator {
	return migrator{fsys: migrationsFS, dir: "migrations", logger: logging.Component("db")}
}

func parseFilename(filename string) (migrationFile, error) {
	var f migrationFile
	base, ok := strings.CutSuffix(filename, ".up.sql")
	if ok {
		f.up = true
	} else if base, ok = strings.CutSuffix(filename, ".down.sql"); !ok {
		return f, fmt.Errorf("expected .up.sql or .down.sql suffix, got %q", filename)
	}

	num, name, found := strings.Cut(base, "_")
	if !found || name == "" {
		return f, fmt.Errorf("expected format NNNN_name.{up,down}.sql")
	}

	version, err := strconv.Atoi(num)
	if err != nil {
		return f, fmt.Errorf("version %q is not a valid integer: %w", num, err)
	}
	if version <= 0 {
		return f, fmt.Errorf("version must be positive, got %d", version)
	}

	f.version, f.name = version, name
	return f, nil
}

// load reads every migration file and pairs ups with downs, sorted by version.
func (m migrator) load() ([]Migration, error) {
	entries, err := fs.ReadDir(m.fsys, m.dir)
	if err != nil {
		return nil, fmt.Errorf("reading migrations directory: %w", err)
	}

	byVersion := make(map[int]*Migration)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		f, err := parseFilename(entry.Name())
		if err != nil {
			return nil, fmt.Errorf("invalid migration filename %q: %w", entry.Name(), err)
		}
		content, err := fs.ReadFile(m.fsys, path.Join(m.dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", entry.Name(), err)
		}

		mig, ok := byVersion[f.version]
		if !ok {
			mig = &Migration{Version: f.version, Name: f.name}
			byVersion[f.version] = mig
		}

		slot, direction := &mig.DownSQL, "down"
		if f.up {
			slot, direction = &mig.UpSQL, "up"
		}
		if *slot != "" {
			return nil, fmt.Errorf("duplicate %s migration for version %04d", direction, f.version)
		}
		*slot = string(content)
	}

	out := make([]Migration, 0, len(byVersion))
	for _, mig := range byVersion {
		switch {
		case mig.UpSQL == "":
			return nil, fmt.Errorf("migration %04d has down file but no up file", mig.Version)
		case mig.DownSQL == "":
			return nil, fmt.Errorf("migration %04d has up file but no down file", mig.Version)
		}
		out = append(out, *mig)
	}
	slices.SortFunc(out, func(a, b Migration) int { return a.Version - b.Version })
	return out, nil
}

func loadMigrations() ([]Migration, error) {
	return newMigrator().load()
}

// prepare loads the migrations and the set of versions already applied.
func (m migrator) prepare(ctx context.Context, conn *sql.DB) ([]Migration, map[int]bool, error) {
	migrations, err := m.load()
	if err != nil {
		return nil, nil, fmt.Errorf("loading migrations: %w", err)
	}

	_, err = conn.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    INTEGER PRIMARY KEY,
			name       TEXT NOT NULL,
			applied_at INTEGER NOT NULL
		)
	`)
	if err != nil {
		return nil, nil, fmt.Errorf("creating schema_migrations table: %w", err)
	}

	applied, err := appliedVersions(ctx, conn)
	if err != nil {
		return nil, nil, err
	}
	return migrations, applied, nil
}

// up applies every pending migration in version order.
func (m migrator) up(ctx context.Context, conn *sql.DB) error {
	migrations, applied, err := m.prepare(ctx, conn)
	if err != nil {
		return err
	}

	for _, mig := range migrations {
		if applied[mig.Version] {
			continue
		}
		m.logger.Debug().Int("version", mig.Version).Str("name", mig.Name).Msg("applying migration")
		err := step(ctx, conn, mig.UpSQL,
			"INSERT INTO schema_migrations (version, name, applied_at) VALUES (?, ?, ?)",
			mig.Version, mig.Name, time.Now().UnixNano())
		if err != nil {
			return fmt.Errorf("migration %04d (%s): %w", mig.Version, mig.Name, err)
		}
	}
	return nil
}

// down reverts the last n applied migrations, newest first.
func (m migrator) down(ctx context.Context, conn *sql.DB, n int) error {
	if n <= 0 {
		return fmt.Errorf("n must be positive, got %d", n)
	}

	migrations, applied, err := m.prepare(ctx, conn)
	if err != nil {
		return err
	}

	var revert []Migration
	for _, mig := range slices.Backward(migrations) {
		if applied[mig.Version] {
			revert = append(revert, mig)
		}
	}
	if n > len(revert) {
		return fmt.Errorf("requested %d down migrations but only %d are applied", n, len(revert))
	}

	for _, mig := range revert[:n] {
		m.logger.Info().Int("version", mig.Version).Str("name", mig.Name).Msg("reverting migration")
		err := step(ctx, conn, mig.DownSQL, "DELETE FROM schema_migrations WHERE version = ?", mig.Version)
		if err != nil {
			return fmt.Errorf("revert migration %04d (%s): %w", mig.Version, mig.Name, err)
		}
	}
	return nil
}

// step runs body and the bookkeeping statement in one transaction.
func step(ctx context.Context, conn *sql.DB, body, record string, args ...any) error {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, body); err != nil {
		return fmt.Errorf("executing SQL: %w", err)
	}
	if _, err := tx.ExecContext(ctx, record, args...); err != nil {
		return fmt.Errorf("recording migration: %w", err)
	}
	return tx.Commit()
}

func appliedVersions(ctx context.Context, conn *sql.DB) (map[int]bool, error) {
	rows, err := conn.QueryContext(ctx, "SELECT version FROM schema_migrations")
	if err != nil {
		return nil, fmt.Errorf("querying applied versions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	applied := make(map[int]bool)
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scanning version: %w", err)
		}
		applied[v] = true
	}
	return applied, rows.Err()
}

func migrateUp(ctx context.Context, conn *sql.DB) error {
	return newMigrator().up(ctx, conn)
}

// MigrateDown reverts the last n applied migrations in reverse version order.
func MigrateDown(ctx context.Context, conn *sql.DB, n int) error {
	return newMigrator().down(ctx, conn, n)
}

// SchemaVersion returns the highest applied migration version and the
// highest version embedded in the binary.
func (db *DB) SchemaVersion(ctx context.Context) (applied, latest int, err error) {
	migrations, err := loadMigrations()
	if err != nil {
		return 0, 0, fmt.Errorf("loading migrations: %w", err)
	}
	if len(migrations) > 0 {
		latest = migrations[len(migrations)-1].Version
	}

	versions, err := appliedVersions(ctx, db.conn)
	if err != nil {
		return 0, latest, err
	}
	for v := range versions {
		applied = max(applied, v)
	}
	return applied, latest, nil
}
