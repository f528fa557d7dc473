package database

import (
	"cmp"
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

var migrationName = regexp.MustCompile(`^(\d{3})_(.+)\.sql$`)

const (
	upMarker   = "-- +migrate Up"
	downMarker = "-- +migrate Down"
)

// ErrNothingToRollBack is returned by MigrateDown on an empty schema.
var ErrNothingToRollBack = errors.New("no migrations to roll back")

// Migration is one embedded NNN_description.sql file.
type Migration struct {
	Version     int
	Description string
	UpSQL       string
	DownSQL     string
}

// Migrator applies the embedded schema migrations in version order and
// records each one in schema_migrations.
type Migrator struct {
	db         *DB
	migrations []Migration
}

// NewMigrator loads the embedded migrations and makes sure the version
// table exists.
func NewMigrator(db *DB) (*Migrator, error) {
	migrations, err := loadMigrations(migrationsFS)
	if err != nil {
		return nil, fmt.Errorf("loading migrations: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version     INTEGER PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at  TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
		)`)
	if err != nil {
		return nil, fmt.Errorf("creating migrations table: %w", err)
	}

	return &Migrator{db: db, migrations: migrations}, nil
}

// Migrate brings db up to the latest schema version.
func Migrate(ctx context.Context, db *DB) error {
	m, err := NewMigrator(db)
	if err != nil {
		return err
	}
	_, err = m.MigrateUp(ctx)
	return err
}

func loadMigrations(fsys fs.FS) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, "migrations")
	if err != nil {
		return nil, fmt.Errorf("reading migrations directory: %w", err)
	}

	var out []Migration
	for _, entry := range entries {
		match := migrationName.FindStringSubmatch(entry.Name())
		if entry.IsDir() || match == nil {
			slog.Warn("skipping invalid migration filename", "name", entry.Name())
			continue
		}

		content, err := fs.ReadFile(fsys, "migrations/"+entry.Name())
		if err != nil {
			return nil, fmt.Errorf("reading migration %s: %w", entry.Name(), err)
		}

		version, _ := strconv.Atoi(match[1])
		up, down := parseMigration(string(content))
		out = append(out, Migration{
			Version:     version,
			Description: strings.ReplaceAll(match[2], "_", " "),
			UpSQL:       up,
			DownSQL:     down,
		})
	}

	slices.SortFunc(out, func(a, b Migration) int { return cmp.Compare(a.Version, b.Version) })
	return out, nil
}

// parseMigration splits a file into its Up and Down sections. Content
// without markers is all Up.
//
//	-- +migrate Up
//	CREATE TABLE ...;
//	-- +migrate Down
//	DROP TABLE ...;
func parseMigration(content string) (up, down string) {
	upIdx := strings.Index(content, upMarker)
	if upIdx == -1 {
		return strings.TrimSpace(content), ""
	}

	rest := content[upIdx+len(upMarker):]
	if downIdx := strings.Index(rest, downMarker); downIdx != -1 {
		return strings.TrimSpace(rest[:downIdx]), strings.TrimSpace(rest[downIdx+len(downMarker):])
	}
	return strings.TrimSpace(rest), ""
}

// CurrentVersion returns the highest applied version, or 0.
func (m *Migrator) CurrentVersion(ctx context.Context) (int, error) {
	var version int
	err := m.db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("querying current version: %w", err)
	}
	return version, nil
}

// PendingMigrations returns the migrations newer than the current version.
func (m *Migrator) PendingMigrations(ctx context.Context) ([]Migration, error) {
	current, err := m.CurrentVersion(ctx)
	if err != nil {
		return nil, err
	}

	var pending []Migration
	for _, mig := range m.migrations {
		if mig.Version > current {
			pending = append(pending, mig)
		}
	}
	return pending, nil
}

// MigrateUp applies every pending migration, each in its own transaction,
// and returns the ones applied.
func (m *Migrator) MigrateUp(ctx context.Context) ([]Migration, error) {
	pending, err := m.PendingMigrations(ctx)
	if err != nil {
		return nil, err
	}
	if len(pending) == 0 {
		slog.Debug("credential store schema is up to date")
		return nil, nil
	}

	var applied []Migration
	for _, mig := range pending {
		slog.Info("applying migration", "version", mig.Version, "description", mig.Description)

		err := m.run(ctx, mig.UpSQL,
			"INSERT INTO schema_migrations (version, description) VALUES (?, ?)", mig.Version, mig.Description)
		if err != nil {
			return applied, fmt.Errorf("migration %d failed: %w", mig.Version, err)
		}
		applied = append(applied, mig)
	}

	slog.Info("migrations complete", "applied", len(applied), "version", applied[len(applied)-1].Version)
	return applied, nil
}

// MigrateDown rolls back the latest applied migration and returns it.
func (m *Migrator) MigrateDown(ctx context.Context) (Migration, error) {
	current, err := m.CurrentVersion(ctx)
	if err != nil {
		return Migration{}, err
	}
	if current == 0 {
		return Migration{}, ErrNothingToRollBack
	}

	i := slices.IndexFunc(m.migrations, func(mig Migration) bool { return mig.Version == current })
	if i == -1 {
		return Migration{}, fmt.Errorf("migration %d not found", current)
	}
	mig := m.migrations[i]
	if mig.DownSQL == "" {
		return mig, fmt.Errorf("migration %d has no rollback SQL", current)
	}

	slog.Info("rolling back migration", "version", mig.Version, "description", mig.Description)

	if err := m.run(ctx, mig.DownSQL, "DELETE FROM schema_migrations WHERE version = ?", mig.Version); err != nil {
		return mig, fmt.Errorf("rollback %d failed: %w", mig.Version, err)
	}
	return mig, nil
}

// run executes script and then the bookkeeping statement in one transaction.
func (m *Migrator) run(ctx context.Context, script, record string, args ...any) error {
	return m.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		for _, stmt := range splitStatements(script) {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("executing statement: %w\nSQL: %s", err, stmt)
			}
		}
		if _, err := tx.ExecContext(ctx, record, args...); err != nil {
			return fmt.Errorf("recording migration: %w", err)
		}
		return nil
	})
}

// splitStatements splits a script on semicolons outside quoted strings.
func splitStatements(script string) []string {
	var (
		statements []string
		current    strings.Builder
		quote      rune
		prev       rune
	)

	flush := func() {
		if stmt := strings.TrimSpace(current.String()); stmt != "" {
			statements = append(statements, stmt)
		}
		current.Reset()
	}

	for _, ch := range script {
		switch {
		case quote != 0:
			current.WriteRune(ch)
			if ch == quote && prev != '\\' {
				quote = 0
			}
		case ch == '\'' || ch == '"':
			quote = ch
			current.WriteRune(ch)
		case ch == ';':
			flush()
		default:
			current.WriteRune(ch)
		}
		prev = ch
	}
	flush()

	return statements
}
