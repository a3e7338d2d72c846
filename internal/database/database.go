package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/enem-prep/backend/internal/config"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Connect opens the primary Postgres database.
func Connect(cfg config.PostgresConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	return db, nil
}

// Migrate applies every pending embedded migration.
func Migrate(db *sql.DB) error {
	src, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return fmt.Errorf("init migrations: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

const localSchema = `
CREATE TABLE IF NOT EXISTS items (
	id               TEXT PRIMARY KEY,
	area             TEXT NOT NULL,
	difficulty       TEXT NOT NULL,
	irt_a            REAL,
	irt_b            REAL,
	irt_c            REAL,
	topic            TEXT NOT NULL DEFAULT '',
	competencies     TEXT NOT NULL DEFAULT '[]',
	year             INTEGER,
	booklet_position INTEGER,
	content_ref      TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_items_area_difficulty ON items(area, difficulty);
CREATE INDEX IF NOT EXISTS idx_items_year_position ON items(year, booklet_position);
`

// OpenLocal opens (creating if needed) the SQLite item bank at path.
// ":memory:" gives a throwaway bank.
func OpenLocal(path string) (*sql.DB, error) {
	if path != ":memory:" && !strings.HasPrefix(path, "file:") {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create bank directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open local bank: %w", err)
	}
	// One connection: SQLite serialises writers, and each connection to
	// ":memory:" would otherwise see its own empty database.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(localSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create local schema: %w", err)
	}
	return db, nil
}
