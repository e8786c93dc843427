// Package db provides database access and repository implementations for
// the call recording metadata store.
package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// DB wraps the SQL database connection and the recording metadata
// repository. The audio bytes themselves never touch this database;
// internal/storage owns them on disk.
type DB struct {
	conn   *sql.DB
	dbPath string

	Recordings *RecordingRepository
}

// New creates a new database connection and initializes the recordings
// repository.
func New(dbPath string) (*DB, error) {
	// Enable WAL mode and foreign keys via connection string
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000", dbPath)

	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Set connection pool settings for SQLite
	conn.SetMaxOpenConns(1) // SQLite handles one writer at a time
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := &DB{
		conn:   conn,
		dbPath: dbPath,
	}
	db.Recordings = NewRecordingRepository(conn)

	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// Migrate brings the recordings schema up to date. Each embedded
// NNNN_name.up.sql file carries its version in the numeric prefix; a
// version is applied at most once, tracked in schema_migrations, so
// restarting the service against an existing data directory is safe.
func (db *DB) Migrate() error {
	if _, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	applied, err := db.appliedVersions()
	if err != nil {
		return err
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read embedded migrations: %w", err)
	}

	var pending []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			pending = append(pending, entry.Name())
		}
	}
	// Version order is lexical order thanks to the zero-padded prefix.
	sort.Strings(pending)

	for _, name := range pending {
		version, err := strconv.Atoi(strings.SplitN(name, "_", 2)[0])
		if err != nil {
			return fmt.Errorf("migration %s: no numeric version prefix: %w", name, err)
		}
		if applied[version] {
			continue
		}
		if err := db.applyMigration(version, name); err != nil {
			return err
		}
		slog.Info("Applied recordings schema migration", "version", version, "file", name)
	}

	return nil
}

// appliedVersions reads the set of already-applied migration versions.
func (db *DB) appliedVersions() (map[int]bool, error) {
	rows, err := db.conn.Query(`SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("read applied migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan migration version: %w", err)
		}
		applied[v] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read applied migrations: %w", err)
	}
	return applied, nil
}

// applyMigration executes one migration file and records its version,
// both inside a single transaction: a half-applied migration never
// marks itself done.
func (db *DB) applyMigration(version int, name string) error {
	content, err := migrationsFS.ReadFile("migrations/" + name)
	if err != nil {
		return fmt.Errorf("read migration %s: %w", name, err)
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("begin migration %s: %w", name, err)
	}
	defer tx.Rollback()

	// database/sql executes one statement per call; the files hold a
	// statement per semicolon.
	for _, stmt := range strings.Split(string(content), ";") {
		if stmt = strings.TrimSpace(stmt); stmt == "" {
			continue
		}
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
	}
	if _, err := tx.Exec(`INSERT INTO schema_migrations (version) VALUES (?)`, version); err != nil {
		return fmt.Errorf("record migration %s: %w", name, err)
	}
	return tx.Commit()
}

// Conn returns the underlying database connection for advanced operations
func (db *DB) Conn() *sql.DB {
	return db.conn
}
