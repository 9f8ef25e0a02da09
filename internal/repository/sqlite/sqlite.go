// Package sqlite implements the repository interfaces on an embedded SQLite
// database.
//
// modernc.org/sqlite is a pure-Go translation of SQLite — no CGo, no C
// compiler, works everywhere Go works. The database is a single file (or
// ":memory:" in tests), accessed through database/sql's connection pool.
package sqlite

import (
	"database/sql"
	"fmt"

	// Blank import: the driver registers itself with database/sql under the
	// name "sqlite" in its init().
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB pool and implements the repository interfaces.
// Construct with New, close with Close; there is no ambient global handle —
// the server owns the lifecycle and injects *DB where it is needed.
type DB struct {
	conn *sql.DB
}

// New opens (or creates) the database at dbPath and runs migrations.
// Use ":memory:" for a throwaway in-memory database in tests.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// A single pooled connection. SQLite allows one writer at a time
	// anyway, and the PRAGMAs below are per-connection: with one connection
	// they hold for every query. This also makes ":memory:" behave, since
	// each new connection to ":memory:" would otherwise get its own empty
	// database.
	conn.SetMaxOpenConns(1)

	// sql.Open is lazy; Ping forces a real connection so a bad path fails
	// here instead of on the first query.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL lets reads proceed while a write is in flight — needed for a web
	// server where concurrent requests share the one database file.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Foreign keys are off by default in SQLite. We depend on them: deleting
	// a student must cascade to marks and nullify the linked user reference.
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the connection pool, flushing the WAL.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the schema. CREATE TABLE IF NOT EXISTS keeps this
// idempotent, so it is safe to run on every startup.
//
// Referential actions carry the deletion semantics:
//   - marks.student_id  ON DELETE CASCADE  → deleting a student removes
//     every mark they own
//   - users.student_id  ON DELETE SET NULL → the linked login account
//     survives, with its profile reference cleared
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS students (
			id         TEXT PRIMARY KEY,
			name       TEXT NOT NULL,
			age        INTEGER NOT NULL,
			major      TEXT NOT NULL,
			grade      TEXT NOT NULL CHECK (grade IN ('A','B','C','D','F')),
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_students_created_at ON students(created_at);
	`)
	if err != nil {
		return fmt.Errorf("creating students table: %w", err)
	}

	// email and student_id are nullable UNIQUE columns: SQLite allows any
	// number of NULLs in a UNIQUE column, so "unique when present" is
	// exactly what the constraint gives us.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			username      TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			email         TEXT UNIQUE,
			role          TEXT NOT NULL CHECK (role IN ('admin','student')),
			student_id    TEXT UNIQUE REFERENCES students(id) ON DELETE SET NULL,
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS marks (
			id             TEXT PRIMARY KEY,
			student_id     TEXT NOT NULL REFERENCES students(id) ON DELETE CASCADE,
			test_name      TEXT NOT NULL,
			subject        TEXT NOT NULL,
			marks_obtained INTEGER NOT NULL,
			total_marks    INTEGER NOT NULL,
			test_date      TEXT NOT NULL,
			created_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_marks_student_id ON marks(student_id);
	`)
	if err != nil {
		return fmt.Errorf("creating marks table: %w", err)
	}

	return nil
}
