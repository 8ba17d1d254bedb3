// Package store persists household records in a single SQLite file. It
// owns the schema, the CRUD statements, substring search and the
// aggregate statistics queries; caching and business rules live above it
// in the manager.
package store

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

// Store wraps the SQLite database connection.
type Store struct {
	conn *sql.DB
	path string
}

// Open opens or creates the database file at path and ensures the schema
// exists. Opening is idempotent with respect to the schema.
func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on", path)

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, storageErr("open database", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, storageErr("open database", err)
	}

	// One logical reader/writer, so a pool of one connection is enough.
	// It also keeps per-connection pragmas in force for every statement.
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)

	// LIKE folds ASCII case by default; search is contracted to match
	// substrings as stored.
	if _, err := conn.Exec("PRAGMA case_sensitive_like = ON"); err != nil {
		conn.Close()
		return nil, storageErr("configure connection", err)
	}

	s := &Store{conn: conn, path: path}
	if err := s.initSchema(); err != nil {
		conn.Close()
		return nil, err
	}

	log.Debug().Str("path", path).Msg("Store opened")
	return s, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

func (s *Store) initSchema() error {
	_, err := s.conn.Exec(`
		CREATE TABLE IF NOT EXISTS households (
			id TEXT PRIMARY KEY,
			head_name TEXT NOT NULL,
			id_number TEXT NOT NULL,
			address TEXT NOT NULL,
			phone TEXT,
			household_type TEXT NOT NULL,
			registration_date TEXT NOT NULL
		)
	`)
	if err != nil {
		return storageErr("create households table", err)
	}

	_, err = s.conn.Exec(`
		CREATE TABLE IF NOT EXISTS members (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			household_id TEXT NOT NULL,
			name TEXT NOT NULL,
			id_number TEXT NOT NULL,
			relationship TEXT NOT NULL,
			birth_date TEXT NOT NULL,
			gender TEXT NOT NULL,
			education TEXT NOT NULL,
			occupation TEXT,
			FOREIGN KEY (household_id) REFERENCES households (id)
		)
	`)
	if err != nil {
		return storageErr("create members table", err)
	}

	return nil
}

// Optimize runs SQLite's PRAGMA optimize to refresh planner stats.
func (s *Store) Optimize() error {
	if _, err := s.conn.Exec("PRAGMA optimize"); err != nil {
		return storageErr("optimize database", err)
	}
	return nil
}

// Vacuum rebuilds the database file to reclaim unused space.
func (s *Store) Vacuum() error {
	if _, err := s.conn.Exec("VACUUM"); err != nil {
		return storageErr("vacuum database", err)
	}
	return nil
}
