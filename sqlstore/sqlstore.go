// Package sqlstore keeps Global Contexts in a SQLite database, one row per
// named context.
package sqlstore

import (
	"bytes"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/PavelStransky/expressions"
)

const schema = `
CREATE TABLE IF NOT EXISTS contexts (
	name TEXT PRIMARY KEY,
	data BLOB NOT NULL,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
)`

// Store is a SQLite database of stored contexts.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection, so that ":memory:" is a single database.
	db.SetMaxOpenConns(1)
	s, err := New(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// New creates a Store over an open database, creating its table if needed.
func New(db *sql.DB) (*Store, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Names returns the names of the stored contexts.
func (s *Store) Names() ([]string, error) {
	rows, err := s.db.Query("SELECT name FROM contexts ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Port returns the port of the context with the given name.
func (s *Store) Port(name string) *Port {
	return &Port{s: s, name: name}
}

// Port is an expressions.Port storing one context as a row.
type Port struct {
	s    *Store
	name string
}

// Open reads the row. A missing row is fs.ErrNotExist.
func (p *Port) Open() (io.ReadCloser, error) {
	var data []byte
	err := p.s.db.QueryRow("SELECT data FROM contexts WHERE name = ?", p.name).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("context %q: %w", p.name, fs.ErrNotExist)
	}
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// Create returns a writer which replaces the row when it is closed.
func (p *Port) Create() (io.WriteCloser, error) {
	return &rowWriter{p: p}, nil
}

// Delete removes the row.
func (p *Port) Delete() error {
	_, err := p.s.db.Exec("DELETE FROM contexts WHERE name = ?", p.name)
	return err
}

type rowWriter struct {
	p   *Port
	buf bytes.Buffer
}

func (w *rowWriter) Write(b []byte) (int, error) {
	return w.buf.Write(b)
}

func (w *rowWriter) Close() error {
	_, err := w.p.s.db.Exec(
		`INSERT INTO contexts (name, data, updated_at)
		 VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(name) DO UPDATE SET
		 data = excluded.data,
		 updated_at = CURRENT_TIMESTAMP`,
		w.p.name, w.buf.Bytes(),
	)
	return err
}

var _ expressions.Port = (*Port)(nil)
