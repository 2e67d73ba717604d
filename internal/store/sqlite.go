package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"startiq/internal/core"

	_ "github.com/mattn/go-sqlite3"
)

// sqliteBackend stores documents in a single local SQLite table.
type sqliteBackend struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore opens (and creates if needed) a SQLite document store at path.
func NewSQLiteStore(path string, clock core.Clock) (*DocumentStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One writer at a time keeps read-modify-write transactions serialized.
	db.SetMaxOpenConns(1)

	b := &sqliteBackend{db: db, path: path}
	if err := b.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return newDocumentStore(b, clock), nil
}

// initialize creates the documents table
func (s *sqliteBackend) initialize() error {
	documentsTable := `
	CREATE TABLE IF NOT EXISTS documents (
		collection TEXT NOT NULL,
		key TEXT NOT NULL,
		data TEXT NOT NULL,
		updated_at DATETIME NOT NULL,
		PRIMARY KEY (collection, key)
	);`

	if _, err := s.db.Exec(documentsTable); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}
	return nil
}

func (s *sqliteBackend) name() string { return "sqlite" }

func (s *sqliteBackend) read(ctx context.Context, collection, key string) ([]byte, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM documents WHERE collection = ? AND key = ?`,
		collection, key,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return []byte(data), nil
}

func (s *sqliteBackend) mutate(ctx context.Context, collection, key string, fn func(current []byte) ([]byte, error)) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var current []byte
	var data string
	err = tx.QueryRowContext(ctx,
		`SELECT data FROM documents WHERE collection = ? AND key = ?`,
		collection, key,
	).Scan(&data)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return err
	default:
		current = []byte(data)
	}

	next, err := fn(current)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
	INSERT INTO documents (collection, key, data, updated_at)
	VALUES (?, ?, ?, ?)
	ON CONFLICT (collection, key) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		collection, key, string(next), time.Now().UTC(),
	)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (s *sqliteBackend) scan(ctx context.Context, collection string) ([]record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key, data FROM documents WHERE collection = ? ORDER BY key`,
		collection,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []record
	for rows.Next() {
		var key, data string
		if err := rows.Scan(&key, &data); err != nil {
			return nil, err
		}
		records = append(records, record{key: key, data: []byte(data)})
	}
	return records, rows.Err()
}

func (s *sqliteBackend) ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *sqliteBackend) close() error { return s.db.Close() }
