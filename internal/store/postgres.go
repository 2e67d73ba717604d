package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"startiq/internal/config"
	"startiq/internal/core"

	"github.com/lib/pq" // Postgres driver
)

// postgresBackend stores documents as JSONB rows.
type postgresBackend struct {
	db *sql.DB
}

// NewPostgresStore connects to Postgres, applies pending migrations and
// returns a document store.
func NewPostgresStore(ctx context.Context, cfg config.PostgresConfig, clock core.Clock) (*DocumentStore, error) {
	db, err := OpenPostgres(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if err := NewSchema(db).Apply(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return newDocumentStore(&postgresBackend{db: db}, clock), nil
}

// OpenPostgres opens and verifies a pooled Postgres connection.
func OpenPostgres(ctx context.Context, cfg config.PostgresConfig) (*sql.DB, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("postgres DSN is required")
	}

	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	maxOpen, maxIdle := cfg.MaxOpenConns, cfg.MaxIdleConns
	if maxOpen <= 0 {
		maxOpen = 25
	}
	if maxIdle <= 0 {
		maxIdle = 5
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(config.ParseDuration(cfg.ConnMaxLifetime, 5*time.Minute))

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

func (p *postgresBackend) name() string { return "postgres" }

func (p *postgresBackend) read(ctx context.Context, collection, key string) ([]byte, error) {
	var data []byte
	err := p.db.QueryRowContext(ctx,
		`SELECT data FROM documents WHERE collection = $1 AND key = $2`,
		collection, key,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (p *postgresBackend) mutate(ctx context.Context, collection, key string, fn func(current []byte) ([]byte, error)) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	// A JSON null placeholder gives concurrent writers of a new document a
	// row to lock. It disappears on rollback.
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO documents (collection, key, data)
		VALUES ($1, $2, 'null'::jsonb)
		ON CONFLICT (collection, key) DO NOTHING
	`, collection, key); err != nil {
		return err
	}

	var current []byte
	err = tx.QueryRowContext(ctx,
		`SELECT data FROM documents WHERE collection = $1 AND key = $2 FOR UPDATE`,
		collection, key,
	).Scan(&current)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return err
	}
	if string(current) == "null" {
		current = nil
	}

	next, err := fn(current)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO documents (collection, key, data)
		VALUES ($1, $2, $3::jsonb)
		ON CONFLICT (collection, key) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()
	`, collection, key, string(next))
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (p *postgresBackend) scan(ctx context.Context, collection string) ([]record, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT key, data FROM documents WHERE collection = $1 ORDER BY key`,
		collection,
	)
	if err != nil {
		return nil, err
	}
	return scanRecords(rows)
}

// query filters with JSONB containment (index-backed) plus an exact path
// comparison.
func (p *postgresBackend) query(ctx context.Context, collection string, path []string, value any, limit int) ([]record, error) {
	var contains any = value
	for i := len(path) - 1; i >= 0; i-- {
		contains = map[string]any{path[i]: contains}
	}
	containsJSON, err := json.Marshal(contains)
	if err != nil {
		return nil, err
	}
	valueJSON, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}

	rows, err := p.db.QueryContext(ctx, `
		SELECT key, data FROM documents
		WHERE collection = $1 AND data @> $2::jsonb AND data #> $3::text[] = $4::jsonb
		ORDER BY key
		LIMIT NULLIF($5::int, 0)
	`, collection, string(containsJSON), pq.Array(path), string(valueJSON), max(limit, 0))
	if err != nil {
		return nil, err
	}
	return scanRecords(rows)
}

func scanRecords(rows *sql.Rows) ([]record, error) {
	defer rows.Close()

	var records []record
	for rows.Next() {
		var r record
		if err := rows.Scan(&r.key, &r.data); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func (p *postgresBackend) ping(ctx context.Context) error { return p.db.PingContext(ctx) }

func (p *postgresBackend) close() error { return p.db.Close() }
