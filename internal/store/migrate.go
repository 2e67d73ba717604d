package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"time"

	"startiq/internal/logger"
)

//go:embed migrations/*.sql
var schemaFS embed.FS

// schemaLockID serializes schema changes across processes sharing a database.
const schemaLockID = 0x5743_1A01

// SchemaStep is one embedded SQL file, named "<version>_<description>.sql".
type SchemaStep struct {
	Version     int
	Description string
	SQL         string
}

// SchemaVersion reports whether a step has been applied to the database.
type SchemaVersion struct {
	Version     int        `json:"version"`
	Description string     `json:"description"`
	Applied     bool       `json:"applied"`
	AppliedAt   *time.Time `json:"appliedAt,omitempty"`
}

// Schema applies the document store schema to a Postgres database.
type Schema struct {
	db  *sql.DB
	log *slog.Logger
}

// NewSchema returns a Schema bound to db.
func NewSchema(db *sql.DB) *Schema {
	return &Schema{db: db, log: logger.Get()}
}

// Apply runs every step the database has not seen yet. All steps share one
// transaction, so a failure leaves the schema where it was.
func (s *Schema) Apply(ctx context.Context) error {
	steps, err := SchemaSteps()
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin schema transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, schemaLockID); err != nil {
		return fmt.Errorf("failed to lock schema: %w", err)
	}
	if err := createVersionTable(ctx, tx); err != nil {
		return err
	}
	applied, err := appliedVersions(ctx, tx)
	if err != nil {
		return err
	}

	todo := pendingSteps(steps, applied)
	if len(todo) == 0 {
		s.log.Debug("Schema is up to date")
		return nil
	}

	for _, step := range todo {
		s.log.Info("Applying schema step", "version", step.Version, "description", step.Description)
		if _, err := tx.ExecContext(ctx, step.SQL); err != nil {
			return fmt.Errorf("schema step %d (%s): %w", step.Version, step.Description, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO store_schema_versions (version, description) VALUES ($1, $2)`,
			step.Version, step.Description,
		); err != nil {
			return fmt.Errorf("failed to record schema step %d: %w", step.Version, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit schema: %w", err)
	}
	s.log.Info("Schema updated", "applied", len(todo))
	return nil
}

// Versions lists every embedded step with its applied state.
func (s *Schema) Versions(ctx context.Context) ([]SchemaVersion, error) {
	steps, err := SchemaSteps()
	if err != nil {
		return nil, err
	}
	if err := createVersionTable(ctx, s.db); err != nil {
		return nil, err
	}
	applied, err := appliedVersions(ctx, s.db)
	if err != nil {
		return nil, err
	}

	out := make([]SchemaVersion, 0, len(steps))
	for _, step := range steps {
		v := SchemaVersion{Version: step.Version, Description: step.Description}
		if at, ok := applied[step.Version]; ok {
			v.Applied = true
			v.AppliedAt = &at
		}
		out = append(out, v)
	}
	return out, nil
}

// SchemaSteps reads the embedded steps in version order. Files that do not
// carry a numeric version prefix are rejected.
func SchemaSteps() ([]SchemaStep, error) {
	files, err := fs.Glob(schemaFS, "migrations/*.sql")
	if err != nil {
		return nil, fmt.Errorf("failed to list schema files: %w", err)
	}

	steps := make([]SchemaStep, 0, len(files))
	for _, file := range files {
		name := strings.TrimSuffix(strings.TrimPrefix(file, "migrations/"), ".sql")
		prefix, rest, ok := strings.Cut(name, "_")
		version, convErr := strconv.Atoi(prefix)
		if !ok || convErr != nil {
			return nil, fmt.Errorf("schema file %s has no version prefix", file)
		}

		body, err := schemaFS.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read schema file %s: %w", file, err)
		}
		steps = append(steps, SchemaStep{
			Version:     version,
			Description: strings.ReplaceAll(rest, "_", " "),
			SQL:         string(body),
		})
	}

	slices.SortFunc(steps, func(a, b SchemaStep) int { return a.Version - b.Version })
	for i := 1; i < len(steps); i++ {
		if steps[i].Version == steps[i-1].Version {
			return nil, fmt.Errorf("duplicate schema version %d", steps[i].Version)
		}
	}
	return steps, nil
}

func pendingSteps(steps []SchemaStep, applied map[int]time.Time) []SchemaStep {
	var todo []SchemaStep
	for _, step := range steps {
		if _, ok := applied[step.Version]; !ok {
			todo = append(todo, step)
		}
	}
	return todo
}

// execQuerier is satisfied by *sql.DB and *sql.Tx.
type execQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func createVersionTable(ctx context.Context, q execQuerier) error {
	_, err := q.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS store_schema_versions (
			version     INT PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	if err != nil {
		return fmt.Errorf("failed to create schema version table: %w", err)
	}
	return nil
}

func appliedVersions(ctx context.Context, q execQuerier) (map[int]time.Time, error) {
	rows, err := q.QueryContext(ctx, `SELECT version, applied_at FROM store_schema_versions`)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema versions: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]time.Time)
	for rows.Next() {
		var (
			version int
			at      time.Time
		)
		if err := rows.Scan(&version, &at); err != nil {
			return nil, err
		}
		applied[version] = at
	}
	return applied, rows.Err()
}
