// Package store provides the keyed document store that holds profiles,
// insight records and deal notes.
//
// Documents are JSON objects addressed by (collection, key). Every backend
// persists the same normalized JSON shape, so callers never alias stored
// values and switching backends does not change what is read back.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"startiq/internal/config"
	"startiq/internal/core"
)

// ErrNoDocument is returned by Update when the target document is missing.
var ErrNoDocument = errors.New("no document to update")

// Document is the result of a read. Data is nil when Exists is false.
type Document struct {
	ID     string
	Exists bool
	Data   map[string]any
}

// SetOptions controls Set.
type SetOptions struct {
	Merge bool // deep-merge into the existing document instead of replacing it
}

// Store is the generic keyed persistent store.
type Store interface {
	Get(ctx context.Context, collection, key string) (Document, error)
	Set(ctx context.Context, collection, key string, value any, opts SetOptions) error
	Update(ctx context.Context, collection, key string, patch map[string]any) error
	Query(ctx context.Context, collection, fieldPath string, value any, limit int) ([]Document, error)
	Ping(ctx context.Context) error
	Close() error
}

// record is one raw document as held by a backend.
type record struct {
	key  string
	data []byte
}

// backend persists raw JSON documents. mutate must apply fn atomically for a
// single document; fn receives nil when the document does not exist.
type backend interface {
	name() string
	read(ctx context.Context, collection, key string) ([]byte, error)
	mutate(ctx context.Context, collection, key string, fn func(current []byte) ([]byte, error)) error
	scan(ctx context.Context, collection string) ([]record, error)
	ping(ctx context.Context) error
	close() error
}

// querier is implemented by backends that can filter natively.
type querier interface {
	query(ctx context.Context, collection string, path []string, value any, limit int) ([]record, error)
}

// DocumentStore implements Store on top of a backend.
type DocumentStore struct {
	backend backend
	clock   core.Clock
}

func newDocumentStore(b backend, clock core.Clock) *DocumentStore {
	if clock == nil {
		clock = core.SystemClock{}
	}
	return &DocumentStore{backend: b, clock: clock}
}

// Open creates the store selected by cfg.Backend.
func Open(ctx context.Context, cfg config.Store, clock core.Clock) (*DocumentStore, error) {
	switch cfg.Backend {
	case config.BackendMemory, "":
		return NewMemoryStore(clock), nil
	case config.BackendSQLite:
		return NewSQLiteStore(cfg.SQLite.Path, clock)
	case config.BackendPostgres:
		return NewPostgresStore(ctx, cfg.Postgres, clock)
	case config.BackendRedis:
		return NewRedisStore(ctx, cfg.Redis, clock)
	default:
		return nil, fmt.Errorf("unknown store backend: %s", cfg.Backend)
	}
}

// Backend returns the backend name.
func (s *DocumentStore) Backend() string {
	return s.backend.name()
}

// Get reads one document.
func (s *DocumentStore) Get(ctx context.Context, collection, key string) (Document, error) {
	if err := validateAddress(collection, key); err != nil {
		return Document{}, err
	}

	raw, err := s.backend.read(ctx, collection, key)
	if err != nil {
		return Document{}, fmt.Errorf("failed to read %s/%s: %w", collection, key, err)
	}
	if raw == nil {
		return Document{ID: key}, nil
	}

	data, err := decode(raw)
	if err != nil {
		return Document{}, fmt.Errorf("failed to decode %s/%s: %w", collection, key, err)
	}
	return Document{ID: key, Exists: true, Data: data}, nil
}

// Set writes value, which must encode to a JSON object. With Merge, nested
// maps are merged into the existing document.
func (s *DocumentStore) Set(ctx context.Context, collection, key string, value any, opts SetOptions) error {
	if err := validateAddress(collection, key); err != nil {
		return err
	}

	data, err := normalize(value, s.clock.Now())
	if err != nil {
		return fmt.Errorf("failed to encode %s/%s: %w", collection, key, err)
	}

	err = s.backend.mutate(ctx, collection, key, func(current []byte) ([]byte, error) {
		if !opts.Merge || current == nil {
			return encode(data)
		}
		existing, err := decode(current)
		if err != nil {
			return nil, err
		}
		return encode(deepMerge(existing, data))
	})
	if err != nil {
		return fmt.Errorf("failed to write %s/%s: %w", collection, key, err)
	}
	return nil
}

// Update patches an existing document. Keys may be dotted field paths.
func (s *DocumentStore) Update(ctx context.Context, collection, key string, patch map[string]any) error {
	if err := validateAddress(collection, key); err != nil {
		return err
	}

	data, err := normalize(patch, s.clock.Now())
	if err != nil {
		return fmt.Errorf("failed to encode patch for %s/%s: %w", collection, key, err)
	}

	err = s.backend.mutate(ctx, collection, key, func(current []byte) ([]byte, error) {
		if current == nil {
			return nil, ErrNoDocument
		}
		existing, err := decode(current)
		if err != nil {
			return nil, err
		}
		return encode(applyPatch(existing, data))
	})
	if err != nil {
		return fmt.Errorf("failed to update %s/%s: %w", collection, key, err)
	}
	return nil
}

// Query returns documents whose value at fieldPath equals value, ordered by
// key. A limit of zero or less returns every match.
func (s *DocumentStore) Query(ctx context.Context, collection, fieldPath string, value any, limit int) ([]Document, error) {
	if collection == "" || fieldPath == "" {
		return nil, fmt.Errorf("collection and field path are required")
	}
	path := strings.Split(fieldPath, ".")

	want, err := normalizeValue(value)
	if err != nil {
		return nil, fmt.Errorf("failed to encode query value: %w", err)
	}

	var records []record
	if q, ok := s.backend.(querier); ok {
		records, err = q.query(ctx, collection, path, want, limit)
	} else {
		records, err = s.scanMatching(ctx, collection, path, want, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query %s on %s: %w", collection, fieldPath, err)
	}

	docs := make([]Document, 0, len(records))
	for _, r := range records {
		data, err := decode(r.data)
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s/%s: %w", collection, r.key, err)
		}
		docs = append(docs, Document{ID: r.key, Exists: true, Data: data})
	}
	return docs, nil
}

func (s *DocumentStore) scanMatching(ctx context.Context, collection string, path []string, want any, limit int) ([]record, error) {
	all, err := s.backend.scan(ctx, collection)
	if err != nil {
		return nil, err
	}

	var matched []record
	for _, r := range all {
		data, err := decode(r.data)
		if err != nil {
			return nil, err
		}
		got, ok := lookupPath(data, path)
		if !ok || !valuesEqual(got, want) {
			continue
		}
		matched = append(matched, r)
		if limit > 0 && len(matched) >= limit {
			break
		}
	}
	return matched, nil
}

// Ping checks that the backend is reachable.
func (s *DocumentStore) Ping(ctx context.Context) error {
	return s.backend.ping(ctx)
}

// Close releases backend resources.
func (s *DocumentStore) Close() error {
	return s.backend.close()
}

func validateAddress(collection, key string) error {
	if collection == "" {
		return fmt.Errorf("collection is required")
	}
	if key == "" {
		return fmt.Errorf("document key is required")
	}
	return nil
}
