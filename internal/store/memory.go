package store

import (
	"context"
	"sort"
	"sync"

	"startiq/internal/core"
)

// memoryBackend keeps documents in process memory. Used in tests and for
// local development.
type memoryBackend struct {
	mu          sync.RWMutex
	collections map[string]map[string][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(clock core.Clock) *DocumentStore {
	return newDocumentStore(&memoryBackend{
		collections: make(map[string]map[string][]byte),
	}, clock)
}

func (m *memoryBackend) name() string { return "memory" }

func (m *memoryBackend) read(ctx context.Context, collection, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	raw, ok := m.collections[collection][key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), raw...), nil
}

func (m *memoryBackend) mutate(ctx context.Context, collection, key string, fn func(current []byte) ([]byte, error)) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	docs, ok := m.collections[collection]
	if !ok {
		docs = make(map[string][]byte)
		m.collections[collection] = docs
	}

	var current []byte
	if raw, ok := docs[key]; ok {
		current = append([]byte(nil), raw...)
	}

	next, err := fn(current)
	if err != nil {
		return err
	}
	docs[key] = next
	return nil
}

func (m *memoryBackend) scan(ctx context.Context, collection string) ([]record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	docs := m.collections[collection]
	records := make([]record, 0, len(docs))
	for key, raw := range docs {
		records = append(records, record{key: key, data: append([]byte(nil), raw...)})
	}
	sort.Slice(records, func(i, j int) bool { return records[i].key < records[j].key })
	return records, nil
}

func (m *memoryBackend) ping(ctx context.Context) error { return ctx.Err() }

func (m *memoryBackend) close() error { return nil }
