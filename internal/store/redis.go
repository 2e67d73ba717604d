package store

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"startiq/internal/config"
	"startiq/internal/core"

	"github.com/redis/go-redis/v9"
)

// maxWatchRetries bounds optimistic-lock retries for one mutation.
const maxWatchRetries = 10

// redisBackend stores each document as a JSON string under
// "<prefix>:<collection>:<key>" and tracks keys per collection in a set.
type redisBackend struct {
	client *redis.Client
	prefix string
}

// NewRedisStore connects to Redis and returns a document store.
func NewRedisStore(ctx context.Context, cfg config.RedisConfig, clock core.Clock) (*DocumentStore, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("redis URL is required")
	}

	opt, err := redis.ParseURL(cfg.URL)
	if err != nil {
		opt = &redis.Options{Addr: cfg.URL}
	}
	client := redis.NewClient(opt)

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = "startiq"
	}
	return newDocumentStore(&redisBackend{client: client, prefix: prefix}, clock), nil
}

func (r *redisBackend) name() string { return "redis" }

func (r *redisBackend) docKey(collection, key string) string {
	return r.prefix + ":" + collection + ":" + key
}

func (r *redisBackend) indexKey(collection string) string {
	return r.prefix + ":" + collection + ":_keys"
}

func (r *redisBackend) read(ctx context.Context, collection, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, r.docKey(collection, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// mutate uses WATCH so the read-modify-write is atomic per document.
func (r *redisBackend) mutate(ctx context.Context, collection, key string, fn func(current []byte) ([]byte, error)) error {
	docKey := r.docKey(collection, key)

	txf := func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, docKey).Bytes()
		if errors.Is(err, redis.Nil) {
			current = nil
		} else if err != nil {
			return err
		}

		next, err := fn(current)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, docKey, next, 0)
			pipe.SAdd(ctx, r.indexKey(collection), key)
			return nil
		})
		return err
	}

	for i := 0; i < maxWatchRetries; i++ {
		err := r.client.Watch(ctx, txf, docKey)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("concurrent modification of %s", docKey)
}

func (r *redisBackend) scan(ctx context.Context, collection string) ([]record, error) {
	keys, err := r.client.SMembers(ctx, r.indexKey(collection)).Result()
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, nil
	}
	sort.Strings(keys)

	docKeys := make([]string, len(keys))
	for i, key := range keys {
		docKeys[i] = r.docKey(collection, key)
	}

	values, err := r.client.MGet(ctx, docKeys...).Result()
	if err != nil {
		return nil, err
	}

	records := make([]record, 0, len(values))
	for i, v := range values {
		s, ok := v.(string)
		if !ok {
			continue
		}
		records = append(records, record{key: keys[i], data: []byte(s)})
	}
	return records, nil
}

func (r *redisBackend) ping(ctx context.Context) error { return r.client.Ping(ctx).Err() }

func (r *redisBackend) close() error { return r.client.Close() }
