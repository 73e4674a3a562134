package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore stores snapshots as JSON values so every server instance
// reads the same versions.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore creates a store whose keys start with prefix. A zero ttl
// keeps snapshots until they are overwritten.
func NewRedisStore(client *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	if prefix == "" {
		prefix = "cashflow"
	}
	return &RedisStore{client: client, prefix: prefix, ttl: ttl}
}

func (r *RedisStore) versionKey() string { return r.prefix + ":snapshot:version" }
func (r *RedisStore) latestKey() string  { return r.prefix + ":snapshot:latest" }
func (r *RedisStore) snapshotKey(v int64) string {
	return fmt.Sprintf("%s:snapshot:%d", r.prefix, v)
}

func (r *RedisStore) Put(ctx context.Context, snap *Snapshot) (*Snapshot, error) {
	version, err := r.client.Incr(ctx, r.versionKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("snapshot: next version: %w", err)
	}
	stored := snap.Clone()
	stored.Version = version

	data, err := json.Marshal(stored)
	if err != nil {
		return nil, fmt.Errorf("snapshot: marshal: %w", err)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.snapshotKey(version), data, r.ttl)
		pipe.Set(ctx, r.latestKey(), version, r.ttl)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("snapshot: store version %d: %w", version, err)
	}
	return stored, nil
}

func (r *RedisStore) Latest(ctx context.Context) (*Snapshot, error) {
	raw, err := r.client.Get(ctx, r.latestKey()).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("snapshot: read latest: %w", err)
	}
	version, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("snapshot: bad latest pointer %q: %w", raw, err)
	}

	snap, err := r.Get(ctx, version)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrNoSnapshot
	}
	return snap, err
}

func (r *RedisStore) Get(ctx context.Context, version int64) (*Snapshot, error) {
	data, err := r.client.Get(ctx, r.snapshotKey(version)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("snapshot: read version %d: %w", version, err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("snapshot: decode version %d: %w", version, err)
	}
	return &snap, nil
}
