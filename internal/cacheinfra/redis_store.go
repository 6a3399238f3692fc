package cacheinfra

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"
)

var _ ResponseStore = (*RedisStore)(nil)

// RedisStore keeps entries in Redis encoded with msgpack. Keys are hashed
// with xxhash under Prefix; Expire bounds how long Redis holds an entry and
// should be at least the longest TTL the cache serves.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
	expire time.Duration
}

// NewRedisStore wraps an existing client.
func NewRedisStore(client redis.UniversalClient, prefix string, expire time.Duration) *RedisStore {
	return &RedisStore{client: client, prefix: prefix, expire: expire}
}

// HashKey returns the Redis key for a fingerprint.
func (r *RedisStore) HashKey(key string) string {
	return r.prefix + strconv.FormatUint(xxhash.Sum64String(key), 16)
}

// Load implements ResponseStore. A hash collision is reported as a miss.
func (r *RedisStore) Load(ctx context.Context, key string) (Entry, bool, error) {
	raw, err := r.client.Get(ctx, r.HashKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("redis get: %w", err)
	}
	e, err := DecodeEntry(raw)
	if err != nil {
		return Entry{}, false, err
	}
	if e.Key != key {
		return Entry{}, false, nil
	}
	return e, true, nil
}

// Store implements ResponseStore.
func (r *RedisStore) Store(ctx context.Context, key string, entry Entry) error {
	entry.Key = key
	raw, err := EncodeEntry(entry)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.HashKey(key), raw, r.expire).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Len counts keys under the prefix.
func (r *RedisStore) Len(ctx context.Context) (int, error) {
	n := 0
	iter := r.client.Scan(ctx, 0, r.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		n++
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("redis scan: %w", err)
	}
	return n, nil
}

// EncodeEntry serializes an entry with msgpack.
func EncodeEntry(e Entry) ([]byte, error) {
	raw, err := msgpack.Marshal(&e)
	if err != nil {
		return nil, fmt.Errorf("encode entry: %w", err)
	}
	return raw, nil
}

// DecodeEntry is the inverse of EncodeEntry.
func DecodeEntry(raw []byte) (Entry, error) {
	var e Entry
	if err := msgpack.Unmarshal(raw, &e); err != nil {
		return Entry{}, fmt.Errorf("decode entry: %w", err)
	}
	return e, nil
}
