package cacheinfra

import (
	"context"
	"time"
)

// Entry is one stored response body. Key is kept alongside the payload so a
// backend that hashes keys can detect collisions.
type Entry struct {
	Key        string    `msgpack:"k"`
	Payload    []byte    `msgpack:"p"`
	InsertedAt time.Time `msgpack:"t"`
}

// Fresh reports whether the entry is younger than ttl at now.
func (e Entry) Fresh(now time.Time, ttl time.Duration) bool {
	return now.Sub(e.InsertedAt) < ttl
}

// ResponseStore is the key/value backend behind the response cache. A miss
// is reported with ok=false and a nil error.
type ResponseStore interface {
	Load(ctx context.Context, key string) (entry Entry, ok bool, err error)
	Store(ctx context.Context, key string, entry Entry) error
	Len(ctx context.Context) (int, error)
}
