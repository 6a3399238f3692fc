package cacheinfra

import (
	"context"

	"github.com/puzpuzpuz/xsync/v3"
)

var _ ResponseStore = (*MemoryStore)(nil)

// MemoryStore keeps entries in a concurrent map for the life of the process.
// Expired entries stay until the same key is written again.
type MemoryStore struct {
	entries *xsync.MapOf[string, Entry]
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: xsync.NewMapOf[string, Entry]()}
}

// Load implements ResponseStore.
func (m *MemoryStore) Load(_ context.Context, key string) (Entry, bool, error) {
	e, ok := m.entries.Load(key)
	return e, ok, nil
}

// Store implements ResponseStore. Last writer wins.
func (m *MemoryStore) Store(_ context.Context, key string, entry Entry) error {
	entry.Key = key
	m.entries.Store(key, entry)
	return nil
}

// Len implements ResponseStore.
func (m *MemoryStore) Len(context.Context) (int, error) {
	return m.entries.Size(), nil
}
