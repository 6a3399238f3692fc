package catalog_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/goliatone/go-scholarship-catalog/pkg/testsupport"
	"github.com/goliatone/go-scholarship-catalog/query"
	"github.com/goliatone/go-scholarship-catalog/store"
	"github.com/goliatone/go-scholarship-catalog/store/memstore"
)

func seeded(t *testing.T) *memstore.Store {
	t.Helper()
	s := memstore.New()
	testsupport.SeedCatalog(s)
	return s
}

// plainStore hides the Pager and Writer methods of the wrapped store and
// counts FindOne calls per table and id.
type plainStore struct {
	base store.Store

	mu    sync.Mutex
	finds map[string]int
}

func newPlainStore(base store.Store) *plainStore {
	return &plainStore{base: base, finds: map[string]int{}}
}

func (p *plainStore) Count(ctx context.Context, table string, preds []query.Predicate) (int, error) {
	return p.base.Count(ctx, table, preds)
}

func (p *plainStore) Select(ctx context.Context, table string, preds []query.Predicate, opts store.SelectOptions) ([]store.Row, error) {
	return p.base.Select(ctx, table, preds, opts)
}

func (p *plainStore) FindOne(ctx context.Context, table, field string, value any) (store.Row, error) {
	p.mu.Lock()
	p.finds[table]++
	p.mu.Unlock()
	return p.base.FindOne(ctx, table, field, value)
}

func (p *plainStore) findCount(table string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.finds[table]
}

var errStoreDown = errors.New("store down")

type failingStore struct{ store.Store }

func (failingStore) Count(context.Context, string, []query.Predicate) (int, error) {
	return 0, errStoreDown
}

func (failingStore) Select(context.Context, string, []query.Predicate, store.SelectOptions) ([]store.Row, error) {
	return nil, errStoreDown
}

// slowStore blocks selects until the context ends.
type slowStore struct{ store.Store }

func (slowStore) Select(ctx context.Context, _ string, _ []query.Predicate, _ store.SelectOptions) ([]store.Row, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}
