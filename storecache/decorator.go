package storecache

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-scholarship-catalog/cache"
	"github.com/goliatone/go-scholarship-catalog/internal/logctx"
	"github.com/goliatone/go-scholarship-catalog/normalize"
	"github.com/goliatone/go-scholarship-catalog/query"
	"github.com/goliatone/go-scholarship-catalog/store"
)

// ErrReadOnly is returned by write methods when the base store cannot write.
var ErrReadOnly = errors.New("storecache: base store is read-only")

var (
	_ store.ReadWriter  = (*CachedStore)(nil)
	_ store.Incrementer = (*CachedStore)(nil)
	_ query.Resolver    = (*CachedStore)(nil)
	_ store.Pager       = (*cachedPager)(nil)
)

// CachedStore decorates a base store with a lookup cache.
type CachedStore struct {
	base  store.Store
	cache cache.CacheService
}

type cachedPager struct {
	*CachedStore
	pager store.Pager
}

// New wraps base. The returned value implements store.Pager when base does.
func New(base store.Store, svc cache.CacheService) store.ReadWriter {
	c := &CachedStore{base: base, cache: svc}
	if p, ok := base.(store.Pager); ok {
		return &cachedPager{CachedStore: c, pager: p}
	}
	return c
}

// Unwrap returns the base store.
func (c *CachedStore) Unwrap() store.Store { return c.base }

// Count passes through to the base store.
func (c *CachedStore) Count(ctx context.Context, table string, preds []query.Predicate) (int, error) {
	return c.base.Count(ctx, table, preds)
}

// Select passes through to the base store.
func (c *CachedStore) Select(ctx context.Context, table string, preds []query.Predicate, opts store.SelectOptions) ([]store.Row, error) {
	return c.base.Select(ctx, table, preds, opts)
}

// SelectAndCount passes through to the base pager.
func (p *cachedPager) SelectAndCount(ctx context.Context, table string, preds []query.Predicate, opts store.SelectOptions) ([]store.Row, int, error) {
	return p.pager.SelectAndCount(ctx, table, preds, opts)
}

// FindOne returns the first row of table whose field equals value, with
// caching. Lookups that fail, including store.ErrNotFound, are not cached.
func (c *CachedStore) FindOne(ctx context.Context, table, field string, value any) (store.Row, error) {
	key := cache.LookupKey(table, field, keyValue(value))
	row, err := cache.GetOrFetch(ctx, c.cache, key, func(ctx context.Context) (store.Row, error) {
		return c.base.FindOne(ctx, table, field, value)
	})
	if err != nil {
		return nil, err
	}
	return clone(row), nil
}

// ResolveSlug implements query.Resolver.
func (c *CachedStore) ResolveSlug(ctx context.Context, table, slug string) (any, bool, error) {
	row, err := c.FindOne(ctx, table, "slug", slug)
	if errors.Is(err, store.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	id, ok := normalize.Record(row).Lookup("id", normalize.LegacyIDKey)
	return id, ok, nil
}

// Insert writes through to the base store and drops the table's lookups.
func (c *CachedStore) Insert(ctx context.Context, table string, row store.Row) (store.Row, error) {
	w, err := c.writer()
	if err != nil {
		return nil, err
	}
	out, err := w.Insert(ctx, table, row)
	if err == nil {
		c.invalidate(ctx, table)
	}
	return out, err
}

// Update writes through to the base store and drops the table's lookups.
func (c *CachedStore) Update(ctx context.Context, table, id string, row store.Row) (store.Row, error) {
	w, err := c.writer()
	if err != nil {
		return nil, err
	}
	out, err := w.Update(ctx, table, id, row)
	if err == nil {
		c.invalidate(ctx, table)
	}
	return out, err
}

// Delete writes through to the base store and drops the table's lookups.
func (c *CachedStore) Delete(ctx context.Context, table, id string) error {
	w, err := c.writer()
	if err != nil {
		return err
	}
	err = w.Delete(ctx, table, id)
	if err == nil {
		c.invalidate(ctx, table)
	}
	return err
}

// Increment passes through to the base store and drops only the cached
// lookup of the incremented row; slug resolutions of the table stay cached.
func (c *CachedStore) Increment(ctx context.Context, table, field string, value any, column string) error {
	const op = "storecache.CachedStore.Increment"

	inc, ok := c.base.(store.Incrementer)
	if !ok {
		return ErrReadOnly
	}
	if err := inc.Increment(ctx, table, field, value, column); err != nil {
		return err
	}
	key := cache.LookupKey(table, field, keyValue(value))
	if err := c.cache.Delete(ctx, key); err != nil {
		logctx.From(ctx).Warn("lookup cache invalidation failed", "op", op, "key", key, "error", err)
	}
	return nil
}

func (c *CachedStore) writer() (store.Writer, error) {
	w, ok := c.base.(store.Writer)
	if !ok {
		return nil, ErrReadOnly
	}
	return w, nil
}

func (c *CachedStore) invalidate(ctx context.Context, table string) {
	const op = "storecache.CachedStore.invalidate"

	if err := c.cache.DeleteByPrefix(ctx, cache.TablePrefix(table)); err != nil {
		logctx.From(ctx).Warn("lookup cache invalidation failed", "op", op, "table", table, "error", err)
	}
}

func keyValue(v any) string {
	if s, ok := normalize.IDString(v); ok {
		return s
	}
	return fmt.Sprint(v)
}

func clone(r store.Row) store.Row {
	if r == nil {
		return nil
	}
	cp := make(store.Row, len(r))
	for k, v := range r {
		cp[k] = v
	}
	return cp
}
