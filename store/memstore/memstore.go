// Package memstore is an in-process store.ReadWriter used for tests, demos and
// the "memory" driver. Rows keep whatever key convention they were seeded
// with; predicates match a column by its exact name or by the snake_case form
// of a row key.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goliatone/go-scholarship-catalog/normalize"
	"github.com/goliatone/go-scholarship-catalog/query"
	"github.com/goliatone/go-scholarship-catalog/store"
)

var (
	_ store.ReadWriter  = (*Store)(nil)
	_ store.Pager       = (*Store)(nil)
	_ store.Incrementer = (*Store)(nil)
)

// Stats counts calls per operation.
type Stats struct {
	Count  int64
	Select int64
	Find   int64
	Writes int64
}

// Store keeps rows per table behind a RWMutex.
type Store struct {
	mu     sync.RWMutex
	tables map[string][]store.Row
	nextID int64

	counts  atomic.Int64
	selects atomic.Int64
	finds   atomic.Int64
	writes  atomic.Int64
}

// New returns an empty store holding every table in store.Tables.
func New() *Store {
	s := &Store{tables: make(map[string][]store.Row)}
	for _, t := range store.Tables {
		s.tables[t] = nil
	}
	return s
}

// Seed appends rows to table as-is. Rows without an identifier get one.
func (s *Store) Seed(table string, rows ...store.Row) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range rows {
		cp := clone(r)
		if id, ok := normalize.Record(cp).ID("id"); ok {
			if n, err := strconv.ParseInt(id, 10, 64); err == nil && n > s.nextID {
				s.nextID = n
			}
		} else {
			s.nextID++
			cp["id"] = s.nextID
		}
		s.tables[table] = append(s.tables[table], cp)
	}
}

// Stats returns a snapshot of the call counters.
func (s *Store) Stats() Stats {
	return Stats{
		Count:  s.counts.Load(),
		Select: s.selects.Load(),
		Find:   s.finds.Load(),
		Writes: s.writes.Load(),
	}
}

func (s *Store) rows(table string) ([]store.Row, error) {
	rows, ok := s.tables[table]
	if !ok {
		return nil, fmt.Errorf("%w: %s", store.ErrUnknownTable, table)
	}
	return rows, nil
}

// Count implements store.Store.
func (s *Store) Count(ctx context.Context, table string, preds []query.Predicate) (int, error) {
	s.counts.Add(1)
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.rows(table)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, r := range rows {
		if Match(r, preds) {
			n++
		}
	}
	return n, nil
}

// Select implements store.Store.
func (s *Store) Select(ctx context.Context, table string, preds []query.Predicate, opts store.SelectOptions) ([]store.Row, error) {
	s.selects.Add(1)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched, err := s.filter(table, preds)
	if err != nil {
		return nil, err
	}
	return window(sortRows(matched, opts.Sort), opts), nil
}

// SelectAndCount implements store.Pager.
func (s *Store) SelectAndCount(ctx context.Context, table string, preds []query.Predicate, opts store.SelectOptions) ([]store.Row, int, error) {
	s.selects.Add(1)
	s.counts.Add(1)
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched, err := s.filter(table, preds)
	if err != nil {
		return nil, 0, err
	}
	return window(sortRows(matched, opts.Sort), opts), len(matched), nil
}

// FindOne implements store.Store.
func (s *Store) FindOne(ctx context.Context, table, field string, value any) (store.Row, error) {
	s.finds.Add(1)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.rows(table)
	if err != nil {
		return nil, err
	}
	pred := []query.Predicate{query.Equals(field, value)}
	for _, r := range rows {
		if Match(r, pred) {
			return clone(r), nil
		}
	}
	return nil, store.ErrNotFound
}

// Insert implements store.Writer.
func (s *Store) Insert(ctx context.Context, table string, row store.Row) (store.Row, error) {
	s.writes.Add(1)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.rows(table); err != nil {
		return nil, err
	}
	cp := clone(row)
	s.nextID++
	cp["id"] = s.nextID
	s.tables[table] = append(s.tables[table], cp)
	return clone(cp), nil
}

// Update implements store.Writer.
func (s *Store) Update(ctx context.Context, table, id string, row store.Row) (store.Row, error) {
	s.writes.Add(1)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.rows(table)
	if err != nil {
		return nil, err
	}
	i := indexOf(rows, id)
	if i < 0 {
		return nil, store.ErrNotFound
	}
	for k, v := range row {
		if k == "id" {
			continue
		}
		rows[i][k] = v
	}
	return clone(rows[i]), nil
}

// Delete implements store.Writer.
func (s *Store) Delete(ctx context.Context, table, id string) error {
	s.writes.Add(1)
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.rows(table)
	if err != nil {
		return err
	}
	i := indexOf(rows, id)
	if i < 0 {
		return store.ErrNotFound
	}
	s.tables[table] = append(rows[:i:i], rows[i+1:]...)
	return nil
}

// Increment implements store.Incrementer. The column keeps the key it was
// seeded under; an absent column starts from zero.
func (s *Store) Increment(ctx context.Context, table, field string, value any, col string) error {
	s.writes.Add(1)
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.rows(table)
	if err != nil {
		return err
	}
	pred := []query.Predicate{query.Equals(field, value)}
	found := false
	for _, r := range rows {
		if !Match(r, pred) {
			continue
		}
		key := columnKey(r, col)
		r[key] = int64(normalize.Record{key: r[key]}.Int(key, 0) + 1)
		found = true
	}
	if !found {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) filter(table string, preds []query.Predicate) ([]store.Row, error) {
	rows, err := s.rows(table)
	if err != nil {
		return nil, err
	}
	var out []store.Row
	for _, r := range rows {
		if Match(r, preds) {
			out = append(out, r)
		}
	}
	return out, nil
}

func indexOf(rows []store.Row, id string) int {
	for i, r := range rows {
		if rid, ok := normalize.Record(r).ID("id"); ok && rid == id {
			return i
		}
	}
	return -1
}

// Match reports whether row satisfies every predicate.
func Match(row store.Row, preds []query.Predicate) bool {
	for _, p := range preds {
		if !matchOne(row, p) {
			return false
		}
	}
	return true
}

func matchOne(row store.Row, p query.Predicate) bool {
	switch p.Operator {
	case query.OpILike:
		term := strings.ToLower(fmt.Sprint(p.Value))
		for _, f := range p.Fields {
			v, ok := column(row, f)
			if !ok {
				continue
			}
			if s, ok := v.(string); ok && strings.Contains(strings.ToLower(s), term) {
				return true
			}
		}
		return false
	case query.OpFlag:
		v, ok := column(row, p.Field())
		if !ok {
			return false
		}
		got, ok := normalize.ToBool(v)
		want, _ := normalize.ToBool(p.Value)
		return ok && got == want
	default:
		v, ok := column(row, p.Field())
		if !ok {
			return false
		}
		return scalar(v) == scalar(p.Value)
	}
}

// column finds field by exact key, then by the snake_case form of row keys,
// then "_id" for "id".
func column(row store.Row, field string) (any, bool) {
	if v, ok := row[field]; ok && v != nil {
		return v, true
	}
	for k, v := range row {
		if v != nil && normalize.Snake(k) == field {
			return v, true
		}
	}
	if field == "id" {
		if v, ok := row[normalize.LegacyIDKey]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func columnKey(row store.Row, field string) string {
	if _, ok := row[field]; ok {
		return field
	}
	for k := range row {
		if normalize.Snake(k) == field {
			return k
		}
	}
	return field
}

func scalar(v any) string {
	if s, ok := normalize.IDString(v); ok {
		return s
	}
	return fmt.Sprint(v)
}

func sortRows(rows []store.Row, s query.Sort) []store.Row {
	if s.Field == "" {
		return rows
	}
	out := append([]store.Row(nil), rows...)
	sort.SliceStable(out, func(i, j int) bool {
		a, aok := column(out[i], s.Field)
		b, bok := column(out[j], s.Field)
		switch {
		case !aok && !bok:
			return false
		case !aok:
			return false
		case !bok:
			return true
		}
		c := compare(a, b)
		if s.Desc {
			return c > 0
		}
		return c < 0
	})
	return out
}

func compare(a, b any) int {
	if at, ok := a.(time.Time); ok {
		if bt, ok := b.(time.Time); ok {
			return at.Compare(bt)
		}
	}
	af, aerr := strconv.ParseFloat(fmt.Sprint(a), 64)
	bf, berr := strconv.ParseFloat(fmt.Sprint(b), 64)
	if aerr == nil && berr == nil {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		}
		return 0
	}
	return strings.Compare(strings.ToLower(fmt.Sprint(a)), strings.ToLower(fmt.Sprint(b)))
}

func window(rows []store.Row, opts store.SelectOptions) []store.Row {
	if opts.Offset < 0 || opts.Offset >= len(rows) {
		return []store.Row{}
	}
	rows = rows[opts.Offset:]
	if opts.Limit > 0 && opts.Limit < len(rows) {
		rows = rows[:opts.Limit]
	}
	out := make([]store.Row, len(rows))
	for i, r := range rows {
		out[i] = clone(r)
	}
	return out
}

func clone(r store.Row) store.Row {
	cp := make(store.Row, len(r))
	for k, v := range r {
		cp[k] = v
	}
	return cp
}
