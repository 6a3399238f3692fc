// Package bunstore implements store.ReadWriter on top of bun for Postgres,
// SQLite and MySQL.
package bunstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/mysqldialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/goliatone/go-scholarship-catalog/normalize"
	"github.com/goliatone/go-scholarship-catalog/query"
	"github.com/goliatone/go-scholarship-catalog/store"
)

var (
	_ store.ReadWriter = (*Store)(nil)
	_ store.Pager      = (*Store)(nil)
	_ store.Migrator   = (*Store)(nil)
	_ store.Closer     = (*Store)(nil)
)

// Open connects to driver ("postgres", "sqlite" or "mysql") and returns a bun
// DB with the matching dialect.
func Open(driver, dsn string) (*bun.DB, error) {
	switch driver {
	case "postgres":
		sqldb, err := sql.Open("postgres", dsn)
		if err != nil {
			return nil, fmt.Errorf("bunstore: open postgres: %w", err)
		}
		return bun.NewDB(sqldb, pgdialect.New()), nil
	case "sqlite":
		sqldb, err := sql.Open("sqlite3", dsn)
		if err != nil {
			return nil, fmt.Errorf("bunstore: open sqlite: %w", err)
		}
		// every connection to ":memory:" is a separate database
		sqldb.SetMaxOpenConns(1)
		return bun.NewDB(sqldb, sqlitedialect.New()), nil
	case "mysql":
		sqldb, err := sql.Open("mysql", dsn)
		if err != nil {
			return nil, fmt.Errorf("bunstore: open mysql: %w", err)
		}
		return bun.NewDB(sqldb, mysqldialect.New()), nil
	default:
		return nil, fmt.Errorf("bunstore: unsupported driver %q", driver)
	}
}

// Store reads and writes map rows through bun.
type Store struct {
	db *bun.DB
}

// New wraps db.
func New(db *bun.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying bun handle.
func (s *Store) DB() *bun.DB { return s.db }

// Close implements store.Closer.
func (s *Store) Close() error { return s.db.Close() }

// Migrate creates the catalog tables when they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	for _, m := range schemaModels() {
		if _, err := s.db.NewCreateTable().Model(m).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("bunstore: create table %T: %w", m, err)
		}
	}
	return nil
}

func (s *Store) selectQuery(table string, preds []query.Predicate) (*bun.SelectQuery, error) {
	if !store.KnownTable(table) {
		return nil, fmt.Errorf("%w: %s", store.ErrUnknownTable, table)
	}
	q := s.db.NewSelect().Table(table)
	return apply(q, Criteria(s.db.Dialect().Name(), preds)), nil
}

func paginate(q *bun.SelectQuery, opts store.SelectOptions) *bun.SelectQuery {
	if opts.Sort.Field != "" {
		dir := "ASC"
		if opts.Sort.Desc {
			dir = "DESC"
		}
		q = q.OrderExpr("? "+dir, bun.Ident(opts.Sort.Field))
	}
	q = q.OrderExpr("? ASC", bun.Ident("id"))
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	return q
}

// Count implements store.Store.
func (s *Store) Count(ctx context.Context, table string, preds []query.Predicate) (int, error) {
	q, err := s.selectQuery(table, preds)
	if err != nil {
		return 0, err
	}
	n, err := q.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("bunstore: count %s: %w", table, err)
	}
	return n, nil
}

// Select implements store.Store.
func (s *Store) Select(ctx context.Context, table string, preds []query.Predicate, opts store.SelectOptions) ([]store.Row, error) {
	q, err := s.selectQuery(table, preds)
	if err != nil {
		return nil, err
	}
	rows := make([]map[string]interface{}, 0)
	if err := paginate(q, opts).Scan(ctx, &rows); err != nil {
		return nil, fmt.Errorf("bunstore: select %s: %w", table, err)
	}
	return toRows(rows), nil
}

// SelectAndCount implements store.Pager using bun's ScanAndCount, which runs
// the data and count queries from the same query value.
func (s *Store) SelectAndCount(ctx context.Context, table string, preds []query.Predicate, opts store.SelectOptions) ([]store.Row, int, error) {
	q, err := s.selectQuery(table, preds)
	if err != nil {
		return nil, 0, err
	}
	rows := make([]map[string]interface{}, 0)
	total, err := paginate(q, opts).ScanAndCount(ctx, &rows)
	if err != nil {
		return nil, 0, fmt.Errorf("bunstore: select and count %s: %w", table, err)
	}
	return toRows(rows), total, nil
}

// FindOne implements store.Store.
func (s *Store) FindOne(ctx context.Context, table, field string, value any) (store.Row, error) {
	q, err := s.selectQuery(table, []query.Predicate{query.Equals(field, value)})
	if err != nil {
		return nil, err
	}
	rows := make([]map[string]interface{}, 0, 1)
	if err := q.Limit(1).Scan(ctx, &rows); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("bunstore: find %s by %s: %w", table, field, err)
	}
	if len(rows) == 0 {
		return nil, store.ErrNotFound
	}
	return normalizeRow(rows[0]), nil
}

// Insert implements store.Writer. The stored row is read back by slug.
func (s *Store) Insert(ctx context.Context, table string, row store.Row) (store.Row, error) {
	if !store.KnownTable(table) {
		return nil, fmt.Errorf("%w: %s", store.ErrUnknownTable, table)
	}
	values := map[string]interface{}(copyRow(row))
	delete(values, "id")
	if _, err := s.db.NewInsert().Model(&values).Table(table).Exec(ctx); err != nil {
		return nil, fmt.Errorf("bunstore: insert %s: %w", table, err)
	}
	slug := normalize.Record(row).String("slug", "")
	if slug == "" {
		return copyRow(row), nil
	}
	return s.FindOne(ctx, table, "slug", slug)
}

// Update implements store.Writer.
func (s *Store) Update(ctx context.Context, table, id string, row store.Row) (store.Row, error) {
	if _, err := s.FindOne(ctx, table, "id", id); err != nil {
		return nil, err
	}
	values := map[string]interface{}(copyRow(row))
	delete(values, "id")
	if len(values) > 0 {
		_, err := s.db.NewUpdate().
			Model(&values).
			Table(table).
			Where("? = ?", bun.Ident("id"), id).
			Exec(ctx)
		if err != nil {
			return nil, fmt.Errorf("bunstore: update %s %s: %w", table, id, err)
		}
	}
	return s.FindOne(ctx, table, "id", id)
}

// Increment implements store.Incrementer as a single UPDATE.
func (s *Store) Increment(ctx context.Context, table, field string, value any, column string) error {
	if !store.KnownTable(table) {
		return fmt.Errorf("%w: %s", store.ErrUnknownTable, table)
	}
	res, err := s.db.NewUpdate().
		Table(table).
		Set("? = COALESCE(?, 0) + 1", bun.Ident(column), bun.Ident(column)).
		Where("? = ?", bun.Ident(field), value).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("bunstore: increment %s.%s: %w", table, column, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// Delete implements store.Writer.
func (s *Store) Delete(ctx context.Context, table, id string) error {
	if !store.KnownTable(table) {
		return fmt.Errorf("%w: %s", store.ErrUnknownTable, table)
	}
	res, err := s.db.NewDelete().
		Table(table).
		Where("? = ?", bun.Ident("id"), id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("bunstore: delete %s %s: %w", table, id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func toRows(in []map[string]interface{}) []store.Row {
	out := make([]store.Row, len(in))
	for i, r := range in {
		out[i] = normalizeRow(r)
	}
	return out
}

// normalizeRow turns driver byte slices into strings so rows marshal and
// compare the same way across drivers.
func normalizeRow(r map[string]interface{}) store.Row {
	out := make(store.Row, len(r))
	for k, v := range r {
		if b, ok := v.([]byte); ok {
			out[k] = string(b)
			continue
		}
		out[k] = v
	}
	return out
}

func copyRow(r store.Row) store.Row {
	out := make(store.Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
