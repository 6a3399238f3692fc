// Package store defines the data-store contract the catalog reads and writes
// through. Implementations live in the subpackages.
package store

import (
	"context"
	"errors"

	"github.com/goliatone/go-scholarship-catalog/query"
)

var (
	// ErrNotFound is returned when a single-row lookup matches nothing.
	ErrNotFound = errors.New("store: record not found")
	// ErrUnknownTable is returned for tables the store does not hold.
	ErrUnknownTable = errors.New("store: unknown table")
)

// Row is a raw stored record keyed by column or document field name.
type Row = map[string]any

// SelectOptions describes ordering and the page window of a select.
type SelectOptions struct {
	Sort   query.Sort
	Limit  int
	Offset int
}

// Store is the read side of the catalog's data store. Count and Select apply
// the predicates as a conjunction.
type Store interface {
	Count(ctx context.Context, table string, preds []query.Predicate) (int, error)
	Select(ctx context.Context, table string, preds []query.Predicate, opts SelectOptions) ([]Row, error)
	FindOne(ctx context.Context, table, field string, value any) (Row, error)
}

// Pager is implemented by stores that can return a page and the total match
// count from a single predicate set in one call.
type Pager interface {
	SelectAndCount(ctx context.Context, table string, preds []query.Predicate, opts SelectOptions) ([]Row, int, error)
}

// Writer is the write side of the data store.
type Writer interface {
	Insert(ctx context.Context, table string, row Row) (Row, error)
	Update(ctx context.Context, table, id string, row Row) (Row, error)
	Delete(ctx context.Context, table, id string) error
}

// Incrementer is implemented by stores that can bump a numeric column of the
// rows whose field equals value in place. It returns ErrNotFound when no row
// matches.
type Incrementer interface {
	Increment(ctx context.Context, table, field string, value any, column string) error
}

// ReadWriter combines Store and Writer.
type ReadWriter interface {
	Store
	Writer
}

// Migrator is implemented by stores that can create their schema.
type Migrator interface {
	Migrate(ctx context.Context) error
}

// Closer releases the store's connections.
type Closer interface {
	Close() error
}

// Tables lists every table the catalog uses.
var Tables = []string{"scholarships", "categories", "countries", "levels", "success_stories", "posts"}

// KnownTable reports whether table is one of Tables.
func KnownTable(table string) bool {
	for _, t := range Tables {
		if t == table {
			return true
		}
	}
	return false
}
