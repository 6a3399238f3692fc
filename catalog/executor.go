package catalog

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-scholarship-catalog/internal/logctx"
	"github.com/goliatone/go-scholarship-catalog/internal/metrics"
	"github.com/goliatone/go-scholarship-catalog/query"
	"github.com/goliatone/go-scholarship-catalog/store"
)

// DefaultQueryTimeout bounds one page fetch when none is configured.
const DefaultQueryTimeout = 5 * time.Second

// ResultPage is one window of matching rows plus the total match count.
// Degraded marks a page that was replaced by an empty one after a store
// failure.
type ResultPage struct {
	Rows     []store.Row
	Total    int
	Page     int
	Limit    int
	Degraded bool
}

// TotalPages is ceil(Total/Limit) with a floor of one.
func (p ResultPage) TotalPages() int {
	return query.TotalPages(p.Total, p.Limit)
}

// Executor runs the count and data queries of a list request with one
// predicate set.
type Executor struct {
	store   store.Store
	timeout time.Duration
	metrics *metrics.Metrics
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithQueryTimeout bounds each Execute call. Zero disables the bound.
func WithQueryTimeout(d time.Duration) ExecutorOption {
	return func(x *Executor) { x.timeout = d }
}

// WithExecutorMetrics records query outcomes and durations.
func WithExecutorMetrics(m *metrics.Metrics) ExecutorOption {
	return func(x *Executor) { x.metrics = m }
}

// NewExecutor creates an Executor over st.
func NewExecutor(st store.Store, opts ...ExecutorOption) *Executor {
	x := &Executor{store: st, timeout: DefaultQueryTimeout}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

// Execute returns the page of table matching preds. When the store fails or
// the timeout elapses the failure is logged and an empty, degraded page with
// a total of zero is returned instead of an error.
func (x *Executor) Execute(ctx context.Context, table string, preds []query.Predicate, sort query.Sort, page, limit int) ResultPage {
	const op = "catalog.Executor.Execute"

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = query.DefaultLimits.Default
	}
	page = query.MaxPage(page, limit)
	opts := store.SelectOptions{Sort: sort, Limit: limit, Offset: (page - 1) * limit}

	if x.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, x.timeout)
		defer cancel()
	}

	start := time.Now()
	rows, total, err := x.fetch(ctx, table, preds, opts)
	elapsed := time.Since(start)

	if err != nil {
		outcome := "error"
		if errors.Is(err, context.DeadlineExceeded) {
			outcome = "timeout"
		}
		x.metrics.Query(table, outcome, elapsed)
		logctx.From(ctx).Warn("list query failed, serving empty page",
			slog.String("op", op),
			slog.String("table", table),
			slog.String("predicates", query.Describe(preds)),
			slog.String("outcome", outcome),
			slog.Any("error", err),
		)
		return ResultPage{Rows: []store.Row{}, Total: 0, Page: page, Limit: limit, Degraded: true}
	}

	x.metrics.Query(table, "ok", elapsed)
	if len(rows) > limit {
		rows = rows[:limit]
	}
	if rows == nil {
		rows = []store.Row{}
	}
	logctx.From(ctx).Debug("list query",
		slog.String("op", op),
		slog.String("table", table),
		slog.Int("rows", len(rows)),
		slog.Int("total", total),
		slog.Duration("elapsed", elapsed),
	)
	return ResultPage{Rows: rows, Total: total, Page: page, Limit: limit}
}

// fetch uses the store's combined call when it has one, otherwise it issues
// the count and data queries concurrently and waits for both.
func (x *Executor) fetch(ctx context.Context, table string, preds []query.Predicate, opts store.SelectOptions) ([]store.Row, int, error) {
	if p, ok := x.store.(store.Pager); ok {
		return p.SelectAndCount(ctx, table, preds, opts)
	}

	var (
		rows  []store.Row
		total int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := x.store.Count(gctx, table, preds)
		total = n
		return err
	})
	g.Go(func() error {
		r, err := x.store.Select(gctx, table, preds, opts)
		rows = r
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
