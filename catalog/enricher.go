package catalog

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-scholarship-catalog/internal/logctx"
	"github.com/goliatone/go-scholarship-catalog/internal/metrics"
	"github.com/goliatone/go-scholarship-catalog/normalize"
	"github.com/goliatone/go-scholarship-catalog/store"
)

// DefaultEnrichConcurrency caps parallel relation lookups per page.
const DefaultEnrichConcurrency = 4

// Enricher resolves foreign keys to RelationSummary values. Each distinct
// (table, id) pair of a page is looked up once; failed or empty lookups
// resolve to nil without affecting other relations.
type Enricher struct {
	store       store.Store
	concurrency int
	metrics     *metrics.Metrics
}

// NewEnricher creates an Enricher reading through st.
func NewEnricher(st store.Store, m *metrics.Metrics) *Enricher {
	return &Enricher{store: st, concurrency: DefaultEnrichConcurrency, metrics: m}
}

type relKey struct {
	table string
	id    string
}

// Enrich returns one Related per row, in row order.
func (e *Enricher) Enrich(ctx context.Context, relations []Relation, rows []store.Row) []Related {
	out := make([]Related, len(rows))
	if len(relations) == 0 {
		return out
	}

	wanted := map[relKey]struct{}{}
	for _, row := range rows {
		rec := normalize.Record(row)
		for _, rel := range relations {
			if id, ok := foreignKey(rec, rel); ok {
				wanted[relKey{rel.Table, id}] = struct{}{}
			}
		}
	}

	resolved := e.lookup(ctx, wanted)

	for i, row := range rows {
		rec := normalize.Record(row)
		related := make(Related, len(relations))
		for _, rel := range relations {
			related[rel.Name] = nil
			if id, ok := foreignKey(rec, rel); ok {
				related[rel.Name] = resolved[relKey{rel.Table, id}]
			}
		}
		out[i] = related
	}
	return out
}

// EnrichOne resolves the relations of a single row.
func (e *Enricher) EnrichOne(ctx context.Context, relations []Relation, row store.Row) Related {
	return e.Enrich(ctx, relations, []store.Row{row})[0]
}

func (e *Enricher) lookup(ctx context.Context, wanted map[relKey]struct{}) map[relKey]*RelationSummary {
	const op = "catalog.Enricher.lookup"

	var mu sync.Mutex
	resolved := make(map[relKey]*RelationSummary, len(wanted))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for key := range wanted {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			row, err := e.store.FindOne(gctx, key.table, "id", key.id)
			if ctxErr := gctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if err != nil {
				e.metrics.EnrichMiss(key.table)
				logctx.From(ctx).Warn("relation unresolved",
					slog.String("op", op),
					slog.String("table", key.table),
					slog.String("id", key.id),
					slog.Any("error", err),
				)
				return nil
			}
			summary := Summarize(row)
			mu.Lock()
			resolved[key] = &summary
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logctx.From(ctx).Warn("enrichment stopped early",
			slog.String("op", op),
			slog.Int("resolved", len(resolved)),
			slog.Int("wanted", len(wanted)),
			slog.Any("error", err),
		)
	}
	return resolved
}

// Summarize projects a related row to {id, name, slug}.
func Summarize(row store.Row) RelationSummary {
	rec := normalize.Record(row)
	id, _ := rec.ID("id")
	return RelationSummary{
		ID:   id,
		Name: rec.String("name", "", "title"),
		Slug: rec.String("slug", ""),
	}
}

func foreignKey(rec normalize.Record, rel Relation) (string, bool) {
	id, ok := rec.ID(rel.Name+"Id", rel.Column)
	if !ok || id == "0" {
		return "", false
	}
	return id, true
}
