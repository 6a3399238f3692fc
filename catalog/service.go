package catalog

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"sync"
	"time"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-scholarship-catalog/internal/logctx"
	"github.com/goliatone/go-scholarship-catalog/normalize"
	"github.com/goliatone/go-scholarship-catalog/query"
	"github.com/goliatone/go-scholarship-catalog/store"
)

// DefaultFeaturedLimit is the featured scholarship count when none is asked.
const DefaultFeaturedLimit = 6

// Collection is a list response without pagination.
type Collection struct {
	Data     []any `json:"data"`
	Degraded bool  `json:"-"`
}

// Service answers list, detail and write requests for every registered
// entity.
type Service struct {
	store    store.Store
	builder  *query.Builder
	executor *Executor
	enricher *Enricher
	limits   query.Limits
	now      func() time.Time
}

// Option configures a Service.
type Option func(*Service)

func WithBuilder(b *query.Builder) Option {
	return func(s *Service) { s.builder = b }
}

func WithExecutor(x *Executor) Option {
	return func(s *Service) { s.executor = x }
}

func WithEnricher(e *Enricher) Option {
	return func(s *Service) { s.enricher = e }
}

// WithLimits sets the page size bounds.
func WithLimits(l query.Limits) Option {
	return func(s *Service) { s.limits = l }
}

// WithClock sets the time source used to stamp writes.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService creates a Service over st. Slug filters resolve through st
// itself when it implements query.Resolver and through FindOne otherwise.
func NewService(st store.Store, opts ...Option) *Service {
	s := &Service{
		store:  st,
		limits: query.DefaultLimits,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.builder == nil {
		s.builder = query.NewBuilder(SlugResolver(st))
	}
	if s.executor == nil {
		s.executor = NewExecutor(st)
	}
	if s.enricher == nil {
		s.enricher = NewEnricher(st, nil)
	}
	return s
}

// SlugResolver returns st as a query.Resolver, adapting FindOne when st does
// not resolve slugs itself.
func SlugResolver(st store.Store) query.Resolver {
	if r, ok := st.(query.Resolver); ok {
		return r
	}
	return query.ResolverFunc(func(ctx context.Context, table, slug string) (any, bool, error) {
		row, err := st.FindOne(ctx, table, "slug", slug)
		if errors.Is(err, store.ErrNotFound) {
			return nil, false, nil
		}
		if err != nil {
			return nil, false, err
		}
		id, ok := normalize.Record(row).Lookup("id", normalize.LegacyIDKey)
		return id, ok, nil
	})
}

func (s *Service) spec(entity string) (EntitySpec, error) {
	spec, ok := Lookup(entity)
	if !ok {
		return EntitySpec{}, goerrors.New("unknown entity "+entity, goerrors.CategoryNotFound)
	}
	return spec, nil
}

// ParseList parses request parameters with the entity's sort allow-list and
// the service's limits.
func (s *Service) ParseList(entity string, values url.Values) (query.ListQuery, error) {
	spec, err := s.spec(entity)
	if err != nil {
		return query.ListQuery{}, err
	}
	return query.Parse(entity, values, spec.Sorts, s.limits), nil
}

// List returns one page of entity. Store failures produce an empty page
// marked Degraded rather than an error; the only errors are an unknown entity
// and, in strict mode, an unknown filter slug.
func (s *Service) List(ctx context.Context, entity string, values url.Values) (Envelope, error) {
	const op = "catalog.Service.List"

	spec, err := s.spec(entity)
	if err != nil {
		return Envelope{}, err
	}
	q := query.Parse(entity, values, spec.Sorts, s.limits)
	ctx = logctx.With(ctx, slog.String("entity", entity))

	preds, err := s.builder.Build(ctx, spec.Filters, q.Filters)
	if err != nil {
		return Envelope{}, goerrors.Wrap(err, goerrors.CategoryBadInput, err.Error())
	}

	page := s.executor.Execute(ctx, spec.Table, preds, q.Sort, q.Page, q.Limit)
	related := s.enricher.Enrich(ctx, spec.Relations, page.Rows)

	items := make([]any, len(page.Rows))
	for i, row := range page.Rows {
		items[i] = spec.Shape(normalize.Record(row), related[i])
	}

	logctx.From(ctx).Debug("list served",
		slog.String("op", op),
		slog.String("sort", q.SortKey),
		slog.Int("page", page.Page),
		slog.Int("items", len(items)),
		slog.Int("total", page.Total),
	)

	return Envelope{
		Data: items,
		Pagination: Pagination{
			Page:       page.Page,
			Limit:      page.Limit,
			Total:      page.Total,
			TotalPages: page.TotalPages(),
		},
		Degraded: page.Degraded,
	}, nil
}

// Featured returns published featured scholarships, newest first.
func (s *Service) Featured(ctx context.Context, limit int) Collection {
	if limit <= 0 {
		limit = DefaultFeaturedLimit
	}
	if s.limits.Max > 0 && limit > s.limits.Max {
		limit = s.limits.Max
	}
	spec := Entities["scholarships"]
	preds := []query.Predicate{
		query.Flag("is_featured", true),
		query.Flag("is_published", true),
	}
	page := s.executor.Execute(ctx, spec.Table, preds, newest, 1, limit)
	related := s.enricher.Enrich(ctx, spec.Relations, page.Rows)

	items := make([]any, len(page.Rows))
	for i, row := range page.Rows {
		items[i] = ToScholarship(normalize.Record(row), related[i])
	}
	return Collection{Data: items, Degraded: page.Degraded}
}

// Get returns the entity whose slug matches, with relations resolved.
func (s *Service) Get(ctx context.Context, entity, slug string) (any, error) {
	spec, err := s.spec(entity)
	if err != nil {
		return nil, err
	}
	row, err := s.store.FindOne(ctx, spec.Table, "slug", slug)
	if errors.Is(err, store.ErrNotFound) {
		return nil, goerrors.New(entity+" "+slug+" not found", goerrors.CategoryNotFound)
	}
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "failed to load "+entity+" "+slug)
	}
	related := s.enricher.EnrichOne(ctx, spec.Relations, row)
	return spec.Shape(normalize.Record(row), related), nil
}

// RecordView counts one detail read of the entity identified by slug.
// Entities without a views column and stores that cannot increment are
// skipped.
func (s *Service) RecordView(ctx context.Context, entity, slug string) error {
	spec, err := s.spec(entity)
	if err != nil {
		return err
	}
	if spec.ViewsColumn == "" {
		return nil
	}
	inc, ok := s.store.(store.Incrementer)
	if !ok {
		return nil
	}
	if err := inc.Increment(ctx, spec.Table, "slug", slug, spec.ViewsColumn); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return goerrors.New(entity+" "+slug+" not found", goerrors.CategoryNotFound)
		}
		return goerrors.Wrap(err, goerrors.CategoryOperation, "failed to count view of "+entity+" "+slug)
	}
	return nil
}

// FilterOptions lists every category, country and level by name. A table
// that cannot be read contributes an empty list.
func (s *Service) FilterOptions(ctx context.Context) FilterOptions {
	const op = "catalog.Service.FilterOptions"

	out := FilterOptions{Categories: []Category{}, Countries: []Country{}, Levels: []Level{}}
	load := func(ctx context.Context, table string) []store.Row {
		rows, err := s.store.Select(ctx, table, nil, store.SelectOptions{Sort: byName})
		if err != nil {
			logctx.From(ctx).Warn("filter options unavailable",
				slog.String("op", op),
				slog.String("table", table),
				slog.Any("error", err),
			)
			return nil
		}
		return rows
	}

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		for _, r := range load(ctx, "categories") {
			out.Categories = append(out.Categories, ToCategory(normalize.Record(r), nil))
		}
	}()
	go func() {
		defer wg.Done()
		for _, r := range load(ctx, "countries") {
			out.Countries = append(out.Countries, ToCountry(normalize.Record(r), nil))
		}
	}()
	go func() {
		defer wg.Done()
		for _, r := range load(ctx, "levels") {
			out.Levels = append(out.Levels, ToLevel(normalize.Record(r), nil))
		}
	}()
	wg.Wait()
	return out
}
