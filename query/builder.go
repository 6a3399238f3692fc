package query

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/goliatone/go-scholarship-catalog/internal/logctx"
)

// ErrUnknownReference is returned in Strict mode when a reference filter names
// a slug that does not exist.
var ErrUnknownReference = errors.New("query: unknown filter reference")

// Mode controls how unresolvable reference filters are treated.
type Mode int

const (
	// Lenient drops unresolvable reference filters and logs them.
	Lenient Mode = iota
	// Strict fails the build with ErrUnknownReference.
	Strict
)

// ParseMode maps "strict" to Strict and anything else to Lenient.
func ParseMode(s string) Mode {
	if strings.EqualFold(strings.TrimSpace(s), "strict") {
		return Strict
	}
	return Lenient
}

func (m Mode) String() string {
	if m == Strict {
		return "strict"
	}
	return "lenient"
}

// Resolver looks up the id of the row in table whose slug matches.
type Resolver interface {
	ResolveSlug(ctx context.Context, table, slug string) (id any, found bool, err error)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(ctx context.Context, table, slug string) (any, bool, error)

func (f ResolverFunc) ResolveSlug(ctx context.Context, table, slug string) (any, bool, error) {
	return f(ctx, table, slug)
}

// Builder turns raw filter values into a predicate conjunction.
type Builder struct {
	resolver Resolver
	mode     Mode
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithMode sets the reference resolution mode.
func WithMode(m Mode) BuilderOption {
	return func(b *Builder) { b.mode = m }
}

// NewBuilder creates a Builder resolving reference filters through r.
func NewBuilder(r Resolver, opts ...BuilderOption) *Builder {
	b := &Builder{resolver: r}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Mode reports the builder's reference resolution mode.
func (b *Builder) Mode() Mode { return b.mode }

// Build produces the predicates for filters according to set. Filters that are
// absent, empty or carry an unrecognized value produce no predicate. The
// returned order is search, references, flags, equals.
func (b *Builder) Build(ctx context.Context, set FilterSet, filters Filters) ([]Predicate, error) {
	const op = "query.Builder.Build"
	log := logctx.From(ctx)

	filters = set.withDefaults(filters)
	var preds []Predicate

	if len(set.SearchFields) > 0 && set.SearchParam != "" {
		if term := filters.Get(set.SearchParam, set.SearchAliases...); term != "" {
			preds = append(preds, ILike(term, set.SearchFields...))
		}
	}

	for _, ref := range set.References {
		slug := filters.Get(ref.Param)
		if slug == "" {
			continue
		}
		p, ok, err := b.resolve(ctx, ref, slug)
		if err != nil {
			return nil, err
		}
		if !ok {
			log.Warn("dropping unresolved filter",
				slog.String("op", op),
				slog.String("param", ref.Param),
				slog.String("slug", slug),
				slog.String("mode", b.mode.String()),
			)
			continue
		}
		preds = append(preds, p)
	}

	for _, f := range set.Flags {
		raw := strings.ToLower(filters.Get(f.Param))
		if raw == "" {
			continue
		}
		v, ok := f.Values[raw]
		if !ok {
			log.Debug("ignoring unrecognized flag value",
				slog.String("op", op),
				slog.String("param", f.Param),
				slog.String("value", raw),
			)
			continue
		}
		preds = append(preds, Flag(f.Column, v))
	}

	for _, f := range set.Equals {
		if v := filters.Get(f.Param); v != "" {
			preds = append(preds, Equals(f.Column, v))
		}
	}

	return preds, nil
}

func (b *Builder) resolve(ctx context.Context, ref Reference, slug string) (Predicate, bool, error) {
	if b.resolver == nil {
		return b.unresolved(ref, slug, nil)
	}
	id, found, err := b.resolver.ResolveSlug(ctx, ref.Table, slug)
	if err != nil {
		logctx.From(ctx).Warn("filter lookup failed",
			slog.String("op", "query.Builder.resolve"),
			slog.String("table", ref.Table),
			slog.String("slug", slug),
			slog.Any("error", err),
		)
		return b.unresolved(ref, slug, err)
	}
	if !found || id == nil {
		return b.unresolved(ref, slug, nil)
	}
	return Equals(ref.Column, id), true, nil
}

func (b *Builder) unresolved(ref Reference, slug string, cause error) (Predicate, bool, error) {
	if b.mode != Strict {
		return Predicate{}, false, nil
	}
	if cause != nil {
		return Predicate{}, false, fmt.Errorf("%w: %s %q: %v", ErrUnknownReference, ref.Param, slug, cause)
	}
	return Predicate{}, false, fmt.Errorf("%w: %s %q", ErrUnknownReference, ref.Param, slug)
}

func trimmed(s string) string {
	return strings.TrimSpace(s)
}
