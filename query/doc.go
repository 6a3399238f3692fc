// Package query turns list request parameters into storage-neutral filter
// predicates, a sort rule and a clamped page window.
//
// A FilterSet declares what an endpoint recognizes: a search term matched
// case-insensitively against several text fields, reference filters given as
// slugs and resolved to foreign key ids, boolean flags with a fixed value
// vocabulary, and plain equality filters. Builder evaluates a FilterSet
// against raw Filters:
//
//	b := query.NewBuilder(resolver, query.WithMode(query.Lenient))
//	preds, err := b.Build(ctx, set, query.Filters{"search": "engineering", "category": "stem"})
//
// Unknown or malformed values never produce a "match nothing" predicate. In
// Lenient mode a slug that cannot be resolved is logged and skipped, which
// means the result is the same as if the filter had not been sent. Strict
// mode returns ErrUnknownReference instead.
//
// Parse clamps page and limit, resolves the sort key against an allow-list
// and collects the remaining parameters as Filters.
package query
