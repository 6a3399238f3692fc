// Package catalog serves paginated, filtered and enriched views of the
// scholarship catalog.
//
// A list request flows through four steps:
//
//  1. query.Parse clamps page and limit and resolves the sort key against
//     the entity's allow-list.
//  2. query.Builder turns filter parameters into predicates.
//  3. Executor runs the count and data queries with that one predicate set.
//  4. Enricher resolves foreign keys to {id, name, slug} summaries and the
//     entity's Shaper normalizes each row to its canonical camelCase type.
//
// Read paths favor availability: a failing or slow store yields an empty
// page with a total of zero. Write paths report every failure.
package catalog
