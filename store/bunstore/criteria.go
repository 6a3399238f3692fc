package bunstore

import (
	repository "github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"

	"github.com/goliatone/go-scholarship-catalog/query"
)

// likeExpr returns the case-insensitive substring expression for a dialect.
// Postgres and MySQL use backslash as the default LIKE escape; SQLite needs
// it spelled out.
func likeExpr(name dialect.Name) string {
	switch name {
	case dialect.PG:
		return "? ILIKE ?"
	case dialect.SQLite:
		return `? LIKE ? ESCAPE '\'`
	default:
		return "LOWER(?) LIKE LOWER(?)"
	}
}

// Criteria compiles predicates into select criteria for the given dialect.
// The same slice is applied to both the count and the data query.
func Criteria(name dialect.Name, preds []query.Predicate) []repository.SelectCriteria {
	out := make([]repository.SelectCriteria, 0, len(preds))
	for _, p := range preds {
		out = append(out, criterion(name, p))
	}
	return out
}

func criterion(name dialect.Name, p query.Predicate) repository.SelectCriteria {
	switch p.Operator {
	case query.OpILike:
		expr := likeExpr(name)
		pattern := p.Pattern()
		fields := append([]string(nil), p.Fields...)
		return func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
				for _, f := range fields {
					q = q.WhereOr(expr, bun.Ident(f), pattern)
				}
				return q
			})
		}
	default:
		field, value := p.Field(), p.Value
		return func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("? = ?", bun.Ident(field), value)
		}
	}
}

func apply(q *bun.SelectQuery, criteria []repository.SelectCriteria) *bun.SelectQuery {
	for _, c := range criteria {
		q = c(q)
	}
	return q
}
