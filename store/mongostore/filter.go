package mongostore

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/goliatone/go-scholarship-catalog/query"
)

// fieldNames returns the document keys a snake_case column may be stored
// under. Documents written by older clients use camelCase and "_id".
func fieldNames(column string) []string {
	if column == "id" || column == "_id" {
		return []string{"_id"}
	}
	c := camel(column)
	if c == column {
		return []string{column}
	}
	return []string{c, column}
}

func camel(s string) string {
	parts := strings.Split(s, "_")
	var b strings.Builder
	for i, p := range parts {
		if p == "" {
			continue
		}
		if i == 0 {
			b.WriteString(p)
			continue
		}
		r := []rune(p)
		r[0] = unicode.ToUpper(r[0])
		b.WriteString(string(r))
	}
	return b.String()
}

// idCandidates returns the encodings an identifier may have been stored with.
func idCandidates(v any) []any {
	out := []any{v}
	s, ok := v.(string)
	if !ok {
		s = fmt.Sprint(v)
		out = append(out, s)
	}
	if !ok {
		return out
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		out = append(out, n)
	}
	if oid, err := primitive.ObjectIDFromHex(s); err == nil {
		out = append(out, oid)
	}
	return out
}

func anyOf(names []string, cond any) bson.D {
	if len(names) == 1 {
		return bson.D{{Key: names[0], Value: cond}}
	}
	alts := make(bson.A, 0, len(names))
	for _, n := range names {
		alts = append(alts, bson.D{{Key: n, Value: cond}})
	}
	return bson.D{{Key: "$or", Value: alts}}
}

// Filter translates a predicate conjunction into a find filter.
func Filter(preds []query.Predicate) bson.D {
	if len(preds) == 0 {
		return bson.D{}
	}
	clauses := make(bson.A, 0, len(preds))
	for _, p := range preds {
		clauses = append(clauses, clause(p))
	}
	if len(clauses) == 1 {
		return clauses[0].(bson.D)
	}
	return bson.D{{Key: "$and", Value: clauses}}
}

func clause(p query.Predicate) bson.D {
	switch p.Operator {
	case query.OpILike:
		re := primitive.Regex{Pattern: regexp.QuoteMeta(fmt.Sprint(p.Value)), Options: "i"}
		var names []string
		for _, f := range p.Fields {
			names = append(names, fieldNames(f)...)
		}
		return anyOf(names, re)
	case query.OpFlag:
		return anyOf(fieldNames(p.Field()), p.Value)
	default:
		return anyOf(fieldNames(p.Field()), bson.D{{Key: "$in", Value: idCandidates(p.Value)}})
	}
}

func sortSpec(s query.Sort) bson.D {
	spec := bson.D{}
	if s.Field != "" {
		dir := 1
		if s.Desc {
			dir = -1
		}
		spec = append(spec, bson.E{Key: fieldNames(s.Field)[0], Value: dir})
	}
	return append(spec, bson.E{Key: "_id", Value: 1})
}
