package query

import (
	"fmt"
	"strings"
)

// Operator identifies how a Predicate compares a stored field against its value.
type Operator string

const (
	// OpEquals matches rows whose field equals the value.
	OpEquals Operator = "equals"
	// OpILike matches rows whose field contains the value, ignoring case.
	OpILike Operator = "ilike"
	// OpFlag matches rows whose boolean field equals the value.
	OpFlag Operator = "boolean-flag"
)

// Predicate is a single filter condition. When Fields holds more than one
// column the predicate matches if any of them matches; a predicate set is
// always evaluated as a conjunction.
type Predicate struct {
	Fields   []string
	Operator Operator
	Value    any
}

// Equals builds an equality predicate on field.
func Equals(field string, value any) Predicate {
	return Predicate{Fields: []string{field}, Operator: OpEquals, Value: value}
}

// ILike builds a case-insensitive substring predicate over one or more fields.
func ILike(term string, fields ...string) Predicate {
	return Predicate{Fields: append([]string(nil), fields...), Operator: OpILike, Value: term}
}

// Flag builds a boolean equality predicate on field.
func Flag(field string, value bool) Predicate {
	return Predicate{Fields: []string{field}, Operator: OpFlag, Value: value}
}

// Field returns the first field the predicate targets.
func (p Predicate) Field() string {
	if len(p.Fields) == 0 {
		return ""
	}
	return p.Fields[0]
}

// Pattern returns the LIKE pattern for an ilike predicate with the wildcard
// characters in the term escaped using backslash.
func (p Predicate) Pattern() string {
	term := fmt.Sprint(p.Value)
	term = likeEscaper.Replace(term)
	return "%" + term + "%"
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (p Predicate) String() string {
	return fmt.Sprintf("%s %s %v", strings.Join(p.Fields, "|"), p.Operator, p.Value)
}

// Describe renders a predicate set for logs.
func Describe(preds []Predicate) string {
	if len(preds) == 0 {
		return "<none>"
	}
	parts := make([]string, len(preds))
	for i, p := range preds {
		parts[i] = p.String()
	}
	return strings.Join(parts, " AND ")
}
