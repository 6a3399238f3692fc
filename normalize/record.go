package normalize

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ISOLayout matches the millisecond precision UTC form clients already parse.
const ISOLayout = "2006-01-02T15:04:05.000Z07:00"

// LegacyIDKey is the identifier key used by document-store exports.
const LegacyIDKey = "_id"

// Record is a raw storage row whose keys may be camelCase, snake_case or
// legacy aliases.
type Record map[string]any

// Lookup returns the first non-nil value found under the camelCase name, its
// snake_case form, then each alias in order.
func (r Record) Lookup(camel string, aliases ...string) (any, bool) {
	if v, ok := r[camel]; ok && v != nil {
		return v, true
	}
	if snake := Snake(camel); snake != camel {
		if v, ok := r[snake]; ok && v != nil {
			return v, true
		}
	}
	for _, alias := range aliases {
		if v, ok := r[alias]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// Has reports whether any form of the field is present.
func (r Record) Has(camel string, aliases ...string) bool {
	_, ok := r.Lookup(camel, aliases...)
	return ok
}

// String returns the field as a string or def when absent or not textual.
func (r Record) String(camel, def string, aliases ...string) string {
	v, ok := r.Lookup(camel, aliases...)
	if !ok {
		return def
	}
	if s, ok := asString(v); ok {
		return s
	}
	return def
}

// Bool returns the field as a bool or def when absent or unparseable.
func (r Record) Bool(camel string, def bool, aliases ...string) bool {
	v, ok := r.Lookup(camel, aliases...)
	if !ok {
		return def
	}
	if b, ok := ToBool(v); ok {
		return b
	}
	return def
}

// Int returns the field as an int or def when absent or unparseable.
func (r Record) Int(camel string, def int, aliases ...string) int {
	v, ok := r.Lookup(camel, aliases...)
	if !ok {
		return def
	}
	if n, ok := asInt(v); ok {
		return n
	}
	return def
}

// Date returns the field as an ISO-8601 string. Time values are formatted in
// UTC, non-empty strings pass through unchanged and anything else, including
// an absent field, yields nil.
func (r Record) Date(camel string, aliases ...string) *string {
	v, ok := r.Lookup(camel, aliases...)
	if !ok {
		return nil
	}
	return ISODate(v)
}

// ID returns the identifier stored under the field. For "id" the legacy
// "_id" key is consulted after the camel and snake forms. Identifiers are
// never defaulted: ok is false when nothing usable is present.
func (r Record) ID(camel string, aliases ...string) (string, bool) {
	if camel == "id" {
		aliases = append(aliases, LegacyIDKey)
	}
	v, found := r.Lookup(camel, aliases...)
	if !found {
		return "", false
	}
	return IDString(v)
}

// OptionalID is ID returning nil when the identifier is absent.
func (r Record) OptionalID(camel string, aliases ...string) *string {
	id, ok := r.ID(camel, aliases...)
	if !ok {
		return nil
	}
	return &id
}

// ISODate formats v as an ISO-8601 string or returns nil.
func ISODate(v any) *string {
	var s string
	switch t := v.(type) {
	case time.Time:
		if t.IsZero() {
			return nil
		}
		s = t.UTC().Format(ISOLayout)
	case *time.Time:
		if t == nil || t.IsZero() {
			return nil
		}
		s = t.UTC().Format(ISOLayout)
	case interface{ Time() time.Time }:
		tt := t.Time()
		if tt.IsZero() {
			return nil
		}
		s = tt.UTC().Format(ISOLayout)
	case string:
		s = strings.TrimSpace(t)
	case []byte:
		s = strings.TrimSpace(string(t))
	default:
		return nil
	}
	if s == "" {
		return nil
	}
	return &s
}

// IDString renders an identifier value of any supported storage type.
func IDString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		t = strings.TrimSpace(t)
		return t, t != ""
	case []byte:
		s := strings.TrimSpace(string(t))
		return s, s != ""
	case int:
		return strconv.Itoa(t), true
	case int32:
		return strconv.FormatInt(int64(t), 10), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case uint64:
		return strconv.FormatUint(t, 10), true
	case float64:
		if t == math.Trunc(t) {
			return strconv.FormatInt(int64(t), 10), true
		}
		return "", false
	case interface{ Hex() string }:
		return t.Hex(), true
	case fmt.Stringer:
		s := t.String()
		return s, s != ""
	}
	return "", false
}

func asString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case []byte:
		return string(t), true
	case int, int32, int64, float64:
		return fmt.Sprint(t), true
	case bool:
		return strconv.FormatBool(t), true
	case fmt.Stringer:
		return t.String(), true
	}
	return "", false
}

// ToBool interprets bools, non-zero numbers and common true/false spellings.
func ToBool(v any) (bool, bool) {
	switch t := v.(type) {
	case bool:
		return t, true
	case int:
		return t != 0, true
	case int32:
		return t != 0, true
	case int64:
		return t != 0, true
	case float64:
		return t != 0, true
	case []byte:
		return parseBool(string(t))
	case string:
		return parseBool(t)
	}
	return false, false
}

func parseBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "t", "1", "yes":
		return true, true
	case "false", "f", "0", "no":
		return false, true
	}
	return false, false
}

func asInt(v any) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case int32:
		return int(t), true
	case int64:
		return int(t), true
	case float64:
		return int(t), true
	case []byte:
		n, err := strconv.Atoi(strings.TrimSpace(string(t)))
		return n, err == nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		return n, err == nil
	}
	return 0, false
}
