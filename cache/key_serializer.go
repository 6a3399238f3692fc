package cache

import (
	"net/url"
	"sort"
	"strings"
)

// KeySeparator defines the delimiter used between lookup cache key segments.
const KeySeparator = "::"

type fingerprintSerializer struct{}

// NewDefaultKeySerializer returns the fingerprint serializer:
// METHOD:/normalized/path?sorted=query.
func NewDefaultKeySerializer() KeySerializer {
	return fingerprintSerializer{}
}

func (fingerprintSerializer) SerializeKey(method, path string, query url.Values) string {
	return Fingerprint(method, path, query)
}

// Fingerprint builds the response cache key. Two requests that differ only
// in parameter order, path case, repeated or trailing slashes, or empty
// parameters share a fingerprint.
func Fingerprint(method, path string, query url.Values) string {
	var b strings.Builder
	b.WriteString(strings.ToUpper(method))
	b.WriteByte(':')
	b.WriteString(NormalizePath(path))
	b.WriteByte('?')
	b.WriteString(SortedQuery(query))
	return b.String()
}

// NormalizePath lowercases path, collapses repeated slashes and drops a
// trailing slash. The root path stays "/".
func NormalizePath(path string) string {
	path = strings.ToLower(path)
	var b strings.Builder
	b.Grow(len(path) + 1)
	if !strings.HasPrefix(path, "/") {
		b.WriteByte('/')
	}
	prevSlash := false
	for i := 0; i < len(path); i++ {
		c := path[i]
		if c == '/' {
			if prevSlash {
				continue
			}
			prevSlash = true
		} else {
			prevSlash = false
		}
		b.WriteByte(c)
	}
	out := b.String()
	if len(out) > 1 {
		out = strings.TrimSuffix(out, "/")
	}
	return out
}

// SortedQuery encodes query with keys in ascending order, skipping empty
// values. Repeated values of one key keep their request order.
func SortedQuery(query url.Values) string {
	keys := make([]string, 0, len(query))
	for k := range query {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var parts []string
	for _, k := range keys {
		for _, v := range query[k] {
			if strings.TrimSpace(v) == "" {
				continue
			}
			parts = append(parts, url.QueryEscape(k)+"="+url.QueryEscape(v))
		}
	}
	return strings.Join(parts, "&")
}

// LookupKey builds a lookup cache key such as "categories::slug::stem".
func LookupKey(table, field, value string) string {
	return table + KeySeparator + field + KeySeparator + value
}

// TablePrefix is the prefix shared by every lookup key of table.
func TablePrefix(table string) string {
	return table + KeySeparator
}
