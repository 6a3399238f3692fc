package query

import (
	"math"
	"net/url"
	"strconv"
	"strings"
)

// Sort is an ORDER BY rule on a single column.
type Sort struct {
	Field string
	Desc  bool
}

func (s Sort) String() string {
	if s.Desc {
		return s.Field + " DESC"
	}
	return s.Field + " ASC"
}

// SortOptions is the allow-list of sort keys a list endpoint honors.
type SortOptions struct {
	Default string
	Options map[string]Sort
}

// Resolve returns the sort for key, falling back to the default entry for
// unknown or empty keys.
func (o SortOptions) Resolve(key string) (string, Sort) {
	key = strings.TrimSpace(key)
	if s, ok := o.Options[key]; ok {
		return key, s
	}
	return o.Default, o.Options[o.Default]
}

// Limits bounds the page size.
type Limits struct {
	Default int
	Max     int
}

// DefaultLimits are used when an endpoint does not declare its own.
var DefaultLimits = Limits{Default: 12, Max: 100}

func (l Limits) clamp(raw string) int {
	def := l.Default
	if def <= 0 {
		def = DefaultLimits.Default
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		return def
	}
	if l.Max > 0 && n > l.Max {
		return l.Max
	}
	return n
}

// ListQuery is an immutable, fully clamped list request.
type ListQuery struct {
	Entity  string
	Page    int
	Limit   int
	Filters Filters
	SortKey string
	Sort    Sort
}

// Offset is the number of rows skipped before the page starts.
func (q ListQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

// HasSearch reports whether a search term was supplied.
func (q ListQuery) HasSearch() bool {
	return q.Filters.Get("search", "q") != ""
}

var reservedParams = map[string]struct{}{
	"page": {}, "limit": {}, "pageSize": {}, "sortBy": {}, "sort": {},
}

// Parse builds a ListQuery from request parameters. Unparseable or out of
// range page and limit values are clamped instead of rejected.
func Parse(entity string, values url.Values, sorts SortOptions, limits Limits) ListQuery {
	page, err := strconv.Atoi(strings.TrimSpace(values.Get("page")))
	if err != nil || page < 1 {
		page = 1
	}

	rawLimit := values.Get("limit")
	if rawLimit == "" {
		rawLimit = values.Get("pageSize")
	}

	limit := limits.clamp(rawLimit)
	page = MaxPage(page, limit)

	sortKey := values.Get("sortBy")
	if sortKey == "" {
		sortKey = values.Get("sort")
	}
	sortKey, sort := sorts.Resolve(sortKey)

	filters := Filters{}
	for k, vs := range values {
		if _, reserved := reservedParams[k]; reserved || len(vs) == 0 {
			continue
		}
		if v := trimmed(vs[0]); v != "" {
			filters[k] = v
		}
	}

	return ListQuery{
		Entity:  entity,
		Page:    page,
		Limit:   limit,
		Filters: filters,
		SortKey: sortKey,
		Sort:    sort,
	}
}

// MaxPage caps page so that the offset (page-1)*limit fits in an int.
func MaxPage(page, limit int) int {
	if limit > 0 && page > math.MaxInt/limit {
		return math.MaxInt / limit
	}
	return page
}

// TotalPages returns ceil(total/limit) with a floor of one page, so an empty
// result still reports page 1 as existing.
func TotalPages(total, limit int) int {
	if limit <= 0 || total <= 0 {
		return 1
	}
	return (total + limit - 1) / limit
}
