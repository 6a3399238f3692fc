package catalog

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-scholarship-catalog/normalize"
	"github.com/goliatone/go-scholarship-catalog/query"
)

// Relation is a foreign key resolved to a RelationSummary during enrichment.
type Relation struct {
	Name   string // output field, e.g. "category"
	Column string // foreign key column, e.g. "category_id"
	Table  string // referenced table, e.g. "categories"
}

// Shaper turns a raw row and its resolved relations into the canonical value.
type Shaper func(r normalize.Record, rel Related) any

// EntitySpec describes one list endpoint.
type EntitySpec struct {
	Name      string // route segment, e.g. "success-stories"
	Table     string
	Filters   query.FilterSet
	Sorts     query.SortOptions
	Relations []Relation
	Shape     Shaper
	// ViewsColumn is bumped on every detail read when set.
	ViewsColumn string
	// Rules validate a write payload. Required fields are only enforced on
	// create.
	Rules func(p normalize.Record, creating bool) error
}

func shaper[T any](fn func(normalize.Record, Related) T) Shaper {
	return func(r normalize.Record, rel Related) any { return fn(r, rel) }
}

var (
	newest = query.Sort{Field: "created_at", Desc: true}
	oldest = query.Sort{Field: "created_at"}
	byName = query.Sort{Field: "name"}
	title  = query.Sort{Field: "title"}

	categoryRel = Relation{Name: "category", Column: "category_id", Table: "categories"}
	countryRel  = Relation{Name: "country", Column: "country_id", Table: "countries"}
	levelRel    = Relation{Name: "level", Column: "level_id", Table: "levels"}

	published = query.FlagFilter{Param: "isPublished", Column: "is_published", Values: query.BoolValues}
	featured  = query.FlagFilter{Param: "featured", Column: "is_featured", Values: query.BoolValues}
)

// Entities is the registry of list endpoints keyed by route segment.
var Entities = map[string]EntitySpec{
	"scholarships": {
		Name:  "scholarships",
		Table: "scholarships",
		Filters: query.FilterSet{
			SearchParam:   "search",
			SearchAliases: []string{"q"},
			SearchFields:  []string{"title", "description"},
			References: []query.Reference{
				{Param: categoryRel.Name, Table: categoryRel.Table, Column: categoryRel.Column},
				{Param: countryRel.Name, Table: countryRel.Table, Column: countryRel.Column},
				{Param: levelRel.Name, Table: levelRel.Table, Column: levelRel.Column},
			},
			Flags: []query.FlagFilter{
				{Param: "fundingType", Column: "is_fully_funded", Values: query.FundingValues},
				published,
				featured,
			},
		},
		Sorts: query.SortOptions{
			Default: "newest",
			Options: map[string]query.Sort{
				"newest":   newest,
				"oldest":   oldest,
				"deadline": {Field: "deadline"},
				"title":    title,
			},
		},
		Relations:   []Relation{categoryRel, countryRel, levelRel},
		Shape:       shaper(ToScholarship),
		ViewsColumn: "views",
		Rules: func(p normalize.Record, creating bool) error {
			return validation.Errors{
				"title":           fieldRule(p, "title", creating, validation.Required, validation.Length(1, 255)),
				"slug":            fieldRule(p, "slug", creating, validation.Required, validation.Length(1, 255), slugRule),
				"website":         fieldRule(p, "website", false, urlRule),
				"applicationLink": fieldRule(p, "applicationLink", false, urlRule),
			}.Filter()
		},
	},
	"categories": {
		Name:  "categories",
		Table: "categories",
		Filters: query.FilterSet{
			SearchParam:   "search",
			SearchAliases: []string{"q"},
			SearchFields:  []string{"name", "description"},
		},
		Sorts: query.SortOptions{
			Default: "name",
			Options: map[string]query.Sort{"name": byName, "newest": newest},
		},
		Shape: shaper(ToCategory),
		Rules: namedRules,
	},
	"countries": {
		Name:  "countries",
		Table: "countries",
		Filters: query.FilterSet{
			SearchParam:   "search",
			SearchAliases: []string{"q"},
			SearchFields:  []string{"name"},
		},
		Sorts: query.SortOptions{
			Default: "name",
			Options: map[string]query.Sort{"name": byName, "newest": newest},
		},
		Shape: shaper(ToCountry),
		Rules: namedRules,
	},
	"levels": {
		Name:  "levels",
		Table: "levels",
		Filters: query.FilterSet{
			SearchParam:   "search",
			SearchAliases: []string{"q"},
			SearchFields:  []string{"name"},
		},
		Sorts: query.SortOptions{
			Default: "name",
			Options: map[string]query.Sort{"name": byName},
		},
		Shape: shaper(ToLevel),
		Rules: namedRules,
	},
	"success-stories": {
		Name:  "success-stories",
		Table: "success_stories",
		Filters: query.FilterSet{
			SearchParam:   "search",
			SearchAliases: []string{"q"},
			SearchFields:  []string{"title", "content"},
			Flags:         []query.FlagFilter{published},
			Defaults:      query.Filters{"isPublished": "true"},
		},
		Sorts: query.SortOptions{
			Default: "newest",
			Options: map[string]query.Sort{"newest": newest, "oldest": oldest, "title": title},
		},
		Shape: shaper(ToSuccessStory),
		Rules: func(p normalize.Record, creating bool) error {
			return validation.Errors{
				"title": fieldRule(p, "title", creating, validation.Required, validation.Length(1, 255)),
				"slug":  fieldRule(p, "slug", creating, validation.Required, validation.Length(1, 255), slugRule),
			}.Filter()
		},
	},
	"posts": {
		Name:  "posts",
		Table: "posts",
		Filters: query.FilterSet{
			SearchParam:   "search",
			SearchAliases: []string{"q"},
			SearchFields:  []string{"title", "content"},
			References: []query.Reference{
				{Param: categoryRel.Name, Table: categoryRel.Table, Column: categoryRel.Column},
			},
			Flags:    []query.FlagFilter{featured},
			Equals:   []query.EqualsFilter{{Param: "status", Column: "status"}},
			Defaults: query.Filters{"status": "published"},
		},
		Sorts: query.SortOptions{
			Default: "newest",
			Options: map[string]query.Sort{"newest": newest, "oldest": oldest, "title": title},
		},
		Relations:   []Relation{categoryRel},
		Shape:       shaper(ToPost),
		ViewsColumn: "views",
		Rules: func(p normalize.Record, creating bool) error {
			return validation.Errors{
				"title":  fieldRule(p, "title", creating, validation.Required, validation.Length(1, 255)),
				"slug":   fieldRule(p, "slug", creating, validation.Required, validation.Length(1, 255), slugRule),
				"status": fieldRule(p, "status", false, validation.In("draft", "published", "archived")),
			}.Filter()
		},
	},
}

// Lookup returns the EntitySpec registered under name.
func Lookup(name string) (EntitySpec, bool) {
	spec, ok := Entities[name]
	return spec, ok
}

// EntityNames lists the registered route segments.
func EntityNames() []string {
	return []string{"scholarships", "categories", "countries", "levels", "success-stories", "posts"}
}
