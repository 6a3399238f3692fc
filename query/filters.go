package query

// Filters holds raw filter values keyed by their request parameter name.
// Absent and empty values are equivalent.
type Filters map[string]string

// Get returns the trimmed value for name, checking aliases in order.
func (f Filters) Get(name string, aliases ...string) string {
	if v := trimmed(f[name]); v != "" {
		return v
	}
	for _, alias := range aliases {
		if v := trimmed(f[alias]); v != "" {
			return v
		}
	}
	return ""
}

// Reference describes a filter whose value is a slug that must be resolved to
// the id of a row in another table before it can be applied.
type Reference struct {
	Param  string // request parameter, e.g. "category"
	Table  string // lookup table, e.g. "categories"
	Column string // foreign key column on the filtered table, e.g. "category_id"
}

// FlagFilter maps a set of recognized string values onto a boolean column.
// Values outside the map are ignored.
type FlagFilter struct {
	Param  string
	Column string
	Values map[string]bool
}

// EqualsFilter applies the raw value as an equality predicate on Column.
type EqualsFilter struct {
	Param  string
	Column string
}

// FilterSet declares which filters a list endpoint recognizes.
type FilterSet struct {
	SearchParam   string
	SearchAliases []string
	SearchFields  []string
	References    []Reference
	Flags         []FlagFilter
	Equals        []EqualsFilter
	// Defaults are applied for parameters the caller did not send.
	Defaults Filters
}

// BoolValues is the FlagFilter value map for "true"/"false" parameters.
var BoolValues = map[string]bool{"true": true, "false": false}

// FundingValues is the FlagFilter value map for the fundingType parameter.
var FundingValues = map[string]bool{"fully-funded": true, "partial": false}

func (s FilterSet) withDefaults(f Filters) Filters {
	if len(s.Defaults) == 0 {
		return f
	}
	out := make(Filters, len(f)+len(s.Defaults))
	for k, v := range s.Defaults {
		out[k] = v
	}
	for k, v := range f {
		if trimmed(v) != "" {
			out[k] = v
		}
	}
	return out
}
