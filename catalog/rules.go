package catalog

import (
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/goliatone/go-scholarship-catalog/normalize"
)

var (
	slugRule = validation.Match(regexp.MustCompile(`^[a-z0-9\p{L}]+(?:-[a-z0-9\p{L}]+)*$`)).
			Error("must be lowercase words separated by hyphens")
	urlRule = is.URL
)

// fieldRule validates the payload field camel. Absent fields pass unless
// required.
func fieldRule(p normalize.Record, camel string, required bool, rules ...validation.Rule) error {
	v, ok := p.Lookup(camel)
	if !ok {
		if required {
			return validation.ErrRequired
		}
		return nil
	}
	s, isString := v.(string)
	if !isString {
		return validation.NewError("validation_is_string", "must be a string")
	}
	return validation.Validate(s, rules...)
}

func namedRules(p normalize.Record, creating bool) error {
	return validation.Errors{
		"name": fieldRule(p, "name", creating, validation.Required, validation.Length(1, 255)),
		"slug": fieldRule(p, "slug", creating, validation.Required, validation.Length(1, 255), slugRule),
	}.Filter()
}
