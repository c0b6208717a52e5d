package diagnostics

import (
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/santhosh-tekuri/jsonschema/v6/kind"
	"golang.org/x/text/feature/plural"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"

	"github.com/antoniopresto/wasm-validator/internal/validator"
)

// maskedSubject replaces instance values in masked messages.
const maskedSubject = "value"

var messages = newCatalog()

func newCatalog() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	count := func(key, one, other string) {
		_ = b.Set(language.English, key, plural.Selectf(2, "%d", "=1", one, "other", other))
	}
	count("%s is longer than %d characters",
		"%[1]s is longer than %[2]d character", "%[1]s is longer than %[2]d characters")
	count("%s is shorter than %d characters",
		"%[1]s is shorter than %[2]d character", "%[1]s is shorter than %[2]d characters")
	count("%s has more than %d items",
		"%[1]s has more than %[2]d item", "%[1]s has more than %[2]d items")
	count("%s has fewer than %d items",
		"%[1]s has fewer than %[2]d item", "%[1]s has fewer than %[2]d items")
	count("%s has more than %d properties",
		"%[1]s has more than %[2]d property", "%[1]s has more than %[2]d properties")
	count("%s has fewer than %d properties",
		"%[1]s has fewer than %[2]d property", "%[1]s has fewer than %[2]d properties")
	count("%s has more than %d items matching the contains schema",
		"%[1]s has more than %[2]d item matching the contains schema",
		"%[1]s has more than %[2]d items matching the contains schema")
	count("%s has fewer than %d items matching the contains schema",
		"%[1]s has fewer than %[2]d item matching the contains schema",
		"%[1]s has fewer than %[2]d items matching the contains schema")
	return b
}

// renderer produces issue messages. When mask is set, nothing copied from
// the instance (values or property names) appears in a message. Values taken
// from the schema are always shown.
type renderer struct {
	p    *message.Printer
	mask bool
}

func newRenderer(mask bool) *renderer {
	return &renderer{
		p:    message.NewPrinter(language.English, message.Catalog(messages)),
		mask: mask,
	}
}

// subject is how the failing value is referred to.
func (r *renderer) subject(v any) string {
	if r.mask {
		return maskedSubject
	}
	return display(v)
}

func (r *renderer) unexpected(what string, names string) string {
	if r.mask || names == "" {
		return r.p.Sprintf("%s are not allowed", what)
	}
	return r.p.Sprintf("%s are not allowed (%s unexpected)", what, names)
}

//nolint:gocyclo,cyclop // one case per failure kind
func (r *renderer) render(raw jsonschema.ErrorKind, value any) string {
	p := r.p
	s := r.subject(value)

	switch k := raw.(type) {
	case *kind.Type:
		if len(k.Want) == 1 {
			return p.Sprintf("%s is not of type %s", s, display(k.Want[0]))
		}
		return p.Sprintf("%s is not of types %s", s, displayList(k.Want))
	case *kind.InvalidJsonValue:
		return p.Sprintf("%s is not a JSON value", s)
	case *kind.Enum:
		return p.Sprintf("%s is not one of %s", s, display(k.Want))
	case *kind.Const:
		if r.mask {
			return p.Sprintf("%s was expected", display(k.Want))
		}
		return p.Sprintf("%s was expected, got %s", display(k.Want), s)
	case *kind.Format:
		return p.Sprintf("%s is not a %s", s, display(k.Want))
	case *kind.FalseSchema:
		return p.Sprintf("False schema does not allow %s", s)
	case *kind.RefCycle:
		return p.Sprintf("reference %s forms a cycle through %s and %s", display(k.URL), k.KeywordLocation1, k.KeywordLocation2)
	case *kind.Not:
		return p.Sprintf("%s should not be valid under the schema in the 'not' keyword", s)
	case *kind.AnyOf:
		return p.Sprintf("%s is not valid under any of the schemas listed in the 'anyOf' keyword", s)
	case *kind.OneOf:
		if len(k.Subschemas) == 0 {
			return p.Sprintf("%s is not valid under any of the schemas listed in the 'oneOf' keyword", s)
		}
		return p.Sprintf("%s is valid under more than one of the schemas listed in the 'oneOf' keyword (subschemas %s)",
			s, displayInts(k.Subschemas))

	case *kind.MinProperties:
		return p.Sprintf("%s has fewer than %d properties", s, k.Want)
	case *kind.MaxProperties:
		return p.Sprintf("%s has more than %d properties", s, k.Want)
	case *kind.Required:
		return p.Sprintf("%s is a required property", displayList(k.Missing))
	case *kind.Dependency:
		return p.Sprintf("%s is a required property because %s is present", displayList(k.Missing), display(k.Prop))
	case *kind.DependentRequired:
		return p.Sprintf("%s is a required property because %s is present", displayList(k.Missing), display(k.Prop))
	case *kind.AdditionalProperties:
		return r.unexpected("Additional properties", wasWere(displayList(k.Properties), len(k.Properties)))
	case *validator.UnevaluatedProperties:
		return r.unexpected("Unevaluated properties", wasWere(displayList(k.Properties), len(k.Properties)))
	case *kind.PropertyNames:
		if r.mask {
			return p.Sprintf("a property name is not valid under the 'propertyNames' schema")
		}
		return p.Sprintf("property name %s is not valid under the 'propertyNames' schema", display(k.Property))

	case *kind.MinItems:
		return p.Sprintf("%s has fewer than %d items", s, k.Want)
	case *kind.MaxItems:
		return p.Sprintf("%s has more than %d items", s, k.Want)
	case *kind.AdditionalItems:
		return r.unexpected("Additional items", wasWere(displayList(trailing(value, k.Count)), k.Count))
	case *validator.UnevaluatedItems:
		if r.mask {
			return p.Sprintf("Unevaluated items are not allowed")
		}
		return p.Sprintf("Unevaluated items are not allowed (items at %s were unexpected)", displayInts(k.Indexes))
	case *kind.UniqueItems:
		return p.Sprintf("%s has non-unique elements", s)
	case *kind.Contains:
		return p.Sprintf("None of %s are valid under the given schema", s)
	case *kind.MinContains:
		return p.Sprintf("%s has fewer than %d items matching the contains schema", s, k.Want)
	case *kind.MaxContains:
		return p.Sprintf("%s has more than %d items matching the contains schema", s, k.Want)

	case *kind.MinLength:
		return p.Sprintf("%s is shorter than %d characters", s, k.Want)
	case *kind.MaxLength:
		return p.Sprintf("%s is longer than %d characters", s, k.Want)
	case *kind.Pattern:
		return p.Sprintf("%s does not match %s", s, display(k.Want))
	case *validator.BacktrackLimit:
		return p.Sprintf("%s could not be matched against %s within the backtracking limit", s, display(k.Want))
	case *kind.ContentEncoding:
		return p.Sprintf("%s is not compliant with %s content encoding", s, display(k.Want))
	case *kind.ContentMediaType:
		if classify(k) == KindInvalidUTF8 {
			return p.Sprintf("the decoded content of %s is not valid UTF-8", s)
		}
		return p.Sprintf("%s is not compliant with %s media type", s, display(k.Want))
	case *kind.ContentSchema:
		return p.Sprintf("the decoded content of %s is not valid under the 'contentSchema' schema", s)

	case *kind.Minimum:
		return p.Sprintf("%s is less than the minimum of %s", s, displayRat(k.Want))
	case *kind.Maximum:
		return p.Sprintf("%s is greater than the maximum of %s", s, displayRat(k.Want))
	case *kind.ExclusiveMinimum:
		return p.Sprintf("%s is less than or equal to the minimum of %s", s, displayRat(k.Want))
	case *kind.ExclusiveMaximum:
		return p.Sprintf("%s is greater than or equal to the maximum of %s", s, displayRat(k.Want))
	case *kind.MultipleOf:
		return p.Sprintf("%s is not a multiple of %s", s, displayRat(k.Want))
	}

	return r.custom(raw)
}

// custom renders failures without a dedicated message, such as those raised
// by extension vocabularies.
func (r *renderer) custom(raw jsonschema.ErrorKind) string {
	if !r.mask {
		return raw.LocalizedString(r.p)
	}
	if path := raw.KeywordPath(); len(path) > 0 {
		return r.p.Sprintf("%s is not valid under the %s keyword", maskedSubject, display(strings.Join(path, "/")))
	}
	return r.p.Sprintf("%s is not valid", maskedSubject)
}

func wasWere(list string, n int) string {
	switch {
	case list == "":
		return ""
	case n == 1:
		return list + " was"
	default:
		return list + " were"
	}
}

// trailing returns the last n items of an array value.
func trailing(value any, n int) []any {
	arr, ok := value.([]any)
	if !ok || n <= 0 || n > len(arr) {
		return nil
	}
	return arr[len(arr)-n:]
}
