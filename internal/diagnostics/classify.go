package diagnostics

import (
	"unicode/utf8"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/santhosh-tekuri/jsonschema/v6/kind"

	"github.com/antoniopresto/wasm-validator/internal/validator"
)

// classify maps a raw evaluator failure onto its Kind.
func classify(k jsonschema.ErrorKind) Kind {
	switch k := k.(type) {
	// type agnostic
	case *kind.InvalidJsonValue, *kind.Type:
		return KindType
	case *kind.Enum:
		return KindEnum
	case *kind.Const:
		return KindConstant
	case *kind.Format:
		return KindFormat
	case *kind.FalseSchema:
		return KindFalseSchema
	case *kind.RefCycle:
		return KindReferencing
	case *kind.Not:
		return KindNot
	case *kind.AnyOf:
		return KindAnyOf
	case *kind.OneOf:
		if len(k.Subschemas) == 0 {
			return KindOneOfNotValid
		}
		return KindOneOfMultipleValid

	// object
	case *kind.MinProperties:
		return KindMinProperties
	case *kind.MaxProperties:
		return KindMaxProperties
	case *kind.Required, *kind.Dependency, *kind.DependentRequired:
		return KindRequired
	case *kind.AdditionalProperties:
		return KindAdditionalProperties
	case *kind.PropertyNames:
		return KindPropertyNames
	case *validator.UnevaluatedProperties:
		return KindUnevaluatedProperties

	// array
	case *kind.MinItems:
		return KindMinItems
	case *kind.MaxItems:
		return KindMaxItems
	case *kind.AdditionalItems:
		return KindAdditionalItems
	case *kind.UniqueItems:
		return KindUniqueItems
	case *kind.Contains, *kind.MinContains, *kind.MaxContains:
		return KindContains
	case *validator.UnevaluatedItems:
		return KindUnevaluatedItems

	// string
	case *kind.MinLength:
		return KindMinLength
	case *kind.MaxLength:
		return KindMaxLength
	case *kind.Pattern:
		return KindPattern
	case *validator.BacktrackLimit:
		return KindBacktrackLimit
	case *kind.ContentEncoding:
		return KindContentEncoding
	case *kind.ContentMediaType:
		if !utf8.Valid(k.Got) {
			return KindInvalidUTF8
		}
		return KindContentMediaType
	case *kind.ContentSchema:
		return KindContentMediaType

	// number
	case *kind.Minimum:
		return KindMinimum
	case *kind.Maximum:
		return KindMaximum
	case *kind.ExclusiveMinimum:
		return KindExclusiveMinimum
	case *kind.ExclusiveMaximum:
		return KindExclusiveMaximum
	case *kind.MultipleOf:
		return KindMultipleOf

	// containers only reach here without causes
	case *kind.Schema, *kind.Group, *kind.AllOf, *kind.Reference, *validator.Unknown:
		return KindCustom

	default:
		// kinds raised by extension vocabularies
		return KindCustom
	}
}
