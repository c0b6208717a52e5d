package diagnostics

// Code is a stable, machine-readable classification of an issue. Codes are
// part of the public contract: renaming one is a breaking change.
type Code string

// Instance-level codes.
const (
	CodeAdditionalItems       Code = "additional_items"
	CodeAdditionalProperties  Code = "additional_properties"
	CodeAnyOfMismatch         Code = "any_of_mismatch"
	CodeRegexBacktrackLimit   Code = "regex_backtrack_limit"
	CodeConstMismatch         Code = "const_mismatch"
	CodeNoMatchInContains     Code = "no_match_in_contains"
	CodeInvalidContentEnc     Code = "invalid_content_encoding"
	CodeInvalidMediaType      Code = "invalid_media_type"
	CodeCustomError           Code = "custom_error"
	CodeEnumMismatch          Code = "enum_mismatch"
	CodeExclusiveMax          Code = "exclusive_max"
	CodeExclusiveMin          Code = "exclusive_min"
	CodeDisallowedValue       Code = "disallowed_value"
	CodeFormatMismatch        Code = "format_mismatch"
	CodeInvalidUTF8           Code = "invalid_utf8"
	CodeTooLarge              Code = "too_large"
	CodeTooManyItems          Code = "too_many_items"
	CodeTooLong               Code = "too_long"
	CodeTooManyProperties     Code = "too_many_properties"
	CodeTooSmall              Code = "too_small"
	CodeTooFewItems           Code = "too_few_items"
	CodeTooShort              Code = "too_short"
	CodeTooFewProperties      Code = "too_few_properties"
	CodeNotAMultiple          Code = "not_a_multiple"
	CodeNegatedSchemaMatch    Code = "negated_schema_match"
	CodeOneOfMultipleMatches  Code = "one_of_multiple_matches"
	CodeOneOfNoMatch          Code = "one_of_no_match"
	CodePatternMismatch       Code = "pattern_mismatch"
	CodeInvalidPropertyName   Code = "invalid_property_name"
	CodeMissingProperty       Code = "missing_property"
	CodeInvalidType           Code = "invalid_type"
	CodeUnevaluatedItems      Code = "unevaluated_items"
	CodeUnevaluatedProperties Code = "unevaluated_properties"
	CodeDuplicateItems        Code = "duplicate_items"
	CodeSchemaReferenceError  Code = "schema_reference_error"
)

// CodeInvalidSchema is reserved for schemas that fail to compile.
const CodeInvalidSchema Code = "invalid_schema"

// AllCodes returns every instance-level code in taxonomy order.
func AllCodes() []Code {
	codes := make([]Code, 0, kindCount)
	for k := range kindCount {
		codes = append(codes, k.Code())
	}
	return codes
}
