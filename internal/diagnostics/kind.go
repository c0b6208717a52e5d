package diagnostics

// Kind is the closed set of failure classifications. Every Kind maps to
// exactly one Code.
type Kind int

const (
	KindAdditionalItems Kind = iota
	KindAdditionalProperties
	KindAnyOf
	KindBacktrackLimit
	KindConstant
	KindContains
	KindContentEncoding
	KindContentMediaType
	KindCustom
	KindEnum
	KindExclusiveMaximum
	KindExclusiveMinimum
	KindFalseSchema
	KindFormat
	KindInvalidUTF8
	KindMaximum
	KindMaxItems
	KindMaxLength
	KindMaxProperties
	KindMinimum
	KindMinItems
	KindMinLength
	KindMinProperties
	KindMultipleOf
	KindNot
	KindOneOfMultipleValid
	KindOneOfNotValid
	KindPattern
	KindPropertyNames
	KindRequired
	KindType
	KindUnevaluatedItems
	KindUnevaluatedProperties
	KindUniqueItems
	KindReferencing

	kindCount
)

var kindCodes = [...]Code{
	KindAdditionalItems:       CodeAdditionalItems,
	KindAdditionalProperties:  CodeAdditionalProperties,
	KindAnyOf:                 CodeAnyOfMismatch,
	KindBacktrackLimit:        CodeRegexBacktrackLimit,
	KindConstant:              CodeConstMismatch,
	KindContains:              CodeNoMatchInContains,
	KindContentEncoding:       CodeInvalidContentEnc,
	KindContentMediaType:      CodeInvalidMediaType,
	KindCustom:                CodeCustomError,
	KindEnum:                  CodeEnumMismatch,
	KindExclusiveMaximum:      CodeExclusiveMax,
	KindExclusiveMinimum:      CodeExclusiveMin,
	KindFalseSchema:           CodeDisallowedValue,
	KindFormat:                CodeFormatMismatch,
	KindInvalidUTF8:           CodeInvalidUTF8,
	KindMaximum:               CodeTooLarge,
	KindMaxItems:              CodeTooManyItems,
	KindMaxLength:             CodeTooLong,
	KindMaxProperties:         CodeTooManyProperties,
	KindMinimum:               CodeTooSmall,
	KindMinItems:              CodeTooFewItems,
	KindMinLength:             CodeTooShort,
	KindMinProperties:         CodeTooFewProperties,
	KindMultipleOf:            CodeNotAMultiple,
	KindNot:                   CodeNegatedSchemaMatch,
	KindOneOfMultipleValid:    CodeOneOfMultipleMatches,
	KindOneOfNotValid:         CodeOneOfNoMatch,
	KindPattern:               CodePatternMismatch,
	KindPropertyNames:         CodeInvalidPropertyName,
	KindRequired:              CodeMissingProperty,
	KindType:                  CodeInvalidType,
	KindUnevaluatedItems:      CodeUnevaluatedItems,
	KindUnevaluatedProperties: CodeUnevaluatedProperties,
	KindUniqueItems:           CodeDuplicateItems,
	KindReferencing:           CodeSchemaReferenceError,
}

// Adding a Kind without a code breaks the build here.
var _ = [1]struct{}{}[len(kindCodes)-int(kindCount)]

// Code returns the stable code for k.
func (k Kind) Code() Code {
	if k < 0 || k >= kindCount {
		return CodeCustomError
	}
	return kindCodes[k]
}

func (k Kind) String() string {
	return string(k.Code())
}
