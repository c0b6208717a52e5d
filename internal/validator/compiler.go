// Package validator wraps a JSON Schema evaluator behind a small interface and
// turns its nested error trees into flat lists of raw failures.
package validator

import (
	"time"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Draft represents a JSON Schema draft version.
type Draft string

const (
	// Draft4 represents JSON Schema Draft 4.
	Draft4 Draft = "http://json-schema.org/draft-04/schema#"
	// Draft6 represents JSON Schema Draft 6.
	Draft6 Draft = "http://json-schema.org/draft-06/schema#"
	// Draft7 represents JSON Schema Draft 7.
	Draft7 Draft = "http://json-schema.org/draft-07/schema#"
	// Draft2019_09 represents JSON Schema Draft 2019-09.
	Draft2019_09 Draft = "https://json-schema.org/draft/2019-09/schema"
	// Draft2020_12 represents JSON Schema Draft 2020-12.
	Draft2020_12 Draft = "https://json-schema.org/draft/2020-12/schema"
)

// DefaultDraft is used for schemas that do not declare $schema.
const DefaultDraft = Draft2020_12

// DefaultRegexTimeout bounds a single pattern match.
const DefaultRegexTimeout = time.Second

// RootSchemaURL is the location under which an anonymous schema document is
// registered. The mem scheme has no loader, so unresolved references fail
// compilation instead of reaching the network or the filesystem.
const RootSchemaURL = "mem:///schema.json"

// A JSONDocument is a parsed JSON document made of nil, bool, json.Number (or
// another Go number), string, []any and map[string]any.
type JSONDocument interface{}

// A JSONSchema is a parsed JSON document representing a JSON Schema.
// A Compiler must compile the JSONSchema before use, which identifies any JSON Schema issues.
type JSONSchema JSONDocument

// Failure is one violation raised by the evaluator.
type Failure struct {
	// Kind describes the violation. It is either one of the evaluator's own kinds
	// or one of the kinds declared in this package.
	Kind jsonschema.ErrorKind
	// InstanceLocation holds the unescaped reference tokens of the failing value.
	InstanceLocation []string
	// KeywordLocation is the absolute location of the failing keyword.
	KeywordLocation string
}

// Validator evaluates documents against a compiled schema.
// Implementations must be safe for concurrent use.
type Validator interface {
	// Evaluate returns every failure raised for the document, or nil when it is valid.
	Evaluate(v JSONDocument) []Failure
}

// Compiler defines a JSON Schema compiler. Because JSON schemas can, and often do, reference
// other sub-schemas via $ref, a Compiler first must register all the
// JSON Schemas that it will need to compile.
type Compiler interface {
	// AddSchema registers a JSONSchema with the compiler.
	// An error is produced if the JSONSchema cannot be added.
	AddSchema(id string, data JSONSchema) error

	// Compile creates a Validator from the JSONSchema previously added with the given ID.
	// An error is produced if the JSONSchema cannot be compiled.
	Compile(id string) (Validator, error)

	// SupportedSchemaVersions returns a slice of Draft representing the supported schema versions.
	SupportedSchemaVersions() []Draft

	// Clear resets the compiler state, removing all registered schemas.
	Clear()
}

// Options tune how schemas are compiled and evaluated.
type Options struct {
	// DefaultDraft applies to schemas without $schema. Empty means DefaultDraft.
	DefaultDraft Draft
	// AssertFormat makes the format keyword an assertion for every draft.
	AssertFormat bool
	// AssertContent makes contentEncoding, contentMediaType and contentSchema assertions.
	AssertContent bool
	// RegexTimeout bounds each pattern match. Zero disables the bound.
	RegexTimeout time.Duration
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		DefaultDraft: DefaultDraft,
		AssertFormat: true,
		RegexTimeout: DefaultRegexTimeout,
	}
}
