// Package diagnostics validates JSON instances against JSON Schemas and
// reports every violation as an Issue with a stable Code.
//
// A schema is compiled once into a Validator that can be reused, from any
// number of goroutines, for many instances:
//
//	v, err := diagnostics.Compile(schema)
//	if err != nil {
//		// err is Issues holding one invalid_schema issue at "/".
//	}
//	if err := v.Validate(instance); err != nil {
//		issues, _ := diagnostics.AsIssues(err)
//	}
//
// Validate compiles and validates in a single call.
package diagnostics

import (
	"time"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/santhosh-tekuri/jsonschema/v6/kind"

	"github.com/antoniopresto/wasm-validator/internal/validator"
)

// CompilationPath is the path used for the issue reporting a schema that
// could not be compiled.
const CompilationPath = "/"

type options struct {
	maskValues bool
	compiler   validator.Options
	resources  []resource
}

type resource struct {
	url string
	doc any
}

// Option configures Compile and Validate.
type Option func(*options)

// WithMaskValues keeps instance values out of issue messages.
func WithMaskValues(mask bool) Option {
	return func(o *options) { o.maskValues = mask }
}

// WithDraft sets the draft used for schemas without $schema.
func WithDraft(d validator.Draft) Option {
	return func(o *options) { o.compiler.DefaultDraft = d }
}

// WithAssertFormat controls whether format is an assertion.
func WithAssertFormat(assert bool) Option {
	return func(o *options) { o.compiler.AssertFormat = assert }
}

// WithAssertContent controls whether the content keywords are assertions.
func WithAssertContent(assert bool) Option {
	return func(o *options) { o.compiler.AssertContent = assert }
}

// WithRegexTimeout bounds each pattern match. Zero removes the bound.
func WithRegexTimeout(d time.Duration) Option {
	return func(o *options) { o.compiler.RegexTimeout = d }
}

// WithResource registers a document that $ref can resolve to url.
func WithResource(url string, doc any) Option {
	return func(o *options) { o.resources = append(o.resources, resource{url: url, doc: doc}) }
}

// Validator is a compiled schema. It is immutable and safe for concurrent use.
type Validator struct {
	v    validator.Validator
	mask bool
}

// Compile compiles schema. When the schema cannot be compiled the error is
// Issues holding exactly one issue with code invalid_schema at path "/".
// Any other error means the options themselves are invalid.
func Compile(schema any, opts ...Option) (*Validator, error) {
	o := options{compiler: validator.DefaultOptions()}
	for _, opt := range opts {
		opt(&o)
	}

	c, err := validator.NewSanthoshCompiler(o.compiler)
	if err != nil {
		return nil, err
	}
	for _, r := range o.resources {
		if err := c.AddSchema(r.url, r.doc); err != nil {
			return nil, compilationIssues(err)
		}
	}
	if err := c.AddSchema(validator.RootSchemaURL, schema); err != nil {
		return nil, compilationIssues(err)
	}
	v, err := c.Compile(validator.RootSchemaURL)
	if err != nil {
		return nil, compilationIssues(err)
	}
	return &Validator{v: v, mask: o.maskValues}, nil
}

// Validate compiles schema and validates instance against it. The schema is
// compiled on every call; use Compile to validate many instances.
func Validate(schema, instance any, opts ...Option) error {
	v, err := Compile(schema, opts...)
	if err != nil {
		return err
	}
	return v.Validate(instance)
}

// Validate returns nil when instance is valid and Issues otherwise.
func (v *Validator) Validate(instance any) error {
	if iss := v.Issues(instance); len(iss) > 0 {
		return iss
	}
	return nil
}

// Issues returns every issue raised for instance, in evaluation order.
// It returns nil when instance is valid.
func (v *Validator) Issues(instance any) Issues {
	failures := v.v.Evaluate(instance)
	if len(failures) == 0 {
		return nil
	}
	r := newRenderer(v.mask)
	out := make(Issues, 0, len(failures))
	for _, f := range failures {
		path := validator.Pointer(f.InstanceLocation)
		value, _ := validator.ValueAt(instance, f.InstanceLocation)
		for _, raw := range split(f.Kind) {
			out = append(out, Issue{
				Path:    path,
				Message: r.render(raw, value),
				Code:    classify(raw).Code(),
			})
		}
	}
	return out
}

// MaskValues reports whether messages leave out instance values.
func (v *Validator) MaskValues() bool {
	return v.mask
}

// WithMaskValues returns a Validator sharing the compiled schema with v but
// rendering messages with the given masking.
func (v *Validator) WithMaskValues(mask bool) *Validator {
	return &Validator{v: v.v, mask: mask}
}

// split reports each missing property of a required-style failure on its own.
func split(raw jsonschema.ErrorKind) []jsonschema.ErrorKind {
	switch k := raw.(type) {
	case *kind.Required:
		if len(k.Missing) > 1 {
			out := make([]jsonschema.ErrorKind, len(k.Missing))
			for i, name := range k.Missing {
				out[i] = &kind.Required{Missing: []string{name}}
			}
			return out
		}
	case *kind.Dependency:
		if len(k.Missing) > 1 {
			out := make([]jsonschema.ErrorKind, len(k.Missing))
			for i, name := range k.Missing {
				out[i] = &kind.Dependency{Prop: k.Prop, Missing: []string{name}}
			}
			return out
		}
	case *kind.DependentRequired:
		if len(k.Missing) > 1 {
			out := make([]jsonschema.ErrorKind, len(k.Missing))
			for i, name := range k.Missing {
				out[i] = &kind.DependentRequired{Prop: k.Prop, Missing: []string{name}}
			}
			return out
		}
	}
	return []jsonschema.ErrorKind{raw}
}

func compilationIssues(err error) Issues {
	return Issues{{
		Path:    CompilationPath,
		Message: "Schema compilation error: " + err.Error(),
		Code:    CodeInvalidSchema,
	}}
}
