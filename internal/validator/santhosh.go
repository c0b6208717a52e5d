package validator

import (
	"errors"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

var santhoshDrafts = map[Draft]*jsonschema.Draft{
	Draft4:       jsonschema.Draft4,
	Draft6:       jsonschema.Draft6,
	Draft7:       jsonschema.Draft7,
	Draft2019_09: jsonschema.Draft2019,
	Draft2020_12: jsonschema.Draft2020,
}

// NewSanthoshCompiler returns a concrete implementation of Compiler
// using the santhosh-tekuri/jsonschema/v6 package.
func NewSanthoshCompiler(opts Options) (Compiler, error) {
	if opts.DefaultDraft == "" {
		opts.DefaultDraft = DefaultDraft
	}
	if _, ok := santhoshDrafts[opts.DefaultDraft]; !ok {
		return nil, &UnsupportedDraftError{Draft: opts.DefaultDraft}
	}
	s := &santhoshCompiler{opts: opts}
	s.c = s.newCompiler()
	return s, nil
}

// santhoshValidator wraps jsonschema.Schema to implement Validator.
type santhoshValidator struct {
	v           *jsonschema.Schema
	unevaluated map[string]unevaluatedKeyword
	layout      map[string]layoutNode
	engine      *ecmaEngine
}

// Evaluate runs the schema and flattens the resulting error tree.
func (sv *santhoshValidator) Evaluate(doc JSONDocument) []Failure {
	err := sv.v.Validate(doc)
	if err == nil {
		return nil
	}
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		// Validate only ever reports *ValidationError.
		return []Failure{{Kind: &Unknown{Err: err}, InstanceLocation: []string{}}}
	}
	f := &flattener{
		doc:         doc,
		unevaluated: sv.unevaluated,
		layout:      sv.layout,
		engine:      sv.engine,
	}
	return f.flatten(verr)
}

// santhoshCompiler wraps jsonschema.Compiler to implement Compiler.
type santhoshCompiler struct {
	mu     sync.Mutex
	opts   Options
	c      *jsonschema.Compiler
	engine *ecmaEngine // Compiles the patterns of c
}

// newCompiler also replaces s.engine, since patterns are compiled with it.
func (s *santhoshCompiler) newCompiler() *jsonschema.Compiler {
	s.engine = newECMAEngine(s.opts.RegexTimeout)
	c := jsonschema.NewCompiler()
	c.DefaultDraft(santhoshDrafts[s.opts.DefaultDraft])
	c.UseLoader(refusingLoader{})
	c.UseRegexpEngine(s.engine.compile)
	if s.opts.AssertFormat {
		c.AssertFormat()
	}
	if s.opts.AssertContent {
		c.AssertContent()
	}
	return c
}

func (s *santhoshCompiler) AddSchema(id string, schemaData JSONSchema) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.AddResource(id, schemaData)
}

func (s *santhoshCompiler) Compile(id string) (Validator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, err := s.c.Compile(id)
	if err != nil {
		return nil, err
	}
	return &santhoshValidator{
		v:           v,
		unevaluated: collectUnevaluated(v),
		layout:      collectLayout(v),
		engine:      s.engine,
	}, nil
}

func (s *santhoshCompiler) SupportedSchemaVersions() []Draft {
	return []Draft{
		Draft4,
		Draft6,
		Draft7,
		Draft2019_09,
		Draft2020_12,
	}
}

func (s *santhoshCompiler) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.c = s.newCompiler()
}

// refusingLoader is consulted for any URL that was not added with AddSchema.
type refusingLoader struct{}

func (refusingLoader) Load(url string) (any, error) {
	return nil, &ExternalReferenceError{URL: url}
}
