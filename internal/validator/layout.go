package validator

import (
	"github.com/santhosh-tekuri/jsonschema/v6"
)

// layoutNode places a subschema below the schema that contains it.
type layoutNode struct {
	// parent is the location of the containing schema.
	parent string
	// tokens is the number of instance tokens the evaluator appends when it
	// applies the subschema: one for property and item keywords, zero for
	// in-place applicators.
	tokens int
	// offset is set on items subschemas that follow prefixItems and on
	// additionalItems subschemas that follow an items array. It is the
	// number of array members checked before them.
	offset int
}

// collectLayout maps the location of every subschema reachable from root to
// its place in the containing schema. Schemas only reached through a
// reference have no entry.
func collectLayout(root *jsonschema.Schema) map[string]layoutNode {
	out := map[string]layoutNode{}
	visit(root, func(s *jsonschema.Schema) {
		for _, e := range structuralEdges(s) {
			out[e.sub.Location] = layoutNode{parent: s.Location, tokens: e.tokens}
		}
	})
	visit(root, func(s *jsonschema.Schema) {
		if s.Items2020 != nil && len(s.PrefixItems) > 0 {
			n := out[s.Items2020.Location]
			n.offset = len(s.PrefixItems)
			out[s.Items2020.Location] = n
		}
		items, ok := s.Items.([]*jsonschema.Schema)
		if !ok || len(items) == 0 {
			return
		}
		if additional, ok := s.AdditionalItems.(*jsonschema.Schema); ok {
			n := out[additional.Location]
			n.offset = len(items)
			out[additional.Location] = n
		}
	})
	return out
}

type edge struct {
	sub    *jsonschema.Schema
	tokens int
}

// structuralEdges lists the subschemas written inside s. References are not
// edges. propertyNames and contentSchema are left out because their failures
// are reported without descending into them.
func structuralEdges(s *jsonschema.Schema) []edge {
	var out []edge
	add := func(tokens int, subs ...*jsonschema.Schema) {
		for _, sub := range subs {
			if sub != nil {
				out = append(out, edge{sub: sub, tokens: tokens})
			}
		}
	}

	add(0, s.Not, s.If, s.Then, s.Else)
	add(0, s.AllOf...)
	add(0, s.AnyOf...)
	add(0, s.OneOf...)
	for _, sub := range s.DependentSchemas {
		add(0, sub)
	}
	for _, dep := range s.Dependencies {
		if sub, ok := dep.(*jsonschema.Schema); ok {
			add(0, sub)
		}
	}

	for _, sub := range s.Properties {
		add(1, sub)
	}
	for _, sub := range s.PatternProperties {
		add(1, sub)
	}
	add(1, s.PrefixItems...)
	add(1, s.Items2020, s.Contains, s.UnevaluatedProperties, s.UnevaluatedItems)
	for _, v := range []any{s.AdditionalProperties, s.AdditionalItems, s.Items} {
		switch v := v.(type) {
		case *jsonschema.Schema:
			add(1, v)
		case []*jsonschema.Schema:
			add(1, v...)
		}
	}
	return out
}
