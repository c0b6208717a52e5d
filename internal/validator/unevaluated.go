package validator

import (
	"github.com/santhosh-tekuri/jsonschema/v6"
)

type unevaluatedKeyword int

const (
	unevaluatedPropertiesKeyword unevaluatedKeyword = iota + 1
	unevaluatedItemsKeyword
)

// collectUnevaluated records the locations of every unevaluatedProperties
// and unevaluatedItems subschema reachable from root.
func collectUnevaluated(root *jsonschema.Schema) map[string]unevaluatedKeyword {
	out := map[string]unevaluatedKeyword{}
	visit(root, func(s *jsonschema.Schema) {
		if s.UnevaluatedProperties != nil {
			out[s.UnevaluatedProperties.Location] = unevaluatedPropertiesKeyword
		}
		if s.UnevaluatedItems != nil {
			out[s.UnevaluatedItems.Location] = unevaluatedItemsKeyword
		}
	})
	return out
}

// visit calls fn once for every schema reachable from root.
func visit(root *jsonschema.Schema, fn func(*jsonschema.Schema)) {
	seen := map[*jsonschema.Schema]bool{}
	var walk func(s *jsonschema.Schema)
	walk = func(s *jsonschema.Schema) {
		if s == nil || seen[s] {
			return
		}
		seen[s] = true
		fn(s)
		for _, sub := range subschemas(s) {
			walk(sub)
		}
	}
	walk(root)
}

func subschemas(s *jsonschema.Schema) []*jsonschema.Schema {
	subs := []*jsonschema.Schema{
		s.Ref, s.RecursiveRef, s.Not, s.If, s.Then, s.Else,
		s.PropertyNames, s.UnevaluatedProperties,
		s.Contains, s.Items2020, s.UnevaluatedItems, s.ContentSchema,
	}
	if s.DynamicRef != nil {
		subs = append(subs, s.DynamicRef.Ref)
	}
	subs = append(subs, s.AllOf...)
	subs = append(subs, s.AnyOf...)
	subs = append(subs, s.OneOf...)
	subs = append(subs, s.PrefixItems...)
	for _, sub := range s.Properties {
		subs = append(subs, sub)
	}
	for _, sub := range s.PatternProperties {
		subs = append(subs, sub)
	}
	for _, sub := range s.DependentSchemas {
		subs = append(subs, sub)
	}
	for _, dep := range s.Dependencies {
		if sub, ok := dep.(*jsonschema.Schema); ok {
			subs = append(subs, sub)
		}
	}
	for _, v := range []any{s.AdditionalProperties, s.AdditionalItems, s.Items} {
		switch v := v.(type) {
		case *jsonschema.Schema:
			subs = append(subs, v)
		case []*jsonschema.Schema:
			subs = append(subs, v...)
		}
	}
	return subs
}
