package validator

import (
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/santhosh-tekuri/jsonschema/v6/kind"
)

// flattener turns the evaluator's error tree into a flat list of failures.
//
// Schema, Group, AllOf and Reference nodes only carry causes and are
// skipped. Every other node is one failure, and its causes (the branches
// of anyOf, oneOf, not, contains or propertyNames) are not reported.
//
// Siblings are ordered by instance location and then keyword location,
// because the evaluator visits properties and dependencies in map order.
type flattener struct {
	doc         any
	unevaluated map[string]unevaluatedKeyword
	layout      map[string]layoutNode
	engine      *ecmaEngine
}

// indexShift adds delta to the array index at position pos of every
// instance location below a failure.
type indexShift struct {
	pos   int
	delta int
}

func (f *flattener) flatten(root *jsonschema.ValidationError) []Failure {
	return f.walk(root, []string{}, "", nil)
}

// walk flattens e. anchor and base are the instance location and the schema
// location its parent was evaluated at.
func (f *flattener) walk(e *jsonschema.ValidationError, anchor []string, base string, shifts []indexShift) []Failure {
	loc, shifts := f.locate(e, anchor, base, shifts)

	if kw, ok := f.unevaluated[e.SchemaURL]; ok && len(loc) > 0 {
		return []Failure{f.unevaluatedFailure(e.SchemaURL, kw, loc)}
	}

	switch k := e.ErrorKind.(type) {
	case *kind.Schema, *kind.Group, *kind.AllOf, *kind.Reference:
		if len(e.Causes) > 0 {
			return f.walkCauses(e.Causes, loc, evaluatedAt(e), shifts)
		}
	case *kind.PropertyNames:
		loc = f.locateObject(loc, k.Property)
	case *kind.ContentSchema:
		loc = f.locateString(loc)
	case *kind.Pattern:
		if f.engine != nil && f.engine.timedOut(k.Want, k.Got) {
			return []Failure{leaf(e.SchemaURL, &BacktrackLimit{Got: k.Got, Want: k.Want}, loc)}
		}
	}
	return []Failure{leaf(e.SchemaURL, e.ErrorKind, loc)}
}

// evaluatedAt returns the location of the schema the causes of e were
// evaluated against.
func evaluatedAt(e *jsonschema.ValidationError) string {
	if ref, ok := e.ErrorKind.(*kind.Reference); ok {
		return ref.URL
	}
	return e.SchemaURL
}

// locate returns the instance location of e with array indexes corrected.
//
// The evaluator numbers the items checked by items after prefixItems, and by
// additionalItems after an items array, from zero. Every such keyword
// crossed between base and the schema of e fixes the index it introduced,
// for e and everything below it.
func (f *flattener) locate(e *jsonschema.ValidationError, anchor []string, base string, shifts []indexShift) ([]string, []indexShift) {
	if e.InstanceLocation == nil {
		return anchor, shifts
	}
	loc := slices.Clone(e.InstanceLocation)
	for _, s := range shifts {
		if s.pos < len(loc) {
			loc[s.pos] = shiftIndex(loc[s.pos], s.delta)
		}
	}

	for _, s := range f.crossed(base, e.SchemaURL, len(anchor)) {
		if s.pos >= len(loc) || slices.ContainsFunc(shifts, func(o indexShift) bool { return o.pos == s.pos }) {
			continue
		}
		idx, err := strconv.Atoi(loc[s.pos])
		if err != nil {
			continue
		}
		if arr, ok := ValueAt(f.doc, loc[:s.pos]); !ok || !hasIndex(arr, idx+s.delta) {
			continue
		}
		loc[s.pos] = strconv.Itoa(idx + s.delta)
		shifts = append(slices.Clip(shifts), s)
	}
	return loc, shifts
}

// crossed returns the shifts for the offset item keywords on the way from
// the schema at from, applied at instance depth depth, down to the schema at
// to.
func (f *flattener) crossed(from, to string, depth int) []indexShift {
	if from == "" || from == to {
		return nil
	}
	var chain []layoutNode
	for cur := to; cur != from; {
		n, ok := f.layout[cur]
		if !ok || len(chain) > len(f.layout) {
			return nil
		}
		chain = append(chain, n)
		cur = n.parent
	}

	var out []indexShift
	tokens := 0
	for i := len(chain) - 1; i >= 0; i-- {
		tokens += chain[i].tokens
		if chain[i].offset > 0 {
			out = append(out, indexShift{pos: depth + tokens - 1, delta: chain[i].offset})
		}
	}
	return out
}

func hasIndex(v any, idx int) bool {
	arr, ok := v.([]any)
	return ok && idx < len(arr)
}

func shiftIndex(tok string, delta int) string {
	idx, err := strconv.Atoi(tok)
	if err != nil {
		return tok
	}
	return strconv.Itoa(idx + delta)
}

func (f *flattener) walkCauses(causes []*jsonschema.ValidationError, anchor []string, base string, shifts []indexShift) []Failure {
	type child struct {
		err *jsonschema.ValidationError
		loc []string
		kw  string
	}
	children := make([]child, 0, len(causes))
	for _, c := range causes {
		loc, _ := f.locate(c, anchor, base, shifts)
		children = append(children, child{err: c, loc: loc, kw: keywordLocation(c.SchemaURL, c.ErrorKind.KeywordPath())})
	}
	sort.SliceStable(children, func(i, j int) bool {
		if c := compareLocations(children[i].loc, children[j].loc); c != 0 {
			return c < 0
		}
		return children[i].kw < children[j].kw
	})

	var out []Failure
	for _, c := range children {
		for _, failure := range f.walk(c.err, anchor, base, shifts) {
			out = mergeUnevaluated(out, failure)
		}
	}
	return out
}

func (f *flattener) unevaluatedFailure(schemaURL string, kw unevaluatedKeyword, loc []string) Failure {
	parent := slices.Clone(loc[:len(loc)-1])
	last := loc[len(loc)-1]
	failure := Failure{InstanceLocation: parent, KeywordLocation: schemaURL}
	switch kw {
	case unevaluatedItemsKeyword:
		idx, _ := strconv.Atoi(last)
		failure.Kind = &UnevaluatedItems{Indexes: []int{idx}}
	default:
		failure.Kind = &UnevaluatedProperties{Properties: []string{last}}
	}
	return failure
}

// mergeUnevaluated appends failure to out, folding it into the previous
// failure when both report unevaluated members of the same value.
func mergeUnevaluated(out []Failure, failure Failure) []Failure {
	if len(out) == 0 {
		return append(out, failure)
	}
	prev := &out[len(out)-1]
	if prev.KeywordLocation != failure.KeywordLocation ||
		compareLocations(prev.InstanceLocation, failure.InstanceLocation) != 0 {
		return append(out, failure)
	}
	switch k := failure.Kind.(type) {
	case *UnevaluatedProperties:
		if p, ok := prev.Kind.(*UnevaluatedProperties); ok {
			p.Properties = append(p.Properties, k.Properties...)
			return out
		}
	case *UnevaluatedItems:
		if p, ok := prev.Kind.(*UnevaluatedItems); ok {
			p.Indexes = append(p.Indexes, k.Indexes...)
			return out
		}
	}
	return append(out, failure)
}

// locateObject finds the object owning a property name rejected by
// propertyNames. The evaluator validates names as standalone documents, so
// their failures only carry the location of an enclosing value.
func (f *flattener) locateObject(anchor []string, name string) []string {
	found := f.search(anchor, func(v any) bool {
		obj, ok := v.(map[string]any)
		if !ok {
			return false
		}
		_, ok = obj[name]
		return ok
	}, false)
	if found == nil {
		return anchor
	}
	return found
}

// locateString finds the string decoded for contentSchema. Only an
// unambiguous candidate replaces the enclosing location.
func (f *flattener) locateString(anchor []string) []string {
	found := f.search(anchor, func(v any) bool {
		_, ok := v.(string)
		return ok
	}, true)
	if found == nil {
		return anchor
	}
	return found
}

// search walks the document breadth first from anchor and returns the
// location of the first value matching pred. When unique is set, nil is
// returned unless exactly one value matches.
func (f *flattener) search(anchor []string, pred func(any) bool, unique bool) []string {
	start, ok := ValueAt(f.doc, anchor)
	if !ok {
		return nil
	}
	type node struct {
		v   any
		loc []string
	}
	var found []string
	matches := 0
	queue := []node{{v: start, loc: anchor}}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if pred(n.v) {
			matches++
			if found == nil {
				found = slices.Clone(n.loc)
			}
			if !unique {
				return found
			}
		}
		switch v := n.v.(type) {
		case map[string]any:
			keys := make([]string, 0, len(v))
			for k := range v {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				queue = append(queue, node{v: v[k], loc: append(slices.Clone(n.loc), k)})
			}
		case []any:
			for i, item := range v {
				queue = append(queue, node{v: item, loc: append(slices.Clone(n.loc), strconv.Itoa(i))})
			}
		}
	}
	if matches != 1 {
		return nil
	}
	return found
}

func leaf(schemaURL string, k jsonschema.ErrorKind, loc []string) Failure {
	return Failure{
		Kind:             k,
		InstanceLocation: slices.Clone(loc),
		KeywordLocation:  keywordLocation(schemaURL, k.KeywordPath()),
	}
}

func keywordLocation(schemaURL string, path []string) string {
	var sb strings.Builder
	sb.WriteString(schemaURL)
	for _, tok := range path {
		sb.WriteByte('/')
		sb.WriteString(EscapeToken(tok))
	}
	return sb.String()
}

// compareLocations orders instance locations token by token. Tokens that are
// both array indexes compare numerically.
func compareLocations(a, b []string) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] == b[i] {
			continue
		}
		ai, aErr := strconv.Atoi(a[i])
		bi, bErr := strconv.Atoi(b[i])
		if aErr == nil && bErr == nil && ai != bi {
			if ai < bi {
				return -1
			}
			return 1
		}
		return strings.Compare(a[i], b[i])
	}
	return len(a) - len(b)
}
