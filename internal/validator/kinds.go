package validator

import (
	"golang.org/x/text/message"
)

// The kinds below are raised by this package for failures the evaluator
// reports in a less specific form.

// UnevaluatedProperties is raised when properties not covered by any
// evaluated keyword fail unevaluatedProperties.
type UnevaluatedProperties struct {
	Properties []string
}

func (*UnevaluatedProperties) KeywordPath() []string {
	return []string{"unevaluatedProperties"}
}

func (k *UnevaluatedProperties) LocalizedString(p *message.Printer) string {
	return p.Sprintf("unevaluated properties %q not allowed", k.Properties)
}

// UnevaluatedItems is raised when items not covered by any evaluated
// keyword fail unevaluatedItems.
type UnevaluatedItems struct {
	Indexes []int
}

func (*UnevaluatedItems) KeywordPath() []string {
	return []string{"unevaluatedItems"}
}

func (k *UnevaluatedItems) LocalizedString(p *message.Printer) string {
	return p.Sprintf("unevaluated items at %v not allowed", k.Indexes)
}

// BacktrackLimit is raised instead of a pattern mismatch when the match gave
// up before reaching a verdict.
type BacktrackLimit struct {
	Got  string
	Want string
}

func (*BacktrackLimit) KeywordPath() []string {
	return []string{"pattern"}
}

func (k *BacktrackLimit) LocalizedString(p *message.Printer) string {
	return p.Sprintf("matching %q against pattern %q exceeded the backtracking budget", k.Got, k.Want)
}

// Unknown carries an evaluator error that could not be interpreted.
type Unknown struct {
	Err error
}

func (*Unknown) KeywordPath() []string {
	return nil
}

func (k *Unknown) LocalizedString(p *message.Printer) string {
	return p.Sprintf("%v", k.Err)
}
