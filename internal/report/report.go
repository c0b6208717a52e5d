// Package report collects the outcome of validating documents and writes it
// as text or JSON.
package report

import (
	"io"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/antoniopresto/wasm-validator/internal/diagnostics"
)

// Reporter defines the interface for creating formatted validation reports.
type Reporter interface {
	Write(w io.Writer, report *Report) error
}

// Status is the outcome for a single document.
type Status int

const (
	StatusValid Status = iota
	StatusInvalid
	// StatusUnreadable means the document could not be read or decoded.
	StatusUnreadable
)

func (s Status) String() string {
	switch s {
	case StatusValid:
		return "valid"
	case StatusInvalid:
		return "invalid"
	default:
		return "unreadable"
	}
}

// Result is the outcome of validating one document.
type Result struct {
	Path   string
	Issues diagnostics.Issues
	Err    error
}

func (r Result) Status() Status {
	switch {
	case r.Err != nil:
		return StatusUnreadable
	case len(r.Issues) > 0:
		return StatusInvalid
	default:
		return StatusValid
	}
}

// Report represents the results of a validation run.
type Report struct {
	mu sync.Mutex

	Schema    string
	StartTime time.Time
	EndTime   time.Time
	results   []Result
}

// NewReport creates a new Report for documents validated against schema.
func NewReport(schema string) *Report {
	return &Report{Schema: schema, StartTime: time.Now()}
}

// Add records a result. It is safe to call from several goroutines.
func (r *Report) Add(res Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, res)
}

// Finish stamps the end time.
func (r *Report) Finish() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.EndTime = time.Now()
}

// Results returns the recorded results ordered by path.
func (r *Report) Results() []Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := slices.Clone(r.results)
	slices.SortStableFunc(out, func(a, b Result) int {
		return strings.Compare(a.Path, b.Path)
	})
	return out
}

// Counts returns the number of results per Status.
func (r *Report) Counts() map[Status]int {
	counts := map[Status]int{StatusValid: 0, StatusInvalid: 0, StatusUnreadable: 0}
	for _, res := range r.Results() {
		counts[res.Status()]++
	}
	return counts
}

// OK reports whether every document was valid.
func (r *Report) OK() bool {
	c := r.Counts()
	return c[StatusInvalid] == 0 && c[StatusUnreadable] == 0
}

// Duration is the time the run took.
func (r *Report) Duration() time.Duration {
	if r.EndTime.IsZero() {
		return 0
	}
	return r.EndTime.Sub(r.StartTime)
}
