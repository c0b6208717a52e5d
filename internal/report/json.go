package report

import (
	"io"
	"time"

	"github.com/goccy/go-json"

	"github.com/antoniopresto/wasm-validator/internal/diagnostics"
)

// JSONReporter implements Reporter for JSON output.
type JSONReporter struct{}

type jsonResult struct {
	Path   string             `json:"path"`
	Status string             `json:"status"`
	Issues diagnostics.Issues `json:"issues,omitempty"`
	Error  string             `json:"error,omitempty"`
}

type jsonOutput struct {
	Schema    string `json:"schema"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Duration  string `json:"duration"`
	Stats     struct {
		Valid      int `json:"valid"`
		Invalid    int `json:"invalid"`
		Unreadable int `json:"unreadable"`
	} `json:"stats"`
	Results []jsonResult `json:"results"`
}

func (jr *JSONReporter) Write(w io.Writer, r *Report) error {
	out := jsonOutput{
		Schema:    r.Schema,
		StartTime: r.StartTime.Format(time.RFC3339),
		EndTime:   r.EndTime.Format(time.RFC3339),
		Duration:  r.Duration().String(),
		Results:   []jsonResult{},
	}

	c := r.Counts()
	out.Stats.Valid = c[StatusValid]
	out.Stats.Invalid = c[StatusInvalid]
	out.Stats.Unreadable = c[StatusUnreadable]

	for _, res := range r.Results() {
		item := jsonResult{
			Path:   res.Path,
			Status: res.Status().String(),
			Issues: res.Issues,
		}
		if res.Err != nil {
			item.Error = res.Err.Error()
		}
		out.Results = append(out.Results, item)
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
