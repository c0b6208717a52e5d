package report

import (
	"fmt"
	"io"
	"strings"
)

// TextReporter implements Reporter for plain text output.
type TextReporter struct {
	Verbose   bool
	UseColour bool
}

const (
	colReset      = "\033[0m"
	colRed        = "\033[31m"
	colGreen      = "\033[32m"
	colYellow     = "\033[33m"
	colGrey       = "\033[90m"
	colWhite      = "\033[37m"
	colBoldRed    = "\033[1;31m"
	colBoldGreen  = "\033[1;32m"
	colBoldWhite  = "\033[1;37m"
	rootPathLabel = "(root)"
)

// cs returns a string which will render with the given colour
// if colourisation is enabled.
func (tr *TextReporter) cs(c, s string) string {
	if !tr.UseColour {
		return s
	}
	return c + s + colReset
}

func (tr *TextReporter) Write(w io.Writer, r *Report) error {
	divider := strings.Repeat("-", 40)

	fmt.Fprintf(w, "%s\n", divider)
	fmt.Fprint(w, tr.cs(colBoldWhite, "JSV VALIDATION REPORT\n\n"))
	fmt.Fprintf(w, "%s %s\n", tr.cs(colGrey, "Schema:  "), tr.cs(colWhite, r.Schema))
	fmt.Fprintf(w, "%s %s\n", tr.cs(colGrey, "Started: "), tr.cs(colWhite, r.StartTime.Format("15:04:05")))
	fmt.Fprintf(w, "%s %s\n", tr.cs(colGrey, "Duration:"), tr.cs(colWhite, r.Duration().String()))
	fmt.Fprintf(w, "%s\n", divider)

	for _, res := range r.Results() {
		switch res.Status() {
		case StatusValid:
			if tr.Verbose {
				fmt.Fprintf(w, "%s %s\n", tr.cs(colGreen, "[PASS]"), tr.cs(colGrey, res.Path))
			}
		case StatusInvalid:
			fmt.Fprintf(w, "%s %s %s\n",
				tr.cs(colRed, "[FAIL]"),
				tr.cs(colRed, res.Path),
				tr.cs(colRed, fmt.Sprintf("(%d issues)", len(res.Issues))))
			for _, iss := range res.Issues {
				path := iss.Path
				if path == "" {
					path = rootPathLabel
				}
				fmt.Fprintf(w, "  %s %s %s %s\n",
					tr.cs(colRed, "✗"),
					tr.cs(colWhite, path),
					tr.cs(colGrey, "["+string(iss.Code)+"]"),
					iss.Message)
			}
		case StatusUnreadable:
			fmt.Fprintf(w, "%s %s\n", tr.cs(colYellow, "[ERROR]"), tr.cs(colYellow, res.Path))
			fmt.Fprintf(w, "    %v\n", res.Err)
		}
	}

	c := r.Counts()
	fmt.Fprintf(w, "%s\n", divider)
	summaryLabel := tr.cs(colBoldWhite, "Validation summary: ")
	summaryStats := fmt.Sprintf("%d valid, %d invalid, %d unreadable",
		c[StatusValid], c[StatusInvalid], c[StatusUnreadable])
	statsColor := colBoldGreen
	if !r.OK() {
		statsColor = colBoldRed
	}
	fmt.Fprintf(w, "%s%s\n", summaryLabel, tr.cs(statsColor, summaryStats))
	fmt.Fprintf(w, "%s\n", divider)

	return nil
}
