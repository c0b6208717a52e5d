package diagnostics

import (
	"errors"
	"fmt"
	"strings"
)

// Issue describes one way an instance fails its schema.
type Issue struct {
	// Path is a JSON Pointer to the failing value. The instance root is "".
	// Schema compilation failures use "/".
	Path    string `json:"path"`
	Message string `json:"message"`
	Code    Code   `json:"code"`
}

// Issues is a collection of validation issues that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	lim := min(len(iss), maxShown)
	for i := range lim {
		if i > 0 {
			b.WriteString("; ")
		}
		// e.g. too_small at /age
		fmt.Fprintf(b, "%s at %s", iss[i].Code, displayPath(iss[i].Path))
	}
	if len(iss) > lim {
		fmt.Fprintf(b, "; ... (total %d)", len(iss))
	}
	return b.String()
}

// CompilationFailed reports whether the issues describe a schema that could
// not be compiled.
func (iss Issues) CompilationFailed() bool {
	return len(iss) == 1 && iss[0].Code == CodeInvalidSchema
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

func displayPath(p string) string {
	if p == "" {
		return "(root)"
	}
	return p
}
