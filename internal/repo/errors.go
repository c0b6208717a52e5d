package repo

import "fmt"

// NotARepositoryError is returned when a path is outside any git working tree.
type NotARepositoryError struct {
	Path string
}

func (e *NotARepositoryError) Error() string {
	return fmt.Sprintf("%s is not inside a git repository", e.Path)
}

// UnknownRevisionError is returned when git cannot resolve a revision.
type UnknownRevisionError struct {
	Revision Revision
}

func (e *UnknownRevisionError) Error() string {
	return fmt.Sprintf("unknown git revision: %s", e.Revision)
}

// GitError wraps a failed git invocation and what it printed.
type GitError struct {
	Args    []string
	Output  string
	Wrapped error
}

func (e *GitError) Error() string {
	return fmt.Sprintf("git %v failed: %v (output: %s)", e.Args, e.Wrapped, e.Output)
}

func (e *GitError) Unwrap() error {
	return e.Wrapped
}
