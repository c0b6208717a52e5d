// Package repo finds the documents that changed in a git working tree.
package repo

import "context"

// Revision is anything git can resolve to a commit: a tag, a branch or a hash.
type Revision string

func (r Revision) String() string { return string(r) }

// Change is a JSON or YAML document that differs from a Revision.
type Change struct {
	Path  string // Absolute
	IsNew bool   // Added since the revision, or not yet tracked
}

// Gitter defines the git operations used by 'jsv validate --changed-since'.
type Gitter interface {
	// Changes returns the documents at or below path that were added or
	// modified since rev, including uncommitted and untracked ones. Deleted
	// documents are left out.
	Changes(ctx context.Context, rev Revision, path string) ([]Change, error)
}
