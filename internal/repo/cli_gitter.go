package repo

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"

	"github.com/antoniopresto/wasm-validator/internal/fs"
)

// canonicalPath is a variable to allow mocking in tests.
var canonicalPath = fs.CanonicalPath

// CLIGitter is the concrete implementation of Gitter using the git CLI.
type CLIGitter struct{}

// NewCLIGitter creates a new CLIGitter instance.
func NewCLIGitter() *CLIGitter {
	return &CLIGitter{}
}

func (g *CLIGitter) git(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", &GitError{Args: args, Output: strings.TrimSpace(stderr.String()), Wrapped: err}
	}
	return stdout.String(), nil
}

// Changes implements Gitter.
func (g *CLIGitter) Changes(ctx context.Context, rev Revision, path string) ([]Change, error) {
	target, err := canonicalPath(path)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(target)
	if err != nil {
		return nil, err
	}
	dir := target
	if !info.IsDir() {
		dir = filepath.Dir(target)
	}

	out, err := g.git(ctx, dir, "rev-parse", "--show-toplevel")
	if err != nil {
		return nil, &NotARepositoryError{Path: path}
	}
	root, err := canonicalPath(strings.TrimSpace(out))
	if err != nil {
		return nil, err
	}

	if _, err = g.git(ctx, dir, "rev-parse", "--verify", "--quiet", rev.String()+"^{commit}"); err != nil {
		return nil, &UnknownRevisionError{Revision: rev}
	}

	//nolint:gosec // the revision was verified and the path is absolute
	diff, err := g.git(ctx, dir, "diff", "--name-status", "--no-renames", rev.String(), "--", target)
	if err != nil {
		return nil, err
	}
	untracked, err := g.git(ctx, dir, "ls-files", "--others", "--exclude-standard", "--full-name", "--", target)
	if err != nil {
		return nil, err
	}

	var changes []Change
	for _, line := range strings.Split(diff, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 || fields[0] == "D" {
			continue
		}
		changes = appendDocument(changes, root, fields[1], fields[0] == "A")
	}
	for _, line := range strings.Split(untracked, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			changes = appendDocument(changes, root, line, true)
		}
	}

	slices.SortFunc(changes, func(a, b Change) int { return strings.Compare(a.Path, b.Path) })
	return changes, nil
}

// appendDocument adds rel, relative to the repository root, when it names a
// JSON or YAML document. git reports paths relative to the root whatever the
// working directory.
func appendDocument(changes []Change, root, rel string, isNew bool) []Change {
	if fs.DocumentFormat(rel) == fs.FormatUnknown {
		return changes
	}
	return append(changes, Change{Path: filepath.Join(root, filepath.FromSlash(rel)), IsNew: isNew})
}
