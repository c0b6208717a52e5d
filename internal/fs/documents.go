package fs

import (
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Format identifies how a document file is encoded.
type Format int

const (
	FormatUnknown Format = iota
	FormatJSON
	FormatYAML
)

func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	default:
		return "unknown"
	}
}

// DocumentFormat returns the Format implied by the extension of path.
func DocumentFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatUnknown
	}
}

// ListDocuments expands path into the documents it names. A file is returned
// as is, whatever its extension. A directory is walked recursively and every
// JSON or YAML file below it is returned, sorted by path. Hidden directories
// are skipped.
func ListDocuments(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	var docs []string
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != path && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if DocumentFormat(p) != FormatUnknown {
			docs = append(docs, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.Sort(docs)
	return docs, nil
}
