package boundary

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/antoniopresto/wasm-validator/internal/fs"
)

// DecodeJSON parses a single JSON document. Numbers are kept as json.Number.
func DecodeJSON(subject Subject, data []byte) (any, error) {
	v, err := decodeJSON(data)
	if err != nil {
		return nil, &DeserializationError{Subject: subject, Err: err}
	}
	return v, nil
}

func decodeJSON(data []byte) (any, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &EmptyDocumentError{}
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if off := dec.InputOffset(); off < int64(len(data)) && len(bytes.TrimSpace(data[off:])) > 0 {
		return nil, &TrailingDataError{Offset: off}
	}
	return v, nil
}

// DecodeYAML parses a single YAML document. Mapping keys must be strings.
func DecodeYAML(subject Subject, data []byte) (any, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))

	var v any
	if err := dec.Decode(&v); err != nil {
		if errors.Is(err, io.EOF) {
			err = &EmptyDocumentError{}
		}
		return nil, &DeserializationError{Subject: subject, Err: err}
	}
	var extra any
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, &DeserializationError{Subject: subject, Err: &MultipleDocumentsError{}}
	}
	return Normalize(subject, v)
}

// Decode parses data in the given format. Unknown formats are read as JSON.
func Decode(subject Subject, data []byte, format fs.Format) (any, error) {
	if format == fs.FormatYAML {
		return DecodeYAML(subject, data)
	}
	return DecodeJSON(subject, data)
}

// DecodeFile reads and parses the document at path, choosing the format from
// the file extension.
func DecodeFile(subject Subject, path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &DeserializationError{Subject: subject, Err: fmt.Errorf("reading %s: %w", path, err)}
	}
	return Decode(subject, data, fs.DocumentFormat(path))
}
