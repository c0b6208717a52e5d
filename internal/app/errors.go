package app

import (
	"fmt"

	"github.com/antoniopresto/wasm-validator/internal/diagnostics"
)

// InvalidSchemaError is returned when the schema given on the command line
// cannot be compiled.
type InvalidSchemaError struct {
	Path   string
	Issues diagnostics.Issues
}

func (e *InvalidSchemaError) Error() string {
	if len(e.Issues) == 0 {
		return fmt.Sprintf("schema %s is invalid", e.Path)
	}
	return fmt.Sprintf("schema %s is invalid: %s", e.Path, e.Issues[0].Message)
}

func (e *InvalidSchemaError) Unwrap() error {
	return e.Issues
}

// ValidationFailedError is returned when at least one document is invalid or
// unreadable.
type ValidationFailedError struct {
	Invalid    int
	Unreadable int
}

func (e *ValidationFailedError) Error() string {
	return fmt.Sprintf("validation failed: %d invalid, %d unreadable", e.Invalid, e.Unreadable)
}

// NoDocumentsError is returned when the targets name no documents.
type NoDocumentsError struct {
	Targets []string
}

func (e *NoDocumentsError) Error() string {
	return fmt.Sprintf("no JSON or YAML documents found in %v", e.Targets)
}

// ConfigExistsError is returned by init when a configuration file is
// already present.
type ConfigExistsError struct {
	Path string
}

func (e *ConfigExistsError) Error() string {
	return fmt.Sprintf("configuration file already exists: %s", e.Path)
}
