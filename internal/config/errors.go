package config

import (
	"fmt"

	"github.com/antoniopresto/wasm-validator/internal/validator"
)

type MissingConfigError struct {
	Path string
}

func (e *MissingConfigError) Error() string {
	return fmt.Sprintf("configuration file not found: %s", e.Path)
}

type InvalidYAMLError struct {
	Path    string
	Wrapped error
}

func (e *InvalidYAMLError) Error() string {
	return fmt.Sprintf("%s is not a valid configuration document: %v", e.Path, e.Wrapped)
}

func (e *InvalidYAMLError) Unwrap() error {
	return e.Wrapped
}

type InvalidValueError struct {
	Property string
	Value    string
	Reason   string
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("configuration property %s has invalid value '%s': %s", e.Property, e.Value, e.Reason)
}

type InvalidEnvValueError struct {
	Name  string
	Value string
}

func (e *InvalidEnvValueError) Error() string {
	return fmt.Sprintf("environment variable %s has invalid value '%s': expected true or false", e.Name, e.Value)
}

type InvalidDefaultJSONSchemaVersionError struct {
	Value     string
	Supported []validator.Draft
}

func (e *InvalidDefaultJSONSchemaVersionError) Error() string {
	return fmt.Sprintf(
		"configuration property defaultJsonSchemaVersion has invalid value '%s'. Supported versions are: %v",
		e.Value,
		e.Supported,
	)
}
