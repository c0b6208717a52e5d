package boundary

import (
	"fmt"
)

// Subject names the document a deserialization error refers to.
type Subject string

const (
	SubjectRequest  Subject = "Request"
	SubjectSchema   Subject = "Schema"
	SubjectInstance Subject = "Instance"
)

// DeserializationError reports input that could not be turned into a JSON
// value at all. It is never an issue: the caller did not supply JSON-shaped
// data.
type DeserializationError struct {
	Subject Subject
	Err     error
}

func (e *DeserializationError) Error() string {
	return fmt.Sprintf("%s deserialization error: %v", e.Subject, e.Err)
}

func (e *DeserializationError) Unwrap() error {
	return e.Err
}

type UnsupportedValueError struct {
	Path string
	Type string
}

func (e *UnsupportedValueError) Error() string {
	return fmt.Sprintf("value of type %s at %q has no JSON representation", e.Type, e.Path)
}

type NonFiniteNumberError struct {
	Path  string
	Value float64
}

func (e *NonFiniteNumberError) Error() string {
	return fmt.Sprintf("number %v at %q is not finite", e.Value, e.Path)
}

type InvalidNumberError struct {
	Path  string
	Value string
}

func (e *InvalidNumberError) Error() string {
	return fmt.Sprintf("%q at %q is not a JSON number", e.Value, e.Path)
}

type NonStringKeyError struct {
	Path string
	Key  string
}

func (e *NonStringKeyError) Error() string {
	return fmt.Sprintf("mapping at %q has non-string key %s", e.Path, e.Key)
}

type MaxDepthError struct {
	Path string
}

func (e *MaxDepthError) Error() string {
	return fmt.Sprintf("value at %q is nested deeper than %d levels", e.Path, MaxDepth)
}

type EmptyDocumentError struct{}

func (e *EmptyDocumentError) Error() string {
	return "document is empty"
}

type TrailingDataError struct {
	Offset int64
}

func (e *TrailingDataError) Error() string {
	return fmt.Sprintf("unexpected data after the document at offset %d", e.Offset)
}

type MultipleDocumentsError struct{}

func (e *MultipleDocumentsError) Error() string {
	return "stream holds more than one document"
}

type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("request has no %q field", e.Field)
}
