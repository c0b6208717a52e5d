package validator

import "fmt"

type UnsupportedDraftError struct {
	Draft Draft
}

func (e *UnsupportedDraftError) Error() string {
	return fmt.Sprintf("unsupported JSON Schema version '%s'", e.Draft)
}

type ExternalReferenceError struct {
	URL string
}

func (e *ExternalReferenceError) Error() string {
	return fmt.Sprintf("schema %q is not registered and external schemas are never loaded", e.URL)
}
