package registry

import (
	"fmt"
)

type NotFoundError struct {
	Key Key
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no compiled schema with id %s", e.Key)
}

type UnencodableSchemaError struct {
	Wrapped error
}

func (e *UnencodableSchemaError) Error() string {
	return fmt.Sprintf("schema cannot be encoded as JSON: %v", e.Wrapped)
}

func (e *UnencodableSchemaError) Unwrap() error {
	return e.Wrapped
}
