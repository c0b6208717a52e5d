package server

import "fmt"

// ListenError is returned when the server cannot bind its address.
type ListenError struct {
	Addr    string
	Wrapped error
}

func (e *ListenError) Error() string {
	return fmt.Sprintf("cannot listen on %s: %v", e.Addr, e.Wrapped)
}

func (e *ListenError) Unwrap() error {
	return e.Wrapped
}

// BodyTooLargeError is returned when a request body exceeds the configured
// limit.
type BodyTooLargeError struct {
	Limit int64
}

func (e *BodyTooLargeError) Error() string {
	return fmt.Sprintf("request body exceeds %d bytes", e.Limit)
}
