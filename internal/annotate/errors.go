// Package annotate highlights evidence phrases in a body of text with
// non-overlapping HTML span markers.
package annotate

import "fmt"

// MalformedInputError is returned when the triple list cannot be parsed. No
// annotation is applied in that case.
type MalformedInputError struct {
	Message string
	Cause   error
}

func (e *MalformedInputError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("malformed annotation input: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("malformed annotation input: %s", e.Message)
}

func (e *MalformedInputError) Unwrap() error {
	return e.Cause
}
