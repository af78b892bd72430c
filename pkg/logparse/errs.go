package logparse

import (
	"errors"
	"fmt"
)

// ErrMalformedNumericField indicates that an integer header field
// (Cache Size, Block Size, Associativity) carried a non-integer value.
var ErrMalformedNumericField = errors.New("logparse: malformed numeric field")

// FieldError describes a header line whose value could not be parsed.
// It matches ErrMalformedNumericField and the underlying conversion error
// with errors.Is.
type FieldError struct {
	Field string // header label, e.g. "Associativity"
	Value string // raw trimmed value, e.g. "four"
	Line  int    // 1-based line number in the input
	Err   error  // conversion error from strconv
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("logparse: line %d: field %q has non-integer value %q", e.Line, e.Field, e.Value)
}

func (e *FieldError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrMalformedNumericField}
	}
	return []error{ErrMalformedNumericField, e.Err}
}
