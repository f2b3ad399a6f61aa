package report

import (
	"fmt"
	"strings"
)

// MissingFieldError is returned when a required field is absent from the
// submission. Never retried; surfaced directly to the caller.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required field: %s", e.Field)
}

// InvalidTimestampError is returned when the timestamp cannot be parsed or is
// in the future.
type InvalidTimestampError struct {
	Value  string
	Reason string
}

func (e *InvalidTimestampError) Error() string {
	return fmt.Sprintf("invalid timestamp %q: %s", e.Value, e.Reason)
}

// InvalidFieldError is returned when the pre-flight structural check rejects
// the submission. Errors carries one machine-readable message per violation.
type InvalidFieldError struct {
	Errors []string
}

func (e *InvalidFieldError) Error() string {
	return "invalid input data: " + strings.Join(e.Errors, "; ")
}
