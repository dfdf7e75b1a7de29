package moq

import (
	"errors"
	"fmt"
)

// Sentinel errors for subgroup stream parsing.
var (
	ErrUnknownStreamType = errors.New("moq: unknown stream type")
	ErrObjectTooLarge    = errors.New("moq: object exceeds size limit")
	ErrExtension         = errors.New("moq: malformed header extension")
)

// ParseError indicates a failure to parse a subgroup stream field. It wraps
// the underlying I/O or format error and records which field was being
// parsed when the error occurred.
type ParseError struct {
	Field string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("moq: parse %s: %v", e.Field, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
