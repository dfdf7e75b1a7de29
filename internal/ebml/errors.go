package ebml

import (
	"errors"
	"fmt"
)

// Sentinel errors for leaf value decoding. These enable callers to
// distinguish failure modes using errors.Is.
var (
	ErrIntegerWidth = errors.New("ebml: integer wider than 8 bytes")
	ErrFloatWidth   = errors.New("ebml: float must be 0, 4, or 8 bytes")
	ErrValueRange   = errors.New("ebml: value out of range")
	ErrTruncated    = errors.New("ebml: element runs past end of buffer")
)

// ParseError records which element was being decoded, and where, when a
// value or structure failed to parse.
type ParseError struct {
	ID     uint32
	Offset int
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("ebml: parse %s at offset %d: %v", Name(e.ID), e.Offset, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError wraps err with the identity and position of el.
func NewParseError(el Element, err error) *ParseError {
	return &ParseError{ID: el.ID, Offset: el.Offset, Err: err}
}
