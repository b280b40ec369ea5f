package parser

import (
	"errors"
	"fmt"
)

var (
	// ErrUnrecognizedFormat means none of the known layouts matched
	ErrUnrecognizedFormat = errors.New("unrecognized format")
	// ErrMalformedRow means a row could not be interpreted for its format
	ErrMalformedRow = errors.New("malformed row")
)

// RowError locates a malformed row in the input. Line is 0 when the
// problem is a row that is missing altogether.
type RowError struct {
	Line   int
	Reason string
	Err    error
}

func (e *RowError) Error() string {
	msg := e.Reason
	if e.Line > 0 {
		msg = fmt.Sprintf("line %d: %s", e.Line, msg)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap makes errors.Is(err, ErrMalformedRow) hold for every RowError
func (e *RowError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrMalformedRow, e.Err}
	}
	return []error{ErrMalformedRow}
}
