package dataset

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyFile is returned when the source has no header row.
	ErrEmptyFile = errors.New("dataset: file is empty")
	// ErrMissingColumn is wrapped with the name of the absent column.
	ErrMissingColumn = errors.New("dataset: missing required column")
	// ErrUnsupportedFormat is returned for extensions other than .csv and .xlsx.
	ErrUnsupportedFormat = errors.New("dataset: unsupported file format")
)

// ParseError reports a row that could not be converted into an observation.
type ParseError struct {
	Line   int
	Column string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d, column %s: cannot parse %q: %v", e.Line, e.Column, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
