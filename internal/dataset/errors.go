package dataset

import (
	"errors"
	"fmt"
)

var (
	// ErrDataLoad is wrapped by every DataLoadError
	ErrDataLoad = errors.New("data load failed")
	// ErrEmptyAggregation is wrapped by every EmptyAggregationError
	ErrEmptyAggregation = errors.New("aggregation over zero rows")
	// ErrUnsupportedColumn is returned when an operation does not apply to a column kind
	ErrUnsupportedColumn = errors.New("unsupported column")
)

// DataLoadError reports a missing or malformed table source
type DataLoadError struct {
	Path   string
	Line   int    // 1-based source line, 0 if not tied to a row
	Column Column // empty if not tied to a column
	Err    error
}

func (e *DataLoadError) Error() string {
	msg := "load " + e.Path
	if e.Line > 0 {
		msg += fmt.Sprintf(" line %d", e.Line)
	}
	if e.Column != "" {
		msg += fmt.Sprintf(" column %s", e.Column)
	}
	return fmt.Sprintf("%s: %v", msg, e.Err)
}

func (e *DataLoadError) Unwrap() []error {
	return []error{ErrDataLoad, e.Err}
}

// EmptyAggregationError reports a mean or mode requested over no usable values
type EmptyAggregationError struct {
	Column Column
}

func (e *EmptyAggregationError) Error() string {
	return fmt.Sprintf("no values to aggregate for column %s", e.Column)
}

func (e *EmptyAggregationError) Unwrap() error {
	return ErrEmptyAggregation
}
