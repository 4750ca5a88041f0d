package dataprocessing

import "errors"

// Aggregate-level failures. Field-level parse failures never surface as
// errors; they become missing values on the record.
var (
	// ErrEmptyInput is returned when an aggregate or ratio is requested over zero rows.
	ErrEmptyInput = errors.New("empty input")

	// ErrEmptyRange is returned when a year range is requested over zero dated rows.
	ErrEmptyRange = errors.New("empty range")

	// ErrNotFound is returned when a donor has no aggregated total.
	ErrNotFound = errors.New("not found")

	// ErrMissingColumn is returned when a raw table lacks a mapped canonical column.
	ErrMissingColumn = errors.New("missing column")
)
