package table

import "errors"

var (
	// ErrColumnOutOfRange is returned for a column index outside the header.
	ErrColumnOutOfRange = errors.New("column out of range")

	// ErrColumnNotSortable is returned when sorting a column without the
	// sortable marker. No state changes.
	ErrColumnNotSortable = errors.New("column not sortable")

	// ErrRowOutOfRange is returned for a row ID outside the body.
	ErrRowOutOfRange = errors.New("row out of range")

	// ErrUnknownAction is returned by RunBulkAction for an unregistered name.
	ErrUnknownAction = errors.New("unknown bulk action")

	// ErrNothingSelected is returned by RunBulkAction when no row is selected.
	ErrNothingSelected = errors.New("no rows selected")
)
