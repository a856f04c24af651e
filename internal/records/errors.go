package records

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when no row matches the requested
	// record identifier.
	ErrNotFound = errors.New("record not found")

	// ErrNotProvisioned is returned when the acting user has no usable
	// spreadsheet id. The remedy is to call /api/setup-sheet.
	ErrNotProvisioned = errors.New("spreadsheet not provisioned")
)

// MappingError reports a sheet row that cannot be converted to its
// record kind, for example a missing required column or an unparsable
// cell value.
type MappingError struct {
	Sheet  string
	Field  string
	Reason string
}

func (e *MappingError) Error() string {
	return fmt.Sprintf("sheet %s: field %s: %s", e.Sheet, e.Field, e.Reason)
}

// ValidationError reports a client payload that fails the create or
// update shape of a record kind.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("field %s %s", e.Field, e.Reason)
}
