package world

import (
	"errors"
	"fmt"
)

// GraphConsistencyError reports a missing lookup or a broken graph invariant.
// These indicate bad input data or a mutation bug, never a logic outcome.
type GraphConsistencyError struct {
	// Code identifies the error category.
	Code GraphErrorCode

	// Message is a human-readable description.
	Message string

	// World is the owning world id.
	World int

	// Name is the region, entrance, location or item involved.
	Name string
}

// GraphErrorCode categorizes graph errors.
type GraphErrorCode string

const (
	ErrCodeRegionNotFound     GraphErrorCode = "REGION_NOT_FOUND"
	ErrCodeEntranceNotFound   GraphErrorCode = "ENTRANCE_NOT_FOUND"
	ErrCodeLocationNotFound   GraphErrorCode = "LOCATION_NOT_FOUND"
	ErrCodeItemNotFound       GraphErrorCode = "ITEM_NOT_FOUND"
	ErrCodeNotConnected       GraphErrorCode = "NOT_CONNECTED"
	ErrCodeDanglingEdge       GraphErrorCode = "DANGLING_EDGE"
	ErrCodeReverseMismatch    GraphErrorCode = "REVERSE_MISMATCH"
	ErrCodeAlternateMismatch  GraphErrorCode = "ALTERNATE_MISMATCH"
	ErrCodeInvalidDescription GraphErrorCode = "INVALID_DESCRIPTION"
)

// Error implements the error interface.
func (e *GraphConsistencyError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("%s: %s (world=%d, name=%q)", e.Code, e.Message, e.World, e.Name)
	}
	return fmt.Sprintf("%s: %s (world=%d)", e.Code, e.Message, e.World)
}

// IsGraphError returns true for any GraphConsistencyError.
// Uses errors.As to handle wrapped errors.
func IsGraphError(err error) bool {
	var ge *GraphConsistencyError
	return errors.As(err, &ge)
}

// IsNotFound returns true if the error is a failed region, entrance,
// location or item lookup.
func IsNotFound(err error) bool {
	var ge *GraphConsistencyError
	if !errors.As(err, &ge) {
		return false
	}
	switch ge.Code {
	case ErrCodeRegionNotFound, ErrCodeEntranceNotFound, ErrCodeLocationNotFound, ErrCodeItemNotFound:
		return true
	}
	return false
}

// HasCode reports whether err is a GraphConsistencyError with the given code.
func HasCode(err error, code GraphErrorCode) bool {
	var ge *GraphConsistencyError
	return errors.As(err, &ge) && ge.Code == code
}

// NewNotFoundError creates a lookup failure.
func NewNotFoundError(code GraphErrorCode, world int, name string) *GraphConsistencyError {
	kind := map[GraphErrorCode]string{
		ErrCodeRegionNotFound:   "region",
		ErrCodeEntranceNotFound: "entrance",
		ErrCodeLocationNotFound: "location",
		ErrCodeItemNotFound:     "item",
	}[code]
	return &GraphConsistencyError{
		Code:    code,
		Message: fmt.Sprintf("no such %s", kind),
		World:   world,
		Name:    name,
	}
}

// NewInvalidDescriptionError reports unusable description data.
func NewInvalidDescriptionError(name, message string) *GraphConsistencyError {
	return &GraphConsistencyError{
		Code:    ErrCodeInvalidDescription,
		Message: message,
		Name:    name,
	}
}

func newGraphError(code GraphErrorCode, world int, name, format string, args ...any) *GraphConsistencyError {
	return &GraphConsistencyError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		World:   world,
		Name:    name,
	}
}
