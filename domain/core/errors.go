package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Catalog misuse. These are caller bugs and are surfaced, never recovered.
	ErrConfiguration     = errors.New("configuration error")
	ErrFieldNotFound     = fmt.Errorf("%w: field not found in catalog", ErrConfiguration)
	ErrNotNumeric        = fmt.Errorf("%w: aggregator requires a quantitative field", ErrConfiguration)
	ErrUnknownAggregator = fmt.Errorf("%w: unknown aggregator", ErrConfiguration)
	ErrDuplicateMeasure  = fmt.Errorf("%w: measure requested twice with different aggregators", ErrConfiguration)
	ErrInvalidPredicate  = fmt.Errorf("%w: invalid predicate", ErrConfiguration)
	ErrIndexOutOfRange   = fmt.Errorf("%w: matrix index out of range", ErrConfiguration)
	ErrDuplicateField    = fmt.Errorf("%w: duplicate field id in catalog", ErrConfiguration)
	ErrUnknownFieldKind  = fmt.Errorf("%w: unknown field type", ErrConfiguration)
	ErrMeasureIsGrouping = fmt.Errorf("%w: measure field is a grouping dimension", ErrConfiguration)

	// Lookup errors
	ErrNotFound       = errors.New("resource not found")
	ErrEngineNotFound = fmt.Errorf("%w: engine", ErrNotFound)
)

// NewFieldNotFoundError reports a field id absent from the catalog
func NewFieldNotFoundError(fieldID string) error {
	return fmt.Errorf("%w: %q", ErrFieldNotFound, fieldID)
}

// NewNotNumericError reports an aggregator requested on a non-quantitative field
func NewNotNumericError(fieldID, aggregator string) error {
	return fmt.Errorf("%w: %s(%s)", ErrNotNumeric, aggregator, fieldID)
}

// IsConfigurationError reports whether err stems from catalog misuse
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

// IsNotFoundError reports whether err is a lookup miss
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}
