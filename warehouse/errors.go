/*
errors.go - Centralized error types for the warehouse engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Error messages that are part of the wire contract are kept verbatim;
  the HTTP boundary surfaces err.Error() directly.

ERROR CATEGORIES:
  1. Per-item errors - validation and out-of-stock; recorded as Issues,
     never abort a batch
  2. Query errors - invalid date range, invalid sort key, invalid limit;
     fail the whole query
  3. Batch errors - empty input, rejected before processing

SEE ALSO:
  - validate.go: Produces ValidationError
  - allocator.go: Produces OutOfStockError
*/
package warehouse

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidDateRange is returned when a query bound fails to parse or
	// the parsed range is malformed.
	ErrInvalidDateRange = errors.New("Invalid date range")

	// ErrOutOfStock is the sentinel behind OutOfStockError.
	ErrOutOfStock = errors.New("out of stock")

	// ErrEmptyBatch is returned when a batch ingest receives zero items.
	// This is a caller-level error, not an Issue.
	ErrEmptyBatch = errors.New("Data should be an array of objects")

	// ErrInvalidSortKey is returned for an unknown top-N sort field.
	ErrInvalidSortKey = errors.New("Invalid by property")

	// ErrInvalidLimit is returned when a top-N limit is below one.
	ErrInvalidLimit = errors.New("Top should be greater than 0")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError is a per-item rejection. Message is the wire contract
// and is recorded verbatim on the resulting Issue.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// OutOfStockError reports that a sale could not be fully satisfied from
// eligible lots.
type OutOfStockError struct {
	SKU string
}

func (e *OutOfStockError) Error() string {
	return fmt.Sprintf("%s is out of stock", e.SKU)
}

func (e *OutOfStockError) Unwrap() error { return ErrOutOfStock }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsItemError returns true if the error is recovered per item (recorded as
// an Issue) rather than escalated to the caller.
func IsItemError(err error) bool {
	var v *ValidationError
	return errors.Is(err, ErrOutOfStock) || errors.As(err, &v)
}
