package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist in the database.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. empty event set, end date before start date).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrConflict is returned when a resource is temporarily held by another
// writer, e.g. a journey being evaluated concurrently on another instance.
// Handlers should map this to HTTP 409.
var ErrConflict = errors.New("conflict")

// The errors below refine the two sentinels above. Each wraps its parent so
// callers can match either the specific condition or the broad category:
//
//	errors.Is(err, domain.ErrEmptyEventSet) // exact condition
//	errors.Is(err, domain.ErrValidation)    // any validation failure
var (
	// ErrEmptyEventSet means a journey evaluation received no time records.
	ErrEmptyEventSet = fmt.Errorf("%w: no time records to evaluate", ErrValidation)

	// ErrUnorderedEvents means time records were not strictly ascending by timestamp.
	ErrUnorderedEvents = fmt.Errorf("%w: time records are not in ascending timestamp order", ErrValidation)

	// ErrEventOutsideDay means a time record falls on a different UTC date
	// than the journey being evaluated.
	ErrEventOutsideDay = fmt.Errorf("%w: time record is outside the journey date", ErrValidation)

	// ErrInvalidDateRange means a report was requested with start after end.
	ErrInvalidDateRange = fmt.Errorf("%w: start date must not be after end date", ErrValidation)

	// ErrDriverNotFound means the driver id did not resolve to a driver.
	ErrDriverNotFound = fmt.Errorf("driver %w", ErrNotFound)
)
