package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist in the database.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. empty name, non-positive size, unknown destination).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrInvalidReference is returned when a write names a vehicle that does not exist.
var ErrInvalidReference = errors.New("invalid reference")

// ErrCapacityExceeded is returned when an admission check fails.
// The concrete error is a *CapacityExceededError carrying the available space.
var ErrCapacityExceeded = errors.New("capacity exceeded")

// ErrDestinationMismatch is returned when a cargo transfer targets a trip
// bound for a different destination.
var ErrDestinationMismatch = errors.New("destination mismatch")

// ErrDataIntegrity is returned when storage hands back a NULL or out-of-range
// capacity or size. It is never retryable.
var ErrDataIntegrity = errors.New("data integrity violation")

// ErrTransientStorage marks connectivity failures, timeouts, and
// serialization conflicts. It is the only kind a caller may retry.
var ErrTransientStorage = errors.New("transient storage error")

// NotFoundError names the entity that could not be resolved.
type NotFoundError struct {
	Entity string
	ID     uuid.UUID
}

// NewNotFound builds a *NotFoundError for entity with the given id.
func NewNotFound(entity string, id uuid.UUID) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// Is makes errors.Is(err, ErrNotFound) true.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// CapacityExceededError reports a failed admission check.
// Available is the space left on the trip when the check ran, computed with
// the same exclusion the check used.
type CapacityExceededError struct {
	TripID    uuid.UUID
	Requested int
	Available int
}

func (e *CapacityExceededError) Error() string {
	return fmt.Sprintf("capacity exceeded on trip %s: requested %d, available %d",
		e.TripID, e.Requested, e.Available)
}

// Is makes errors.Is(err, ErrCapacityExceeded) true.
func (e *CapacityExceededError) Is(target error) bool {
	return target == ErrCapacityExceeded
}

// DestinationMismatchError reports a transfer between trips with different destinations.
type DestinationMismatchError struct {
	From string
	To   string
}

func (e *DestinationMismatchError) Error() string {
	return fmt.Sprintf("cannot transfer cargo bound for %q to a trip bound for %q", e.From, e.To)
}

// Is makes errors.Is(err, ErrDestinationMismatch) true.
func (e *DestinationMismatchError) Is(target error) bool {
	return target == ErrDestinationMismatch
}

// IsRetryable reports whether err is a transient storage failure.
// Every other failure is deterministic for the same input.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrTransientStorage)
}
