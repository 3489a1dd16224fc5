// Package engine implements the booking eligibility and seat capacity
// rules.  It owns the single consistency contract of the system: a seat
// is never counted twice, and capacity is never exceeded by a committed
// booking.  All seat-count mutations flow through this package; handlers
// and repositories never adjust counters on their own.
package engine

import (
	"errors"
	"fmt"
)

// ErrAuthRequired is returned when an operation that needs an
// authenticated caller is attempted without one.  Handlers should
// translate this into an HTTP 401 response.
var ErrAuthRequired = errors.New("authentication required")

// ErrCapacityExceeded is returned when a booking would push a round past
// its seat capacity.  The booking is not created.  Handlers should
// translate this into an HTTP 409 response.
var ErrCapacityExceeded = errors.New("round is full")

// ErrInvalidTransition is returned when a requested payment-status
// transition is not permitted by the state machine.  Handlers should
// translate this into an HTTP 422 response.
var ErrInvalidTransition = errors.New("invalid status transition")

// ErrRoundNotFound and ErrBookingNotFound are returned by stores when
// the referenced record does not exist.
var (
	ErrRoundNotFound   = errors.New("exam round not found")
	ErrBookingNotFound = errors.New("booking not found")
)

// ErrConflict is returned when a delete cannot proceed because dependent
// records still reference the target, e.g. deleting a round that has
// bookings.  Handlers should translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// ValidationError reports a missing or malformed request field.  The
// Field names the offending input so the form can highlight it without
// discarding entered data.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

func validationErr(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// UploadError wraps a blob-store failure during evidence upload.  The
// submission is aborted before any booking record exists, so no cleanup
// beyond surfacing the error is needed.
type UploadError struct {
	Bucket string
	Err    error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload to %s failed: %v", e.Bucket, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }
