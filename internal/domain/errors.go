package domain

import "errors"

// Error taxonomy shared by all use cases. Use case sentinels wrap one of
// these so callers can branch on the class with errors.Is.
var (
	// ErrConflict the requested slot overlaps an occupying appointment
	ErrConflict = errors.New("slot conflict")

	// ErrInvalidTransition the status change is not an edge of the lifecycle
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrAlreadySettled a payment already exists for the appointment
	ErrAlreadySettled = errors.New("appointment already settled")

	// ErrNotCheckoutEligible the appointment is not confirmed
	ErrNotCheckoutEligible = errors.New("appointment not eligible for checkout")

	// ErrInvalidAmount the settlement amounts are inconsistent
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrNotFound the referenced entity does not exist
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput malformed request
	ErrInvalidInput = errors.New("invalid input")
)

// IsRetryable reports whether the caller may retry with different input
// (for example pick another slot). Store-level transient failures are
// retried inside the transaction manager and never reach callers as such.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConflict)
}
