package booking

import "errors"

// Public error taxonomy of the booking ledger. Handlers map these onto
// HTTP status codes; everything else is a store-level failure surfaced
// as-is to the caller.
var (
	// ErrNotAvailable: the flight does not exist or has no seats left at
	// booking time.
	ErrNotAvailable = errors.New("flight not found or no seats available")

	// ErrInvalidInput: a required booking field is missing or a numeric
	// input is negative.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound: the referenced ticket or passenger does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrAlreadyCancelled: the ticket was cancelled before; the seat has
	// already been returned and is not credited again.
	ErrAlreadyCancelled = errors.New("ticket is already cancelled")
)
