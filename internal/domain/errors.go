package domain

import "errors"

// Error kinds surfaced by the stores. Callers discriminate with
// errors.Is; messages are safe to show to the end user verbatim.
var (
	// Validation errors: the input itself is malformed.
	ErrValidation       = errors.New("validation failed")
	ErrMissingField     = errors.New("all fields are required")
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrInvalidQuantity  = errors.New("quantity cannot be less than 1")
	ErrInvalidStatus    = errors.New("invalid order status")

	// Domain-rule errors: valid input rejected by business rules.
	ErrOutOfStock         = errors.New("product is out of stock")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrAuthRequired       = errors.New("authentication required")
	ErrDuplicateAccount   = errors.New("email already registered")
	ErrAccountNotFound    = errors.New("user not found, please sign up")
	ErrInvalidCredentials = errors.New("incorrect password")

	// ErrNotFound covers mutations addressed at an unknown id.
	ErrNotFound = errors.New("not found")

	// ErrBackend wraps storage failures so the caller can tell
	// "your input was wrong" apart from "the system is unreachable".
	ErrBackend = errors.New("storage backend error")
)
