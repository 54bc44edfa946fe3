package domain

import (
	"errors"
	"fmt"
)

// Error taxonomy: every failed mutation reports one of these roots so handlers
// can map to a specific HTTP result. None of them is fatal to the process.
var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("resource not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
)

// Validation errors
var (
	ErrInvalidBloodType = fmt.Errorf("%w: unknown blood type", ErrValidation)
	ErrInvalidKind      = fmt.Errorf("%w: unknown request kind", ErrValidation)
	ErrPastDate         = fmt.Errorf("%w: date is in the past", ErrValidation)
	ErrNegativeUnits    = fmt.Errorf("%w: units cannot be negative", ErrValidation)
	ErrEmptyMessage     = fmt.Errorf("%w: message body is empty", ErrValidation)
)

// Not-found errors
var (
	ErrUserNotFound      = fmt.Errorf("%w: user", ErrNotFound)
	ErrRequestNotFound   = fmt.Errorf("%w: blood request", ErrNotFound)
	ErrInventoryNotFound = fmt.Errorf("%w: inventory entry", ErrNotFound)
	ErrDonationNotFound  = fmt.Errorf("%w: scheduled donation", ErrNotFound)
)
