package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Concrete errors wrap one of these and are classified with errors.Is.
var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrOwnership    = errors.New("not owned by requester")
	ErrCodeMismatch = errors.New("confirmation code mismatch")
	ErrPersistence  = errors.New("persistence failure")
)

var (
	ErrUserNotFound    = fmt.Errorf("user: %w", ErrNotFound)
	ErrSellerNotFound  = fmt.Errorf("seller: %w", ErrNotFound)
	ErrProductNotFound = fmt.Errorf("product: %w", ErrNotFound)
	ErrBookingNotFound = fmt.Errorf("booking: %w", ErrNotFound)

	// ErrCodeTaken signals that a confirmation code was already issued once.
	ErrCodeTaken = errors.New("booking code already issued")
	// ErrAlreadyRegistered signals a second registration for the same chat.
	ErrAlreadyRegistered = errors.New("already registered")
)

// Persistence wraps a storage failure so it classifies as ErrPersistence
// while keeping the cause inspectable.
func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	return &persistenceError{op: op, err: err}
}

type persistenceError struct {
	op  string
	err error
}

func (e *persistenceError) Error() string { return e.op + ": " + e.err.Error() }

func (e *persistenceError) Unwrap() []error { return []error{ErrPersistence, e.err} }

// Code is used by handler summary logs.
func (e *persistenceError) Code() string { return "PERSISTENCE" }

// Kind names the error kind of err for logs.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrOwnership):
		return "ownership"
	case errors.Is(err, ErrCodeMismatch):
		return "code_mismatch"
	default:
		return "persistence"
	}
}
