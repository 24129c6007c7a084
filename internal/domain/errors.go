package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Callers classify with errors.Is; the HTTP layer maps each
// kind to a status code.
var (
	ErrValidation       = errors.New("validation failed")
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrPersistence      = errors.New("persistence failure")
	ErrPaymentGateway   = errors.New("payment gateway failure")
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrMalformedPayload = errors.New("malformed webhook payload")
	ErrNotification     = errors.New("notification failed")
)

func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func NotFound(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

func Conflict(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}

// Persistence wraps a storage error. Errors that already carry a kind
// (not found, conflict, validation) pass through untouched.
func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrConflict) || errors.Is(err, ErrValidation) || errors.Is(err, ErrPersistence) {
		return err
	}
	return fmt.Errorf("%s: %w: %w", op, ErrPersistence, err)
}

func PaymentGateway(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrPaymentGateway, err)
}

// Message returns the part of a classified error that is safe to show to
// API clients.
func Message(err error) string {
	for _, kind := range []error{ErrValidation, ErrNotFound, ErrConflict} {
		if errors.Is(err, kind) {
			return err.Error()
		}
	}
	switch {
	case errors.Is(err, ErrInvalidSignature):
		return ErrInvalidSignature.Error()
	case errors.Is(err, ErrMalformedPayload):
		return ErrMalformedPayload.Error()
	case errors.Is(err, ErrPaymentGateway):
		return "payment could not be initialised, please retry"
	}
	return "something went wrong, please try again"
}

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
