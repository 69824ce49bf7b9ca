// Package common defines shared constants and sentinel errors used across
// the client layers of dragoncontacts. Callers should use errors.Is to
// match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Lookup errors (email, user, contact, postal code, geocode result).
	ErrNotFound = errors.New("not found")

	// Auth errors.
	ErrInvalidCredential = errors.New("invalid credential")
	ErrInvalidToken      = errors.New("invalid token")
	ErrNotAuthenticated  = errors.New("not authenticated")

	// Uniqueness violations. Specific kinds wrap ErrDuplicate.
	ErrDuplicate      = errors.New("duplicate")
	ErrDuplicateEmail = fmt.Errorf("email already registered: %w", ErrDuplicate)
	ErrDuplicateCpf   = fmt.Errorf("cpf already registered: %w", ErrDuplicate)

	// Malformed user input (cpf, phone, email, cep, password...).
	ErrValidation = errors.New("validation error")

	// Postal lookup / geocoder transport or parse failures.
	ErrExternalService = errors.New("external service error")

	// Persisted collection cannot be decoded.
	ErrMalformedStoredData = errors.New("malformed stored data")

	// Response superseded by a newer request.
	ErrStaleResponse = errors.New("stale response")
)

// ValidationError returns an error wrapping ErrValidation with a field-specific message.
func ValidationError(field, msg string) error {
	return fmt.Errorf("%w: %s: %s", ErrValidation, field, msg)
}

// StoredDataError reports an undecodable collection and the key it lives
// under. It matches ErrMalformedStoredData with errors.Is.
type StoredDataError struct {
	Key string
	Err error
}

func (e *StoredDataError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrMalformedStoredData, e.Key, e.Err)
}

func (e *StoredDataError) Unwrap() []error {
	return []error{ErrMalformedStoredData, e.Err}
}
