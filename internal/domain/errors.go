// Package domain defines the core business entities and errors.
package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrInvalidOutcome is returned when a review outcome is rejected.
	// Specific causes (quality range, timestamp) wrap this error.
	ErrInvalidOutcome = errors.New("invalid review outcome")
)
