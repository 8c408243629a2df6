// Package common defines shared constants and sentinel errors used across
// the storefront client. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Identity errors.
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAlreadyExists      = errors.New("already exists")
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrInvalidToken       = errors.New("invalid token")
	ErrForbidden          = errors.New("forbidden")

	// Collection errors.
	ErrProductNotFound = errors.New("product not found")
	ErrItemNotFound    = errors.New("item not found")
	ErrDuplicateEntry  = errors.New("duplicate entry")
	ErrInvalidQuantity = errors.New("quantity must be positive")

	// ErrCorruptPersistedState marks a stored record that could not be decoded
	// or failed validation. It is logged and repaired, never returned to callers.
	ErrCorruptPersistedState = errors.New("corrupt persisted state")

	// Validation / transport errors.
	ErrValidation       = errors.New("validation error")
	ErrSimulatedFailure = errors.New("simulated remote failure")
)
