// Package domain holds the storefront models and the error taxonomy shared by
// services and HTTP handlers. Services wrap the sentinels below with
// fmt.Errorf("%w: ...") and handlers translate them into status codes.
package domain

import "errors"

var (
	// ErrValidation signals malformed input the caller can correct.
	ErrValidation = errors.New("validation failed")
	// ErrConflict signals a duplicate email.
	ErrConflict = errors.New("email already registered")
	// ErrAuthentication covers bad credentials and missing sessions alike.
	ErrAuthentication = errors.New("authentication required")
	// ErrNotFound signals an unknown product or user.
	ErrNotFound = errors.New("not found")
	// ErrStore wraps any persistence failure. Its detail is never sent to clients.
	ErrStore = errors.New("store failure")
)
