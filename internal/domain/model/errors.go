package model

import "errors"

var (
	ErrItemNotFound  = errors.New("item not found")
	ErrInvalidItemID = errors.New("invalid item ID")

	// ErrDatabaseQuery marks a single failed statement against the primary
	// store. It is never retried.
	ErrDatabaseQuery = errors.New("database query failed")

	// ErrStoreUnavailable is returned while calls to the primary store are
	// being rejected without being attempted.
	ErrStoreUnavailable = errors.New("primary store unavailable")

	// ErrDependencyExhausted is returned when a dependency could not be
	// reached within its retry budget.
	ErrDependencyExhausted = errors.New("dependency retry budget exhausted")

	// ErrDependencyDegraded marks an optional dependency that was given up on.
	ErrDependencyDegraded = errors.New("dependency degraded")
)

const (
	ValidationCodeRequired = "REQUIRED"
	ValidationCodeTooLong  = "TOO_LONG"
)

type ValidationError struct {
	Field   string
	Message string
	Code    string
}

type ValidationErrors struct {
	Errors []ValidationError
}

func (v *ValidationErrors) Error() string {
	if len(v.Errors) == 0 {
		return "validation failed"
	}

	return v.Errors[0].Message
}

func (v *ValidationErrors) Add(field, message, code string) {
	v.Errors = append(v.Errors, ValidationError{
		Field:   field,
		Message: message,
		Code:    code,
	})
}

func (v *ValidationErrors) HasErrors() bool {
	return len(v.Errors) > 0
}
