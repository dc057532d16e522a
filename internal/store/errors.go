package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations. Services match
// on these with errors.Is and translate them into their own error kinds.
var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an operation would create a duplicate of
	// a unique entity.
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity is returned when an entity fails validation before
	// being stored, or violates a database constraint.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrTransactionFailed wraps commit/rollback failures.
	ErrTransactionFailed = errors.New("transaction failed")

	// Entity-specific "not found" errors.

	ErrUserNotFound         = fmt.Errorf("%w: user", ErrNotFound)
	ErrSessionNotFound      = fmt.Errorf("%w: study session", ErrNotFound)
	ErrCardProgressNotFound = fmt.Errorf("%w: card progress", ErrNotFound)
	ErrDeckNotFound         = fmt.Errorf("%w: deck", ErrNotFound)

	// ErrEmailExists indicates a user with the given email already exists.
	ErrEmailExists = fmt.Errorf("%w: email", ErrDuplicate)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError checks if the error is any kind of "duplicate" error.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}
