package api

import (
	"errors"
	"net/http"

	"github.com/davrell/mnemo-api/internal/service/auth"
	"github.com/davrell/mnemo-api/internal/service/study"
	"github.com/davrell/mnemo-api/internal/store"
)

// MapErrorToStatusCode maps service errors to HTTP status codes. Unknown
// errors default to 500 so internals never leak as client errors.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized

	// Ownership failures read as not-found so session IDs cannot be probed.
	case errors.Is(err, study.ErrSessionNotOwned):
		return http.StatusNotFound

	case errors.Is(err, study.ErrSessionNotFound),
		errors.Is(err, store.ErrUserNotFound),
		errors.Is(err, store.ErrSessionNotFound),
		errors.Is(err, store.ErrCardProgressNotFound),
		errors.Is(err, store.ErrDeckNotFound):
		return http.StatusNotFound

	// State conflicts
	case errors.Is(err, study.ErrSessionClosed),
		errors.Is(err, study.ErrCardMismatch),
		errors.Is(err, store.ErrEmailExists),
		errors.Is(err, auth.ErrEmailTaken):
		return http.StatusConflict

	// Bad requests
	case errors.Is(err, study.ErrValidation),
		errors.Is(err, study.ErrNoCardsAvailable),
		errors.Is(err, study.ErrNotOnBreak),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, auth.ErrWeakPassword):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a client-safe message for the error. Raw error
// strings stay in the logs.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrMissingToken):
		return "Invalid token"

	case errors.Is(err, auth.ErrInvalidCredentials):
		return "Invalid email or password"

	case errors.Is(err, auth.ErrEmailTaken),
		errors.Is(err, store.ErrEmailExists):
		return "Email already exists"

	case errors.Is(err, auth.ErrWeakPassword):
		return "Password must be at least 12 characters"

	case errors.Is(err, study.ErrSessionNotOwned),
		errors.Is(err, study.ErrSessionNotFound),
		errors.Is(err, store.ErrSessionNotFound):
		return "Session not found"

	case errors.Is(err, study.ErrSessionClosed):
		return "Session is already completed or abandoned"

	case errors.Is(err, study.ErrCardMismatch):
		return "Submitted card does not match the current card"

	case errors.Is(err, study.ErrNoCardsAvailable):
		return "No cards available for the selected mode"

	case errors.Is(err, study.ErrNotOnBreak):
		return "Session is not on break"

	case errors.Is(err, study.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity):
		return "Invalid request data"

	default:
		return "An unexpected error occurred"
	}
}
