package study

import "errors"

// Service error kinds. Handlers map these onto HTTP statuses; nothing in this
// package is retried internally.
var (
	// ErrValidation wraps malformed input: quality out of range, non-positive
	// response time, unknown study mode. Never retryable.
	ErrValidation = errors.New("validation failed")

	// ErrNoCardsAvailable is returned when a session is started and the
	// selector produced an empty card queue.
	ErrNoCardsAvailable = errors.New("no cards available for selected mode")

	// ErrSessionClosed is returned for any mutating operation against a
	// COMPLETED or ABANDONED session.
	ErrSessionClosed = errors.New("session is closed")

	// ErrCardMismatch is returned when a submitted card ID does not match
	// the session's current cursor position. It indicates client/server
	// desync (or a duplicate submission) and leaves all state unchanged.
	ErrCardMismatch = errors.New("submitted card does not match current card")

	// ErrSessionNotFound is returned when the session does not exist.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionNotOwned is returned when a session exists but belongs to a
	// different learner.
	ErrSessionNotOwned = errors.New("session does not belong to learner")

	// ErrNotOnBreak is returned when resume is called on a session that is
	// not in the BREAK state.
	ErrNotOnBreak = errors.New("session is not on break")
)
