package domain

import "errors"

// Common validation errors for domain entities.
var (
	ErrEmptyLearnerID = errors.New("learner ID cannot be empty")
	ErrEmptyCardID    = errors.New("card ID cannot be empty")
	ErrEmptyDeckID    = errors.New("deck ID cannot be empty")

	// ErrInvalidQuality is returned when a recall quality rating falls
	// outside the 0-5 scale.
	ErrInvalidQuality = errors.New("quality must be between 0 and 5")

	// ErrInvalidEaseFactor is returned when an ease factor drops below the
	// SM-2 floor of 1.3.
	ErrInvalidEaseFactor = errors.New("ease factor must be at least 1.3")

	// ErrInvalidInterval is returned when a review interval is below one day.
	ErrInvalidInterval = errors.New("interval must be at least 1 day")

	// ErrInvalidRepetitions is returned when a repetition counter is negative.
	ErrInvalidRepetitions = errors.New("repetitions cannot be negative")

	// ErrInvalidResponseTime is returned when an answer reports a
	// non-positive response time.
	ErrInvalidResponseTime = errors.New("response time must be positive")

	ErrInvalidStudyMode     = errors.New("invalid study mode")
	ErrInvalidSessionStatus = errors.New("invalid session status")

	// ErrNoCardsScheduled is returned when a session is started with an
	// empty card queue.
	ErrNoCardsScheduled = errors.New("no cards available for selected mode")

	ErrEmptyUserEmail    = errors.New("user email cannot be empty")
	ErrEmptyUserPassword = errors.New("user password hash cannot be empty")
)
