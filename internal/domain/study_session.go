package domain

import (
	"time"

	"github.com/google/uuid"
)

// StudyMode selects how a session's card queue is built.
type StudyMode string

// Supported study modes.
const (
	StudyModeReview   StudyMode = "review"   // SRS: due cards first
	StudyModePractice StudyMode = "practice" // random sample, hints allowed
	StudyModeCram     StudyMode = "cram"     // whole deck, deck order
	StudyModeTest     StudyMode = "test"     // random sample, no hints
	StudyModeLearn    StudyMode = "learn"    // never-studied cards only
)

// IsValid reports whether m is one of the supported study modes.
func (m StudyMode) IsValid() bool {
	switch m {
	case StudyModeReview, StudyModePractice, StudyModeCram, StudyModeTest, StudyModeLearn:
		return true
	default:
		return false
	}
}

// SessionStatus is the state of a study session.
type SessionStatus string

// Session states. Completed and Abandoned are terminal.
const (
	SessionStatusActive    SessionStatus = "active"
	SessionStatusBreak     SessionStatus = "break"
	SessionStatusCompleted SessionStatus = "completed"
	SessionStatusAbandoned SessionStatus = "abandoned"
)

// CompletionType records how a session reached the COMPLETED state.
const (
	CompletionTypeManual    = "manual"
	CompletionTypeGoal      = "goal"
	CompletionTypeExhausted = "all_cards"
)

// SessionAnswer is one append-only entry in a session's answer log.
type SessionAnswer struct {
	CardID       uuid.UUID `json:"card_id"`
	Quality      int       `json:"quality"`
	ResponseTime float64   `json:"response_time"` // seconds
	WasCorrect   bool      `json:"was_correct"`
	AnswerText   string    `json:"answer_text,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// SessionProgress holds the running counters of a session. The invariant
// CorrectAnswers + IncorrectAnswers == len(session.Answers) holds after every
// submitted answer.
type SessionProgress struct {
	CardsStudied        int     `json:"cards_studied"`
	CorrectAnswers      int     `json:"correct_answers"`
	IncorrectAnswers    int     `json:"incorrect_answers"`
	CurrentStreak       int     `json:"current_streak"`
	BestStreak          int     `json:"best_streak"`
	BreakCount          int     `json:"break_count"`
	AccuracyRate        float64 `json:"accuracy_rate"`         // percent
	AverageResponseTime float64 `json:"average_response_time"` // seconds
	TotalTimeSeconds    int     `json:"total_time_seconds"`
}

// StudySession is one study run over a fixed card queue. The queue is
// immutable after creation; answers move the cursor forward until the
// session completes.
type StudySession struct {
	ID        uuid.UUID  `json:"id"`
	LearnerID uuid.UUID  `json:"learner_id"`
	DeckID    uuid.UUID  `json:"deck_id"`
	LessonID  *uuid.UUID `json:"lesson_id,omitempty"`

	Mode   StudyMode     `json:"mode"`
	Status SessionStatus `json:"status"`

	CardsScheduled   []uuid.UUID `json:"cards_scheduled"`
	CurrentCardIndex int         `json:"current_card_index"`

	// Optional goals. Zero means no goal was set.
	TargetCards       int `json:"target_cards,omitempty"`
	TargetTimeMinutes int `json:"target_time_minutes,omitempty"`

	Progress SessionProgress `json:"progress"`
	Answers  []SessionAnswer `json:"answers"`

	BreakRemindersEnabled bool       `json:"break_reminders_enabled"`
	BreakIntervalMinutes  int        `json:"break_interval_minutes,omitempty"`
	BreakStartedAt        *time.Time `json:"break_started_at,omitempty"`
	NextBreakReminder     *time.Time `json:"next_break_reminder,omitempty"`

	// Set on completion.
	CompletionType    string    `json:"completion_type,omitempty"`
	PerformanceRating string    `json:"performance_rating,omitempty"`
	RecommendedMode   StudyMode `json:"recommended_mode,omitempty"`

	StartedAt      time.Time  `json:"started_at"`
	LastActivityAt time.Time  `json:"last_activity_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
}

// NewStudySession creates an ACTIVE session over the given card queue.
// The queue must be non-empty; an empty eligible set is the caller's error
// to surface.
func NewStudySession(
	learnerID, deckID uuid.UUID,
	lessonID *uuid.UUID,
	mode StudyMode,
	cards []uuid.UUID,
) (*StudySession, error) {
	if learnerID == uuid.Nil {
		return nil, ErrEmptyLearnerID
	}
	if deckID == uuid.Nil {
		return nil, ErrEmptyDeckID
	}
	if !mode.IsValid() {
		return nil, ErrInvalidStudyMode
	}
	if len(cards) == 0 {
		return nil, ErrNoCardsScheduled
	}

	now := time.Now().UTC()
	scheduled := make([]uuid.UUID, len(cards))
	copy(scheduled, cards)

	return &StudySession{
		ID:             uuid.New(),
		LearnerID:      learnerID,
		DeckID:         deckID,
		LessonID:       lessonID,
		Mode:           mode,
		Status:         SessionStatusActive,
		CardsScheduled: scheduled,
		Answers:        []SessionAnswer{},
		StartedAt:      now,
		LastActivityAt: now,
	}, nil
}

// Validate checks the StudySession invariants.
func (s *StudySession) Validate() error {
	if s.LearnerID == uuid.Nil {
		return ErrEmptyLearnerID
	}
	if s.DeckID == uuid.Nil {
		return ErrEmptyDeckID
	}
	if !s.Mode.IsValid() {
		return ErrInvalidStudyMode
	}
	switch s.Status {
	case SessionStatusActive, SessionStatusBreak, SessionStatusCompleted, SessionStatusAbandoned:
	default:
		return ErrInvalidSessionStatus
	}
	if len(s.CardsScheduled) == 0 {
		return ErrNoCardsScheduled
	}
	return nil
}

// IsTerminal reports whether the session is in a state that accepts no
// further mutation.
func (s *StudySession) IsTerminal() bool {
	return s.Status == SessionStatusCompleted || s.Status == SessionStatusAbandoned
}

// CurrentCardID returns the card at the cursor. The second return value is
// false when the cursor has run off the end of the queue.
func (s *StudySession) CurrentCardID() (uuid.UUID, bool) {
	if s.CurrentCardIndex < 0 || s.CurrentCardIndex >= len(s.CardsScheduled) {
		return uuid.Nil, false
	}
	return s.CardsScheduled[s.CurrentCardIndex], true
}

// CardsRemaining returns how many cards are left in the queue.
func (s *StudySession) CardsRemaining() int {
	remaining := len(s.CardsScheduled) - s.CurrentCardIndex
	if remaining < 0 {
		return 0
	}
	return remaining
}

// CompletionPercentage returns the cursor position as a percentage of the
// queue length.
func (s *StudySession) CompletionPercentage() float64 {
	if len(s.CardsScheduled) == 0 {
		return 0
	}
	return float64(s.CurrentCardIndex) / float64(len(s.CardsScheduled)) * 100
}
