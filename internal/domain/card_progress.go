package domain

import (
	"time"

	"github.com/google/uuid"
)

// SM-2 scheduling defaults. A card that has never been answered starts at
// these values.
const (
	InitialEaseFactor = 2.5
	MinEaseFactor     = 1.3
	MinIntervalDays   = 1
)

// QualityRecord is one append-only entry in a card's quality history. It
// captures the submitted rating together with the scheduling state that
// resulted from it.
type QualityRecord struct {
	Quality      int       `json:"quality"`
	Timestamp    time.Time `json:"timestamp"`
	ResponseTime float64   `json:"response_time"` // seconds
	EaseFactor   float64   `json:"ease_factor"`
	Interval     int       `json:"interval"`
	Repetitions  int       `json:"repetitions"`
}

// CardProgress tracks a learner's spaced-repetition state for a single card.
// There is exactly one record per (learner, card) pair; it is created on the
// first answer and never deleted.
type CardProgress struct {
	LearnerID      uuid.UUID       `json:"learner_id"`
	CardID         uuid.UUID       `json:"card_id"`
	EaseFactor     float64         `json:"ease_factor"`  // >= 1.3
	Interval       int             `json:"interval"`     // days, >= 1
	Repetitions    int             `json:"repetitions"`  // consecutive successes
	NextReview     time.Time       `json:"next_review"`  // when the card is due
	LastQuality    int             `json:"last_quality"` // most recent rating
	TimesStudied   int             `json:"times_studied"`
	FirstStudiedAt time.Time       `json:"first_studied_at"`
	LastStudiedAt  time.Time       `json:"last_studied_at"`
	QualityHistory []QualityRecord `json:"quality_history"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// NewCardProgress creates a progress record for a card the learner has never
// studied, with SM-2 defaults. The card is due immediately.
func NewCardProgress(learnerID, cardID uuid.UUID) (*CardProgress, error) {
	now := time.Now().UTC()
	progress := &CardProgress{
		LearnerID:   learnerID,
		CardID:      cardID,
		EaseFactor:  InitialEaseFactor,
		Interval:    MinIntervalDays,
		Repetitions: 0,
		NextReview:  now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := progress.Validate(); err != nil {
		return nil, err
	}

	return progress, nil
}

// Validate checks the CardProgress invariants: identity present, ease factor
// at or above the 1.3 floor, interval at least one day.
func (p *CardProgress) Validate() error {
	if p.LearnerID == uuid.Nil {
		return ErrEmptyLearnerID
	}
	if p.CardID == uuid.Nil {
		return ErrEmptyCardID
	}
	if p.EaseFactor < MinEaseFactor {
		return ErrInvalidEaseFactor
	}
	if p.Interval < MinIntervalDays {
		return ErrInvalidInterval
	}
	if p.Repetitions < 0 {
		return ErrInvalidRepetitions
	}
	return nil
}

// IsDue reports whether the card's next review has passed at the given time.
func (p *CardProgress) IsDue(now time.Time) bool {
	return !p.NextReview.After(now)
}

// OverdueDays returns how many whole days the card is past its scheduled
// review, or 0 when the card is not due.
func (p *CardProgress) OverdueDays(now time.Time) int {
	if !p.IsDue(now) {
		return 0
	}
	return int(now.Sub(p.NextReview).Hours() / 24)
}
