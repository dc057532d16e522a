package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStudySession(t *testing.T) {
	t.Parallel()
	learnerID := uuid.New()
	deckID := uuid.New()
	cards := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}

	session, err := NewStudySession(learnerID, deckID, nil, StudyModeReview, cards)
	require.NoError(t, err)

	assert.Equal(t, SessionStatusActive, session.Status)
	assert.Equal(t, 0, session.CurrentCardIndex)
	assert.Equal(t, cards, session.CardsScheduled)
	assert.NotNil(t, session.Answers)
	assert.Empty(t, session.Answers)
	assert.False(t, session.StartedAt.IsZero())

	// The queue is copied; mutating the input must not reach the session.
	cards[0] = uuid.New()
	assert.NotEqual(t, cards[0], session.CardsScheduled[0])
}

func TestNewStudySessionValidation(t *testing.T) {
	t.Parallel()
	cards := []uuid.UUID{uuid.New()}

	_, err := NewStudySession(uuid.Nil, uuid.New(), nil, StudyModeReview, cards)
	assert.ErrorIs(t, err, ErrEmptyLearnerID)

	_, err = NewStudySession(uuid.New(), uuid.Nil, nil, StudyModeReview, cards)
	assert.ErrorIs(t, err, ErrEmptyDeckID)

	_, err = NewStudySession(uuid.New(), uuid.New(), nil, StudyMode("speedrun"), cards)
	assert.ErrorIs(t, err, ErrInvalidStudyMode)

	_, err = NewStudySession(uuid.New(), uuid.New(), nil, StudyModeReview, nil)
	assert.ErrorIs(t, err, ErrNoCardsScheduled)
}

func TestStudyModeIsValid(t *testing.T) {
	t.Parallel()
	for _, mode := range []StudyMode{
		StudyModeReview, StudyModePractice, StudyModeCram, StudyModeTest, StudyModeLearn,
	} {
		assert.True(t, mode.IsValid(), string(mode))
	}
	assert.False(t, StudyMode("").IsValid())
	assert.False(t, StudyMode("REVIEW").IsValid())
}

func TestSessionCursorHelpers(t *testing.T) {
	t.Parallel()
	cards := []uuid.UUID{uuid.New(), uuid.New(), uuid.New(), uuid.New()}
	session, err := NewStudySession(uuid.New(), uuid.New(), nil, StudyModeCram, cards)
	require.NoError(t, err)

	current, ok := session.CurrentCardID()
	require.True(t, ok)
	assert.Equal(t, cards[0], current)
	assert.Equal(t, 4, session.CardsRemaining())
	assert.Equal(t, 0.0, session.CompletionPercentage())

	session.CurrentCardIndex = 3
	current, ok = session.CurrentCardID()
	require.True(t, ok)
	assert.Equal(t, cards[3], current)
	assert.Equal(t, 1, session.CardsRemaining())
	assert.Equal(t, 75.0, session.CompletionPercentage())

	session.CurrentCardIndex = 4
	_, ok = session.CurrentCardID()
	assert.False(t, ok)
	assert.Equal(t, 0, session.CardsRemaining())
	assert.Equal(t, 100.0, session.CompletionPercentage())
}

func TestSessionIsTerminal(t *testing.T) {
	t.Parallel()
	session := &StudySession{Status: SessionStatusActive}
	assert.False(t, session.IsTerminal())

	session.Status = SessionStatusBreak
	assert.False(t, session.IsTerminal())

	session.Status = SessionStatusCompleted
	assert.True(t, session.IsTerminal())

	session.Status = SessionStatusAbandoned
	assert.True(t, session.IsTerminal())
}
