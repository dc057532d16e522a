package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCardProgress(t *testing.T) {
	t.Parallel()
	learnerID := uuid.New()
	cardID := uuid.New()

	progress, err := NewCardProgress(learnerID, cardID)
	require.NoError(t, err)

	assert.Equal(t, InitialEaseFactor, progress.EaseFactor)
	assert.Equal(t, MinIntervalDays, progress.Interval)
	assert.Equal(t, 0, progress.Repetitions)
	assert.Equal(t, 0, progress.TimesStudied)
	assert.True(t, progress.IsDue(time.Now().UTC()), "new cards are due immediately")
}

func TestNewCardProgressRequiresIdentity(t *testing.T) {
	t.Parallel()
	_, err := NewCardProgress(uuid.Nil, uuid.New())
	assert.ErrorIs(t, err, ErrEmptyLearnerID)

	_, err = NewCardProgress(uuid.New(), uuid.Nil)
	assert.ErrorIs(t, err, ErrEmptyCardID)
}

func TestCardProgressValidate(t *testing.T) {
	t.Parallel()
	progress, err := NewCardProgress(uuid.New(), uuid.New())
	require.NoError(t, err)

	progress.EaseFactor = 1.29
	assert.ErrorIs(t, progress.Validate(), ErrInvalidEaseFactor)

	progress.EaseFactor = MinEaseFactor
	progress.Interval = 0
	assert.ErrorIs(t, progress.Validate(), ErrInvalidInterval)

	progress.Interval = 1
	progress.Repetitions = -1
	assert.ErrorIs(t, progress.Validate(), ErrInvalidRepetitions)

	progress.Repetitions = 0
	assert.NoError(t, progress.Validate())
}

func TestCardProgressDueness(t *testing.T) {
	t.Parallel()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	progress, err := NewCardProgress(uuid.New(), uuid.New())
	require.NoError(t, err)

	progress.NextReview = now.Add(time.Hour)
	assert.False(t, progress.IsDue(now))
	assert.Equal(t, 0, progress.OverdueDays(now))

	progress.NextReview = now
	assert.True(t, progress.IsDue(now))

	progress.NextReview = now.AddDate(0, 0, -3)
	assert.True(t, progress.IsDue(now))
	assert.Equal(t, 3, progress.OverdueDays(now))
}
