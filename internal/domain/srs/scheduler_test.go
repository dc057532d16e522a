package srs

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davrell/mnemo-api/internal/domain"
)

func TestSchedule(t *testing.T) {
	t.Parallel()
	s := NewDefaultScheduler()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	testCases := []struct {
		name        string
		quality     int
		ef          float64
		interval    int
		repetitions int
		wantEF      float64
		wantDays    int
		wantReps    int
	}{
		{
			name:        "first successful review schedules one day out",
			quality:     4,
			ef:          2.5,
			interval:    1,
			repetitions: 0,
			wantEF:      2.5,
			wantDays:    1,
			wantReps:    1,
		},
		{
			name:        "quality 4 on new card keeps ease factor at 2.5",
			quality:     4,
			ef:          2.5,
			interval:    1,
			repetitions: 0,
			wantEF:      2.5,
			wantDays:    1,
			wantReps:    1,
		},
		{
			name:        "second success schedules six days out",
			quality:     5,
			ef:          2.5,
			interval:    1,
			repetitions: 1,
			wantEF:      2.6,
			wantDays:    6,
			wantReps:    2,
		},
		{
			name:        "third success multiplies prior interval by prior ease factor",
			quality:     4,
			ef:          2.5,
			interval:    6,
			repetitions: 2,
			wantEF:      2.5,
			wantDays:    15, // round(6 * 2.5)
			wantReps:    3,
		},
		{
			name:        "quality 5 raises the ease factor",
			quality:     5,
			ef:          2.5,
			interval:    15,
			repetitions: 3,
			wantEF:      2.6,
			wantDays:    38, // round(15 * 2.5)
			wantReps:    4,
		},
		{
			name:        "quality 3 lowers the ease factor but still counts as success",
			quality:     3,
			ef:          2.5,
			interval:    6,
			repetitions: 2,
			wantEF:      2.36,
			wantDays:    15,
			wantReps:    3,
		},
		{
			name:        "lapse resets repetitions and interval",
			quality:     2,
			ef:          2.5,
			interval:    15,
			repetitions: 3,
			wantEF:      2.3,
			wantDays:    1,
			wantReps:    0,
		},
		{
			name:        "blackout resets and penalizes the ease factor",
			quality:     0,
			ef:          2.0,
			interval:    30,
			repetitions: 5,
			wantEF:      1.8,
			wantDays:    1,
			wantReps:    0,
		},
		{
			name:        "lapse penalty never drops below the floor",
			quality:     1,
			ef:          1.35,
			interval:    4,
			repetitions: 2,
			wantEF:      1.3,
			wantDays:    1,
			wantReps:    0,
		},
		{
			name:        "repeated low-quality successes converge on the ease floor",
			quality:     3,
			ef:          1.3,
			interval:    1,
			repetitions: 0,
			wantEF:      1.3, // 1.3 - 0.14 clamps back up
			wantDays:    1,
			wantReps:    1,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			result, err := s.Schedule(tc.quality, tc.ef, tc.interval, tc.repetitions, now)
			require.NoError(t, err)

			assert.InDelta(t, tc.wantEF, result.EaseFactor, 0.001)
			assert.Equal(t, tc.wantDays, result.Interval)
			assert.Equal(t, tc.wantReps, result.Repetitions)
			assert.Equal(t, now.AddDate(0, 0, tc.wantDays), result.NextReview)
		})
	}
}

func TestScheduleRejectsInvalidInput(t *testing.T) {
	t.Parallel()
	s := NewDefaultScheduler()
	now := time.Now().UTC()

	_, err := s.Schedule(-1, 2.5, 1, 0, now)
	assert.ErrorIs(t, err, domain.ErrInvalidQuality)

	_, err = s.Schedule(6, 2.5, 1, 0, now)
	assert.ErrorIs(t, err, domain.ErrInvalidQuality)

	_, err = s.Schedule(4, 1.2, 1, 0, now)
	assert.ErrorIs(t, err, domain.ErrInvalidEaseFactor)

	_, err = s.Schedule(4, 2.5, 0, 0, now)
	assert.ErrorIs(t, err, domain.ErrInvalidInterval)

	_, err = s.Schedule(4, 2.5, 1, -1, now)
	assert.ErrorIs(t, err, domain.ErrInvalidRepetitions)
}

func TestScheduleEaseFactorRounding(t *testing.T) {
	t.Parallel()
	s := NewDefaultScheduler()
	now := time.Now().UTC()

	// 2.36 + (0.1 - 1*(0.08 + 0.02)) = 2.36 exactly; exercise a value that
	// needs rounding: 2.5 with quality 3 gives 2.5 - 0.14 = 2.36.
	result, err := s.Schedule(3, 2.5, 6, 2, now)
	require.NoError(t, err)
	assert.Equal(t, 2.36, result.EaseFactor)
}

func TestNextProgress(t *testing.T) {
	t.Parallel()
	s := NewDefaultScheduler()
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	progress, err := domain.NewCardProgress(uuid.New(), uuid.New())
	require.NoError(t, err)

	next, err := s.NextProgress(progress, 4, 3.5, now)
	require.NoError(t, err)

	assert.Equal(t, 1, next.TimesStudied)
	assert.Equal(t, 4, next.LastQuality)
	assert.Equal(t, now, next.FirstStudiedAt)
	assert.Equal(t, now, next.LastStudiedAt)
	assert.Equal(t, 1, next.Repetitions)
	assert.Equal(t, now.AddDate(0, 0, 1), next.NextReview)

	require.Len(t, next.QualityHistory, 1)
	record := next.QualityHistory[0]
	assert.Equal(t, 4, record.Quality)
	assert.Equal(t, 3.5, record.ResponseTime)
	assert.Equal(t, next.EaseFactor, record.EaseFactor)
	assert.Equal(t, next.Interval, record.Interval)

	// The input record must be untouched.
	assert.Equal(t, 0, progress.TimesStudied)
	assert.Empty(t, progress.QualityHistory)
}

func TestNextProgressPreservesFirstStudiedAt(t *testing.T) {
	t.Parallel()
	s := NewDefaultScheduler()
	first := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	later := first.AddDate(0, 0, 6)

	progress, err := domain.NewCardProgress(uuid.New(), uuid.New())
	require.NoError(t, err)

	after1, err := s.NextProgress(progress, 5, 2.0, first)
	require.NoError(t, err)
	after2, err := s.NextProgress(after1, 5, 2.0, later)
	require.NoError(t, err)

	assert.Equal(t, first, after2.FirstStudiedAt)
	assert.Equal(t, later, after2.LastStudiedAt)
	assert.Equal(t, 2, after2.TimesStudied)
	assert.Len(t, after2.QualityHistory, 2)
	assert.Equal(t, 6, after2.Interval)
}

func TestNextProgressRejectsNonPositiveResponseTime(t *testing.T) {
	t.Parallel()
	s := NewDefaultScheduler()
	progress, err := domain.NewCardProgress(uuid.New(), uuid.New())
	require.NoError(t, err)

	_, err = s.NextProgress(progress, 4, 0, time.Now().UTC())
	assert.ErrorIs(t, err, domain.ErrInvalidResponseTime)

	_, err = s.NextProgress(progress, 4, -1.5, time.Now().UTC())
	assert.ErrorIs(t, err, domain.ErrInvalidResponseTime)
}

func TestScheduleFullLadder(t *testing.T) {
	t.Parallel()
	s := NewDefaultScheduler()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	ef, interval, reps := 2.5, 1, 0
	intervals := []int{}
	for i := 0; i < 5; i++ {
		result, err := s.Schedule(4, ef, interval, reps, now)
		require.NoError(t, err)
		ef, interval, reps = result.EaseFactor, result.Interval, result.Repetitions
		intervals = append(intervals, interval)
	}

	// Quality 4 keeps EF at 2.5, so the ladder is 1, 6, 15, 38, 95.
	assert.Equal(t, []int{1, 6, 15, 38, 95}, intervals)
}
