package progress

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davrell/mnemo-api/internal/domain"
)

func completedSession(
	learnerID uuid.UUID,
	startedAt time.Time,
	mode domain.StudyMode,
	progress domain.SessionProgress,
) *domain.StudySession {
	completedAt := startedAt.Add(time.Duration(progress.TotalTimeSeconds) * time.Second)
	return &domain.StudySession{
		ID:             uuid.New(),
		LearnerID:      learnerID,
		DeckID:         uuid.New(),
		Mode:           mode,
		Status:         domain.SessionStatusCompleted,
		CardsScheduled: []uuid.UUID{uuid.New()},
		Progress:       progress,
		StartedAt:      startedAt,
		LastActivityAt: completedAt,
		CompletedAt:    &completedAt,
	}
}

func newTestAnalytics(sessions *fakeSessionStore, progress *fakeProgressStore) *Analytics {
	return NewAnalytics(sessions, progress, Config{WindowDays: 30}, nil)
}

func TestGetStatistics(t *testing.T) {
	t.Parallel()
	learnerID := uuid.New()
	now := time.Now().UTC()

	sharedDeck := uuid.New()

	reviewSession := completedSession(learnerID, now.Add(-2*time.Hour), domain.StudyModeReview, domain.SessionProgress{
		CardsStudied: 10, CorrectAnswers: 9, IncorrectAnswers: 1,
		BestStreak: 6, TotalTimeSeconds: 300, AccuracyRate: 90,
	})
	reviewSession.DeckID = sharedDeck
	reviewSession.Answers = []domain.SessionAnswer{
		{CardID: uuid.New(), Quality: 5, ResponseTime: 2, WasCorrect: true},
		{CardID: uuid.New(), Quality: 4, ResponseTime: 4, WasCorrect: true},
	}

	cramSession := completedSession(learnerID, now.AddDate(0, 0, -1), domain.StudyModeCram, domain.SessionProgress{
		CardsStudied: 5, CorrectAnswers: 3, IncorrectAnswers: 2,
		BestStreak: 2, TotalTimeSeconds: 120, AccuracyRate: 60,
	})
	cramSession.Answers = []domain.SessionAnswer{
		{CardID: uuid.New(), Quality: 3, ResponseTime: 6, WasCorrect: true},
	}

	abandonedSession := &domain.StudySession{
		ID: uuid.New(), LearnerID: learnerID, DeckID: sharedDeck,
		Mode: domain.StudyModeReview, Status: domain.SessionStatusAbandoned,
		CardsScheduled: []uuid.UUID{uuid.New()},
		StartedAt:      now.Add(-5 * time.Hour), LastActivityAt: now.Add(-5 * time.Hour),
	}

	sessions := &fakeSessionStore{sessions: []*domain.StudySession{
		reviewSession,
		cramSession,
		abandonedSession,
		// Outside the 30-day window; excluded from totals.
		completedSession(learnerID, now.AddDate(0, 0, -45), domain.StudyModeReview, domain.SessionProgress{
			CardsStudied: 99, CorrectAnswers: 99, TotalTimeSeconds: 999,
		}),
		// Another learner; never visible.
		completedSession(uuid.New(), now, domain.StudyModeReview, domain.SessionProgress{
			CardsStudied: 50,
		}),
	}}

	analytics := newTestAnalytics(sessions, &fakeProgressStore{})
	stats, err := analytics.GetStatistics(context.Background(), learnerID, 0)
	require.NoError(t, err)

	assert.Equal(t, 30, stats.WindowDays)
	assert.Equal(t, 3, stats.TotalSessions)
	assert.Equal(t, 2, stats.CompletedSessions)
	assert.InDelta(t, 66.67, stats.CompletionRate, 0.01)
	assert.Equal(t, 15, stats.TotalCardsStudied)
	assert.Equal(t, 12, stats.TotalCorrect)
	assert.Equal(t, 3, stats.TotalIncorrect)
	assert.Equal(t, 420, stats.TotalTimeSeconds)
	assert.Equal(t, 6, stats.BestStreak)
	assert.Equal(t, 80.0, stats.OverallAccuracy)
	assert.Equal(t, 4.0, stats.AverageResponseTime)
	assert.Equal(t, 4.0, stats.AverageQuality)
	assert.Equal(t, 2, stats.DailyStreak, "today and yesterday")
	assert.Equal(t, domain.StudyModeReview, stats.PreferredMode, "two review sessions to one cram")
	require.NotNil(t, stats.MostStudiedDeck)
	assert.Equal(t, sharedDeck, *stats.MostStudiedDeck)
}

func TestGetStatisticsEmpty(t *testing.T) {
	t.Parallel()
	analytics := newTestAnalytics(&fakeSessionStore{}, &fakeProgressStore{})

	stats, err := analytics.GetStatistics(context.Background(), uuid.New(), 7)
	require.NoError(t, err)

	assert.Equal(t, 0, stats.TotalSessions)
	assert.Equal(t, 0.0, stats.CompletionRate)
	assert.Equal(t, 0.0, stats.OverallAccuracy)
	assert.Equal(t, 0, stats.DailyStreak)
	assert.Empty(t, stats.PreferredMode)
	assert.Nil(t, stats.MostStudiedDeck)
}

func TestDailyStreak(t *testing.T) {
	t.Parallel()
	learnerID := uuid.New()
	now := time.Date(2025, 3, 10, 20, 0, 0, 0, time.UTC)

	day := func(offset int) *domain.StudySession {
		return completedSession(learnerID, now.AddDate(0, 0, offset), domain.StudyModeReview, domain.SessionProgress{})
	}

	t.Run("consecutive days count", func(t *testing.T) {
		t.Parallel()
		streak := dailyStreak([]*domain.StudySession{day(0), day(-1), day(-2)}, now)
		assert.Equal(t, 3, streak)
	})

	t.Run("gap breaks the streak", func(t *testing.T) {
		t.Parallel()
		streak := dailyStreak([]*domain.StudySession{day(0), day(-2), day(-3)}, now)
		assert.Equal(t, 1, streak)
	})

	t.Run("quiet today falls back to yesterday", func(t *testing.T) {
		t.Parallel()
		streak := dailyStreak([]*domain.StudySession{day(-1), day(-2)}, now)
		assert.Equal(t, 2, streak)
	})

	t.Run("no sessions means no streak", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, 0, dailyStreak(nil, now))
	})
}

func TestGetSRSOverview(t *testing.T) {
	t.Parallel()
	learnerID := uuid.New()
	now := time.Now().UTC()
	startOfToday := now.Truncate(24 * time.Hour)

	record := func(nextReview time.Time) *domain.CardProgress {
		return &domain.CardProgress{
			LearnerID:  learnerID,
			CardID:     uuid.New(),
			EaseFactor: 2.5,
			Interval:   1,
			NextReview: nextReview,
		}
	}

	endOfToday := startOfToday.AddDate(0, 0, 1)

	progress := &fakeProgressStore{records: []*domain.CardProgress{
		record(now.AddDate(0, 0, -3)),              // overdue
		record(now.Add(-30 * time.Minute)),         // due earlier today: still overdue
		record(now.Add(endOfToday.Sub(now) / 2)),   // later today
		record(endOfToday.Add(1 * time.Hour)),      // tomorrow
		record(startOfToday.AddDate(0, 0, 4)),      // this week
		record(startOfToday.AddDate(0, 0, 20)),     // beyond the week
	}}

	analytics := newTestAnalytics(&fakeSessionStore{}, progress)
	overview, err := analytics.GetSRSOverview(context.Background(), learnerID)
	require.NoError(t, err)

	assert.Equal(t, 2, overview.Overdue)
	assert.Equal(t, 1, overview.DueToday)
	assert.Equal(t, 1, overview.DueTomorrow)
	assert.Equal(t, 1, overview.DueThisWeek)
	assert.Equal(t, 3, overview.ReviewLoad)
}

func TestGetRetention(t *testing.T) {
	t.Parallel()
	learnerID := uuid.New()
	now := time.Now().UTC()

	record := func(lastStudied time.Time, lastQuality int) *domain.CardProgress {
		return &domain.CardProgress{
			LearnerID:     learnerID,
			CardID:        uuid.New(),
			EaseFactor:    2.5,
			Interval:      1,
			LastQuality:   lastQuality,
			TimesStudied:  1,
			LastStudiedAt: lastStudied,
			NextReview:    now.AddDate(0, 0, 1),
		}
	}

	progress := &fakeProgressStore{records: []*domain.CardProgress{
		record(now.Add(-2*time.Hour), 5),   // too recent for any bucket
		record(now.AddDate(0, 0, -3), 4),   // retained, 24h only
		record(now.AddDate(0, 0, -10), 2),  // lapsed, 24h and week
		record(now.AddDate(0, 0, -45), 5),  // retained, all three
		{LearnerID: learnerID, CardID: uuid.New(), EaseFactor: 2.5, Interval: 1}, // never studied
	}}

	analytics := newTestAnalytics(&fakeSessionStore{}, progress)
	retention, err := analytics.GetRetention(context.Background(), learnerID)
	require.NoError(t, err)

	assert.Equal(t, 3, retention.After24Hours.CardCount)
	assert.InDelta(t, 66.67, retention.After24Hours.Rate, 0.01)
	assert.Equal(t, 2, retention.AfterWeek.CardCount)
	assert.Equal(t, 50.0, retention.AfterWeek.Rate)
	assert.Equal(t, 1, retention.AfterMonth.CardCount)
	assert.Equal(t, 100.0, retention.AfterMonth.Rate)
	assert.InDelta(t, 72.22, retention.Overall, 0.01)
}

func TestGetRetentionOldCardCountsInEveryBucket(t *testing.T) {
	t.Parallel()
	learnerID := uuid.New()
	now := time.Now().UTC()

	progress := &fakeProgressStore{records: []*domain.CardProgress{{
		LearnerID: learnerID, CardID: uuid.New(),
		EaseFactor: 2.5, Interval: 30,
		LastQuality: 5, TimesStudied: 3,
		LastStudiedAt: now.AddDate(0, 0, -45),
		NextReview:    now.AddDate(0, 0, -15),
	}}}

	analytics := newTestAnalytics(&fakeSessionStore{}, progress)
	retention, err := analytics.GetRetention(context.Background(), learnerID)
	require.NoError(t, err)

	assert.Equal(t, 100.0, retention.After24Hours.Rate)
	assert.Equal(t, 100.0, retention.AfterWeek.Rate)
	assert.Equal(t, 100.0, retention.AfterMonth.Rate)
	assert.Equal(t, 100.0, retention.Overall)
}

func TestGetRetentionEmptyBucketsDragOverallDown(t *testing.T) {
	t.Parallel()
	learnerID := uuid.New()
	now := time.Now().UTC()

	// Only studied two days ago: the week and month buckets stay empty and
	// contribute zero rates to the overall mean.
	progress := &fakeProgressStore{records: []*domain.CardProgress{{
		LearnerID: learnerID, CardID: uuid.New(),
		EaseFactor: 2.5, Interval: 1,
		LastQuality: 5, TimesStudied: 1,
		LastStudiedAt: now.AddDate(0, 0, -2),
		NextReview:    now.AddDate(0, 0, 1),
	}}}

	analytics := newTestAnalytics(&fakeSessionStore{}, progress)
	retention, err := analytics.GetRetention(context.Background(), learnerID)
	require.NoError(t, err)

	assert.Equal(t, 100.0, retention.After24Hours.Rate)
	assert.Equal(t, 0, retention.AfterWeek.CardCount)
	assert.Equal(t, 0, retention.AfterMonth.CardCount)
	assert.InDelta(t, 33.33, retention.Overall, 0.01)
}

func TestGetRetentionNoData(t *testing.T) {
	t.Parallel()
	analytics := newTestAnalytics(&fakeSessionStore{}, &fakeProgressStore{})

	retention, err := analytics.GetRetention(context.Background(), uuid.New())
	require.NoError(t, err)

	assert.Equal(t, 0, retention.After24Hours.CardCount)
	assert.Equal(t, 0.0, retention.After24Hours.Rate)
	assert.Equal(t, 0.0, retention.Overall)
}

func TestGetModeEffectiveness(t *testing.T) {
	t.Parallel()
	learnerID := uuid.New()
	now := time.Now().UTC()

	sessions := &fakeSessionStore{sessions: []*domain.StudySession{
		// Review: 90% accuracy, 10 cards in 5 minutes -> 2 cards/min, score 180.
		completedSession(learnerID, now.Add(-1*time.Hour), domain.StudyModeReview, domain.SessionProgress{
			CardsStudied: 10, AccuracyRate: 90, TotalTimeSeconds: 300,
		}),
		// Cram: 60% accuracy, 12 cards in 8 minutes -> 1.5 cards/min, score 90.
		completedSession(learnerID, now.Add(-2*time.Hour), domain.StudyModeCram, domain.SessionProgress{
			CardsStudied: 12, AccuracyRate: 60, TotalTimeSeconds: 480,
		}),
		// Abandoned sessions are excluded.
		{
			ID: uuid.New(), LearnerID: learnerID, DeckID: uuid.New(),
			Mode: domain.StudyModeTest, Status: domain.SessionStatusAbandoned,
			CardsScheduled: []uuid.UUID{uuid.New()},
			Progress:       domain.SessionProgress{CardsStudied: 4, AccuracyRate: 100, TotalTimeSeconds: 60},
			StartedAt:      now.Add(-30 * time.Minute), LastActivityAt: now,
		},
	}}

	analytics := newTestAnalytics(sessions, &fakeProgressStore{})
	results, err := analytics.GetModeEffectiveness(context.Background(), learnerID, 0)
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, domain.StudyModeReview, results[0].Mode)
	assert.Equal(t, 90.0, results[0].AverageAccuracy)
	assert.Equal(t, 2.0, results[0].CardsPerMinute)
	assert.Equal(t, 180.0, results[0].Score)

	assert.Equal(t, domain.StudyModeCram, results[1].Mode)
	assert.Equal(t, 1.5, results[1].CardsPerMinute)
	assert.Equal(t, 90.0, results[1].Score)
}

func TestGetHistory(t *testing.T) {
	t.Parallel()
	learnerID := uuid.New()
	now := time.Now().UTC()

	session := completedSession(learnerID, now.Add(-time.Hour), domain.StudyModeReview, domain.SessionProgress{
		CardsStudied: 8, AccuracyRate: 87.5, TotalTimeSeconds: 240,
	})
	session.PerformanceRating = "good"

	analytics := newTestAnalytics(&fakeSessionStore{sessions: []*domain.StudySession{session}}, &fakeProgressStore{})
	entries, err := analytics.GetHistory(context.Background(), learnerID, 0, 0)
	require.NoError(t, err)

	require.Len(t, entries, 1)
	assert.Equal(t, session.ID, entries[0].SessionID)
	assert.Equal(t, 8, entries[0].CardsStudied)
	assert.Equal(t, 87.5, entries[0].AccuracyRate)
	assert.Equal(t, 240, entries[0].DurationSeconds)
	assert.Equal(t, "good", entries[0].PerformanceRating)
}
