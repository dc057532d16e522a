package progress

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/davrell/mnemo-api/internal/domain"
	"github.com/davrell/mnemo-api/internal/store"
)

// streakLookbackDays bounds how far back the daily-streak walk can go,
// independent of the statistics window.
const streakLookbackDays = 365

// Config holds the analytics tunables.
type Config struct {
	// WindowDays is the default lookback for statistics and mode
	// effectiveness when the caller does not specify one.
	WindowDays int
}

// Analytics aggregates historical study data. All methods are read-only and
// degrade to zero values on sparse data rather than erroring.
type Analytics struct {
	sessions store.StudySessionStore
	progress store.CardProgressStore
	cfg      Config
	logger   *slog.Logger
}

// NewAnalytics creates the analytics service.
func NewAnalytics(
	sessions store.StudySessionStore,
	progress store.CardProgressStore,
	cfg Config,
	log *slog.Logger,
) *Analytics {
	if sessions == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("sessions store cannot be nil")
	}
	if progress == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("progress store cannot be nil")
	}
	if cfg.WindowDays <= 0 {
		cfg.WindowDays = 30
	}
	if log == nil {
		log = slog.Default()
	}

	return &Analytics{
		sessions: sessions,
		progress: progress,
		cfg:      cfg,
		logger:   log.With(slog.String("component", "analytics")),
	}
}

// Statistics summarizes a learner's study activity over a window.
type Statistics struct {
	WindowDays          int              `json:"window_days"`
	TotalSessions       int              `json:"total_sessions"`
	CompletedSessions   int              `json:"completed_sessions"`
	CompletionRate      float64          `json:"completion_rate"` // percent
	TotalCardsStudied   int              `json:"total_cards_studied"`
	TotalCorrect        int              `json:"total_correct"`
	TotalIncorrect      int              `json:"total_incorrect"`
	OverallAccuracy     float64          `json:"overall_accuracy"`      // percent
	AverageResponseTime float64          `json:"average_response_time"` // seconds
	AverageQuality      float64          `json:"average_quality"`
	TotalTimeSeconds    int              `json:"total_time_seconds"`
	BestStreak          int              `json:"best_streak"`
	DailyStreak         int              `json:"daily_streak"`
	PreferredMode       domain.StudyMode `json:"preferred_mode,omitempty"`
	MostStudiedDeck     *uuid.UUID       `json:"most_studied_deck,omitempty"`
}

// GetStatistics aggregates sessions started within the last windowDays.
// A windowDays of zero selects the configured default. The daily streak is
// computed over a longer lookback so a small window does not truncate it.
func (a *Analytics) GetStatistics(
	ctx context.Context,
	learnerID uuid.UUID,
	windowDays int,
) (*Statistics, error) {
	if windowDays <= 0 {
		windowDays = a.cfg.WindowDays
	}
	now := time.Now().UTC()

	lookback := windowDays
	if lookback < streakLookbackDays {
		lookback = streakLookbackDays
	}
	sessions, err := a.sessions.ListSince(ctx, learnerID, now.AddDate(0, 0, -lookback), 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	stats := &Statistics{
		WindowDays:  windowDays,
		DailyStreak: dailyStreak(sessions, now),
	}
	cutoff := now.AddDate(0, 0, -windowDays)
	modeCounts := make(map[domain.StudyMode]int)
	deckCounts := make(map[uuid.UUID]int)
	var responseTimeSum float64
	var responseTimeCount int
	var qualitySum int
	var qualityCount int
	for _, session := range sessions {
		if session.StartedAt.Before(cutoff) {
			continue
		}
		stats.TotalSessions++
		if session.Status == domain.SessionStatusCompleted {
			stats.CompletedSessions++
		}
		stats.TotalCardsStudied += session.Progress.CardsStudied
		stats.TotalCorrect += session.Progress.CorrectAnswers
		stats.TotalIncorrect += session.Progress.IncorrectAnswers
		stats.TotalTimeSeconds += session.Progress.TotalTimeSeconds
		if session.Progress.BestStreak > stats.BestStreak {
			stats.BestStreak = session.Progress.BestStreak
		}
		modeCounts[session.Mode]++
		deckCounts[session.DeckID]++
		for _, answer := range session.Answers {
			if answer.ResponseTime > 0 {
				responseTimeSum += answer.ResponseTime
				responseTimeCount++
			}
			if answer.Quality > 0 {
				qualitySum += answer.Quality
				qualityCount++
			}
		}
	}

	if answered := stats.TotalCorrect + stats.TotalIncorrect; answered > 0 {
		stats.OverallAccuracy = round2(float64(stats.TotalCorrect) / float64(answered) * 100)
	}
	if stats.TotalSessions > 0 {
		stats.CompletionRate = round2(float64(stats.CompletedSessions) / float64(stats.TotalSessions) * 100)
	}
	if responseTimeCount > 0 {
		stats.AverageResponseTime = round2(responseTimeSum / float64(responseTimeCount))
	}
	if qualityCount > 0 {
		stats.AverageQuality = round2(float64(qualitySum) / float64(qualityCount))
	}
	stats.PreferredMode = preferredMode(modeCounts)
	if deckID, ok := topDeck(deckCounts); ok {
		stats.MostStudiedDeck = &deckID
	}
	return stats, nil
}

// HistoryEntry is one session in the learner's study history.
type HistoryEntry struct {
	SessionID         uuid.UUID            `json:"session_id"`
	DeckID            uuid.UUID            `json:"deck_id"`
	Mode              domain.StudyMode     `json:"mode"`
	Status            domain.SessionStatus `json:"status"`
	StartedAt         time.Time            `json:"started_at"`
	CompletedAt       *time.Time           `json:"completed_at,omitempty"`
	CardsStudied      int                  `json:"cards_studied"`
	AccuracyRate      float64              `json:"accuracy_rate"`
	DurationSeconds   int                  `json:"duration_seconds"`
	PerformanceRating string               `json:"performance_rating,omitempty"`
}

// GetHistory returns recent sessions newest first.
func (a *Analytics) GetHistory(
	ctx context.Context,
	learnerID uuid.UUID,
	windowDays, limit int,
) ([]HistoryEntry, error) {
	if windowDays <= 0 {
		windowDays = a.cfg.WindowDays
	}
	now := time.Now().UTC()

	sessions, err := a.sessions.ListSince(ctx, learnerID, now.AddDate(0, 0, -windowDays), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	entries := make([]HistoryEntry, 0, len(sessions))
	for _, session := range sessions {
		entry := HistoryEntry{
			SessionID:         session.ID,
			DeckID:            session.DeckID,
			Mode:              session.Mode,
			Status:            session.Status,
			StartedAt:         session.StartedAt,
			CompletedAt:       session.CompletedAt,
			CardsStudied:      session.Progress.CardsStudied,
			AccuracyRate:      session.Progress.AccuracyRate,
			DurationSeconds:   session.Progress.TotalTimeSeconds,
			PerformanceRating: session.PerformanceRating,
		}
		if entry.DurationSeconds == 0 {
			entry.DurationSeconds = int(session.LastActivityAt.Sub(session.StartedAt).Seconds())
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// SRSOverview reports the learner's upcoming review workload. The buckets
// are disjoint: a card counts in exactly one of overdue, today, tomorrow or
// this-week.
type SRSOverview struct {
	Overdue     int `json:"overdue"`
	DueToday    int `json:"due_today"`
	DueTomorrow int `json:"due_tomorrow"`
	DueThisWeek int `json:"due_this_week"`
	ReviewLoad  int `json:"review_load"` // overdue + due today
}

// GetSRSOverview computes the review workload from the scheduling state.
func (a *Analytics) GetSRSOverview(
	ctx context.Context,
	learnerID uuid.UUID,
) (*SRSOverview, error) {
	now := time.Now().UTC()
	startOfToday := now.Truncate(24 * time.Hour)
	endOfToday := startOfToday.AddDate(0, 0, 1)
	endOfTomorrow := startOfToday.AddDate(0, 0, 2)
	endOfWeek := startOfToday.AddDate(0, 0, 7)

	// Overdue is strictly before now; the remaining buckets split the rest
	// of the horizon on day boundaries.
	cutoffs := []time.Time{now, endOfToday, endOfTomorrow, endOfWeek}
	counts := make([]int, len(cutoffs))
	for i, cutoff := range cutoffs {
		count, err := a.progress.CountDue(ctx, learnerID, cutoff)
		if err != nil {
			return nil, fmt.Errorf("failed to count due cards: %w", err)
		}
		counts[i] = count
	}

	overview := &SRSOverview{
		Overdue:     counts[0],
		DueToday:    counts[1] - counts[0],
		DueTomorrow: counts[2] - counts[1],
		DueThisWeek: counts[3] - counts[2],
	}
	overview.ReviewLoad = overview.Overdue + overview.DueToday
	return overview, nil
}

// RetentionBucket is the retention rate for cards whose last study was at
// least one delay ago.
type RetentionBucket struct {
	CardCount     int     `json:"card_count"`
	RetainedCount int     `json:"retained_count"`
	Rate          float64 `json:"rate"` // percent, 0 when the bucket is empty
}

// Retention reports how well studied material stuck after time passed. A
// card enters a bucket once at least that much time has elapsed since it was
// last studied, and counts as retained when its most recent rating was a
// pass (quality >= 3).
type Retention struct {
	After24Hours RetentionBucket `json:"after_24_hours"`
	AfterWeek    RetentionBucket `json:"after_week"`
	AfterMonth   RetentionBucket `json:"after_month"`
	Overall      float64         `json:"overall"` // mean of the three bucket rates
}

// GetRetention buckets every tracked card by how long ago it was studied.
// Buckets are cumulative from the long end: a card studied 45 days ago
// counts in all three, one studied an hour ago in none.
func (a *Analytics) GetRetention(
	ctx context.Context,
	learnerID uuid.UUID,
) (*Retention, error) {
	records, err := a.progress.FindByLearner(ctx, learnerID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load card progress: %w", err)
	}

	now := time.Now().UTC()
	retention := &Retention{}
	for _, record := range records {
		if record.TimesStudied == 0 || record.LastStudiedAt.IsZero() {
			continue
		}
		age := now.Sub(record.LastStudiedAt)
		retained := record.LastQuality >= 3

		if age >= 24*time.Hour {
			addToBucket(&retention.After24Hours, retained)
		}
		if age >= 7*24*time.Hour {
			addToBucket(&retention.AfterWeek, retained)
		}
		if age >= 30*24*time.Hour {
			addToBucket(&retention.AfterMonth, retained)
		}
	}

	finishBucket(&retention.After24Hours)
	finishBucket(&retention.AfterWeek)
	finishBucket(&retention.AfterMonth)

	// An empty bucket contributes a zero rate to the mean.
	retention.Overall = round2(
		(retention.After24Hours.Rate + retention.AfterWeek.Rate + retention.AfterMonth.Rate) / 3)
	return retention, nil
}

// ModeEffectiveness scores one study mode over completed sessions.
type ModeEffectiveness struct {
	Mode            domain.StudyMode `json:"mode"`
	Sessions        int              `json:"sessions"`
	AverageAccuracy float64          `json:"average_accuracy"` // percent
	CardsPerMinute  float64          `json:"cards_per_minute"`
	// Score is accuracy-weighted throughput: average accuracy (percent)
	// times cards per minute. Higher means the mode produced more correct
	// answers per minute of study.
	Score float64 `json:"score"`
}

// GetModeEffectiveness compares study modes over completed sessions in the
// window, best-scoring first.
func (a *Analytics) GetModeEffectiveness(
	ctx context.Context,
	learnerID uuid.UUID,
	windowDays int,
) ([]ModeEffectiveness, error) {
	if windowDays <= 0 {
		windowDays = a.cfg.WindowDays
	}
	now := time.Now().UTC()

	sessions, err := a.sessions.ListSince(ctx, learnerID, now.AddDate(0, 0, -windowDays), 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	type acc struct {
		sessions    int
		accuracySum float64
		cards       int
		seconds     int
	}
	byMode := make(map[domain.StudyMode]*acc)
	for _, session := range sessions {
		if session.Status != domain.SessionStatusCompleted {
			continue
		}
		if session.Progress.CardsStudied == 0 {
			continue
		}
		m := byMode[session.Mode]
		if m == nil {
			m = &acc{}
			byMode[session.Mode] = m
		}
		m.sessions++
		m.accuracySum += session.Progress.AccuracyRate
		m.cards += session.Progress.CardsStudied
		m.seconds += session.Progress.TotalTimeSeconds
	}

	results := make([]ModeEffectiveness, 0, len(byMode))
	for mode, m := range byMode {
		entry := ModeEffectiveness{
			Mode:            mode,
			Sessions:        m.sessions,
			AverageAccuracy: round2(m.accuracySum / float64(m.sessions)),
		}
		if m.seconds > 0 {
			entry.CardsPerMinute = round2(float64(m.cards) / (float64(m.seconds) / 60))
		}
		entry.Score = round2(entry.AverageAccuracy * entry.CardsPerMinute)
		results = append(results, entry)
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Mode < results[j].Mode
	})
	return results, nil
}

// dailyStreak counts consecutive calendar days with at least one session,
// walking back from today. A day without study ends the streak, except that
// a quiet today does not break a streak that ran through yesterday.
func dailyStreak(sessions []*domain.StudySession, now time.Time) int {
	days := make(map[string]struct{}, len(sessions))
	for _, session := range sessions {
		days[session.StartedAt.UTC().Format("2006-01-02")] = struct{}{}
	}
	if len(days) == 0 {
		return 0
	}

	day := now.UTC()
	if _, ok := days[day.Format("2006-01-02")]; !ok {
		day = day.AddDate(0, 0, -1)
	}

	streak := 0
	for {
		if _, ok := days[day.Format("2006-01-02")]; !ok {
			break
		}
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}

// preferredMode returns the mode with the most sessions, ties broken by
// mode name so the result is deterministic. Empty input yields the zero mode.
func preferredMode(counts map[domain.StudyMode]int) domain.StudyMode {
	var best domain.StudyMode
	bestCount := 0
	for mode, count := range counts {
		if count > bestCount || (count == bestCount && mode < best) {
			best = mode
			bestCount = count
		}
	}
	return best
}

// topDeck returns the most-used deck and false when no sessions exist.
func topDeck(counts map[uuid.UUID]int) (uuid.UUID, bool) {
	var best uuid.UUID
	bestCount := 0
	for deckID, count := range counts {
		if count > bestCount || (count == bestCount && deckID.String() < best.String()) {
			best = deckID
			bestCount = count
		}
	}
	return best, bestCount > 0
}

func addToBucket(bucket *RetentionBucket, retained bool) {
	bucket.CardCount++
	if retained {
		bucket.RetainedCount++
	}
}

func finishBucket(bucket *RetentionBucket) {
	if bucket.CardCount > 0 {
		bucket.Rate = round2(float64(bucket.RetainedCount) / float64(bucket.CardCount) * 100)
	}
}
