// Package study implements the study-session core: card selection, the
// session state machine, and transactional answer processing against the
// SM-2 scheduler.
package study

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/davrell/mnemo-api/internal/domain"
	"github.com/davrell/mnemo-api/internal/domain/srs"
	"github.com/davrell/mnemo-api/internal/platform/logger"
	"github.com/davrell/mnemo-api/internal/store"
)

// Config holds the study service tunables.
type Config struct {
	// DefaultBreakIntervalMinutes is used for break reminders when a
	// session does not specify its own interval.
	DefaultBreakIntervalMinutes int
}

// Service owns the study-session lifecycle. All session mutation flows
// through here; the only state it keeps is its dependencies.
type Service struct {
	sessions  store.StudySessionStore
	progress  store.CardProgressStore
	selector  *CardSelector
	scheduler srs.Scheduler
	tx        store.TxRunner
	cfg       Config
	logger    *slog.Logger
}

// NewService creates the study service.
func NewService(
	sessions store.StudySessionStore,
	progress store.CardProgressStore,
	selector *CardSelector,
	scheduler srs.Scheduler,
	tx store.TxRunner,
	cfg Config,
	log *slog.Logger,
) *Service {
	if sessions == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("sessions store cannot be nil")
	}
	if progress == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("progress store cannot be nil")
	}
	if selector == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("selector cannot be nil")
	}
	if scheduler == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("scheduler cannot be nil")
	}
	if tx == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("tx runner cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &Service{
		sessions:  sessions,
		progress:  progress,
		selector:  selector,
		scheduler: scheduler,
		tx:        tx,
		cfg:       cfg,
		logger:    log.With(slog.String("component", "study_service")),
	}
}

// StartSessionRequest carries the parameters for a new session.
type StartSessionRequest struct {
	DeckID                uuid.UUID
	LessonID              *uuid.UUID
	Mode                  domain.StudyMode
	TargetCards           int
	TargetTimeMinutes     int
	BreakRemindersEnabled bool
	BreakIntervalMinutes  int
}

// StartSession builds the card queue for the requested mode and creates an
// ACTIVE session over it. An empty queue fails with ErrNoCardsAvailable.
func (s *Service) StartSession(
	ctx context.Context,
	learnerID uuid.UUID,
	req StartSessionRequest,
) (*domain.StudySession, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !req.Mode.IsValid() {
		return nil, fmt.Errorf("%w: %v", ErrValidation, domain.ErrInvalidStudyMode)
	}
	if req.TargetCards < 0 || req.TargetTimeMinutes < 0 {
		return nil, fmt.Errorf("%w: negative session goal", ErrValidation)
	}

	cards, err := s.selector.SelectCards(
		ctx,
		learnerID,
		req.DeckID,
		req.Mode,
		req.LessonID,
		req.TargetCards,
	)
	if err != nil {
		return nil, err
	}
	if len(cards) == 0 {
		log.Debug("no cards for session",
			slog.String("deck_id", req.DeckID.String()),
			slog.String("mode", string(req.Mode)))
		return nil, ErrNoCardsAvailable
	}

	session, err := domain.NewStudySession(learnerID, req.DeckID, req.LessonID, req.Mode, cards)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	session.TargetCards = req.TargetCards
	session.TargetTimeMinutes = req.TargetTimeMinutes
	session.BreakRemindersEnabled = req.BreakRemindersEnabled
	session.BreakIntervalMinutes = req.BreakIntervalMinutes
	if session.BreakRemindersEnabled {
		if session.BreakIntervalMinutes <= 0 {
			session.BreakIntervalMinutes = s.cfg.DefaultBreakIntervalMinutes
		}
		reminder := session.StartedAt.Add(time.Duration(session.BreakIntervalMinutes) * time.Minute)
		session.NextBreakReminder = &reminder
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	log.Info("study session started",
		slog.String("session_id", session.ID.String()),
		slog.String("learner_id", learnerID.String()),
		slog.String("mode", string(req.Mode)),
		slog.Int("cards_scheduled", len(cards)))
	return session, nil
}

// GetSession retrieves a session, enforcing ownership.
func (s *Service) GetSession(
	ctx context.Context,
	sessionID, learnerID uuid.UUID,
) (*domain.StudySession, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session.LearnerID != learnerID {
		return nil, ErrSessionNotOwned
	}
	return session, nil
}

// ListActiveSessions returns the learner's ACTIVE and BREAK sessions.
func (s *Service) ListActiveSessions(
	ctx context.Context,
	learnerID uuid.UUID,
) ([]*domain.StudySession, error) {
	sessions, err := s.sessions.ListActive(ctx, learnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list active sessions: %w", err)
	}
	return sessions, nil
}

// BreakResult reports the outcome of a break transition.
type BreakResult struct {
	Session    *domain.StudySession
	StartedAt  time.Time
	ResumeAt   time.Time
	BreakCount int
}

// TakeBreak transitions an ACTIVE session to BREAK. Breaks are reversible:
// they pause the session without resetting any progress.
func (s *Service) TakeBreak(
	ctx context.Context,
	sessionID, learnerID uuid.UUID,
	durationMinutes int,
) (*BreakResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if durationMinutes <= 0 {
		return nil, fmt.Errorf("%w: break duration must be positive", ErrValidation)
	}

	session, err := s.GetSession(ctx, sessionID, learnerID)
	if err != nil {
		return nil, err
	}
	if session.IsTerminal() {
		return nil, ErrSessionClosed
	}
	if session.Status != domain.SessionStatusActive {
		return nil, fmt.Errorf("%w: breaks start from an active session", ErrValidation)
	}

	now := time.Now().UTC()
	resumeAt := now.Add(time.Duration(durationMinutes) * time.Minute)

	session.Status = domain.SessionStatusBreak
	session.BreakStartedAt = &now
	session.Progress.BreakCount++
	session.LastActivityAt = now
	if session.BreakRemindersEnabled {
		reminder := resumeAt.Add(time.Duration(session.BreakIntervalMinutes) * time.Minute)
		session.NextBreakReminder = &reminder
	}

	if err := s.sessions.Update(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to update session: %w", err)
	}

	log.Info("break started",
		slog.String("session_id", session.ID.String()),
		slog.Int("break_count", session.Progress.BreakCount),
		slog.Int("duration_minutes", durationMinutes))
	return &BreakResult{
		Session:    session,
		StartedAt:  now,
		ResumeAt:   resumeAt,
		BreakCount: session.Progress.BreakCount,
	}, nil
}

// Resume transitions a BREAK session back to ACTIVE.
func (s *Service) Resume(
	ctx context.Context,
	sessionID, learnerID uuid.UUID,
) (*domain.StudySession, error) {
	session, err := s.GetSession(ctx, sessionID, learnerID)
	if err != nil {
		return nil, err
	}
	if session.IsTerminal() {
		return nil, ErrSessionClosed
	}
	if session.Status != domain.SessionStatusBreak {
		return nil, ErrNotOnBreak
	}

	resumeFromBreak(session, time.Now().UTC())

	if err := s.sessions.Update(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to update session: %w", err)
	}
	return session, nil
}

// CompletionSummary is the final statistics block of a completed session.
type CompletionSummary struct {
	Session             *domain.StudySession
	CompletionType      string
	TotalTimeSeconds    int
	CardsStudied        int
	CorrectAnswers      int
	IncorrectAnswers    int
	AccuracyRate        float64
	AverageResponseTime float64
	BestStreak          int
	BreakCount          int
	GoalsAchieved       []string
	PerformanceRating   string
	RecommendedMode     domain.StudyMode
	CardsDueTomorrow    int
}

// CompleteSession finalizes a session from ACTIVE or BREAK, computing its
// statistics, a performance rating and a recommended next mode.
func (s *Service) CompleteSession(
	ctx context.Context,
	sessionID, learnerID uuid.UUID,
	completionType string,
) (*CompletionSummary, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if completionType == "" {
		completionType = domain.CompletionTypeManual
	}

	session, err := s.GetSession(ctx, sessionID, learnerID)
	if err != nil {
		return nil, err
	}
	if session.IsTerminal() {
		return nil, ErrSessionClosed
	}

	now := time.Now().UTC()
	finalizeSession(session, completionType, now)

	if err := s.sessions.Update(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to update session: %w", err)
	}

	// Due-count lookup is best-effort reporting; a failure here must not
	// undo the completed session.
	tomorrow := now.AddDate(0, 0, 1)
	dueTomorrow, err := s.progress.CountDue(ctx, learnerID, tomorrow)
	if err != nil {
		log.Warn("failed to count due cards",
			slog.String("error", err.Error()),
			slog.String("learner_id", learnerID.String()))
		dueTomorrow = 0
	}

	log.Info("study session completed",
		slog.String("session_id", session.ID.String()),
		slog.String("completion_type", completionType),
		slog.Float64("accuracy_rate", session.Progress.AccuracyRate),
		slog.String("performance_rating", session.PerformanceRating))

	return &CompletionSummary{
		Session:             session,
		CompletionType:      completionType,
		TotalTimeSeconds:    session.Progress.TotalTimeSeconds,
		CardsStudied:        session.Progress.CardsStudied,
		CorrectAnswers:      session.Progress.CorrectAnswers,
		IncorrectAnswers:    session.Progress.IncorrectAnswers,
		AccuracyRate:        session.Progress.AccuracyRate,
		AverageResponseTime: session.Progress.AverageResponseTime,
		BestStreak:          session.Progress.BestStreak,
		BreakCount:          session.Progress.BreakCount,
		GoalsAchieved:       goalsAchieved(session),
		PerformanceRating:   session.PerformanceRating,
		RecommendedMode:     session.RecommendedMode,
		CardsDueTomorrow:    dueTomorrow,
	}, nil
}

// AbandonSession marks a session ABANDONED, preserving recorded answers.
// Abandoning an already-abandoned session is an idempotent no-op; abandoning
// a completed session fails with ErrSessionClosed.
func (s *Service) AbandonSession(
	ctx context.Context,
	sessionID, learnerID uuid.UUID,
) (*domain.StudySession, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	session, err := s.GetSession(ctx, sessionID, learnerID)
	if err != nil {
		return nil, err
	}
	switch session.Status {
	case domain.SessionStatusAbandoned:
		return session, nil
	case domain.SessionStatusCompleted:
		return nil, ErrSessionClosed
	}

	now := time.Now().UTC()
	session.Status = domain.SessionStatusAbandoned
	session.LastActivityAt = now

	if err := s.sessions.Update(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to update session: %w", err)
	}

	log.Info("study session abandoned",
		slog.String("session_id", session.ID.String()),
		slog.Int("answers_recorded", len(session.Answers)))
	return session, nil
}

// resumeFromBreak flips BREAK back to ACTIVE and clears break bookkeeping.
func resumeFromBreak(session *domain.StudySession, now time.Time) {
	session.Status = domain.SessionStatusActive
	session.BreakStartedAt = nil
	session.LastActivityAt = now
}

// finalizeSession moves a session to COMPLETED and derives its terminal
// statistics from the answer log.
func finalizeSession(session *domain.StudySession, completionType string, now time.Time) {
	session.Status = domain.SessionStatusCompleted
	session.CompletionType = completionType
	session.CompletedAt = &now
	session.LastActivityAt = now
	session.NextBreakReminder = nil
	session.BreakStartedAt = nil

	session.Progress.TotalTimeSeconds = int(now.Sub(session.StartedAt).Seconds())
	session.Progress.BestStreak = bestStreak(session.Answers)
	session.PerformanceRating = performanceRating(session.Progress.AccuracyRate)
	session.RecommendedMode = recommendMode(session.Progress.AccuracyRate)
}

// bestStreak returns the longest run of correct answers in the log.
func bestStreak(answers []domain.SessionAnswer) int {
	best, current := 0, 0
	for _, answer := range answers {
		if answer.WasCorrect {
			current++
			if current > best {
				best = current
			}
		} else {
			current = 0
		}
	}
	return best
}

// performanceRating buckets session accuracy: excellent >= 90, good >= 80,
// fair >= 60, else poor.
func performanceRating(accuracy float64) string {
	switch {
	case accuracy >= 90:
		return "excellent"
	case accuracy >= 80:
		return "good"
	case accuracy >= 60:
		return "fair"
	default:
		return "poor"
	}
}

// recommendMode suggests the next study mode from session accuracy.
func recommendMode(accuracy float64) domain.StudyMode {
	switch {
	case accuracy < 60:
		return domain.StudyModeLearn
	case accuracy < 80:
		return domain.StudyModePractice
	case accuracy >= 90:
		return domain.StudyModeCram
	default:
		return domain.StudyModeReview
	}
}

// goalsAchieved lists which of the session's goals were met.
func goalsAchieved(session *domain.StudySession) []string {
	var goals []string
	if session.TargetCards > 0 && session.Progress.CardsStudied >= session.TargetCards {
		goals = append(goals, "target_cards")
	}
	if session.TargetTimeMinutes > 0 &&
		session.Progress.TotalTimeSeconds >= session.TargetTimeMinutes*60 {
		goals = append(goals, "target_time")
	}
	if session.Progress.AccuracyRate >= 80 {
		goals = append(goals, "high_accuracy")
	}
	if session.Progress.BestStreak >= 5 {
		goals = append(goals, "streak_master")
	}
	return goals
}

// sessionStoreIn returns the session store bound to tx, or the plain store
// when tx is nil (as with fake runners in tests).
func (s *Service) sessionStoreIn(tx *sql.Tx) store.StudySessionStore {
	if tx == nil {
		return s.sessions
	}
	return s.sessions.WithTx(tx)
}

func (s *Service) progressStoreIn(tx *sql.Tx) store.CardProgressStore {
	if tx == nil {
		return s.progress
	}
	return s.progress.WithTx(tx)
}
