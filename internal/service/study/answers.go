package study

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/davrell/mnemo-api/internal/domain"
	"github.com/davrell/mnemo-api/internal/platform/logger"
	"github.com/davrell/mnemo-api/internal/store"
)

// Quality ratings of 3 and above count as correct, matching the SM-2
// success threshold.
const correctQualityThreshold = 3

// Streak lengths that earn a milestone signal.
var streakMilestones = []int{5, 10, 20, 50}

// rollingAccuracyWindow is how many recent answers feed the accuracy
// milestone check.
const rollingAccuracyWindow = 10

// AnswerRequest carries one answer submission.
type AnswerRequest struct {
	CardID       uuid.UUID
	Quality      int
	ResponseTime float64 // seconds
	AnswerText   string
}

// AnswerResult reports the session state after a processed answer, plus any
// milestone signals it triggered.
type AnswerResult struct {
	Session              *domain.StudySession
	WasCorrect           bool
	StreakCount          int
	StreakMilestone      string
	AccuracyMilestone    string
	SessionCompleted     bool
	NextCardID           *uuid.UUID
	CardsRemaining       int
	CompletionPercentage float64
	Progress             *domain.CardProgress
}

// SubmitAnswer records one answer against the session's current card and
// reschedules the card under SM-2. The session row is locked, the cursor is
// checked against the submitted card, and the progress upsert plus session
// update commit atomically; any failure leaves both untouched. A session on
// break resumes implicitly.
func (s *Service) SubmitAnswer(
	ctx context.Context,
	sessionID, learnerID uuid.UUID,
	req AnswerRequest,
) (*AnswerResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if req.Quality < 0 || req.Quality > 5 {
		return nil, fmt.Errorf("%w: %v", ErrValidation, domain.ErrInvalidQuality)
	}
	if req.ResponseTime <= 0 {
		return nil, fmt.Errorf("%w: %v", ErrValidation, domain.ErrInvalidResponseTime)
	}

	now := time.Now().UTC()
	var result *AnswerResult

	err := s.tx.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		sessions := s.sessionStoreIn(tx)
		progresses := s.progressStoreIn(tx)

		session, err := sessions.GetForUpdate(ctx, sessionID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrSessionNotFound
			}
			return fmt.Errorf("failed to lock session: %w", err)
		}
		if session.LearnerID != learnerID {
			return ErrSessionNotOwned
		}
		if session.IsTerminal() {
			return ErrSessionClosed
		}
		if session.Status == domain.SessionStatusBreak {
			resumeFromBreak(session, now)
		}

		currentCard, ok := session.CurrentCardID()
		if !ok {
			// Cursor past the end of a still-open session should not
			// happen; treat it as a stale submission.
			return ErrCardMismatch
		}
		if currentCard != req.CardID {
			return ErrCardMismatch
		}

		progress, err := progresses.GetForUpdate(ctx, learnerID, req.CardID)
		if err != nil {
			if !errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("failed to lock card progress: %w", err)
			}
			progress, err = domain.NewCardProgress(learnerID, req.CardID)
			if err != nil {
				return fmt.Errorf("failed to initialize card progress: %w", err)
			}
		}

		next, err := s.scheduler.NextProgress(progress, req.Quality, req.ResponseTime, now)
		if err != nil {
			return fmt.Errorf("failed to schedule card: %w", err)
		}
		if err := progresses.Upsert(ctx, next); err != nil {
			return fmt.Errorf("failed to save card progress: %w", err)
		}

		wasCorrect := req.Quality >= correctQualityThreshold
		session.Answers = append(session.Answers, domain.SessionAnswer{
			CardID:       req.CardID,
			Quality:      req.Quality,
			ResponseTime: req.ResponseTime,
			WasCorrect:   wasCorrect,
			AnswerText:   req.AnswerText,
			Timestamp:    now,
		})
		applyAnswerToProgress(&session.Progress, wasCorrect, req.ResponseTime)
		session.CurrentCardIndex++
		session.LastActivityAt = now

		completed := session.CurrentCardIndex >= len(session.CardsScheduled)
		if completed {
			finalizeSession(session, domain.CompletionTypeExhausted, now)
		}

		if err := sessions.Update(ctx, session); err != nil {
			return fmt.Errorf("failed to update session: %w", err)
		}

		result = &AnswerResult{
			Session:              session,
			WasCorrect:           wasCorrect,
			StreakCount:          session.Progress.CurrentStreak,
			StreakMilestone:      streakMilestone(session.Progress.CurrentStreak),
			AccuracyMilestone:    accuracyMilestone(session.Answers),
			SessionCompleted:     completed,
			CardsRemaining:       session.CardsRemaining(),
			CompletionPercentage: session.CompletionPercentage(),
			Progress:             next,
		}
		if nextCard, ok := session.CurrentCardID(); ok {
			result.NextCardID = &nextCard
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Debug("answer processed",
		slog.String("session_id", sessionID.String()),
		slog.String("card_id", req.CardID.String()),
		slog.Int("quality", req.Quality),
		slog.Bool("was_correct", result.WasCorrect),
		slog.Bool("session_completed", result.SessionCompleted))
	return result, nil
}

// applyAnswerToProgress folds one answer into the running counters.
func applyAnswerToProgress(p *domain.SessionProgress, wasCorrect bool, responseTime float64) {
	prevTotal := float64(p.CardsStudied)

	p.CardsStudied++
	if wasCorrect {
		p.CorrectAnswers++
		p.CurrentStreak++
		if p.CurrentStreak > p.BestStreak {
			p.BestStreak = p.CurrentStreak
		}
	} else {
		p.IncorrectAnswers++
		p.CurrentStreak = 0
	}

	p.AccuracyRate = float64(p.CorrectAnswers) / float64(p.CardsStudied) * 100
	p.AverageResponseTime = (p.AverageResponseTime*prevTotal + responseTime) / float64(p.CardsStudied)
}

// streakMilestone returns the milestone name when the streak just hit one of
// the celebrated lengths, or empty.
func streakMilestone(streak int) string {
	for _, m := range streakMilestones {
		if streak == m {
			return fmt.Sprintf("streak_%d", m)
		}
	}
	return ""
}

// accuracyMilestone grades the rolling window of recent answers. It only
// fires once the window is full, so early sessions are not over-praised.
func accuracyMilestone(answers []domain.SessionAnswer) string {
	if len(answers) < rollingAccuracyWindow {
		return ""
	}

	recent := answers[len(answers)-rollingAccuracyWindow:]
	correct := 0
	for _, a := range recent {
		if a.WasCorrect {
			correct++
		}
	}
	accuracy := math.Round(float64(correct) / float64(rollingAccuracyWindow) * 100)

	switch {
	case accuracy >= 90:
		return "excellent_accuracy"
	case accuracy >= 80:
		return "good_accuracy"
	case accuracy >= 70:
		return "fair_accuracy"
	default:
		return ""
	}
}
