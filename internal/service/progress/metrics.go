// Package progress computes study metrics: live in-session snapshots and
// historical analytics over sessions and card scheduling state.
package progress

import (
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/davrell/mnemo-api/internal/domain"
)

// recentQualityWindow is how many trailing answers feed the recent-quality
// average.
const recentQualityWindow = 5

// SessionSnapshot is a point-in-time view of a running (or finished)
// session. All values derive from the session itself; nothing is persisted.
type SessionSnapshot struct {
	SessionID uuid.UUID            `json:"session_id"`
	Status    domain.SessionStatus `json:"status"`
	Mode      domain.StudyMode     `json:"mode"`

	CardsCompleted       int     `json:"cards_completed"`
	CardsRemaining       int     `json:"cards_remaining"`
	CardsTotal           int     `json:"cards_total"`
	CompletionPercentage float64 `json:"completion_percentage"`

	CorrectAnswers   int     `json:"correct_answers"`
	IncorrectAnswers int     `json:"incorrect_answers"`
	AccuracyRate     float64 `json:"accuracy_rate"` // percent

	CurrentStreak int `json:"current_streak"`
	BestStreak    int `json:"best_streak"`

	TimeElapsedSeconds   int     `json:"time_elapsed_seconds"`
	AverageResponseTime  float64 `json:"average_response_time"` // seconds
	AverageRecentQuality float64 `json:"average_recent_quality"`
	LearningVelocity     float64 `json:"learning_velocity"` // cards per minute
}

// Snapshot computes the live metrics of a session at the given time. It is a
// pure function of the session's answer log, so it works equally on active,
// paused and finished sessions.
func Snapshot(session *domain.StudySession, now time.Time) *SessionSnapshot {
	snap := &SessionSnapshot{
		SessionID:            session.ID,
		Status:               session.Status,
		Mode:                 session.Mode,
		CardsCompleted:       session.CurrentCardIndex,
		CardsRemaining:       session.CardsRemaining(),
		CardsTotal:           len(session.CardsScheduled),
		CompletionPercentage: session.CompletionPercentage(),
		CurrentStreak:        tailStreak(session.Answers),
	}

	elapsed := now.Sub(session.StartedAt)
	if session.CompletedAt != nil {
		elapsed = session.CompletedAt.Sub(session.StartedAt)
	}
	if elapsed < 0 {
		elapsed = 0
	}
	snap.TimeElapsedSeconds = int(elapsed.Seconds())

	var totalResponse, totalQuality float64
	for _, answer := range session.Answers {
		if answer.WasCorrect {
			snap.CorrectAnswers++
		} else {
			snap.IncorrectAnswers++
		}
		totalResponse += answer.ResponseTime
	}

	answered := len(session.Answers)
	if answered > 0 {
		snap.AccuracyRate = round2(float64(snap.CorrectAnswers) / float64(answered) * 100)
		snap.AverageResponseTime = round2(totalResponse / float64(answered))
	}

	recent := session.Answers
	if len(recent) > recentQualityWindow {
		recent = recent[len(recent)-recentQualityWindow:]
	}
	for _, answer := range recent {
		totalQuality += float64(answer.Quality)
	}
	if len(recent) > 0 {
		snap.AverageRecentQuality = round2(totalQuality / float64(len(recent)))
	}

	snap.BestStreak = maxStreak(session.Answers)
	if minutes := elapsed.Minutes(); minutes > 0 && answered > 0 {
		snap.LearningVelocity = round2(float64(answered) / minutes)
	}

	return snap
}

// tailStreak counts the consecutive correct answers at the end of the log.
func tailStreak(answers []domain.SessionAnswer) int {
	streak := 0
	for i := len(answers) - 1; i >= 0; i-- {
		if !answers[i].WasCorrect {
			break
		}
		streak++
	}
	return streak
}

// maxStreak returns the longest run of correct answers anywhere in the log.
func maxStreak(answers []domain.SessionAnswer) int {
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

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
