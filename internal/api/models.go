package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/davrell/mnemo-api/internal/domain"
	"github.com/davrell/mnemo-api/internal/service/study"
)

// RegisterRequest is the payload for user registration.
type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=12,max=72"`
}

// LoginRequest is the payload for user login.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse is the response for successful registration or login.
type AuthResponse struct {
	UserID uuid.UUID `json:"user_id"`
	Token  string    `json:"token"`
}

// StartSessionRequest is the payload for starting a study session.
type StartSessionRequest struct {
	DeckID                uuid.UUID  `json:"deck_id"                 validate:"required"`
	LessonID              *uuid.UUID `json:"lesson_id,omitempty"`
	Mode                  string     `json:"mode"                    validate:"required,oneof=review practice cram test learn"`
	TargetCards           int        `json:"target_cards"            validate:"gte=0"`
	TargetTimeMinutes     int        `json:"target_time_minutes"     validate:"gte=0"`
	BreakRemindersEnabled bool       `json:"break_reminders_enabled"`
	BreakIntervalMinutes  int        `json:"break_interval_minutes"  validate:"gte=0"`
}

// SubmitAnswerRequest is the payload for answering the current card.
type SubmitAnswerRequest struct {
	CardID       uuid.UUID `json:"card_id"       validate:"required"`
	Quality      int       `json:"quality"       validate:"gte=0,lte=5"`
	ResponseTime float64   `json:"response_time" validate:"gt=0"`
	AnswerText   string    `json:"answer_text,omitempty"`
}

// BreakRequest is the payload for starting a break.
type BreakRequest struct {
	DurationMinutes int `json:"duration_minutes" validate:"required,gt=0"`
}

// CompleteSessionRequest is the payload for completing a session.
type CompleteSessionRequest struct {
	CompletionType string `json:"completion_type,omitempty" validate:"omitempty,oneof=manual goal all_cards"`
}

// SessionResponse is the wire representation of a study session. The card
// queue itself is not exposed; clients see only the current card and counts.
type SessionResponse struct {
	ID                   uuid.UUID              `json:"id"`
	DeckID               uuid.UUID              `json:"deck_id"`
	LessonID             *uuid.UUID             `json:"lesson_id,omitempty"`
	Mode                 domain.StudyMode       `json:"mode"`
	Status               domain.SessionStatus   `json:"status"`
	CurrentCardID        *uuid.UUID             `json:"current_card_id,omitempty"`
	CardsTotal           int                    `json:"cards_total"`
	CardsRemaining       int                    `json:"cards_remaining"`
	CompletionPercentage float64                `json:"completion_percentage"`
	TargetCards          int                    `json:"target_cards,omitempty"`
	TargetTimeMinutes    int                    `json:"target_time_minutes,omitempty"`
	Progress             domain.SessionProgress `json:"progress"`
	CompletionType       string                 `json:"completion_type,omitempty"`
	PerformanceRating    string                 `json:"performance_rating,omitempty"`
	RecommendedMode      domain.StudyMode       `json:"recommended_mode,omitempty"`
	StartedAt            time.Time              `json:"started_at"`
	LastActivityAt       time.Time              `json:"last_activity_at"`
	CompletedAt          *time.Time             `json:"completed_at,omitempty"`
}

// NewSessionResponse converts a domain session to its wire form.
func NewSessionResponse(session *domain.StudySession) SessionResponse {
	resp := SessionResponse{
		ID:                   session.ID,
		DeckID:               session.DeckID,
		LessonID:             session.LessonID,
		Mode:                 session.Mode,
		Status:               session.Status,
		CardsTotal:           len(session.CardsScheduled),
		CardsRemaining:       session.CardsRemaining(),
		CompletionPercentage: session.CompletionPercentage(),
		TargetCards:          session.TargetCards,
		TargetTimeMinutes:    session.TargetTimeMinutes,
		Progress:             session.Progress,
		CompletionType:       session.CompletionType,
		PerformanceRating:    session.PerformanceRating,
		RecommendedMode:      session.RecommendedMode,
		StartedAt:            session.StartedAt,
		LastActivityAt:       session.LastActivityAt,
		CompletedAt:          session.CompletedAt,
	}
	if !session.IsTerminal() {
		if cardID, ok := session.CurrentCardID(); ok {
			resp.CurrentCardID = &cardID
		}
	}
	return resp
}

// AnswerResponse is the response after processing an answer.
type AnswerResponse struct {
	WasCorrect           bool       `json:"was_correct"`
	StreakCount          int        `json:"streak_count"`
	StreakMilestone      string     `json:"streak_milestone,omitempty"`
	AccuracyMilestone    string     `json:"accuracy_milestone,omitempty"`
	SessionCompleted     bool       `json:"session_completed"`
	NextCardID           *uuid.UUID `json:"next_card_id,omitempty"`
	CardsRemaining       int        `json:"cards_remaining"`
	CompletionPercentage float64    `json:"completion_percentage"`
	NextReview           time.Time  `json:"next_review"`
	IntervalDays         int        `json:"interval_days"`
	EaseFactor           float64    `json:"ease_factor"`
}

// NewAnswerResponse converts an answer result to its wire form.
func NewAnswerResponse(result *study.AnswerResult) AnswerResponse {
	resp := AnswerResponse{
		WasCorrect:           result.WasCorrect,
		StreakCount:          result.StreakCount,
		StreakMilestone:      result.StreakMilestone,
		AccuracyMilestone:    result.AccuracyMilestone,
		SessionCompleted:     result.SessionCompleted,
		NextCardID:           result.NextCardID,
		CardsRemaining:       result.CardsRemaining,
		CompletionPercentage: result.CompletionPercentage,
	}
	if result.Progress != nil {
		resp.NextReview = result.Progress.NextReview
		resp.IntervalDays = result.Progress.Interval
		resp.EaseFactor = result.Progress.EaseFactor
	}
	return resp
}

// BreakResponse is the response after starting a break.
type BreakResponse struct {
	Session    SessionResponse `json:"session"`
	StartedAt  time.Time       `json:"started_at"`
	ResumeAt   time.Time       `json:"resume_at"`
	BreakCount int             `json:"break_count"`
}

// CompletionResponse is the final summary of a completed session.
type CompletionResponse struct {
	Session             SessionResponse  `json:"session"`
	CompletionType      string           `json:"completion_type"`
	TotalTimeSeconds    int              `json:"total_time_seconds"`
	CardsStudied        int              `json:"cards_studied"`
	CorrectAnswers      int              `json:"correct_answers"`
	IncorrectAnswers    int              `json:"incorrect_answers"`
	AccuracyRate        float64          `json:"accuracy_rate"`
	AverageResponseTime float64          `json:"average_response_time"`
	BestStreak          int              `json:"best_streak"`
	BreakCount          int              `json:"break_count"`
	GoalsAchieved       []string         `json:"goals_achieved"`
	PerformanceRating   string           `json:"performance_rating"`
	RecommendedMode     domain.StudyMode `json:"recommended_mode"`
	CardsDueTomorrow    int              `json:"cards_due_tomorrow"`
}

// NewCompletionResponse converts a completion summary to its wire form.
func NewCompletionResponse(summary *study.CompletionSummary) CompletionResponse {
	goals := summary.GoalsAchieved
	if goals == nil {
		goals = []string{}
	}
	return CompletionResponse{
		Session:             NewSessionResponse(summary.Session),
		CompletionType:      summary.CompletionType,
		TotalTimeSeconds:    summary.TotalTimeSeconds,
		CardsStudied:        summary.CardsStudied,
		CorrectAnswers:      summary.CorrectAnswers,
		IncorrectAnswers:    summary.IncorrectAnswers,
		AccuracyRate:        summary.AccuracyRate,
		AverageResponseTime: summary.AverageResponseTime,
		BestStreak:          summary.BestStreak,
		BreakCount:          summary.BreakCount,
		GoalsAchieved:       goals,
		PerformanceRating:   summary.PerformanceRating,
		RecommendedMode:     summary.RecommendedMode,
		CardsDueTomorrow:    summary.CardsDueTomorrow,
	}
}
