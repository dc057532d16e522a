// Package srs implements the SM-2 spaced-repetition scheduling algorithm.
// Everything in this package is pure: the scheduler performs no I/O, takes
// the clock as an argument and returns new values instead of mutating its
// inputs, so every branch is independently unit-testable.
package srs

import (
	"math"
	"time"

	"github.com/davrell/mnemo-api/internal/domain"
)

// Result is the scheduling state produced by one application of the SM-2
// formula.
type Result struct {
	EaseFactor  float64
	Interval    int // days
	Repetitions int
	NextReview  time.Time
}

// Scheduler computes the next review schedule for a card from a quality
// rating and the card's prior scheduling state.
type Scheduler interface {
	// Schedule applies SM-2 to one review. quality must be in [0,5];
	// priorEaseFactor and priorInterval must satisfy the domain invariants
	// (>= 1.3 and >= 1; use the defaults for a new card). nextReview is
	// computed as now + interval days.
	Schedule(
		quality int,
		priorEaseFactor float64,
		priorInterval int,
		priorRepetitions int,
		now time.Time,
	) (Result, error)

	// NextProgress applies SM-2 to a card progress record and returns a new
	// record with the updated schedule, the answer appended to the quality
	// history and the study counters advanced. The input is not modified.
	NextProgress(
		progress *domain.CardProgress,
		quality int,
		responseTime float64,
		now time.Time,
	) (*domain.CardProgress, error)
}

type scheduler struct {
	params Params
}

// NewScheduler creates a Scheduler with the given parameters.
func NewScheduler(params Params) Scheduler {
	return &scheduler{params: params}
}

// NewDefaultScheduler creates a Scheduler with the canonical SM-2 parameters.
func NewDefaultScheduler() Scheduler {
	return NewScheduler(NewDefaultParams())
}

func (s *scheduler) Schedule(
	quality int,
	priorEaseFactor float64,
	priorInterval int,
	priorRepetitions int,
	now time.Time,
) (Result, error) {
	if quality < 0 || quality > 5 {
		return Result{}, domain.ErrInvalidQuality
	}
	if priorEaseFactor < s.params.MinEaseFactor {
		return Result{}, domain.ErrInvalidEaseFactor
	}
	if priorInterval < s.params.MinIntervalDays {
		return Result{}, domain.ErrInvalidInterval
	}
	if priorRepetitions < 0 {
		return Result{}, domain.ErrInvalidRepetitions
	}

	var (
		easeFactor  float64
		interval    int
		repetitions int
	)

	if quality < 3 {
		// Lapse: restart the repetition ladder and penalize the ease factor.
		repetitions = 0
		interval = s.params.MinIntervalDays
		easeFactor = priorEaseFactor - s.params.LapseEasePenalty
	} else {
		repetitions = priorRepetitions + 1
		switch repetitions {
		case 1:
			interval = s.params.FirstIntervalDays
		case 2:
			interval = s.params.SecondIntervalDays
		default:
			// The interval grows from the prior interval and prior ease
			// factor; the new ease factor only affects future reviews.
			interval = int(math.Round(float64(priorInterval) * priorEaseFactor))
		}
		easeFactor = nextEaseFactor(priorEaseFactor, quality)
	}

	if easeFactor < s.params.MinEaseFactor {
		easeFactor = s.params.MinEaseFactor
	}
	if interval < s.params.MinIntervalDays {
		interval = s.params.MinIntervalDays
	}

	return Result{
		EaseFactor:  roundTo(easeFactor, 2),
		Interval:    interval,
		Repetitions: repetitions,
		NextReview:  now.AddDate(0, 0, interval),
	}, nil
}

func (s *scheduler) NextProgress(
	progress *domain.CardProgress,
	quality int,
	responseTime float64,
	now time.Time,
) (*domain.CardProgress, error) {
	if responseTime <= 0 {
		return nil, domain.ErrInvalidResponseTime
	}

	result, err := s.Schedule(
		quality,
		progress.EaseFactor,
		progress.Interval,
		progress.Repetitions,
		now,
	)
	if err != nil {
		return nil, err
	}

	next := *progress
	next.QualityHistory = make([]domain.QualityRecord, len(progress.QualityHistory), len(progress.QualityHistory)+1)
	copy(next.QualityHistory, progress.QualityHistory)

	next.EaseFactor = result.EaseFactor
	next.Interval = result.Interval
	next.Repetitions = result.Repetitions
	next.NextReview = result.NextReview
	next.LastQuality = quality
	next.TimesStudied++
	next.LastStudiedAt = now
	if next.FirstStudiedAt.IsZero() {
		next.FirstStudiedAt = now
	}
	next.QualityHistory = append(next.QualityHistory, domain.QualityRecord{
		Quality:      quality,
		Timestamp:    now,
		ResponseTime: responseTime,
		EaseFactor:   result.EaseFactor,
		Interval:     result.Interval,
		Repetitions:  result.Repetitions,
	})
	next.UpdatedAt = now

	return &next, nil
}

// nextEaseFactor applies the SM-2 ease factor formula
// EF' = EF + (0.1 - (5-q)*(0.08 + (5-q)*0.02)) for a successful review.
func nextEaseFactor(current float64, quality int) float64 {
	q := float64(quality)
	return current + (0.1 - (5-q)*(0.08+(5-q)*0.02))
}

func roundTo(v float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(v*factor) / factor
}
