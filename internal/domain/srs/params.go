package srs

// Params defines the tunable constants of the SM-2 scheduler. The defaults
// are the canonical SuperMemo-2 values; overriding them is only expected in
// tests and experiments.
type Params struct {
	// InitialEaseFactor is assigned to cards that have never been studied.
	InitialEaseFactor float64

	// MinEaseFactor is the floor below which an ease factor never drops.
	MinEaseFactor float64

	// LapseEasePenalty is subtracted from the ease factor on poor recall
	// (quality < 3).
	LapseEasePenalty float64

	// FirstIntervalDays and SecondIntervalDays are the fixed intervals for
	// the first and second consecutive successful reviews.
	FirstIntervalDays  int
	SecondIntervalDays int

	// MinIntervalDays is the floor for any computed interval.
	MinIntervalDays int
}

// NewDefaultParams returns the standard SM-2 parameters.
func NewDefaultParams() Params {
	return Params{
		InitialEaseFactor:  2.5,
		MinEaseFactor:      1.3,
		LapseEasePenalty:   0.2,
		FirstIntervalDays:  1,
		SecondIntervalDays: 6,
		MinIntervalDays:    1,
	}
}
