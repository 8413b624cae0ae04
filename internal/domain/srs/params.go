package srs

import (
	"time"

	"github.com/phrazzld/scry-review/internal/domain"
)

// Params defines all configurable parameters for the scheduling algorithm.
type Params struct {
	// Ease limits. MaxEaseFactor of 0 leaves ease growth uncapped.
	MinEaseFactor     float64
	MaxEaseFactor     float64
	DefaultEaseFactor float64

	// Per-rating adjustments
	EaseFactorAdjustment map[domain.Rating]float64
	IntervalModifier     map[domain.Rating]float64

	// Intervals used when the previous interval is 0
	FirstReviewIntervals map[domain.Rating]float64

	// MaxIntervalDays caps every computed interval.
	MaxIntervalDays float64

	// RelearnDelay is how long after an "again" rating the item becomes due.
	RelearnDelay time.Duration
}

// ParamsConfig allows overriding the default parameters when creating a new
// Params instance. Zero values keep the default, except for RelearnMinutes
// where only nil does.
type ParamsConfig struct {
	MinEaseFactor     float64 `mapstructure:"min_ease"`
	MaxEaseFactor     float64 `mapstructure:"max_ease"`
	DefaultEaseFactor float64 `mapstructure:"default_ease"`

	AgainEaseFactorAdjustment float64 `mapstructure:"again_ease_delta"`
	HardEaseFactorAdjustment  float64 `mapstructure:"hard_ease_delta"`
	EasyEaseFactorAdjustment  float64 `mapstructure:"easy_ease_delta"`

	HardIntervalModifier float64 `mapstructure:"hard_interval_modifier"`
	EasyIntervalModifier float64 `mapstructure:"easy_bonus"`

	FirstReviewGoodInterval float64 `mapstructure:"first_good_interval"`
	FirstReviewEasyInterval float64 `mapstructure:"first_easy_interval"`

	MaxIntervalDays float64 `mapstructure:"max_interval_days"`

	// RelearnMinutes is a pointer so that 0, an immediate relearn, can be
	// told apart from unset.
	RelearnMinutes *int `mapstructure:"relearn_minutes"`
}

// NewDefaultParams creates a new Params instance with default values
func NewDefaultParams() *Params {
	return &Params{
		MinEaseFactor:     1.3,
		DefaultEaseFactor: domain.DefaultEase,

		EaseFactorAdjustment: map[domain.Rating]float64{
			domain.RatingAgain: -0.20,
			domain.RatingHard:  -0.15,
			domain.RatingGood:  0.0,
			domain.RatingEasy:  0.15,
		},

		IntervalModifier: map[domain.Rating]float64{
			domain.RatingAgain: 0.0, // Reset interval
			domain.RatingHard:  1.2, // Slight increase, independent of ease
			domain.RatingGood:  1.0, // Use ease factor directly
			domain.RatingEasy:  1.3, // Bonus on top of ease
		},

		FirstReviewIntervals: map[domain.Rating]float64{
			domain.RatingHard: 1,
			domain.RatingGood: 1,
			domain.RatingEasy: 2,
		},

		MaxIntervalDays: 365,
		RelearnDelay:    10 * time.Minute,
	}
}

// NewParams creates a new Params instance with custom configuration
func NewParams(config ParamsConfig) *Params {
	params := NewDefaultParams()

	if config.MinEaseFactor > 0 {
		params.MinEaseFactor = config.MinEaseFactor
	}
	if config.MaxEaseFactor > 0 {
		params.MaxEaseFactor = config.MaxEaseFactor
	}
	if config.DefaultEaseFactor > 0 {
		params.DefaultEaseFactor = config.DefaultEaseFactor
	}

	if config.AgainEaseFactorAdjustment != 0 {
		params.EaseFactorAdjustment[domain.RatingAgain] = config.AgainEaseFactorAdjustment
	}
	if config.HardEaseFactorAdjustment != 0 {
		params.EaseFactorAdjustment[domain.RatingHard] = config.HardEaseFactorAdjustment
	}
	if config.EasyEaseFactorAdjustment != 0 {
		params.EaseFactorAdjustment[domain.RatingEasy] = config.EasyEaseFactorAdjustment
	}

	if config.HardIntervalModifier > 0 {
		params.IntervalModifier[domain.RatingHard] = config.HardIntervalModifier
	}
	if config.EasyIntervalModifier > 0 {
		params.IntervalModifier[domain.RatingEasy] = config.EasyIntervalModifier
	}

	if config.FirstReviewGoodInterval > 0 {
		params.FirstReviewIntervals[domain.RatingGood] = config.FirstReviewGoodInterval
	}
	if config.FirstReviewEasyInterval > 0 {
		params.FirstReviewIntervals[domain.RatingEasy] = config.FirstReviewEasyInterval
	}

	if config.MaxIntervalDays > 0 {
		params.MaxIntervalDays = config.MaxIntervalDays
	}
	if config.RelearnMinutes != nil && *config.RelearnMinutes >= 0 {
		params.RelearnDelay = time.Duration(*config.RelearnMinutes) * time.Minute
	}

	return params
}
