package domain

import (
	"fmt"
	"strings"
)

// Rating is the learner's self-assessed recall for a single review.
type Rating string

// Possible rating values
const (
	RatingAgain Rating = "again"
	RatingHard  Rating = "hard"
	RatingGood  Rating = "good"
	RatingEasy  Rating = "easy"
)

// Ratings lists every valid rating in ascending order of recall quality.
var Ratings = []Rating{RatingAgain, RatingHard, RatingGood, RatingEasy}

// IsValid reports whether r is one of the four known ratings.
func (r Rating) IsValid() bool {
	switch r {
	case RatingAgain, RatingHard, RatingGood, RatingEasy:
		return true
	default:
		return false
	}
}

// Correct reports whether the rating counts as a successful recall.
func (r Rating) Correct() bool {
	return r == RatingGood || r == RatingEasy
}

func (r Rating) String() string { return string(r) }

// ParseRating converts a case-insensitive string into a Rating.
func ParseRating(s string) (Rating, error) {
	r := Rating(strings.ToLower(strings.TrimSpace(s)))
	if !r.IsValid() {
		return "", NewValidationError("rating", fmt.Sprintf("unknown rating %q", s))
	}
	return r, nil
}

// ItemType distinguishes the two kinds of reviewable units.
type ItemType string

// Possible item types
const (
	ItemTypeFlashcard ItemType = "flashcard"
	ItemTypeQuestion  ItemType = "question"
)

// IsValid reports whether t is a known item type.
func (t ItemType) IsValid() bool {
	return t == ItemTypeFlashcard || t == ItemTypeQuestion
}

func (t ItemType) String() string { return string(t) }

// MasteryTier is a coarse classification of how well a concept is retained.
type MasteryTier string

// Mastery tiers, weakest first.
const (
	TierBeginner     MasteryTier = "beginner"
	TierIntermediate MasteryTier = "intermediate"
	TierAdvanced     MasteryTier = "advanced"
	TierMastered     MasteryTier = "mastered"
)

// Rank orders tiers so they can be compared. Unknown tiers rank below beginner.
func (t MasteryTier) Rank() int {
	switch t {
	case TierBeginner:
		return 0
	case TierIntermediate:
		return 1
	case TierAdvanced:
		return 2
	case TierMastered:
		return 3
	default:
		return -1
	}
}

// IsValid reports whether t is a known tier.
func (t MasteryTier) IsValid() bool { return t.Rank() >= 0 }

// AtLeast reports whether t is the same as or stronger than other.
func (t MasteryTier) AtLeast(other MasteryTier) bool {
	return t.Rank() >= other.Rank()
}

func (t MasteryTier) String() string { return string(t) }

// Trend describes the direction of recent recall performance.
type Trend string

// Possible trends
const (
	TrendImproving Trend = "improving"
	TrendStable    Trend = "stable"
	TrendDeclining Trend = "declining"
)

// IsValid reports whether t is a known trend.
func (t Trend) IsValid() bool {
	return t == TrendImproving || t == TrendStable || t == TrendDeclining
}

func (t Trend) String() string { return string(t) }

// Difficulty is the authored difficulty of a practice question.
type Difficulty string

// Difficulty levels, easiest first.
const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Difficulties lists every difficulty in ascending order.
var Difficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

// Rank returns the ordinal of d, or -1 when d is unknown.
func (d Difficulty) Rank() int {
	switch d {
	case DifficultyEasy:
		return 0
	case DifficultyMedium:
		return 1
	case DifficultyHard:
		return 2
	default:
		return -1
	}
}

// IsValid reports whether d is a known difficulty.
func (d Difficulty) IsValid() bool { return d.Rank() >= 0 }

func (d Difficulty) String() string { return string(d) }
