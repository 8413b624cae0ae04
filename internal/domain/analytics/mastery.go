// Package analytics aggregates scheduling states and review events into
// retention percentages, mastery tiers, trends, module progress and
// per-day timelines. Everything here is recomputed on demand from the
// underlying states and events and is never a source of truth.
package analytics

import (
	"fmt"
	"sort"
	"time"

	"github.com/phrazzld/scry-review/internal/domain"
)

// Thresholds are the minimum retention percentages for each mastery tier.
// Anything below Intermediate is beginner.
type Thresholds struct {
	Mastered     float64 `mapstructure:"mastered" validate:"gte=0,lte=100"`
	Advanced     float64 `mapstructure:"advanced" validate:"gte=0,lte=100"`
	Intermediate float64 `mapstructure:"intermediate" validate:"gte=0,lte=100"`
}

// DefaultThresholds returns the 90/70/50 tier boundaries.
func DefaultThresholds() Thresholds {
	return Thresholds{Mastered: 90, Advanced: 70, Intermediate: 50}
}

// Validate checks that the thresholds are within 0..100 and strictly
// descending from mastered to intermediate.
func (t Thresholds) Validate() error {
	for name, v := range map[string]float64{
		"mastered":     t.Mastered,
		"advanced":     t.Advanced,
		"intermediate": t.Intermediate,
	} {
		if v < 0 || v > 100 {
			return domain.NewValidationError(name, fmt.Sprintf("threshold %.2f outside 0..100", v))
		}
	}
	if !(t.Mastered > t.Advanced && t.Advanced > t.Intermediate) {
		return domain.NewValidationError("thresholds", "must satisfy mastered > advanced > intermediate")
	}
	return nil
}

// Tier classifies a retention percentage.
func (t Thresholds) Tier(retention float64) domain.MasteryTier {
	switch {
	case retention >= t.Mastered:
		return domain.TierMastered
	case retention >= t.Advanced:
		return domain.TierAdvanced
	case retention >= t.Intermediate:
		return domain.TierIntermediate
	default:
		return domain.TierBeginner
	}
}

// Retention returns 100*correct/total, or 0 when total is 0.
func Retention(correct, total int) float64 {
	if total <= 0 {
		return 0
	}
	return 100 * float64(correct) / float64(total)
}

// ConceptMastery is the derived mastery picture for one concept.
type ConceptMastery struct {
	Concept      string             `json:"concept"`
	Retention    float64            `json:"retention"`
	ReviewCount  int                `json:"review_count"`
	LastReviewed *time.Time         `json:"last_reviewed,omitempty"`
	Tier         domain.MasteryTier `json:"tier"`
	Trend        domain.Trend       `json:"trend"`

	// Attempted is false when no item of the concept has been reviewed, which
	// distinguishes "never attempted" from 0% retention.
	Attempted bool `json:"attempted"`
}

// Analyzer computes analytics with a fixed set of tier thresholds.
type Analyzer struct {
	thresholds Thresholds
	loc        *time.Location
}

// NewAnalyzer creates an analyzer. Days in timelines and velocity are
// bounded in loc; nil means UTC.
func NewAnalyzer(thresholds Thresholds, loc *time.Location) (*Analyzer, error) {
	if err := thresholds.Validate(); err != nil {
		return nil, err
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Analyzer{thresholds: thresholds, loc: loc}, nil
}

// Thresholds returns the analyzer's tier thresholds.
func (a *Analyzer) Thresholds() Thresholds {
	return a.thresholds
}

// ConceptMastery groups states by concept and reports retention, tier and
// trend for each. Events are matched to concepts through their item IDs;
// events for unknown items are ignored.
//
// The result is ordered by retention descending, then by concept name, so
// identical inputs always produce identical output.
func (a *Analyzer) ConceptMastery(states []domain.ReviewState, events []domain.ReviewEvent) []ConceptMastery {
	type aggregate struct {
		correct, total int
		last           *time.Time
		events         []domain.ReviewEvent
	}

	byConcept := make(map[string]*aggregate)
	conceptOf := make(map[string]string, len(states))

	for _, s := range states {
		agg, ok := byConcept[s.Concept]
		if !ok {
			agg = &aggregate{}
			byConcept[s.Concept] = agg
		}
		conceptOf[s.ItemID] = s.Concept
		agg.correct += s.CorrectReviews
		agg.total += s.TotalReviews
		if s.LastReviewedAt != nil && (agg.last == nil || s.LastReviewedAt.After(*agg.last)) {
			last := *s.LastReviewedAt
			agg.last = &last
		}
	}

	for _, e := range events {
		concept, ok := conceptOf[e.ItemID]
		if !ok {
			continue
		}
		byConcept[concept].events = append(byConcept[concept].events, e)
	}

	result := make([]ConceptMastery, 0, len(byConcept))
	for concept, agg := range byConcept {
		retention := Retention(agg.correct, agg.total)
		result = append(result, ConceptMastery{
			Concept:      concept,
			Retention:    retention,
			ReviewCount:  agg.total,
			LastReviewed: agg.last,
			Tier:         a.thresholds.Tier(retention),
			Trend:        ComputeTrend(agg.events),
			Attempted:    agg.total > 0,
		})
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Retention != result[j].Retention {
			return result[i].Retention > result[j].Retention
		}
		return result[i].Concept < result[j].Concept
	})

	return result
}
