package practice

import (
	"fmt"
	"math"
	"slices"
	"sort"
	"strings"

	"github.com/phrazzld/scry-review/internal/domain"
)

// Targeting defaults.
const (
	DefaultMinQuestions   = 5
	DefaultIdealQuestions = 15
)

const (
	// mixedPrimaryShare is the share of a mixed-content set drawn from the
	// primary domain. The rest is split across the related domains.
	mixedPrimaryShare   = 0.7
	mixedRelatedDomains = 2
)

// Fallback selects how a targeted pool is widened when the exact match
// holds fewer than the minimum number of questions.
type Fallback string

// Fallback strategies
const (
	FallbackExpandDomain      Fallback = "expand-domain"
	FallbackReduceSpecificity Fallback = "reduce-specificity"
	FallbackMixedContent      Fallback = "mixed-content"
)

// IsValid reports whether f is a known strategy.
func (f Fallback) IsValid() bool {
	return f == FallbackExpandDomain || f == FallbackReduceSpecificity || f == FallbackMixedContent
}

// Match names how a targeted pool was assembled.
const (
	MatchExact         = "exact-match"
	MatchExpandDomain  = "expand-domain"
	MatchReducedModule = "reduced-specificity-module"
	MatchReducedTags   = "reduced-specificity-tags"
	MatchReducedDomain = "reduced-specificity-domain-only"
	MatchMixedContent  = "mixed-content"
)

// Targeting describes the questions a module's practice set should draw on.
type Targeting struct {
	ModuleID      string   `json:"module_id,omitempty"`
	PrimaryDomain string   `json:"primary_domain"`
	RequiredTags  []string `json:"required_tags,omitempty"`
	OptionalTags  []string `json:"optional_tags,omitempty"`

	// MinQuestions is the smallest exact match used as is. IdealQuestions is
	// the size of the practice set.
	MinQuestions   int      `json:"min_questions,omitempty"`
	IdealQuestions int      `json:"ideal_questions,omitempty"`
	Fallback       Fallback `json:"fallback_strategy,omitempty"`
}

// WithDefaults fills zero counts and an empty fallback.
func (t Targeting) WithDefaults() Targeting {
	if t.MinQuestions == 0 {
		t.MinQuestions = DefaultMinQuestions
	}
	if t.IdealQuestions == 0 {
		t.IdealQuestions = DefaultIdealQuestions
	}
	if t.Fallback == "" {
		t.Fallback = FallbackExpandDomain
	}
	return t
}

// Validate checks a targeting with defaults applied.
func (t Targeting) Validate() error {
	switch {
	case strings.TrimSpace(t.PrimaryDomain) == "":
		return domain.NewValidationError("primary_domain", "cannot be empty")
	case t.MinQuestions < 0:
		return domain.NewValidationError("min_questions", "must not be negative")
	case t.IdealQuestions < 0:
		return domain.NewValidationError("ideal_questions", "must not be negative")
	case !t.Fallback.IsValid():
		return domain.NewValidationError("fallback_strategy", fmt.Sprintf("unknown fallback strategy %q", t.Fallback))
	}
	return nil
}

// TargetedPool is the candidate set for a targeted practice set, with the
// domain weights to sample it by.
type TargetedPool struct {
	Candidates []Item
	Weights    map[string]float64
	Match      string
}

// Target narrows pool to the questions t asks for. The exact match keeps
// questions of the primary domain that carry every required tag and belong
// to the module or to no module. When it holds fewer than MinQuestions the
// fallback strategy widens it. examWeights ranks related domains for the
// mixed-content fallback and may be nil.
func Target(pool []Item, t Targeting, examWeights map[string]float64) (TargetedPool, error) {
	t = t.WithDefaults()
	if err := t.Validate(); err != nil {
		return TargetedPool{}, err
	}

	primary := map[string]float64{t.PrimaryDomain: 1}

	exact := filter(pool, func(item Item) bool {
		return item.Domain == t.PrimaryDomain &&
			(t.ModuleID == "" || item.ModuleID == "" || item.ModuleID == t.ModuleID) &&
			hasAll(item.Tags, t.RequiredTags)
	})
	if len(exact) >= t.MinQuestions {
		return TargetedPool{Candidates: exact, Weights: primary, Match: MatchExact}, nil
	}

	inDomain := func(item Item) bool { return item.Domain == t.PrimaryDomain }

	switch t.Fallback {
	case FallbackReduceSpecificity:
		candidates := filter(pool, func(item Item) bool {
			return inDomain(item) && hasAll(item.Tags, t.RequiredTags)
		})
		if len(candidates) >= t.MinQuestions {
			return TargetedPool{Candidates: candidates, Weights: primary, Match: MatchReducedModule}, nil
		}

		if len(t.RequiredTags) > 1 {
			partial := t.RequiredTags[:(len(t.RequiredTags)+1)/2]
			candidates = filter(pool, func(item Item) bool {
				return inDomain(item) && hasAny(item.Tags, partial)
			})
			if len(candidates) >= t.MinQuestions {
				return TargetedPool{Candidates: candidates, Weights: primary, Match: MatchReducedTags}, nil
			}
		}

		return TargetedPool{Candidates: filter(pool, inDomain), Weights: primary, Match: MatchReducedDomain}, nil

	case FallbackMixedContent:
		related := relatedDomains(pool, t.PrimaryDomain, examWeights)
		if len(related) == 0 {
			return TargetedPool{Candidates: filter(pool, inDomain), Weights: primary, Match: MatchMixedContent}, nil
		}

		weights := map[string]float64{t.PrimaryDomain: mixedPrimaryShare}
		for _, name := range related {
			weights[name] = (1 - mixedPrimaryShare) / float64(len(related))
		}
		candidates := filter(pool, func(item Item) bool {
			_, ok := weights[item.Domain]
			return ok
		})
		return TargetedPool{Candidates: candidates, Weights: weights, Match: MatchMixedContent}, nil

	default:
		candidates := filter(pool, inDomain)
		if len(t.OptionalTags) > 0 {
			if tagged := filter(candidates, func(item Item) bool {
				return hasAny(item.Tags, t.OptionalTags)
			}); len(tagged) > 0 {
				candidates = tagged
			}
		}
		return TargetedPool{Candidates: candidates, Weights: primary, Match: MatchExpandDomain}, nil
	}
}

// relatedDomains picks the domains other than primary that the mixed-content
// fallback borrows from: heaviest exam weight first, then most questions,
// then by name.
func relatedDomains(pool []Item, primary string, examWeights map[string]float64) []string {
	counts := make(map[string]int)
	for _, item := range pool {
		if item.Domain != primary {
			counts[item.Domain]++
		}
	}

	names := sortedKeys(counts)
	sort.SliceStable(names, func(i, j int) bool {
		wi, wj := examWeights[names[i]], examWeights[names[j]]
		if math.Abs(wi-wj) > weightTolerance {
			return wi > wj
		}
		return counts[names[i]] > counts[names[j]]
	})
	return names[:min(len(names), mixedRelatedDomains)]
}

func filter(items []Item, keep func(Item) bool) []Item {
	out := make([]Item, 0)
	for _, item := range items {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}

func hasAll(tags, wanted []string) bool {
	for _, w := range wanted {
		if !slices.Contains(tags, w) {
			return false
		}
	}
	return true
}

func hasAny(tags, wanted []string) bool {
	for _, w := range wanted {
		if slices.Contains(tags, w) {
			return true
		}
	}
	return false
}
