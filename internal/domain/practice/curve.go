package practice

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/phrazzld/scry-review/internal/domain"
)

// weightTolerance is how far a set of proportions may stray from summing to 1.
const weightTolerance = 0.001

// DifficultyCurve is the target share of each difficulty in a practice set.
type DifficultyCurve map[domain.Difficulty]float64

// Named curves, from an easy diagnostic through to a final challenge.
var (
	CurveDiagnostic     = DifficultyCurve{domain.DifficultyEasy: 0.60, domain.DifficultyMedium: 0.30, domain.DifficultyHard: 0.10}
	CurveFoundation     = DifficultyCurve{domain.DifficultyEasy: 0.50, domain.DifficultyMedium: 0.40, domain.DifficultyHard: 0.10}
	CurveIntermediate   = DifficultyCurve{domain.DifficultyEasy: 0.40, domain.DifficultyMedium: 0.45, domain.DifficultyHard: 0.15}
	CurveAdvanced       = DifficultyCurve{domain.DifficultyEasy: 0.30, domain.DifficultyMedium: 0.50, domain.DifficultyHard: 0.20}
	CurvePreExam        = DifficultyCurve{domain.DifficultyEasy: 0.25, domain.DifficultyMedium: 0.50, domain.DifficultyHard: 0.25}
	CurveFinalChallenge = DifficultyCurve{domain.DifficultyEasy: 0.20, domain.DifficultyMedium: 0.50, domain.DifficultyHard: 0.30}
)

var namedCurves = map[string]DifficultyCurve{
	"diagnostic":      CurveDiagnostic,
	"foundation":      CurveFoundation,
	"intermediate":    CurveIntermediate,
	"advanced":        CurveAdvanced,
	"pre_exam":        CurvePreExam,
	"final_challenge": CurveFinalChallenge,
}

// CurveByName looks up a named curve. Names are case-insensitive.
func CurveByName(name string) (DifficultyCurve, error) {
	curve, ok := namedCurves[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, domain.NewValidationError("curve", fmt.Sprintf("unknown difficulty curve %q", name))
	}
	return curve.clone(), nil
}

// CurveNames lists the named curves in alphabetical order.
func CurveNames() []string {
	names := make([]string, 0, len(namedCurves))
	for name := range namedCurves {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks that every key is a known difficulty, every share is
// non-negative and the shares sum to 1.
func (c DifficultyCurve) Validate() error {
	if len(c) == 0 {
		return domain.NewValidationError("difficulty_curve", "cannot be empty")
	}
	var sum float64
	for d, share := range c {
		if !d.IsValid() {
			return domain.NewValidationError("difficulty_curve", fmt.Sprintf("unknown difficulty %q", d))
		}
		if share < 0 || math.IsNaN(share) {
			return domain.NewValidationError("difficulty_curve", fmt.Sprintf("negative share for %s", d))
		}
		sum += share
	}
	if math.Abs(sum-1) > weightTolerance {
		return domain.NewValidationError("difficulty_curve", fmt.Sprintf("shares sum to %.4f, want 1", sum))
	}
	return nil
}

func (c DifficultyCurve) clone() DifficultyCurve {
	out := make(DifficultyCurve, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// validateWeights checks domain weights the same way as a curve.
func validateWeights(weights map[string]float64) error {
	if len(weights) == 0 {
		return domain.NewValidationError("domain_weights", "cannot be empty")
	}
	var sum float64
	for name, w := range weights {
		if w < 0 || math.IsNaN(w) {
			return domain.NewValidationError("domain_weights", fmt.Sprintf("negative weight for %q", name))
		}
		sum += w
	}
	if math.Abs(sum-1) > weightTolerance {
		return domain.NewValidationError("domain_weights", fmt.Sprintf("weights sum to %.4f, want 1", sum))
	}
	return nil
}

// allocate splits total across keys in proportion to shares. Each key gets
// its rounded-down share and the remainder goes to the largest fractional
// parts, so the quotas always sum to total. Ties go to the earlier key.
// Shares are normalized first so a sum within tolerance of 1 cannot
// overshoot total.
func allocate[K comparable](total int, shares map[K]float64, keys []K) map[K]int {
	quotas := make(map[K]int, len(keys))
	var sum float64
	for _, k := range keys {
		sum += shares[k]
	}
	if sum <= 0 {
		sum = 1
	}

	type remainder struct {
		key  K
		frac float64
		pos  int
	}
	rems := make([]remainder, 0, len(keys))

	assigned := 0
	for i, k := range keys {
		exact := float64(total) * shares[k] / sum
		whole := int(math.Floor(exact))
		quotas[k] = whole
		assigned += whole
		rems = append(rems, remainder{key: k, frac: exact - float64(whole), pos: i})
	}

	sort.SliceStable(rems, func(i, j int) bool {
		if rems[i].frac != rems[j].frac {
			return rems[i].frac > rems[j].frac
		}
		return rems[i].pos < rems[j].pos
	})
	for i := 0; assigned < total && len(rems) > 0; i = (i + 1) % len(rems) {
		quotas[rems[i].key]++
		assigned++
	}

	return quotas
}
