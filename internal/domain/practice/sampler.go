// Package practice builds practice and mock-exam question sets and scores
// completed exams.
//
// Sampling is stratified: the target is split across domains by exam weight
// and each domain's share is split across difficulties by a curve. Every
// stratum is shuffled before it is cut to its quota. When a stratum runs
// short the gap is filled from the nearest difficulty in the same domain,
// then from other domains, so a non-empty pool always yields
// min(target, len(pool)) items.
package practice

import (
	"fmt"
	"math/rand/v2"
	"sort"

	"github.com/phrazzld/scry-review/internal/domain"
)

// Item is one question in the practice pool.
type Item struct {
	ID         string            `json:"id"`
	Domain     string            `json:"domain"`
	Difficulty domain.Difficulty `json:"difficulty"`
	Concept    string            `json:"concept,omitempty"`
	ModuleID   string            `json:"module_id,omitempty"`
	Tags       []string          `json:"tags,omitempty"`
}

// Sampler draws stratified practice sets. It is not safe for concurrent use
// because it owns its random source.
type Sampler struct {
	rng *rand.Rand
}

// NewSampler creates a sampler drawing from src. A nil source is seeded
// from the runtime's random generator.
func NewSampler(src rand.Source) *Sampler {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &Sampler{rng: rand.New(src)}
}

// strata holds shuffled items of one domain keyed by difficulty, with a
// cursor marking how many of each have been taken.
type strata struct {
	items map[domain.Difficulty][]Item
	taken map[domain.Difficulty]int
}

func (s *strata) available(d domain.Difficulty) int {
	return len(s.items[d]) - s.taken[d]
}

func (s *strata) take(d domain.Difficulty, n int) []Item {
	n = min(n, s.available(d))
	if n <= 0 {
		return nil
	}
	start := s.taken[d]
	s.taken[d] += n
	return s.items[d][start : start+n]
}

// Sample selects min(target, len(pool)) items honoring domain weights and
// the difficulty curve as closely as the pool allows, in random order.
//
// Returns a ValidationError when target is negative, when the weights or
// curve are malformed or do not sum to 1, or when an item carries an
// unknown difficulty.
func (s *Sampler) Sample(
	pool []Item,
	target int,
	weights map[string]float64,
	curve DifficultyCurve,
) ([]Item, error) {
	if target < 0 {
		return nil, domain.NewValidationError("target_count", "must not be negative")
	}
	if err := validateWeights(weights); err != nil {
		return nil, err
	}
	if err := curve.Validate(); err != nil {
		return nil, err
	}

	n := min(target, len(pool))
	if n == 0 {
		return []Item{}, nil
	}

	byDomain, err := s.stratify(pool)
	if err != nil {
		return nil, err
	}

	weighted := sortedKeys(weights)
	domainQuotas := allocate(n, weights, weighted)
	selected := make([]Item, 0, n)

	for _, name := range weighted {
		st, ok := byDomain[name]
		if !ok {
			continue
		}
		selected = append(selected, fillDomain(st, domainQuotas[name], curve)...)
	}

	if short := n - len(selected); short > 0 {
		selected = append(selected, backfill(byDomain, backfillOrder(byDomain, weights), curve, short)...)
	}

	s.rng.Shuffle(len(selected), func(i, j int) {
		selected[i], selected[j] = selected[j], selected[i]
	})

	return selected, nil
}

// stratify groups the pool by domain and difficulty and shuffles each group.
func (s *Sampler) stratify(pool []Item) (map[string]*strata, error) {
	byDomain := make(map[string]*strata)
	for _, item := range pool {
		if !item.Difficulty.IsValid() {
			return nil, domain.NewValidationError("difficulty",
				fmt.Sprintf("item %s has unknown difficulty %q", item.ID, item.Difficulty))
		}
		st, ok := byDomain[item.Domain]
		if !ok {
			st = &strata{
				items: make(map[domain.Difficulty][]Item),
				taken: make(map[domain.Difficulty]int),
			}
			byDomain[item.Domain] = st
		}
		st.items[item.Difficulty] = append(st.items[item.Difficulty], item)
	}

	// Shuffle in a fixed order so a seeded source is reproducible.
	for _, name := range sortedKeys(byDomain) {
		st := byDomain[name]
		for _, d := range domain.Difficulties {
			items := st.items[d]
			s.rng.Shuffle(len(items), func(i, j int) {
				items[i], items[j] = items[j], items[i]
			})
		}
	}

	return byDomain, nil
}

// fillDomain takes quota items from one domain following the curve. A short
// difficulty borrows from the nearest difficulties first, preferring the
// easier one on a tie.
func fillDomain(st *strata, quota int, curve DifficultyCurve) []Item {
	if quota <= 0 {
		return nil
	}

	quotas := allocate(quota, curve, domain.Difficulties)
	taken := make([]Item, 0, quota)
	short := make(map[domain.Difficulty]int)

	for _, d := range domain.Difficulties {
		got := st.take(d, quotas[d])
		taken = append(taken, got...)
		short[d] = quotas[d] - len(got)
	}

	for _, d := range domain.Difficulties {
		for _, near := range nearestDifficulties(d) {
			if short[d] == 0 {
				break
			}
			got := st.take(near, short[d])
			taken = append(taken, got...)
			short[d] -= len(got)
		}
	}

	return taken
}

// nearestDifficulties lists the other difficulties by distance from d.
func nearestDifficulties(d domain.Difficulty) []domain.Difficulty {
	others := make([]domain.Difficulty, 0, len(domain.Difficulties)-1)
	for _, o := range domain.Difficulties {
		if o != d {
			others = append(others, o)
		}
	}
	sort.SliceStable(others, func(i, j int) bool {
		di, dj := abs(others[i].Rank()-d.Rank()), abs(others[j].Rank()-d.Rank())
		if di != dj {
			return di < dj
		}
		return others[i].Rank() < others[j].Rank()
	})
	return others
}

// backfillOrder ranks domains for filling a shortfall: heaviest weight first,
// then unweighted domains by name.
func backfillOrder(byDomain map[string]*strata, weights map[string]float64) []string {
	names := sortedKeys(byDomain)
	sort.SliceStable(names, func(i, j int) bool {
		return weights[names[i]] > weights[names[j]]
	})
	return names
}

// backfill takes up to short remaining items across domains in order,
// favoring the difficulties the curve weights most.
func backfill(byDomain map[string]*strata, order []string, curve DifficultyCurve, short int) []Item {
	difficulties := make([]domain.Difficulty, len(domain.Difficulties))
	copy(difficulties, domain.Difficulties)
	sort.SliceStable(difficulties, func(i, j int) bool {
		return curve[difficulties[i]] > curve[difficulties[j]]
	})

	taken := make([]Item, 0, short)
	for _, name := range order {
		st := byDomain[name]
		for _, d := range difficulties {
			if short == 0 {
				return taken
			}
			got := st.take(d, short)
			taken = append(taken, got...)
			short -= len(got)
		}
	}
	return taken
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
