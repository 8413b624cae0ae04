package practice

import (
	"math"

	"github.com/phrazzld/scry-review/internal/domain"
)

// DefaultPassingScore is the percentage needed to pass a mock exam.
const DefaultPassingScore = 70.0

// DomainScore is the result for one domain of an exam.
type DomainScore struct {
	Domain  string  `json:"domain"`
	Correct int     `json:"correct"`
	Total   int     `json:"total"`
	Percent float64 `json:"percent"`
}

// ExamResult is the scored outcome of a completed exam.
type ExamResult struct {
	Correct      int           `json:"correct"`
	Total        int           `json:"total"`
	Percent      float64       `json:"percent"`
	PassingScore float64       `json:"passing_score"`
	Passed       bool          `json:"passed"`
	Domains      []DomainScore `json:"domains"`
}

// ScoreExam grades the items of an exam. answers maps item IDs to whether
// they were answered correctly; unanswered items count as incorrect.
// A non-positive passingScore uses DefaultPassingScore.
func ScoreExam(items []Item, answers map[string]bool, passingScore float64) (ExamResult, error) {
	if passingScore > 100 || math.IsNaN(passingScore) {
		return ExamResult{}, domain.NewValidationError("passing_score", "must be at most 100")
	}
	if passingScore <= 0 {
		passingScore = DefaultPassingScore
	}

	result := ExamResult{PassingScore: passingScore, Domains: []DomainScore{}}
	byDomain := make(map[string]*DomainScore)

	for _, item := range items {
		ds, ok := byDomain[item.Domain]
		if !ok {
			ds = &DomainScore{Domain: item.Domain}
			byDomain[item.Domain] = ds
		}
		ds.Total++
		result.Total++
		if answers[item.ID] {
			ds.Correct++
			result.Correct++
		}
	}

	for _, name := range sortedKeys(byDomain) {
		ds := byDomain[name]
		ds.Percent = percent(ds.Correct, ds.Total)
		result.Domains = append(result.Domains, *ds)
	}

	result.Percent = percent(result.Correct, result.Total)
	result.Passed = result.Total > 0 && result.Percent >= passingScore

	return result, nil
}

func percent(correct, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(1000*float64(correct)/float64(total)) / 10
}
