package analytics

import (
	"sort"
	"time"

	"github.com/phrazzld/scry-review/internal/domain"
)

// ModuleProgress is the completion picture for one module.
type ModuleProgress struct {
	ModuleID          string     `json:"module_id"`
	TotalConcepts     int        `json:"total_concepts"`
	ConceptsStarted   int        `json:"concepts_started"`
	ConceptsCompleted int        `json:"concepts_completed"`
	ConceptsMastered  int        `json:"concepts_mastered"`
	CompletionPercent float64    `json:"completion_percent"`
	AverageRetention  float64    `json:"average_retention"`
	LastActivity      *time.Time `json:"last_activity,omitempty"`
}

// ModuleProgress reports, for every module in moduleMap, the share of its
// concepts at intermediate tier or better. Concepts listed in the map with
// no states count as not completed. AverageRetention averages the attempted
// concepts only.
//
// Modules are ordered by ID.
func (a *Analyzer) ModuleProgress(states []domain.ReviewState, moduleMap map[string][]string) []ModuleProgress {
	mastery := make(map[string]ConceptMastery)
	for _, cm := range a.ConceptMastery(states, nil) {
		mastery[cm.Concept] = cm
	}

	moduleIDs := make([]string, 0, len(moduleMap))
	for id := range moduleMap {
		moduleIDs = append(moduleIDs, id)
	}
	sort.Strings(moduleIDs)

	result := make([]ModuleProgress, 0, len(moduleIDs))
	for _, id := range moduleIDs {
		concepts := distinct(moduleMap[id])
		progress := ModuleProgress{ModuleID: id, TotalConcepts: len(concepts)}

		var retentionSum float64
		for _, concept := range concepts {
			cm, ok := mastery[concept]
			if !ok || !cm.Attempted {
				continue
			}
			progress.ConceptsStarted++
			retentionSum += cm.Retention
			if cm.Tier.AtLeast(domain.TierIntermediate) {
				progress.ConceptsCompleted++
			}
			if cm.Tier == domain.TierMastered {
				progress.ConceptsMastered++
			}
			if cm.LastReviewed != nil && (progress.LastActivity == nil || cm.LastReviewed.After(*progress.LastActivity)) {
				last := *cm.LastReviewed
				progress.LastActivity = &last
			}
		}

		if progress.TotalConcepts > 0 {
			progress.CompletionPercent = 100 * float64(progress.ConceptsCompleted) / float64(progress.TotalConcepts)
		}
		if progress.ConceptsStarted > 0 {
			progress.AverageRetention = retentionSum / float64(progress.ConceptsStarted)
		}

		result = append(result, progress)
	}

	return result
}

// ModuleMap derives a module to concepts map from the metadata carried by
// states. States without a module are skipped.
func ModuleMap(states []domain.ReviewState) map[string][]string {
	seen := make(map[string]map[string]struct{})
	for _, s := range states {
		if s.ModuleID == "" || s.Concept == "" {
			continue
		}
		if seen[s.ModuleID] == nil {
			seen[s.ModuleID] = make(map[string]struct{})
		}
		seen[s.ModuleID][s.Concept] = struct{}{}
	}

	result := make(map[string][]string, len(seen))
	for module, concepts := range seen {
		list := make([]string, 0, len(concepts))
		for c := range concepts {
			list = append(list, c)
		}
		sort.Strings(list)
		result[module] = list
	}
	return result
}

func distinct(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
