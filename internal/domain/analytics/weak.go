package analytics

import (
	"sort"
	"time"

	"github.com/phrazzld/scry-review/internal/domain"
)

// DefaultWeakThreshold is the retention percentage below which a reviewed
// item counts as weak.
const DefaultWeakThreshold = 70.0

// WeakItem is a reviewed item whose retention is below a threshold.
type WeakItem struct {
	ItemID       string             `json:"item_id"`
	Type         domain.ItemType    `json:"type"`
	Concept      string             `json:"concept"`
	ModuleID     string             `json:"module_id,omitempty"`
	Retention    float64            `json:"retention"`
	TotalReviews int                `json:"total_reviews"`
	Tier         domain.MasteryTier `json:"tier"`
	DueAt        time.Time          `json:"due_at"`
}

// WeakItems returns the reviewed items with retention below threshold,
// weakest first. Ties put the item with more reviews first, then order by
// item ID. Items never reviewed carry no evidence and are left out. A limit
// of 0 or less returns every weak item.
func (a *Analyzer) WeakItems(states []domain.ReviewState, threshold float64, limit int) []WeakItem {
	weak := make([]WeakItem, 0)
	for _, s := range states {
		if s.TotalReviews == 0 {
			continue
		}
		retention := s.Retention()
		if retention >= threshold {
			continue
		}
		weak = append(weak, WeakItem{
			ItemID:       s.ItemID,
			Type:         s.Type,
			Concept:      s.Concept,
			ModuleID:     s.ModuleID,
			Retention:    retention,
			TotalReviews: s.TotalReviews,
			Tier:         a.thresholds.Tier(retention),
			DueAt:        s.DueAt,
		})
	}

	sort.Slice(weak, func(i, j int) bool {
		switch {
		case weak[i].Retention != weak[j].Retention:
			return weak[i].Retention < weak[j].Retention
		case weak[i].TotalReviews != weak[j].TotalReviews:
			return weak[i].TotalReviews > weak[j].TotalReviews
		default:
			return weak[i].ItemID < weak[j].ItemID
		}
	})

	if limit > 0 && len(weak) > limit {
		weak = weak[:limit]
	}
	return weak
}
