package analytics

import (
	"sort"

	"github.com/phrazzld/scry-review/internal/domain"
)

const (
	// trendWindow is the number of events on each side of the comparison.
	trendWindow = 3

	// trendBand is the retention difference, in percentage points, needed to
	// call a trend improving or declining.
	trendBand = 5.0
)

// ComputeTrend compares the retention of the most recent events against the
// events immediately before them.
//
// With six or more events the windows are the last three and the three before.
// With fewer, the newer half (at most three) is compared against the rest.
// Fewer than two events is reported as stable.
func ComputeTrend(events []domain.ReviewEvent) domain.Trend {
	if len(events) < 2 {
		return domain.TrendStable
	}

	ordered := make([]domain.ReviewEvent, len(events))
	copy(ordered, events)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].ReviewedAt.Before(ordered[j].ReviewedAt)
	})

	recentSize := trendWindow
	if len(ordered) < 2*trendWindow {
		recentSize = (len(ordered) + 1) / 2
	}
	priorSize := min(trendWindow, len(ordered)-recentSize)

	n := len(ordered)
	recent := ordered[n-recentSize:]
	prior := ordered[n-recentSize-priorSize : n-recentSize]

	diff := eventRetention(recent) - eventRetention(prior)
	switch {
	case diff >= trendBand:
		return domain.TrendImproving
	case diff <= -trendBand:
		return domain.TrendDeclining
	default:
		return domain.TrendStable
	}
}

func eventRetention(events []domain.ReviewEvent) float64 {
	correct := 0
	for _, e := range events {
		if e.Correct() {
			correct++
		}
	}
	return Retention(correct, len(events))
}
