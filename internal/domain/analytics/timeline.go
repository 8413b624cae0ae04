package analytics

import (
	"time"

	"github.com/phrazzld/scry-review/internal/domain"
	"github.com/phrazzld/scry-review/internal/domain/streak"
)

// TimelinePoint is one calendar day of review activity.
type TimelinePoint struct {
	Date          time.Time `json:"date"`
	ItemsReviewed int       `json:"items_reviewed"`
	CorrectCount  int       `json:"correct_count"`

	// AverageRetention is the day's correct share. Days without reviews carry
	// the previous day's value forward, or 0 at the start of the window.
	AverageRetention float64 `json:"average_retention"`
}

// Timeline buckets events by calendar day over the daysBack days ending with
// the day containing now, oldest first. A non-positive daysBack yields an
// empty timeline.
func (a *Analyzer) Timeline(events []domain.ReviewEvent, daysBack int, now time.Time) []TimelinePoint {
	if daysBack <= 0 {
		return []TimelinePoint{}
	}

	today := streak.DayStart(now, a.loc)
	first := today.AddDate(0, 0, -(daysBack - 1))

	points := make([]TimelinePoint, daysBack)
	index := make(map[string]int, daysBack)
	for i := range points {
		day := first.AddDate(0, 0, i)
		points[i].Date = day
		index[day.Format(streak.DateLayout)] = i
	}

	for _, e := range events {
		key := e.ReviewedAt.In(a.loc).Format(streak.DateLayout)
		i, ok := index[key]
		if !ok {
			continue
		}
		points[i].ItemsReviewed++
		if e.Correct() {
			points[i].CorrectCount++
		}
	}

	previous := 0.0
	for i := range points {
		if points[i].ItemsReviewed == 0 {
			points[i].AverageRetention = previous
			continue
		}
		points[i].AverageRetention = Retention(points[i].CorrectCount, points[i].ItemsReviewed)
		previous = points[i].AverageRetention
	}

	return points
}
