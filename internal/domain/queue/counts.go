package queue

import (
	"time"

	"github.com/phrazzld/scry-review/internal/domain"
)

// Counts is the number of due items per type.
type Counts struct {
	Flashcards int `json:"flashcards"`
	Questions  int `json:"questions"`
	Total      int `json:"total"`
}

// DueCounts counts the items due at now.
func DueCounts(states []domain.ReviewState, now time.Time) Counts {
	var c Counts
	for _, s := range states {
		if !s.IsDue(now) {
			continue
		}
		switch s.Type {
		case domain.ItemTypeFlashcard:
			c.Flashcards++
		case domain.ItemTypeQuestion:
			c.Questions++
		}
	}
	c.Total = c.Flashcards + c.Questions
	return c
}

// ForecastDay is the number of items that become due within one day.
type ForecastDay struct {
	Date  time.Time `json:"date"`
	Count int       `json:"count"`
}

// Forecast reports how many items fall due in each of the next days 24-hour
// windows starting at now. Items already due are counted in the first window.
func Forecast(states []domain.ReviewState, days int, now time.Time) []ForecastDay {
	if days <= 0 {
		return []ForecastDay{}
	}

	forecast := make([]ForecastDay, days)
	for i := range forecast {
		forecast[i].Date = now.Add(time.Duration(i) * 24 * time.Hour)
	}

	horizon := now.Add(time.Duration(days) * 24 * time.Hour)
	for _, s := range states {
		if !s.DueAt.Before(horizon) {
			continue
		}
		i := 0
		if s.DueAt.After(now) {
			i = int(s.DueAt.Sub(now) / (24 * time.Hour))
		}
		forecast[i].Count++
	}

	return forecast
}
