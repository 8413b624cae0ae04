// Package streak derives consecutive-day review streaks from review
// timestamps.
//
// Timestamps collapse to calendar days in a single location, UTC unless a
// Tracker is built with another one. A streak is still current when the most
// recent active day was yesterday, so a learner who has not yet reviewed today
// keeps it until the day is over.
package streak

import (
	"sort"
	"time"
)

// DateLayout is the format of the day keys in Streaks.ActiveDays.
const DateLayout = "2006-01-02"

// Streaks summarizes a review history.
type Streaks struct {
	Current int `json:"current"`
	Longest int `json:"longest"`

	// LastReviewDate is the most recent active day, nil for an empty history.
	LastReviewDate *time.Time `json:"last_review_date,omitempty"`

	// ActiveDays lists the distinct active days, newest first.
	ActiveDays []string `json:"active_days"`
}

// Tracker computes streaks with days bounded in a fixed location.
type Tracker struct {
	loc *time.Location
}

// NewTracker creates a tracker for loc. A nil location means UTC.
func NewTracker(loc *time.Location) *Tracker {
	if loc == nil {
		loc = time.UTC
	}
	return &Tracker{loc: loc}
}

// Location returns the location days are computed in.
func (t *Tracker) Location() *time.Location {
	return t.loc
}

// Compute computes streaks in UTC.
func Compute(timestamps []time.Time, now time.Time) Streaks {
	return NewTracker(time.UTC).Compute(timestamps, now)
}

// Compute derives the current and longest streaks from timestamps as seen at
// now. Timestamps need not be sorted or distinct.
func (t *Tracker) Compute(timestamps []time.Time, now time.Time) Streaks {
	result := Streaks{ActiveDays: []string{}}
	if len(timestamps) == 0 {
		return result
	}

	days := t.distinctDays(timestamps)

	last := days[0].date(t.loc)
	result.LastReviewDate = &last
	for _, d := range days {
		result.ActiveDays = append(result.ActiveDays, d.date(t.loc).Format(DateLayout))
	}

	run := 1
	result.Longest = 1
	for i := 1; i < len(days); i++ {
		if days[i-1]-days[i] == 1 {
			run++
		} else {
			run = 1
		}
		if run > result.Longest {
			result.Longest = run
		}
	}

	today := dayNumber(now, t.loc)
	if gap := today - days[0]; gap == 0 || gap == 1 {
		result.Current = 1
		for i := 1; i < len(days) && days[i-1]-days[i] == 1; i++ {
			result.Current++
		}
	}

	return result
}

// distinctDays returns the unique day numbers of timestamps, newest first.
func (t *Tracker) distinctDays(timestamps []time.Time) []day {
	seen := make(map[day]struct{}, len(timestamps))
	days := make([]day, 0, len(timestamps))
	for _, ts := range timestamps {
		d := dayNumber(ts, t.loc)
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i] > days[j] })
	return days
}

// day counts civil days since the Unix epoch. Using the civil date rather
// than elapsed hours keeps DST transitions from producing 23 or 25 hour days.
type day int64

func dayNumber(ts time.Time, loc *time.Location) day {
	y, m, d := ts.In(loc).Date()
	return day(time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400)
}

func (d day) date(loc *time.Location) time.Time {
	utc := time.Unix(int64(d)*86400, 0).UTC()
	return time.Date(utc.Year(), utc.Month(), utc.Day(), 0, 0, 0, 0, loc)
}

// DayStart returns the start of the calendar day containing ts in loc.
func DayStart(ts time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := ts.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
