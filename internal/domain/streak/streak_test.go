package streak

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompute(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 4, 20, 15, 0, 0, 0, time.UTC)
	daysAgo := func(n int, hour int) time.Time {
		d := now.AddDate(0, 0, -n)
		return time.Date(d.Year(), d.Month(), d.Day(), hour, 0, 0, 0, time.UTC)
	}

	testCases := []struct {
		name       string
		timestamps []time.Time
		current    int
		longest    int
	}{
		{
			name:       "empty history",
			timestamps: nil,
			current:    0,
			longest:    0,
		},
		{
			name:       "today yesterday and two days ago",
			timestamps: []time.Time{daysAgo(0, 9), daysAgo(1, 9), daysAgo(2, 9)},
			current:    3,
			longest:    3,
		},
		{
			name:       "today and three days ago",
			timestamps: []time.Time{daysAgo(0, 9), daysAgo(3, 9)},
			current:    1,
			longest:    1,
		},
		{
			name:       "anchored at yesterday",
			timestamps: []time.Time{daysAgo(1, 22), daysAgo(2, 1)},
			current:    2,
			longest:    2,
		},
		{
			name:       "broken streak keeps longest",
			timestamps: []time.Time{daysAgo(5, 9), daysAgo(6, 9), daysAgo(7, 9), daysAgo(8, 9)},
			current:    0,
			longest:    4,
		},
		{
			name: "duplicates and unsorted input",
			timestamps: []time.Time{
				daysAgo(1, 8), daysAgo(0, 7), daysAgo(1, 20), daysAgo(0, 23), daysAgo(4, 1), daysAgo(5, 1),
			},
			current: 2,
			longest: 2,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := Compute(tc.timestamps, now)
			assert.Equal(t, tc.current, got.Current)
			assert.Equal(t, tc.longest, got.Longest)
		})
	}
}

func TestCompute_AppendingTodayExtendsCurrent(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 4, 20, 15, 0, 0, 0, time.UTC)
	history := []time.Time{
		now.AddDate(0, 0, -1),
		now.AddDate(0, 0, -2),
		now.AddDate(0, 0, -4),
	}

	before := Compute(history, now)
	after := Compute(append(history, now), now)

	assert.Equal(t, before.Current+1, after.Current)
}

func TestCompute_ActiveDays(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 4, 20, 15, 0, 0, 0, time.UTC)
	got := Compute([]time.Time{
		time.Date(2025, 4, 18, 10, 0, 0, 0, time.UTC),
		time.Date(2025, 4, 20, 10, 0, 0, 0, time.UTC),
		time.Date(2025, 4, 20, 11, 0, 0, 0, time.UTC),
	}, now)

	assert.Equal(t, []string{"2025-04-20", "2025-04-18"}, got.ActiveDays)
	require.NotNil(t, got.LastReviewDate)
	assert.Equal(t, time.Date(2025, 4, 20, 0, 0, 0, 0, time.UTC), *got.LastReviewDate)

	empty := Compute(nil, now)
	assert.Empty(t, empty.ActiveDays)
	assert.Nil(t, empty.LastReviewDate)
}

func TestTracker_Location(t *testing.T) {
	t.Parallel()

	tokyo := time.FixedZone("JST", 9*60*60)
	tracker := NewTracker(tokyo)

	// 2025-04-19 20:00 UTC is already 2025-04-20 in Tokyo.
	now := time.Date(2025, 4, 20, 2, 0, 0, 0, time.UTC)
	timestamps := []time.Time{
		time.Date(2025, 4, 19, 20, 0, 0, 0, time.UTC),
		time.Date(2025, 4, 18, 20, 0, 0, 0, time.UTC),
	}

	inTokyo := tracker.Compute(timestamps, now)
	assert.Equal(t, []string{"2025-04-20", "2025-04-19"}, inTokyo.ActiveDays)
	assert.Equal(t, 2, inTokyo.Current)

	inUTC := Compute(timestamps, now)
	assert.Equal(t, []string{"2025-04-19", "2025-04-18"}, inUTC.ActiveDays)
	assert.Equal(t, 2, inUTC.Current)

	assert.Equal(t, time.UTC, NewTracker(nil).Location())
}

func TestCompute_AcrossDSTTransition(t *testing.T) {
	t.Parallel()

	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("timezone database unavailable")
	}
	tracker := NewTracker(ny)

	// Clocks in New York moved forward on 2025-03-09.
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, ny)
	got := tracker.Compute([]time.Time{
		time.Date(2025, 3, 8, 23, 30, 0, 0, ny),
		time.Date(2025, 3, 9, 23, 30, 0, 0, ny),
		time.Date(2025, 3, 10, 0, 30, 0, 0, ny),
	}, now)

	assert.Equal(t, 3, got.Current)
	assert.Equal(t, 3, got.Longest)
}
