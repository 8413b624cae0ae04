package analytics

import (
	"math"
	"time"

	"github.com/phrazzld/scry-review/internal/domain"
	"github.com/phrazzld/scry-review/internal/domain/streak"
)

// Weights of the exam readiness score.
const (
	readinessRetentionWeight = 0.5
	readinessMasteryWeight   = 0.3
	readinessCoverageWeight  = 0.2
)

// Benchmark targets for certification preparation.
const (
	BenchmarkRetention  = 75.0
	BenchmarkMastery    = 80.0
	BenchmarkStudyHours = 40.0
	BenchmarkReadiness  = 85.0
)

// ProgressSummary is a one-screen overview of a learner's progress.
type ProgressSummary struct {
	TotalItems       int     `json:"total_items"`
	ItemsReviewed    int     `json:"items_reviewed"`
	ItemsMastered    int     `json:"items_mastered"`
	TotalReviews     int     `json:"total_reviews"`
	OverallRetention float64 `json:"overall_retention"`
	MasteryPercent   float64 `json:"mastery_percent"`
	CoveragePercent  float64 `json:"coverage_percent"`
	StudyHours       float64 `json:"study_hours"`
	CurrentStreak    int     `json:"current_streak"`
	LongestStreak    int     `json:"longest_streak"`

	// ReviewsToday and ReviewsThisWeek count events since the start of the
	// current calendar day and of the six days before it.
	ReviewsToday    int `json:"reviews_today"`
	ReviewsThisWeek int `json:"reviews_this_week"`

	// ExamReadiness is a 0..100 score weighting retention, mastery share and
	// coverage of the item set.
	ExamReadiness float64 `json:"exam_readiness"`
}

// Summary aggregates states and events into a ProgressSummary. Retention is
// averaged across reviewed items; study time is the sum of recorded recall
// latencies.
func (a *Analyzer) Summary(states []domain.ReviewState, events []domain.ReviewEvent, now time.Time) ProgressSummary {
	summary := ProgressSummary{TotalItems: len(states)}

	var retentionSum, recallSeconds float64
	for _, s := range states {
		summary.TotalReviews += s.TotalReviews
		recallSeconds += s.AverageRecallSeconds * float64(s.TotalReviews)
		if s.TotalReviews == 0 {
			continue
		}
		summary.ItemsReviewed++
		retention := s.Retention()
		retentionSum += retention
		if a.thresholds.Tier(retention) == domain.TierMastered {
			summary.ItemsMastered++
		}
	}

	if summary.ItemsReviewed > 0 {
		summary.OverallRetention = retentionSum / float64(summary.ItemsReviewed)
	}
	if summary.TotalItems > 0 {
		summary.MasteryPercent = 100 * float64(summary.ItemsMastered) / float64(summary.TotalItems)
		summary.CoveragePercent = 100 * float64(summary.ItemsReviewed) / float64(summary.TotalItems)
	}
	summary.StudyHours = math.Round(recallSeconds/3600*10) / 10

	today := streak.DayStart(now, a.loc)
	weekStart := today.AddDate(0, 0, -6)
	timestamps := make([]time.Time, 0, len(events))
	for _, e := range events {
		timestamps = append(timestamps, e.ReviewedAt)
		if e.ReviewedAt.After(now) {
			continue
		}
		if !e.ReviewedAt.Before(today) {
			summary.ReviewsToday++
		}
		if !e.ReviewedAt.Before(weekStart) {
			summary.ReviewsThisWeek++
		}
	}
	streaks := streak.NewTracker(a.loc).Compute(timestamps, now)
	summary.CurrentStreak = streaks.Current
	summary.LongestStreak = streaks.Longest

	readiness := summary.OverallRetention*readinessRetentionWeight +
		summary.MasteryPercent*readinessMasteryWeight +
		summary.CoveragePercent*readinessCoverageWeight
	summary.ExamReadiness = math.Min(100, math.Round(readiness))

	return summary
}

// LearningVelocity counts items at mastered tier whose last review fell in
// each of the past weeks, oldest week first.
func (a *Analyzer) LearningVelocity(states []domain.ReviewState, weeks int, now time.Time) []int {
	if weeks <= 0 {
		return []int{}
	}

	velocity := make([]int, weeks)
	end := streak.DayStart(now, a.loc).AddDate(0, 0, 1)
	for _, s := range states {
		if s.LastReviewedAt == nil || a.thresholds.Tier(s.Retention()) != domain.TierMastered {
			continue
		}
		for w := 0; w < weeks; w++ {
			weekEnd := end.AddDate(0, 0, -7*w)
			weekStart := weekEnd.AddDate(0, 0, -7)
			if !s.LastReviewedAt.Before(weekStart) && s.LastReviewedAt.Before(weekEnd) {
				velocity[weeks-1-w]++
				break
			}
		}
	}

	return velocity
}

// Readiness predicts how long until the learner reaches a readiness target.
type Readiness struct {
	Ready bool `json:"ready"`

	// DaysNeeded is nil when there is no mastery velocity to extrapolate.
	DaysNeeded *int `json:"days_needed,omitempty"`

	WeeklyVelocity float64 `json:"weekly_velocity"`
}

// PredictReadiness extrapolates the average weekly mastery rate to estimate
// the days needed to master the remaining items.
func PredictReadiness(summary ProgressSummary, velocity []int, target float64) Readiness {
	if summary.ExamReadiness >= target {
		zero := 0
		return Readiness{Ready: true, DaysNeeded: &zero}
	}

	var total int
	for _, v := range velocity {
		total += v
	}
	if len(velocity) == 0 || total == 0 {
		return Readiness{}
	}

	avg := float64(total) / float64(len(velocity))
	remaining := summary.TotalItems - summary.ItemsMastered
	days := int(math.Ceil(float64(remaining)/avg)) * 7

	return Readiness{DaysNeeded: &days, WeeklyVelocity: avg}
}

// Benchmark compares one summary metric against its preparation target.
type Benchmark struct {
	Metric         string  `json:"metric"`
	UserValue      float64 `json:"user_value"`
	BenchmarkValue float64 `json:"benchmark_value"`
	Percentile     float64 `json:"percentile"`
	Meets          bool    `json:"meets"`
}

// CompareBenchmarks reports the summary against the preparation targets.
func CompareBenchmarks(summary ProgressSummary) []Benchmark {
	build := func(metric string, value, target float64) Benchmark {
		return Benchmark{
			Metric:         metric,
			UserValue:      value,
			BenchmarkValue: target,
			Percentile:     math.Min(100, value/target*100),
			Meets:          value >= target,
		}
	}

	return []Benchmark{
		build("overall_retention", summary.OverallRetention, BenchmarkRetention),
		build("concepts_mastered", summary.MasteryPercent, BenchmarkMastery),
		build("study_hours", summary.StudyHours, BenchmarkStudyHours),
		build("exam_readiness", summary.ExamReadiness, BenchmarkReadiness),
	}
}
