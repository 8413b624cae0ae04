// Package queue builds review sessions from the items that are due.
//
// Items are due when their due date is at or before now. They are ordered
// most overdue first, which favors the items at the greatest risk of being
// forgotten. Mixed sessions alternate between flashcards and questions so a
// session never becomes a long run of one type.
package queue

import (
	"fmt"
	"sort"
	"time"

	"github.com/phrazzld/scry-review/internal/domain"
)

// Mode selects which item types a session draws from.
type Mode string

// Possible session modes
const (
	ModeMixed      Mode = "mixed"
	ModeFlashcards Mode = "flashcards"
	ModeQuestions  Mode = "questions"
)

// IsValid reports whether m is a known mode.
func (m Mode) IsValid() bool {
	return m == ModeMixed || m == ModeFlashcards || m == ModeQuestions
}

// Budget bounds a session. Zero fields are unlimited.
type Budget struct {
	MaxItems   int `json:"max_items,omitempty"`
	MaxMinutes int `json:"max_minutes,omitempty"`
}

// Durations are the estimated time to review one item of each type.
type Durations struct {
	Flashcard time.Duration
	Question  time.Duration
}

// DefaultDurations returns 30 seconds per flashcard and 90 seconds per
// question.
func DefaultDurations() Durations {
	return Durations{Flashcard: 30 * time.Second, Question: 90 * time.Second}
}

func (d Durations) of(t domain.ItemType) time.Duration {
	if t == domain.ItemTypeQuestion {
		return d.Question
	}
	return d.Flashcard
}

// Entry is one item in a session queue.
type Entry struct {
	ItemID string          `json:"item_id"`
	Type   domain.ItemType `json:"type"`
	DueAt  time.Time       `json:"due_at"`
}

// SessionQueue is an ordered review session.
type SessionQueue struct {
	Items            []Entry       `json:"items"`
	EstimatedSeconds int           `json:"estimated_seconds"`
	Mode             Mode          `json:"mode"`
	Estimated        time.Duration `json:"-"`
}

// Builder composes session queues.
type Builder struct {
	durations Durations
}

// NewBuilder creates a builder. Non-positive durations fall back to the
// defaults.
func NewBuilder(durations Durations) *Builder {
	defaults := DefaultDurations()
	if durations.Flashcard <= 0 {
		durations.Flashcard = defaults.Flashcard
	}
	if durations.Question <= 0 {
		durations.Question = defaults.Question
	}
	return &Builder{durations: durations}
}

// Build selects the items due at now, orders and interleaves them for mode,
// and admits them in order until the budget is reached. An item is never
// admitted when its estimated duration would exceed MaxMinutes. An empty
// due set yields an empty queue.
func (b *Builder) Build(states []domain.ReviewState, mode Mode, budget Budget, now time.Time) (SessionQueue, error) {
	if !mode.IsValid() {
		return SessionQueue{}, domain.NewValidationError("mode", fmt.Sprintf("unknown mode %q", mode))
	}
	if budget.MaxItems < 0 {
		return SessionQueue{}, domain.NewValidationError("max_items", "must not be negative")
	}
	if budget.MaxMinutes < 0 {
		return SessionQueue{}, domain.NewValidationError("max_minutes", "must not be negative")
	}

	var flashcards, questions []Entry
	for _, s := range states {
		if !s.IsDue(now) {
			continue
		}
		e := Entry{ItemID: s.ItemID, Type: s.Type, DueAt: s.DueAt}
		switch s.Type {
		case domain.ItemTypeFlashcard:
			flashcards = append(flashcards, e)
		case domain.ItemTypeQuestion:
			questions = append(questions, e)
		}
	}
	sortByDue(flashcards)
	sortByDue(questions)

	var ordered []Entry
	switch mode {
	case ModeFlashcards:
		ordered = flashcards
	case ModeQuestions:
		ordered = questions
	default:
		ordered = interleave(flashcards, questions)
	}

	queue := SessionQueue{Items: make([]Entry, 0, len(ordered)), Mode: mode}
	limit := time.Duration(budget.MaxMinutes) * time.Minute
	for _, e := range ordered {
		if budget.MaxItems > 0 && len(queue.Items) >= budget.MaxItems {
			break
		}
		cost := b.durations.of(e.Type)
		if budget.MaxMinutes > 0 && queue.Estimated+cost > limit {
			break
		}
		queue.Items = append(queue.Items, e)
		queue.Estimated += cost
	}
	queue.EstimatedSeconds = int(queue.Estimated / time.Second)

	return queue, nil
}

// sortByDue orders entries most overdue first, breaking ties by item ID.
func sortByDue(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].DueAt.Equal(entries[j].DueAt) {
			return entries[i].DueAt.Before(entries[j].DueAt)
		}
		return entries[i].ItemID < entries[j].ItemID
	})
}

// interleave merges two due-ordered lists round-robin. The list whose head
// is more overdue goes first; once one list runs out the rest of the other
// follows in order.
func interleave(a, b []Entry) []Entry {
	merged := make([]Entry, 0, len(a)+len(b))
	if len(a) > 0 && len(b) > 0 && b[0].DueAt.Before(a[0].DueAt) {
		a, b = b, a
	}

	i, j := 0, 0
	for i < len(a) || j < len(b) {
		if i < len(a) {
			merged = append(merged, a[i])
			i++
		}
		if j < len(b) {
			merged = append(merged, b[j])
			j++
		}
	}
	return merged
}
