// Package srs implements the SM-2 family scheduler that decides when an item
// must next be reviewed. Every function in the package is pure: it takes a
// state, a rating and a timestamp and returns a new state without touching
// the input.
package srs

import (
	"fmt"
	"math"
	"time"

	"github.com/phrazzld/scry-review/internal/domain"
)

// Service defines the scheduling operations.
type Service interface {
	// Schedule computes the state that follows a rating given at now.
	// recallSeconds is the response latency folded into the running mean.
	//
	// Returns a ValidationError for an unknown rating or a negative latency,
	// and a PreconditionError when state breaks a scheduling invariant.
	Schedule(
		state domain.ReviewState,
		rating domain.Rating,
		now time.Time,
		recallSeconds float64,
	) (domain.ReviewState, error)

	// Postpone pushes the due date forward by whole days, counted from the
	// later of the current due date and now.
	Postpone(state domain.ReviewState, days int, now time.Time) (domain.ReviewState, error)

	// Params exposes the parameters the service schedules with.
	Params() Params
}

// defaultService is the standard implementation of the Service interface
type defaultService struct {
	params *Params
}

// NewDefaultService creates a new scheduler with default parameters
func NewDefaultService() Service {
	return &defaultService{
		params: NewDefaultParams(),
	}
}

// NewServiceWithParams creates a new scheduler with custom parameters
func NewServiceWithParams(params *Params) Service {
	if params == nil {
		params = NewDefaultParams()
	}
	return &defaultService{
		params: params,
	}
}

// Schedule implements Service.
func (s *defaultService) Schedule(
	state domain.ReviewState,
	rating domain.Rating,
	now time.Time,
	recallSeconds float64,
) (domain.ReviewState, error) {
	if !rating.IsValid() {
		return domain.ReviewState{}, domain.NewValidationError("rating",
			fmt.Sprintf("unknown rating %q", rating))
	}
	if recallSeconds < 0 || math.IsNaN(recallSeconds) || math.IsInf(recallSeconds, 0) {
		return domain.ReviewState{}, domain.NewValidationError("recall_seconds",
			"must be a non-negative number")
	}
	if err := state.Validate(s.params.MinEaseFactor); err != nil {
		return domain.ReviewState{}, err
	}

	return calculateNextState(state, rating, now, recallSeconds, s.params), nil
}

// Postpone implements Service.
func (s *defaultService) Postpone(
	state domain.ReviewState,
	days int,
	now time.Time,
) (domain.ReviewState, error) {
	if days < 1 {
		return domain.ReviewState{}, domain.NewValidationError("days", "must be at least 1")
	}
	if err := state.Validate(s.params.MinEaseFactor); err != nil {
		return domain.ReviewState{}, err
	}

	next := state
	base := state.DueAt
	if now.After(base) {
		base = now
	}
	next.DueAt = base.AddDate(0, 0, days)

	return next, nil
}

// Params implements Service.
func (s *defaultService) Params() Params {
	return *s.params
}
