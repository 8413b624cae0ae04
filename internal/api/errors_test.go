package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/phrazzld/scry-review/internal/api/shared"
	"github.com/phrazzld/scry-review/internal/domain"
	"github.com/phrazzld/scry-review/internal/service/auth"
	"github.com/phrazzld/scry-review/internal/service/review"
	"github.com/phrazzld/scry-review/internal/store"
	"github.com/stretchr/testify/assert"
)

func TestMapErrorToStatusCode(t *testing.T) {
	t.Parallel()

	invalidRating := fmt.Errorf("%w: %w", review.ErrInvalidInput, domain.NewValidationError("rating", "unknown"))

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"expired token", auth.ErrExpiredToken, http.StatusUnauthorized},
		{"wrong token type", auth.ErrWrongTokenType, http.StatusUnauthorized},
		{"item not found", review.NewServiceError(review.OpSubmitRating, "x", review.ErrItemNotFound), http.StatusNotFound},
		{"store not found", store.ErrReviewItemNotFound, http.StatusNotFound},
		{"item exists", review.ErrItemExists, http.StatusConflict},
		{"concurrent update", review.ErrConcurrentUpdate, http.StatusConflict},
		{"session not found", review.NewServiceError(review.OpCompleteSession, "x", review.ErrSessionNotFound), http.StatusNotFound},
		{"session completed", review.NewServiceError(review.OpCompleteSession, "x", review.ErrSessionCompleted), http.StatusConflict},
		{"invalid input", invalidRating, http.StatusBadRequest},
		{"domain validation", domain.NewValidationError("days", "too many"), http.StatusBadRequest},
		{"precondition", domain.NewPreconditionError("ease", "below floor"), http.StatusUnprocessableEntity},
		{"unknown", errors.New("disk on fire"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, MapErrorToStatusCode(tt.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, "An unexpected error occurred"},
		{"expired", auth.ErrExpiredToken, "Token expired"},
		{"not found", review.ErrItemNotFound, "Review item not found"},
		{"exists", store.ErrReviewItemExists, "Review item already exists"},
		{"conflict", review.ErrConcurrentUpdate, "Review item was modified concurrently, please retry"},
		{"session not found", store.ErrSessionNotFound, "Review session not found"},
		{"session completed", review.ErrSessionCompleted, "Review session already completed"},
		{
			"field validation",
			fmt.Errorf("%w: %w", review.ErrInvalidInput, domain.NewValidationError("days", "must be between 1 and 365")),
			"Invalid days: must be between 1 and 365",
		},
		{"precondition", domain.NewPreconditionError("ease", "below floor"), "Stored review state is inconsistent"},
		{"internal details hidden", errors.New("pq: relation review_items does not exist"), "An unexpected error occurred"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, GetSafeErrorMessage(tt.err))
		})
	}
}

func TestSanitizeValidationError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		req  any
		want string
	}{
		{"missing rating", &SubmitRatingRequest{}, "Invalid rating: required field"},
		{"unknown rating", &SubmitRatingRequest{Rating: "perfect"}, "Invalid rating: must be one of again, hard, good, easy"},
		{"negative time", &SubmitRatingRequest{Rating: "good", TimeSpentSeconds: -1}, "Invalid time_spent_seconds: must be at least 0"},
		{"postpone too far", &PostponeRequest{Days: 400}, "Invalid days: must be at most 365"},
		{"unknown item type", &CreateItemRequest{ContentID: "c", Type: "essay", Concept: "x"}, "Invalid type: must be one of flashcard, question"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := shared.ValidateRequest(tt.req)
			assert.Equal(t, tt.want, SanitizeValidationError(err))
		})
	}

	assert.Equal(t, "Validation error", SanitizeValidationError(errors.New("boom")))
}

func TestToSnakeCase(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "target_count", toSnakeCase("TargetCount"))
	assert.Equal(t, "days", toSnakeCase("Days"))
	assert.Equal(t, "item_id", toSnakeCase("ItemID"))
}
