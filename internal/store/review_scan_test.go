package store

import (
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-review/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestValidateRow(t *testing.T) {
	t.Parallel()

	valid := func() *ReviewRow {
		return &ReviewRow{ID: uuid.New(), UserID: uuid.New(), ContentID: "c1", ItemType: "flashcard"}
	}

	testCases := []struct {
		name   string
		mutate func(r *ReviewRow) *ReviewRow
		ok     bool
	}{
		{name: "valid", mutate: func(r *ReviewRow) *ReviewRow { return r }, ok: true},
		{name: "nil", mutate: func(*ReviewRow) *ReviewRow { return nil }},
		{name: "no id", mutate: func(r *ReviewRow) *ReviewRow { r.ID = uuid.Nil; return r }},
		{name: "no user", mutate: func(r *ReviewRow) *ReviewRow { r.UserID = uuid.Nil; return r }},
		{name: "no content", mutate: func(r *ReviewRow) *ReviewRow { r.ContentID = ""; return r }},
		{name: "bad type", mutate: func(r *ReviewRow) *ReviewRow { r.ItemType = "essay"; return r }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := ValidateRow(tc.mutate(valid()))
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidEntity)
			}
		})
	}
}

func TestValidateEvent(t *testing.T) {
	t.Parallel()

	event := domain.ReviewEvent{
		ID:         uuid.New(),
		UserID:     uuid.New(),
		ItemID:     "item",
		Rating:     domain.RatingEasy,
		ReviewedAt: time.Now(),
	}
	assert.NoError(t, ValidateEvent(&event))
	assert.ErrorIs(t, ValidateEvent(nil), ErrInvalidEntity)

	noItem := event
	noItem.ItemID = ""
	assert.ErrorIs(t, ValidateEvent(&noItem), ErrInvalidEntity)

	badRating := event
	badRating.Rating = "perfect"
	assert.ErrorIs(t, ValidateEvent(&badRating), ErrInvalidEntity)
}

func TestValidateSession(t *testing.T) {
	t.Parallel()

	session, err := domain.NewReviewSession(uuid.New(), domain.SessionMixed, 15, time.Now())
	assert.NoError(t, err)
	assert.NoError(t, ValidateSession(session))
	assert.ErrorIs(t, ValidateSession(nil), ErrInvalidEntity)

	noUser := *session
	noUser.UserID = uuid.Nil
	assert.ErrorIs(t, ValidateSession(&noUser), ErrInvalidEntity)

	badType := *session
	badType.Type = "marathon"
	assert.ErrorIs(t, ValidateSession(&badType), ErrInvalidEntity)
}

func TestSessionArgs(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.FixedZone("EST", -5*3600))
	session, err := domain.NewReviewSession(uuid.New(), domain.SessionQuestions, 0, start)
	assert.NoError(t, err)

	args := SessionArgs(session)
	assert.Len(t, args, 12)
	assert.Equal(t, "questions", args[2])
	assert.False(t, args[5].(sql.NullTime).Valid, "an open session has no completion time")

	assert.NoError(t, session.Complete(domain.SessionResult{CorrectCount: 1, TotalCount: 2}, start.Add(time.Hour)))
	args = SessionArgs(session)
	completed := args[5].(sql.NullTime)
	assert.True(t, completed.Valid)
	assert.Equal(t, time.UTC, completed.Time.Location())
	assert.Equal(t, 50.0, args[11])
}

func TestTags(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "vpc,subnets", JoinTags([]string{" vpc", "", "subnets "}))
	assert.Equal(t, "", JoinTags(nil))
	assert.Equal(t, []string{"vpc", "subnets"}, SplitTags("vpc,subnets"))
	assert.Nil(t, SplitTags(""))
}
