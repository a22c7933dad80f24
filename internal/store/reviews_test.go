package store

import (
	"context"
	"testing"

	"sublet/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_AddReview(t *testing.T) {
	s := newTestStore(t)
	r, err := sessionAs(t, s, 4).AddReview(context.Background(), models.ReviewDraft{ReviewedUserID: 2, Rating: 4, Comment: "Responsive"})
	require.NoError(t, err)
	assert.Equal(t, uint(2), r.ID)
	assert.Equal(t, uint(4), r.ReviewerID)
	assert.Len(t, s.ReviewsFor(2), 2)

	u, err := s.User(2)
	require.NoError(t, err)
	assert.Zero(t, u.ReviewCount, "seeded aggregates are not recomputed")
}

func TestSession_AddReview_Validation(t *testing.T) {
	tests := []struct {
		name  string
		draft models.ReviewDraft
		code  string
	}{
		{"rating too low", models.ReviewDraft{ReviewedUserID: 2, Rating: 0}, models.CodeValidation},
		{"rating too high", models.ReviewDraft{ReviewedUserID: 2, Rating: 6}, models.CodeValidation},
		{"self review", models.ReviewDraft{ReviewedUserID: 3, Rating: 5}, models.CodeValidation},
		{"unknown user", models.ReviewDraft{ReviewedUserID: 50, Rating: 5}, models.CodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(t)
			_, err := sessionAs(t, s, 3).AddReview(context.Background(), tt.draft)
			requireCode(t, err, tt.code)
			assert.Len(t, s.Reviews(), 1)
		})
	}
}
