package store

import (
	"context"
	"slices"

	"sublet/internal/models"
)

func (s *Store) addReview(ctx context.Context, actor models.User, draft models.ReviewDraft) (review models.Review, err error) {
	ctx, done := s.begin(ctx, collReviews, "create")
	defer func() { done(err) }()

	if draft.Rating < models.MinRating || draft.Rating > models.MaxRating {
		return models.Review{}, models.NewValidationError("rating must be between 1 and 5")
	}
	if draft.ReviewedUserID == actor.ID {
		return models.Review{}, models.NewValidationError("cannot review yourself")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.userIndex(draft.ReviewedUserID) < 0 {
		return models.Review{}, models.NewNotFoundError("User", draft.ReviewedUserID)
	}

	s.lastReviewID++
	review = models.Review{
		ID:             s.lastReviewID,
		ReviewerID:     actor.ID,
		ReviewedUserID: draft.ReviewedUserID,
		Rating:         draft.Rating,
		Comment:        draft.Comment,
		CreatedAt:      s.now(),
	}
	s.reviews = append(s.reviews, review)
	s.publishSizes()

	s.logs[collReviews].LogMutation(ctx, "create", map[string]interface{}{
		"review_id":        review.ID,
		"reviewer_id":      actor.ID,
		"reviewed_user_id": review.ReviewedUserID,
	})
	return review, nil
}

// Reviews returns every review in creation order.
func (s *Store) Reviews() []models.Review {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.reviews)
}

// ReviewsFor returns the reviews received by userID.
func (s *Store) ReviewsFor(userID uint) []models.Review {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return filter(s.reviews, func(r models.Review) bool { return r.ReviewedUserID == userID })
}
