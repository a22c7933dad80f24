package store

import (
	"context"
	"slices"

	"sublet/internal/models"
)

func (s *Store) toggleFavorite(ctx context.Context, actor models.User, listingID uint) (member bool, err error) {
	ctx, done := s.begin(ctx, collFavorites, "toggle")
	defer func() { done(err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listingIndex(listingID) < 0 {
		return false, models.NewNotFoundError("Listing", listingID)
	}

	pair := models.Favorite{UserID: actor.ID, ListingID: listingID}
	if i := slices.Index(s.favorites, pair); i >= 0 {
		s.favorites = slices.Delete(s.favorites, i, i+1)
	} else {
		s.favorites = append(s.favorites, pair)
		member = true
	}
	s.publishSizes()

	s.logs[collFavorites].LogMutation(ctx, "toggle", map[string]interface{}{
		"user_id":    actor.ID,
		"listing_id": listingID,
		"favorite":   member,
	})
	return member, nil
}

// IsFavorite reports whether userID has favorited listingID.
func (s *Store) IsFavorite(userID, listingID uint) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Contains(s.favorites, models.Favorite{UserID: userID, ListingID: listingID})
}

// Favorites returns every favorite pair.
func (s *Store) Favorites() []models.Favorite {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.favorites)
}

// FavoriteListingsOf returns the listings userID has favorited, in listing order.
func (s *Store) FavoriteListingsOf(userID uint) []models.Listing {
	s.mu.RLock()
	defer s.mu.RUnlock()
	saved := make(map[uint]struct{})
	for _, f := range s.favorites {
		if f.UserID == userID {
			saved[f.ListingID] = struct{}{}
		}
	}
	return s.listingsWhere(func(l models.Listing) bool {
		_, ok := saved[l.ID]
		return ok
	})
}
