package store

import (
	"context"
	"slices"
	"strings"

	"sublet/internal/models"
)

func validateListing(l models.Listing) error {
	if strings.TrimSpace(l.Title) == "" {
		return models.NewValidationError("title is required")
	}
	if l.MonthlyRent <= 0 {
		return models.NewValidationError("monthly rent must be positive")
	}
	if !l.AvailableFrom.IsZero() && !l.AvailableTo.IsZero() && l.AvailableTo.Before(l.AvailableFrom) {
		return models.NewValidationError("available_to cannot be before available_from")
	}
	if !l.Status.Valid() {
		return models.NewValidationError("unknown listing status " + string(l.Status))
	}
	return nil
}

func (s *Store) createListing(ctx context.Context, actor models.User, draft models.ListingDraft) (listing models.Listing, err error) {
	ctx, done := s.begin(ctx, collListings, "create")
	defer func() { done(err) }()

	listing = draft.ToListing()
	listing.OwnerID = actor.ID
	listing.Status = models.ListingStatusAvailable
	listing.Verified = false
	listing.Views = 0
	if err := validateListing(listing); err != nil {
		return models.Listing{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastListingID++
	listing.ID = s.lastListingID
	listing.CreatedAt = s.now()
	s.listings = append(s.listings, listing)
	s.publishSizes()

	s.logs[collListings].LogMutation(ctx, "create", map[string]interface{}{
		"listing_id": listing.ID,
		"owner_id":   actor.ID,
	})
	return listing.Clone(), nil
}

func (s *Store) patchListing(ctx context.Context, actor models.User, id uint, patch models.ListingPatch) (listing models.Listing, err error) {
	ctx, done := s.begin(ctx, collListings, "patch")
	defer func() { done(err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.listingIndex(id)
	if i < 0 {
		return models.Listing{}, models.NewNotFoundError("Listing", id)
	}
	current := s.listings[i]
	if current.OwnerID != actor.ID && !actor.IsAdmin() {
		return models.Listing{}, models.NewForbiddenError("only the owner or an admin can edit this listing")
	}
	if patch.Verified != nil && *patch.Verified != current.Verified && !actor.IsAdmin() {
		return models.Listing{}, models.NewForbiddenError("only an admin can change verification")
	}

	updated := current.Clone()
	patch.Apply(&updated)
	updated.ID = current.ID
	updated.OwnerID = current.OwnerID
	if err := validateListing(updated); err != nil {
		return models.Listing{}, err
	}
	s.listings[i] = updated

	s.logs[collListings].LogMutation(ctx, "patch", map[string]interface{}{
		"listing_id": id,
		"actor_id":   actor.ID,
		"status":     string(updated.Status),
	})
	return updated.Clone(), nil
}

// RecordView counts a detail view of a listing. Views by the owner are ignored.
// viewerID is 0 for anonymous viewers.
func (s *Store) RecordView(ctx context.Context, listingID, viewerID uint) (err error) {
	_, done := s.begin(ctx, collListings, "view")
	defer func() { done(err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.listingIndex(listingID)
	if i < 0 {
		return models.NewNotFoundError("Listing", listingID)
	}
	if s.listings[i].OwnerID != viewerID {
		s.listings[i].Views++
	}
	return nil
}

// Listing returns the listing with id.
func (s *Store) Listing(id uint) (models.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.listingIndex(id)
	if i < 0 {
		return models.Listing{}, models.NewNotFoundError("Listing", id)
	}
	return s.listings[i].Clone(), nil
}

// Listings returns every listing in creation order.
func (s *Store) Listings() []models.Listing {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listingsWhere(func(models.Listing) bool { return true })
}

// ListingsOwnedBy returns the listings whose owner is userID.
func (s *Store) ListingsOwnedBy(userID uint) []models.Listing {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listingsWhere(func(l models.Listing) bool { return l.OwnerID == userID })
}

// RecentAvailable returns up to n available listings, newest first.
func (s *Store) RecentAvailable(n int) []models.Listing {
	s.mu.RLock()
	available := s.listingsWhere(func(l models.Listing) bool { return l.Status == models.ListingStatusAvailable })
	s.mu.RUnlock()

	slices.SortStableFunc(available, func(a, b models.Listing) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if n >= 0 && len(available) > n {
		available = available[:n]
	}
	return available
}

// StatusCounts is the per-status tally of a set of listings.
type StatusCounts struct {
	All       int `json:"all"`
	Available int `json:"available"`
	Pending   int `json:"pending"`
	Rented    int `json:"rented"`
}

func (c *StatusCounts) add(status models.ListingStatus) {
	c.All++
	switch status {
	case models.ListingStatusAvailable:
		c.Available++
	case models.ListingStatusPending:
		c.Pending++
	case models.ListingStatusRented:
		c.Rented++
	}
}

// ListingStatusCounts tallies the listings owned by ownerID by status.
func (s *Store) ListingStatusCounts(ownerID uint) StatusCounts {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var counts StatusCounts
	for _, l := range s.listings {
		if l.OwnerID == ownerID {
			counts.add(l.Status)
		}
	}
	return counts
}

// listingsWhere must be called with the lock held.
func (s *Store) listingsWhere(keep func(models.Listing) bool) []models.Listing {
	out := make([]models.Listing, 0)
	for _, l := range s.listings {
		if keep(l) {
			out = append(out, l.Clone())
		}
	}
	return out
}
