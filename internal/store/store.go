// Package store holds the marketplace's authoritative in-memory state and the
// views derived from it.
package store

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"sublet/internal/models"
	"sublet/internal/observability"
)

// Seed is the complete initial content of a Store. It doubles as the export format.
type Seed struct {
	Users        []models.User        `json:"users" yaml:"users"`
	Listings     []models.Listing     `json:"listings" yaml:"listings"`
	Applications []models.Application `json:"applications" yaml:"applications"`
	Favorites    []models.Favorite    `json:"favorites" yaml:"favorites"`
	Messages     []models.Message     `json:"messages" yaml:"messages"`
	Reviews      []models.Review      `json:"reviews" yaml:"reviews"`
	Reports      []models.Report      `json:"reports" yaml:"reports"`
}

// Counts returns the number of records per collection.
func (s Seed) Counts() map[string]int {
	return map[string]int{
		collUsers:        len(s.Users),
		collListings:     len(s.Listings),
		collApplications: len(s.Applications),
		collFavorites:    len(s.Favorites),
		collMessages:     len(s.Messages),
		collReviews:      len(s.Reviews),
		collReports:      len(s.Reports),
	}
}

const (
	collUsers        = "users"
	collListings     = "listings"
	collApplications = "applications"
	collFavorites    = "favorites"
	collMessages     = "messages"
	collReviews      = "reviews"
	collReports      = "reports"
)

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for created_at and timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithSpans sets the span source for mutations.
func WithSpans(sp *observability.Spans) Option {
	return func(s *Store) {
		s.spans = sp
	}
}

// Store is the single holder of every collection. All methods are safe for
// concurrent use and return copies.
type Store struct {
	mu sync.RWMutex

	users        []models.User
	listings     []models.Listing
	applications []models.Application
	favorites    []models.Favorite
	messages     []models.Message
	reviews      []models.Review
	reports      []models.Report

	// last assigned id per collection; never reused
	lastListingID     uint
	lastApplicationID uint
	lastMessageID     uint
	lastReviewID      uint

	now   func() time.Time
	spans *observability.Spans
	logs  map[string]*observability.StoreLogger
}

// New builds a Store from seed. Duplicate ids or favorite pairs are rejected.
func New(seed Seed, opts ...Option) (*Store, error) {
	if err := validateSeed(seed); err != nil {
		return nil, err
	}

	s := &Store{
		now: time.Now,
		logs: map[string]*observability.StoreLogger{
			collUsers:        observability.NewStoreLogger(collUsers),
			collListings:     observability.NewStoreLogger(collListings),
			collApplications: observability.NewStoreLogger(collApplications),
			collFavorites:    observability.NewStoreLogger(collFavorites),
			collMessages:     observability.NewStoreLogger(collMessages),
			collReviews:      observability.NewStoreLogger(collReviews),
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.spans == nil {
		s.spans = observability.DefaultSpans()
	}

	copied := cloneSeed(seed)
	s.users = copied.Users
	s.listings = copied.Listings
	s.applications = copied.Applications
	s.favorites = copied.Favorites
	s.messages = copied.Messages
	s.reviews = copied.Reviews
	s.reports = copied.Reports

	s.lastListingID = maxID(s.listings, func(l models.Listing) uint { return l.ID })
	s.lastApplicationID = maxID(s.applications, func(a models.Application) uint { return a.ID })
	s.lastMessageID = maxID(s.messages, func(m models.Message) uint { return m.ID })
	s.lastReviewID = maxID(s.reviews, func(r models.Review) uint { return r.ID })

	s.publishSizes()
	return s, nil
}

func validateSeed(seed Seed) error {
	if err := uniqueIDs(collUsers, seed.Users, func(u models.User) uint { return u.ID }); err != nil {
		return err
	}
	if err := uniqueIDs(collListings, seed.Listings, func(l models.Listing) uint { return l.ID }); err != nil {
		return err
	}
	if err := uniqueIDs(collApplications, seed.Applications, func(a models.Application) uint { return a.ID }); err != nil {
		return err
	}
	if err := uniqueIDs(collMessages, seed.Messages, func(m models.Message) uint { return m.ID }); err != nil {
		return err
	}
	if err := uniqueIDs(collReviews, seed.Reviews, func(r models.Review) uint { return r.ID }); err != nil {
		return err
	}
	if err := uniqueIDs(collReports, seed.Reports, func(r models.Report) uint { return r.ID }); err != nil {
		return err
	}
	seen := make(map[models.Favorite]struct{}, len(seed.Favorites))
	for _, f := range seed.Favorites {
		if _, dup := seen[f]; dup {
			return fmt.Errorf("seed favorites: duplicate pair user %d listing %d", f.UserID, f.ListingID)
		}
		seen[f] = struct{}{}
	}
	return nil
}

func uniqueIDs[T any](collection string, items []T, id func(T) uint) error {
	seen := make(map[uint]struct{}, len(items))
	for _, item := range items {
		v := id(item)
		if v == 0 {
			return fmt.Errorf("seed %s: id must be positive", collection)
		}
		if _, dup := seen[v]; dup {
			return fmt.Errorf("seed %s: duplicate id %d", collection, v)
		}
		seen[v] = struct{}{}
	}
	return nil
}

func maxID[T any](items []T, id func(T) uint) uint {
	var m uint
	for _, item := range items {
		m = max(m, id(item))
	}
	return m
}

func cloneSeed(seed Seed) Seed {
	listings := make([]models.Listing, len(seed.Listings))
	for i, l := range seed.Listings {
		listings[i] = l.Clone()
	}
	return Seed{
		Users:        slices.Clone(seed.Users),
		Listings:     listings,
		Applications: slices.Clone(seed.Applications),
		Favorites:    slices.Clone(seed.Favorites),
		Messages:     slices.Clone(seed.Messages),
		Reviews:      slices.Clone(seed.Reviews),
		Reports:      slices.Clone(seed.Reports),
	}
}

// Snapshot returns a deep copy of every collection.
func (s *Store) Snapshot() Seed {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSeed(Seed{
		Users:        s.users,
		Listings:     s.listings,
		Applications: s.applications,
		Favorites:    s.favorites,
		Messages:     s.messages,
		Reviews:      s.reviews,
		Reports:      s.reports,
	})
}

// publishSizes must be called with the write lock held or before the store is shared.
func (s *Store) publishSizes() {
	observability.StoreRecords.WithLabelValues(collUsers).Set(float64(len(s.users)))
	observability.StoreRecords.WithLabelValues(collListings).Set(float64(len(s.listings)))
	observability.StoreRecords.WithLabelValues(collApplications).Set(float64(len(s.applications)))
	observability.StoreRecords.WithLabelValues(collFavorites).Set(float64(len(s.favorites)))
	observability.StoreRecords.WithLabelValues(collMessages).Set(float64(len(s.messages)))
	observability.StoreRecords.WithLabelValues(collReviews).Set(float64(len(s.reviews)))
	observability.StoreRecords.WithLabelValues(collReports).Set(float64(len(s.reports)))
}

// begin opens a span for a mutation. The returned func records the outcome.
func (s *Store) begin(ctx context.Context, collection, operation string) (context.Context, func(error)) {
	ctx, span := s.spans.Mutation(ctx, collection, operation)
	return ctx, func(err error) {
		observability.RecordMutation(collection, operation, err)
		if err != nil {
			s.logs[collection].LogRejected(ctx, operation, err)
		}
		observability.Finish(span, err)
	}
}

func (s *Store) userIndex(id uint) int {
	return slices.IndexFunc(s.users, func(u models.User) bool { return u.ID == id })
}

func (s *Store) listingIndex(id uint) int {
	return slices.IndexFunc(s.listings, func(l models.Listing) bool { return l.ID == id })
}

func (s *Store) applicationIndex(id uint) int {
	return slices.IndexFunc(s.applications, func(a models.Application) bool { return a.ID == id })
}

// User returns the user with id.
func (s *Store) User(id uint) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.userIndex(id)
	if i < 0 {
		return models.User{}, models.NewNotFoundError("User", id)
	}
	return s.users[i], nil
}

// Users returns every user in seed order.
func (s *Store) Users() []models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.users)
}

// UpdateProfile merges patch into the user's profile.
func (s *Store) UpdateProfile(ctx context.Context, userID uint, patch models.ProfilePatch) (user models.User, err error) {
	ctx, done := s.begin(ctx, collUsers, "update_profile")
	defer func() { done(err) }()

	if patch.FirstName != nil && *patch.FirstName == "" {
		return models.User{}, models.NewValidationError("first name cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.userIndex(userID)
	if i < 0 {
		return models.User{}, models.NewNotFoundError("User", userID)
	}
	patch.Apply(&s.users[i])
	s.logs[collUsers].LogMutation(ctx, "update_profile", map[string]interface{}{"user_id": userID})
	return s.users[i], nil
}

// Reports returns every report in seed order.
func (s *Store) Reports() []models.Report {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.reports)
}

// ReportsByStatus returns the reports in the given moderation state.
func (s *Store) ReportsByStatus(status models.ReportStatus) []models.Report {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return filter(s.reports, func(r models.Report) bool { return r.Status == status })
}

func filter[T any](items []T, keep func(T) bool) []T {
	out := make([]T, 0)
	for _, item := range items {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}
