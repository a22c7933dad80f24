package store

import (
	"context"
	"sync"

	"sublet/internal/models"
)

// Session is the current-user identity for one caller of a Store. Mutations
// made through a Session act as its user.
type Session struct {
	store *Store

	mu     sync.Mutex
	userID uint
}

// NewSession returns a Session with no user.
func (s *Store) NewSession() *Session {
	return &Session{store: s}
}

// SessionFor returns a Session already identified as userID.
func (s *Store) SessionFor(ctx context.Context, userID uint) (*Session, error) {
	se := s.NewSession()
	if _, err := se.Identify(ctx, userID); err != nil {
		return nil, err
	}
	return se, nil
}

// Identify sets the session user. Unknown ids leave the session unchanged.
func (se *Session) Identify(ctx context.Context, userID uint) (models.User, error) {
	user, err := se.store.User(userID)
	if err != nil {
		return models.User{}, err
	}
	se.mu.Lock()
	se.userID = user.ID
	se.mu.Unlock()
	se.store.logs[collUsers].LogMutation(ctx, "identify", map[string]interface{}{"user_id": user.ID})
	return user, nil
}

// End clears the session user.
func (se *Session) End() {
	se.mu.Lock()
	se.userID = 0
	se.mu.Unlock()
}

// Current returns the session user, read fresh from the store.
func (se *Session) Current() (models.User, bool) {
	se.mu.Lock()
	id := se.userID
	se.mu.Unlock()
	if id == 0 {
		return models.User{}, false
	}
	user, err := se.store.User(id)
	if err != nil {
		return models.User{}, false
	}
	return user, true
}

func (se *Session) actor() (models.User, error) {
	user, ok := se.Current()
	if !ok {
		return models.User{}, models.NewUnauthorizedError("no current user")
	}
	return user, nil
}

// CreateListing creates a listing owned by the session user.
func (se *Session) CreateListing(ctx context.Context, draft models.ListingDraft) (models.Listing, error) {
	actor, err := se.actor()
	if err != nil {
		return models.Listing{}, err
	}
	return se.store.createListing(ctx, actor, draft)
}

// PatchListing updates a listing the session user owns, or any listing for admins.
func (se *Session) PatchListing(ctx context.Context, id uint, patch models.ListingPatch) (models.Listing, error) {
	actor, err := se.actor()
	if err != nil {
		return models.Listing{}, err
	}
	return se.store.patchListing(ctx, actor, id, patch)
}

// SubmitApplication applies to a listing as the session user.
func (se *Session) SubmitApplication(ctx context.Context, draft models.ApplicationDraft) (models.Application, error) {
	actor, err := se.actor()
	if err != nil {
		return models.Application{}, err
	}
	return se.store.submitApplication(ctx, actor, draft)
}

// SetApplicationStatus moves an application to status on behalf of the session user.
func (se *Session) SetApplicationStatus(ctx context.Context, id uint, status models.ApplicationStatus) (models.Application, error) {
	actor, err := se.actor()
	if err != nil {
		return models.Application{}, err
	}
	return se.store.setApplicationStatus(ctx, actor, id, status)
}

// ToggleFavorite flips the session user's favorite on a listing and returns the new membership.
func (se *Session) ToggleFavorite(ctx context.Context, listingID uint) (bool, error) {
	actor, err := se.actor()
	if err != nil {
		return false, err
	}
	return se.store.toggleFavorite(ctx, actor, listingID)
}

// IsFavorite reports whether the session user favorited the listing. False without a user.
func (se *Session) IsFavorite(listingID uint) bool {
	actor, err := se.actor()
	if err != nil {
		return false
	}
	return se.store.IsFavorite(actor.ID, listingID)
}

// SendMessage sends a message from the session user.
func (se *Session) SendMessage(ctx context.Context, receiverID, listingID uint, content string) (models.Message, error) {
	actor, err := se.actor()
	if err != nil {
		return models.Message{}, err
	}
	return se.store.sendMessage(ctx, actor, receiverID, listingID, content)
}

// AddReview records a review written by the session user.
func (se *Session) AddReview(ctx context.Context, draft models.ReviewDraft) (models.Review, error) {
	actor, err := se.actor()
	if err != nil {
		return models.Review{}, err
	}
	return se.store.addReview(ctx, actor, draft)
}

// UpdateProfile edits the session user's own profile.
func (se *Session) UpdateProfile(ctx context.Context, patch models.ProfilePatch) (models.User, error) {
	actor, err := se.actor()
	if err != nil {
		return models.User{}, err
	}
	return se.store.UpdateProfile(ctx, actor.ID, patch)
}

// MarkConversationRead marks every message from counterpartID to the session user as read.
func (se *Session) MarkConversationRead(ctx context.Context, counterpartID uint) (int, error) {
	actor, err := se.actor()
	if err != nil {
		return 0, err
	}
	return se.store.MarkConversationRead(ctx, actor.ID, counterpartID)
}
