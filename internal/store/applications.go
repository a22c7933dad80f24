package store

import (
	"context"
	"slices"

	"sublet/internal/models"
)

func (s *Store) submitApplication(ctx context.Context, actor models.User, draft models.ApplicationDraft) (app models.Application, err error) {
	ctx, done := s.begin(ctx, collApplications, "submit")
	defer func() { done(err) }()

	if !draft.RequestedFrom.IsZero() && !draft.RequestedTo.IsZero() && draft.RequestedTo.Before(draft.RequestedFrom) {
		return models.Application{}, models.NewValidationError("requested_to cannot be before requested_from")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.listingIndex(draft.ListingID)
	if i < 0 {
		return models.Application{}, models.NewNotFoundError("Listing", draft.ListingID)
	}
	if s.listings[i].OwnerID == actor.ID {
		return models.Application{}, models.NewValidationError("cannot apply to your own listing")
	}
	if s.hasOpenApplication(draft.ListingID, actor.ID) {
		return models.Application{}, models.NewValidationError("an application for this listing is already open")
	}

	s.lastApplicationID++
	app = models.Application{
		ID:            s.lastApplicationID,
		ListingID:     draft.ListingID,
		ApplicantID:   actor.ID,
		RequestedFrom: draft.RequestedFrom,
		RequestedTo:   draft.RequestedTo,
		Message:       draft.Message,
		Status:        models.ApplicationStatusPending,
		CreatedAt:     s.now(),
	}
	s.applications = append(s.applications, app)
	s.publishSizes()

	s.logs[collApplications].LogMutation(ctx, "submit", map[string]interface{}{
		"application_id": app.ID,
		"listing_id":     app.ListingID,
		"applicant_id":   actor.ID,
	})
	return app, nil
}

// hasOpenApplication must be called with the lock held.
func (s *Store) hasOpenApplication(listingID, applicantID uint) bool {
	return slices.ContainsFunc(s.applications, func(a models.Application) bool {
		return a.ListingID == listingID && a.ApplicantID == applicantID &&
			(a.Status == models.ApplicationStatusPending || a.Status == models.ApplicationStatusAccepted)
	})
}

func (s *Store) setApplicationStatus(ctx context.Context, actor models.User, id uint, status models.ApplicationStatus) (app models.Application, err error) {
	ctx, done := s.begin(ctx, collApplications, "set_status")
	defer func() { done(err) }()

	if !status.Valid() {
		return models.Application{}, models.NewValidationError("unknown application status " + string(status))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.applicationIndex(id)
	if i < 0 {
		return models.Application{}, models.NewNotFoundError("Application", id)
	}
	current := s.applications[i]

	switch status {
	case models.ApplicationStatusAccepted, models.ApplicationStatusDeclined:
		li := s.listingIndex(current.ListingID)
		if li < 0 || s.listings[li].OwnerID != actor.ID {
			return models.Application{}, models.NewForbiddenError("only the listing owner can accept or decline")
		}
	case models.ApplicationStatusWithdrawn:
		if current.ApplicantID != actor.ID {
			return models.Application{}, models.NewForbiddenError("only the applicant can withdraw")
		}
	default:
		return models.Application{}, models.NewInvalidTransitionError("Application", current.Status, status)
	}
	if current.Status != models.ApplicationStatusPending {
		return models.Application{}, models.NewInvalidTransitionError("Application", current.Status, status)
	}

	s.applications[i].Status = status
	s.logs[collApplications].LogMutation(ctx, "set_status", map[string]interface{}{
		"application_id": id,
		"from":           string(current.Status),
		"to":             string(status),
		"actor_id":       actor.ID,
	})
	return s.applications[i], nil
}

// Application returns the application with id.
func (s *Store) Application(id uint) (models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.applicationIndex(id)
	if i < 0 {
		return models.Application{}, models.NewNotFoundError("Application", id)
	}
	return s.applications[i], nil
}

// Applications returns every application in submission order.
func (s *Store) Applications() []models.Application {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.applications)
}

// ApplicationsSubmittedBy returns the applications whose applicant is userID.
func (s *Store) ApplicationsSubmittedBy(userID uint) []models.Application {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return filter(s.applications, func(a models.Application) bool { return a.ApplicantID == userID })
}

// ApplicationsReceivedBy returns the applications to listings owned by userID.
func (s *Store) ApplicationsReceivedBy(userID uint) []models.Application {
	s.mu.RLock()
	defer s.mu.RUnlock()
	owned := make(map[uint]struct{})
	for _, l := range s.listings {
		if l.OwnerID == userID {
			owned[l.ID] = struct{}{}
		}
	}
	return filter(s.applications, func(a models.Application) bool {
		_, ok := owned[a.ListingID]
		return ok
	})
}

// HasApplied reports whether userID has any application for listingID.
func (s *Store) HasApplied(listingID, userID uint) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.ContainsFunc(s.applications, func(a models.Application) bool {
		return a.ListingID == listingID && a.ApplicantID == userID
	})
}
