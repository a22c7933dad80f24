package store

import (
	"math"

	"sublet/internal/models"
)

// AdminStats are the moderation dashboard aggregates.
type AdminStats struct {
	Listings             StatusCounts `json:"listings"`
	VerifiedListings     int          `json:"verified_listings"`
	Users                int          `json:"users"`
	VerifiedUsers        int          `json:"verified_users"`
	Applications         int          `json:"applications"`
	PendingApplications  int          `json:"pending_applications"`
	AcceptedApplications int          `json:"accepted_applications"`
	DeclinedApplications int          `json:"declined_applications"`
	AverageRent          int          `json:"average_rent"`
	PendingReports       int          `json:"pending_reports"`
}

// Stats computes AdminStats. Admin accounts are excluded from user counts and
// AverageRent is rounded to whole dollars, or 0 without listings.
func (s *Store) Stats() AdminStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var st AdminStats
	rentTotal := 0
	for _, l := range s.listings {
		st.Listings.add(l.Status)
		if l.Verified {
			st.VerifiedListings++
		}
		rentTotal += l.MonthlyRent
	}
	if n := len(s.listings); n > 0 {
		st.AverageRent = int(math.Round(float64(rentTotal) / float64(n)))
	}

	for _, u := range s.users {
		if u.IsAdmin() {
			continue
		}
		st.Users++
		if u.Verified {
			st.VerifiedUsers++
		}
	}

	st.Applications = len(s.applications)
	for _, a := range s.applications {
		switch a.Status {
		case models.ApplicationStatusPending:
			st.PendingApplications++
		case models.ApplicationStatusAccepted:
			st.AcceptedApplications++
		case models.ApplicationStatusDeclined:
			st.DeclinedApplications++
		}
	}

	for _, r := range s.reports {
		if r.Status == models.ReportStatusPending {
			st.PendingReports++
		}
	}
	return st
}
