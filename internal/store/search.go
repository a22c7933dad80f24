package store

import (
	"strings"

	"sublet/internal/models"
)

// ListingFilter narrows Search. Zero values do not filter.
type ListingFilter struct {
	// Query matches title, address, city or description, case-insensitively.
	Query        string
	MinRent      int
	MaxRent      int
	Bedrooms     *int
	PropertyType string
	LeaseType    string
	Furnished    *bool
	PetsAllowed  *bool
	Parking      *bool
	// Status matches exactly; empty means any status.
	Status models.ListingStatus
}

func (f ListingFilter) matches(l models.Listing) bool {
	if f.Status != "" && l.Status != f.Status {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		if !strings.Contains(strings.ToLower(l.Title), q) &&
			!strings.Contains(strings.ToLower(l.Address), q) &&
			!strings.Contains(strings.ToLower(l.City), q) &&
			!strings.Contains(strings.ToLower(l.Description), q) {
			return false
		}
	}
	if f.MinRent > 0 && l.MonthlyRent < f.MinRent {
		return false
	}
	if f.MaxRent > 0 && l.MonthlyRent > f.MaxRent {
		return false
	}
	if f.Bedrooms != nil && l.Bedrooms != *f.Bedrooms {
		return false
	}
	if f.PropertyType != "" && l.PropertyType != f.PropertyType {
		return false
	}
	if f.LeaseType != "" && l.LeaseType != f.LeaseType {
		return false
	}
	if f.Furnished != nil && l.Furnished != *f.Furnished {
		return false
	}
	if f.PetsAllowed != nil && l.PetsAllowed != *f.PetsAllowed {
		return false
	}
	if f.Parking != nil && l.Parking != *f.Parking {
		return false
	}
	return true
}

// Search returns the listings matching f in creation order.
func (s *Store) Search(f ListingFilter) []models.Listing {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listingsWhere(f.matches)
}
