package models

import (
	"slices"
	"time"

	"gorm.io/datatypes"
)

// ListingStatus is the rental state of a listing.
type ListingStatus string

const (
	ListingStatusAvailable ListingStatus = "available"
	ListingStatusPending   ListingStatus = "pending"
	ListingStatusRented    ListingStatus = "rented"
)

// Valid reports whether s is one of the known listing states.
func (s ListingStatus) Valid() bool {
	switch s {
	case ListingStatusAvailable, ListingStatusPending, ListingStatusRented:
		return true
	}
	return false
}

// Listing is a unit offered for sublet. Money fields are whole dollars.
type Listing struct {
	ID                       uint                        `gorm:"primaryKey" json:"id" yaml:"id"`
	OwnerID                  uint                        `gorm:"not null;index" json:"owner_id" yaml:"owner_id"`
	Title                    string                      `gorm:"not null" json:"title" yaml:"title"`
	Description              string                      `gorm:"type:text" json:"description" yaml:"description"`
	Address                  string                      `json:"address" yaml:"address"`
	City                     string                      `gorm:"index" json:"city" yaml:"city"`
	State                    string                      `json:"state" yaml:"state"`
	Zip                      string                      `json:"zip" yaml:"zip"`
	PropertyType             string                      `json:"property_type" yaml:"property_type"`
	LeaseType                string                      `json:"lease_type" yaml:"lease_type"`
	MonthlyRent              int                         `gorm:"not null" json:"monthly_rent" yaml:"monthly_rent"`
	UtilitiesIncluded        bool                        `json:"utilities_included" yaml:"utilities_included"`
	EstimatedUtilities       int                         `json:"estimated_utilities" yaml:"estimated_utilities"`
	SecurityDeposit          int                         `json:"security_deposit" yaml:"security_deposit"`
	BrokerFee                int                         `json:"broker_fee" yaml:"broker_fee"`
	ApplicationFee           int                         `json:"application_fee" yaml:"application_fee"`
	AvailableFrom            time.Time                   `json:"available_from" yaml:"available_from"`
	AvailableTo              time.Time                   `json:"available_to" yaml:"available_to"`
	Status                   ListingStatus               `gorm:"type:varchar(16);default:'available';index" json:"status" yaml:"status"`
	Verified                 bool                        `gorm:"default:false" json:"verified" yaml:"verified"`
	Bedrooms                 int                         `json:"bedrooms" yaml:"bedrooms"`
	Bathrooms                float64                     `json:"bathrooms" yaml:"bathrooms"`
	Sqft                     int                         `json:"sqft" yaml:"sqft"`
	Floor                    int                         `json:"floor" yaml:"floor"`
	Furnished                bool                        `json:"furnished" yaml:"furnished"`
	PetsAllowed              bool                        `json:"pets_allowed" yaml:"pets_allowed"`
	Parking                  bool                        `json:"parking" yaml:"parking"`
	Shared                   bool                        `json:"shared" yaml:"shared"`
	HasStairs                bool                        `json:"has_stairs" yaml:"has_stairs"`
	LandlordApprovalRequired bool                        `json:"landlord_approval_required" yaml:"landlord_approval_required"`
	Laundry                  string                      `json:"laundry" yaml:"laundry"`
	Amenities                datatypes.JSONSlice[string] `json:"amenities" yaml:"amenities"`
	Rules                    datatypes.JSONSlice[string] `json:"rules" yaml:"rules"`
	Requirements             datatypes.JSONSlice[string] `json:"requirements" yaml:"requirements"`
	Images                   datatypes.JSONSlice[string] `json:"images" yaml:"images"`
	Lat                      float64                     `json:"lat" yaml:"lat"`
	Lng                      float64                     `json:"lng" yaml:"lng"`
	Views                    int                         `gorm:"default:0" json:"views" yaml:"views"`
	CreatedAt                time.Time                   `json:"created_at" yaml:"created_at"`
}

// TotalUpfront is what a tenant pays at move-in: deposit, fees, the first month
// and, unless included in rent, the estimated utilities.
func (l Listing) TotalUpfront() int {
	total := l.SecurityDeposit + l.BrokerFee + l.ApplicationFee + l.MonthlyRent
	if !l.UtilitiesIncluded {
		total += l.EstimatedUtilities
	}
	return total
}

// Clone returns a copy that shares no slice storage with l.
func (l Listing) Clone() Listing {
	l.Amenities = slices.Clone(l.Amenities)
	l.Rules = slices.Clone(l.Rules)
	l.Requirements = slices.Clone(l.Requirements)
	l.Images = slices.Clone(l.Images)
	return l
}

// ListingDraft holds the owner-supplied fields of a new listing.
type ListingDraft struct {
	Title                    string    `json:"title"`
	Description              string    `json:"description"`
	Address                  string    `json:"address"`
	City                     string    `json:"city"`
	State                    string    `json:"state"`
	Zip                      string    `json:"zip"`
	PropertyType             string    `json:"property_type"`
	LeaseType                string    `json:"lease_type"`
	MonthlyRent              int       `json:"monthly_rent"`
	UtilitiesIncluded        bool      `json:"utilities_included"`
	EstimatedUtilities       int       `json:"estimated_utilities"`
	SecurityDeposit          int       `json:"security_deposit"`
	BrokerFee                int       `json:"broker_fee"`
	ApplicationFee           int       `json:"application_fee"`
	AvailableFrom            time.Time `json:"available_from"`
	AvailableTo              time.Time `json:"available_to"`
	Bedrooms                 int       `json:"bedrooms"`
	Bathrooms                float64   `json:"bathrooms"`
	Sqft                     int       `json:"sqft"`
	Floor                    int       `json:"floor"`
	Furnished                bool      `json:"furnished"`
	PetsAllowed              bool      `json:"pets_allowed"`
	Parking                  bool      `json:"parking"`
	Shared                   bool      `json:"shared"`
	HasStairs                bool      `json:"has_stairs"`
	LandlordApprovalRequired bool      `json:"landlord_approval_required"`
	Laundry                  string    `json:"laundry"`
	Amenities                []string  `json:"amenities"`
	Rules                    []string  `json:"rules"`
	Requirements             []string  `json:"requirements"`
	Images                   []string  `json:"images"`
	Lat                      float64   `json:"lat"`
	Lng                      float64   `json:"lng"`
}

// ToListing builds the listing body; id, owner and lifecycle fields are left for the store.
func (d ListingDraft) ToListing() Listing {
	return Listing{
		Title:                    d.Title,
		Description:              d.Description,
		Address:                  d.Address,
		City:                     d.City,
		State:                    d.State,
		Zip:                      d.Zip,
		PropertyType:             d.PropertyType,
		LeaseType:                d.LeaseType,
		MonthlyRent:              d.MonthlyRent,
		UtilitiesIncluded:        d.UtilitiesIncluded,
		EstimatedUtilities:       d.EstimatedUtilities,
		SecurityDeposit:          d.SecurityDeposit,
		BrokerFee:                d.BrokerFee,
		ApplicationFee:           d.ApplicationFee,
		AvailableFrom:            d.AvailableFrom,
		AvailableTo:              d.AvailableTo,
		Bedrooms:                 d.Bedrooms,
		Bathrooms:                d.Bathrooms,
		Sqft:                     d.Sqft,
		Floor:                    d.Floor,
		Furnished:                d.Furnished,
		PetsAllowed:              d.PetsAllowed,
		Parking:                  d.Parking,
		Shared:                   d.Shared,
		HasStairs:                d.HasStairs,
		LandlordApprovalRequired: d.LandlordApprovalRequired,
		Laundry:                  d.Laundry,
		Amenities:                slices.Clone(d.Amenities),
		Rules:                    slices.Clone(d.Rules),
		Requirements:             slices.Clone(d.Requirements),
		Images:                   slices.Clone(d.Images),
		Lat:                      d.Lat,
		Lng:                      d.Lng,
	}
}

// ListingPatch is a partial update. Only non-nil fields are merged.
type ListingPatch struct {
	Title                    *string        `json:"title"`
	Description              *string        `json:"description"`
	Address                  *string        `json:"address"`
	City                     *string        `json:"city"`
	State                    *string        `json:"state"`
	Zip                      *string        `json:"zip"`
	PropertyType             *string        `json:"property_type"`
	LeaseType                *string        `json:"lease_type"`
	MonthlyRent              *int           `json:"monthly_rent"`
	UtilitiesIncluded        *bool          `json:"utilities_included"`
	EstimatedUtilities       *int           `json:"estimated_utilities"`
	SecurityDeposit          *int           `json:"security_deposit"`
	BrokerFee                *int           `json:"broker_fee"`
	ApplicationFee           *int           `json:"application_fee"`
	AvailableFrom            *time.Time     `json:"available_from"`
	AvailableTo              *time.Time     `json:"available_to"`
	Status                   *ListingStatus `json:"status"`
	Verified                 *bool          `json:"verified"`
	Bedrooms                 *int           `json:"bedrooms"`
	Bathrooms                *float64       `json:"bathrooms"`
	Sqft                     *int           `json:"sqft"`
	Floor                    *int           `json:"floor"`
	Furnished                *bool          `json:"furnished"`
	PetsAllowed              *bool          `json:"pets_allowed"`
	Parking                  *bool          `json:"parking"`
	Shared                   *bool          `json:"shared"`
	HasStairs                *bool          `json:"has_stairs"`
	LandlordApprovalRequired *bool          `json:"landlord_approval_required"`
	Laundry                  *string        `json:"laundry"`
	Amenities                *[]string      `json:"amenities"`
	Rules                    *[]string      `json:"rules"`
	Requirements             *[]string      `json:"requirements"`
	Images                   *[]string      `json:"images"`
	Lat                      *float64       `json:"lat"`
	Lng                      *float64       `json:"lng"`
}

// Apply merges the patch into l.
func (p ListingPatch) Apply(l *Listing) {
	setIf(&l.Title, p.Title)
	setIf(&l.Description, p.Description)
	setIf(&l.Address, p.Address)
	setIf(&l.City, p.City)
	setIf(&l.State, p.State)
	setIf(&l.Zip, p.Zip)
	setIf(&l.PropertyType, p.PropertyType)
	setIf(&l.LeaseType, p.LeaseType)
	setIf(&l.MonthlyRent, p.MonthlyRent)
	setIf(&l.UtilitiesIncluded, p.UtilitiesIncluded)
	setIf(&l.EstimatedUtilities, p.EstimatedUtilities)
	setIf(&l.SecurityDeposit, p.SecurityDeposit)
	setIf(&l.BrokerFee, p.BrokerFee)
	setIf(&l.ApplicationFee, p.ApplicationFee)
	setIf(&l.AvailableFrom, p.AvailableFrom)
	setIf(&l.AvailableTo, p.AvailableTo)
	setIf(&l.Status, p.Status)
	setIf(&l.Verified, p.Verified)
	setIf(&l.Bedrooms, p.Bedrooms)
	setIf(&l.Bathrooms, p.Bathrooms)
	setIf(&l.Sqft, p.Sqft)
	setIf(&l.Floor, p.Floor)
	setIf(&l.Furnished, p.Furnished)
	setIf(&l.PetsAllowed, p.PetsAllowed)
	setIf(&l.Parking, p.Parking)
	setIf(&l.Shared, p.Shared)
	setIf(&l.HasStairs, p.HasStairs)
	setIf(&l.LandlordApprovalRequired, p.LandlordApprovalRequired)
	setIf(&l.Laundry, p.Laundry)
	setIf(&l.Lat, p.Lat)
	setIf(&l.Lng, p.Lng)
	if p.Amenities != nil {
		l.Amenities = slices.Clone(*p.Amenities)
	}
	if p.Rules != nil {
		l.Rules = slices.Clone(*p.Rules)
	}
	if p.Requirements != nil {
		l.Requirements = slices.Clone(*p.Requirements)
	}
	if p.Images != nil {
		l.Images = slices.Clone(*p.Images)
	}
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
