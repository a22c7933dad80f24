package seed

import (
	"fmt"
	"time"

	"sublet/internal/models"
	"sublet/internal/store"

	"github.com/brianvoe/gofakeit/v6"
)

var (
	universities  = []string{"Boston University", "Northeastern University", "Boston College", "Harvard University", "MIT"}
	years         = []string{"Freshman", "Sophomore", "Junior", "Senior", "Graduate"}
	neighborhoods = []string{"Allston", "Brighton", "Fenway", "Back Bay", "Cambridge", "Somerville", "Jamaica Plain"}
	propertyTypes = []string{"apartment", "studio", "room", "house"}
	leaseTypes    = []string{"summer", "semester", "lease-takeover"}
	laundryKinds  = []string{"in-unit", "in-building", "none"}
	amenityPool   = []string{"wifi", "air conditioning", "dishwasher", "gym", "parking", "balcony", "desk"}
	rulePool      = []string{"no smoking", "no parties", "quiet hours after 10pm", "no overnight guests"}
)

// Factory generates plausible marketplace records with gofakeit.
// A fixed seed makes the output reproducible.
type Factory struct {
	faker *gofakeit.Faker
	now   time.Time
}

// NewFactory creates a Factory. A seed of 0 picks a random one.
func NewFactory(seed int64, now time.Time) *Factory {
	return &Factory{faker: gofakeit.New(seed), now: now}
}

// BuildUser returns a student with the given id.
func (f *Factory) BuildUser(id uint, overrides ...func(*models.User)) models.User {
	first := f.faker.FirstName()
	last := f.faker.LastName()
	user := models.User{
		ID:           id,
		FirstName:    first,
		LastName:     last,
		Email:        fmt.Sprintf("%s.%s%d@%s", first, last, id, "students.example.edu"),
		Role:         models.RoleStudent,
		ProfileImage: fmt.Sprintf("https://i.pravatar.cc/150?u=%s", f.faker.UUID()),
		Verified:     f.faker.Bool(),
		Bio:          f.faker.Sentence(10),
		University:   f.faker.RandomString(universities),
		Year:         f.faker.RandomString(years),
		Major:        f.faker.JobDescriptor() + " Studies",
		JoinedAt:     f.now.AddDate(0, 0, -f.faker.Number(30, 700)).Truncate(24 * time.Hour),
	}
	for _, override := range overrides {
		override(&user)
	}
	return user
}

// BuildListing returns a listing owned by ownerID with the given id.
func (f *Factory) BuildListing(id, ownerID uint, overrides ...func(*models.Listing)) models.Listing {
	rent := f.faker.Number(8, 36) * 100
	from := f.now.AddDate(0, 0, f.faker.Number(7, 120)).Truncate(24 * time.Hour)
	city := f.faker.RandomString(neighborhoods)
	listing := models.Listing{
		ID:                 id,
		OwnerID:            ownerID,
		Title:              fmt.Sprintf("%s %s in %s", f.faker.AdjectiveDescriptive(), f.faker.RandomString(propertyTypes), city),
		Description:        f.faker.Paragraph(1, 3, 8, " "),
		Address:            f.faker.Street(),
		City:               city,
		State:              "MA",
		Zip:                fmt.Sprintf("02%03d", f.faker.Number(100, 499)),
		PropertyType:       f.faker.RandomString(propertyTypes),
		LeaseType:          f.faker.RandomString(leaseTypes),
		MonthlyRent:        rent,
		UtilitiesIncluded:  f.faker.Bool(),
		EstimatedUtilities: f.faker.Number(50, 180),
		SecurityDeposit:    rent,
		ApplicationFee:     f.faker.RandomInt([]int{0, 25, 40, 50}),
		AvailableFrom:      from,
		AvailableTo:        from.AddDate(0, f.faker.Number(2, 8), 0),
		Status:             models.ListingStatusAvailable,
		Verified:           f.faker.Bool(),
		Bedrooms:           f.faker.Number(0, 4),
		Bathrooms:          float64(f.faker.Number(2, 5)) / 2,
		Sqft:               f.faker.Number(150, 1400),
		Floor:              f.faker.Number(0, 6),
		Furnished:          f.faker.Bool(),
		PetsAllowed:        f.faker.Bool(),
		Parking:            f.faker.Bool(),
		Shared:             f.faker.Bool(),
		HasStairs:          f.faker.Bool(),
		Laundry:            f.faker.RandomString(laundryKinds),
		Amenities:          f.pick(amenityPool, 3),
		Rules:              f.pick(rulePool, 2),
		Requirements:       []string{"student id"},
		Images:             []string{fmt.Sprintf("https://picsum.photos/seed/%s/800/600", f.faker.UUID())},
		Lat:                42.30 + f.faker.Float64Range(0, 0.1),
		Lng:                -71.15 + f.faker.Float64Range(0, 0.1),
		Views:              f.faker.Number(0, 400),
		CreatedAt:          f.now.Add(-time.Duration(f.faker.Number(1, 90*24)) * time.Hour),
	}
	if f.faker.Number(1, 10) > 8 {
		listing.Status = models.ListingStatusRented
	}
	for _, override := range overrides {
		override(&listing)
	}
	return listing
}

func (f *Factory) pick(pool []string, n int) []string {
	shuffled := append([]string(nil), pool...)
	f.faker.ShuffleStrings(shuffled)
	return shuffled[:min(n, len(shuffled))]
}

// Extend returns a copy of base with users and listings added. New ids continue
// after the highest existing id in each collection. Listings are spread across
// every non-admin user, new and existing.
func (f *Factory) Extend(base store.Seed, users, listings int) store.Seed {
	out := base
	out.Users = append([]models.User(nil), base.Users...)
	out.Listings = append([]models.Listing(nil), base.Listings...)

	var nextUser, nextListing uint
	for _, u := range out.Users {
		nextUser = max(nextUser, u.ID)
	}
	for _, l := range out.Listings {
		nextListing = max(nextListing, l.ID)
	}

	for i := 0; i < users; i++ {
		nextUser++
		out.Users = append(out.Users, f.BuildUser(nextUser))
	}

	var owners []uint
	for _, u := range out.Users {
		if !u.IsAdmin() {
			owners = append(owners, u.ID)
		}
	}
	if len(owners) == 0 {
		return out
	}
	for i := 0; i < listings; i++ {
		nextListing++
		owner := owners[f.faker.Number(0, len(owners)-1)]
		out.Listings = append(out.Listings, f.BuildListing(nextListing, owner))
	}
	return out
}
