package server

import (
	"strconv"
	"strings"

	"sublet/internal/models"
	"sublet/internal/store"

	"github.com/gofiber/fiber/v2"
)

const defaultRecentListings = 4

// ListingDetail is a listing with the values its detail page derives.
type ListingDetail struct {
	models.Listing
	TotalUpfront int          `json:"total_upfront"`
	Owner        *models.User `json:"owner,omitempty"`
	IsFavorite   bool         `json:"is_favorite"`
	HasApplied   bool         `json:"has_applied"`
}

// parseListingFilter reads search filters from the query string. The status
// defaults to available; "all" matches every status.
func parseListingFilter(c *fiber.Ctx) (store.ListingFilter, error) {
	f := store.ListingFilter{
		Query:        strings.TrimSpace(c.Query("q")),
		PropertyType: c.Query("property_type"),
		LeaseType:    c.Query("lease_type"),
		Status:       models.ListingStatusAvailable,
	}

	var err error
	if f.MinRent, err = queryInt(c, "min_rent"); err != nil {
		return f, err
	}
	if f.MaxRent, err = queryInt(c, "max_rent"); err != nil {
		return f, err
	}
	if raw := c.Query("bedrooms"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return f, models.NewValidationError("bedrooms must be a non-negative integer")
		}
		f.Bedrooms = &n
	}
	if f.Furnished, err = queryBool(c, "furnished"); err != nil {
		return f, err
	}
	if f.PetsAllowed, err = queryBool(c, "pets_allowed"); err != nil {
		return f, err
	}
	if f.Parking, err = queryBool(c, "parking"); err != nil {
		return f, err
	}

	switch raw := strings.ToLower(c.Query("status")); raw {
	case "":
	case "all":
		f.Status = ""
	default:
		status := models.ListingStatus(raw)
		if !status.Valid() {
			return f, models.NewValidationError("unknown listing status " + strconv.Quote(raw))
		}
		f.Status = status
	}
	return f, nil
}

func queryInt(c *fiber.Ctx, key string) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, models.NewValidationError(key + " must be a non-negative integer")
	}
	return n, nil
}

func queryBool(c *fiber.Ctx, key string) (*bool, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, models.NewValidationError(key + " must be true or false")
	}
	return &b, nil
}

// SearchListings handles GET /api/listings
// @Summary Search listings
// @Tags listings
// @Produce json
// @Param q query string false "free text over title, address, city and description"
// @Param min_rent query int false "minimum monthly rent"
// @Param max_rent query int false "maximum monthly rent"
// @Param bedrooms query int false "exact bedroom count"
// @Param status query string false "available (default), pending, rented or all"
// @Success 200 {array} models.Listing
// @Failure 400 {object} models.ErrorResponse
// @Router /listings [get]
func (s *Server) SearchListings(c *fiber.Ctx) error {
	filter, err := parseListingFilter(c)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	page := parsePagination(c, 50)
	return c.JSON(paginate(c, s.store.Search(filter), page))
}

// GetRecentListings handles GET /api/listings/recent
func (s *Server) GetRecentListings(c *fiber.Ctx) error {
	n := c.QueryInt("limit", defaultRecentListings)
	if n <= 0 || n > maxPaginationLimit {
		n = defaultRecentListings
	}
	return c.JSON(s.store.RecentAvailable(n))
}

// GetListing handles GET /api/listings/:id and counts the view.
// @Summary Listing detail
// @Tags listings
// @Produce json
// @Param id path int true "listing id"
// @Success 200 {object} ListingDetail
// @Failure 404 {object} models.ErrorResponse
// @Router /listings/{id} [get]
func (s *Server) GetListing(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	viewerID, _ := s.optionalUserID(c)
	if err := s.store.RecordView(c.UserContext(), id, viewerID); err != nil {
		return models.RespondWithAppError(c, err)
	}

	listing, err := s.store.Listing(id)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	detail := ListingDetail{Listing: listing, TotalUpfront: listing.TotalUpfront()}
	if owner, err := s.store.User(listing.OwnerID); err == nil {
		detail.Owner = &owner
	}
	if viewerID != 0 {
		detail.IsFavorite = s.store.IsFavorite(viewerID, id)
		detail.HasApplied = s.store.HasApplied(id, viewerID)
	}
	return c.JSON(detail)
}

// CreateListing handles POST /api/listings
// @Summary Create a listing
// @Tags listings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body models.ListingDraft true "listing"
// @Success 201 {object} models.Listing
// @Failure 400 {object} models.ErrorResponse
// @Router /listings [post]
func (s *Server) CreateListing(c *fiber.Ctx) error {
	var draft models.ListingDraft
	if err := parseBody(c, &draft); err != nil {
		return nil
	}

	listing, err := sessionFrom(c).CreateListing(c.UserContext(), draft)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(listing)
}

// UpdateListing handles PATCH /api/listings/:id
// @Summary Patch a listing
// @Tags listings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "listing id"
// @Param body body models.ListingPatch true "fields to change"
// @Success 200 {object} models.Listing
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /listings/{id} [patch]
func (s *Server) UpdateListing(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var patch models.ListingPatch
	if err := parseBody(c, &patch); err != nil {
		return nil
	}

	listing, err := sessionFrom(c).PatchListing(c.UserContext(), id, patch)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(listing)
}

// GetFavoriteStatus handles GET /api/listings/:id/favorite
func (s *Server) GetFavoriteStatus(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if _, err := s.store.Listing(id); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"favorite": sessionFrom(c).IsFavorite(id)})
}

// ToggleFavorite handles POST /api/listings/:id/favorite
// @Summary Toggle a favorite
// @Tags favorites
// @Produce json
// @Security BearerAuth
// @Param id path int true "listing id"
// @Success 200 {object} map[string]bool
// @Failure 404 {object} models.ErrorResponse
// @Router /listings/{id}/favorite [post]
func (s *Server) ToggleFavorite(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	member, err := sessionFrom(c).ToggleFavorite(c.UserContext(), id)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"favorite": member})
}
