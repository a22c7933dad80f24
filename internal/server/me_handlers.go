package server

import (
	"github.com/gofiber/fiber/v2"
)

// GetMyListings handles GET /api/me/listings
// @Summary Listings owned by the session user
// @Tags me
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Listing
// @Router /me/listings [get]
func (s *Server) GetMyListings(c *fiber.Ctx) error {
	userID := currentUserID(c)
	return c.JSON(s.store.ListingsOwnedBy(userID))
}

// GetMyListingCounts handles GET /api/me/listings/counts
func (s *Server) GetMyListingCounts(c *fiber.Ctx) error {
	userID := currentUserID(c)
	return c.JSON(s.store.ListingStatusCounts(userID))
}

// GetMyApplications handles GET /api/me/applications
// @Summary Applications submitted by the session user
// @Tags me
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Application
// @Router /me/applications [get]
func (s *Server) GetMyApplications(c *fiber.Ctx) error {
	userID := currentUserID(c)
	return c.JSON(s.store.ApplicationsSubmittedBy(userID))
}

// GetReceivedApplications handles GET /api/me/applications/received
// @Summary Applications to listings the session user owns
// @Tags me
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Application
// @Router /me/applications/received [get]
func (s *Server) GetReceivedApplications(c *fiber.Ctx) error {
	userID := currentUserID(c)
	return c.JSON(s.store.ApplicationsReceivedBy(userID))
}

// GetMyFavorites handles GET /api/me/favorites
func (s *Server) GetMyFavorites(c *fiber.Ctx) error {
	userID := currentUserID(c)
	return c.JSON(s.store.FavoriteListingsOf(userID))
}
