package server

import (
	"sublet/internal/models"

	"github.com/gofiber/fiber/v2"
)

// UserProfile is a user with their count of available listings.
type UserProfile struct {
	models.User
	ActiveListings int `json:"active_listings"`
}

// GetAllUsers handles GET /api/users
func (s *Server) GetAllUsers(c *fiber.Ctx) error {
	page := parsePagination(c, 100)
	return c.JSON(paginate(c, s.store.Users(), page))
}

// GetUserProfile handles GET /api/users/:id
// @Summary User profile
// @Tags users
// @Produce json
// @Param id path int true "user id"
// @Success 200 {object} UserProfile
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id} [get]
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	user, err := s.store.User(id)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(UserProfile{
		User:           user,
		ActiveListings: s.store.ListingStatusCounts(id).Available,
	})
}

// GetUserListings handles GET /api/users/:id/listings
func (s *Server) GetUserListings(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if _, err := s.store.User(id); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(s.store.ListingsOwnedBy(id))
}

// GetUserReviews handles GET /api/users/:id/reviews
func (s *Server) GetUserReviews(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if _, err := s.store.User(id); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(s.store.ReviewsFor(id))
}

// UpdateMyProfile handles PATCH /api/users/me (flag profile_edit)
// @Summary Edit the session user's profile
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body models.ProfilePatch true "fields to change"
// @Success 200 {object} models.User
// @Failure 400 {object} models.ErrorResponse
// @Router /users/me [patch]
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	var patch models.ProfilePatch
	if err := parseBody(c, &patch); err != nil {
		return nil
	}

	user, err := sessionFrom(c).UpdateProfile(c.UserContext(), patch)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(user)
}

// CreateReview handles POST /api/reviews
// @Summary Review another user
// @Tags reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body models.ReviewDraft true "review"
// @Success 201 {object} models.Review
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /reviews [post]
func (s *Server) CreateReview(c *fiber.Ctx) error {
	var req models.ReviewDraft
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	review, err := sessionFrom(c).AddReview(c.UserContext(), req)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(review)
}
