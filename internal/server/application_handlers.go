package server

import (
	"time"

	"sublet/internal/models"

	"github.com/gofiber/fiber/v2"
)

// SubmitApplicationRequest is the body of POST /api/listings/:id/applications.
type SubmitApplicationRequest struct {
	RequestedFrom time.Time `json:"requested_from"`
	RequestedTo   time.Time `json:"requested_to"`
	Message       string    `json:"message"`
}

// UpdateApplicationRequest is the body of PATCH /api/applications/:id.
type UpdateApplicationRequest struct {
	Status models.ApplicationStatus `json:"status"`
}

// SubmitApplication handles POST /api/listings/:id/applications
// @Summary Apply to a listing
// @Tags applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "listing id"
// @Param body body SubmitApplicationRequest true "application"
// @Success 201 {object} models.Application
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /listings/{id}/applications [post]
func (s *Server) SubmitApplication(c *fiber.Ctx) error {
	listingID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req SubmitApplicationRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	app, err := sessionFrom(c).SubmitApplication(c.UserContext(), models.ApplicationDraft{
		ListingID:     listingID,
		RequestedFrom: req.RequestedFrom,
		RequestedTo:   req.RequestedTo,
		Message:       req.Message,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(app)
}

// UpdateApplicationStatus handles PATCH /api/applications/:id
// @Summary Accept, decline or withdraw an application
// @Tags applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "application id"
// @Param body body UpdateApplicationRequest true "new status"
// @Success 200 {object} models.Application
// @Failure 403 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /applications/{id} [patch]
func (s *Server) UpdateApplicationStatus(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req UpdateApplicationRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	app, err := sessionFrom(c).SetApplicationStatus(c.UserContext(), id, req.Status)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(app)
}
