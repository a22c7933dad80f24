package server

import (
	"strconv"
	"strings"

	"sublet/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetAdminStats handles GET /api/admin/stats
// @Summary Moderation dashboard aggregates
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} store.AdminStats
// @Failure 403 {object} models.ErrorResponse
// @Router /admin/stats [get]
func (s *Server) GetAdminStats(c *fiber.Ctx) error {
	return c.JSON(s.store.Stats())
}

// GetAdminReports handles GET /api/admin/reports?status=
func (s *Server) GetAdminReports(c *fiber.Ctx) error {
	raw := strings.ToLower(c.Query("status"))
	if raw == "" || raw == "all" {
		return c.JSON(s.store.Reports())
	}

	status := models.ReportStatus(raw)
	switch status {
	case models.ReportStatusPending, models.ReportStatusResolved, models.ReportStatusDismissed:
	default:
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("unknown report status "+strconv.Quote(raw)))
	}
	return c.JSON(s.store.ReportsByStatus(status))
}

// GetAdminUsers handles GET /api/admin/users
func (s *Server) GetAdminUsers(c *fiber.Ctx) error {
	page := parsePagination(c, 100)
	return c.JSON(paginate(c, s.store.Users(), page))
}

// GetFeatureFlags returns configured feature flags and evaluated state for current user.
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	userID := currentUserID(c)

	if s.featureFlags == nil {
		return c.JSON(fiber.Map{
			"raw":       map[string]string{},
			"evaluated": map[string]bool{},
		})
	}

	return c.JSON(fiber.Map{
		"raw":       s.featureFlags.Raw(),
		"evaluated": s.featureFlags.Snapshot(userID),
	})
}
