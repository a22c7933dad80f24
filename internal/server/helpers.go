package server

import (
	"errors"
	"strconv"
	"strings"

	"sublet/internal/middleware"
	"sublet/internal/models"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten means a helper already sent the error response. The
// handler returns nil so the ErrorHandler leaves it alone.
var errResponseWritten = errors.New("response already written")

// Pagination is a limit/offset window over a collection.
type Pagination struct {
	Limit  int
	Offset int
}

const maxPaginationLimit = 100

// parsePagination reads ?limit and ?offset. Bad or missing values fall back
// to defaultLimit and zero; limits are capped at maxPaginationLimit.
func parsePagination(c *fiber.Ctx, defaultLimit int) Pagination {
	page := Pagination{
		Limit:  c.QueryInt("limit", defaultLimit),
		Offset: max(c.QueryInt("offset", 0), 0),
	}
	if page.Limit <= 0 {
		page.Limit = defaultLimit
	}
	page.Limit = min(page.Limit, maxPaginationLimit)
	return page
}

// paginate reports the collection size in X-Total-Count and returns the page.
func paginate[T any](c *fiber.Ctx, items []T, page Pagination) []T {
	c.Set("X-Total-Count", strconv.Itoa(len(items)))
	if page.Offset >= len(items) {
		return []T{}
	}
	return items[page.Offset:min(page.Offset+page.Limit, len(items))]
}

// parseID reads a positive integer route parameter. On failure it answers
// 400 and returns errResponseWritten.
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+humanizeParam(param)))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// humanizeParam turns a route parameter into words for error messages:
// "id" is "ID", "userId" is "user ID".
func humanizeParam(param string) string {
	var b strings.Builder
	for i, r := range param {
		if i > 0 && 'A' <= r && r <= 'Z' {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	words := strings.Fields(strings.ToLower(b.String()))
	if last := len(words) - 1; last >= 0 && words[last] == "id" {
		words[last] = "ID"
	}
	return strings.Join(words, " ")
}

// parseBody decodes the JSON body into dst. On failure it answers 400 and
// returns errResponseWritten.
func parseBody(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
		return errResponseWritten
	}
	return nil
}

// currentUserID is the session user set by SessionRequired, or zero.
func currentUserID(c *fiber.Ctx) uint {
	uid, _ := c.Locals(middleware.LocalUserID).(uint)
	return uid
}

// FlagRequired serves the route only while flag is on for the caller.
// Otherwise the route answers as if it did not exist.
func (s *Server) FlagRequired(flag string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !s.featureFlags.Enabled(flag, currentUserID(c)) {
			return models.RespondWithError(c, fiber.StatusNotFound,
				&models.AppError{Code: models.CodeNotFound, Message: "Feature not enabled"})
		}
		return c.Next()
	}
}
