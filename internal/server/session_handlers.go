package server

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"sublet/internal/middleware"
	"sublet/internal/models"
	"sublet/internal/observability"
	"sublet/internal/store"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	tokenIssuer   = "sublet-api"
	tokenAudience = "sublet-client"

	localSession = "session"
	localClaims  = "sessionClaims"
)

// sessionClaims is what SessionRequired extracts from a valid token.
type sessionClaims struct {
	UserID    uint
	JTI       string
	ExpiresAt time.Time
}

// CreateSessionRequest is the body of POST /api/session.
type CreateSessionRequest struct {
	UserID uint `json:"user_id"`
}

// SessionResponse is returned when a session is created.
type SessionResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      models.User `json:"user"`
}

// CreateSession handles POST /api/session
// @Summary Identify as a user
// @Tags session
// @Accept json
// @Produce json
// @Param body body CreateSessionRequest true "user to act as"
// @Success 201 {object} SessionResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /session [post]
func (s *Server) CreateSession(c *fiber.Ctx) error {
	var req CreateSessionRequest
	if err := c.BodyParser(&req); err != nil || req.UserID == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("user_id is required"))
	}

	se := s.store.NewSession()
	user, err := se.Identify(c.UserContext(), req.UserID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	token, expiresAt, err := s.generateToken(user.ID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
	}
	observability.SessionsIssued.Inc()

	return c.Status(fiber.StatusCreated).JSON(SessionResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user,
	})
}

// GetSession handles GET /api/session
// @Summary Current session user
// @Tags session
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} models.ErrorResponse
// @Router /session [get]
func (s *Server) GetSession(c *fiber.Ctx) error {
	user, ok := sessionFrom(c).Current()
	if !ok {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Session user no longer exists"))
	}
	return c.JSON(fiber.Map{
		"user":         user,
		"unread_count": s.store.UnreadMessageCountFor(user.ID),
		"features":     s.featureFlags.Snapshot(user.ID),
	})
}

// DeleteSession handles DELETE /api/session
// @Summary End the session
// @Tags session
// @Security BearerAuth
// @Success 200 {object} map[string]string
// @Router /session [delete]
func (s *Server) DeleteSession(c *fiber.Ctx) error {
	claims := c.Locals(localClaims).(sessionClaims)

	if err := s.sessions.Revoke(c.UserContext(), claims.JTI, time.Until(claims.ExpiresAt)); err != nil {
		middleware.Logger.WarnContext(c.UserContext(), "failed to revoke session token",
			slog.String("error", err.Error()))
	}
	sessionFrom(c).End()

	return c.JSON(fiber.Map{"message": "Session ended"})
}

// generateToken signs a session token for userID.
func (s *Server) generateToken(userID uint) (string, time.Time, error) {
	if s.config.SessionSecret == "" {
		return "", time.Time{}, fmt.Errorf("session secret not configured")
	}

	now := time.Now()
	expiresAt := now.Add(s.config.SessionTTL)
	claims := jwt.MapClaims{
		"sub": strconv.FormatUint(uint64(userID), 10),
		"iss": tokenIssuer,
		"aud": tokenAudience,
		"exp": expiresAt.Unix(),
		"iat": now.Unix(),
		"nbf": now.Unix(),
		"jti": uuid.NewString(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.SessionSecret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, time.Unix(expiresAt.Unix(), 0), nil
}

// parseToken validates a bearer token and returns its claims.
func (s *Server) parseToken(tokenString string) (sessionClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(s.config.SessionSecret), nil
	})
	if err != nil || !token.Valid {
		return sessionClaims{}, models.NewUnauthorizedError("Invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return sessionClaims{}, models.NewUnauthorizedError("Invalid token claims")
	}
	if issuer, ok := claims["iss"].(string); !ok || issuer != tokenIssuer {
		return sessionClaims{}, models.NewUnauthorizedError("Invalid token issuer")
	}
	if audience, ok := claims["aud"].(string); !ok || audience != tokenAudience {
		return sessionClaims{}, models.NewUnauthorizedError("Invalid token audience")
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return sessionClaims{}, models.NewUnauthorizedError("Invalid subject claim")
	}
	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil || userID == 0 {
		return sessionClaims{}, models.NewUnauthorizedError("Invalid user ID in token")
	}

	out := sessionClaims{UserID: uint(userID)}
	out.JTI, _ = claims["jti"].(string)
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	return out, nil
}

func bearerToken(c *fiber.Ctx) string {
	scheme, token, ok := strings.Cut(c.Get(fiber.HeaderAuthorization), " ")
	if !ok || scheme != "Bearer" {
		return ""
	}
	return token
}

// SessionRequired resolves the bearer token to a store session for the request.
func (s *Server) SessionRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := bearerToken(c)
		if tokenString == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}

		claims, err := s.parseToken(tokenString)
		if err != nil {
			return models.RespondWithAppError(c, err)
		}

		if claims.JTI != "" {
			revoked, err := s.sessions.IsRevoked(c.UserContext(), claims.JTI)
			if err != nil {
				middleware.Logger.WarnContext(c.UserContext(), "session revocation check failed",
					slog.String("error", err.Error()))
			} else if revoked {
				return models.RespondWithError(c, fiber.StatusUnauthorized,
					models.NewUnauthorizedError("Session has ended"))
			}
		}

		se, err := s.store.SessionFor(c.UserContext(), claims.UserID)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Session user no longer exists"))
		}

		c.Locals(middleware.LocalUserID, claims.UserID)
		c.Locals(localClaims, claims)
		c.Locals(localSession, se)
		c.SetUserContext(middleware.WithUserID(c.UserContext(), claims.UserID))
		return c.Next()
	}
}

// AdminRequired rejects non-admin session users with 403.
// Must be placed after SessionRequired.
func (s *Server) AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := sessionFrom(c).Current()
		if !ok || !user.IsAdmin() {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewForbiddenError("Admin access required"))
		}
		return c.Next()
	}
}

// optionalUserID returns the session user when a valid token is present.
func (s *Server) optionalUserID(c *fiber.Ctx) (uint, bool) {
	tokenString := bearerToken(c)
	if tokenString == "" {
		return 0, false
	}
	claims, err := s.parseToken(tokenString)
	if err != nil {
		return 0, false
	}
	if claims.JTI != "" {
		if revoked, err := s.sessions.IsRevoked(c.UserContext(), claims.JTI); err == nil && revoked {
			return 0, false
		}
	}
	return claims.UserID, true
}

// sessionFrom returns the session attached by SessionRequired.
func sessionFrom(c *fiber.Ctx) *store.Session {
	return c.Locals(localSession).(*store.Session)
}
