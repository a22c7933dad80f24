package server

import (
	"context"
	"net/http"
	"strconv"
	"testing"
	"time"

	"sublet/internal/config"
	"sublet/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRevoker struct {
	mock.Mock
}

func (m *MockRevoker) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	args := m.Called(ctx, jti, ttl)
	return args.Error(0)
}

func (m *MockRevoker) IsRevoked(ctx context.Context, jti string) (bool, error) {
	args := m.Called(ctx, jti)
	return args.Bool(0), args.Error(1)
}

func TestCreateSession(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	tests := []struct {
		name           string
		body           any
		expectedStatus int
	}{
		{name: "Success", body: CreateSessionRequest{UserID: mariaID}, expectedStatus: http.StatusCreated},
		{name: "Unknown User", body: CreateSessionRequest{UserID: 99}, expectedStatus: http.StatusNotFound},
		{name: "Missing User ID", body: map[string]any{}, expectedStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := env.do(t, http.MethodPost, "/api/session", "", tt.body)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}

	t.Run("Token opens the session", func(t *testing.T) {
		resp := env.do(t, http.MethodPost, "/api/session", "", CreateSessionRequest{UserID: mariaID})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		created := decode[SessionResponse](t, resp)
		assert.Equal(t, mariaID, created.User.ID)
		assert.True(t, created.ExpiresAt.After(time.Now()))

		resp = env.do(t, http.MethodGet, "/api/session", created.Token, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		body := decode[struct {
			User        models.User     `json:"user"`
			UnreadCount int             `json:"unread_count"`
			Features    map[string]bool `json:"features"`
		}](t, resp)
		assert.Equal(t, "Maria", body.User.FirstName)
		assert.Equal(t, 2, body.UnreadCount)
		assert.Contains(t, body.Features, "profile_edit")
	})
}

func TestSessionRequired(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	sign := func(claims jwt.MapClaims) string {
		str, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		require.NoError(t, err)
		return str
	}
	claims := func(sub any, iss, aud string, exp time.Duration) jwt.MapClaims {
		return jwt.MapClaims{"sub": sub, "iss": iss, "aud": aud, "exp": time.Now().Add(exp).Unix()}
	}
	valid := strconv.FormatUint(uint64(jamesID), 10)

	tests := []struct {
		name           string
		authHeader     string
		expectedStatus int
	}{
		{name: "Valid Token", authHeader: "Bearer " + sign(claims(valid, tokenIssuer, tokenAudience, time.Hour)), expectedStatus: http.StatusOK},
		{name: "Expired Token", authHeader: "Bearer " + sign(claims(valid, tokenIssuer, tokenAudience, -time.Hour)), expectedStatus: http.StatusUnauthorized},
		{name: "Invalid Issuer", authHeader: "Bearer " + sign(claims(valid, "wrong-issuer", tokenAudience, time.Hour)), expectedStatus: http.StatusUnauthorized},
		{name: "Invalid Audience", authHeader: "Bearer " + sign(claims(valid, tokenIssuer, "wrong-audience", time.Hour)), expectedStatus: http.StatusUnauthorized},
		{name: "Numeric Subject", authHeader: "Bearer " + sign(claims(2, tokenIssuer, tokenAudience, time.Hour)), expectedStatus: http.StatusUnauthorized},
		{name: "Unknown User", authHeader: "Bearer " + sign(claims("99", tokenIssuer, tokenAudience, time.Hour)), expectedStatus: http.StatusUnauthorized},
		{name: "Wrong Secret", authHeader: "Bearer " + func() string {
			str, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims(valid, tokenIssuer, tokenAudience, time.Hour)).SignedString([]byte("other"))
			return str
		}(), expectedStatus: http.StatusUnauthorized},
		{name: "Malformed Bearer Format", authHeader: "BearerTokenOnly", expectedStatus: http.StatusUnauthorized},
		{name: "Missing Header", expectedStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newAuthRequest(t, env, tt.authHeader)
			assert.Equal(t, tt.expectedStatus, r.StatusCode)
		})
	}
}

func newAuthRequest(t *testing.T, env *testEnv, authHeader string) *http.Response {
	t.Helper()
	app := fiber.New()
	app.Get("/protected", env.server.SessionRequired(), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"userID": c.Locals("userID")})
	})
	req, err := http.NewRequest(http.MethodGet, "/protected", nil)
	require.NoError(t, err)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestDeleteSession_RevokesToken(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	revoker := new(MockRevoker)
	env.server.sessions = revoker

	token := env.token(t, mariaID)
	revoker.On("IsRevoked", mock.Anything, mock.AnythingOfType("string")).Return(false, nil).Twice()
	revoker.On("Revoke", mock.Anything, mock.AnythingOfType("string"),
		mock.MatchedBy(func(ttl time.Duration) bool { return ttl > 0 && ttl <= time.Hour })).Return(nil).Once()

	resp := env.do(t, http.MethodGet, "/api/session", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(t, http.MethodDelete, "/api/session", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	revoker.On("IsRevoked", mock.Anything, mock.AnythingOfType("string")).Return(true, nil)
	resp = env.do(t, http.MethodGet, "/api/session", token, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	revoker.AssertExpectations(t)
}

func TestDeleteSession_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	env := newTestEnv(t, &config.Config{}, rdb)

	token := env.token(t, jamesID)
	other := env.token(t, jamesID)

	resp := env.do(t, http.MethodDelete, "/api/session", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/session", token, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/session", other, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode, "ending one session leaves others open")
}

func TestAdminRequired(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	resp := env.do(t, http.MethodGet, "/api/admin/stats", env.token(t, mariaID), nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/admin/stats", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/admin/stats", env.token(t, adminID), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
