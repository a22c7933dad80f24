package middleware

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestQuotaTake(t *testing.T) {
	mr, rdb := newRedis(t)
	ctx := context.Background()
	q := Quota{Action: "send_message", Limit: 3, Window: time.Minute}

	for i := 1; i <= 3; i++ {
		usage, err := q.Take(ctx, rdb, "user:3")
		require.NoError(t, err)
		assert.True(t, usage.Allowed(), "request %d", i)
		assert.Equal(t, 3-i, usage.Remaining)
	}

	usage, err := q.Take(ctx, rdb, "user:3")
	require.NoError(t, err)
	assert.False(t, usage.Allowed())
	assert.Equal(t, int64(4), usage.Count)

	assert.Equal(t, time.Minute, mr.TTL("rl:send_message:user:3"), "counting does not extend the window")

	mr.FastForward(time.Minute + time.Second)
	usage, err = q.Take(ctx, rdb, "user:3")
	require.NoError(t, err)
	assert.True(t, usage.Allowed(), "window expired")
	assert.Equal(t, int64(1), usage.Count)

	usage, err = q.Take(ctx, rdb, "user:4")
	require.NoError(t, err)
	assert.Equal(t, int64(1), usage.Count, "subjects are counted separately")
}

func TestQuotaTake_NilRedis(t *testing.T) {
	_, err := IdentifyQuota.Take(context.Background(), nil, "ip:1")
	assert.ErrorIs(t, err, errNoRedis)
}

func TestLimitMiddleware(t *testing.T) {
	_, rdb := newRedis(t)
	q := Quota{Action: "send_message", Limit: 2, Window: time.Minute}

	app := fiber.New()
	app.Post("/api/messages",
		func(c *fiber.Ctx) error {
			c.Locals(LocalUserID, uint(3))
			return c.Next()
		},
		Limit(rdb, q),
		func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusCreated) },
	)

	codes := make([]int, 0, 3)
	var last string
	for i := 0; i < 3; i++ {
		resp, err := app.Test(httptest.NewRequest("POST", "/api/messages", nil))
		require.NoError(t, err)
		codes = append(codes, resp.StatusCode)
		last = resp.Header.Get(fiber.HeaderRetryAfter)
	}
	assert.Equal(t, []int{fiber.StatusCreated, fiber.StatusCreated, fiber.StatusTooManyRequests}, codes)
	assert.Equal(t, "60", last)
}

func TestLimit_RedisDown(t *testing.T) {
	tests := []struct {
		name       string
		failClosed bool
		want       int
	}{
		{"fail open", false, fiber.StatusOK},
		{"fail closed", true, fiber.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := Quota{Action: "identify", Limit: 1, Window: time.Minute, FailClosed: tt.failClosed}
			app := fiber.New()
			app.Get("/", Limit(nil, q), func(c *fiber.Ctx) error {
				return c.SendStatus(fiber.StatusOK)
			})
			resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}
