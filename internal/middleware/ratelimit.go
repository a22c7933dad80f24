package middleware

import (
	"context"
	"errors"
	"strconv"
	"time"

	"sublet/internal/models"
	"sublet/internal/observability"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

var errNoRedis = errors.New("redis client is nil")

// Quota is a fixed-window request budget for one user action.
type Quota struct {
	Action string
	Limit  int
	Window time.Duration
	// FailClosed answers 503 when Redis cannot be reached instead of letting the request through.
	FailClosed bool
}

// Budgets for the write actions of the marketplace.
var (
	IdentifyQuota      = Quota{Action: "identify", Limit: 10, Window: time.Minute}
	CreateListingQuota = Quota{Action: "create_listing", Limit: 5, Window: 10 * time.Minute}
	ApplyQuota         = Quota{Action: "apply", Limit: 10, Window: time.Hour}
	MessageQuota       = Quota{Action: "send_message", Limit: 30, Window: time.Minute}
	ReviewQuota        = Quota{Action: "review", Limit: 5, Window: time.Hour}
)

// Usage is the state of a quota window after one request was counted.
type Usage struct {
	Count     int64
	Remaining int
	ResetIn   time.Duration
}

// Allowed reports whether the counted request fits the budget.
func (u Usage) Allowed() bool {
	return u.Remaining >= 0
}

func (q Quota) key(subject string) string {
	return "rl:" + q.Action + ":" + subject
}

// Take counts one request by subject against q. The window starts with the
// first request and the counter disappears with it.
func (q Quota) Take(ctx context.Context, rdb *redis.Client, subject string) (Usage, error) {
	if rdb == nil {
		return Usage{}, errNoRedis
	}

	key := q.key(subject)
	pipe := rdb.TxPipeline()
	pipe.SetNX(ctx, key, 0, q.Window)
	incr := pipe.Incr(ctx, key)
	ttl := pipe.PTTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		observability.RedisErrorRate.WithLabelValues("rate_limit").Inc()
		return Usage{}, err
	}

	count := incr.Val()
	return Usage{
		Count:     count,
		Remaining: q.Limit - int(count),
		ResetIn:   max(ttl.Val(), 0),
	}, nil
}

// Limit enforces q per session user, or per client IP before identify.
func Limit(rdb *redis.Client, q Quota) fiber.Handler {
	return func(c *fiber.Ctx) error {
		subject := "ip:" + c.IP()
		if uid, ok := c.Locals(LocalUserID).(uint); ok {
			subject = "user:" + strconv.FormatUint(uint64(uid), 10)
		}

		usage, err := q.Take(c.UserContext(), rdb, subject)
		if err != nil {
			if !q.FailClosed {
				return c.Next()
			}
			Logger.WarnContext(c.UserContext(), "rate limit unavailable",
				"action", q.Action, "error", err)
			return c.Status(fiber.StatusServiceUnavailable).JSON(models.ErrorResponse{
				Error: "rate limit unavailable",
				Code:  models.CodeInternal,
			})
		}

		c.Set("X-RateLimit-Limit", strconv.Itoa(q.Limit))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(max(usage.Remaining, 0)))
		if !usage.Allowed() {
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(usage.ResetIn.Round(time.Second)/time.Second)))
			return c.Status(fiber.StatusTooManyRequests).JSON(models.ErrorResponse{
				Error: "Too many " + q.Action + " requests, please try again later",
				Code:  "RATE_LIMITED",
			})
		}
		return c.Next()
	}
}
