package cache

import (
	"context"
	"fmt"
	"time"

	"sublet/internal/observability"

	"github.com/redis/go-redis/v9"
)

const revokedSessionPrefix = "session:revoked:%s"

// RevokedSessionKey is the Redis key marking a session token id as revoked.
func RevokedSessionKey(jti string) string {
	return fmt.Sprintf(revokedSessionPrefix, jti)
}

// SessionRevocations records ended session tokens until they would have expired.
// A nil Redis client makes every method a no-op.
type SessionRevocations struct {
	rdb   *redis.Client
	spans *observability.Spans
}

// NewSessionRevocations returns a revocation list backed by rdb.
func NewSessionRevocations(rdb *redis.Client) *SessionRevocations {
	return &SessionRevocations{rdb: rdb, spans: observability.DefaultSpans()}
}

// Enabled reports whether revocations are persisted.
func (r *SessionRevocations) Enabled() bool {
	return r != nil && r.rdb != nil
}

// Revoke marks jti revoked for ttl. Non-positive ttls are ignored since the token has expired.
func (r *SessionRevocations) Revoke(ctx context.Context, jti string, ttl time.Duration) (err error) {
	if !r.Enabled() || jti == "" || ttl <= 0 {
		return nil
	}
	ctx, span := r.spans.Redis(ctx, "session_revoke")
	defer func() { observability.Finish(span, err) }()

	if err = r.rdb.Set(ctx, RevokedSessionKey(jti), 1, ttl).Err(); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

// IsRevoked reports whether jti was revoked.
func (r *SessionRevocations) IsRevoked(ctx context.Context, jti string) (revoked bool, err error) {
	if !r.Enabled() || jti == "" {
		return false, nil
	}
	ctx, span := r.spans.Redis(ctx, "session_is_revoked")
	defer func() { observability.Finish(span, err) }()

	n, err := r.rdb.Exists(ctx, RevokedSessionKey(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("check session revocation: %w", err)
	}
	return n > 0, nil
}
