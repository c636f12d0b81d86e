package services

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ResendLimiter bounds how many confirmation emails one account may trigger
// within a window.
type ResendLimiter interface {
	Allow(ctx context.Context, email string) (bool, error)
}

type redisResendLimiter struct {
	client   *redis.Client
	window   time.Duration
	maxSends int
}

func NewRedisResendLimiter(client *redis.Client, window time.Duration, maxSends int) ResendLimiter {
	return &redisResendLimiter{client: client, window: window, maxSends: maxSends}
}

func resendKey(email string) string {
	return "confirm-email:sends:" + email
}

// allowScript increments the counter and gives it a TTL in one step, so a
// counter can never be left without an expiry.
var allowScript = redis.NewScript(`
local n = redis.call("INCR", KEYS[1])
if redis.call("PTTL", KEYS[1]) < 0 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return n
`)

// Allow counts the request in a fixed window that starts with the first send.
func (l *redisResendLimiter) Allow(ctx context.Context, email string) (bool, error) {
	n, err := allowScript.Run(ctx, l.client, []string{resendKey(email)}, l.window.Milliseconds()).Int64()
	if err != nil {
		return false, fmt.Errorf("resend limiter: %w", err)
	}
	return n <= int64(l.maxSends), nil
}

type noopResendLimiter struct{}

// NewNoopResendLimiter allows every request; used when Redis is not configured.
func NewNoopResendLimiter() ResendLimiter { return noopResendLimiter{} }

func (noopResendLimiter) Allow(context.Context, string) (bool, error) { return true, nil }
