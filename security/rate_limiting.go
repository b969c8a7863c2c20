package security

import (
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
	"github.com/redis/go-redis/v9"
)

// RateLimiter is a fixed-window Redis counter applied to the auth and
// booking routes. Counters live in Redis so limits hold across instances.
type RateLimiter struct {
	redis  *redis.Client
	window time.Duration
	limit  int64
}

func NewRateLimiter(redisClient *redis.Client, window time.Duration, limit int) *RateLimiter {
	return &RateLimiter{redis: redisClient, window: window, limit: int64(limit)}
}

// Limit wraps a handler with the per-client counter. When Redis is down the
// request passes through; availability beats throttling here.
func (r *RateLimiter) Limit(scope string, next func(*core.RequestEvent) error) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		ctx := e.Request.Context()
		key := fmt.Sprintf("ratelimit:%s:%s", scope, clientIP(e.Request))

		count, err := r.redis.Incr(ctx, key).Result()
		if err == nil {
			if count == 1 {
				r.redis.Expire(ctx, key, r.window)
			}
			if count > r.limit {
				return apis.NewTooManyRequestsError("Rate limit exceeded. Please try again later.", nil)
			}
		}

		return next(e)
	}
}

func clientIP(req *http.Request) string {
	if fwd := req.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	host, _, err := net.SplitHostPort(req.RemoteAddr)
	if err != nil {
		return req.RemoteAddr
	}
	return host
}
