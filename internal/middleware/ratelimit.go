package middleware

import (
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/staplewise/marketplace-backend/internal/handler"
	"github.com/staplewise/marketplace-backend/internal/logging"
	"go.uber.org/zap"
)

// KEYS[1]=key, ARGV: now ms, window start ms, ttl seconds, member, limit.
// Returns the request count in the window, or -1 once the limit is hit.
const luaRateLimit = `
local key = KEYS[1]
local now = tonumber(ARGV[1])
local windowStart = tonumber(ARGV[2])
local ttl = tonumber(ARGV[3])
local member = ARGV[4]

redis.call('ZREMRANGEBYSCORE', key, '0', windowStart)
local count = redis.call('ZCARD', key)
if count < tonumber(ARGV[5]) then
  redis.call('ZADD', key, now, member)
  redis.call('EXPIRE', key, ttl)
  return count + 1
else
  return -1
end
`

func rateLimitKey(path, ip string) string {
	return fmt.Sprintf("rate_limit:auth:%s:ip:%s", path, ip)
}

// RateLimit is a sliding window limiter keyed by route and client IP.
// A nil client disables it; Redis errors let the request through.
func RateLimit(rdb *redis.Client, limit int, window time.Duration, log *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if rdb == nil || limit <= 0 {
			return next
		}
		ttl := int64(math.Ceil(window.Seconds()))
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			key := rateLimitKey(c.Path(), c.RealIP())
			now := time.Now().UnixMilli()
			res, err := rdb.Eval(ctx, luaRateLimit, []string{key},
				now, now-window.Milliseconds(), ttl, uuid.NewString(), limit).Int()
			if err != nil {
				logging.With(ctx, log).Warn("rate limiter unavailable", zap.Error(err))
				return next(c)
			}
			if res < 0 {
				return c.JSON(http.StatusTooManyRequests, handler.NewErrorResponse("rate_limited", "too many requests, try again later"))
			}
			return next(c)
		}
	}
}
