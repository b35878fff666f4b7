package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"drinks-service/internal/auth"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

const (
	headerRateLimitLimit     = "X-RateLimit-Limit"
	headerRateLimitRemaining = "X-RateLimit-Remaining"
	headerRetryAfter         = "Retry-After"
	msgRateLimitExceeded     = "rate limit exceeded"

	limiterIdleTTL       = 10 * time.Minute
	limiterSweepInterval = time.Minute
)

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64 // unix nanos
}

// RateLimiter implements token bucket rate limiting per identity. Buckets
// idle for longer than limiterIdleTTL are dropped; by then they are full
// again, so a fresh bucket behaves the same.
type RateLimiter struct {
	limiters  sync.Map // key -> *limiterEntry
	rate      rate.Limit
	burst     int
	now       func() time.Time
	lastSweep atomic.Int64
}

// NewRateLimiter creates a new rate limiter
// requestsPerSecond: number of requests allowed per second
// burst: maximum burst size
func NewRateLimiter(requestsPerSecond int, burst int) *RateLimiter {
	rl := &RateLimiter{
		rate:  rate.Limit(requestsPerSecond),
		burst: burst,
		now:   time.Now,
	}
	rl.lastSweep.Store(rl.now().UnixNano())
	return rl
}

func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	now := rl.now()
	rl.maybeSweep(now)

	value, ok := rl.limiters.Load(key)
	if !ok {
		value, _ = rl.limiters.LoadOrStore(key, &limiterEntry{limiter: rate.NewLimiter(rl.rate, rl.burst)})
	}
	entry := value.(*limiterEntry)
	entry.lastSeen.Store(now.UnixNano())
	return entry.limiter
}

func (rl *RateLimiter) allow(key string) bool {
	return rl.getLimiter(key).Allow()
}

// maybeSweep lets one caller per interval evict idle buckets.
func (rl *RateLimiter) maybeSweep(now time.Time) {
	last := rl.lastSweep.Load()
	if now.UnixNano()-last < int64(limiterSweepInterval) {
		return
	}
	if !rl.lastSweep.CompareAndSwap(last, now.UnixNano()) {
		return
	}

	cutoff := now.Add(-limiterIdleTTL).UnixNano()
	rl.limiters.Range(func(key, value any) bool {
		if value.(*limiterEntry).lastSeen.Load() < cutoff {
			rl.limiters.Delete(key)
		}
		return true
	})
}

func (rl *RateLimiter) size() int {
	n := 0
	rl.limiters.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// Middleware limits by token subject once the guard has stored verified
// claims, and by client IP before that.
func (rl *RateLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			limiter := rl.getLimiter(rateLimitKey(c))
			limit := strconv.Itoa(rl.burst)

			if !limiter.Allow() {
				c.Response().Header().Set(headerRateLimitLimit, limit)
				c.Response().Header().Set(headerRateLimitRemaining, "0")
				c.Response().Header().Set(headerRetryAfter, "1")
				return echo.NewHTTPError(http.StatusTooManyRequests, msgRateLimitExceeded)
			}

			c.Response().Header().Set(headerRateLimitLimit, limit)
			c.Response().Header().Set(headerRateLimitRemaining, strconv.Itoa(int(limiter.Tokens())))

			return next(c)
		}
	}
}

func rateLimitKey(c echo.Context) string {
	if claims, ok := auth.ClaimsFromContext(c); ok && claims.Subject() != "" {
		return "sub:" + claims.Subject()
	}
	return "ip:" + c.RealIP()
}
