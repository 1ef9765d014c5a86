package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

const (
	sweepInterval = 3 * time.Minute
	visitorTTL    = 5 * time.Minute
)

// visitor tracks one client IP's token bucket and when it last showed up,
// so idle entries can be swept.
type visitor struct {
	bucket   *rate.Limiter
	lastSeen time.Time
}

// RateLimiter enforces a per-IP request budget for one endpoint group. The
// signature endpoint gets a tight budget: issuance is cheap to request and
// expensive to let run away.
type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rate     rate.Limit
	burst    int
}

// NewRateLimiter creates a per-IP limiter allowing r requests per second
// with the given burst, and starts its background sweep.
func NewRateLimiter(r rate.Limit, burst int) *RateLimiter {
	rl := &RateLimiter{
		visitors: make(map[string]*visitor),
		rate:     r,
		burst:    burst,
	}
	go rl.sweep()
	return rl
}

// bucketFor returns the client's token bucket, creating it on first sight.
func (rl *RateLimiter) bucketFor(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if v, ok := rl.visitors[ip]; ok {
		v.lastSeen = time.Now()
		return v.bucket
	}

	v := &visitor{bucket: rate.NewLimiter(rl.rate, rl.burst), lastSeen: time.Now()}
	rl.visitors[ip] = v
	return v.bucket
}

// sweep drops visitors that have been idle past the TTL.
func (rl *RateLimiter) sweep() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for range ticker.C {
		rl.mu.Lock()
		for ip, v := range rl.visitors {
			if time.Since(v.lastSeen) > visitorTTL {
				delete(rl.visitors, ip)
			}
		}
		rl.mu.Unlock()
	}
}

// Middleware returns an Echo middleware that enforces the rate limit,
// answering refused requests with 429 and a Retry-After hint.
func (rl *RateLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !rl.bucketFor(c.RealIP()).Allow() {
				retryAfter := max(int(1.0/float64(rl.rate)), 1)
				c.Response().Header().Set("Retry-After", strconv.Itoa(retryAfter))
				return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
			}

			return next(c)
		}
	}
}
