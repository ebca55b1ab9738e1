package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"contact-gateway-server/pkg/models"
)

// bucket is one client's counter within the current fixed window.
type bucket struct {
	count   int
	resetAt time.Time
}

// FixedWindowLimiter bounds accepted POSTs per client identity within a
// fixed time window. The window resets wholesale the instant it
// elapses; rejected attempts do not extend it. A client can land up to
// 2×max requests across a window edge.
//
// Safe for concurrent use. Buckets expire logically via the resetAt
// check and are physically pruned by the sweep loop, so the map stays
// bounded under sustained unique-client traffic.
type FixedWindowLimiter struct {
	max    int
	window time.Duration

	mu      sync.Mutex
	buckets map[string]*bucket

	now  func() time.Time // injectable for tests
	done chan struct{}
}

// NewFixedWindowLimiter creates a limiter allowing max requests per key
// per window.
func NewFixedWindowLimiter(max int, window time.Duration) *FixedWindowLimiter {
	return &FixedWindowLimiter{
		max:     max,
		window:  window,
		buckets: make(map[string]*bucket),
		now:     time.Now,
		done:    make(chan struct{}),
	}
}

// Allow records an attempt for key and reports whether it fits in the
// current window. Allowed attempts always advance the counter,
// regardless of what happens to the request downstream.
func (l *FixedWindowLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, ok := l.buckets[key]
	if !ok || now.After(b.resetAt) {
		l.buckets[key] = &bucket{count: 1, resetAt: now.Add(l.window)}
		return true
	}
	if b.count >= l.max {
		// Bucket unchanged: a rejected attempt must not extend the window.
		return false
	}
	b.count++
	return true
}

// StartSweep prunes expired buckets every interval until Stop is
// called.
func (l *FixedWindowLimiter) StartSweep(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				l.sweep()
			case <-l.done:
				return
			}
		}
	}()
}

// Stop terminates the sweep loop.
func (l *FixedWindowLimiter) Stop() {
	close(l.done)
}

func (l *FixedWindowLimiter) sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for key, b := range l.buckets {
		if now.After(b.resetAt) {
			delete(l.buckets, key)
		}
	}
}

// Len reports the number of live buckets, for health metrics.
func (l *FixedWindowLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// GetStats returns current limiter statistics for monitoring.
func (l *FixedWindowLimiter) GetStats() map[string]interface{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	return map[string]interface{}{
		"max_per_window": l.max,
		"window":         l.window.String(),
		"active_buckets": len(l.buckets),
	}
}

// Middleware returns an Echo middleware enforcing the limit, keyed by
// client IP. Only POST requests consume a slot; preflight and health
// traffic pass through. It runs before body parsing and validation, so
// an invalid submission still consumes a slot.
func (l *FixedWindowLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Method != http.MethodPost {
				return next(c)
			}
			if !l.Allow(c.RealIP()) {
				return c.JSON(http.StatusTooManyRequests, models.ErrorResponse{Error: "Rate limit exceeded."})
			}
			return next(c)
		}
	}
}
