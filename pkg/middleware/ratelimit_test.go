package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixedWindowLimiter_AllowsUpToMax(t *testing.T) {
	l := NewFixedWindowLimiter(5, time.Minute)

	for i := 0; i < 5; i++ {
		assert.True(t, l.Allow("client-a"), "request %d", i+1)
	}
	assert.False(t, l.Allow("client-a"))
}

func TestFixedWindowLimiter_IndependentKeys(t *testing.T) {
	l := NewFixedWindowLimiter(1, time.Minute)

	assert.True(t, l.Allow("client-a"))
	assert.False(t, l.Allow("client-a"))
	assert.True(t, l.Allow("client-b"))
}

func TestFixedWindowLimiter_WindowReset(t *testing.T) {
	l := NewFixedWindowLimiter(5, time.Minute)
	now := time.Unix(1_700_000_000, 0)
	l.now = func() time.Time { return now }

	for i := 0; i < 5; i++ {
		require.True(t, l.Allow("client-a"))
	}
	require.False(t, l.Allow("client-a"))

	// Window elapses: the counter resets wholesale and request 7 passes.
	now = now.Add(time.Minute + time.Second)
	assert.True(t, l.Allow("client-a"))
}

func TestFixedWindowLimiter_RejectionDoesNotExtendWindow(t *testing.T) {
	l := NewFixedWindowLimiter(1, time.Minute)
	now := time.Unix(1_700_000_000, 0)
	l.now = func() time.Time { return now }

	require.True(t, l.Allow("client-a"))

	// Hammering a full bucket must not move resetAt.
	for i := 0; i < 10; i++ {
		now = now.Add(5 * time.Second)
		require.False(t, l.Allow("client-a"))
	}

	// 61s after the first (allowed) request the window is over, even
	// though rejected attempts continued into it.
	now = time.Unix(1_700_000_000, 0).Add(time.Minute + time.Second)
	assert.True(t, l.Allow("client-a"))
}

func TestFixedWindowLimiter_SweepPrunesExpiredBuckets(t *testing.T) {
	l := NewFixedWindowLimiter(5, time.Minute)
	now := time.Unix(1_700_000_000, 0)
	l.now = func() time.Time { return now }

	l.Allow("client-a")
	l.Allow("client-b")
	require.Equal(t, 2, l.Len())

	now = now.Add(2 * time.Minute)
	l.sweep()
	assert.Equal(t, 0, l.Len())
}

func TestFixedWindowLimiter_Middleware(t *testing.T) {
	e := echo.New()
	l := NewFixedWindowLimiter(1, time.Minute)
	handler := l.Middleware()(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	do := func(method string) int {
		req := httptest.NewRequest(method, "/contact", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		require.NoError(t, handler(c))
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, do(http.MethodPost))
	assert.Equal(t, http.StatusTooManyRequests, do(http.MethodPost))
	// Non-POST traffic never consumes a slot.
	assert.Equal(t, http.StatusOK, do(http.MethodOptions))
}
