package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_Burst(t *testing.T) {
	rl := NewRateLimiter(1, 3)
	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow("a"), "request %d", i)
	}
	assert.False(t, rl.Allow("a"))
	assert.True(t, rl.Allow("b"), "keys are independent")

	now = now.Add(time.Second)
	assert.True(t, rl.Allow("a"))
}

func TestRateLimiter_Defaults(t *testing.T) {
	rl := NewRateLimiter(0, 0)
	assert.Equal(t, DefaultBurst, rl.burst)
	assert.InDelta(t, float64(DefaultRate), float64(rl.rate), 0.0001)
}

func TestRateLimiter_Sweep(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	rl.Allow("a")
	rl.Allow("b")
	assert.Equal(t, 2, rl.Len())

	now = now.Add(idleTTL + time.Second)
	rl.Allow("c")
	assert.Equal(t, 3, rl.Len(), "requests do not evict")

	assert.Equal(t, 2, rl.Sweep())
	assert.Equal(t, 1, rl.Len())
	assert.Zero(t, rl.Sweep())
}

func TestRateLimiter_Run(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	var mu sync.Mutex
	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	rl.now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}
	rl.Allow("a")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		rl.Run(ctx, 5*time.Millisecond)
		close(done)
	}()

	mu.Lock()
	now = now.Add(idleTTL + time.Second)
	mu.Unlock()
	assert.Eventually(t, func() bool { return rl.Len() == 0 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

func TestRateLimiter_WaitCanceled(t *testing.T) {
	rl := NewRateLimiter(0.001, 1)
	require.True(t, rl.Allow("a"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, rl.Wait(ctx, "a"))
}

func TestRateLimitMiddleware(t *testing.T) {
	e := echo.New()
	rl := NewRateLimiter(1, 2)
	fixed := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return fixed }

	handler := RateLimit(rl, nil)(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	call := func(ip string) error {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(echo.HeaderXRealIP, ip)
		return handler(e.NewContext(req, httptest.NewRecorder()))
	}

	require.NoError(t, call("10.0.0.1"))
	require.NoError(t, call("10.0.0.1"))

	err := call("10.0.0.1")
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusTooManyRequests, httpErr.Code)

	assert.NoError(t, call("10.0.0.2"))
}
