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

func TestRateLimiter_Allow(t *testing.T) {
	rl := NewRateLimiterWithConfig(60, 2)
	defer rl.Stop()

	assert.True(t, rl.Allow(1))
	assert.True(t, rl.Allow(1))
	// Burst exhausted
	assert.False(t, rl.Allow(1))

	// Another business has its own bucket
	assert.True(t, rl.Allow(2))
}

func TestRateLimiter_Replenishes(t *testing.T) {
	// 600/min = 10/sec, so one token comes back quickly
	rl := NewRateLimiterWithConfig(600, 1)
	defer rl.Stop()

	assert.True(t, rl.Allow(1))
	assert.False(t, rl.Allow(1))

	time.Sleep(150 * time.Millisecond)
	assert.True(t, rl.Allow(1))
}

func TestRateLimitMiddleware(t *testing.T) {
	rl := NewRateLimiterWithConfig(60, 1)
	defer rl.Stop()

	e := echo.New()
	handler := RateLimitMiddleware(rl)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	do := func(businessID string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("businessId")
		c.SetParamValues(businessID)
		require.NoError(t, handler(c))
		return rec
	}

	rec := do("7")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do("7")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	// Different business unaffected
	rec = do("8")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimitMiddleware_InvalidIDPassesThrough(t *testing.T) {
	rl := NewRateLimiterWithConfig(60, 1)
	defer rl.Stop()

	e := echo.New()
	handler := RateLimitMiddleware(rl)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("businessId")
	c.SetParamValues("abc")
	require.NoError(t, handler(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}
