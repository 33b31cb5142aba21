package middleware

import (
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLimitedApp(t *testing.T, max int, window time.Duration) *fiber.App {
	t.Helper()

	rl := NewRateLimiter(RateLimiterConfig{Max: max, Window: window})
	t.Cleanup(rl.Stop)

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(slog.Default())})
	app.Use(rl.Handler())
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	return app
}

func TestRateLimiterAllowsWithinLimit(t *testing.T) {
	app := newLimitedApp(t, 3, time.Minute)

	for i := 0; i < 3; i++ {
		resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	}
}

func TestRateLimiterBlocksOverLimit(t *testing.T) {
	app := newLimitedApp(t, 2, time.Minute)

	for i := 0; i < 2; i++ {
		resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
	}

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("Retry-After"))
}

func TestRateLimiterSetsHeaders(t *testing.T) {
	app := newLimitedApp(t, 10, time.Minute)

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, "10", resp.Header.Get("X-RateLimit-Limit"))
	assert.Equal(t, "9", resp.Header.Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, resp.Header.Get("X-RateLimit-Reset"))
}

func TestRateLimiterNewWindowResets(t *testing.T) {
	app := newLimitedApp(t, 1, 50*time.Millisecond)

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)

	time.Sleep(80 * time.Millisecond)

	resp, err = app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestIntToString(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{0, "0"}, {7, "7"}, {42, "42"}, {-3, "-3"}, {1000, "1000"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, intToString(tt.in))
	}
}
