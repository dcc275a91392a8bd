package middleware

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRateLimitRedis(t *testing.T) *redis.Client {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return rdb
}

func TestCheckRateLimit_AllowsUnderLimit(t *testing.T) {
	t.Setenv("APP_ENV", "staging")
	rdb := setupRateLimitRedis(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, err := CheckRateLimit(ctx, rdb, "signup", "ip:10.0.0.1", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed, "request %d should be allowed", i+1)
	}

	allowed, err := CheckRateLimit(ctx, rdb, "signup", "ip:10.0.0.1", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed, "fourth request should exceed the limit")
}

func TestCheckRateLimit_KeysAreIndependent(t *testing.T) {
	t.Setenv("APP_ENV", "staging")
	rdb := setupRateLimitRedis(t)
	ctx := context.Background()

	allowed, err := CheckRateLimit(ctx, rdb, "login", "ip:10.0.0.1", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = CheckRateLimit(ctx, rdb, "login", "ip:10.0.0.1", 1, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed)

	// A different client and a different resource both start fresh.
	allowed, err = CheckRateLimit(ctx, rdb, "login", "ip:10.0.0.2", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = CheckRateLimit(ctx, rdb, "comment", "ip:10.0.0.1", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestCheckRateLimit_DisabledInTestEnv(t *testing.T) {
	t.Setenv("APP_ENV", "test")

	// No Redis at all: the check must still pass in test env.
	allowed, err := CheckRateLimit(context.Background(), nil, "signup", "ip:10.0.0.1", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestRateLimitMiddleware(t *testing.T) {
	t.Setenv("APP_ENV", "staging")
	rdb := setupRateLimitRedis(t)

	app := fiber.New()
	app.Post("/comment", RateLimit(rdb, 2, time.Minute, "comment"), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	for i := 0; i < 2; i++ {
		resp, err := app.Test(httptest.NewRequest("POST", "/comment", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	}

	resp, err := app.Test(httptest.NewRequest("POST", "/comment", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
}

func TestRateLimitMiddleware_FailOpenWithoutRedis(t *testing.T) {
	t.Setenv("APP_ENV", "staging")

	app := fiber.New()
	app.Post("/comment", RateLimit(nil, 1, time.Minute, "comment"), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	for i := 0; i < 3; i++ {
		resp, err := app.Test(httptest.NewRequest("POST", "/comment", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	}
}
