package middleware

import (
	"fmt"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiterAllowsUpToMax(t *testing.T) {
	l := NewRateLimiter()

	for i := 0; i < 5; i++ {
		allowed, remaining := l.Check("client", 5, time.Minute)
		require.True(t, allowed)
		assert.Equal(t, 4-i, remaining)
	}

	allowed, remaining := l.Check("client", 5, time.Minute)
	assert.False(t, allowed)
	assert.Equal(t, 0, remaining)
}

func TestRateLimiterWindowSlides(t *testing.T) {
	current := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	l := NewRateLimiter()
	l.now = func() time.Time { return current }

	// Admit three requests ten seconds apart, exhausting the budget.
	for i := 0; i < 3; i++ {
		allowed, _ := l.Check("client", 3, time.Minute)
		require.True(t, allowed)
		current = current.Add(10 * time.Second)
	}
	allowed, _ := l.Check("client", 3, time.Minute)
	require.False(t, allowed)

	// 61s after the first request only that one has expired, so exactly one
	// slot opens; admitting into it spends the budget again.
	current = current.Add(31 * time.Second)
	allowed, remaining := l.Check("client", 3, time.Minute)
	assert.True(t, allowed)
	assert.Equal(t, 0, remaining)

	allowed, _ = l.Check("client", 3, time.Minute)
	assert.False(t, allowed)
}

func TestRateLimiterDeniedRequestNotRecorded(t *testing.T) {
	current := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	l := NewRateLimiter()
	l.now = func() time.Time { return current }

	allowed, _ := l.Check("client", 1, time.Minute)
	require.True(t, allowed)

	// Hammering while denied must not push the recovery point out.
	for i := 0; i < 10; i++ {
		current = current.Add(5 * time.Second)
		allowed, _ = l.Check("client", 1, time.Minute)
		require.False(t, allowed)
	}

	current = current.Add(11 * time.Second) // 61s after the admitted request
	allowed, _ = l.Check("client", 1, time.Minute)
	assert.True(t, allowed)
}

func TestRateLimiterKeysAreIndependent(t *testing.T) {
	l := NewRateLimiter()

	allowed, _ := l.Check("a", 1, time.Minute)
	require.True(t, allowed)
	allowed, _ = l.Check("a", 1, time.Minute)
	require.False(t, allowed)

	allowed, _ = l.Check("b", 1, time.Minute)
	assert.True(t, allowed)
}

func TestRateLimiterReset(t *testing.T) {
	l := NewRateLimiter()

	allowed, _ := l.Check("client", 1, time.Minute)
	require.True(t, allowed)
	allowed, _ = l.Check("client", 1, time.Minute)
	require.False(t, allowed)

	l.Reset("client")

	allowed, _ = l.Check("client", 1, time.Minute)
	assert.True(t, allowed)
}

func TestLimitScopesBudgetPerProfile(t *testing.T) {
	l := NewRateLimiter()
	app := fiber.New()
	app.Post("/api/v1/profiles/:id/vote",
		Limit(l, 2, time.Minute),
		func(c fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) },
	)

	vote := func(id, forwardedFor string) int {
		req := httptest.NewRequest(fiber.MethodPost, "/api/v1/profiles/"+id+"/vote", nil)
		if forwardedFor != "" {
			req.Header.Set("X-Forwarded-For", forwardedFor)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		resp.Body.Close()
		return resp.StatusCode
	}

	// One vote each on three distinct profiles fits every per-profile budget.
	for _, id := range []string{"51677b91", "a5a6b23d", "9a164979"} {
		assert.Equal(t, fiber.StatusOK, vote(id, ""))
	}

	// Different spellings of the same profile share one budget.
	assert.Equal(t, fiber.StatusOK, vote("seed:51677b91", ""))
	assert.Equal(t, fiber.StatusTooManyRequests, vote("51677b91", ""))

	// Other profiles from the same client are unaffected.
	assert.Equal(t, fiber.StatusOK, vote("a5a6b23d", ""))

	// Another client has its own budget for the exhausted profile.
	assert.Equal(t, fiber.StatusOK, vote("51677b91", "203.0.113.9"))
}

func TestRateLimiterConcurrentChecks(t *testing.T) {
	l := NewRateLimiter()

	const workers = 20
	const perWorker = 10
	const max = 50

	var wg sync.WaitGroup
	var mu sync.Mutex
	admitted := 0

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				if allowed, _ := l.Check("shared", max, time.Minute); allowed {
					mu.Lock()
					admitted++
					mu.Unlock()
				}
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, max, admitted, fmt.Sprintf("exactly %d of %d requests should be admitted", max, workers*perWorker))
}
