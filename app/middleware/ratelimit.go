package middleware

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/hoofmatch/hoofmatch/app/dto"
	"github.com/hoofmatch/hoofmatch/identity"
	"github.com/hoofmatch/hoofmatch/utils"
)

// RateLimiter is an in-process sliding-window request limiter. Each key keeps
// the timestamps of its requests inside the trailing window; expired entries
// are pruned on every check. All state lives behind one mutex so concurrent
// requests for the same key never double-admit.
type RateLimiter struct {
	mu      sync.Mutex
	now     func() time.Time
	history map[string][]time.Time
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		now:     utils.UTCNow,
		history: make(map[string][]time.Time),
	}
}

// Check records a request for key and reports whether it fits inside the
// window. remaining is the number of further requests the key may make right
// now; a denied request is not recorded and does not extend the window.
func (l *RateLimiter) Check(key string, max int, window time.Duration) (allowed bool, remaining int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-window)

	kept := l.history[key][:0]
	for _, ts := range l.history[key] {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}

	if len(kept) >= max {
		l.history[key] = kept
		return false, 0
	}

	kept = append(kept, now)
	l.history[key] = kept
	return true, max - len(kept)
}

// Reset drops all recorded history for key
func (l *RateLimiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.history, key)
}

// Limit returns a Fiber middleware enforcing max requests per window. The
// budget is scoped per client address and per profile: a route carrying an
// :id parameter keys on the profile's normalized identity, so voting on one
// profile never consumes another profile's budget and the same profile under
// different identifier spellings shares a single budget.
func Limit(limiter *RateLimiter, max int, window time.Duration) fiber.Handler {
	return func(c fiber.Ctx) error {
		key := ClientAddress(c) + " " + limitScope(c)

		allowed, _ := limiter.Check(key, max, window)
		if !allowed {
			RecordRateLimitRejection()
			c.Set("Retry-After", formatSeconds(window))
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.APIResponse{
				Success: false,
				Message: "Too many requests. Please try again later.",
				Error: dto.ErrorDetail{
					Code: "RATE_LIMIT_EXCEEDED",
				},
			})
		}

		return c.Next()
	}
}

// limitScope picks the budget scope for the matched route: the normalized
// profile key when the route addresses a profile, else the route template.
// An identifier that fails to normalize scopes by its raw spelling; the
// handler rejects it with a 400 right after.
func limitScope(c fiber.Ctx) string {
	if raw := c.Params("id"); raw != "" {
		if pid, err := identity.Infer(raw, nil); err == nil {
			if norm, err := identity.Normalize(pid); err == nil {
				return norm.Key
			}
		}
		return raw
	}
	if r := c.Route(); r != nil && r.Path != "" {
		return r.Path
	}
	return c.Path()
}

// ClientAddress extracts the best-effort client network address. Proxy
// headers win over the socket address: the first X-Forwarded-For entry, then
// X-Real-IP, then the connection peer.
func ClientAddress(c fiber.Ctx) string {
	if fwd := c.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if addr := strings.TrimSpace(first); addr != "" {
			return addr
		}
	}
	if real := strings.TrimSpace(c.Get("X-Real-IP")); real != "" {
		return real
	}
	return c.IP()
}

func formatSeconds(d time.Duration) string {
	secs := int(d / time.Second)
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}
