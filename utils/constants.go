package utils

import (
	"time"
)

// Vote guard thresholds. Each pair is a trailing window and the maximum
// number of votes a single client may record inside it.
const (
	// GuardShortWindow catches bursts (bots, rapid-fire swiping scripts).
	GuardShortWindow = time.Minute
	GuardShortLimit  = 15

	// GuardLongWindow catches sustained scripted abuse.
	GuardLongWindow = time.Hour
	GuardLongLimit  = 120

	// GuardProfileWindow catches like-bombing of a single profile.
	GuardProfileWindow = 24 * time.Hour
	GuardProfileLimit  = 6
)

// Request-level rate limit defaults, applied before the guard runs.
const (
	VoteRateLimitMax       = 30
	VoteRateLimitWindow    = time.Minute
	GeneralRateLimitMax    = 120
	GeneralRateLimitWindow = time.Minute
)

// Leaderboard defaults
const (
	LeaderboardDefaultLimit = 25
	LeaderboardMaxLimit     = 100

	// LeaderboardCacheTTL bounds staleness of the cached leaderboard response.
	LeaderboardCacheTTL = 30 * time.Second

	LeaderboardCacheKey = "hoofmatch:leaderboard"
)

// CORS and security constants
const (
	// CORSMaxAge is the maximum age for CORS preflight requests (24 hours)
	CORSMaxAge = 86400
)
