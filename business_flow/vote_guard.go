package businessflow

import (
	"context"
	"time"

	"github.com/hoofmatch/hoofmatch/utils"
)

// Guard outcomes. Throttle is a retryable back-off signal; block is terminal
// for the window.
type GuardOutcome string

const (
	GuardAllow    GuardOutcome = "allow"
	GuardThrottle GuardOutcome = "throttle"
	GuardBlock    GuardOutcome = "block"
)

// GuardDecision is the transient result of one guard evaluation; nothing
// about it is persisted.
type GuardDecision struct {
	Outcome    GuardOutcome
	Reason     string
	RetryAfter time.Duration
}

// Allowed reports whether the vote may proceed
func (d GuardDecision) Allowed() bool {
	return d.Outcome == GuardAllow
}

// GuardThreshold is one trailing-window limit
type GuardThreshold struct {
	Window time.Duration
	Limit  int64
}

// VoteGuardConfig holds the three independently tunable thresholds
type VoteGuardConfig struct {
	Short      GuardThreshold
	Long       GuardThreshold
	PerProfile GuardThreshold
}

// DefaultVoteGuardConfig returns the production thresholds
func DefaultVoteGuardConfig() VoteGuardConfig {
	return VoteGuardConfig{
		Short:      GuardThreshold{Window: utils.GuardShortWindow, Limit: utils.GuardShortLimit},
		Long:       GuardThreshold{Window: utils.GuardLongWindow, Limit: utils.GuardLongLimit},
		PerProfile: GuardThreshold{Window: utils.GuardProfileWindow, Limit: utils.GuardProfileLimit},
	}
}

// VoteActivityCounter is the slice of the vote ledger the guard needs:
// trailing-window counts per client hash. Satisfied by
// repository.VoteEventRepository.
type VoteActivityCounter interface {
	CountByClientSince(ctx context.Context, clientHash string, since time.Time) (int64, error)
	CountByClientProfileSince(ctx context.Context, clientHash, profileKey string, since time.Time) (int64, error)
}

// VoteGuard is the layered abuse-prevention policy evaluated before a vote is
// persisted. Counts are recomputed from the ledger on every call, so there is
// no counter state to drift. Checks run in a fixed order and short-circuit on
// the first violation: short window (throttle), long window (block),
// per-profile repeat window (block).
type VoteGuard struct {
	counter VoteActivityCounter
	config  VoteGuardConfig
}

// NewVoteGuard creates a new vote guard
func NewVoteGuard(counter VoteActivityCounter, config VoteGuardConfig) *VoteGuard {
	return &VoteGuard{counter: counter, config: config}
}

// Evaluate decides whether a client may vote on a profile right now. An empty
// clientHash means the client could not be identified; the guard degrades
// open rather than blocking anonymous traffic it cannot characterize. A nil
// counter (no ledger configured) also allows: the vote itself fails further
// down with a persistence error.
func (g *VoteGuard) Evaluate(ctx context.Context, clientHash, profileKey string) (GuardDecision, error) {
	if g.counter == nil || clientHash == "" {
		return GuardDecision{Outcome: GuardAllow}, nil
	}

	now := utils.UTCNow()

	count, err := g.counter.CountByClientSince(ctx, clientHash, now.Add(-g.config.Short.Window))
	if err != nil {
		return GuardDecision{}, NewBusinessError("GUARD_COUNT_FAILED", "Failed to count recent votes", err)
	}
	if count >= g.config.Short.Limit {
		return GuardDecision{
			Outcome:    GuardThrottle,
			Reason:     "too many votes in the last minute",
			RetryAfter: g.config.Short.Window,
		}, nil
	}

	count, err = g.counter.CountByClientSince(ctx, clientHash, now.Add(-g.config.Long.Window))
	if err != nil {
		return GuardDecision{}, NewBusinessError("GUARD_COUNT_FAILED", "Failed to count recent votes", err)
	}
	if count >= g.config.Long.Limit {
		return GuardDecision{
			Outcome:    GuardBlock,
			Reason:     "hourly vote limit reached",
			RetryAfter: g.config.Long.Window,
		}, nil
	}

	count, err = g.counter.CountByClientProfileSince(ctx, clientHash, profileKey, now.Add(-g.config.PerProfile.Window))
	if err != nil {
		return GuardDecision{}, NewBusinessError("GUARD_COUNT_FAILED", "Failed to count recent votes", err)
	}
	if count >= g.config.PerProfile.Limit {
		return GuardDecision{
			Outcome:    GuardBlock,
			Reason:     "too many votes for this profile today",
			RetryAfter: g.config.PerProfile.Window,
		}, nil
	}

	return GuardDecision{Outcome: GuardAllow}, nil
}
