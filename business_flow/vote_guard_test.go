package businessflow

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubActivityCounter serves canned window counts: the first client-wide call
// gets shortCount, the second gets longCount.
type stubActivityCounter struct {
	shortCount   int64
	longCount    int64
	profileCount int64
	err          error

	clientCalls  int
	profileCalls int
}

func (s *stubActivityCounter) CountByClientSince(ctx context.Context, clientHash string, since time.Time) (int64, error) {
	s.clientCalls++
	if s.err != nil {
		return 0, s.err
	}
	if s.clientCalls == 1 {
		return s.shortCount, nil
	}
	return s.longCount, nil
}

func (s *stubActivityCounter) CountByClientProfileSince(ctx context.Context, clientHash, profileKey string, since time.Time) (int64, error) {
	s.profileCalls++
	if s.err != nil {
		return 0, s.err
	}
	return s.profileCount, nil
}

func testGuardConfig() VoteGuardConfig {
	return VoteGuardConfig{
		Short:      GuardThreshold{Window: time.Minute, Limit: 15},
		Long:       GuardThreshold{Window: time.Hour, Limit: 120},
		PerProfile: GuardThreshold{Window: 24 * time.Hour, Limit: 6},
	}
}

func TestVoteGuardAllowsUnderAllThresholds(t *testing.T) {
	counter := &stubActivityCounter{shortCount: 3, longCount: 40, profileCount: 2}
	guard := NewVoteGuard(counter, testGuardConfig())

	decision, err := guard.Evaluate(context.Background(), "hash", "seed:51677b91")
	require.NoError(t, err)
	assert.True(t, decision.Allowed())
	assert.Equal(t, GuardAllow, decision.Outcome)

	// All three windows were consulted.
	assert.Equal(t, 2, counter.clientCalls)
	assert.Equal(t, 1, counter.profileCalls)
}

func TestVoteGuardAllowsUnidentifiedClient(t *testing.T) {
	counter := &stubActivityCounter{shortCount: 1000, longCount: 1000, profileCount: 1000}
	guard := NewVoteGuard(counter, testGuardConfig())

	decision, err := guard.Evaluate(context.Background(), "", "seed:51677b91")
	require.NoError(t, err)
	assert.True(t, decision.Allowed())

	// Degrades open without touching the ledger.
	assert.Equal(t, 0, counter.clientCalls)
	assert.Equal(t, 0, counter.profileCalls)
}

func TestVoteGuardAllowsWithoutCounter(t *testing.T) {
	guard := NewVoteGuard(nil, testGuardConfig())

	decision, err := guard.Evaluate(context.Background(), "hash", "seed:51677b91")
	require.NoError(t, err)
	assert.True(t, decision.Allowed())
}

func TestVoteGuardShortWindowThrottles(t *testing.T) {
	counter := &stubActivityCounter{shortCount: 15, longCount: 0, profileCount: 0}
	guard := NewVoteGuard(counter, testGuardConfig())

	decision, err := guard.Evaluate(context.Background(), "hash", "seed:51677b91")
	require.NoError(t, err)
	assert.Equal(t, GuardThrottle, decision.Outcome)
	assert.Contains(t, decision.Reason, "last minute")
	assert.Equal(t, time.Minute, decision.RetryAfter)

	// Short-circuits before the other windows.
	assert.Equal(t, 1, counter.clientCalls)
	assert.Equal(t, 0, counter.profileCalls)
}

func TestVoteGuardLongWindowBlocks(t *testing.T) {
	counter := &stubActivityCounter{shortCount: 3, longCount: 120, profileCount: 0}
	guard := NewVoteGuard(counter, testGuardConfig())

	decision, err := guard.Evaluate(context.Background(), "hash", "seed:51677b91")
	require.NoError(t, err)
	assert.Equal(t, GuardBlock, decision.Outcome)
	assert.Contains(t, decision.Reason, "hourly")
	assert.Equal(t, time.Hour, decision.RetryAfter)

	assert.Equal(t, 2, counter.clientCalls)
	assert.Equal(t, 0, counter.profileCalls)
}

func TestVoteGuardPerProfileBlocks(t *testing.T) {
	counter := &stubActivityCounter{shortCount: 3, longCount: 40, profileCount: 6}
	guard := NewVoteGuard(counter, testGuardConfig())

	decision, err := guard.Evaluate(context.Background(), "hash", "seed:51677b91")
	require.NoError(t, err)
	assert.Equal(t, GuardBlock, decision.Outcome)
	assert.Contains(t, decision.Reason, "profile")
	assert.Equal(t, 24*time.Hour, decision.RetryAfter)

	assert.Equal(t, 1, counter.profileCalls)
}

func TestVoteGuardShortWindowWinsWhenSeveralBreached(t *testing.T) {
	// Every threshold is breached; the fixed evaluation order means the
	// short-window throttle is reported, not a block.
	counter := &stubActivityCounter{shortCount: 50, longCount: 500, profileCount: 50}
	guard := NewVoteGuard(counter, testGuardConfig())

	decision, err := guard.Evaluate(context.Background(), "hash", "seed:51677b91")
	require.NoError(t, err)
	assert.Equal(t, GuardThrottle, decision.Outcome)
	assert.Equal(t, 1, counter.clientCalls)
}

func TestVoteGuardCountFailure(t *testing.T) {
	counter := &stubActivityCounter{err: errors.New("connection refused")}
	guard := NewVoteGuard(counter, testGuardConfig())

	_, err := guard.Evaluate(context.Background(), "hash", "seed:51677b91")
	require.Error(t, err)

	var bizErr *BusinessError
	require.ErrorAs(t, err, &bizErr)
	assert.Equal(t, "GUARD_COUNT_FAILED", bizErr.Code)
}

func TestDefaultVoteGuardConfig(t *testing.T) {
	cfg := DefaultVoteGuardConfig()
	assert.Equal(t, GuardThreshold{Window: time.Minute, Limit: 15}, cfg.Short)
	assert.Equal(t, GuardThreshold{Window: time.Hour, Limit: 120}, cfg.Long)
	assert.Equal(t, GuardThreshold{Window: 24 * time.Hour, Limit: 6}, cfg.PerProfile)
}
