package tests

import (
	"testing"
	"time"

	businessflow "github.com/hoofmatch/hoofmatch/business_flow"
	"github.com/hoofmatch/hoofmatch/identity"
	"github.com/hoofmatch/hoofmatch/models"
	"github.com/hoofmatch/hoofmatch/repository"
	testingutil "github.com/hoofmatch/hoofmatch/testing"
	"github.com/hoofmatch/hoofmatch/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVoteFlowRecordVote(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		profileRepo := repository.NewHorseProfileRepository(testDB.DB)
		eventRepo := repository.NewVoteEventRepository(testDB.DB)
		totalsRepo := repository.NewVoteTotalsRepository(testDB.DB)
		flow := businessflow.NewVoteFlow(profileRepo, eventRepo, totalsRepo, testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		metadata := businessflow.NewClientMetadata("hash-1", "test-agent")

		t.Run("SeedVoteByName", func(t *testing.T) {
			totals, err := flow.RecordVote(ctx, identity.SeedName("Star"), models.VoteDirectionLike, metadata, nil)
			require.NoError(t, err)
			assert.Equal(t, "seed:51677b91", totals.ProfileKey)
			assert.Equal(t, uint(1), totals.Likes)
			assert.Equal(t, uint(0), totals.Dislikes)
			assert.NotNil(t, totals.FirstVoteAt)
		})

		t.Run("LedgerAndTotalsMoveTogether", func(t *testing.T) {
			_, err := flow.RecordVote(ctx, identity.SeedName("Star"), models.VoteDirectionDislike, metadata, nil)
			require.NoError(t, err)

			key := "seed:51677b91"
			eventCount, err := eventRepo.Count(ctx, models.VoteEventFilter{ProfileKey: &key})
			require.NoError(t, err)

			row, err := totalsRepo.ByKey(ctx, key)
			require.NoError(t, err)
			require.NotNil(t, row)
			assert.Equal(t, eventCount, int64(row.Likes+row.Dislikes))
		})

		t.Run("EventCarriesClientHash", func(t *testing.T) {
			hash := "hash-1"
			count, err := eventRepo.Count(ctx, models.VoteEventFilter{ClientHash: &hash})
			require.NoError(t, err)
			assert.Equal(t, int64(2), count)
		})

		t.Run("PersistentProfileVote", func(t *testing.T) {
			profile, err := fixtures.CreateTestHorseProfileNamed("Nightmare")
			require.NoError(t, err)

			totals, err := flow.RecordVote(ctx, identity.Persistent(profile.UUID.String()), models.VoteDirectionLike, metadata, nil)
			require.NoError(t, err)
			assert.Equal(t, "db:"+profile.UUID.String(), totals.ProfileKey)
			assert.Equal(t, uint(1), totals.Likes)
			assert.Equal(t, 0, totals.ProfileAgeDays)
		})

		t.Run("UnknownPersistentProfile", func(t *testing.T) {
			_, err := flow.RecordVote(ctx, identity.Persistent("00000000-0000-0000-0000-000000000001"), models.VoteDirectionLike, metadata, nil)
			require.Error(t, err)
			assert.True(t, businessflow.IsProfileNotFound(err))
		})

		t.Run("InvalidDirection", func(t *testing.T) {
			_, err := flow.RecordVote(ctx, identity.SeedName("Star"), "meh", metadata, nil)
			require.Error(t, err)
			assert.True(t, businessflow.IsInvalidDirection(err))
		})

		t.Run("InvalidIdentifier", func(t *testing.T) {
			_, err := flow.RecordVote(ctx, identity.Persistent("not-a-uuid"), models.VoteDirectionLike, metadata, nil)
			require.Error(t, err)
			assert.True(t, identity.IsInvalidIdentifier(err))
		})

		t.Run("ExplicitTimestamp", func(t *testing.T) {
			ts := time.Date(2026, 1, 15, 9, 30, 0, 0, time.UTC)
			totals, err := flow.RecordVote(ctx, identity.SeedName("Pepper"), models.VoteDirectionLike, metadata, &ts)
			require.NoError(t, err)
			require.NotNil(t, totals.FirstVoteAt)
			assert.Equal(t, "2026-01-15T09:30:00Z", *totals.FirstVoteAt)
		})

		t.Run("MissingMetadataStoresNullHash", func(t *testing.T) {
			_, err := flow.RecordVote(ctx, identity.SeedName("Biscuit"), models.VoteDirectionLike, nil, nil)
			require.NoError(t, err)

			key := "seed:" + identity.HashName("Biscuit")
			events, err := eventRepo.ByFilter(ctx, models.VoteEventFilter{ProfileKey: &key}, "", 0, 0)
			require.NoError(t, err)
			require.Len(t, events, 1)
			assert.Nil(t, events[0].ClientHash)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestVoteFlowFetchTotals(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		profileRepo := repository.NewHorseProfileRepository(testDB.DB)
		eventRepo := repository.NewVoteEventRepository(testDB.DB)
		totalsRepo := repository.NewVoteTotalsRepository(testDB.DB)
		flow := businessflow.NewVoteFlow(profileRepo, eventRepo, totalsRepo, testDB.DB)
		ctx := testingutil.CreateTestContext()

		t.Run("NeverVoted", func(t *testing.T) {
			totals, err := flow.FetchTotals(ctx, identity.SeedName("Duchess"))
			require.NoError(t, err)
			assert.Nil(t, totals)
		})

		t.Run("AfterVoting", func(t *testing.T) {
			_, err := flow.RecordVote(ctx, identity.SeedName("Duchess"), models.VoteDirectionLike, nil, nil)
			require.NoError(t, err)

			totals, err := flow.FetchTotals(ctx, identity.SeedName("Duchess"))
			require.NoError(t, err)
			require.NotNil(t, totals)
			assert.Equal(t, uint(1), totals.Likes)
		})

		t.Run("AllIdentifierFormsResolveToSameTotals", func(t *testing.T) {
			hash := identity.HashName("Duchess")

			byHash, err := flow.FetchTotals(ctx, identity.SeedID(hash))
			require.NoError(t, err)
			require.NotNil(t, byHash)

			byName, err := flow.FetchTotals(ctx, identity.SeedName("Duchess"))
			require.NoError(t, err)
			require.NotNil(t, byName)

			assert.Equal(t, byName.ProfileKey, byHash.ProfileKey)
			assert.Equal(t, byName.Likes, byHash.Likes)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestVoteFlowWithoutPersistence(t *testing.T) {
	flow := businessflow.NewVoteFlow(nil, nil, nil, nil)
	ctx := testingutil.CreateTestContext()

	_, err := flow.RecordVote(ctx, identity.SeedName("Star"), models.VoteDirectionLike, nil, nil)
	assert.True(t, businessflow.IsPersistenceNotConfigured(err))

	_, err = flow.FetchTotals(ctx, identity.SeedName("Star"))
	assert.True(t, businessflow.IsPersistenceNotConfigured(err))

	_, err = flow.ListTop(ctx, models.VoteDirectionLike, 10)
	assert.True(t, businessflow.IsPersistenceNotConfigured(err))

	_, err = flow.Summary(ctx)
	assert.True(t, businessflow.IsPersistenceNotConfigured(err))
}

func TestVoteFlowListTopValidation(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		flow := businessflow.NewVoteFlow(
			repository.NewHorseProfileRepository(testDB.DB),
			repository.NewVoteEventRepository(testDB.DB),
			repository.NewVoteTotalsRepository(testDB.DB),
			testDB.DB,
		)
		ctx := testingutil.CreateTestContext()

		_, err := flow.ListTop(ctx, models.VoteDirectionLike, 0)
		assert.True(t, businessflow.IsInvalidLimit(err))

		_, err = flow.ListTop(ctx, models.VoteDirectionLike, utils.LeaderboardMaxLimit+1)
		assert.True(t, businessflow.IsInvalidLimit(err))

		top, err := flow.ListTop(ctx, models.VoteDirectionLike, utils.LeaderboardMaxLimit)
		require.NoError(t, err)
		assert.Empty(t, top)

		return nil
	})
	require.NoError(t, err)
}

func TestVoteGuardAgainstLedger(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		eventRepo := repository.NewVoteEventRepository(testDB.DB)
		flow := businessflow.NewVoteFlow(
			repository.NewHorseProfileRepository(testDB.DB),
			eventRepo,
			repository.NewVoteTotalsRepository(testDB.DB),
			testDB.DB,
		)
		ctx := testingutil.CreateTestContext()

		guard := businessflow.NewVoteGuard(eventRepo, businessflow.VoteGuardConfig{
			Short:      businessflow.GuardThreshold{Window: time.Minute, Limit: 3},
			Long:       businessflow.GuardThreshold{Window: time.Hour, Limit: 100},
			PerProfile: businessflow.GuardThreshold{Window: 24 * time.Hour, Limit: 2},
		})

		metadata := businessflow.NewClientMetadata("guard-hash", "test-agent")

		// Two votes on the same profile exhaust the per-profile budget.
		for i := 0; i < 2; i++ {
			_, err := flow.RecordVote(ctx, identity.SeedName("Clover"), models.VoteDirectionLike, metadata, nil)
			require.NoError(t, err)
		}

		decision, err := guard.Evaluate(ctx, "guard-hash", "seed:"+identity.HashName("Clover"))
		require.NoError(t, err)
		assert.Equal(t, businessflow.GuardBlock, decision.Outcome)

		// A different profile is still under the per-profile budget but the
		// third client-wide vote will hit the short window next.
		decision, err = guard.Evaluate(ctx, "guard-hash", "seed:"+identity.HashName("Midnight"))
		require.NoError(t, err)
		assert.True(t, decision.Allowed())

		_, err = flow.RecordVote(ctx, identity.SeedName("Midnight"), models.VoteDirectionLike, metadata, nil)
		require.NoError(t, err)

		decision, err = guard.Evaluate(ctx, "guard-hash", "seed:"+identity.HashName("Midnight"))
		require.NoError(t, err)
		assert.Equal(t, businessflow.GuardThrottle, decision.Outcome)

		// Another client is unaffected.
		decision, err = guard.Evaluate(ctx, "other-hash", "seed:"+identity.HashName("Midnight"))
		require.NoError(t, err)
		assert.True(t, decision.Allowed())

		return nil
	})
	require.NoError(t, err)
}
