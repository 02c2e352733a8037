// Package tests contains database-backed test cases for the repository and
// business flow packages, kept separate to avoid circular imports.
package tests

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hoofmatch/hoofmatch/models"
	"github.com/hoofmatch/hoofmatch/repository"
	testingutil "github.com/hoofmatch/hoofmatch/testing"
	"github.com/hoofmatch/hoofmatch/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHorseProfileRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewHorseProfileRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		created, err := fixtures.CreateTestHorseProfileNamed("Starlight")
		require.NoError(t, err)

		t.Run("ByUUID", func(t *testing.T) {
			profile, err := repo.ByUUID(ctx, created.UUID.String())
			require.NoError(t, err)
			require.NotNil(t, profile)
			assert.Equal(t, "Starlight", profile.Name)
		})

		t.Run("ByUUIDUppercase", func(t *testing.T) {
			// Identifier strings arrive in any case.
			profile, err := repo.ByUUID(ctx, strings.ToUpper(created.UUID.String()))
			require.NoError(t, err)
			require.NotNil(t, profile)
			assert.Equal(t, created.UUID, profile.UUID)
		})

		t.Run("ByUUIDNotFound", func(t *testing.T) {
			profile, err := repo.ByUUID(ctx, uuid.NewString())
			require.NoError(t, err)
			assert.Nil(t, profile)
		})

		t.Run("ByUUIDInvalid", func(t *testing.T) {
			_, err := repo.ByUUID(ctx, "not-a-uuid")
			assert.Error(t, err)
		})

		t.Run("ByUUIDs", func(t *testing.T) {
			second, err := fixtures.CreateTestHorseProfile()
			require.NoError(t, err)

			profiles, err := repo.ByUUIDs(ctx, []uuid.UUID{created.UUID, second.UUID, uuid.New()})
			require.NoError(t, err)
			assert.Len(t, profiles, 2)
		})

		t.Run("ByUUIDsEmpty", func(t *testing.T) {
			profiles, err := repo.ByUUIDs(ctx, nil)
			require.NoError(t, err)
			assert.Empty(t, profiles)
		})

		t.Run("ByFilter", func(t *testing.T) {
			name := "Starlight"
			profiles, err := repo.ByFilter(ctx, models.HorseProfileFilter{Name: &name}, "", 0, 0)
			require.NoError(t, err)
			require.Len(t, profiles, 1)
			assert.Equal(t, created.UUID, profiles[0].UUID)
		})

		t.Run("Count", func(t *testing.T) {
			count, err := repo.Count(ctx, models.HorseProfileFilter{})
			require.NoError(t, err)
			assert.GreaterOrEqual(t, count, int64(2))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestVoteEventRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewVoteEventRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		hash := "client-hash-a"
		otherHash := "client-hash-b"

		_, err := fixtures.CreateTestVoteEvent("seed:51677b91", models.VoteDirectionLike, &hash)
		require.NoError(t, err)
		_, err = fixtures.CreateTestVoteEvent("seed:51677b91", models.VoteDirectionDislike, &hash)
		require.NoError(t, err)
		_, err = fixtures.CreateTestVoteEvent("seed:a5a6b23d", models.VoteDirectionLike, &hash)
		require.NoError(t, err)
		_, err = fixtures.CreateTestVoteEvent("seed:51677b91", models.VoteDirectionLike, &otherHash)
		require.NoError(t, err)
		_, err = fixtures.CreateTestVoteEvent("seed:51677b91", models.VoteDirectionLike, nil)
		require.NoError(t, err)

		t.Run("CountByClientSince", func(t *testing.T) {
			count, err := repo.CountByClientSince(ctx, hash, utils.UTCNowAdd(-time.Minute))
			require.NoError(t, err)
			assert.Equal(t, int64(3), count)
		})

		t.Run("CountByClientSinceWindowExcludesOld", func(t *testing.T) {
			count, err := repo.CountByClientSince(ctx, hash, utils.UTCNowAdd(time.Minute))
			require.NoError(t, err)
			assert.Equal(t, int64(0), count)
		})

		t.Run("CountByClientProfileSince", func(t *testing.T) {
			count, err := repo.CountByClientProfileSince(ctx, hash, "seed:51677b91", utils.UTCNowAdd(-time.Minute))
			require.NoError(t, err)
			assert.Equal(t, int64(2), count)
		})

		t.Run("CountIsScopedToClient", func(t *testing.T) {
			count, err := repo.CountByClientSince(ctx, otherHash, utils.UTCNowAdd(-time.Minute))
			require.NoError(t, err)
			assert.Equal(t, int64(1), count)
		})

		t.Run("ByFilterProfileKey", func(t *testing.T) {
			key := "seed:51677b91"
			events, err := repo.ByFilter(ctx, models.VoteEventFilter{ProfileKey: &key}, "id ASC", 0, 0)
			require.NoError(t, err)
			assert.Len(t, events, 4)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestVoteTotalsRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewVoteTotalsRepository(testDB.DB)
		ctx := testingutil.CreateTestContext()

		key := "seed:51677b91"
		t0 := utils.UTCNow().Truncate(time.Second)

		t.Run("ByKeyNeverVoted", func(t *testing.T) {
			totals, err := repo.ByKey(ctx, key)
			require.NoError(t, err)
			assert.Nil(t, totals)
		})

		t.Run("UpsertCreatesOnFirstVote", func(t *testing.T) {
			totals, err := repo.UpsertIncrement(ctx, key, models.VoteDirectionLike, t0)
			require.NoError(t, err)
			assert.Equal(t, uint(1), totals.Likes)
			assert.Equal(t, uint(0), totals.Dislikes)
			assert.WithinDuration(t, t0, totals.FirstVoteAt, time.Second)
			assert.WithinDuration(t, t0, totals.LastVoteAt, time.Second)
		})

		t.Run("UpsertIncrementsExistingRow", func(t *testing.T) {
			t1 := t0.Add(10 * time.Second)
			totals, err := repo.UpsertIncrement(ctx, key, models.VoteDirectionDislike, t1)
			require.NoError(t, err)
			assert.Equal(t, uint(1), totals.Likes)
			assert.Equal(t, uint(1), totals.Dislikes)

			// FirstVoteAt stays pinned to the first vote; LastVoteAt advances.
			assert.WithinDuration(t, t0, totals.FirstVoteAt, time.Second)
			assert.WithinDuration(t, t1, totals.LastVoteAt, time.Second)
		})

		t.Run("UpsertRejectsUnknownDirection", func(t *testing.T) {
			_, err := repo.UpsertIncrement(ctx, key, "meh", t0)
			assert.Error(t, err)
		})

		t.Run("ListTop", func(t *testing.T) {
			// Build a second and third profile with distinct like counts.
			for i := 0; i < 3; i++ {
				_, err := repo.UpsertIncrement(ctx, "seed:a5a6b23d", models.VoteDirectionLike, t0)
				require.NoError(t, err)
			}
			_, err := repo.UpsertIncrement(ctx, "seed:9a164979", models.VoteDirectionDislike, t0)
			require.NoError(t, err)

			top, err := repo.ListTop(ctx, models.VoteDirectionLike, 10)
			require.NoError(t, err)
			require.Len(t, top, 2, "zero-like rows are excluded")
			assert.Equal(t, "seed:a5a6b23d", top[0].ProfileKey)
			assert.Equal(t, uint(3), top[0].Likes)
			assert.Equal(t, key, top[1].ProfileKey)
		})

		t.Run("ListTopHonorsLimit", func(t *testing.T) {
			top, err := repo.ListTop(ctx, models.VoteDirectionLike, 1)
			require.NoError(t, err)
			assert.Len(t, top, 1)
		})

		t.Run("ListTopRejectsUnknownDirection", func(t *testing.T) {
			_, err := repo.ListTop(ctx, "meh", 10)
			assert.Error(t, err)
		})

		t.Run("Summary", func(t *testing.T) {
			summary, err := repo.Summary(ctx)
			require.NoError(t, err)
			assert.Equal(t, int64(3), summary.TotalProfiles)
			assert.Equal(t, int64(4), summary.TotalLikes)
			assert.Equal(t, int64(2), summary.TotalDislikes)
		})

		return nil
	})
	require.NoError(t, err)
}
