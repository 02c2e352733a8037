package businessflow

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/hoofmatch/hoofmatch/app/dto"
	"github.com/hoofmatch/hoofmatch/identity"
	"github.com/hoofmatch/hoofmatch/models"
	"github.com/hoofmatch/hoofmatch/repository"
	"github.com/hoofmatch/hoofmatch/seed"
	"github.com/hoofmatch/hoofmatch/utils"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// LeaderboardFlow ranks profiles by like/dislike totals and enriches them
// with display metadata from both identifier sources.
type LeaderboardFlow interface {
	Generate(ctx context.Context, limit int) (*dto.LeaderboardResponse, error)
}

type LeaderboardFlowImpl struct {
	totalsRepo  repository.VoteTotalsRepository
	profileRepo repository.HorseProfileRepository
	catalog     *seed.Catalog
	db          *gorm.DB
	rc          *redis.Client
}

// NewLeaderboardFlow creates a new leaderboard flow. rc may be nil; caching
// is then skipped.
func NewLeaderboardFlow(
	totalsRepo repository.VoteTotalsRepository,
	profileRepo repository.HorseProfileRepository,
	catalog *seed.Catalog,
	db *gorm.DB,
	rc *redis.Client,
) LeaderboardFlow {
	return &LeaderboardFlowImpl{
		totalsRepo:  totalsRepo,
		profileRepo: profileRepo,
		catalog:     catalog,
		db:          db,
		rc:          rc,
	}
}

// Generate builds the full leaderboard payload. The three ledger reads are
// independent and run concurrently; persistent-profile metadata for all
// ranked rows is resolved in a single batch query regardless of row count.
func (f *LeaderboardFlowImpl) Generate(ctx context.Context, limit int) (*dto.LeaderboardResponse, error) {
	if f.db == nil {
		return nil, ErrPersistenceNotConfigured
	}
	if limit <= 0 {
		limit = utils.LeaderboardDefaultLimit
	}
	if limit > utils.LeaderboardMaxLimit {
		limit = utils.LeaderboardMaxLimit
	}

	cacheKey := fmt.Sprintf("%s:%d", utils.LeaderboardCacheKey, limit)
	if f.rc != nil {
		if bs, err := f.rc.Get(ctx, cacheKey).Bytes(); err == nil && len(bs) > 0 {
			var cached dto.LeaderboardResponse
			if err := json.Unmarshal(bs, &cached); err == nil {
				return &cached, nil
			}
		}
	}

	var (
		wg       sync.WaitGroup
		topLikes []*models.ProfileVoteTotals
		topDis   []*models.ProfileVoteTotals
		summary  *models.VoteTotalsSummary
		errs     [3]error
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		topLikes, errs[0] = f.totalsRepo.ListTop(ctx, models.VoteDirectionLike, limit)
	}()
	go func() {
		defer wg.Done()
		topDis, errs[1] = f.totalsRepo.ListTop(ctx, models.VoteDirectionDislike, limit)
	}()
	go func() {
		defer wg.Done()
		summary, errs[2] = f.totalsRepo.Summary(ctx)
	}()
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, NewBusinessError("LEADERBOARD_READ_FAILED", "Failed to read vote totals", err)
		}
	}

	profilesByID, err := f.resolvePersistentProfiles(ctx, topLikes, topDis)
	if err != nil {
		return nil, err
	}

	response := &dto.LeaderboardResponse{
		Summary: dto.LeaderboardSummary{
			TotalProfiles: summary.TotalProfiles,
			TotalLikes:    summary.TotalLikes,
			TotalDislikes: summary.TotalDislikes,
		},
		Likes:    f.buildEntries(topLikes, models.VoteDirectionLike, profilesByID),
		Dislikes: f.buildEntries(topDis, models.VoteDirectionDislike, profilesByID),
	}

	if f.rc != nil {
		if bs, err := json.Marshal(response); err == nil {
			_ = f.rc.Set(ctx, cacheKey, bs, utils.LeaderboardCacheTTL).Err()
		}
	}

	return response, nil
}

// resolvePersistentProfiles batch-loads display metadata for every
// db-sourced row across both lists with one query.
func (f *LeaderboardFlowImpl) resolvePersistentProfiles(ctx context.Context, lists ...[]*models.ProfileVoteTotals) (map[uuid.UUID]*models.HorseProfile, error) {
	var ids []uuid.UUID
	seen := make(map[uuid.UUID]bool)
	for _, list := range lists {
		for _, totals := range list {
			norm, err := identity.ParseKey(totals.ProfileKey)
			if err != nil || norm.Source != identity.SourceDB {
				continue
			}
			id, err := uuid.Parse(norm.ID)
			if err != nil || seen[id] {
				continue
			}
			seen[id] = true
			ids = append(ids, id)
		}
	}

	byID := make(map[uuid.UUID]*models.HorseProfile, len(ids))
	if len(ids) == 0 {
		return byID, nil
	}

	profiles, err := f.profileRepo.ByUUIDs(ctx, ids)
	if err != nil {
		return nil, NewBusinessError("LEADERBOARD_METADATA_FAILED", "Failed to resolve profile metadata", err)
	}
	for _, p := range profiles {
		byID[p.UUID] = p
	}
	return byID, nil
}

func (f *LeaderboardFlowImpl) buildEntries(rows []*models.ProfileVoteTotals, direction string, profilesByID map[uuid.UUID]*models.HorseProfile) []dto.LeaderboardEntry {
	entries := make([]dto.LeaderboardEntry, 0, len(rows))
	for _, totals := range rows {
		norm, err := identity.ParseKey(totals.ProfileKey)
		if err != nil {
			// A malformed key in storage is skipped rather than failing the page.
			continue
		}

		// Rank is the 1-based position in the emitted list, so a skipped row
		// never leaves a gap.
		entry := dto.LeaderboardEntry{
			Rank:       len(entries) + 1,
			ProfileKey: totals.ProfileKey,
			Source:     string(norm.Source),
			ProfileID:  norm.ID,
			Name:       norm.ID,
			Likes:      totals.Likes,
			Dislikes:   totals.Dislikes,
		}
		if direction == models.VoteDirectionLike {
			entry.DirectionCount = totals.Likes
		} else {
			entry.DirectionCount = totals.Dislikes
		}

		switch norm.Source {
		case identity.SourceDB:
			if id, err := uuid.Parse(norm.ID); err == nil {
				if profile, ok := profilesByID[id]; ok {
					entry.Name = profile.Name
					if profile.Breed != nil {
						entry.Breed = *profile.Breed
					}
					if profile.ImageURL != nil {
						entry.ImageURL = *profile.ImageURL
					}
				}
			}
		case identity.SourceSeed:
			if horse, ok := f.catalog.ByKey(norm.Key); ok {
				entry.Name = horse.Name
				entry.Breed = horse.Breed
				entry.ImageURL = horse.ImageURL
			}
		}

		entries = append(entries, entry)
	}
	return entries
}
