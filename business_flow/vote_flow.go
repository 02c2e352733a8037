package businessflow

import (
	"context"
	"time"

	"github.com/hoofmatch/hoofmatch/app/dto"
	"github.com/hoofmatch/hoofmatch/identity"
	"github.com/hoofmatch/hoofmatch/models"
	"github.com/hoofmatch/hoofmatch/repository"
	"github.com/hoofmatch/hoofmatch/utils"
	"gorm.io/gorm"
)

// VoteFlow is the vote ledger and aggregator: it appends immutable vote
// events and maintains the per-profile running totals. The append and the
// totals upsert always share one transaction; a vote event without a totals
// update (or the reverse) must be impossible.
type VoteFlow interface {
	RecordVote(ctx context.Context, id identity.ProfileIdentifier, direction string, metadata *ClientMetadata, ts *time.Time) (*dto.VoteTotalsDTO, error)
	FetchTotals(ctx context.Context, id identity.ProfileIdentifier) (*dto.VoteTotalsDTO, error)
	ListTop(ctx context.Context, direction string, limit int) ([]*models.ProfileVoteTotals, error)
	Summary(ctx context.Context) (*models.VoteTotalsSummary, error)
}

type VoteFlowImpl struct {
	profileRepo repository.HorseProfileRepository
	eventRepo   repository.VoteEventRepository
	totalsRepo  repository.VoteTotalsRepository
	db          *gorm.DB
}

// NewVoteFlow creates a new vote flow. A nil db means no persistence is
// configured; every operation then fails fast with
// ErrPersistenceNotConfigured instead of masquerading as a transient failure.
func NewVoteFlow(
	profileRepo repository.HorseProfileRepository,
	eventRepo repository.VoteEventRepository,
	totalsRepo repository.VoteTotalsRepository,
	db *gorm.DB,
) VoteFlow {
	return &VoteFlowImpl{
		profileRepo: profileRepo,
		eventRepo:   eventRepo,
		totalsRepo:  totalsRepo,
		db:          db,
	}
}

// RecordVote normalizes the identifier, then atomically appends a ledger
// event and increments the matching totals counter. Returns the post-update
// totals enriched with the derived profile age.
func (f *VoteFlowImpl) RecordVote(ctx context.Context, id identity.ProfileIdentifier, direction string, metadata *ClientMetadata, ts *time.Time) (*dto.VoteTotalsDTO, error) {
	if f.db == nil {
		return nil, ErrPersistenceNotConfigured
	}
	if direction != models.VoteDirectionLike && direction != models.VoteDirectionDislike {
		return nil, ErrInvalidDirection
	}

	norm, err := identity.Normalize(id)
	if err != nil {
		return nil, err
	}

	// Persistent identifiers must resolve to a catalog row; seed keys are
	// self-certifying (the hash is the identity).
	var profileCreatedAt *time.Time
	if norm.Source == identity.SourceDB {
		profile, err := f.profileRepo.ByUUID(ctx, norm.ID)
		if err != nil {
			return nil, NewBusinessError("VOTE_PROFILE_LOOKUP_FAILED", "Failed to look up profile", err)
		}
		if profile == nil {
			return nil, ErrProfileNotFound
		}
		createdAt := profile.CreatedAt
		profileCreatedAt = &createdAt
	}

	votedAt := utils.UTCNow()
	if ts != nil {
		votedAt = ts.UTC()
	}

	var clientHash *string
	if metadata != nil && metadata.ClientHash != "" {
		clientHash = &metadata.ClientHash
	}

	var totals *models.ProfileVoteTotals
	err = repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		event := models.VoteEvent{
			ProfileKey: norm.Key,
			Direction:  direction,
			ClientHash: clientHash,
			CreatedAt:  votedAt,
		}
		if err := f.eventRepo.Save(txCtx, &event); err != nil {
			return err
		}

		updated, err := f.totalsRepo.UpsertIncrement(txCtx, norm.Key, direction, votedAt)
		if err != nil {
			return err
		}
		totals = updated
		return nil
	})
	if err != nil {
		return nil, NewBusinessError("VOTE_RECORD_FAILED", "Failed to record vote", err)
	}

	result := ToVoteTotalsDTO(*totals, profileCreatedAt, utils.UTCNow())
	return &result, nil
}

// FetchTotals looks up the running totals for a profile. Returns nil, nil
// when the profile has never received a vote.
func (f *VoteFlowImpl) FetchTotals(ctx context.Context, id identity.ProfileIdentifier) (*dto.VoteTotalsDTO, error) {
	if f.db == nil {
		return nil, ErrPersistenceNotConfigured
	}

	norm, err := identity.Normalize(id)
	if err != nil {
		return nil, err
	}

	totals, err := f.totalsRepo.ByKey(ctx, norm.Key)
	if err != nil {
		return nil, NewBusinessError("VOTE_TOTALS_LOOKUP_FAILED", "Failed to look up vote totals", err)
	}
	if totals == nil {
		return nil, nil
	}

	var profileCreatedAt *time.Time
	if norm.Source == identity.SourceDB {
		profile, err := f.profileRepo.ByUUID(ctx, norm.ID)
		if err != nil {
			return nil, NewBusinessError("VOTE_PROFILE_LOOKUP_FAILED", "Failed to look up profile", err)
		}
		if profile != nil {
			createdAt := profile.CreatedAt
			profileCreatedAt = &createdAt
		}
	}

	result := ToVoteTotalsDTO(*totals, profileCreatedAt, utils.UTCNow())
	return &result, nil
}

// ListTop returns profiles ranked by the given direction's count
func (f *VoteFlowImpl) ListTop(ctx context.Context, direction string, limit int) ([]*models.ProfileVoteTotals, error) {
	if f.db == nil {
		return nil, ErrPersistenceNotConfigured
	}
	if limit < 1 || limit > utils.LeaderboardMaxLimit {
		return nil, ErrInvalidLimit
	}
	return f.totalsRepo.ListTop(ctx, direction, limit)
}

// Summary aggregates vote activity across all tracked profiles
func (f *VoteFlowImpl) Summary(ctx context.Context) (*models.VoteTotalsSummary, error) {
	if f.db == nil {
		return nil, ErrPersistenceNotConfigured
	}
	return f.totalsRepo.Summary(ctx)
}
