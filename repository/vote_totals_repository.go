package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hoofmatch/hoofmatch/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// VoteTotalsRepositoryImpl implements VoteTotalsRepository
type VoteTotalsRepositoryImpl struct {
	DB *gorm.DB
}

// NewVoteTotalsRepository creates a new vote totals repository
func NewVoteTotalsRepository(db *gorm.DB) VoteTotalsRepository {
	return &VoteTotalsRepositoryImpl{DB: db}
}

func (r *VoteTotalsRepositoryImpl) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(TxContextKey).(*gorm.DB); ok && tx != nil {
		return tx
	}
	return r.DB
}

// ByKey retrieves the totals row for a normalized profile key. Returns nil
// (not an error) when the profile has never received a vote.
func (r *VoteTotalsRepositoryImpl) ByKey(ctx context.Context, profileKey string) (*models.ProfileVoteTotals, error) {
	db := r.getDB(ctx)

	var totals models.ProfileVoteTotals
	if err := db.Where("profile_key = ?", profileKey).Last(&totals).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find vote totals by key: %w", err)
	}
	return &totals, nil
}

// UpsertIncrement bumps one direction counter by 1 for the key, inserting the
// row on first vote. Concurrent votes for the same profile serialize on the
// row inside the database; the increment is an SQL expression so there is no
// read-modify-write window to lose updates in.
func (r *VoteTotalsRepositoryImpl) UpsertIncrement(ctx context.Context, profileKey, direction string, ts time.Time) (*models.ProfileVoteTotals, error) {
	var likeInc, dislikeInc uint
	switch direction {
	case models.VoteDirectionLike:
		likeInc = 1
	case models.VoteDirectionDislike:
		dislikeInc = 1
	default:
		return nil, fmt.Errorf("unknown vote direction %q", direction)
	}

	db := r.getDB(ctx)

	row := models.ProfileVoteTotals{
		ProfileKey:  profileKey,
		Likes:       likeInc,
		Dislikes:    dislikeInc,
		FirstVoteAt: ts,
		LastVoteAt:  ts,
		UpdatedAt:   ts,
	}

	err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "profile_key"}},
		DoUpdates: clause.Assignments(map[string]any{
			"likes":         gorm.Expr("profile_vote_totals.likes + ?", likeInc),
			"dislikes":      gorm.Expr("profile_vote_totals.dislikes + ?", dislikeInc),
			"first_vote_at": gorm.Expr("LEAST(profile_vote_totals.first_vote_at, ?)", ts),
			"last_vote_at":  ts,
			"updated_at":    ts,
		}),
	}).Create(&row).Error
	if err != nil {
		return nil, fmt.Errorf("failed to upsert vote totals: %w", err)
	}

	// The upsert does not report the merged row; read it back inside the same
	// transaction so callers see the post-update counters.
	totals, err := r.ByKey(ctx, profileKey)
	if err != nil {
		return nil, err
	}
	if totals == nil {
		return nil, fmt.Errorf("vote totals missing after upsert for key %s", profileKey)
	}
	return totals, nil
}

// ListTop returns profiles with a nonzero count in the given direction,
// descending by that count, ties broken by ascending profile key so the
// ordering is stable for pagination.
func (r *VoteTotalsRepositoryImpl) ListTop(ctx context.Context, direction string, limit int) ([]*models.ProfileVoteTotals, error) {
	var column string
	switch direction {
	case models.VoteDirectionLike:
		column = "likes"
	case models.VoteDirectionDislike:
		column = "dislikes"
	default:
		return nil, fmt.Errorf("unknown vote direction %q", direction)
	}

	db := r.getDB(ctx)

	var rows []*models.ProfileVoteTotals
	err := db.Model(&models.ProfileVoteTotals{}).
		Where(column+" > 0").
		Order(column + " DESC, profile_key ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list top vote totals: %w", err)
	}
	return rows, nil
}

// Summary aggregates across all tracked profiles
func (r *VoteTotalsRepositoryImpl) Summary(ctx context.Context) (*models.VoteTotalsSummary, error) {
	db := r.getDB(ctx)

	var summary models.VoteTotalsSummary
	err := db.Model(&models.ProfileVoteTotals{}).
		Select("COUNT(*) AS total_profiles, COALESCE(SUM(likes), 0) AS total_likes, COALESCE(SUM(dislikes), 0) AS total_dislikes").
		Scan(&summary).Error
	if err != nil {
		return nil, fmt.Errorf("failed to summarize vote totals: %w", err)
	}
	return &summary, nil
}
