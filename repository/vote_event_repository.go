package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/hoofmatch/hoofmatch/models"
	"gorm.io/gorm"
)

// VoteEventRepositoryImpl implements VoteEventRepository
type VoteEventRepositoryImpl struct {
	*BaseRepository[models.VoteEvent, models.VoteEventFilter]
}

// NewVoteEventRepository creates a new vote event repository
func NewVoteEventRepository(db *gorm.DB) VoteEventRepository {
	return &VoteEventRepositoryImpl{
		BaseRepository: NewBaseRepository[models.VoteEvent, models.VoteEventFilter](db),
	}
}

// ByFilter retrieves vote events matching the filter criteria
func (r *VoteEventRepositoryImpl) ByFilter(ctx context.Context, filter models.VoteEventFilter, orderBy string, limit, offset int) ([]*models.VoteEvent, error) {
	db := r.getDB(ctx)

	query := applyVoteEventFilter(db.Model(&models.VoteEvent{}), filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var events []*models.VoteEvent
	if err := query.Find(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to find vote events by filter: %w", err)
	}
	return events, nil
}

// Count returns the number of vote events matching the filter
func (r *VoteEventRepositoryImpl) Count(ctx context.Context, filter models.VoteEventFilter) (int64, error) {
	db := r.getDB(ctx)

	var count int64
	query := applyVoteEventFilter(db.Model(&models.VoteEvent{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count vote events: %w", err)
	}
	return count, nil
}

// CountByClientSince counts a client's ledger entries inside a trailing window.
// The guard recomputes these counts on every evaluation instead of keeping
// counter state, so the ledger is the single source of truth.
func (r *VoteEventRepositoryImpl) CountByClientSince(ctx context.Context, clientHash string, since time.Time) (int64, error) {
	return r.Count(ctx, models.VoteEventFilter{
		ClientHash: &clientHash,
		After:      &since,
	})
}

// CountByClientProfileSince counts a client's ledger entries for one profile inside a trailing window
func (r *VoteEventRepositoryImpl) CountByClientProfileSince(ctx context.Context, clientHash, profileKey string, since time.Time) (int64, error) {
	return r.Count(ctx, models.VoteEventFilter{
		ClientHash: &clientHash,
		ProfileKey: &profileKey,
		After:      &since,
	})
}

func applyVoteEventFilter(query *gorm.DB, filter models.VoteEventFilter) *gorm.DB {
	if filter.ProfileKey != nil {
		query = query.Where("profile_key = ?", *filter.ProfileKey)
	}
	if filter.ClientHash != nil {
		query = query.Where("client_hash = ?", *filter.ClientHash)
	}
	if filter.After != nil {
		query = query.Where("created_at >= ?", *filter.After)
	}
	return query
}
