package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hoofmatch/hoofmatch/models"
	"gorm.io/gorm"
)

// HorseProfileRepositoryImpl implements HorseProfileRepository
type HorseProfileRepositoryImpl struct {
	*BaseRepository[models.HorseProfile, models.HorseProfileFilter]
}

// NewHorseProfileRepository creates a new horse profile repository
func NewHorseProfileRepository(db *gorm.DB) HorseProfileRepository {
	return &HorseProfileRepositoryImpl{
		BaseRepository: NewBaseRepository[models.HorseProfile, models.HorseProfileFilter](db),
	}
}

// ByFilter retrieves horse profiles matching the filter criteria
func (r *HorseProfileRepositoryImpl) ByFilter(ctx context.Context, filter models.HorseProfileFilter, orderBy string, limit, offset int) ([]*models.HorseProfile, error) {
	db := r.getDB(ctx)

	query := db.Model(&models.HorseProfile{})
	query = applyProfileFilter(query, filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var profiles []*models.HorseProfile
	if err := query.Find(&profiles).Error; err != nil {
		return nil, fmt.Errorf("failed to find horse profiles by filter: %w", err)
	}
	return profiles, nil
}

// Count returns the number of horse profiles matching the filter
func (r *HorseProfileRepositoryImpl) Count(ctx context.Context, filter models.HorseProfileFilter) (int64, error) {
	db := r.getDB(ctx)

	var count int64
	query := applyProfileFilter(db.Model(&models.HorseProfile{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count horse profiles: %w", err)
	}
	return count, nil
}

// ByUUID retrieves a horse profile by its UUID string (case-insensitive)
func (r *HorseProfileRepositoryImpl) ByUUID(ctx context.Context, id string) (*models.HorseProfile, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid profile UUID %q: %w", id, err)
	}

	db := r.getDB(ctx)
	var profile models.HorseProfile
	if err := db.Where("uuid = ?", parsed).Last(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find horse profile by UUID: %w", err)
	}
	return &profile, nil
}

// ByUUIDs resolves all given profiles in one query
func (r *HorseProfileRepositoryImpl) ByUUIDs(ctx context.Context, ids []uuid.UUID) ([]*models.HorseProfile, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	db := r.getDB(ctx)
	var profiles []*models.HorseProfile
	if err := db.Where("uuid IN ?", ids).Find(&profiles).Error; err != nil {
		return nil, fmt.Errorf("failed to find horse profiles by UUIDs: %w", err)
	}
	return profiles, nil
}

func applyProfileFilter(query *gorm.DB, filter models.HorseProfileFilter) *gorm.DB {
	if filter.UUID != nil {
		query = query.Where("uuid = ?", *filter.UUID)
	}
	if filter.Name != nil {
		query = query.Where("name = ?", *filter.Name)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	return query
}
