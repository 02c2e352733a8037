package testing

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"
	"github.com/hoofmatch/hoofmatch/models"
	"github.com/hoofmatch/hoofmatch/utils"
)

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// CreateTestHorseProfile creates a persistent horse profile with a random name
func (tf *TestFixtures) CreateTestHorseProfile() (*models.HorseProfile, error) {
	breed := "Arabian"
	tagline := "Test horse, best horse"
	imageURL := "https://example.com/horse.jpg"

	profile := &models.HorseProfile{
		UUID:     uuid.New(),
		Name:     fmt.Sprintf("Testhoof %04d", rand.Intn(10000)),
		Breed:    &breed,
		Tagline:  &tagline,
		ImageURL: &imageURL,
		IsActive: utils.ToPtr(true),
	}

	if err := tf.DB.DB.Create(profile).Error; err != nil {
		return nil, fmt.Errorf("failed to create test horse profile: %w", err)
	}

	return profile, nil
}

// CreateTestHorseProfileNamed creates a persistent horse profile with a fixed name
func (tf *TestFixtures) CreateTestHorseProfileNamed(name string) (*models.HorseProfile, error) {
	profile := &models.HorseProfile{
		UUID:     uuid.New(),
		Name:     name,
		IsActive: utils.ToPtr(true),
	}

	if err := tf.DB.DB.Create(profile).Error; err != nil {
		return nil, fmt.Errorf("failed to create test horse profile: %w", err)
	}

	return profile, nil
}

// CreateTestVoteEvent appends one ledger row directly, bypassing the flow
func (tf *TestFixtures) CreateTestVoteEvent(profileKey, direction string, clientHash *string) (*models.VoteEvent, error) {
	event := &models.VoteEvent{
		ProfileKey: profileKey,
		Direction:  direction,
		ClientHash: clientHash,
		CreatedAt:  utils.UTCNow(),
	}

	if err := tf.DB.DB.Create(event).Error; err != nil {
		return nil, fmt.Errorf("failed to create test vote event: %w", err)
	}

	return event, nil
}
