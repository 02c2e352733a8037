package models

import (
	"time"

	"github.com/google/uuid"
)

// HorseProfile represents a horse profile stored in the persistent catalog.
// Seed horses (the code-shipped demo dataset) never appear here; they exist
// only as normalized keys in the vote tables.
type HorseProfile struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UUID      uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_horse_profiles_uuid;not null" json:"uuid"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Breed     *string   `gorm:"size:100" json:"breed,omitempty"`
	Tagline   *string   `gorm:"type:text" json:"tagline,omitempty"`
	ImageURL  *string   `gorm:"type:text" json:"image_url,omitempty"`
	IsActive  *bool     `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

// TableName returns the table name for HorseProfile
func (HorseProfile) TableName() string { return "horse_profiles" }

// HorseProfileFilter defines filter criteria for horse profile queries
type HorseProfileFilter struct {
	UUID     *uuid.UUID `json:"uuid,omitempty"`
	Name     *string    `json:"name,omitempty"`
	IsActive *bool      `json:"is_active,omitempty"`
}
