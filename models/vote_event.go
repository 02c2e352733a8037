package models

import "time"

// Vote directions
const (
	VoteDirectionLike    = "like"
	VoteDirectionDislike = "dislike"
)

// VoteEvent is one immutable entry of the vote ledger. Rows are append-only:
// nothing in this system updates or deletes them. ClientHash is the salted
// hash of the voter's network address, nil when the client could not be
// identified; the raw address is never stored.
type VoteEvent struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ProfileKey string    `gorm:"size:64;index:idx_vote_events_profile_key;not null" json:"profile_key"`
	Direction  string    `gorm:"size:10;not null" json:"direction"`
	ClientHash *string   `gorm:"size:64;index:idx_vote_events_client_hash" json:"client_hash,omitempty"`
	CreatedAt  time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_vote_events_created_at" json:"created_at"`
}

// TableName returns the table name for VoteEvent
func (VoteEvent) TableName() string { return "vote_events" }

// VoteEventFilter defines filter criteria for vote event queries
type VoteEventFilter struct {
	ProfileKey *string    `json:"profile_key,omitempty"`
	ClientHash *string    `json:"client_hash,omitempty"`
	After      *time.Time `json:"after,omitempty"`
}
