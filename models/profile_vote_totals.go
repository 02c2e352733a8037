package models

import "time"

// ProfileVoteTotals is the running per-profile aggregate derived from the
// vote ledger: one row per normalized profile key. Likes and Dislikes always
// equal the per-direction event counts for that key; FirstVoteAt is fixed by
// the first vote and LastVoteAt/UpdatedAt advance with every subsequent one.
// Rows are created on first vote and only ever incremented inside the same
// transaction that appends the event.
type ProfileVoteTotals struct {
	ProfileKey  string    `gorm:"primaryKey;size:64" json:"profile_key"`
	Likes       uint      `gorm:"not null;default:0" json:"likes"`
	Dislikes    uint      `gorm:"not null;default:0" json:"dislikes"`
	FirstVoteAt time.Time `gorm:"not null" json:"first_vote_at"`
	LastVoteAt  time.Time `gorm:"not null" json:"last_vote_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}

// TableName returns the table name for ProfileVoteTotals
func (ProfileVoteTotals) TableName() string { return "profile_vote_totals" }

// VoteTotalsSummary aggregates across all tracked profiles
type VoteTotalsSummary struct {
	TotalProfiles int64 `json:"total_profiles"`
	TotalLikes    int64 `json:"total_likes"`
	TotalDislikes int64 `json:"total_dislikes"`
}
