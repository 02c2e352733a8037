package dto

// VoteRequest represents a vote submission for a profile. The profile id
// rides in the URL path; the body carries the direction and optional
// identifier hints for seed profiles.
type VoteRequest struct {
	Direction   string `json:"direction" validate:"required,oneof=like dislike" example:"like"`
	ProfileType string `json:"profile_type,omitempty" validate:"omitempty,oneof=db seed" example:"seed"`
	SeedName    string `json:"seed_name,omitempty" validate:"omitempty,max=100" example:"Star"`
}

// VoteTotalsDTO is the serialized per-profile vote aggregate. Timestamps are
// RFC3339 strings or null.
type VoteTotalsDTO struct {
	ProfileKey     string  `json:"profile_key"`
	Likes          uint    `json:"likes"`
	Dislikes       uint    `json:"dislikes"`
	FirstVoteAt    *string `json:"first_vote_at"`
	LastVoteAt     *string `json:"last_vote_at"`
	UpdatedAt      *string `json:"updated_at"`
	ProfileAgeDays int     `json:"profile_age_days"`
}

// VoteResponse wraps the post-vote totals
type VoteResponse struct {
	Totals VoteTotalsDTO `json:"totals"`
}
