package dto

// LeaderboardEntry is one ranked profile with display metadata. Source is
// "db" for catalog profiles and "seed" for the shipped demo horses;
// DirectionCount carries the count relevant to the list the entry appears in.
type LeaderboardEntry struct {
	Rank           int    `json:"rank"`
	ProfileKey     string `json:"profile_key"`
	Source         string `json:"source"`
	ProfileID      string `json:"profile_id"`
	Name           string `json:"name"`
	Breed          string `json:"breed,omitempty"`
	ImageURL       string `json:"image_url,omitempty"`
	Likes          uint   `json:"likes"`
	Dislikes       uint   `json:"dislikes"`
	DirectionCount uint   `json:"direction_count"`
}

// LeaderboardSummary aggregates vote activity across all tracked profiles
type LeaderboardSummary struct {
	TotalProfiles int64 `json:"total_profiles"`
	TotalLikes    int64 `json:"total_likes"`
	TotalDislikes int64 `json:"total_dislikes"`
}

// LeaderboardResponse is the full leaderboard payload
type LeaderboardResponse struct {
	Summary  LeaderboardSummary `json:"summary"`
	Likes    []LeaderboardEntry `json:"likes"`
	Dislikes []LeaderboardEntry `json:"dislikes"`
}
