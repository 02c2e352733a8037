// Package businessflow contains the core business logic for vote recording,
// abuse guarding, and leaderboard aggregation.
package businessflow

import (
	"time"

	"github.com/hoofmatch/hoofmatch/app/dto"
	"github.com/hoofmatch/hoofmatch/models"
	"github.com/hoofmatch/hoofmatch/utils"
)

// ClientMetadata holds client-related information collected at the HTTP
// boundary. The network address is already hashed when it gets here; flows
// never see the raw address.
type ClientMetadata struct {
	ClientHash string `json:"client_hash,omitempty"`
	UserAgent  string `json:"user_agent,omitempty"`
	RequestID  string `json:"request_id,omitempty"`
}

// NewClientMetadata creates a new ClientMetadata instance
func NewClientMetadata(clientHash, userAgent string) *ClientMetadata {
	return &ClientMetadata{
		ClientHash: clientHash,
		UserAgent:  userAgent,
	}
}

// SetRequestID sets the request ID
func (cm *ClientMetadata) SetRequestID(requestID string) {
	cm.RequestID = requestID
}

// ToVoteTotalsDTO converts a totals row to its API shape, deriving the
// profile's age in days. The anchor is the profile's creation time when the
// profile is persistent, else the first recorded vote; negative spans (clock
// skew) floor at zero.
func ToVoteTotalsDTO(totals models.ProfileVoteTotals, profileCreatedAt *time.Time, now time.Time) dto.VoteTotalsDTO {
	anchor := totals.FirstVoteAt
	if profileCreatedAt != nil {
		anchor = *profileCreatedAt
	}

	return dto.VoteTotalsDTO{
		ProfileKey:     totals.ProfileKey,
		Likes:          totals.Likes,
		Dislikes:       totals.Dislikes,
		FirstVoteAt:    utils.FormatRFC3339Ptr(&totals.FirstVoteAt),
		LastVoteAt:     utils.FormatRFC3339Ptr(&totals.LastVoteAt),
		UpdatedAt:      utils.FormatRFC3339Ptr(&totals.UpdatedAt),
		ProfileAgeDays: utils.DaysBetween(anchor.UTC(), now.UTC()),
	}
}
