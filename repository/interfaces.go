// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/hoofmatch/hoofmatch/models"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	Count(ctx context.Context, filter F) (int64, error)
}

// HorseProfileRepository defines operations for the persistent horse catalog
type HorseProfileRepository interface {
	Repository[models.HorseProfile, models.HorseProfileFilter]
	ByUUID(ctx context.Context, id string) (*models.HorseProfile, error)
	// ByUUIDs resolves all given profiles in a single query. Leaderboard
	// enrichment depends on this staying O(1) queries for N rows.
	ByUUIDs(ctx context.Context, ids []uuid.UUID) ([]*models.HorseProfile, error)
}

// VoteEventRepository defines operations for the append-only vote ledger
type VoteEventRepository interface {
	Repository[models.VoteEvent, models.VoteEventFilter]
	// CountByClientSince counts a client's votes inside a trailing window.
	CountByClientSince(ctx context.Context, clientHash string, since time.Time) (int64, error)
	// CountByClientProfileSince counts a client's votes for one profile inside a trailing window.
	CountByClientProfileSince(ctx context.Context, clientHash, profileKey string, since time.Time) (int64, error)
}

// VoteTotalsRepository defines operations for the per-profile vote aggregates
type VoteTotalsRepository interface {
	ByKey(ctx context.Context, profileKey string) (*models.ProfileVoteTotals, error)
	// UpsertIncrement atomically bumps the counter for direction by one,
	// keeping FirstVoteAt at the minimum and LastVoteAt/UpdatedAt at the given
	// timestamp. The increment is expressed in SQL, never read-modify-write.
	UpsertIncrement(ctx context.Context, profileKey, direction string, ts time.Time) (*models.ProfileVoteTotals, error)
	ListTop(ctx context.Context, direction string, limit int) ([]*models.ProfileVoteTotals, error)
	Summary(ctx context.Context) (*models.VoteTotalsSummary, error)
}
