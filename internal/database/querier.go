// internal/database/querier.go
package database

import (
	"context"
	"time"

	"github-trending-tracker/internal/model"
)

// Querier is the query-layer contract. Consumers depend on this interface so
// tests can substitute a mock.
type Querier interface {
	DeleteTrendingSnapshot(ctx context.Context, scope model.Scope, date time.Time) error
	InsertTrendingEntries(ctx context.Context, scope model.Scope, date time.Time, repos []model.TrendingRepo) error
	ListTrendingEntries(ctx context.Context, scope model.Scope, date time.Time) ([]model.TrendingEntry, error)

	UpsertTrendingStats(ctx context.Context, repo model.TrendingRepo, date time.Time) error
	ListDueRepositories(ctx context.Context, arg ListDueRepositoriesParams) ([]string, error)
	GetEnrichmentState(ctx context.Context, fullName string) (EnrichmentState, error)
	UpdateRepositoryDetails(ctx context.Context, arg UpdateRepositoryDetailsParams) error
	UpdateRepositorySummary(ctx context.Context, fullName, summary string) error
	MarkRepositoryDeleted(ctx context.Context, fullName string, deletedAt time.Time) error
	GetRepositoryByName(ctx context.Context, fullName string) (model.Repository, error)
}

var _ Querier = (*Queries)(nil)

// ListDueRepositoriesParams selects repositories due for enrichment.
type ListDueRepositoriesParams struct {
	StaleBefore  time.Time // enrichment threshold: enriched_at older than this is stale
	TrendingOn   time.Time // "today" for the trending-today clause
	TrendingOnly bool      // true: stale repos qualify only if last trending on TrendingOn
}

// EnrichmentState holds the previously persisted values that drive summary
// change detection.
type EnrichmentState struct {
	Readme      *string
	Description *string
	HasSummary  bool
}

// UpdateRepositoryDetailsParams carries the enrichment write-back for one
// repository.
type UpdateRepositoryDetailsParams struct {
	FullName      string
	ForksCount    int
	StarsCount    int
	License       *string
	PushedAt      time.Time
	RepoCreatedAt time.Time
	Readme        string
	Description   *string
	Homepage      *string
	EnrichedAt    time.Time
}
