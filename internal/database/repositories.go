// internal/database/repositories.go
package database

import (
	"context"
	"fmt"
	"time"

	"github-trending-tracker/internal/model"
)

// UpsertTrendingStats inserts or updates the longitudinal record for one
// trending appearance. Star, fork, and language fields always reflect the
// latest observation; best_rank only ever improves; trending_days increments
// only when the row's pre-update last_trending_on differs from the new date,
// so two scope runs on the same calendar day count once.
func (q *Queries) UpsertTrendingStats(ctx context.Context, repo model.TrendingRepo, date time.Time) error {
	_, err := q.db.Exec(ctx, `
		INSERT INTO repositories
			(full_name, language, stars_count, forks_count,
			 first_trending_on, last_trending_on, best_rank, trending_days)
		VALUES ($1, NULLIF($2, ''), $3, $4, $5, $5, $6, 1)
		ON CONFLICT (full_name) DO UPDATE SET
			language         = EXCLUDED.language,
			stars_count      = EXCLUDED.stars_count,
			forks_count      = EXCLUDED.forks_count,
			best_rank        = LEAST(repositories.best_rank, EXCLUDED.best_rank),
			trending_days    = repositories.trending_days + CASE
				WHEN repositories.last_trending_on IS DISTINCT FROM EXCLUDED.last_trending_on THEN 1
				ELSE 0
			END,
			last_trending_on = EXCLUDED.last_trending_on,
			updated_at       = NOW()
	`, repo.FullName, repo.Language, repo.StarsCount, repo.ForksCount, date, repo.Rank)
	if err != nil {
		return fmt.Errorf("failed to upsert trending stats for %q: %w", repo.FullName, err)
	}
	return nil
}

// ListDueRepositories returns the names of repositories due for enrichment:
// no summary yet, never enriched, or stale. With TrendingOnly set, stale
// repositories qualify only when last seen trending on the given date.
func (q *Queries) ListDueRepositories(ctx context.Context, arg ListDueRepositoriesParams) ([]string, error) {
	query := `
		SELECT full_name
		FROM repositories
		WHERE ai_summary IS NULL
		   OR enriched_at IS NULL
		   OR enriched_at < $1
	`
	args := []any{arg.StaleBefore}
	if arg.TrendingOnly {
		query = `
		SELECT full_name
		FROM repositories
		WHERE ai_summary IS NULL
		   OR enriched_at IS NULL
		   OR (enriched_at < $1 AND last_trending_on = $2)
	`
		args = append(args, arg.TrendingOn)
	}

	rows, err := q.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list due repositories: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan repository name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// GetEnrichmentState reads the previously stored readme, description, and
// summary presence for change detection.
func (q *Queries) GetEnrichmentState(ctx context.Context, fullName string) (EnrichmentState, error) {
	var state EnrichmentState
	err := q.db.QueryRow(ctx, `
		SELECT readme, description, ai_summary IS NOT NULL
		FROM repositories
		WHERE full_name = $1
	`, fullName).Scan(&state.Readme, &state.Description, &state.HasSummary)
	if err != nil {
		return EnrichmentState{}, fmt.Errorf("failed to get enrichment state for %q: %w", fullName, err)
	}
	return state, nil
}

// UpdateRepositoryDetails writes back all fetched metadata and the enrichment
// timestamp as a single update.
func (q *Queries) UpdateRepositoryDetails(ctx context.Context, arg UpdateRepositoryDetailsParams) error {
	_, err := q.db.Exec(ctx, `
		UPDATE repositories SET
			forks_count     = $2,
			stars_count     = $3,
			license         = $4,
			pushed_at       = $5,
			repo_created_at = $6,
			readme          = $7,
			description     = $8,
			homepage        = $9,
			enriched_at     = $10,
			updated_at      = NOW()
		WHERE full_name = $1
	`, arg.FullName, arg.ForksCount, arg.StarsCount, arg.License, arg.PushedAt,
		arg.RepoCreatedAt, arg.Readme, arg.Description, arg.Homepage, arg.EnrichedAt)
	if err != nil {
		return fmt.Errorf("failed to update repository details for %q: %w", arg.FullName, err)
	}
	return nil
}

// UpdateRepositorySummary persists a freshly generated summary. Targeted
// single-column update so a late summary never clobbers other fields.
func (q *Queries) UpdateRepositorySummary(ctx context.Context, fullName, summary string) error {
	_, err := q.db.Exec(ctx, `
		UPDATE repositories SET ai_summary = $2, updated_at = NOW()
		WHERE full_name = $1
	`, fullName, summary)
	if err != nil {
		return fmt.Errorf("failed to update summary for %q: %w", fullName, err)
	}
	return nil
}

// MarkRepositoryDeleted records that the upstream source reports the
// repository gone. The row is kept; only the sentinel is set.
func (q *Queries) MarkRepositoryDeleted(ctx context.Context, fullName string, deletedAt time.Time) error {
	_, err := q.db.Exec(ctx, `
		UPDATE repositories SET deleted_at = $2, updated_at = NOW()
		WHERE full_name = $1
	`, fullName, deletedAt)
	if err != nil {
		return fmt.Errorf("failed to mark repository %q deleted: %w", fullName, err)
	}
	return nil
}

// GetRepositoryByName returns the full longitudinal record.
func (q *Queries) GetRepositoryByName(ctx context.Context, fullName string) (model.Repository, error) {
	var r model.Repository
	err := q.db.QueryRow(ctx, `
		SELECT full_name, language, forks_count, stars_count, license,
		       pushed_at, repo_created_at, readme, description, homepage,
		       ai_summary, enriched_at, deleted_at,
		       first_trending_on, best_rank, last_trending_on, trending_days,
		       created_at, updated_at
		FROM repositories
		WHERE full_name = $1
	`, fullName).Scan(
		&r.FullName, &r.Language, &r.ForksCount, &r.StarsCount, &r.License,
		&r.PushedAt, &r.RepoCreatedAt, &r.Readme, &r.Description, &r.Homepage,
		&r.AISummary, &r.EnrichedAt, &r.DeletedAt,
		&r.FirstTrendingOn, &r.BestRank, &r.LastTrendingOn, &r.TrendingDays,
		&r.DBCreatedAt, &r.DBUpdatedAt,
	)
	if err != nil {
		return model.Repository{}, err
	}
	return r, nil
}
