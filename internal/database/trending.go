// internal/database/trending.go
package database

import (
	"context"
	"fmt"
	"time"

	"github-trending-tracker/internal/model"
)

// DeleteTrendingSnapshot removes all ranking rows for one scope and date.
// Running it before the insert makes snapshot ingestion idempotent per day.
func (q *Queries) DeleteTrendingSnapshot(ctx context.Context, scope model.Scope, date time.Time) error {
	_, err := q.db.Exec(ctx, `
		DELETE FROM trending_entries
		WHERE entry_date = $1
		  AND spoken_language = $2
		  AND language = $3
	`, date, scope.SpokenLanguage, scope.Language)
	if err != nil {
		return fmt.Errorf("failed to delete trending snapshot: %w", err)
	}
	return nil
}

// InsertTrendingEntries inserts the parsed listing rows for one scope and
// date. Rank is taken from each entry's listing position.
func (q *Queries) InsertTrendingEntries(ctx context.Context, scope model.Scope, date time.Time, repos []model.TrendingRepo) error {
	for _, r := range repos {
		_, err := q.db.Exec(ctx, `
			INSERT INTO trending_entries
				(spoken_language, language, entry_date, repo_name, rank, stars_count, stars_today)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, scope.SpokenLanguage, scope.Language, date, r.FullName, r.Rank, r.StarsCount, r.StarsToday)
		if err != nil {
			return fmt.Errorf("failed to insert trending entry %q: %w", r.FullName, err)
		}
	}
	return nil
}

// ListTrendingEntries returns the stored snapshot for one scope and date,
// ordered by rank.
func (q *Queries) ListTrendingEntries(ctx context.Context, scope model.Scope, date time.Time) ([]model.TrendingEntry, error) {
	rows, err := q.db.Query(ctx, `
		SELECT spoken_language, language, entry_date, repo_name, rank, stars_count, stars_today
		FROM trending_entries
		WHERE entry_date = $1
		  AND spoken_language = $2
		  AND language = $3
		ORDER BY rank
	`, date, scope.SpokenLanguage, scope.Language)
	if err != nil {
		return nil, fmt.Errorf("failed to list trending entries: %w", err)
	}
	defer rows.Close()

	var entries []model.TrendingEntry
	for rows.Next() {
		var e model.TrendingEntry
		if err := rows.Scan(&e.SpokenLanguage, &e.Language, &e.EntryDate, &e.RepoName, &e.Rank, &e.StarsCount, &e.StarsToday); err != nil {
			return nil, fmt.Errorf("failed to scan trending entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
