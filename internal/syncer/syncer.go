// internal/syncer/syncer.go
package syncer

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github-trending-tracker/internal/database"
	custom_errors "github-trending-tracker/internal/errors"
	"github-trending-tracker/internal/github"
	"github-trending-tracker/internal/model"
)

// ListingFetcher fetches the ranked trending listing for one scope.
type ListingFetcher interface {
	FetchScope(ctx context.Context, scope model.Scope) ([]model.TrendingRepo, error)
}

// DetailsFetcher fetches per-repository metadata and README text.
type DetailsFetcher interface {
	GetRepository(ctx context.Context, owner, name string) (*model.RepoDetails, error)
	GetReadme(ctx context.Context, owner, name string) (string, error)
}

// Summarizer produces a short natural-language synopsis for a repository.
type Summarizer interface {
	Summarize(ctx context.Context, fullName, description, readme string) (string, error)
}

// Config holds the tunables for a Syncer.
type Config struct {
	Scopes       []string      // "spoken_language/language" pairs
	SyncInterval time.Duration // 0 runs a single cycle
	StaleAfter   time.Duration // enrichment staleness threshold
	Concurrency  int           // enrichment pool size
	TrendingOnly bool          // stale repos re-enrich only when trending today
}

// Syncer orchestrates one full cycle: snapshot collection, statistics
// aggregation, and concurrent enrichment.
type Syncer struct {
	dbpool   *pgxpool.Pool
	queries  database.Querier
	listing  ListingFetcher
	ghClient DetailsFetcher
	llm      Summarizer
	logger   *slog.Logger
	scopes   []model.Scope
	cfg      Config
}

// NewSyncer creates a new Syncer instance.
func NewSyncer(dbpool *pgxpool.Pool, listing ListingFetcher, ghClient DetailsFetcher, llm Summarizer, logger *slog.Logger, cfg Config) (*Syncer, error) {
	scopes, err := parseScopes(cfg.Scopes)
	if err != nil {
		return nil, err
	}

	return &Syncer{
		dbpool:   dbpool,
		queries:  database.New(dbpool),
		listing:  listing,
		ghClient: ghClient,
		llm:      llm,
		logger:   logger,
		scopes:   scopes,
		cfg:      cfg,
	}, nil
}

// Start runs sync cycles until the context is cancelled. With a zero
// interval it performs exactly one cycle and returns its error.
func (s *Syncer) Start(ctx context.Context) error {
	if s.cfg.SyncInterval <= 0 {
		return s.RunCycle(ctx)
	}

	s.logger.Info("Starting syncer", "interval", s.cfg.SyncInterval.String(), "concurrency", s.cfg.Concurrency)
	ticker := time.NewTicker(s.cfg.SyncInterval)
	defer ticker.Stop()

	if err := s.RunCycle(ctx); err != nil {
		s.logger.Error("Sync cycle failed", "error", err)
	}

	for {
		select {
		case <-ticker.C:
			if err := s.RunCycle(ctx); err != nil {
				s.logger.Error("Sync cycle failed", "error", err)
			}
		case <-ctx.Done():
			s.logger.Info("Syncer shutting down", "reason", ctx.Err())
			return nil
		}
	}
}

// RunCycle performs one full pass: every scope's snapshot is collected and
// aggregated single-threaded, then the due-set is enriched concurrently.
// Collection errors abort the cycle; per-repository enrichment errors do not.
func (s *Syncer) RunCycle(ctx context.Context) error {
	today := todayUTC()
	s.logger.Info("Starting sync cycle", "date", today.Format(time.DateOnly))

	for _, scope := range s.scopes {
		if err := s.collectScope(ctx, scope, today); err != nil {
			return err
		}
	}

	return s.enrichDueRepositories(ctx, today)
}

// collectScope fetches one scope's listing, atomically replaces today's
// snapshot rows, and upserts each entry into the longitudinal record.
func (s *Syncer) collectScope(ctx context.Context, scope model.Scope, today time.Time) error {
	logger := s.logger.With("scope", scope.String())
	logger.Info("Fetching trending listing")

	repos, err := s.listing.FetchScope(ctx, scope)
	if err != nil {
		return err
	}
	logger.Info("Parsed trending listing", "entries", len(repos))

	// Replace the day's snapshot in one transaction so a failed insert never
	// leaves a partial day. The delete runs even for an empty listing.
	tx, err := s.dbpool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) // Rollback is a no-op if the transaction is already committed.

	qtx := database.New(tx)
	if err := qtx.DeleteTrendingSnapshot(ctx, scope, today); err != nil {
		return err
	}
	if err := qtx.InsertTrendingEntries(ctx, scope, today, repos); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}

	for _, repo := range repos {
		if err := s.queries.UpsertTrendingStats(ctx, repo, today); err != nil {
			return err
		}
	}
	return nil
}

// enrichDueRepositories runs the bounded worker pool over the due-set.
func (s *Syncer) enrichDueRepositories(ctx context.Context, today time.Time) error {
	due, err := s.queries.ListDueRepositories(ctx, database.ListDueRepositoriesParams{
		StaleBefore:  time.Now().UTC().Add(-s.cfg.StaleAfter),
		TrendingOn:   today,
		TrendingOnly: s.cfg.TrendingOnly,
	})
	if err != nil {
		return err
	}
	s.logger.Info("Enriching due repositories", "count", len(due), "concurrency", s.cfg.Concurrency)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)

	for _, fullName := range due {
		fullName := fullName
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			if err := s.enrichRepoInTransaction(gctx, fullName); err != nil && !errors.Is(err, context.Canceled) {
				s.logger.Error("Failed to enrich repository", "repo", fullName, "error", err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	s.logger.Info("Sync cycle finished")
	return nil
}

// enrichRepoInTransaction wraps the enrichment of a single repository in a DB
// transaction, then triggers summary generation outside it when needed.
func (s *Syncer) enrichRepoInTransaction(ctx context.Context, fullName string) error {
	tx, err := s.dbpool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	qtx := database.New(tx)
	job, err := s.enrichRepo(ctx, qtx, fullName)
	if err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}

	if job != nil {
		s.generateSummary(ctx, *job)
	}
	return nil
}

// summaryJob carries the inputs for a pending summary regeneration.
type summaryJob struct {
	fullName    string
	description string
	readme      string
}

// enrichRepo performs the per-repository procedure: fetch details, handle
// deletion, fetch the README, read the previous state, and write everything
// back. It returns a non-nil summaryJob when the content changed enough to
// need a new summary.
func (s *Syncer) enrichRepo(ctx context.Context, q database.Querier, fullName string) (*summaryJob, error) {
	logger := s.logger.With("repo", fullName)
	logger.Info("Enriching repository")

	owner, name, ok := strings.Cut(fullName, "/")
	if !ok {
		return nil, errors.New("repository name is not in 'owner/name' form: " + fullName)
	}

	details, err := s.ghClient.GetRepository(ctx, owner, name)
	if errors.Is(err, github.ErrNotFound) {
		logger.Info("Repository gone upstream, marking deleted")
		return nil, q.MarkRepositoryDeleted(ctx, fullName, time.Now().UTC())
	}
	if err != nil {
		return nil, err
	}

	readme, err := s.ghClient.GetReadme(ctx, owner, name)
	if err != nil {
		return nil, err
	}

	prev, err := q.GetEnrichmentState(ctx, fullName)
	if err != nil {
		return nil, err
	}

	err = q.UpdateRepositoryDetails(ctx, database.UpdateRepositoryDetailsParams{
		FullName:      fullName,
		ForksCount:    details.ForksCount,
		StarsCount:    details.StarsCount,
		License:       details.License,
		PushedAt:      details.PushedAt,
		RepoCreatedAt: details.RepoCreatedAt,
		Readme:        readme,
		Description:   details.Description,
		Homepage:      details.Homepage,
		EnrichedAt:    time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	if !needsResummary(prev, readme, details.Description) {
		logger.Info("Content unchanged, keeping existing summary")
		return nil, nil
	}
	return &summaryJob{
		fullName:    fullName,
		description: derefString(details.Description),
		readme:      readme,
	}, nil
}

// generateSummary invokes the summarizer and persists the result. Failures
// are logged and leave the existing summary untouched.
func (s *Syncer) generateSummary(ctx context.Context, job summaryJob) {
	logger := s.logger.With("repo", job.fullName)
	logger.Info("Generating summary")

	summary, err := s.llm.Summarize(ctx, job.fullName, job.description, job.readme)
	if err != nil {
		logger.Error("Summary generation failed", "error", err)
		return
	}
	if err := s.queries.UpdateRepositorySummary(ctx, job.fullName, summary); err != nil {
		logger.Error("Failed to store summary", "error", err)
		return
	}
	logger.Info("Summary stored", "length", len(summary))
}

// needsResummary reports whether summary generation is required: the readme
// changed, the description changed, or no summary exists yet. Changes to any
// other field must not trigger regeneration.
func needsResummary(prev database.EnrichmentState, readme string, description *string) bool {
	if !prev.HasSummary {
		return true
	}
	if prev.Readme == nil || *prev.Readme != readme {
		return true
	}
	return !equalStringPtr(prev.Description, description)
}

// todayUTC returns the current UTC calendar date at midnight.
func todayUTC() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func parseScopes(scopes []string) ([]model.Scope, error) {
	if len(scopes) == 0 {
		return []model.Scope{model.AnyScope}, nil
	}
	var parsed []model.Scope
	for _, sc := range scopes {
		spoken, lang, ok := strings.Cut(sc, "/")
		if !ok || spoken == "" || lang == "" {
			return nil, &custom_errors.ErrInvalidScopeFormat{Scope: sc}
		}
		parsed = append(parsed, model.Scope{SpokenLanguage: spoken, Language: lang})
	}
	return parsed, nil
}

func equalStringPtr(a *string, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
