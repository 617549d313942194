// internal/model/models.go
package model

import (
	"time"
)

// Scope is a (spoken language, programming language) filter pair used to
// partition trending listings. "any" means unfiltered.
type Scope struct {
	SpokenLanguage string
	Language       string
}

// AnyScope is the default unfiltered scope.
var AnyScope = Scope{SpokenLanguage: "any", Language: "any"}

func (s Scope) String() string {
	return s.SpokenLanguage + "/" + s.Language
}

// TrendingRepo is one parsed entry from the trending listing, as produced by
// the collector and consumed by the aggregator.
type TrendingRepo struct {
	FullName   string // "owner/name"
	Language   string
	StarsCount int
	ForksCount int
	StarsToday int
	Rank       int // 1-based position in the listing
}

// TrendingEntry represents one stored ranking row for a (scope, date, rank).
type TrendingEntry struct {
	SpokenLanguage string    `json:"spoken_language"`
	Language       string    `json:"language"`
	EntryDate      time.Time `json:"entry_date"`
	RepoName       string    `json:"repo_name"`
	Rank           int       `json:"rank"`
	StarsCount     int       `json:"stars_count"`
	StarsToday     int       `json:"stars_today"`
}

// Repository is the canonical long-lived record for a repository, combining
// the latest observed metadata with longitudinal trending statistics.
type Repository struct {
	FullName        string     `json:"full_name"`
	Language        *string    `json:"language"`
	ForksCount      int        `json:"forks_count"`
	StarsCount      int        `json:"stars_count"`
	License         *string    `json:"license"`
	PushedAt        *time.Time `json:"pushed_at"`
	RepoCreatedAt   *time.Time `json:"repo_created_at"`
	Readme          *string    `json:"-"`
	Description     *string    `json:"description"`
	Homepage        *string    `json:"homepage"`
	AISummary       *string    `json:"ai_summary"`
	EnrichedAt      *time.Time `json:"enriched_at"`
	DeletedAt       *time.Time `json:"deleted_at"`
	FirstTrendingOn time.Time  `json:"first_trending_on"`
	BestRank        int        `json:"best_rank"`
	LastTrendingOn  time.Time  `json:"last_trending_on"`
	TrendingDays    int        `json:"trending_days"`
	DBCreatedAt     time.Time  `json:"-"`
	DBUpdatedAt     time.Time  `json:"-"`
}

// RepoDetails holds the metadata fields fetched from the GitHub API for a
// single repository during enrichment.
type RepoDetails struct {
	ForksCount    int
	StarsCount    int
	License       *string
	PushedAt      time.Time
	RepoCreatedAt time.Time
	Description   *string
	Homepage      *string
}
