// internal/config/config.go
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// RefreshPolicy selects the due-set predicate for re-enrichment of already
// enriched repositories.
type RefreshPolicy string

const (
	// RefreshTrending re-enriches a repository only when it is both stale
	// and was last seen trending today.
	RefreshTrending RefreshPolicy = "trending"
	// RefreshStale re-enriches on plain staleness.
	RefreshStale RefreshPolicy = "stale"
)

// Config holds all configuration for the application.
type Config struct {
	LogLevel           string        `mapstructure:"LOG_LEVEL"`
	DBURL              string        `mapstructure:"DB_URL"`
	GithubToken        string        `mapstructure:"GITHUB_TOKEN"`
	OpenAIAPIKey       string        `mapstructure:"OPENAI_API_KEY"`
	OpenAIAPIURL       string        `mapstructure:"OPENAI_API_URL"`
	OpenAIModel        string        `mapstructure:"OPENAI_MODEL"`
	Scopes             []string      `mapstructure:"SCOPES"`
	SyncInterval       time.Duration `mapstructure:"SYNC_INTERVAL"`
	StaleAfter         time.Duration `mapstructure:"STALE_AFTER"`
	RequestInterval    time.Duration `mapstructure:"REQUEST_INTERVAL"`
	Concurrency        int           `mapstructure:"CONCURRENCY"`
	RefreshPolicy      RefreshPolicy `mapstructure:"REFRESH_POLICY"`
	SummaryReadmeLimit int           `mapstructure:"SUMMARY_README_LIMIT"`
	HTTPAddr           string        `mapstructure:"HTTP_ADDR"`
}

// LoadConfig reads configuration from file and/or environment variables.
func LoadConfig() (*Config, error) {
	// Set default values
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("SCOPES", "any/any")
	viper.SetDefault("SYNC_INTERVAL", "0s")
	viper.SetDefault("STALE_AFTER", "480h") // 20 days
	viper.SetDefault("REQUEST_INTERVAL", "2s")
	viper.SetDefault("CONCURRENCY", 5)
	viper.SetDefault("REFRESH_POLICY", string(RefreshTrending))
	viper.SetDefault("SUMMARY_README_LIMIT", 2000)
	viper.SetDefault("OPENAI_API_URL", "https://api.openai.com/v1")
	viper.SetDefault("OPENAI_MODEL", "gpt-4o-mini")

	// Load from .env file if it exists
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	_ = viper.ReadInConfig() // Ignore error if file not found

	// Bind environment variables
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Validate required fields
	if cfg.DBURL == "" {
		return nil, errors.New("DB_URL is a required configuration field")
	}
	if cfg.GithubToken == "" {
		return nil, errors.New("GITHUB_TOKEN is a required configuration field")
	}
	if cfg.OpenAIAPIKey == "" {
		return nil, errors.New("OPENAI_API_KEY is a required configuration field")
	}
	if cfg.RefreshPolicy != RefreshTrending && cfg.RefreshPolicy != RefreshStale {
		return nil, errors.New("REFRESH_POLICY must be either 'trending' or 'stale'")
	}
	if cfg.Concurrency <= 0 {
		return nil, errors.New("CONCURRENCY must be a positive integer")
	}

	return &cfg, nil
}
