// internal/github/client.go
package github

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/go-github/v62/github"
	"golang.org/x/oauth2"

	"github-trending-tracker/internal/model"
)

// ErrNotFound signals that the upstream API reports the repository gone.
// Callers treat it as a domain signal, not a failure.
var ErrNotFound = errors.New("repository not found")

// Client is a wrapper around the go-github client that enforces a minimum
// interval between call starts, globally across all concurrent callers.
type Client struct {
	gh          *github.Client
	logger      *slog.Logger
	minInterval time.Duration

	mu       sync.Mutex
	lastCall time.Time
}

// NewClient creates and configures a new Client instance.
// The provided token is used to create an authenticated http.Client.
func NewClient(token string, minInterval time.Duration, logger *slog.Logger) *Client {
	ctx := context.Background()
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(ctx, ts)

	return &Client{
		gh:          github.NewClient(tc),
		logger:      logger,
		minInterval: minInterval,
	}
}

// acquire serializes callers through the throttle gate. It sleeps off any
// remaining deficit since the last granted call, records the new grant time,
// and returns the release func. The API call itself must happen before
// release so the measured spacing is between call starts.
func (c *Client) acquire() func() {
	c.mu.Lock()
	if !c.lastCall.IsZero() {
		if wait := c.minInterval - time.Since(c.lastCall); wait > 0 {
			time.Sleep(wait)
		}
	}
	c.lastCall = time.Now()
	return c.mu.Unlock
}

// GetRepository fetches repository details and translates them to our
// internal model. Returns ErrNotFound when the API reports the repository
// missing.
func (c *Client) GetRepository(ctx context.Context, owner, name string) (*model.RepoDetails, error) {
	defer c.acquire()()

	c.logger.Debug("Fetching repository details", "owner", owner, "repo", name)
	repo, resp, err := c.gh.Repositories.Get(ctx, owner, name)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return toRepoDetails(repo), nil
}

// GetReadme fetches the repository README and decodes it from its transport
// encoding. Returns ErrNotFound when no README exists.
func (c *Client) GetReadme(ctx context.Context, owner, name string) (string, error) {
	defer c.acquire()()

	content, resp, err := c.gh.Repositories.GetReadme(ctx, owner, name, nil)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return "", ErrNotFound
		}
		return "", err
	}
	return content.GetContent()
}

// toRepoDetails translates a github.Repository object to our internal model.
func toRepoDetails(r *github.Repository) *model.RepoDetails {
	d := &model.RepoDetails{
		ForksCount:    r.GetForksCount(),
		StarsCount:    r.GetStargazersCount(),
		PushedAt:      r.GetPushedAt().Time,
		RepoCreatedAt: r.GetCreatedAt().Time,
		Description:   r.Description,
		Homepage:      r.Homepage,
	}
	if r.License != nil {
		d.License = r.License.Name
	}
	return d
}
