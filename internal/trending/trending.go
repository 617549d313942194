// internal/trending/trending.go
package trending

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github-trending-tracker/internal/model"
)

const defaultBaseURL = "https://github.com/trending"

// Client fetches and parses the trending listing page.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewClient creates a trending listing client.
func NewClient(logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    defaultBaseURL,
		logger:     logger,
	}
}

// FetchScope downloads the listing for one scope and returns its ranked
// entries. A page with no parseable rows yields an empty slice, not an error.
func (c *Client) FetchScope(ctx context.Context, scope model.Scope) ([]model.TrendingRepo, error) {
	pageURL := c.baseURL
	if scope.Language != "any" {
		pageURL += "/" + url.PathEscape(scope.Language)
	}
	if scope.SpokenLanguage != "any" {
		pageURL += "?spoken_language_code=" + url.QueryEscape(scope.SpokenLanguage)
	}

	c.logger.Debug("Fetching trending page", "url", pageURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching trending page: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("trending page returned %d", resp.StatusCode)
	}

	return parseListing(resp.Body)
}

// parseListing extracts ranked entries from the trending page markup. Rank is
// the 1-based position of the row in document order.
func parseListing(r io.Reader) ([]model.TrendingRepo, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing trending page: %w", err)
	}

	var repos []model.TrendingRepo
	doc.Find("article.Box-row").Each(func(_ int, row *goquery.Selection) {
		fullName := strings.TrimPrefix(row.Find("h2 a").AttrOr("href", ""), "/")
		if fullName == "" {
			return
		}

		counters := row.Find("a.Link.Link--muted")
		repos = append(repos, model.TrendingRepo{
			FullName:   fullName,
			Language:   strings.TrimSpace(row.Find(`span[itemprop="programmingLanguage"]`).Text()),
			StarsCount: parseCount(counters.Eq(0).Text()),
			ForksCount: parseCount(counters.Eq(1).Text()),
			StarsToday: parseCount(row.Find("span.float-sm-right").Text()),
			Rank:       len(repos) + 1,
		})
	})

	return repos, nil
}

var countPattern = regexp.MustCompile(`[\d,]+`)

// parseCount extracts the first comma-grouped integer from a label like
// "1,234 stars today". Returns 0 when no digits are present.
func parseCount(text string) int {
	match := countPattern.FindString(text)
	if match == "" {
		return 0
	}
	n, err := strconv.Atoi(strings.ReplaceAll(match, ",", ""))
	if err != nil {
		return 0
	}
	return n
}
