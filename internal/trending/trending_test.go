// internal/trending/trending_test.go
package trending

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github-trending-tracker/internal/model"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

const listingFixture = `
<html><body>
<article class="Box-row">
  <h2><a href="/alpha/one">alpha / one</a></h2>
  <span itemprop="programmingLanguage">Go</span>
  <a class="Link Link--muted" href="/alpha/one/stargazers">12,345</a>
  <a class="Link Link--muted" href="/alpha/one/forks">678</a>
  <span class="float-sm-right">321 stars today</span>
</article>
<article class="Box-row">
  <h2><a href="/beta/two">beta / two</a></h2>
  <a class="Link Link--muted" href="/beta/two/stargazers">999</a>
  <a class="Link Link--muted" href="/beta/two/forks">11</a>
</article>
</body></html>
`

func TestParseListing(t *testing.T) {
	repos, err := parseListing(strings.NewReader(listingFixture))
	require.NoError(t, err)
	require.Len(t, repos, 2)

	assert.Equal(t, model.TrendingRepo{
		FullName:   "alpha/one",
		Language:   "Go",
		StarsCount: 12345,
		ForksCount: 678,
		StarsToday: 321,
		Rank:       1,
	}, repos[0])

	// Second entry has no language label and no stars-today counter.
	assert.Equal(t, model.TrendingRepo{
		FullName:   "beta/two",
		StarsCount: 999,
		ForksCount: 11,
		Rank:       2,
	}, repos[1])
}

func TestParseListing_Empty(t *testing.T) {
	repos, err := parseListing(strings.NewReader("<html><body></body></html>"))
	require.NoError(t, err)
	assert.Empty(t, repos)
}

func TestParseCount(t *testing.T) {
	assert.Equal(t, 1234, parseCount("1,234 stars today"))
	assert.Equal(t, 42, parseCount("  42  "))
	assert.Equal(t, 0, parseCount("no digits here"))
	assert.Equal(t, 0, parseCount(""))
}

func TestClient_FetchScope(t *testing.T) {
	var gotPath, gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(listingFixture))
	}))
	defer server.Close()

	client := NewClient(testLogger())
	client.baseURL = server.URL

	t.Run("any/any hits the bare listing", func(t *testing.T) {
		repos, err := client.FetchScope(context.Background(), model.AnyScope)
		require.NoError(t, err)
		assert.Len(t, repos, 2)
		assert.Equal(t, "/", gotPath)
		assert.Empty(t, gotQuery)
	})

	t.Run("scoped listing adds path and query segments", func(t *testing.T) {
		_, err := client.FetchScope(context.Background(), model.Scope{SpokenLanguage: "en", Language: "go"})
		require.NoError(t, err)
		assert.Equal(t, "/go", gotPath)
		assert.Equal(t, "spoken_language_code=en", gotQuery)
	})

	t.Run("non-200 response is an error", func(t *testing.T) {
		failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer failing.Close()

		client := NewClient(testLogger())
		client.baseURL = failing.URL

		_, err := client.FetchScope(context.Background(), model.AnyScope)
		assert.Error(t, err)
	})
}
