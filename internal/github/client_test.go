// internal/github/client_test.go
package github

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"sync"
	"testing"
	"time"

	gh "github.com/google/go-github/v62/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestClient creates a httptest server and a client pointing to it.
func setupTestClient(t *testing.T, handler http.Handler, minInterval time.Duration) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	client := NewClient("", minInterval, logger)

	// Point the wrapped go-github client at the test server.
	client.gh = gh.NewClient(server.Client())
	baseURL, err := url.Parse(server.URL + "/")
	require.NoError(t, err)
	client.gh.BaseURL = baseURL

	return client, server
}

func TestClient_GetRepository(t *testing.T) {
	t.Run("maps repository details", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/repos/test-owner/test-repo", r.URL.Path)
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{
				"forks_count": 7,
				"stargazers_count": 42,
				"license": {"name": "MIT License"},
				"pushed_at": "2025-08-30T12:00:00Z",
				"created_at": "2020-02-01T00:00:00Z",
				"description": "a thing",
				"homepage": "https://example.com"
			}`))
		})
		client, _ := setupTestClient(t, handler, 0)

		details, err := client.GetRepository(context.Background(), "test-owner", "test-repo")

		require.NoError(t, err)
		assert.Equal(t, 7, details.ForksCount)
		assert.Equal(t, 42, details.StarsCount)
		require.NotNil(t, details.License)
		assert.Equal(t, "MIT License", *details.License)
		assert.Equal(t, time.Date(2025, 8, 30, 12, 0, 0, 0, time.UTC), details.PushedAt)
		require.NotNil(t, details.Description)
		assert.Equal(t, "a thing", *details.Description)
	})

	t.Run("translates 404 into ErrNotFound", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message": "Not Found"}`))
		})
		client, _ := setupTestClient(t, handler, 0)

		_, err := client.GetRepository(context.Background(), "gone", "repo")

		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("propagates other failures unmodified", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message": "Bad credentials"}`))
		})
		client, _ := setupTestClient(t, handler, 0)

		_, err := client.GetRepository(context.Background(), "test", "repo")

		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrNotFound)
	})
}

func TestClient_GetReadme(t *testing.T) {
	t.Run("decodes base64 content", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/repos/test-owner/test-repo/readme", r.URL.Path)
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"content": "SGVsbG8gV29ybGQ=", "encoding": "base64"}`))
		})
		client, _ := setupTestClient(t, handler, 0)

		readme, err := client.GetReadme(context.Background(), "test-owner", "test-repo")

		require.NoError(t, err)
		assert.Equal(t, "Hello World", readme)
	})

	t.Run("missing readme is ErrNotFound", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message": "Not Found"}`))
		})
		client, _ := setupTestClient(t, handler, 0)

		_, err := client.GetReadme(context.Background(), "test-owner", "test-repo")

		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestClient_RateLimitSpacing(t *testing.T) {
	const minInterval = 50 * time.Millisecond
	const calls = 3

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"stargazers_count": 1}`))
	})
	client, _ := setupTestClient(t, handler, minInterval)

	start := time.Now()
	var wg sync.WaitGroup
	for i := 0; i < calls; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := client.GetRepository(context.Background(), "test-owner", "test-repo")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	// N serialized call starts must span at least (N-1) intervals,
	// regardless of how many callers hit the gate concurrently.
	elapsed := time.Since(start)
	assert.GreaterOrEqual(t, elapsed, (calls-1)*minInterval,
		"call starts must be spaced by at least the minimum interval")
}
