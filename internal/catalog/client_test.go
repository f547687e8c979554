package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAPIKey = "test-key"

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(ClientConfig{
		APIKey:     testAPIKey,
		BaseURL:    server.URL + "/3",
		Attempts:   3,
		RetryDelay: time.Millisecond,
	})
	require.NoError(t, err)
	return client
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	_, err := NewClient(ClientConfig{})
	require.ErrorIs(t, err, ErrInvalidClientConfig)
}

func TestNewClientRejectsRelativeBaseURL(t *testing.T) {
	_, err := NewClient(ClientConfig{APIKey: testAPIKey, BaseURL: "not a url"})
	require.ErrorIs(t, err, ErrInvalidClientConfig)
}

func TestTrendingSendsAPIKeyAndDecodesPage(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/3/trending/movie/week", r.URL.Path)
		assert.Equal(t, testAPIKey, r.URL.Query().Get("api_key"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"page": 1,
			"results": []any{
				map[string]any{"id": 550, "title": "Fight Club", "genre_ids": []int{18}, "vote_average": 8.4},
			},
			"total_pages":   1,
			"total_results": 1,
		})
	}))

	page, err := client.Trending(context.Background())
	require.NoError(t, err)
	require.Len(t, page.Results, 1)
	assert.Equal(t, 550, page.Results[0].ID)
	assert.Equal(t, []int{18}, page.Results[0].GenreIDList())
	assert.InDelta(t, 8.4, page.Results[0].VoteAverage, 0.001)
}

func TestSearchSkipsBlankQuery(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))

	page, err := client.Search(context.Background(), "   ")
	require.NoError(t, err)
	assert.Empty(t, page.Results)
	assert.Zero(t, calls.Load())
}

func TestSearchEncodesQuery(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/3/search/movie", r.URL.Path)
		assert.Equal(t, "blade runner", r.URL.Query().Get("query"))
		_ = json.NewEncoder(w).Encode(map[string]any{"page": 1, "results": []any{}})
	}))

	_, err := client.Search(context.Background(), "  blade runner ")
	require.NoError(t, err)
}

func TestMovieDetailsAppendsCreditsVideosSimilar(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/3/movie/603", r.URL.Path)
		assert.Equal(t, "credits,videos,similar", r.URL.Query().Get("append_to_response"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      603,
			"title":   "The Matrix",
			"runtime": 136,
			"genres":  []any{map[string]any{"id": 28, "name": "Action"}, map[string]any{"id": 878, "name": "Science Fiction"}},
			"videos": map[string]any{"results": []any{
				map[string]any{"key": "abc", "site": "YouTube", "type": "Teaser"},
				map[string]any{"key": "xyz", "site": "YouTube", "type": "Trailer"},
			}},
		})
	}))

	movie, err := client.MovieDetails(context.Background(), 603)
	require.NoError(t, err)
	assert.Equal(t, 136, movie.Runtime)
	assert.Equal(t, []int{28, 878}, movie.GenreIDList())

	trailer, ok := movie.Trailer()
	require.True(t, ok)
	assert.Equal(t, "https://www.youtube.com/embed/xyz", YouTubeEmbedURL(trailer.Key))
}

func TestMovieDetailsMapsNotFound(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))

	_, err := client.MovieDetails(context.Background(), 1)
	require.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, int32(1), calls.Load(), "not found must not be retried")
}

func TestGenresRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"genres": []any{map[string]any{"id": 18, "name": "Drama"}},
		})
	}))

	genres, err := client.Genres(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []Genre{{ID: 18, Name: "Drama"}}, genres)
	assert.Equal(t, int32(3), calls.Load())
}

func TestPopularReportsUnavailableAfterRetries(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))

	_, err := client.Popular(context.Background())
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestDiscoverDropsCallerAPIKey(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, testAPIKey, r.URL.Query().Get("api_key"))
		assert.Equal(t, "18", r.URL.Query().Get("with_genres"))
		_ = json.NewEncoder(w).Encode(map[string]any{"page": 1, "results": []any{}})
	}))

	_, err := client.Discover(context.Background(), map[string]string{"with_genres": "18", "api_key": "spoofed"})
	require.NoError(t, err)
}

func TestImageURL(t *testing.T) {
	client, err := NewClient(ClientConfig{APIKey: testAPIKey})
	require.NoError(t, err)

	assert.Equal(t, "https://image.tmdb.org/t/p/w500/poster.jpg", client.ImageURL("/poster.jpg", ""))
	assert.Equal(t, "https://image.tmdb.org/t/p/original/poster.jpg", client.ImageURL("/poster.jpg", "original"))
	assert.Equal(t, "/placeholder-movie.jpg", client.ImageURL("", "w500"))
}
