package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/MarcoPoloResearchLab/filmfolio/internal/catalog"
	"github.com/MarcoPoloResearchLab/filmfolio/internal/store"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var fixedNow = time.Date(2024, time.June, 20, 12, 0, 0, 0, time.UTC)

type stubCatalog struct {
	mu           sync.Mutex
	movies       map[int]catalog.Movie
	genres       []catalog.Genre
	genresErr    error
	listErr      error
	detailsCalls int
	lastFilters  map[string]string
	lastQuery    string
}

func newStubCatalog() *stubCatalog {
	return &stubCatalog{
		movies: map[int]catalog.Movie{
			603: {
				ID:          603,
				Title:       "The Matrix",
				PosterPath:  "/matrix.jpg",
				ReleaseDate: "1999-03-31",
				VoteAverage: 8.2,
				Runtime:     136,
				Genres:      []catalog.Genre{{ID: 28, Name: "Action"}, {ID: 878, Name: "Science Fiction"}},
				Videos: &catalog.VideoList{Results: []catalog.Video{
					{Key: "teaser", Site: "YouTube", Type: "Teaser"},
					{Key: "vKQi3bBA1y8", Site: "YouTube", Type: "Trailer"},
				}},
			},
			680: {
				ID:          680,
				Title:       "Pulp Fiction",
				ReleaseDate: "1994-09-10",
				VoteAverage: 8.5,
				GenreIDs:    []int{53, 80},
			},
		},
		genres: []catalog.Genre{
			{ID: 28, Name: "Action"},
			{ID: 878, Name: "Science Fiction"},
			{ID: 53, Name: "Thriller"},
			{ID: 80, Name: "Crime"},
		},
	}
}

func (s *stubCatalog) page(movies ...catalog.Movie) catalog.MoviePage {
	return catalog.MoviePage{Page: 1, Results: movies, TotalPages: 1, TotalResults: len(movies)}
}

func (s *stubCatalog) Trending(context.Context) (catalog.MoviePage, error) {
	if s.listErr != nil {
		return catalog.MoviePage{}, s.listErr
	}
	return s.page(s.movies[603]), nil
}

func (s *stubCatalog) Popular(context.Context) (catalog.MoviePage, error) {
	if s.listErr != nil {
		return catalog.MoviePage{}, s.listErr
	}
	return s.page(s.movies[680], s.movies[603]), nil
}

func (s *stubCatalog) Search(_ context.Context, query string) (catalog.MoviePage, error) {
	s.mu.Lock()
	s.lastQuery = query
	s.mu.Unlock()
	return s.page(s.movies[680]), nil
}

func (s *stubCatalog) Discover(_ context.Context, filters map[string]string) (catalog.MoviePage, error) {
	s.mu.Lock()
	s.lastFilters = filters
	s.mu.Unlock()
	return s.page(), nil
}

func (s *stubCatalog) MovieDetails(_ context.Context, movieID int) (catalog.Movie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.detailsCalls++
	movie, ok := s.movies[movieID]
	if !ok {
		return catalog.Movie{}, fmt.Errorf("%w: %d", catalog.ErrNotFound, movieID)
	}
	return movie, nil
}

func (s *stubCatalog) Genres(context.Context) ([]catalog.Genre, error) {
	if s.genresErr != nil {
		return nil, s.genresErr
	}
	return s.genres, nil
}

func (s *stubCatalog) ImageURL(path, size string) string {
	if path == "" {
		return "/placeholder-movie.jpg"
	}
	return "https://images.test/" + size + path
}

type failingSubstrate struct {
	*store.MemorySubstrate
}

func (f failingSubstrate) Save(context.Context, string, []byte) error {
	return errors.New("disk full")
}

type testServer struct {
	handler http.Handler
	store   *store.Store
	catalog *stubCatalog
}

func newTestServer(t *testing.T, substrate store.Substrate) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	if substrate == nil {
		substrate = store.NewMemorySubstrate()
	}
	movieStore, err := store.NewStore(store.Config{
		Substrate:  substrate,
		Clock:      func() time.Time { return fixedNow },
		IDProvider: store.NewUUIDProvider(),
	})
	if err != nil {
		t.Fatalf("failed to construct store: %v", err)
	}
	stub := newStubCatalog()
	handler, err := NewHTTPHandler(Dependencies{
		Store:             movieStore,
		Catalog:           stub,
		Logger:            zap.NewNop(),
		Clock:             func() time.Time { return fixedNow },
		HeartbeatInterval: time.Hour,
	})
	if err != nil {
		t.Fatalf("failed to construct http handler: %v", err)
	}
	return &testServer{handler: handler, store: movieStore, catalog: stub}
}

func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body == nil {
		reader = bytes.NewReader(nil)
	} else if raw, ok := body.(string); ok {
		reader = bytes.NewReader([]byte(raw))
	} else {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to encode request: %v", err)
		}
		reader = bytes.NewReader(payload)
	}
	request := httptest.NewRequest(method, path, reader)
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	recorder := httptest.NewRecorder()
	s.handler.ServeHTTP(recorder, request)
	return recorder
}

func decodeBody[T any](t *testing.T, recorder *httptest.ResponseRecorder) T {
	t.Helper()
	var value T
	if err := json.Unmarshal(recorder.Body.Bytes(), &value); err != nil {
		t.Fatalf("failed to decode response %q: %v", recorder.Body.String(), err)
	}
	return value
}

func expectStatus(t *testing.T, recorder *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if recorder.Code != expected {
		t.Fatalf("expected status %d, got %d: %s", expected, recorder.Code, recorder.Body.String())
	}
}
