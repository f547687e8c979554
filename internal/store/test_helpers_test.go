package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/MarcoPoloResearchLab/filmfolio/internal/catalog"
)

type staticIDGenerator struct {
	mu    sync.Mutex
	ids   []string
	index int
}

func (g *staticIDGenerator) NewID() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.index >= len(g.ids) {
		return "", errors.New("exhausted ids")
	}
	id := g.ids[g.index]
	g.index++
	return id, nil
}

type sequenceIDGenerator struct {
	mu   sync.Mutex
	next int
}

func (g *sequenceIDGenerator) NewID() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next++
	return fmt.Sprintf("collection-%d", g.next), nil
}

type steppingClock struct {
	mu      sync.Mutex
	current time.Time
	step    time.Duration
}

func (c *steppingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.current
	c.current = c.current.Add(c.step)
	return now
}

type failingSubstrate struct {
	*MemorySubstrate
	failSaves bool
	failLoads bool
}

var errSubstrateUnavailable = errors.New("quota exceeded")

func (f *failingSubstrate) Load(ctx context.Context, key string) ([]byte, bool, error) {
	if f.failLoads {
		return nil, false, errSubstrateUnavailable
	}
	return f.MemorySubstrate.Load(ctx, key)
}

func (f *failingSubstrate) Save(ctx context.Context, key string, value []byte) error {
	if f.failSaves {
		return errSubstrateUnavailable
	}
	return f.MemorySubstrate.Save(ctx, key, value)
}

func newTestStore(t *testing.T, substrate Substrate) *Store {
	t.Helper()
	clock := &steppingClock{
		current: time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC),
		step:    time.Minute,
	}
	store, err := NewStore(Config{
		Substrate:  substrate,
		Clock:      clock.Now,
		IDProvider: &sequenceIDGenerator{},
	})
	if err != nil {
		t.Fatalf("failed to construct store: %v", err)
	}
	return store
}

func testMovie(id int, title string) catalog.Movie {
	return catalog.Movie{
		ID:          id,
		Title:       title,
		PosterPath:  fmt.Sprintf("/poster-%d.jpg", id),
		ReleaseDate: "1999-03-31",
		VoteAverage: 8.1,
		VoteCount:   1200,
		GenreIDs:    []int{28, 878},
	}
}

func mustStatus(t *testing.T, value string) Status {
	t.Helper()
	status, err := NewStatus(value)
	if err != nil {
		t.Fatalf("unexpected status error: %v", err)
	}
	return status
}

func mustRating(t *testing.T, value int) Rating {
	t.Helper()
	rating, err := NewRating(value)
	if err != nil {
		t.Fatalf("unexpected rating error: %v", err)
	}
	return rating
}

func mustCollectionName(t *testing.T, value string) CollectionName {
	t.Helper()
	name, err := NewCollectionName(value)
	if err != nil {
		t.Fatalf("unexpected collection name error: %v", err)
	}
	return name
}
