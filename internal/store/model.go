package store

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MarcoPoloResearchLab/filmfolio/internal/catalog"
)

// Status enumerates the tracking states of a watchlist entry.
type Status string

const (
	// StatusPlanToWatch is the initial state of every new entry.
	StatusPlanToWatch Status = "plan_to_watch"
	// StatusWatching marks a movie currently in progress.
	StatusWatching Status = "watching"
	// StatusWatched marks a finished movie.
	StatusWatched Status = "watched"
	// StatusDropped marks an abandoned movie.
	StatusDropped Status = "dropped"
)

const (
	minRating               = 1
	maxRating               = 10
	maxCollectionNameLength = 190
)

var (
	// ErrInvalidStatus indicates an unknown watchlist status value.
	ErrInvalidStatus = errors.New("store: invalid status")
	// ErrInvalidRating indicates a personal rating outside 1..10.
	ErrInvalidRating = errors.New("store: invalid personal rating")
	// ErrInvalidCollectionName indicates an empty or oversized collection name.
	ErrInvalidCollectionName = errors.New("store: invalid collection name")
)

// Statuses lists every status in display order.
func Statuses() []Status {
	return []Status{StatusPlanToWatch, StatusWatching, StatusWatched, StatusDropped}
}

// NewStatus validates raw input and returns a Status.
func NewStatus(rawInput string) (Status, error) {
	candidate := Status(strings.ToLower(strings.TrimSpace(rawInput)))
	for _, status := range Statuses() {
		if candidate == status {
			return status, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, rawInput)
}

// String returns the underlying status value.
func (s Status) String() string {
	return string(s)
}

// Label returns the human readable name of the status.
func (s Status) Label() string {
	switch s {
	case StatusPlanToWatch:
		return "Plan to Watch"
	case StatusWatching:
		return "Watching"
	case StatusWatched:
		return "Watched"
	case StatusDropped:
		return "Dropped"
	default:
		return string(s)
	}
}

// Rating is a validated personal rating between 1 and 10.
type Rating int

// NewRating validates the value and returns a Rating.
func NewRating(value int) (Rating, error) {
	if value < minRating || value > maxRating {
		return 0, fmt.Errorf("%w: %d", ErrInvalidRating, value)
	}
	return Rating(value), nil
}

// Int returns the raw rating value.
func (r Rating) Int() int {
	return int(r)
}

// CollectionName is a validated, trimmed collection name.
type CollectionName string

// NewCollectionName validates raw input and returns a CollectionName.
func NewCollectionName(rawInput string) (CollectionName, error) {
	trimmed := strings.TrimSpace(rawInput)
	if trimmed == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidCollectionName)
	}
	if len(trimmed) > maxCollectionNameLength {
		return "", fmt.Errorf("%w: exceeds %d characters", ErrInvalidCollectionName, maxCollectionNameLength)
	}
	return CollectionName(trimmed), nil
}

// String returns the underlying name.
func (n CollectionName) String() string {
	return string(n)
}

// WatchlistEntry is a catalog snapshot augmented with the user's tracking state.
// The embedded movie fields are serialized inline, exactly as the catalog
// returned them when the entry was created.
type WatchlistEntry struct {
	catalog.Movie
	Status         Status    `json:"status"`
	PersonalRating *Rating   `json:"personalRating"`
	Notes          string    `json:"notes"`
	DateAdded      time.Time `json:"dateAdded"`
}

// HasPersonalRating reports whether the user rated the movie.
func (e WatchlistEntry) HasPersonalRating() bool {
	return e.PersonalRating != nil
}

// PersonalRatingValue returns the rating or zero when absent.
func (e WatchlistEntry) PersonalRatingValue() int {
	if e.PersonalRating == nil {
		return 0
	}
	return e.PersonalRating.Int()
}

// WatchlistUpdate is a partial update of the user fields of an entry. Nil
// fields are left untouched. The identifier and dateAdded are not updatable.
type WatchlistUpdate struct {
	Status              *Status
	PersonalRating      *Rating
	ClearPersonalRating bool
	Notes               *string
}

// IsEmpty reports whether the update carries no field changes.
func (u WatchlistUpdate) IsEmpty() bool {
	return u.Status == nil && u.PersonalRating == nil && !u.ClearPersonalRating && u.Notes == nil
}

func (u WatchlistUpdate) applyTo(entry WatchlistEntry) WatchlistEntry {
	if u.Status != nil {
		entry.Status = *u.Status
	}
	if u.ClearPersonalRating {
		entry.PersonalRating = nil
	}
	if u.PersonalRating != nil {
		rating := *u.PersonalRating
		entry.PersonalRating = &rating
	}
	if u.Notes != nil {
		entry.Notes = *u.Notes
	}
	return entry
}

// Collection is a user-named, ordered group of catalog snapshots.
type Collection struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Movies    []catalog.Movie `json:"movies"`
	CreatedAt time.Time       `json:"createdAt"`
}

// Contains reports whether the collection already holds the movie.
func (c Collection) Contains(movieID int) bool {
	for _, movie := range c.Movies {
		if movie.ID == movieID {
			return true
		}
	}
	return false
}
