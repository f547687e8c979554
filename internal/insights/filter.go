// Package insights derives display views from a watchlist snapshot. Every
// function is pure: inputs are never mutated and no state is kept between calls.
package insights

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/MarcoPoloResearchLab/filmfolio/internal/store"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// StatusFilterAll keeps every entry regardless of status.
const StatusFilterAll StatusFilter = "all"

// ErrInvalidStatusFilter indicates a filter that is neither a status nor "all".
var ErrInvalidStatusFilter = errors.New("insights: invalid status filter")

// StatusFilter selects entries by status, or all of them.
type StatusFilter string

// ParseStatusFilter validates raw input. Blank input means all.
func ParseStatusFilter(rawInput string) (StatusFilter, error) {
	trimmed := strings.ToLower(strings.TrimSpace(rawInput))
	if trimmed == "" || trimmed == string(StatusFilterAll) {
		return StatusFilterAll, nil
	}
	status, err := store.NewStatus(trimmed)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatusFilter, rawInput)
	}
	return StatusFilter(status), nil
}

func (f StatusFilter) matches(entry store.WatchlistEntry) bool {
	return f == StatusFilterAll || f == "" || store.Status(f) == entry.Status
}

// SortKey names a watchlist ordering.
type SortKey string

const (
	SortByDateAdded      SortKey = "dateAdded"
	SortByTitle          SortKey = "title"
	SortByRating         SortKey = "rating"
	SortByPersonalRating SortKey = "personalRating"
	SortByReleaseDate    SortKey = "releaseDate"
)

// SortKeys lists the supported orderings.
func SortKeys() []SortKey {
	return []SortKey{SortByDateAdded, SortByTitle, SortByRating, SortByPersonalRating, SortByReleaseDate}
}

// ParseSortKey maps raw input onto a SortKey. Unknown values fall back to
// dateAdded, the default ordering.
func ParseSortKey(rawInput string) SortKey {
	trimmed := strings.TrimSpace(rawInput)
	for _, key := range SortKeys() {
		if strings.EqualFold(trimmed, string(key)) {
			return key
		}
	}
	return SortByDateAdded
}

const releaseDateLayout = "2006-01-02"

// FilterAndSort returns a new slice holding the entries that pass the filter,
// stably ordered by key. Title sorts ascending; every other key sorts descending.
func FilterAndSort(entries []store.WatchlistEntry, filter StatusFilter, key SortKey) []store.WatchlistEntry {
	result := make([]store.WatchlistEntry, 0, len(entries))
	for _, entry := range entries {
		if filter.matches(entry) {
			result = append(result, entry)
		}
	}
	slices.SortStableFunc(result, comparatorFor(key))
	return result
}

func comparatorFor(key SortKey) func(a, b store.WatchlistEntry) int {
	switch key {
	case SortByTitle:
		collator := collate.New(language.English, collate.IgnoreCase)
		return func(a, b store.WatchlistEntry) int {
			return collator.CompareString(a.Title, b.Title)
		}
	case SortByRating:
		return func(a, b store.WatchlistEntry) int {
			return cmp.Compare(b.VoteAverage, a.VoteAverage)
		}
	case SortByPersonalRating:
		return func(a, b store.WatchlistEntry) int {
			return cmp.Compare(b.PersonalRatingValue(), a.PersonalRatingValue())
		}
	case SortByReleaseDate:
		return func(a, b store.WatchlistEntry) int {
			return releaseTime(b).Compare(releaseTime(a))
		}
	default:
		return func(a, b store.WatchlistEntry) int {
			return b.DateAdded.Compare(a.DateAdded)
		}
	}
}

// releaseTime parses the catalog release date; unparseable dates sort as the
// earliest possible value.
func releaseTime(entry store.WatchlistEntry) time.Time {
	parsed, err := time.Parse(releaseDateLayout, strings.TrimSpace(entry.ReleaseDate))
	if err != nil {
		return time.Time{}
	}
	return parsed
}
