package insights

import (
	"fmt"
	"slices"
	"time"

	"github.com/MarcoPoloResearchLab/filmfolio/internal/store"
)

const (
	// MinutesPerWatchedMovie is the fixed runtime estimate applied to every
	// watched entry.
	MinutesPerWatchedMovie = 120
	// TopGenreLimit caps the number of genres reported.
	TopGenreLimit = 5
	monthsPerYear = 12
)

// GenreCount reports how many entries carry a genre.
type GenreCount struct {
	ID    int `json:"id"`
	Count int `json:"count"`
}

// Stats is the aggregate summary of a watchlist snapshot.
type Stats struct {
	Total              int                  `json:"total"`
	ByStatus           map[store.Status]int `json:"byStatus"`
	TotalRuntime       int                  `json:"totalRuntime"`
	AverageRating      float64              `json:"averageRating"`
	ThisMonth          int                  `json:"thisMonth"`
	ThisYear           int                  `json:"thisYear"`
	TopGenres          []GenreCount         `json:"topGenres"`
	RatingDistribution map[int]int          `json:"ratingDistribution"`
	MonthlyAverage     float64              `json:"monthlyAverage"`
}

// ComputeStats summarizes the entries. Calendar buckets are evaluated in the
// location of now.
func ComputeStats(entries []store.WatchlistEntry, now time.Time) Stats {
	stats := Stats{
		Total:              len(entries),
		ByStatus:           map[store.Status]int{},
		TopGenres:          []GenreCount{},
		RatingDistribution: map[int]int{},
	}

	currentYear, currentMonth, _ := now.Date()
	location := now.Location()
	ratingSum, ratedCount := 0, 0
	genreCounts := map[int]int{}
	genreOrder := []int{}

	for _, entry := range entries {
		stats.ByStatus[entry.Status]++

		if entry.HasPersonalRating() {
			rating := entry.PersonalRatingValue()
			ratingSum += rating
			ratedCount++
			stats.RatingDistribution[rating]++
		}

		addedYear, addedMonth, _ := entry.DateAdded.In(location).Date()
		if addedYear == currentYear {
			stats.ThisYear++
			if addedMonth == currentMonth {
				stats.ThisMonth++
			}
		}

		for _, genreID := range entry.GenreIDList() {
			if _, seen := genreCounts[genreID]; !seen {
				genreOrder = append(genreOrder, genreID)
			}
			genreCounts[genreID]++
		}
	}

	stats.TotalRuntime = stats.ByStatus[store.StatusWatched] * MinutesPerWatchedMovie
	if ratedCount > 0 {
		stats.AverageRating = float64(ratingSum) / float64(ratedCount)
	}
	stats.MonthlyAverage = float64(stats.ThisYear) / monthsPerYear
	stats.TopGenres = topGenres(genreCounts, genreOrder)
	return stats
}

// topGenres ranks by count descending. genreOrder holds first-encounter order
// and the stable sort keeps it for ties.
func topGenres(counts map[int]int, genreOrder []int) []GenreCount {
	ranked := make([]GenreCount, 0, len(genreOrder))
	for _, genreID := range genreOrder {
		ranked = append(ranked, GenreCount{ID: genreID, Count: counts[genreID]})
	}
	slices.SortStableFunc(ranked, func(a, b GenreCount) int {
		return b.Count - a.Count
	})
	if len(ranked) > TopGenreLimit {
		ranked = ranked[:TopGenreLimit]
	}
	return ranked
}

// CompletionRate is the share of watched entries, 0 for an empty watchlist.
func CompletionRate(stats Stats) float64 {
	return StatusShare(stats, store.StatusWatched)
}

// StatusShare is the share of entries holding status, 0 for an empty watchlist.
func StatusShare(stats Stats, status store.Status) float64 {
	if stats.Total == 0 {
		return 0
	}
	return float64(stats.ByStatus[status]) / float64(stats.Total)
}

// FormatRuntime renders minutes as "Xh Ym".
func FormatRuntime(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}
