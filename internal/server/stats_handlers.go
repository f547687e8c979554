package server

import (
	"net/http"

	"github.com/MarcoPoloResearchLab/filmfolio/internal/insights"
	"github.com/MarcoPoloResearchLab/filmfolio/internal/store"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type statsResponse struct {
	insights.Stats
	CompletionRate   float64                  `json:"completionRate"`
	FormattedRuntime string                   `json:"formattedRuntime"`
	StatusShares     map[store.Status]float64 `json:"statusShares"`
	GenreNames       map[int]string           `json:"genreNames,omitempty"`
}

// newStatsResponse decorates computed stats with the derived display figures.
func newStatsResponse(stats insights.Stats) statsResponse {
	shares := make(map[store.Status]float64, len(stats.ByStatus))
	for status := range stats.ByStatus {
		shares[status] = insights.StatusShare(stats, status)
	}
	return statsResponse{
		Stats:            stats,
		CompletionRate:   insights.CompletionRate(stats),
		FormattedRuntime: insights.FormatRuntime(stats.TotalRuntime),
		StatusShares:     shares,
	}
}

func (h *httpHandler) handleStats(c *gin.Context) {
	entries, err := h.store.ReadWatchlist(c.Request.Context())
	if err != nil {
		h.respondStoreError(c, "failed to read watchlist", err)
		return
	}
	response := newStatsResponse(insights.ComputeStats(entries, h.clock()))

	if len(response.TopGenres) > 0 {
		genres, err := h.catalog.Genres(c.Request.Context())
		if err != nil {
			h.logger.Warn("genre names unavailable", zap.Error(err))
		} else {
			names := make(map[int]string, len(genres))
			for _, genre := range genres {
				names[genre.ID] = genre.Name
			}
			response.GenreNames = make(map[int]string, len(response.TopGenres))
			for _, genre := range response.TopGenres {
				if name, ok := names[genre.ID]; ok {
					response.GenreNames[genre.ID] = name
				}
			}
		}
	}
	c.JSON(http.StatusOK, response)
}
