package server

import (
	"net/http"

	"github.com/MarcoPoloResearchLab/filmfolio/internal/insights"
	"github.com/MarcoPoloResearchLab/filmfolio/internal/store"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type watchlistResponse struct {
	Entries []store.WatchlistEntry `json:"entries"`
	Status  insights.StatusFilter  `json:"status"`
	Sort    insights.SortKey       `json:"sort"`
	Total   int                    `json:"total"`
}

type watchlistEntryResponse struct {
	InWatchlist bool                  `json:"in_watchlist"`
	Entry       *store.WatchlistEntry `json:"entry,omitempty"`
}

type watchlistUpdatePayload struct {
	Status              *string `json:"status"`
	PersonalRating      *int    `json:"personal_rating"`
	ClearPersonalRating bool    `json:"clear_personal_rating"`
	Notes               *string `json:"notes"`
}

func (p watchlistUpdatePayload) toUpdate() (store.WatchlistUpdate, string) {
	var update store.WatchlistUpdate
	if p.Status != nil {
		status, err := store.NewStatus(*p.Status)
		if err != nil {
			return store.WatchlistUpdate{}, "invalid_status"
		}
		update.Status = &status
	}
	if p.PersonalRating != nil {
		rating, err := store.NewRating(*p.PersonalRating)
		if err != nil {
			return store.WatchlistUpdate{}, "invalid_personal_rating"
		}
		update.PersonalRating = &rating
	}
	if p.ClearPersonalRating && p.PersonalRating != nil {
		return store.WatchlistUpdate{}, "conflicting_personal_rating"
	}
	update.ClearPersonalRating = p.ClearPersonalRating
	update.Notes = p.Notes
	if update.IsEmpty() {
		return store.WatchlistUpdate{}, "empty_update"
	}
	return update, ""
}

func (h *httpHandler) handleListWatchlist(c *gin.Context) {
	filter, err := insights.ParseStatusFilter(c.Query("status"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_status"})
		return
	}
	sortKey := insights.ParseSortKey(c.Query("sort"))

	entries, err := h.store.ReadWatchlist(c.Request.Context())
	if err != nil {
		h.respondStoreError(c, "failed to read watchlist", err)
		return
	}
	view := insights.FilterAndSort(entries, filter, sortKey)
	c.JSON(http.StatusOK, watchlistResponse{
		Entries: view,
		Status:  filter,
		Sort:    sortKey,
		Total:   len(entries),
	})
}

func (h *httpHandler) handleAddToWatchlist(c *gin.Context) {
	movie, ok := h.resolveMovie(c)
	if !ok {
		return
	}
	entry, added, err := h.store.AddToWatchlist(c.Request.Context(), movie)
	if err != nil {
		h.respondStoreError(c, "failed to add movie to watchlist", err)
		return
	}
	if !added {
		c.JSON(http.StatusOK, entry)
		return
	}
	h.logger.Info("movie added to watchlist", zap.Int("movie_id", movie.ID))
	c.JSON(http.StatusCreated, entry)
}

func (h *httpHandler) handleGetWatchlistEntry(c *gin.Context) {
	movieID, ok := h.movieIDParam(c, "id")
	if !ok {
		return
	}
	entry, found, err := h.store.WatchlistEntry(c.Request.Context(), movieID)
	if err != nil {
		h.respondStoreError(c, "failed to read watchlist entry", err)
		return
	}
	response := watchlistEntryResponse{InWatchlist: found}
	if found {
		response.Entry = &entry
	}
	c.JSON(http.StatusOK, response)
}

func (h *httpHandler) handleUpdateWatchlistEntry(c *gin.Context) {
	movieID, ok := h.movieIDParam(c, "id")
	if !ok {
		return
	}
	var request watchlistUpdatePayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	update, reason := request.toUpdate()
	if reason != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": reason})
		return
	}

	entry, found, err := h.store.UpdateWatchlistItem(c.Request.Context(), movieID, update)
	if err != nil {
		h.respondStoreError(c, "failed to update watchlist entry", err)
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_in_watchlist"})
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (h *httpHandler) handleRemoveFromWatchlist(c *gin.Context) {
	movieID, ok := h.movieIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.store.RemoveFromWatchlist(c.Request.Context(), movieID); err != nil {
		h.respondStoreError(c, "failed to remove movie from watchlist", err)
		return
	}
	c.Status(http.StatusNoContent)
}
