package server

import (
	"net/http"
	"strings"

	"github.com/MarcoPoloResearchLab/filmfolio/internal/catalog"
	"github.com/gin-gonic/gin"
)

const (
	posterSize   = "w500"
	backdropSize = "original"
)

type movieDetailsResponse struct {
	catalog.Movie
	InWatchlist bool   `json:"in_watchlist"`
	PosterURL   string `json:"poster_url"`
	BackdropURL string `json:"backdrop_url,omitempty"`
	TrailerURL  string `json:"trailer_url,omitempty"`
}

func (h *httpHandler) handleTrending(c *gin.Context) {
	page, err := h.catalog.Trending(c.Request.Context())
	if err != nil {
		h.respondCatalogError(c, "failed to load trending movies", err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *httpHandler) handlePopular(c *gin.Context) {
	page, err := h.catalog.Popular(c.Request.Context())
	if err != nil {
		h.respondCatalogError(c, "failed to load popular movies", err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *httpHandler) handleSearch(c *gin.Context) {
	page, err := h.catalog.Search(c.Request.Context(), c.Query("query"))
	if err != nil {
		h.respondCatalogError(c, "failed to search movies", err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *httpHandler) handleDiscover(c *gin.Context) {
	filters := make(map[string]string)
	for key, values := range c.Request.URL.Query() {
		if len(values) == 0 || strings.TrimSpace(values[0]) == "" {
			continue
		}
		filters[key] = values[0]
	}
	page, err := h.catalog.Discover(c.Request.Context(), filters)
	if err != nil {
		h.respondCatalogError(c, "failed to discover movies", err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *httpHandler) handleGenres(c *gin.Context) {
	genres, err := h.catalog.Genres(c.Request.Context())
	if err != nil {
		h.respondCatalogError(c, "failed to load genres", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"genres": genres})
}

func (h *httpHandler) handleMovieDetails(c *gin.Context) {
	movieID, ok := h.movieIDParam(c, "id")
	if !ok {
		return
	}
	movie, err := h.catalog.MovieDetails(c.Request.Context(), movieID)
	if err != nil {
		h.respondCatalogError(c, "failed to load movie details", err)
		return
	}
	inWatchlist, err := h.store.IsInWatchlist(c.Request.Context(), movieID)
	if err != nil {
		h.respondStoreError(c, "failed to check watchlist membership", err)
		return
	}

	response := movieDetailsResponse{
		Movie:       movie,
		InWatchlist: inWatchlist,
		PosterURL:   h.catalog.ImageURL(movie.PosterPath, posterSize),
	}
	if movie.BackdropPath != "" {
		response.BackdropURL = h.catalog.ImageURL(movie.BackdropPath, backdropSize)
	}
	if trailer, found := movie.Trailer(); found {
		response.TrailerURL = catalog.YouTubeEmbedURL(trailer.Key)
	}
	c.JSON(http.StatusOK, response)
}
