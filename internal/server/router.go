package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/MarcoPoloResearchLab/filmfolio/internal/catalog"
	"github.com/MarcoPoloResearchLab/filmfolio/internal/store"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const defaultHeartbeatInterval = 25 * time.Second

var (
	errMissingStore   = errors.New("store dependency required")
	errMissingCatalog = errors.New("catalog dependency required")
)

// Catalog is the part of the movie catalog client the API relies on.
type Catalog interface {
	Trending(ctx context.Context) (catalog.MoviePage, error)
	Popular(ctx context.Context) (catalog.MoviePage, error)
	Search(ctx context.Context, query string) (catalog.MoviePage, error)
	Discover(ctx context.Context, filters map[string]string) (catalog.MoviePage, error)
	MovieDetails(ctx context.Context, movieID int) (catalog.Movie, error)
	Genres(ctx context.Context) ([]catalog.Genre, error)
	ImageURL(path, size string) string
}

type Dependencies struct {
	Store             *store.Store
	Catalog           Catalog
	Logger            *zap.Logger
	Clock             func() time.Time
	HeartbeatInterval time.Duration
}

func NewHTTPHandler(deps Dependencies) (http.Handler, error) {
	if deps.Store == nil {
		return nil, errMissingStore
	}
	if deps.Catalog == nil {
		return nil, errMissingCatalog
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	heartbeat := deps.HeartbeatInterval
	if heartbeat <= 0 {
		heartbeat = defaultHeartbeatInterval
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	handler := &httpHandler{
		store:             deps.Store,
		catalog:           deps.Catalog,
		logger:            logger,
		clock:             clock,
		heartbeatInterval: heartbeat,
	}

	router.GET("/healthz", handler.handleHealth)

	catalogRoutes := router.Group("/catalog")
	catalogRoutes.GET("/trending", handler.handleTrending)
	catalogRoutes.GET("/popular", handler.handlePopular)
	catalogRoutes.GET("/search", handler.handleSearch)
	catalogRoutes.GET("/discover", handler.handleDiscover)
	catalogRoutes.GET("/genres", handler.handleGenres)
	catalogRoutes.GET("/movies/:id", handler.handleMovieDetails)

	watchlist := router.Group("/watchlist")
	watchlist.GET("", handler.handleListWatchlist)
	watchlist.POST("", handler.handleAddToWatchlist)
	watchlist.GET("/:id", handler.handleGetWatchlistEntry)
	watchlist.PATCH("/:id", handler.handleUpdateWatchlistEntry)
	watchlist.DELETE("/:id", handler.handleRemoveFromWatchlist)

	collections := router.Group("/collections")
	collections.GET("", handler.handleListCollections)
	collections.POST("", handler.handleCreateCollection)
	collections.DELETE("/:id", handler.handleDeleteCollection)
	collections.POST("/:id/movies", handler.handleAddMovieToCollection)
	collections.DELETE("/:id/movies/:movieId", handler.handleRemoveMovieFromCollection)

	router.GET("/stats", handler.handleStats)
	router.GET("/events", handler.handleEvents)

	return router, nil
}

func corsMiddleware() gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{"Content-Type", "Cache-Control", "Last-Event-ID"},
		MaxAge:       12 * time.Hour,
	})
}

type httpHandler struct {
	store             *store.Store
	catalog           Catalog
	logger            *zap.Logger
	clock             func() time.Time
	heartbeatInterval time.Duration
}

func (h *httpHandler) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// movieReferencePayload identifies a movie either by catalog id, in which
// case the snapshot is fetched, or by a full snapshot supplied by the caller.
type movieReferencePayload struct {
	MovieID int            `json:"movie_id"`
	Movie   *catalog.Movie `json:"movie"`
}

func (h *httpHandler) resolveMovie(c *gin.Context) (catalog.Movie, bool) {
	var request movieReferencePayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return catalog.Movie{}, false
	}
	if request.Movie != nil && request.Movie.ID > 0 {
		return *request.Movie, true
	}
	if request.MovieID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_movie_id"})
		return catalog.Movie{}, false
	}
	movie, err := h.catalog.MovieDetails(c.Request.Context(), request.MovieID)
	if err != nil {
		h.respondCatalogError(c, "failed to fetch movie snapshot", err)
		return catalog.Movie{}, false
	}
	return movie, true
}

func parseMovieID(raw string) (int, bool) {
	movieID, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || movieID <= 0 {
		return 0, false
	}
	return movieID, true
}

func (h *httpHandler) movieIDParam(c *gin.Context, name string) (int, bool) {
	movieID, ok := parseMovieID(c.Param(name))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_movie_id"})
	}
	return movieID, ok
}

func (h *httpHandler) respondStoreError(c *gin.Context, message string, err error) {
	reason := "storage_failed"
	switch {
	case errors.Is(err, store.ErrWriteFailed):
		reason = "storage_write_failed"
	case errors.Is(err, store.ErrReadFailed):
		reason = "storage_read_failed"
	}
	body := gin.H{"error": reason}
	var serviceErr *store.ServiceError
	if errors.As(err, &serviceErr) {
		body["code"] = serviceErr.Code()
	}
	h.logger.Error(message, zap.String("reason", reason), zap.Error(err))
	c.JSON(http.StatusInternalServerError, body)
}

func (h *httpHandler) respondCatalogError(c *gin.Context, message string, err error) {
	if errors.Is(err, catalog.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "movie_not_found"})
		return
	}
	h.logger.Warn(message, zap.Error(err))
	c.JSON(http.StatusBadGateway, gin.H{"error": "catalog_unavailable"})
}
