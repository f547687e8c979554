package server

import (
	"net/http"

	"github.com/MarcoPoloResearchLab/filmfolio/internal/store"
	"github.com/gin-gonic/gin"
)

type createCollectionPayload struct {
	Name string `json:"name"`
}

func (h *httpHandler) handleListCollections(c *gin.Context) {
	collections, err := h.store.ReadCollections(c.Request.Context())
	if err != nil {
		h.respondStoreError(c, "failed to read collections", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"collections": collections})
}

func (h *httpHandler) handleCreateCollection(c *gin.Context) {
	var request createCollectionPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	name, err := store.NewCollectionName(request.Name)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_collection_name"})
		return
	}
	collection, err := h.store.CreateCollection(c.Request.Context(), name)
	if err != nil {
		h.respondStoreError(c, "failed to create collection", err)
		return
	}
	c.JSON(http.StatusCreated, collection)
}

func (h *httpHandler) handleDeleteCollection(c *gin.Context) {
	if err := h.store.DeleteCollection(c.Request.Context(), c.Param("id")); err != nil {
		h.respondStoreError(c, "failed to delete collection", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *httpHandler) handleAddMovieToCollection(c *gin.Context) {
	collectionID := c.Param("id")
	if _, found, err := h.store.Collection(c.Request.Context(), collectionID); err != nil {
		h.respondStoreError(c, "failed to read collection", err)
		return
	} else if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "collection_not_found"})
		return
	}

	movie, ok := h.resolveMovie(c)
	if !ok {
		return
	}
	collection, found, err := h.store.AddMovieToCollection(c.Request.Context(), collectionID, movie)
	if err != nil {
		h.respondStoreError(c, "failed to add movie to collection", err)
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "collection_not_found"})
		return
	}
	c.JSON(http.StatusOK, collection)
}

func (h *httpHandler) handleRemoveMovieFromCollection(c *gin.Context) {
	movieID, ok := h.movieIDParam(c, "movieId")
	if !ok {
		return
	}
	if err := h.store.RemoveMovieFromCollection(c.Request.Context(), c.Param("id"), movieID); err != nil {
		h.respondStoreError(c, "failed to remove movie from collection", err)
		return
	}
	c.Status(http.StatusNoContent)
}
