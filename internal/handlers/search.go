package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"messenger-service/internal/repositories"
	"messenger-service/internal/search"
	"messenger-service/internal/services"
)

// SearchHandler manages the search surface.
type SearchHandler struct {
	searches *services.SearchService
	userRepo repositories.UserRepository
}

// NewSearchHandler builds a SearchHandler.
func NewSearchHandler(searches *services.SearchService, userRepo repositories.UserRepository) *SearchHandler {
	return &SearchHandler{searches: searches, userRepo: userRepo}
}

// Search queries users and group chats by name fragments.
func (h *SearchHandler) Search(c *gin.Context) {
	actor, ok := currentUser(c, h.userRepo)
	if !ok {
		return
	}

	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "q is required"})
		return
	}

	indexes := []string{search.UsersIndex, search.ChatsIndex}
	switch c.Query("scope") {
	case "users":
		indexes = []string{search.UsersIndex}
	case "chats":
		indexes = []string{search.ChatsIndex}
	case "", "all":
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "scope must be users, chats or all"})
		return
	}

	result, err := h.searches.Search(c.Request.Context(), actor, query, indexes)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"results": result})
}

// History returns the caller's most recent search queries.
func (h *SearchHandler) History(c *gin.Context) {
	actor, ok := currentUser(c, h.userRepo)
	if !ok {
		return
	}

	history, err := h.searches.History(c.Request.Context(), actor)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"history": history})
}
