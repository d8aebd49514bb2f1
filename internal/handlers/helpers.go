package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"messenger-service/internal/apperrors"
	"messenger-service/internal/middleware"
	"messenger-service/internal/models"
	"messenger-service/internal/repositories"
)

// abortWithError maps taxonomy errors to status codes. Anything outside the
// taxonomy is an internal error; the details stay in the logs.
func abortWithError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, apperrors.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case errors.Is(err, apperrors.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "conflict"})
	case errors.Is(err, apperrors.ErrExpired):
		c.JSON(http.StatusGone, gin.H{"error": "expired"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// currentUser resolves the authenticated actor set by the auth middleware.
func currentUser(c *gin.Context, users repositories.UserRepository) (models.User, bool) {
	userUUID := c.GetString(middleware.UserUUIDKey)
	if userUUID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return models.User{}, false
	}

	user, err := users.GetByUUID(c.Request.Context(), userUUID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unknown user"})
		return models.User{}, false
	}
	return user, true
}
