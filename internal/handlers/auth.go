package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"messenger-service/internal/repositories"
	"messenger-service/internal/services"
)

// AuthHandler manages registration, login and account settings.
type AuthHandler struct {
	users    *services.UserService
	userRepo repositories.UserRepository
}

// NewAuthHandler builds an AuthHandler.
func NewAuthHandler(users *services.UserService, userRepo repositories.UserRepository) *AuthHandler {
	return &AuthHandler{users: users, userRepo: userRepo}
}

// Register creates an account together with its system folders.
func (h *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Username  string `json:"username" binding:"required"`
		Email     string `json:"email" binding:"required,email"`
		Password  string `json:"password" binding:"required,min=8"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.Register(c.Request.Context(), services.RegisterInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": user})
}

// Login exchanges credentials for a bearer token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Identifier string `json:"identifier" binding:"required"`
		Password   string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, user, err := h.users.Login(c.Request.Context(), req.Identifier, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

// Me returns the authenticated user's profile.
func (h *AuthHandler) Me(c *gin.Context) {
	actor, ok := currentUser(c, h.userRepo)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": actor})
}

// UpdateSettings toggles the profile's visibility flags.
func (h *AuthHandler) UpdateSettings(c *gin.Context) {
	actor, ok := currentUser(c, h.userRepo)
	if !ok {
		return
	}

	var req struct {
		IsVisible         *bool `json:"is_visible" binding:"required"`
		IsOpenForMessages *bool `json:"is_open_for_messages" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.UpdateSettings(c.Request.Context(), actor, *req.IsVisible, *req.IsOpenForMessages)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}
