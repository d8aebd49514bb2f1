package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"messenger-service/internal/models"
	"messenger-service/internal/repositories"
	"messenger-service/internal/services"
)

// ChatHandler manages chat lifecycle and membership endpoints.
type ChatHandler struct {
	chats    *services.ChatService
	folders  *services.FolderService
	userRepo repositories.UserRepository
}

// NewChatHandler builds a ChatHandler.
func NewChatHandler(chats *services.ChatService, folders *services.FolderService, userRepo repositories.UserRepository) *ChatHandler {
	return &ChatHandler{chats: chats, folders: folders, userRepo: userRepo}
}

// CreateChat creates a normal chat with a user or a fresh group.
func (h *ChatHandler) CreateChat(c *gin.Context) {
	actor, ok := currentUser(c, h.userRepo)
	if !ok {
		return
	}

	var req struct {
		ChatType       models.ChatType `json:"chat_type" binding:"required,oneof=normal group"`
		TargetUsername string          `json:"target_username"`
		Name           string          `json:"name"`
		Description    string          `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.ChatType == models.ChatTypeNormal && req.TargetUsername == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "target_username is required for normal chats"})
		return
	}
	if req.ChatType == models.ChatTypeGroup && req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required for groups"})
		return
	}

	chat, err := h.chats.CreateChat(c.Request.Context(), actor, services.CreateChatInput{
		ChatType:       req.ChatType,
		TargetUsername: req.TargetUsername,
		Name:           req.Name,
		Description:    req.Description,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"chat": chat})
}

// DeleteChat removes a chat for every member.
func (h *ChatHandler) DeleteChat(c *gin.Context) {
	actor, ok := currentUser(c, h.userRepo)
	if !ok {
		return
	}

	if err := h.chats.DeleteChat(c.Request.Context(), actor, c.Param("chat_uuid")); err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// QuitGroup removes the caller from a group, leaving the group in place.
func (h *ChatHandler) QuitGroup(c *gin.Context) {
	actor, ok := currentUser(c, h.userRepo)
	if !ok {
		return
	}

	if err := h.chats.QuitGroup(c.Request.Context(), actor, c.Param("chat_uuid")); err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "left"})
}

// AddMember adds a user to a group by username.
func (h *ChatHandler) AddMember(c *gin.Context) {
	actor, ok := currentUser(c, h.userRepo)
	if !ok {
		return
	}

	var req struct {
		Username string `json:"username" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	target, err := h.chats.AddMember(c.Request.Context(), actor, c.Param("chat_uuid"), req.Username)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": target})
}

// TogglePin flips the pin flag on the caller's membership of the chat.
func (h *ChatHandler) TogglePin(c *gin.Context) {
	actor, ok := currentUser(c, h.userRepo)
	if !ok {
		return
	}

	pinned, err := h.chats.PinChat(c.Request.Context(), actor, c.Param("chat_uuid"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"is_pinned": pinned})
}

// ListChats returns every chat of the caller, pinned first.
func (h *ChatHandler) ListChats(c *gin.Context) {
	actor, ok := currentUser(c, h.userRepo)
	if !ok {
		return
	}

	views, err := h.chats.ListChats(c.Request.Context(), actor)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"chats": views})
}

// ListChatsInFolder returns the chats of one of the caller's folders.
func (h *ChatHandler) ListChatsInFolder(c *gin.Context) {
	actor, ok := currentUser(c, h.userRepo)
	if !ok {
		return
	}

	folder, err := h.folders.GetOwned(c.Request.Context(), actor, c.Param("folder_uuid"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	views, err := h.chats.ChatsInFolder(c.Request.Context(), actor, folder)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"chats": views})
}
