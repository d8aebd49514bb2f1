package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"messenger-service/internal/repositories"
	"messenger-service/internal/services"
)

// FolderHandler manages folder CRUD and folder membership endpoints.
type FolderHandler struct {
	folders  *services.FolderService
	userRepo repositories.UserRepository
}

// NewFolderHandler builds a FolderHandler.
func NewFolderHandler(folders *services.FolderService, userRepo repositories.UserRepository) *FolderHandler {
	return &FolderHandler{folders: folders, userRepo: userRepo}
}

// ListFolders returns the caller's folders in display order.
func (h *FolderHandler) ListFolders(c *gin.Context) {
	actor, ok := currentUser(c, h.userRepo)
	if !ok {
		return
	}

	views, err := h.folders.ListFolders(c.Request.Context(), actor)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"folders": views})
}

// CreateFolder adds a custom folder at the end of the caller's list.
func (h *FolderHandler) CreateFolder(c *gin.Context) {
	actor, ok := currentUser(c, h.userRepo)
	if !ok {
		return
	}

	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	folder, err := h.folders.CreateFolder(c.Request.Context(), actor, req.Name)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"folder": gin.H{
			"uuid":        folder.UUID,
			"name":        folder.DisplayName(),
			"folder_type": folder.FolderType,
			"position":    folder.Position,
		},
	})
}

// RenameFolder renames a custom folder.
func (h *FolderHandler) RenameFolder(c *gin.Context) {
	actor, ok := currentUser(c, h.userRepo)
	if !ok {
		return
	}

	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.folders.RenameFolder(c.Request.Context(), actor, c.Param("folder_uuid"), req.Name); err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "renamed"})
}

// DeleteFolder removes a custom folder and repacks positions.
func (h *FolderHandler) DeleteFolder(c *gin.Context) {
	actor, ok := currentUser(c, h.userRepo)
	if !ok {
		return
	}

	if err := h.folders.DeleteFolder(c.Request.Context(), actor, c.Param("folder_uuid")); err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// MoveFolder moves a custom folder to a new position.
func (h *FolderHandler) MoveFolder(c *gin.Context) {
	actor, ok := currentUser(c, h.userRepo)
	if !ok {
		return
	}

	var req struct {
		Position *int `json:"position" binding:"required,min=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.folders.MoveFolder(c.Request.Context(), actor, c.Param("folder_uuid"), *req.Position); err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "moved"})
}

// AddChat places one of the caller's chats into a custom folder.
func (h *FolderHandler) AddChat(c *gin.Context) {
	actor, ok := currentUser(c, h.userRepo)
	if !ok {
		return
	}

	var req struct {
		ChatUUID string `json:"chat_uuid" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.folders.AddChatToFolder(c.Request.Context(), actor, c.Param("folder_uuid"), req.ChatUUID); err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "added"})
}

// RemoveChat takes a chat out of a custom folder.
func (h *FolderHandler) RemoveChat(c *gin.Context) {
	actor, ok := currentUser(c, h.userRepo)
	if !ok {
		return
	}

	if err := h.folders.RemoveChatFromFolder(c.Request.Context(), actor, c.Param("folder_uuid"), c.Param("chat_uuid")); err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "removed"})
}

// TogglePin flips a chat's pin within one folder.
func (h *FolderHandler) TogglePin(c *gin.Context) {
	actor, ok := currentUser(c, h.userRepo)
	if !ok {
		return
	}

	pinned, err := h.folders.PinChatInFolder(c.Request.Context(), actor, c.Param("folder_uuid"), c.Param("chat_uuid"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"is_pinned": pinned})
}
