package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"messenger-service/internal/models"
	"messenger-service/internal/repositories"
	"messenger-service/internal/services"
)

// JoinRequestHandler manages join request endpoints.
type JoinRequestHandler struct {
	requests *services.JoinRequestService
	userRepo repositories.UserRepository
}

// NewJoinRequestHandler builds a JoinRequestHandler.
func NewJoinRequestHandler(requests *services.JoinRequestService, userRepo repositories.UserRepository) *JoinRequestHandler {
	return &JoinRequestHandler{requests: requests, userRepo: userRepo}
}

// Create files a join request towards a user or a group.
func (h *JoinRequestHandler) Create(c *gin.Context) {
	actor, ok := currentUser(c, h.userRepo)
	if !ok {
		return
	}

	var req struct {
		RequestType models.JoinRequestType `json:"request_type" binding:"required,oneof=user group"`
		TargetUUID  string                 `json:"target_uuid" binding:"required,uuid"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	request, err := h.requests.Create(c.Request.Context(), actor, services.CreateJoinRequestInput{
		RequestType: req.RequestType,
		TargetUUID:  req.TargetUUID,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"join_request": request})
}

// Approve accepts a request, creating the chat or group membership.
func (h *JoinRequestHandler) Approve(c *gin.Context) {
	actor, ok := currentUser(c, h.userRepo)
	if !ok {
		return
	}

	if err := h.requests.Approve(c.Request.Context(), actor, c.Param("request_uuid")); err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "approved"})
}

// Reject declines a request without side effects.
func (h *JoinRequestHandler) Reject(c *gin.Context) {
	actor, ok := currentUser(c, h.userRepo)
	if !ok {
		return
	}

	if err := h.requests.Reject(c.Request.Context(), actor, c.Param("request_uuid")); err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "rejected"})
}

// Incoming lists requests addressed to the caller.
func (h *JoinRequestHandler) Incoming(c *gin.Context) {
	actor, ok := currentUser(c, h.userRepo)
	if !ok {
		return
	}

	requests, err := h.requests.Incoming(c.Request.Context(), actor)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"join_requests": requests})
}

// Outgoing lists requests the caller has sent.
func (h *JoinRequestHandler) Outgoing(c *gin.Context) {
	actor, ok := currentUser(c, h.userRepo)
	if !ok {
		return
	}

	requests, err := h.requests.Outgoing(c.Request.Context(), actor)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"join_requests": requests})
}

// ForGroup lists pending requests targeting a group the caller belongs to.
func (h *JoinRequestHandler) ForGroup(c *gin.Context) {
	actor, ok := currentUser(c, h.userRepo)
	if !ok {
		return
	}

	requests, err := h.requests.ForGroup(c.Request.Context(), actor, c.Param("chat_uuid"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"join_requests": requests})
}
