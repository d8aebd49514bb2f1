package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"messenger-service/internal/models"
	"messenger-service/internal/repositories"
	"messenger-service/internal/services"
)

// InvitationHandler manages invitation endpoints.
type InvitationHandler struct {
	invitations *services.InvitationService
	userRepo    repositories.UserRepository
}

// NewInvitationHandler builds an InvitationHandler.
func NewInvitationHandler(invitations *services.InvitationService, userRepo repositories.UserRepository) *InvitationHandler {
	return &InvitationHandler{invitations: invitations, userRepo: userRepo}
}

type invitationResponse struct {
	UUID           string                    `json:"uuid"`
	InvitationType models.InvitationType     `json:"invitation_type"`
	Lifetime       models.InvitationLifetime `json:"lifetime"`
	MaxUses        *int32                    `json:"max_uses"`
	CreatedAt      string                    `json:"created_at"`
}

func renderInvitation(inv models.Invitation) invitationResponse {
	resp := invitationResponse{
		UUID:           inv.UUID,
		InvitationType: inv.InvitationType,
		Lifetime:       inv.Lifetime,
		CreatedAt:      inv.CreatedAt.Format(time.RFC3339),
	}
	if inv.MaxUses.Valid {
		uses := inv.MaxUses.Int32
		resp.MaxUses = &uses
	}
	return resp
}

// Create issues an invitation to the caller or to one of the caller's groups.
func (h *InvitationHandler) Create(c *gin.Context) {
	actor, ok := currentUser(c, h.userRepo)
	if !ok {
		return
	}

	var req struct {
		InvitationType models.InvitationType     `json:"invitation_type" binding:"required,oneof=user group"`
		GroupUUID      string                    `json:"group_uuid"`
		Lifetime       models.InvitationLifetime `json:"lifetime" binding:"required"`
		MaxUses        *int32                    `json:"max_uses" binding:"omitempty,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.InvitationType == models.InvitationTypeGroup && req.GroupUUID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "group_uuid is required for group invitations"})
		return
	}
	if !req.Lifetime.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown lifetime"})
		return
	}

	invitation, err := h.invitations.Create(c.Request.Context(), actor, services.CreateInvitationInput{
		InvitationType: req.InvitationType,
		GroupUUID:      req.GroupUUID,
		Lifetime:       req.Lifetime,
		MaxUses:        req.MaxUses,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"invitation": renderInvitation(invitation)})
}

// Delete revokes an invitation.
func (h *InvitationHandler) Delete(c *gin.Context) {
	actor, ok := currentUser(c, h.userRepo)
	if !ok {
		return
	}

	if err := h.invitations.Delete(c.Request.Context(), actor, c.Param("invitation_uuid")); err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// ListForGroup lists the live invitations of a group the caller belongs to.
func (h *InvitationHandler) ListForGroup(c *gin.Context) {
	actor, ok := currentUser(c, h.userRepo)
	if !ok {
		return
	}

	invitations, err := h.invitations.ListForGroup(c.Request.Context(), actor, c.Param("chat_uuid"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	responses := make([]invitationResponse, 0, len(invitations))
	for _, inv := range invitations {
		responses = append(responses, renderInvitation(inv))
	}
	c.JSON(http.StatusOK, gin.H{"invitations": responses})
}

// Use consumes an invitation, joining the caller to its chat or group.
func (h *InvitationHandler) Use(c *gin.Context) {
	actor, ok := currentUser(c, h.userRepo)
	if !ok {
		return
	}

	if err := h.invitations.Use(c.Request.Context(), actor, c.Param("invitation_uuid")); err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "joined"})
}
