package services

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"messenger-service/internal/apperrors"
	"messenger-service/internal/models"
	"messenger-service/internal/observability"
	"messenger-service/internal/repositories"
)

// CreateInvitationInput carries validated invitation parameters. MaxUses nil
// means unlimited uses.
type CreateInvitationInput struct {
	InvitationType models.InvitationType
	GroupUUID      string
	Lifetime       models.InvitationLifetime
	MaxUses        *int32
}

// InvitationService mediates invitations. Using one resolves into the
// lifecycle manager's own operations.
type InvitationService struct {
	invitations repositories.InvitationRepository
	users       repositories.UserRepository
	chats       repositories.ChatRepository
	lifecycle   *ChatService
	now         func() time.Time
}

// NewInvitationService constructs an InvitationService.
func NewInvitationService(
	invitations repositories.InvitationRepository,
	users repositories.UserRepository,
	chats repositories.ChatRepository,
	lifecycle *ChatService,
) *InvitationService {
	return &InvitationService{
		invitations: invitations,
		users:       users,
		chats:       chats,
		lifecycle:   lifecycle,
		now:         time.Now,
	}
}

// Create issues an invitation to the actor (user type) or to a group the
// actor is a member of.
func (s *InvitationService) Create(ctx context.Context, actor models.User, input CreateInvitationInput) (models.Invitation, error) {
	if !input.Lifetime.Valid() {
		return models.Invitation{}, fmt.Errorf("unknown lifetime: %w", apperrors.ErrNotFound)
	}

	invitation := models.Invitation{
		InvitationType: input.InvitationType,
		Lifetime:       input.Lifetime,
	}
	if input.MaxUses != nil {
		invitation.MaxUses = sql.NullInt32{Int32: *input.MaxUses, Valid: true}
	}

	switch input.InvitationType {
	case models.InvitationTypeUser:
		invitation.UserID = sql.NullInt64{Int64: actor.ID, Valid: true}

	case models.InvitationTypeGroup:
		group, err := s.chats.GetByUUID(ctx, input.GroupUUID)
		if err != nil {
			return models.Invitation{}, err
		}
		if group.ChatType != models.ChatTypeGroup {
			return models.Invitation{}, fmt.Errorf("target is not a group: %w", apperrors.ErrForbidden)
		}
		member, err := s.chats.IsMember(ctx, group.ID, actor.ID)
		if err != nil {
			return models.Invitation{}, err
		}
		if !member {
			return models.Invitation{}, fmt.Errorf("only group members can create invitations: %w", apperrors.ErrForbidden)
		}
		invitation.GroupID = sql.NullInt64{Int64: group.ID, Valid: true}

	default:
		return models.Invitation{}, fmt.Errorf("unknown invitation type: %w", apperrors.ErrNotFound)
	}

	created, err := s.invitations.Create(ctx, invitation)
	if err != nil {
		return models.Invitation{}, err
	}
	log.Printf("invitation %s created by %s", created.UUID, actor.Username)
	return created, nil
}

// Delete removes an invitation: its issuer for user invitations, any group
// member for group invitations.
func (s *InvitationService) Delete(ctx context.Context, actor models.User, invitationUUID string) error {
	invitation, err := s.invitations.GetByUUID(ctx, invitationUUID)
	if err != nil {
		return err
	}

	switch invitation.InvitationType {
	case models.InvitationTypeUser:
		if !invitation.UserID.Valid || invitation.UserID.Int64 != actor.ID {
			return fmt.Errorf("not your invitation: %w", apperrors.ErrForbidden)
		}
	case models.InvitationTypeGroup:
		member, err := s.chats.IsMember(ctx, invitation.GroupID.Int64, actor.ID)
		if err != nil {
			return err
		}
		if !member {
			return fmt.Errorf("only group members can delete invitations: %w", apperrors.ErrForbidden)
		}
	}

	return s.invitations.Delete(ctx, invitation.ID)
}

// ListForGroup returns a group's invitations, member-only.
func (s *InvitationService) ListForGroup(ctx context.Context, actor models.User, groupUUID string) ([]models.Invitation, error) {
	group, err := s.chats.GetByUUID(ctx, groupUUID)
	if err != nil {
		return nil, err
	}

	member, err := s.chats.IsMember(ctx, group.ID, actor.ID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, fmt.Errorf("only group members can list invitations: %w", apperrors.ErrForbidden)
	}

	return s.invitations.ListForGroup(ctx, group.ID)
}

// Use consumes the invitation and joins the actor: a normal chat with the
// issuer for user invitations, group membership for group invitations.
// Expired invitations are deleted and rejected inside the consume
// transaction.
func (s *InvitationService) Use(ctx context.Context, actor models.User, invitationUUID string) error {
	invitation, err := s.invitations.Consume(ctx, invitationUUID, s.now())
	if err != nil {
		return err
	}

	switch invitation.InvitationType {
	case models.InvitationTypeUser:
		issuer, err := s.users.GetByID(ctx, invitation.UserID.Int64)
		if err != nil {
			return err
		}
		_, err = s.lifecycle.CreateNormalChatWith(ctx, actor, issuer)
		return err

	case models.InvitationTypeGroup:
		group, err := s.chats.GetByID(ctx, invitation.GroupID.Int64)
		if err != nil {
			return err
		}
		return s.lifecycle.JoinGroup(ctx, group, actor)
	}
	return nil
}

// RunSweeper periodically deletes expired invitations until the context is
// cancelled.
func (s *InvitationService) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			swept, err := s.invitations.DeleteExpired(ctx, s.now())
			if err != nil {
				log.Printf("invitation sweep failed: %v", err)
				continue
			}
			if swept > 0 {
				log.Printf("invitation sweep removed %d expired invitations", swept)
				observability.AddInvitationsSwept(swept)
			}
		}
	}
}
