package services

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"messenger-service/internal/apperrors"
	"messenger-service/internal/models"
	"messenger-service/internal/repositories"
)

// CreateJoinRequestInput carries validated join-request parameters.
type CreateJoinRequestInput struct {
	RequestType models.JoinRequestType
	TargetUUID  string
}

// JoinRequestService mediates join requests. Approval resolves into the
// lifecycle manager's own operations; the invariants live there, not here.
type JoinRequestService struct {
	requests  repositories.JoinRequestRepository
	users     repositories.UserRepository
	chats     repositories.ChatRepository
	lifecycle *ChatService
}

// NewJoinRequestService constructs a JoinRequestService.
func NewJoinRequestService(
	requests repositories.JoinRequestRepository,
	users repositories.UserRepository,
	chats repositories.ChatRepository,
	lifecycle *ChatService,
) *JoinRequestService {
	return &JoinRequestService{requests: requests, users: users, chats: chats, lifecycle: lifecycle}
}

// Create registers a pending request. Open-for-messages targets need no
// request; an existing normal chat or membership makes the request
// pointless.
func (s *JoinRequestService) Create(ctx context.Context, actor models.User, input CreateJoinRequestInput) (models.JoinRequest, error) {
	request := models.JoinRequest{RequestType: input.RequestType, SenderID: actor.ID}

	switch input.RequestType {
	case models.JoinRequestTypeUser:
		target, err := s.users.GetByUUID(ctx, input.TargetUUID)
		if err != nil {
			return models.JoinRequest{}, err
		}
		if target.ID == actor.ID {
			return models.JoinRequest{}, fmt.Errorf("cannot request yourself: %w", apperrors.ErrConflict)
		}
		if target.IsOpenForMessages {
			return models.JoinRequest{}, fmt.Errorf("user is open for messages: %w", apperrors.ErrForbidden)
		}

		common, err := s.chats.CommonChats(ctx, actor.ID, target.ID)
		if err != nil {
			return models.JoinRequest{}, err
		}
		for _, chat := range common {
			if chat.ChatType == models.ChatTypeNormal {
				return models.JoinRequest{}, fmt.Errorf("normal chat already exists: %w", apperrors.ErrConflict)
			}
		}

		request.ReceiverUserID = sql.NullInt64{Int64: target.ID, Valid: true}

	case models.JoinRequestTypeGroup:
		group, err := s.chats.GetByUUID(ctx, input.TargetUUID)
		if err != nil {
			return models.JoinRequest{}, err
		}
		if group.ChatType != models.ChatTypeGroup {
			return models.JoinRequest{}, fmt.Errorf("target is not a group: %w", apperrors.ErrForbidden)
		}
		if group.IsOpenForMessages {
			return models.JoinRequest{}, fmt.Errorf("group is open for messages: %w", apperrors.ErrForbidden)
		}

		member, err := s.chats.IsMember(ctx, group.ID, actor.ID)
		if err != nil {
			return models.JoinRequest{}, err
		}
		if member {
			return models.JoinRequest{}, fmt.Errorf("already in the group: %w", apperrors.ErrConflict)
		}

		request.GroupID = sql.NullInt64{Int64: group.ID, Valid: true}

	default:
		return models.JoinRequest{}, fmt.Errorf("unknown request type: %w", apperrors.ErrNotFound)
	}

	created, err := s.requests.Create(ctx, request)
	if err != nil {
		return models.JoinRequest{}, err
	}
	log.Printf("join request %s created by %s", created.UUID, actor.Username)
	return created, nil
}

// Approve verifies the actor's authority, resolves the request through the
// lifecycle manager and deletes the row.
func (s *JoinRequestService) Approve(ctx context.Context, actor models.User, requestUUID string) error {
	request, err := s.requests.GetByUUID(ctx, requestUUID)
	if err != nil {
		return err
	}

	sender, err := s.users.GetByID(ctx, request.SenderID)
	if err != nil {
		return err
	}

	switch request.RequestType {
	case models.JoinRequestTypeUser:
		if !request.ReceiverUserID.Valid || request.ReceiverUserID.Int64 != actor.ID {
			return fmt.Errorf("only the receiver can approve: %w", apperrors.ErrForbidden)
		}
		if _, err := s.lifecycle.CreateNormalChatWith(ctx, actor, sender); err != nil {
			return err
		}

	case models.JoinRequestTypeGroup:
		group, err := s.chats.GetByID(ctx, request.GroupID.Int64)
		if err != nil {
			return err
		}
		member, err := s.chats.IsMember(ctx, group.ID, actor.ID)
		if err != nil {
			return err
		}
		if !member {
			return fmt.Errorf("only group members can approve: %w", apperrors.ErrForbidden)
		}
		if err := s.lifecycle.JoinGroup(ctx, group, sender); err != nil {
			return err
		}
	}

	return s.requests.Delete(ctx, request.ID)
}

// Reject verifies the same authority as Approve and deletes the row without
// touching the lifecycle manager.
func (s *JoinRequestService) Reject(ctx context.Context, actor models.User, requestUUID string) error {
	request, err := s.requests.GetByUUID(ctx, requestUUID)
	if err != nil {
		return err
	}

	switch request.RequestType {
	case models.JoinRequestTypeUser:
		if !request.ReceiverUserID.Valid || request.ReceiverUserID.Int64 != actor.ID {
			return fmt.Errorf("only the receiver can reject: %w", apperrors.ErrForbidden)
		}
	case models.JoinRequestTypeGroup:
		member, err := s.chats.IsMember(ctx, request.GroupID.Int64, actor.ID)
		if err != nil {
			return err
		}
		if !member {
			return fmt.Errorf("only group members can reject: %w", apperrors.ErrForbidden)
		}
	}

	return s.requests.Delete(ctx, request.ID)
}

// Incoming returns requests addressed to the actor.
func (s *JoinRequestService) Incoming(ctx context.Context, actor models.User) ([]models.JoinRequest, error) {
	return s.requests.ListForReceiver(ctx, actor.ID)
}

// Outgoing returns requests the actor has sent.
func (s *JoinRequestService) Outgoing(ctx context.Context, actor models.User) ([]models.JoinRequest, error) {
	return s.requests.ListForSender(ctx, actor.ID)
}

// ForGroup returns a group's pending requests, member-only.
func (s *JoinRequestService) ForGroup(ctx context.Context, actor models.User, groupUUID string) ([]models.JoinRequest, error) {
	group, err := s.chats.GetByUUID(ctx, groupUUID)
	if err != nil {
		return nil, err
	}

	member, err := s.chats.IsMember(ctx, group.ID, actor.ID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, fmt.Errorf("only group members can list join requests: %w", apperrors.ErrForbidden)
	}

	return s.requests.ListForGroup(ctx, group.ID)
}
