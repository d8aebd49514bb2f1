package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"messenger-service/internal/apperrors"
	"messenger-service/internal/mocks"
	"messenger-service/internal/models"
)

type invitationFixture struct {
	invitations *mocks.InvitationRepositoryMock
	users       *mocks.UserRepositoryMock
	chats       *mocks.ChatRepositoryMock
	folders     *mocks.FolderRepositoryMock
	store       *mocks.StoreMock
	index       *mocks.IndexMock
	service     *InvitationService
}

func newInvitationFixture() *invitationFixture {
	f := &invitationFixture{
		invitations: new(mocks.InvitationRepositoryMock),
		users:       new(mocks.UserRepositoryMock),
		chats:       new(mocks.ChatRepositoryMock),
		folders:     new(mocks.FolderRepositoryMock),
		store:       new(mocks.StoreMock),
		index:       new(mocks.IndexMock),
	}
	effects := NewDispatcher(f.store, nil, nil)
	lifecycle := NewChatService(f.chats, f.folders, f.users, f.index, f.store, effects)
	f.service = NewInvitationService(f.invitations, f.users, f.chats, lifecycle)
	return f
}

func (f *invitationFixture) allowSideEffects() {
	f.store.On("Invalidate", mock.Anything, mock.Anything).Return(nil).Maybe()
	f.folders.On("RefsForChat", mock.Anything, mock.Anything).Return([]models.FolderRef(nil), nil).Maybe()
	f.index.On("UpsertChat", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	f.index.On("UpdateChatMembers", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
}

func TestCreateInvitationUnknownLifetime(t *testing.T) {
	f := newInvitationFixture()
	actor := models.User{ID: 1, UUID: "u-1"}

	_, err := f.service.Create(context.Background(), actor, CreateInvitationInput{
		InvitationType: models.InvitationTypeUser,
		Lifetime:       models.InvitationLifetime("2w"),
	})

	require.ErrorIs(t, err, apperrors.ErrNotFound)
	f.invitations.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateUserInvitation(t *testing.T) {
	f := newInvitationFixture()
	actor := models.User{ID: 1, UUID: "u-1", Username: "alice"}
	maxUses := int32(3)

	f.invitations.On("Create", mock.Anything, mock.MatchedBy(func(inv models.Invitation) bool {
		return inv.InvitationType == models.InvitationTypeUser &&
			inv.Lifetime == models.LifetimeOneDay &&
			inv.MaxUses.Valid && inv.MaxUses.Int32 == 3 &&
			inv.UserID.Valid && inv.UserID.Int64 == 1
	})).Return(models.Invitation{UUID: "inv-1"}, nil).Once()

	created, err := f.service.Create(context.Background(), actor, CreateInvitationInput{
		InvitationType: models.InvitationTypeUser,
		Lifetime:       models.LifetimeOneDay,
		MaxUses:        &maxUses,
	})

	require.NoError(t, err)
	require.Equal(t, "inv-1", created.UUID)
	f.invitations.AssertExpectations(t)
}

func TestCreateGroupInvitationMemberOnly(t *testing.T) {
	f := newInvitationFixture()
	actor := models.User{ID: 1, UUID: "u-1"}
	group := models.Chat{ID: 10, UUID: "c-10", ChatType: models.ChatTypeGroup}

	f.chats.On("GetByUUID", mock.Anything, "c-10").Return(group, nil).Once()
	f.chats.On("IsMember", mock.Anything, int64(10), int64(1)).Return(false, nil).Once()

	_, err := f.service.Create(context.Background(), actor, CreateInvitationInput{
		InvitationType: models.InvitationTypeGroup,
		GroupUUID:      "c-10",
		Lifetime:       models.LifetimeUnlimited,
	})

	require.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestDeleteInvitationNotIssuer(t *testing.T) {
	f := newInvitationFixture()
	actor := models.User{ID: 2, UUID: "u-2"}
	invitation := models.Invitation{
		ID: 1, UUID: "inv-1", InvitationType: models.InvitationTypeUser,
		UserID: sql.NullInt64{Int64: 1, Valid: true},
	}

	f.invitations.On("GetByUUID", mock.Anything, "inv-1").Return(invitation, nil).Once()

	err := f.service.Delete(context.Background(), actor, "inv-1")

	require.ErrorIs(t, err, apperrors.ErrForbidden)
	f.invitations.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestUseExpiredInvitation(t *testing.T) {
	f := newInvitationFixture()
	actor := models.User{ID: 2, UUID: "u-2"}
	frozen := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	f.service.now = func() time.Time { return frozen }

	f.invitations.On("Consume", mock.Anything, "inv-1", frozen).
		Return(models.Invitation{}, apperrors.ErrExpired).Once()

	err := f.service.Use(context.Background(), actor, "inv-1")

	require.ErrorIs(t, err, apperrors.ErrExpired)
	f.chats.AssertNotCalled(t, "AddMember", mock.Anything, mock.Anything, mock.Anything)
}

func TestUseUserInvitationCreatesChatWithIssuer(t *testing.T) {
	f := newInvitationFixture()
	actor := models.User{ID: 2, UUID: "u-2", Username: "bob"}
	issuer := models.User{ID: 1, UUID: "u-1", Username: "alice"}
	invitation := models.Invitation{
		ID: 1, UUID: "inv-1", InvitationType: models.InvitationTypeUser,
		UserID: sql.NullInt64{Int64: 1, Valid: true},
	}

	f.invitations.On("Consume", mock.Anything, "inv-1", mock.Anything).Return(invitation, nil).Once()
	f.users.On("GetByID", mock.Anything, int64(1)).Return(issuer, nil).Once()
	f.chats.On("CreateNormalChat", mock.Anything, int64(2), int64(1)).
		Return(models.Chat{ID: 10, UUID: "c-10", MemberUUIDs: []string{"u-1", "u-2"}}, nil).Once()
	f.allowSideEffects()

	err := f.service.Use(context.Background(), actor, "inv-1")

	require.NoError(t, err)
	f.chats.AssertExpectations(t)
}

func TestUseGroupInvitationJoins(t *testing.T) {
	f := newInvitationFixture()
	actor := models.User{ID: 2, UUID: "u-2", Username: "bob"}
	group := models.Chat{ID: 10, UUID: "c-10", ChatType: models.ChatTypeGroup}
	invitation := models.Invitation{
		ID: 1, UUID: "inv-1", InvitationType: models.InvitationTypeGroup,
		GroupID: sql.NullInt64{Int64: 10, Valid: true},
	}

	f.invitations.On("Consume", mock.Anything, "inv-1", mock.Anything).Return(invitation, nil).Once()
	f.chats.On("GetByID", mock.Anything, int64(10)).Return(group, nil).Once()
	f.chats.On("AddMember", mock.Anything, group, int64(2)).Return(nil).Once()
	f.chats.On("MemberUUIDs", mock.Anything, int64(10)).Return([]string{"u-1", "u-2"}, nil).Once()
	f.allowSideEffects()

	err := f.service.Use(context.Background(), actor, "inv-1")

	require.NoError(t, err)
	f.chats.AssertExpectations(t)
}

func TestRunSweeperStopsOnCancel(t *testing.T) {
	f := newInvitationFixture()
	f.invitations.On("DeleteExpired", mock.Anything, mock.Anything).Return(int64(0), nil).Maybe()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		f.service.RunSweeper(ctx, time.Millisecond)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop on context cancel")
	}
}
