package services

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"messenger-service/internal/apperrors"
	"messenger-service/internal/mocks"
	"messenger-service/internal/models"
)

type joinRequestFixture struct {
	requests *mocks.JoinRequestRepositoryMock
	users    *mocks.UserRepositoryMock
	chats    *mocks.ChatRepositoryMock
	folders  *mocks.FolderRepositoryMock
	store    *mocks.StoreMock
	index    *mocks.IndexMock
	service  *JoinRequestService
}

func newJoinRequestFixture() *joinRequestFixture {
	f := &joinRequestFixture{
		requests: new(mocks.JoinRequestRepositoryMock),
		users:    new(mocks.UserRepositoryMock),
		chats:    new(mocks.ChatRepositoryMock),
		folders:  new(mocks.FolderRepositoryMock),
		store:    new(mocks.StoreMock),
		index:    new(mocks.IndexMock),
	}
	effects := NewDispatcher(f.store, nil, nil)
	lifecycle := NewChatService(f.chats, f.folders, f.users, f.index, f.store, effects)
	f.service = NewJoinRequestService(f.requests, f.users, f.chats, lifecycle)
	return f
}

func (f *joinRequestFixture) allowSideEffects() {
	f.store.On("Invalidate", mock.Anything, mock.Anything).Return(nil).Maybe()
	f.folders.On("RefsForChat", mock.Anything, mock.Anything).Return([]models.FolderRef(nil), nil).Maybe()
	f.index.On("UpsertChat", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	f.index.On("UpdateChatMembers", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
}

func TestCreateUserRequestToSelf(t *testing.T) {
	f := newJoinRequestFixture()
	actor := models.User{ID: 1, UUID: "u-1"}

	f.users.On("GetByUUID", mock.Anything, "u-1").Return(actor, nil).Once()

	_, err := f.service.Create(context.Background(), actor, CreateJoinRequestInput{
		RequestType: models.JoinRequestTypeUser,
		TargetUUID:  "u-1",
	})

	require.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestCreateUserRequestOpenTarget(t *testing.T) {
	f := newJoinRequestFixture()
	actor := models.User{ID: 1, UUID: "u-1"}
	target := models.User{ID: 2, UUID: "u-2", IsOpenForMessages: true}

	f.users.On("GetByUUID", mock.Anything, "u-2").Return(target, nil).Once()

	_, err := f.service.Create(context.Background(), actor, CreateJoinRequestInput{
		RequestType: models.JoinRequestTypeUser,
		TargetUUID:  "u-2",
	})

	require.ErrorIs(t, err, apperrors.ErrForbidden)
	f.requests.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateUserRequestExistingChat(t *testing.T) {
	f := newJoinRequestFixture()
	actor := models.User{ID: 1, UUID: "u-1"}
	target := models.User{ID: 2, UUID: "u-2"}

	f.users.On("GetByUUID", mock.Anything, "u-2").Return(target, nil).Once()
	f.chats.On("CommonChats", mock.Anything, int64(1), int64(2)).Return([]models.Chat{
		{ID: 10, ChatType: models.ChatTypeGroup},
		{ID: 11, ChatType: models.ChatTypeNormal},
	}, nil).Once()

	_, err := f.service.Create(context.Background(), actor, CreateJoinRequestInput{
		RequestType: models.JoinRequestTypeUser,
		TargetUUID:  "u-2",
	})

	require.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestCreateUserRequestSharedGroupAllowed(t *testing.T) {
	f := newJoinRequestFixture()
	actor := models.User{ID: 1, UUID: "u-1"}
	target := models.User{ID: 2, UUID: "u-2"}

	f.users.On("GetByUUID", mock.Anything, "u-2").Return(target, nil).Once()
	// a shared group does not make a 1:1 request redundant
	f.chats.On("CommonChats", mock.Anything, int64(1), int64(2)).Return([]models.Chat{
		{ID: 10, ChatType: models.ChatTypeGroup},
	}, nil).Once()
	f.requests.On("Create", mock.Anything, mock.MatchedBy(func(r models.JoinRequest) bool {
		return r.RequestType == models.JoinRequestTypeUser &&
			r.SenderID == 1 && r.ReceiverUserID.Valid && r.ReceiverUserID.Int64 == 2
	})).Return(models.JoinRequest{UUID: "jr-1"}, nil).Once()

	created, err := f.service.Create(context.Background(), actor, CreateJoinRequestInput{
		RequestType: models.JoinRequestTypeUser,
		TargetUUID:  "u-2",
	})

	require.NoError(t, err)
	require.Equal(t, "jr-1", created.UUID)
	f.requests.AssertExpectations(t)
}

func TestCreateGroupRequestAlreadyMember(t *testing.T) {
	f := newJoinRequestFixture()
	actor := models.User{ID: 1, UUID: "u-1"}
	group := models.Chat{ID: 10, UUID: "c-10", ChatType: models.ChatTypeGroup}

	f.chats.On("GetByUUID", mock.Anything, "c-10").Return(group, nil).Once()
	f.chats.On("IsMember", mock.Anything, int64(10), int64(1)).Return(true, nil).Once()

	_, err := f.service.Create(context.Background(), actor, CreateJoinRequestInput{
		RequestType: models.JoinRequestTypeGroup,
		TargetUUID:  "c-10",
	})

	require.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestCreateGroupRequestOpenGroup(t *testing.T) {
	f := newJoinRequestFixture()
	actor := models.User{ID: 1, UUID: "u-1"}
	group := models.Chat{ID: 10, UUID: "c-10", ChatType: models.ChatTypeGroup, IsOpenForMessages: true}

	f.chats.On("GetByUUID", mock.Anything, "c-10").Return(group, nil).Once()

	_, err := f.service.Create(context.Background(), actor, CreateJoinRequestInput{
		RequestType: models.JoinRequestTypeGroup,
		TargetUUID:  "c-10",
	})

	require.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestApproveUserRequestWrongReceiver(t *testing.T) {
	f := newJoinRequestFixture()
	actor := models.User{ID: 3, UUID: "u-3"}
	request := models.JoinRequest{
		ID: 1, UUID: "jr-1", RequestType: models.JoinRequestTypeUser,
		SenderID: 1, ReceiverUserID: sql.NullInt64{Int64: 2, Valid: true},
	}

	f.requests.On("GetByUUID", mock.Anything, "jr-1").Return(request, nil).Once()
	f.users.On("GetByID", mock.Anything, int64(1)).Return(models.User{ID: 1, UUID: "u-1"}, nil).Once()

	err := f.service.Approve(context.Background(), actor, "jr-1")

	require.ErrorIs(t, err, apperrors.ErrForbidden)
	f.requests.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestApproveUserRequestCreatesChatAndDeletes(t *testing.T) {
	f := newJoinRequestFixture()
	receiver := models.User{ID: 2, UUID: "u-2", Username: "bob"}
	sender := models.User{ID: 1, UUID: "u-1", Username: "alice"}
	request := models.JoinRequest{
		ID: 1, UUID: "jr-1", RequestType: models.JoinRequestTypeUser,
		SenderID: 1, ReceiverUserID: sql.NullInt64{Int64: 2, Valid: true},
	}

	f.requests.On("GetByUUID", mock.Anything, "jr-1").Return(request, nil).Once()
	f.users.On("GetByID", mock.Anything, int64(1)).Return(sender, nil).Once()
	f.chats.On("CreateNormalChat", mock.Anything, int64(2), int64(1)).
		Return(models.Chat{ID: 10, UUID: "c-10", MemberUUIDs: []string{"u-1", "u-2"}}, nil).Once()
	f.requests.On("Delete", mock.Anything, int64(1)).Return(nil).Once()
	f.allowSideEffects()

	err := f.service.Approve(context.Background(), receiver, "jr-1")

	require.NoError(t, err)
	f.chats.AssertExpectations(t)
	f.requests.AssertExpectations(t)
}

func TestApproveGroupRequestJoinsSender(t *testing.T) {
	f := newJoinRequestFixture()
	member := models.User{ID: 2, UUID: "u-2"}
	sender := models.User{ID: 1, UUID: "u-1", Username: "alice"}
	group := models.Chat{ID: 10, UUID: "c-10", ChatType: models.ChatTypeGroup}
	request := models.JoinRequest{
		ID: 1, UUID: "jr-1", RequestType: models.JoinRequestTypeGroup,
		SenderID: 1, GroupID: sql.NullInt64{Int64: 10, Valid: true},
	}

	f.requests.On("GetByUUID", mock.Anything, "jr-1").Return(request, nil).Once()
	f.users.On("GetByID", mock.Anything, int64(1)).Return(sender, nil).Once()
	f.chats.On("GetByID", mock.Anything, int64(10)).Return(group, nil).Once()
	f.chats.On("IsMember", mock.Anything, int64(10), int64(2)).Return(true, nil).Once()
	f.chats.On("AddMember", mock.Anything, group, int64(1)).Return(nil).Once()
	f.chats.On("MemberUUIDs", mock.Anything, int64(10)).Return([]string{"u-1", "u-2"}, nil).Once()
	f.requests.On("Delete", mock.Anything, int64(1)).Return(nil).Once()
	f.allowSideEffects()

	err := f.service.Approve(context.Background(), member, "jr-1")

	require.NoError(t, err)
	f.chats.AssertExpectations(t)
	f.requests.AssertExpectations(t)
}

func TestRejectDeletesWithoutLifecycle(t *testing.T) {
	f := newJoinRequestFixture()
	receiver := models.User{ID: 2, UUID: "u-2"}
	request := models.JoinRequest{
		ID: 1, UUID: "jr-1", RequestType: models.JoinRequestTypeUser,
		SenderID: 1, ReceiverUserID: sql.NullInt64{Int64: 2, Valid: true},
	}

	f.requests.On("GetByUUID", mock.Anything, "jr-1").Return(request, nil).Once()
	f.requests.On("Delete", mock.Anything, int64(1)).Return(nil).Once()

	err := f.service.Reject(context.Background(), receiver, "jr-1")

	require.NoError(t, err)
	f.chats.AssertNotCalled(t, "CreateNormalChat", mock.Anything, mock.Anything, mock.Anything)
	f.requests.AssertExpectations(t)
}

func TestForGroupMemberOnly(t *testing.T) {
	f := newJoinRequestFixture()
	actor := models.User{ID: 3, UUID: "u-3"}
	group := models.Chat{ID: 10, UUID: "c-10", ChatType: models.ChatTypeGroup}

	f.chats.On("GetByUUID", mock.Anything, "c-10").Return(group, nil).Once()
	f.chats.On("IsMember", mock.Anything, int64(10), int64(3)).Return(false, nil).Once()

	_, err := f.service.ForGroup(context.Background(), actor, "c-10")

	require.ErrorIs(t, err, apperrors.ErrForbidden)
	f.requests.AssertNotCalled(t, "ListForGroup", mock.Anything, mock.Anything)
}
