package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"messenger-service/internal/models"
	"messenger-service/internal/search"
)

type UserRepositoryMock struct {
	mock.Mock
}

func (m *UserRepositoryMock) CreateWithSystemFolders(ctx context.Context, user models.User) (models.User, error) {
	args := m.Called(ctx, user)
	var created models.User
	if val := args.Get(0); val != nil {
		created = val.(models.User)
	}
	return created, args.Error(1)
}

func (m *UserRepositoryMock) GetByID(ctx context.Context, userID int64) (models.User, error) {
	args := m.Called(ctx, userID)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) GetByUUID(ctx context.Context, userUUID string) (models.User, error) {
	args := m.Called(ctx, userUUID)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) GetByUsername(ctx context.Context, username string) (models.User, error) {
	args := m.Called(ctx, username)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) GetByIdentifier(ctx context.Context, identifier string) (models.User, error) {
	args := m.Called(ctx, identifier)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) UpdateFlags(ctx context.Context, userID int64, isVisible, isOpenForMessages bool) error {
	args := m.Called(ctx, userID, isVisible, isOpenForMessages)
	return args.Error(0)
}

type ChatRepositoryMock struct {
	mock.Mock
}

func (m *ChatRepositoryMock) CreateNormalChat(ctx context.Context, creatorID, targetID int64) (models.Chat, error) {
	args := m.Called(ctx, creatorID, targetID)
	var chat models.Chat
	if val := args.Get(0); val != nil {
		chat = val.(models.Chat)
	}
	return chat, args.Error(1)
}

func (m *ChatRepositoryMock) CreateGroupChat(ctx context.Context, creatorID int64, name, description string) (models.Chat, error) {
	args := m.Called(ctx, creatorID, name, description)
	var chat models.Chat
	if val := args.Get(0); val != nil {
		chat = val.(models.Chat)
	}
	return chat, args.Error(1)
}

func (m *ChatRepositoryMock) Delete(ctx context.Context, chatID int64) error {
	args := m.Called(ctx, chatID)
	return args.Error(0)
}

func (m *ChatRepositoryMock) AddMember(ctx context.Context, chat models.Chat, userID int64) error {
	args := m.Called(ctx, chat, userID)
	return args.Error(0)
}

func (m *ChatRepositoryMock) RemoveMember(ctx context.Context, chatID, userID int64) error {
	args := m.Called(ctx, chatID, userID)
	return args.Error(0)
}

func (m *ChatRepositoryMock) IsMember(ctx context.Context, chatID, userID int64) (bool, error) {
	args := m.Called(ctx, chatID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *ChatRepositoryMock) GetByUUID(ctx context.Context, chatUUID string) (models.Chat, error) {
	args := m.Called(ctx, chatUUID)
	var chat models.Chat
	if val := args.Get(0); val != nil {
		chat = val.(models.Chat)
	}
	return chat, args.Error(1)
}

func (m *ChatRepositoryMock) GetByID(ctx context.Context, chatID int64) (models.Chat, error) {
	args := m.Called(ctx, chatID)
	var chat models.Chat
	if val := args.Get(0); val != nil {
		chat = val.(models.Chat)
	}
	return chat, args.Error(1)
}

func (m *ChatRepositoryMock) Members(ctx context.Context, chatID int64) ([]models.User, error) {
	args := m.Called(ctx, chatID)
	var users []models.User
	if val := args.Get(0); val != nil {
		users = val.([]models.User)
	}
	return users, args.Error(1)
}

func (m *ChatRepositoryMock) MemberUUIDs(ctx context.Context, chatID int64) ([]string, error) {
	args := m.Called(ctx, chatID)
	var uuids []string
	if val := args.Get(0); val != nil {
		uuids = val.([]string)
	}
	return uuids, args.Error(1)
}

func (m *ChatRepositoryMock) CommonChats(ctx context.Context, userAID, userBID int64) ([]models.Chat, error) {
	args := m.Called(ctx, userAID, userBID)
	var chats []models.Chat
	if val := args.Get(0); val != nil {
		chats = val.([]models.Chat)
	}
	return chats, args.Error(1)
}

func (m *ChatRepositoryMock) ListForUser(ctx context.Context, userID int64) ([]models.MemberChat, error) {
	args := m.Called(ctx, userID)
	var chats []models.MemberChat
	if val := args.Get(0); val != nil {
		chats = val.([]models.MemberChat)
	}
	return chats, args.Error(1)
}

func (m *ChatRepositoryMock) ListInFolder(ctx context.Context, folderID int64) ([]models.MemberChat, error) {
	args := m.Called(ctx, folderID)
	var chats []models.MemberChat
	if val := args.Get(0); val != nil {
		chats = val.([]models.MemberChat)
	}
	return chats, args.Error(1)
}

func (m *ChatRepositoryMock) TogglePin(ctx context.Context, chatID, userID int64) (bool, error) {
	args := m.Called(ctx, chatID, userID)
	return args.Bool(0), args.Error(1)
}

type FolderRepositoryMock struct {
	mock.Mock
}

func (m *FolderRepositoryMock) SystemFolders(ctx context.Context, userID int64) (models.SystemFolders, error) {
	args := m.Called(ctx, userID)
	var folders models.SystemFolders
	if val := args.Get(0); val != nil {
		folders = val.(models.SystemFolders)
	}
	return folders, args.Error(1)
}

func (m *FolderRepositoryMock) GetByUUID(ctx context.Context, folderUUID string) (models.Folder, error) {
	args := m.Called(ctx, folderUUID)
	var folder models.Folder
	if val := args.Get(0); val != nil {
		folder = val.(models.Folder)
	}
	return folder, args.Error(1)
}

func (m *FolderRepositoryMock) ListForUser(ctx context.Context, userID int64) ([]models.Folder, error) {
	args := m.Called(ctx, userID)
	var folders []models.Folder
	if val := args.Get(0); val != nil {
		folders = val.([]models.Folder)
	}
	return folders, args.Error(1)
}

func (m *FolderRepositoryMock) CreateCustom(ctx context.Context, userID int64, name string) (models.Folder, error) {
	args := m.Called(ctx, userID, name)
	var folder models.Folder
	if val := args.Get(0); val != nil {
		folder = val.(models.Folder)
	}
	return folder, args.Error(1)
}

func (m *FolderRepositoryMock) Rename(ctx context.Context, folderID int64, name string) error {
	args := m.Called(ctx, folderID, name)
	return args.Error(0)
}

func (m *FolderRepositoryMock) Delete(ctx context.Context, folder models.Folder) error {
	args := m.Called(ctx, folder)
	return args.Error(0)
}

func (m *FolderRepositoryMock) Move(ctx context.Context, folder models.Folder, newPosition int) error {
	args := m.Called(ctx, folder, newPosition)
	return args.Error(0)
}

func (m *FolderRepositoryMock) AddChat(ctx context.Context, folderID, chatID int64) error {
	args := m.Called(ctx, folderID, chatID)
	return args.Error(0)
}

func (m *FolderRepositoryMock) RemoveChat(ctx context.Context, folderID, chatID int64) error {
	args := m.Called(ctx, folderID, chatID)
	return args.Error(0)
}

func (m *FolderRepositoryMock) ChatUUIDs(ctx context.Context, folderID int64) ([]string, []string, error) {
	args := m.Called(ctx, folderID)
	var all, pinned []string
	if val := args.Get(0); val != nil {
		all = val.([]string)
	}
	if val := args.Get(1); val != nil {
		pinned = val.([]string)
	}
	return all, pinned, args.Error(2)
}

func (m *FolderRepositoryMock) ToggleChatPin(ctx context.Context, folderID, chatID int64) (bool, error) {
	args := m.Called(ctx, folderID, chatID)
	return args.Bool(0), args.Error(1)
}

func (m *FolderRepositoryMock) RefsForChat(ctx context.Context, chatID int64) ([]models.FolderRef, error) {
	args := m.Called(ctx, chatID)
	var refs []models.FolderRef
	if val := args.Get(0); val != nil {
		refs = val.([]models.FolderRef)
	}
	return refs, args.Error(1)
}

type JoinRequestRepositoryMock struct {
	mock.Mock
}

func (m *JoinRequestRepositoryMock) Create(ctx context.Context, request models.JoinRequest) (models.JoinRequest, error) {
	args := m.Called(ctx, request)
	var created models.JoinRequest
	if val := args.Get(0); val != nil {
		created = val.(models.JoinRequest)
	}
	return created, args.Error(1)
}

func (m *JoinRequestRepositoryMock) GetByUUID(ctx context.Context, requestUUID string) (models.JoinRequest, error) {
	args := m.Called(ctx, requestUUID)
	var request models.JoinRequest
	if val := args.Get(0); val != nil {
		request = val.(models.JoinRequest)
	}
	return request, args.Error(1)
}

func (m *JoinRequestRepositoryMock) Delete(ctx context.Context, requestID int64) error {
	args := m.Called(ctx, requestID)
	return args.Error(0)
}

func (m *JoinRequestRepositoryMock) ListForGroup(ctx context.Context, groupID int64) ([]models.JoinRequest, error) {
	args := m.Called(ctx, groupID)
	var requests []models.JoinRequest
	if val := args.Get(0); val != nil {
		requests = val.([]models.JoinRequest)
	}
	return requests, args.Error(1)
}

func (m *JoinRequestRepositoryMock) ListForReceiver(ctx context.Context, userID int64) ([]models.JoinRequest, error) {
	args := m.Called(ctx, userID)
	var requests []models.JoinRequest
	if val := args.Get(0); val != nil {
		requests = val.([]models.JoinRequest)
	}
	return requests, args.Error(1)
}

func (m *JoinRequestRepositoryMock) ListForSender(ctx context.Context, userID int64) ([]models.JoinRequest, error) {
	args := m.Called(ctx, userID)
	var requests []models.JoinRequest
	if val := args.Get(0); val != nil {
		requests = val.([]models.JoinRequest)
	}
	return requests, args.Error(1)
}

type InvitationRepositoryMock struct {
	mock.Mock
}

func (m *InvitationRepositoryMock) Create(ctx context.Context, invitation models.Invitation) (models.Invitation, error) {
	args := m.Called(ctx, invitation)
	var created models.Invitation
	if val := args.Get(0); val != nil {
		created = val.(models.Invitation)
	}
	return created, args.Error(1)
}

func (m *InvitationRepositoryMock) GetByUUID(ctx context.Context, invitationUUID string) (models.Invitation, error) {
	args := m.Called(ctx, invitationUUID)
	var invitation models.Invitation
	if val := args.Get(0); val != nil {
		invitation = val.(models.Invitation)
	}
	return invitation, args.Error(1)
}

func (m *InvitationRepositoryMock) Delete(ctx context.Context, invitationID int64) error {
	args := m.Called(ctx, invitationID)
	return args.Error(0)
}

func (m *InvitationRepositoryMock) ListForGroup(ctx context.Context, groupID int64) ([]models.Invitation, error) {
	args := m.Called(ctx, groupID)
	var invitations []models.Invitation
	if val := args.Get(0); val != nil {
		invitations = val.([]models.Invitation)
	}
	return invitations, args.Error(1)
}

func (m *InvitationRepositoryMock) Consume(ctx context.Context, invitationUUID string, now time.Time) (models.Invitation, error) {
	args := m.Called(ctx, invitationUUID, now)
	var invitation models.Invitation
	if val := args.Get(0); val != nil {
		invitation = val.(models.Invitation)
	}
	return invitation, args.Error(1)
}

func (m *InvitationRepositoryMock) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

type StoreMock struct {
	mock.Mock
}

func (m *StoreMock) Get(ctx context.Context, key string, dest any) (bool, error) {
	args := m.Called(ctx, key, dest)
	return args.Bool(0), args.Error(1)
}

func (m *StoreMock) Set(ctx context.Context, key string, value any) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *StoreMock) Invalidate(ctx context.Context, keys ...string) error {
	args := m.Called(ctx, keys)
	return args.Error(0)
}

func (m *StoreMock) PushSearchHistory(ctx context.Context, userUUID, query string) error {
	args := m.Called(ctx, userUUID, query)
	return args.Error(0)
}

func (m *StoreMock) SearchHistory(ctx context.Context, userUUID string) ([]string, error) {
	args := m.Called(ctx, userUUID)
	var history []string
	if val := args.Get(0); val != nil {
		history = val.([]string)
	}
	return history, args.Error(1)
}

type IndexMock struct {
	mock.Mock
}

func (m *IndexMock) UpsertChat(ctx context.Context, chatUUID string, doc search.ChatDocument) error {
	args := m.Called(ctx, chatUUID, doc)
	return args.Error(0)
}

func (m *IndexMock) UpdateChatMembers(ctx context.Context, chatUUID string, members []string) error {
	args := m.Called(ctx, chatUUID, members)
	return args.Error(0)
}

func (m *IndexMock) DeleteChat(ctx context.Context, chatUUID string) error {
	args := m.Called(ctx, chatUUID)
	return args.Error(0)
}

func (m *IndexMock) UpsertUser(ctx context.Context, userUUID string, doc search.UserDocument) error {
	args := m.Called(ctx, userUUID, doc)
	return args.Error(0)
}

func (m *IndexMock) Search(ctx context.Context, query string, indexes []string, userUUID string) (search.Result, error) {
	args := m.Called(ctx, query, indexes, userUUID)
	var result search.Result
	if val := args.Get(0); val != nil {
		result = val.(search.Result)
	}
	return result, args.Error(1)
}
