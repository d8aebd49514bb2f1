package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"messenger-service/internal/apperrors"
	"messenger-service/internal/middleware"
	"messenger-service/internal/mocks"
	"messenger-service/internal/models"
	"messenger-service/internal/services"
)

type chatHandlerFixture struct {
	chats   *mocks.ChatRepositoryMock
	folders *mocks.FolderRepositoryMock
	users   *mocks.UserRepositoryMock
	store   *mocks.StoreMock
	index   *mocks.IndexMock
	router  *gin.Engine
}

func newChatHandlerFixture() *chatHandlerFixture {
	f := &chatHandlerFixture{
		chats:   new(mocks.ChatRepositoryMock),
		folders: new(mocks.FolderRepositoryMock),
		users:   new(mocks.UserRepositoryMock),
		store:   new(mocks.StoreMock),
		index:   new(mocks.IndexMock),
	}

	effects := services.NewDispatcher(f.store, nil, nil)
	chatService := services.NewChatService(f.chats, f.folders, f.users, f.index, f.store, effects)
	folderService := services.NewFolderService(f.folders, f.chats, f.store, effects)
	handler := NewChatHandler(chatService, folderService, f.users)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.UserUUIDKey, "u-1")
		c.Next()
	})
	r.POST("/chats", handler.CreateChat)
	r.GET("/chats", handler.ListChats)
	r.DELETE("/chats/:chat_uuid", handler.DeleteChat)
	r.POST("/chats/:chat_uuid/quit", handler.QuitGroup)
	r.POST("/chats/:chat_uuid/pin", handler.TogglePin)
	f.router = r
	return f
}

func (f *chatHandlerFixture) expectActor() models.User {
	actor := models.User{ID: 1, UUID: "u-1", Username: "alice"}
	f.users.On("GetByUUID", mock.Anything, "u-1").Return(actor, nil)
	return actor
}

func (f *chatHandlerFixture) allowSideEffects() {
	f.store.On("Invalidate", mock.Anything, mock.Anything).Return(nil).Maybe()
	f.folders.On("RefsForChat", mock.Anything, mock.Anything).Return([]models.FolderRef(nil), nil).Maybe()
	f.index.On("UpsertChat", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	f.index.On("DeleteChat", mock.Anything, mock.Anything).Return(nil).Maybe()
	f.index.On("UpdateChatMembers", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
}

func postJSON(router *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestCreateNormalChatEndpoint(t *testing.T) {
	f := newChatHandlerFixture()
	f.expectActor()
	f.allowSideEffects()

	target := models.User{ID: 2, UUID: "u-2", Username: "bob"}
	f.users.On("GetByUsername", mock.Anything, "bob").Return(target, nil).Once()
	f.chats.On("CreateNormalChat", mock.Anything, int64(1), int64(2)).
		Return(models.Chat{ID: 10, UUID: "c-10", ChatType: models.ChatTypeNormal, MemberUUIDs: []string{"u-1", "u-2"}}, nil).Once()

	rec := postJSON(f.router, "/chats", gin.H{"chat_type": "normal", "target_username": "bob"})

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Contains(t, rec.Body.String(), "c-10")
	f.chats.AssertExpectations(t)
}

func TestCreateNormalChatMissingTarget(t *testing.T) {
	f := newChatHandlerFixture()
	f.expectActor()

	rec := postJSON(f.router, "/chats", gin.H{"chat_type": "normal"})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	f.chats.AssertNotCalled(t, "CreateNormalChat", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateGroupMissingName(t *testing.T) {
	f := newChatHandlerFixture()
	f.expectActor()

	rec := postJSON(f.router, "/chats", gin.H{"chat_type": "group"})

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateChatDuplicateConflict(t *testing.T) {
	f := newChatHandlerFixture()
	f.expectActor()

	target := models.User{ID: 2, UUID: "u-2", Username: "bob"}
	f.users.On("GetByUsername", mock.Anything, "bob").Return(target, nil).Once()
	f.chats.On("CreateNormalChat", mock.Anything, int64(1), int64(2)).
		Return(models.Chat{}, apperrors.ErrConflict).Once()

	rec := postJSON(f.router, "/chats", gin.H{"chat_type": "normal", "target_username": "bob"})

	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestDeleteChatForbidden(t *testing.T) {
	f := newChatHandlerFixture()
	f.expectActor()

	f.chats.On("GetByUUID", mock.Anything, "c-10").
		Return(models.Chat{ID: 10, UUID: "c-10", ChatType: models.ChatTypeGroup}, nil).Once()
	f.chats.On("IsMember", mock.Anything, int64(10), int64(1)).Return(false, nil).Once()

	req := httptest.NewRequest(http.MethodDelete, "/chats/c-10", nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestDeleteUnknownChat(t *testing.T) {
	f := newChatHandlerFixture()
	f.expectActor()

	f.chats.On("GetByUUID", mock.Anything, "c-missing").
		Return(models.Chat{}, apperrors.ErrNotFound).Once()

	req := httptest.NewRequest(http.MethodDelete, "/chats/c-missing", nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListChatsEndpoint(t *testing.T) {
	f := newChatHandlerFixture()
	actor := f.expectActor()

	system := models.SystemFolders{All: models.Folder{ID: 2, UUID: "f-all", UserID: actor.ID, FolderType: models.FolderTypeAll}}
	f.folders.On("SystemFolders", mock.Anything, int64(1)).Return(system, nil).Once()
	f.store.On("Get", mock.Anything, "chats:f-all:u-1", mock.Anything).Return(false, nil).Once()
	f.chats.On("ListInFolder", mock.Anything, int64(2)).Return([]models.MemberChat{{
		Chat: models.Chat{ID: 10, UUID: "c-10", ChatType: models.ChatTypeGroup, Name: "team"},
	}}, nil).Once()
	f.chats.On("Members", mock.Anything, int64(10)).Return([]models.User{actor}, nil).Once()
	f.store.On("Set", mock.Anything, "chats:f-all:u-1", mock.Anything).Return(nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/chats", nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "team")
}

func TestRequestWithoutIdentity(t *testing.T) {
	f := newChatHandlerFixture()

	gin.SetMode(gin.TestMode)
	bare := gin.New()
	handler := NewChatHandler(nil, nil, f.users)
	bare.GET("/chats", handler.ListChats)

	req := httptest.NewRequest(http.MethodGet, "/chats", nil)
	rec := httptest.NewRecorder()
	bare.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
