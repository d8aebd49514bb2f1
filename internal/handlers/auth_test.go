package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"messenger-service/internal/apperrors"
	"messenger-service/internal/auth"
	"messenger-service/internal/mocks"
	"messenger-service/internal/models"
	"messenger-service/internal/services"
)

func newAuthRouter(users *mocks.UserRepositoryMock, index *mocks.IndexMock) *gin.Engine {
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	effects := services.NewDispatcher(nil, nil, nil)
	userService := services.NewUserService(users, tokens, index, effects)
	handler := NewAuthHandler(userService, users)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/auth/register", handler.Register)
	r.POST("/auth/login", handler.Login)
	return r
}

func TestRegisterEndpoint(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	index := new(mocks.IndexMock)
	router := newAuthRouter(users, index)

	users.On("CreateWithSystemFolders", mock.Anything, mock.Anything).
		Return(models.User{ID: 1, UUID: "u-1", Username: "alice"}, nil).Once()
	index.On("UpsertUser", mock.Anything, "u-1", mock.Anything).Return(nil).Once()

	rec := postJSON(router, "/auth/register", gin.H{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "secret123",
	})

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Contains(t, rec.Body.String(), "u-1")
	require.NotContains(t, rec.Body.String(), "password")
	users.AssertExpectations(t)
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	router := newAuthRouter(users, new(mocks.IndexMock))

	rec := postJSON(router, "/auth/register", gin.H{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "short",
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	users.AssertNotCalled(t, "CreateWithSystemFolders", mock.Anything, mock.Anything)
}

func TestRegisterRejectsBadEmail(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	router := newAuthRouter(users, new(mocks.IndexMock))

	rec := postJSON(router, "/auth/register", gin.H{
		"username": "alice",
		"email":    "not-an-email",
		"password": "secret123",
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegisterDuplicateUsernameConflict(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	router := newAuthRouter(users, new(mocks.IndexMock))

	users.On("CreateWithSystemFolders", mock.Anything, mock.Anything).
		Return(models.User{}, apperrors.ErrConflict).Once()

	rec := postJSON(router, "/auth/register", gin.H{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "secret123",
	})

	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestLoginEndpoint(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	router := newAuthRouter(users, new(mocks.IndexMock))

	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)
	users.On("GetByIdentifier", mock.Anything, "alice").
		Return(models.User{ID: 1, UUID: "u-1", Username: "alice", PasswordHash: string(hash)}, nil).Once()

	rec := postJSON(router, "/auth/login", gin.H{"identifier": "alice", "password": "secret123"})

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "token")
}

func TestLoginBadCredentials(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	router := newAuthRouter(users, new(mocks.IndexMock))

	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)
	users.On("GetByIdentifier", mock.Anything, "alice").
		Return(models.User{ID: 1, UUID: "u-1", PasswordHash: string(hash)}, nil).Once()

	rec := postJSON(router, "/auth/login", gin.H{"identifier": "alice", "password": "wrong"})

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
