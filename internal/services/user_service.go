package services

import (
	"context"
	"fmt"
	"log"

	"golang.org/x/crypto/bcrypt"

	"messenger-service/internal/apperrors"
	"messenger-service/internal/auth"
	"messenger-service/internal/models"
	"messenger-service/internal/repositories"
	"messenger-service/internal/search"
)

// RegisterInput carries validated registration parameters.
type RegisterInput struct {
	Username    string
	Email       string
	Password    string
	FirstName   string
	LastName    string
	Description string
}

// UserService handles registration, login and settings.
type UserService struct {
	users   repositories.UserRepository
	tokens  *auth.TokenManager
	index   search.Index
	effects *Dispatcher
}

// NewUserService constructs a UserService.
func NewUserService(users repositories.UserRepository, tokens *auth.TokenManager, index search.Index, effects *Dispatcher) *UserService {
	return &UserService{users: users, tokens: tokens, index: index, effects: effects}
}

// Register creates the user and their four system folders atomically, then
// projects the user into the search index.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.CreateWithSystemFolders(ctx, models.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: string(hash),
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Description:  input.Description,
	})
	if err != nil {
		return models.User{}, err
	}
	log.Printf("user %s registered", user.Username)

	s.effects.Run(ctx, SideEffects{SearchOps: []SearchOp{s.upsertUserOp(user)}})
	return user, nil
}

// Login verifies credentials and issues a bearer token.
func (s *UserService) Login(ctx context.Context, identifier, password string) (string, models.User, error) {
	user, err := s.users.GetByIdentifier(ctx, identifier)
	if err != nil {
		return "", models.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", models.User{}, fmt.Errorf("bad credentials: %w", apperrors.ErrForbidden)
	}

	token, err := s.tokens.Issue(user.UUID)
	if err != nil {
		return "", models.User{}, fmt.Errorf("issue token: %w", err)
	}
	return token, user, nil
}

// UpdateSettings mutates the visibility flags and re-projects the user
// document.
func (s *UserService) UpdateSettings(ctx context.Context, actor models.User, isVisible, isOpenForMessages bool) (models.User, error) {
	if err := s.users.UpdateFlags(ctx, actor.ID, isVisible, isOpenForMessages); err != nil {
		return models.User{}, err
	}
	actor.IsVisible = isVisible
	actor.IsOpenForMessages = isOpenForMessages

	s.effects.Run(ctx, SideEffects{SearchOps: []SearchOp{s.upsertUserOp(actor)}})
	return actor, nil
}

func (s *UserService) upsertUserOp(user models.User) SearchOp {
	doc := search.UserDocument{
		Username:    user.Username,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		Description: user.Description,
		Avatar:      user.Avatar,
		IsVisible:   user.IsVisible,
	}
	return SearchOp{
		Name: "upsert_user",
		Do:   func(ctx context.Context) error { return s.index.UpsertUser(ctx, user.UUID, doc) },
	}
}
