package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"messenger-service/internal/apperrors"
	"messenger-service/internal/models"
)

// UserRepository abstracts the identity store.
type UserRepository interface {
	CreateWithSystemFolders(ctx context.Context, user models.User) (models.User, error)
	GetByID(ctx context.Context, userID int64) (models.User, error)
	GetByUUID(ctx context.Context, userUUID string) (models.User, error)
	GetByUsername(ctx context.Context, username string) (models.User, error)
	GetByIdentifier(ctx context.Context, identifier string) (models.User, error)
	UpdateFlags(ctx context.Context, userID int64, isVisible, isOpenForMessages bool) error
}

// UserRepo is a sqlx implementation of UserRepository.
type UserRepo struct {
	db *sqlx.DB
}

// NewUserRepo constructs a UserRepo.
func NewUserRepo(db *sqlx.DB) *UserRepo {
	return &UserRepo{db: db}
}

const userColumns = `id, uuid, username, email, password_hash, first_name, last_name, description, avatar, is_visible, is_open_for_messages, created_at`

// CreateWithSystemFolders inserts the user together with the four system
// folders in one transaction, so a registered user can never be observed
// without them.
func (r *UserRepo) CreateWithSystemFolders(ctx context.Context, user models.User) (models.User, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.User{}, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	var created models.User
	err = tx.QueryRowxContext(ctx,
		`INSERT INTO users (uuid, username, email, password_hash, first_name, last_name, description, avatar)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
         RETURNING `+userColumns,
		uuid.NewString(), user.Username, user.Email, user.PasswordHash,
		user.FirstName, user.LastName, user.Description, user.Avatar,
	).StructScan(&created)
	if err != nil {
		if isUniqueViolation(err) {
			return models.User{}, fmt.Errorf("create user: %w", apperrors.ErrConflict)
		}
		return models.User{}, err
	}

	systemTypes := []models.FolderType{
		models.FolderTypeAll,
		models.FolderTypeChats,
		models.FolderTypeGroups,
		models.FolderTypeNew,
	}
	for position, folderType := range systemTypes {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO folders (uuid, user_id, folder_type, position) VALUES ($1, $2, $3, $4)`,
			uuid.NewString(), created.ID, folderType, position,
		); err != nil {
			return models.User{}, err
		}
	}

	if err = tx.Commit(); err != nil {
		return models.User{}, err
	}
	return created, nil
}

// GetByID fetches a user by primary key.
func (r *UserRepo) GetByID(ctx context.Context, userID int64) (models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE id=$1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, apperrors.ErrNotFound
	}
	return user, err
}

// GetByUUID fetches a user by external identifier.
func (r *UserRepo) GetByUUID(ctx context.Context, userUUID string) (models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE uuid=$1`, userUUID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, apperrors.ErrNotFound
	}
	return user, err
}

// GetByUsername fetches a user by username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE username=$1`, username)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, apperrors.ErrNotFound
	}
	return user, err
}

// GetByIdentifier fetches a user by username or email.
func (r *UserRepo) GetByIdentifier(ctx context.Context, identifier string) (models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE username=$1 OR email=$1`, identifier)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, apperrors.ErrNotFound
	}
	return user, err
}

// UpdateFlags updates the two visibility flags.
func (r *UserRepo) UpdateFlags(ctx context.Context, userID int64, isVisible, isOpenForMessages bool) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE users SET is_visible=$2, is_open_for_messages=$3 WHERE id=$1`,
		userID, isVisible, isOpenForMessages,
	)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
