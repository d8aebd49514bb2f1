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

// FolderRepository abstracts folder persistence: the per-user system folders
// plus the user-managed custom ones.
type FolderRepository interface {
	SystemFolders(ctx context.Context, userID int64) (models.SystemFolders, error)
	GetByUUID(ctx context.Context, folderUUID string) (models.Folder, error)
	ListForUser(ctx context.Context, userID int64) ([]models.Folder, error)
	CreateCustom(ctx context.Context, userID int64, name string) (models.Folder, error)
	Rename(ctx context.Context, folderID int64, name string) error
	Delete(ctx context.Context, folder models.Folder) error
	Move(ctx context.Context, folder models.Folder, newPosition int) error
	AddChat(ctx context.Context, folderID, chatID int64) error
	RemoveChat(ctx context.Context, folderID, chatID int64) error
	ChatUUIDs(ctx context.Context, folderID int64) ([]string, []string, error)
	ToggleChatPin(ctx context.Context, folderID, chatID int64) (bool, error)
	RefsForChat(ctx context.Context, chatID int64) ([]models.FolderRef, error)
}

// FolderRepo is a sqlx implementation of FolderRepository.
type FolderRepo struct {
	db *sqlx.DB
}

// NewFolderRepo constructs a FolderRepo.
func NewFolderRepo(db *sqlx.DB) *FolderRepo {
	return &FolderRepo{db: db}
}

const folderColumns = `id, uuid, user_id, folder_type, name, position, created_at`

// SystemFolders returns the typed record of the user's four system folders.
// They are created at registration and only ever looked up here.
func (r *FolderRepo) SystemFolders(ctx context.Context, userID int64) (models.SystemFolders, error) {
	var folders []models.Folder
	err := r.db.SelectContext(ctx, &folders,
		`SELECT `+folderColumns+` FROM folders WHERE user_id=$1 AND folder_type <> $2`,
		userID, models.FolderTypeCustom)
	if err != nil {
		return models.SystemFolders{}, err
	}

	var system models.SystemFolders
	seen := 0
	for _, folder := range folders {
		switch folder.FolderType {
		case models.FolderTypeAll:
			system.All = folder
			seen++
		case models.FolderTypeChats:
			system.Chats = folder
			seen++
		case models.FolderTypeGroups:
			system.Groups = folder
			seen++
		case models.FolderTypeNew:
			system.New = folder
			seen++
		}
	}
	if seen != 4 {
		return models.SystemFolders{}, fmt.Errorf("user %d has %d system folders: %w", userID, seen, apperrors.ErrNotFound)
	}
	return system, nil
}

// GetByUUID fetches a folder.
func (r *FolderRepo) GetByUUID(ctx context.Context, folderUUID string) (models.Folder, error) {
	var folder models.Folder
	err := r.db.GetContext(ctx, &folder, `SELECT `+folderColumns+` FROM folders WHERE uuid=$1`, folderUUID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Folder{}, apperrors.ErrNotFound
	}
	return folder, err
}

// ListForUser returns the user's folders ordered by position.
func (r *FolderRepo) ListForUser(ctx context.Context, userID int64) ([]models.Folder, error) {
	var folders []models.Folder
	err := r.db.SelectContext(ctx, &folders,
		`SELECT `+folderColumns+` FROM folders WHERE user_id=$1 ORDER BY position`, userID)
	return folders, err
}

// CreateCustom appends a custom folder at the end of the user's ordering.
func (r *FolderRepo) CreateCustom(ctx context.Context, userID int64, name string) (models.Folder, error) {
	var folder models.Folder
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO folders (uuid, user_id, folder_type, name, position)
         VALUES ($1, $2, $3, $4, (SELECT COUNT(*) FROM folders WHERE user_id = $2))
         RETURNING `+folderColumns,
		uuid.NewString(), userID, models.FolderTypeCustom, name,
	).StructScan(&folder)
	return folder, translateErr(err)
}

// Rename updates a custom folder's display name.
func (r *FolderRepo) Rename(ctx context.Context, folderID int64, name string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE folders SET name=$2 WHERE id=$1`, folderID, name)
	return err
}

// Delete removes the folder and repacks the remaining positions to a dense
// 0..N-1 sequence in the same transaction.
func (r *FolderRepo) Delete(ctx context.Context, folder models.Folder) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM folders WHERE id=$1`, folder.ID); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx,
		`UPDATE folders SET position = position - 1 WHERE user_id=$1 AND position > $2`,
		folder.UserID, folder.Position,
	); err != nil {
		return err
	}

	return tx.Commit()
}

// Move shifts the folder to a new position, sliding the folders in between.
func (r *FolderRepo) Move(ctx context.Context, folder models.Folder, newPosition int) error {
	if newPosition == folder.Position {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if newPosition > folder.Position {
		_, err = tx.ExecContext(ctx,
			`UPDATE folders SET position = position - 1
             WHERE user_id=$1 AND position > $2 AND position <= $3`,
			folder.UserID, folder.Position, newPosition)
	} else {
		_, err = tx.ExecContext(ctx,
			`UPDATE folders SET position = position + 1
             WHERE user_id=$1 AND position >= $3 AND position < $2`,
			folder.UserID, folder.Position, newPosition)
	}
	if err != nil {
		return err
	}

	if _, err = tx.ExecContext(ctx,
		`UPDATE folders SET position=$2 WHERE id=$1`, folder.ID, newPosition,
	); err != nil {
		return err
	}

	return tx.Commit()
}

// AddChat files a chat into the folder. Fails with Conflict on duplicates.
func (r *FolderRepo) AddChat(ctx context.Context, folderID, chatID int64) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO folder_chat_associations (folder_id, chat_id) VALUES ($1, $2)`,
		folderID, chatID)
	return translateErr(err)
}

// RemoveChat removes a chat from the folder.
func (r *FolderRepo) RemoveChat(ctx context.Context, folderID, chatID int64) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM folder_chat_associations WHERE folder_id=$1 AND chat_id=$2`,
		folderID, chatID)
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

// ChatUUIDs returns the folder's chat identifiers and, separately, the pinned
// subset.
func (r *FolderRepo) ChatUUIDs(ctx context.Context, folderID int64) ([]string, []string, error) {
	rows, err := r.db.QueryxContext(ctx,
		`SELECT c.uuid, fca.is_pinned FROM chats c
         JOIN folder_chat_associations fca ON fca.chat_id = c.id
         WHERE fca.folder_id = $1 ORDER BY c.created_at DESC`, folderID)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var all, pinned []string
	for rows.Next() {
		var chatUUID string
		var isPinned bool
		if err := rows.Scan(&chatUUID, &isPinned); err != nil {
			return nil, nil, err
		}
		all = append(all, chatUUID)
		if isPinned {
			pinned = append(pinned, chatUUID)
		}
	}
	return all, pinned, rows.Err()
}

// ToggleChatPin flips the folder association's pin flag.
func (r *FolderRepo) ToggleChatPin(ctx context.Context, folderID, chatID int64) (bool, error) {
	var pinned bool
	err := r.db.GetContext(ctx, &pinned,
		`UPDATE folder_chat_associations SET is_pinned = NOT is_pinned
         WHERE folder_id=$1 AND chat_id=$2 RETURNING is_pinned`,
		folderID, chatID)
	if errors.Is(err, sql.ErrNoRows) {
		return false, apperrors.ErrNotFound
	}
	return pinned, err
}

// RefsForChat returns every (folder, user) pair whose listing references the
// chat. The lifecycle manager turns these into cache keys to invalidate.
func (r *FolderRepo) RefsForChat(ctx context.Context, chatID int64) ([]models.FolderRef, error) {
	var refs []models.FolderRef
	err := r.db.SelectContext(ctx, &refs,
		`SELECT f.uuid AS folder_uuid, u.uuid AS user_uuid
         FROM folder_chat_associations fca
         JOIN folders f ON f.id = fca.folder_id
         JOIN users u ON u.id = f.user_id
         WHERE fca.chat_id = $1`, chatID)
	return refs, err
}
