package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"messenger-service/internal/apperrors"
	"messenger-service/internal/models"
)

// ChatRepository is the membership ledger: the relational source of truth for
// chats, memberships and the folder associations kept in sync with them.
// Every mutating method commits its chat, membership and folder rows in one
// transaction; a partial commit is never observable.
type ChatRepository interface {
	CreateNormalChat(ctx context.Context, creatorID, targetID int64) (models.Chat, error)
	CreateGroupChat(ctx context.Context, creatorID int64, name, description string) (models.Chat, error)
	Delete(ctx context.Context, chatID int64) error
	AddMember(ctx context.Context, chat models.Chat, userID int64) error
	RemoveMember(ctx context.Context, chatID, userID int64) error
	IsMember(ctx context.Context, chatID, userID int64) (bool, error)
	GetByUUID(ctx context.Context, chatUUID string) (models.Chat, error)
	GetByID(ctx context.Context, chatID int64) (models.Chat, error)
	Members(ctx context.Context, chatID int64) ([]models.User, error)
	MemberUUIDs(ctx context.Context, chatID int64) ([]string, error)
	CommonChats(ctx context.Context, userAID, userBID int64) ([]models.Chat, error)
	ListForUser(ctx context.Context, userID int64) ([]models.MemberChat, error)
	ListInFolder(ctx context.Context, folderID int64) ([]models.MemberChat, error)
	TogglePin(ctx context.Context, chatID, userID int64) (bool, error)
}

// ChatRepo is a sqlx implementation of ChatRepository.
type ChatRepo struct {
	db *sqlx.DB
}

// NewChatRepo constructs a ChatRepo.
func NewChatRepo(db *sqlx.DB) *ChatRepo {
	return &ChatRepo{db: db}
}

const chatColumns = `id, uuid, chat_type, name, description, avatar, is_visible, is_open_for_messages, created_at`

// CreateNormalChat creates a 1:1 chat between two users: the chat row, both
// memberships and both users' ALL and CHATS folder associations, atomically.
// Fails with Conflict when the two users already share a normal chat.
func (r *ChatRepo) CreateNormalChat(ctx context.Context, creatorID, targetID int64) (models.Chat, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.Chat{}, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	var exists bool
	err = tx.GetContext(ctx, &exists,
		`SELECT EXISTS(
            SELECT 1 FROM chats c
            JOIN user_chat_associations a ON a.chat_id = c.id AND a.user_id = $1
            JOIN user_chat_associations b ON b.chat_id = c.id AND b.user_id = $2
            WHERE c.chat_type = $3
        )`, creatorID, targetID, models.ChatTypeNormal)
	if err != nil {
		return models.Chat{}, err
	}
	if exists {
		err = fmt.Errorf("normal chat already exists: %w", apperrors.ErrConflict)
		return models.Chat{}, err
	}

	var chat models.Chat
	err = tx.QueryRowxContext(ctx,
		`INSERT INTO chats (uuid, chat_type) VALUES ($1, $2) RETURNING `+chatColumns,
		uuid.NewString(), models.ChatTypeNormal,
	).StructScan(&chat)
	if err != nil {
		return models.Chat{}, err
	}

	memberIDs := []int64{creatorID, targetID}
	for _, userID := range memberIDs {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO user_chat_associations (user_id, chat_id) VALUES ($1, $2)`,
			userID, chat.ID,
		); err != nil {
			return models.Chat{}, translateErr(err)
		}
	}

	if err = insertFolderAssociations(ctx, tx, chat, memberIDs); err != nil {
		return models.Chat{}, translateErr(err)
	}

	if err = tx.Commit(); err != nil {
		return models.Chat{}, err
	}

	chat.MemberUUIDs, err = r.MemberUUIDs(ctx, chat.ID)
	return chat, err
}

// CreateGroupChat creates a group with the creator as its only member and
// wires the creator's ALL and GROUPS folder associations atomically.
func (r *ChatRepo) CreateGroupChat(ctx context.Context, creatorID int64, name, description string) (models.Chat, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.Chat{}, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	var chat models.Chat
	err = tx.QueryRowxContext(ctx,
		`INSERT INTO chats (uuid, chat_type, name, description) VALUES ($1, $2, $3, $4) RETURNING `+chatColumns,
		uuid.NewString(), models.ChatTypeGroup, name, description,
	).StructScan(&chat)
	if err != nil {
		return models.Chat{}, err
	}

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO user_chat_associations (user_id, chat_id) VALUES ($1, $2)`,
		creatorID, chat.ID,
	); err != nil {
		return models.Chat{}, translateErr(err)
	}

	if err = insertFolderAssociations(ctx, tx, chat, []int64{creatorID}); err != nil {
		return models.Chat{}, translateErr(err)
	}

	if err = tx.Commit(); err != nil {
		return models.Chat{}, err
	}

	chat.MemberUUIDs, err = r.MemberUUIDs(ctx, chat.ID)
	return chat, err
}

// insertFolderAssociations files the chat into each member's matching system
// folders, as decided by the classifier.
func insertFolderAssociations(ctx context.Context, tx *sqlx.Tx, chat models.Chat, userIDs []int64) error {
	folderTypes := models.ClassifyChat(chat.ChatType)
	types := make([]string, 0, len(folderTypes))
	for _, t := range folderTypes {
		types = append(types, string(t))
	}

	_, err := tx.ExecContext(ctx,
		`INSERT INTO folder_chat_associations (folder_id, chat_id)
         SELECT f.id, $1 FROM folders f
         WHERE f.user_id = ANY($2) AND f.folder_type = ANY($3)`,
		chat.ID, pq.Array(userIDs), pq.Array(types),
	)
	return err
}

// Delete removes the chat row; memberships and folder associations follow by
// cascade.
func (r *ChatRepo) Delete(ctx context.Context, chatID int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM chats WHERE id=$1`, chatID)
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

// AddMember inserts the user's membership and system folder associations in
// one transaction. Fails with Conflict when the user is already a member.
func (r *ChatRepo) AddMember(ctx context.Context, chat models.Chat, userID int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	var member bool
	err = tx.GetContext(ctx, &member,
		`SELECT EXISTS(SELECT 1 FROM user_chat_associations WHERE chat_id=$1 AND user_id=$2)`,
		chat.ID, userID)
	if err != nil {
		return err
	}
	if member {
		err = fmt.Errorf("already a member: %w", apperrors.ErrConflict)
		return err
	}

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO user_chat_associations (user_id, chat_id) VALUES ($1, $2)`,
		userID, chat.ID,
	); err != nil {
		err = translateErr(err)
		return err
	}

	if err = insertFolderAssociations(ctx, tx, chat, []int64{userID}); err != nil {
		err = translateErr(err)
		return err
	}

	return tx.Commit()
}

// RemoveMember deletes the user's membership and every folder association of
// that user for the chat, custom folders included, in one transaction.
func (r *ChatRepo) RemoveMember(ctx context.Context, chatID, userID int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx,
		`DELETE FROM folder_chat_associations fca USING folders f
         WHERE fca.folder_id = f.id AND f.user_id = $1 AND fca.chat_id = $2`,
		userID, chatID,
	); err != nil {
		return err
	}

	var result sql.Result
	if result, err = tx.ExecContext(ctx,
		`DELETE FROM user_chat_associations WHERE user_id=$1 AND chat_id=$2`,
		userID, chatID,
	); err != nil {
		return err
	}
	var affected int64
	if affected, err = result.RowsAffected(); err != nil {
		return err
	}
	if affected == 0 {
		err = apperrors.ErrNotFound
		return err
	}

	return tx.Commit()
}

// IsMember checks membership.
func (r *ChatRepo) IsMember(ctx context.Context, chatID, userID int64) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM user_chat_associations WHERE chat_id=$1 AND user_id=$2)`,
		chatID, userID)
	return exists, err
}

// GetByUUID fetches a chat with its member list.
func (r *ChatRepo) GetByUUID(ctx context.Context, chatUUID string) (models.Chat, error) {
	var chat models.Chat
	err := r.db.GetContext(ctx, &chat, `SELECT `+chatColumns+` FROM chats WHERE uuid=$1`, chatUUID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Chat{}, apperrors.ErrNotFound
	}
	if err != nil {
		return models.Chat{}, err
	}
	chat.MemberUUIDs, err = r.MemberUUIDs(ctx, chat.ID)
	return chat, err
}

// GetByID fetches a chat by primary key with its member list.
func (r *ChatRepo) GetByID(ctx context.Context, chatID int64) (models.Chat, error) {
	var chat models.Chat
	err := r.db.GetContext(ctx, &chat, `SELECT `+chatColumns+` FROM chats WHERE id=$1`, chatID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Chat{}, apperrors.ErrNotFound
	}
	if err != nil {
		return models.Chat{}, err
	}
	chat.MemberUUIDs, err = r.MemberUUIDs(ctx, chat.ID)
	return chat, err
}

// Members returns the chat's users.
func (r *ChatRepo) Members(ctx context.Context, chatID int64) ([]models.User, error) {
	var users []models.User
	err := r.db.SelectContext(ctx, &users,
		`SELECT `+prefixedUserColumns("u")+` FROM users u
         JOIN user_chat_associations a ON a.user_id = u.id
         WHERE a.chat_id = $1 ORDER BY u.id`, chatID)
	return users, err
}

// MemberUUIDs returns the chat's member identifiers, mirrored into search
// documents.
func (r *ChatRepo) MemberUUIDs(ctx context.Context, chatID int64) ([]string, error) {
	var uuids []string
	err := r.db.SelectContext(ctx, &uuids,
		`SELECT u.uuid FROM users u
         JOIN user_chat_associations a ON a.user_id = u.id
         WHERE a.chat_id = $1 ORDER BY u.id`, chatID)
	return uuids, err
}

// CommonChats returns the chats both users are members of.
func (r *ChatRepo) CommonChats(ctx context.Context, userAID, userBID int64) ([]models.Chat, error) {
	var chats []models.Chat
	err := r.db.SelectContext(ctx, &chats,
		`SELECT `+prefixedChatColumns("c")+` FROM chats c
         JOIN user_chat_associations a ON a.chat_id = c.id AND a.user_id = $1
         JOIN user_chat_associations b ON b.chat_id = c.id AND b.user_id = $2
         ORDER BY c.id`, userAID, userBID)
	return chats, err
}

// ListForUser returns the user's chats with the per-membership pin flag.
func (r *ChatRepo) ListForUser(ctx context.Context, userID int64) ([]models.MemberChat, error) {
	var chats []models.MemberChat
	err := r.db.SelectContext(ctx, &chats,
		`SELECT `+prefixedChatColumns("c")+`, a.is_pinned FROM chats c
         JOIN user_chat_associations a ON a.chat_id = c.id
         WHERE a.user_id = $1 ORDER BY c.created_at DESC`, userID)
	return chats, err
}

// ListInFolder returns the chats filed in a folder with the per-folder pin
// flag.
func (r *ChatRepo) ListInFolder(ctx context.Context, folderID int64) ([]models.MemberChat, error) {
	var chats []models.MemberChat
	err := r.db.SelectContext(ctx, &chats,
		`SELECT `+prefixedChatColumns("c")+`, fca.is_pinned FROM chats c
         JOIN folder_chat_associations fca ON fca.chat_id = c.id
         WHERE fca.folder_id = $1 ORDER BY c.created_at DESC`, folderID)
	return chats, err
}

// TogglePin flips the membership pin flag and returns the new value.
func (r *ChatRepo) TogglePin(ctx context.Context, chatID, userID int64) (bool, error) {
	var pinned bool
	err := r.db.GetContext(ctx, &pinned,
		`UPDATE user_chat_associations SET is_pinned = NOT is_pinned
         WHERE chat_id=$1 AND user_id=$2 RETURNING is_pinned`,
		chatID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return false, apperrors.ErrNotFound
	}
	return pinned, err
}

func prefixedChatColumns(alias string) string {
	return alias + `.id, ` + alias + `.uuid, ` + alias + `.chat_type, ` + alias + `.name, ` +
		alias + `.description, ` + alias + `.avatar, ` + alias + `.is_visible, ` +
		alias + `.is_open_for_messages, ` + alias + `.created_at`
}

func prefixedUserColumns(alias string) string {
	return alias + `.id, ` + alias + `.uuid, ` + alias + `.username, ` + alias + `.email, ` +
		alias + `.password_hash, ` + alias + `.first_name, ` + alias + `.last_name, ` +
		alias + `.description, ` + alias + `.avatar, ` + alias + `.is_visible, ` +
		alias + `.is_open_for_messages, ` + alias + `.created_at`
}
