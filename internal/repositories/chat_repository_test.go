package repositories

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"messenger-service/internal/apperrors"
	"messenger-service/internal/models"
)

func TestCreateNormalChatDuplicateNoPartialWrites(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewChatRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(int64(1), int64(2), models.ChatTypeNormal).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	// no chat, membership or folder inserts may follow the duplicate check
	mock.ExpectRollback()

	_, err := repo.CreateNormalChat(context.Background(), 1, 2)
	require.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestCreateNormalChatRollsBackWhenMembershipInsertFails(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewChatRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(int64(1), int64(2), models.ChatTypeNormal).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery(`INSERT INTO chats \(uuid, chat_type\) VALUES \(\$1, \$2\) RETURNING`).
		WithArgs(sqlmock.AnyArg(), models.ChatTypeNormal).
		WillReturnRows(chatRows(11, "c-1"))
	mock.ExpectExec(`INSERT INTO user_chat_associations`).
		WithArgs(int64(1), int64(11)).
		WillReturnError(sqlmock.ErrCancelled)
	mock.ExpectRollback()

	_, err := repo.CreateNormalChat(context.Background(), 1, 2)
	require.Error(t, err)
}

func chatRows(id int64, chatUUID string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "uuid", "chat_type", "name", "description", "avatar",
		"is_visible", "is_open_for_messages", "created_at",
	}).AddRow(id, chatUUID, models.ChatTypeNormal, "", "", "", true, true, time.Now())
}
