package repositories

import (
	"context"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"messenger-service/internal/models"
)

func TestDeleteRepacksPositions(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFolderRepo(db)
	folder := models.Folder{ID: 7, UserID: 1, FolderType: models.FolderTypeCustom, Position: 4}

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM folders WHERE id=\$1`).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	// every folder past the hole slides down one, restoring 0..N-1
	mock.ExpectExec(`UPDATE folders SET position = position - 1 WHERE user_id=\$1 AND position > \$2`).
		WithArgs(int64(1), 4).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(context.Background(), folder))
}

func TestDeleteRollsBackWhenRepackFails(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFolderRepo(db)
	folder := models.Folder{ID: 7, UserID: 1, FolderType: models.FolderTypeCustom, Position: 4}

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM folders WHERE id=\$1`).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE folders SET position = position - 1 WHERE user_id=\$1 AND position > \$2`).
		WithArgs(int64(1), 4).
		WillReturnError(sqlmock.ErrCancelled)
	mock.ExpectRollback()

	require.Error(t, repo.Delete(context.Background(), folder))
}
