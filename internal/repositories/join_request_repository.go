package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"messenger-service/internal/apperrors"
	"messenger-service/internal/models"
)

// JoinRequestRepository abstracts join-request persistence.
type JoinRequestRepository interface {
	Create(ctx context.Context, request models.JoinRequest) (models.JoinRequest, error)
	GetByUUID(ctx context.Context, requestUUID string) (models.JoinRequest, error)
	Delete(ctx context.Context, requestID int64) error
	ListForGroup(ctx context.Context, groupID int64) ([]models.JoinRequest, error)
	ListForReceiver(ctx context.Context, userID int64) ([]models.JoinRequest, error)
	ListForSender(ctx context.Context, userID int64) ([]models.JoinRequest, error)
}

// JoinRequestRepo is a sqlx implementation of JoinRequestRepository.
type JoinRequestRepo struct {
	db *sqlx.DB
}

// NewJoinRequestRepo constructs a JoinRequestRepo.
func NewJoinRequestRepo(db *sqlx.DB) *JoinRequestRepo {
	return &JoinRequestRepo{db: db}
}

// joinRequestQuery resolves sender and target UUIDs alongside the row.
const joinRequestQuery = `
    SELECT jr.id, jr.uuid, jr.request_type, jr.sender_id, jr.receiver_user_id, jr.group_id, jr.created_at,
           s.uuid AS sender_uuid,
           COALESCE(ru.uuid, g.uuid) AS target_uuid
    FROM join_requests jr
    JOIN users s ON s.id = jr.sender_id
    LEFT JOIN users ru ON ru.id = jr.receiver_user_id
    LEFT JOIN chats g ON g.id = jr.group_id`

// Create inserts a join request.
func (r *JoinRequestRepo) Create(ctx context.Context, request models.JoinRequest) (models.JoinRequest, error) {
	var created models.JoinRequest
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO join_requests (uuid, request_type, sender_id, receiver_user_id, group_id)
         VALUES ($1, $2, $3, $4, $5)
         RETURNING id, uuid, request_type, sender_id, receiver_user_id, group_id, created_at`,
		uuid.NewString(), request.RequestType, request.SenderID, request.ReceiverUserID, request.GroupID,
	).StructScan(&created)
	return created, translateErr(err)
}

// GetByUUID fetches a join request.
func (r *JoinRequestRepo) GetByUUID(ctx context.Context, requestUUID string) (models.JoinRequest, error) {
	var request models.JoinRequest
	err := r.db.GetContext(ctx, &request, joinRequestQuery+` WHERE jr.uuid = $1`, requestUUID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.JoinRequest{}, apperrors.ErrNotFound
	}
	return request, err
}

// Delete removes the row; approval and rejection both end here.
func (r *JoinRequestRepo) Delete(ctx context.Context, requestID int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM join_requests WHERE id=$1`, requestID)
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

// ListForGroup returns the group's pending requests.
func (r *JoinRequestRepo) ListForGroup(ctx context.Context, groupID int64) ([]models.JoinRequest, error) {
	var requests []models.JoinRequest
	err := r.db.SelectContext(ctx, &requests, joinRequestQuery+` WHERE jr.group_id = $1 ORDER BY jr.created_at`, groupID)
	return requests, err
}

// ListForReceiver returns requests addressed to the user.
func (r *JoinRequestRepo) ListForReceiver(ctx context.Context, userID int64) ([]models.JoinRequest, error) {
	var requests []models.JoinRequest
	err := r.db.SelectContext(ctx, &requests, joinRequestQuery+` WHERE jr.receiver_user_id = $1 ORDER BY jr.created_at`, userID)
	return requests, err
}

// ListForSender returns requests the user has sent.
func (r *JoinRequestRepo) ListForSender(ctx context.Context, userID int64) ([]models.JoinRequest, error) {
	var requests []models.JoinRequest
	err := r.db.SelectContext(ctx, &requests, joinRequestQuery+` WHERE jr.sender_id = $1 ORDER BY jr.created_at`, userID)
	return requests, err
}
