package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"messenger-service/internal/apperrors"
	"messenger-service/internal/models"
)

// InvitationRepository abstracts invitation persistence. Consume is the
// single-use path: the expiry check, the decrement and the delete happen in
// one transaction so a racing use and expiry cannot both win.
type InvitationRepository interface {
	Create(ctx context.Context, invitation models.Invitation) (models.Invitation, error)
	GetByUUID(ctx context.Context, invitationUUID string) (models.Invitation, error)
	Delete(ctx context.Context, invitationID int64) error
	ListForGroup(ctx context.Context, groupID int64) ([]models.Invitation, error)
	Consume(ctx context.Context, invitationUUID string, now time.Time) (models.Invitation, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// InvitationRepo is a sqlx implementation of InvitationRepository.
type InvitationRepo struct {
	db *sqlx.DB
}

// NewInvitationRepo constructs an InvitationRepo.
func NewInvitationRepo(db *sqlx.DB) *InvitationRepo {
	return &InvitationRepo{db: db}
}

const invitationColumns = `id, uuid, invitation_type, lifetime, max_uses, user_id, group_id, created_at`

// Create inserts an invitation.
func (r *InvitationRepo) Create(ctx context.Context, invitation models.Invitation) (models.Invitation, error) {
	var created models.Invitation
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO invitations (uuid, invitation_type, lifetime, max_uses, user_id, group_id)
         VALUES ($1, $2, $3, $4, $5, $6)
         RETURNING `+invitationColumns,
		uuid.NewString(), invitation.InvitationType, invitation.Lifetime,
		invitation.MaxUses, invitation.UserID, invitation.GroupID,
	).StructScan(&created)
	return created, translateErr(err)
}

// GetByUUID fetches an invitation.
func (r *InvitationRepo) GetByUUID(ctx context.Context, invitationUUID string) (models.Invitation, error) {
	var invitation models.Invitation
	err := r.db.GetContext(ctx, &invitation,
		`SELECT `+invitationColumns+` FROM invitations WHERE uuid=$1`, invitationUUID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Invitation{}, apperrors.ErrNotFound
	}
	return invitation, err
}

// Delete removes an invitation.
func (r *InvitationRepo) Delete(ctx context.Context, invitationID int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM invitations WHERE id=$1`, invitationID)
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

// ListForGroup returns the group's invitations.
func (r *InvitationRepo) ListForGroup(ctx context.Context, groupID int64) ([]models.Invitation, error) {
	var invitations []models.Invitation
	err := r.db.SelectContext(ctx, &invitations,
		`SELECT `+invitationColumns+` FROM invitations WHERE group_id=$1 ORDER BY created_at`, groupID)
	return invitations, err
}

// Consume locks the row, rejects expired invitations (deleting them as a side
// effect), then decrements max_uses or deletes the row at its last use.
func (r *InvitationRepo) Consume(ctx context.Context, invitationUUID string, now time.Time) (models.Invitation, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.Invitation{}, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	var invitation models.Invitation
	err = tx.GetContext(ctx, &invitation,
		`SELECT `+invitationColumns+` FROM invitations WHERE uuid=$1 FOR UPDATE`, invitationUUID)
	if errors.Is(err, sql.ErrNoRows) {
		err = apperrors.ErrNotFound
		return models.Invitation{}, err
	}
	if err != nil {
		return models.Invitation{}, err
	}

	if invitation.Expired(now) {
		if _, err = tx.ExecContext(ctx, `DELETE FROM invitations WHERE id=$1`, invitation.ID); err != nil {
			return models.Invitation{}, err
		}
		if err = tx.Commit(); err != nil {
			return models.Invitation{}, err
		}
		return models.Invitation{}, fmt.Errorf("invitation past its lifetime: %w", apperrors.ErrExpired)
	}

	switch {
	case invitation.LastUse():
		_, err = tx.ExecContext(ctx, `DELETE FROM invitations WHERE id=$1`, invitation.ID)
	case invitation.MaxUses.Valid:
		_, err = tx.ExecContext(ctx,
			`UPDATE invitations SET max_uses = max_uses - 1 WHERE id=$1`, invitation.ID)
	}
	if err != nil {
		return models.Invitation{}, err
	}

	if err = tx.Commit(); err != nil {
		return models.Invitation{}, err
	}
	return invitation, nil
}

// DeleteExpired removes every finite-lifetime invitation past its deadline.
// The background sweeper calls this periodically.
func (r *InvitationRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM invitations WHERE
            (lifetime = '10m' AND created_at + interval '10 minutes' < $1) OR
            (lifetime = '1h'  AND created_at + interval '1 hour' < $1) OR
            (lifetime = '1d'  AND created_at + interval '1 day' < $1)`,
		now)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
