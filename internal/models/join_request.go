package models

import (
	"database/sql"
	"time"
)

// JoinRequestType says whether the request targets a user or a group.
type JoinRequestType string

const (
	JoinRequestTypeUser  JoinRequestType = "user"
	JoinRequestTypeGroup JoinRequestType = "group"
)

// JoinRequest is a pending request from a sender to start a normal chat with
// a user or to join a group. Approval and rejection both delete the row.
type JoinRequest struct {
	ID             int64           `db:"id" json:"-"`
	UUID           string          `db:"uuid" json:"uuid"`
	RequestType    JoinRequestType `db:"request_type" json:"request_type"`
	SenderID       int64           `db:"sender_id" json:"-"`
	ReceiverUserID sql.NullInt64   `db:"receiver_user_id" json:"-"`
	GroupID        sql.NullInt64   `db:"group_id" json:"-"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`

	SenderUUID string `db:"sender_uuid" json:"sender_uuid"`
	TargetUUID string `db:"target_uuid" json:"target_uuid"`
}
