package models

import "time"

// ChatType distinguishes 1:1 chats from groups.
type ChatType string

const (
	ChatTypeNormal ChatType = "normal"
	ChatTypeGroup  ChatType = "group"
)

// Chat is a conversation. Normal chats carry no name of their own; the
// listing layer derives it from the other participant.
type Chat struct {
	ID                int64     `db:"id" json:"-"`
	UUID              string    `db:"uuid" json:"uuid"`
	ChatType          ChatType  `db:"chat_type" json:"chat_type"`
	Name              string    `db:"name" json:"name"`
	Description       string    `db:"description" json:"description"`
	Avatar            string    `db:"avatar" json:"avatar"`
	IsVisible         bool      `db:"is_visible" json:"is_visible"`
	IsOpenForMessages bool      `db:"is_open_for_messages" json:"is_open_for_messages"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`

	MemberUUIDs []string `db:"-" json:"member_uuids,omitempty"`
}

// Membership is a user's participation record in a chat.
type Membership struct {
	UserID   int64 `db:"user_id" json:"-"`
	ChatID   int64 `db:"chat_id" json:"-"`
	IsPinned bool  `db:"is_pinned" json:"is_pinned"`
}

// MemberChat is a chat row joined with one association's pin flag.
type MemberChat struct {
	Chat
	IsPinned bool `db:"is_pinned"`
}

// ChatView is the API-facing rendering of a chat for one user: normal chats
// take the other participant's attributes.
type ChatView struct {
	UUID        string    `json:"uuid"`
	ChatType    ChatType  `json:"chat_type"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Avatar      string    `json:"avatar"`
	IsPinned    bool      `json:"is_pinned"`
	MemberUUIDs []string  `json:"member_uuids"`
	CreatedAt   time.Time `json:"created_at"`
}
