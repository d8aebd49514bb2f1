package models

import (
	"database/sql"
	"time"
)

// FolderType is one of the four system types or custom.
type FolderType string

const (
	FolderTypeCustom FolderType = "custom"

	// predefined, one of each per user
	FolderTypeAll    FolderType = "all"
	FolderTypeChats  FolderType = "chats"
	FolderTypeGroups FolderType = "groups"
	FolderTypeNew    FolderType = "new"
)

// IsSystem reports whether the type is one of the auto-created folders.
func (t FolderType) IsSystem() bool {
	return t != FolderTypeCustom
}

// Folder belongs to exactly one user. System folders have no name.
type Folder struct {
	ID         int64          `db:"id" json:"-"`
	UUID       string         `db:"uuid" json:"uuid"`
	UserID     int64          `db:"user_id" json:"-"`
	FolderType FolderType     `db:"folder_type" json:"folder_type"`
	Name       sql.NullString `db:"name" json:"-"`
	Position   int            `db:"position" json:"position"`
	CreatedAt  time.Time      `db:"created_at" json:"created_at"`
}

// DisplayName returns the user-given name, empty for system folders.
func (f Folder) DisplayName() string {
	if f.Name.Valid {
		return f.Name.String
	}
	return ""
}

// SystemFolders is the typed record of a user's auto-created folders.
type SystemFolders struct {
	All    Folder
	Chats  Folder
	Groups Folder
	New    Folder
}

// ClassifyChat returns the system folder types a chat belongs to for any of
// its members: ALL plus CHATS for normal chats, ALL plus GROUPS for groups.
func ClassifyChat(chatType ChatType) []FolderType {
	if chatType == ChatTypeGroup {
		return []FolderType{FolderTypeAll, FolderTypeGroups}
	}
	return []FolderType{FolderTypeAll, FolderTypeChats}
}

// FolderChatAssociation is a chat's inclusion record in a folder.
type FolderChatAssociation struct {
	FolderID int64 `db:"folder_id" json:"-"`
	ChatID   int64 `db:"chat_id" json:"-"`
	IsPinned bool  `db:"is_pinned" json:"is_pinned"`
}

// FolderRef identifies one (folder, user) cache scope touched by a chat.
type FolderRef struct {
	FolderUUID string `db:"folder_uuid"`
	UserUUID   string `db:"user_uuid"`
}

// FolderView is the API-facing rendering of a folder with its contents.
type FolderView struct {
	UUID        string     `json:"uuid"`
	Name        string     `json:"name"`
	FolderType  FolderType `json:"folder_type"`
	Position    int        `json:"position"`
	ChatUUIDs   []string   `json:"chat_uuids"`
	PinnedChats []string   `json:"pinned_chats"`
}
