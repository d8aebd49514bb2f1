package models

// Event types broadcast over websockets and published to the event exchange
// after a lifecycle operation commits.
const (
	EventChatCreated   = "chat.created"
	EventChatDeleted   = "chat.deleted"
	EventMemberAdded   = "chat.member_added"
	EventMemberQuit    = "chat.member_quit"
	EventFolderChanged = "folder.changed"
)

// UserEvent is delivered to every affected user's websocket connections.
type UserEvent struct {
	Type     string `json:"type"`
	ChatUUID string `json:"chat_uuid,omitempty"`
	UserUUID string `json:"user_uuid,omitempty"`
}

// DomainEvent is the envelope published to the event exchange.
type DomainEvent struct {
	Type      string   `json:"type"`
	ChatUUID  string   `json:"chat_uuid,omitempty"`
	ActorUUID string   `json:"actor_uuid,omitempty"`
	Members   []string `json:"members,omitempty"`
}
