package services

import (
	"context"
	"fmt"
	"log"

	"messenger-service/internal/apperrors"
	"messenger-service/internal/cache"
	"messenger-service/internal/models"
	"messenger-service/internal/repositories"
	"messenger-service/internal/search"
)

// CreateChatInput carries validated chat creation parameters. For normal
// chats TargetUsername names the other participant; Name and Description
// apply to groups only.
type CreateChatInput struct {
	ChatType       models.ChatType
	TargetUsername string
	Name           string
	Description    string
}

// ChatService is the chat lifecycle manager. It orchestrates the membership
// ledger and folder classification within the repository transaction, then
// hands cache, search, event and websocket work to the dispatcher as
// post-commit side effects. Request mediators call into this service; the
// dependency never points the other way.
type ChatService struct {
	chats   repositories.ChatRepository
	folders repositories.FolderRepository
	users   repositories.UserRepository
	index   search.Index
	store   cache.Store
	effects *Dispatcher
}

// NewChatService constructs a ChatService.
func NewChatService(
	chats repositories.ChatRepository,
	folders repositories.FolderRepository,
	users repositories.UserRepository,
	index search.Index,
	store cache.Store,
	effects *Dispatcher,
) *ChatService {
	return &ChatService{
		chats:   chats,
		folders: folders,
		users:   users,
		index:   index,
		store:   store,
		effects: effects,
	}
}

// CreateChat creates a normal chat with the named target user, or a group
// with the actor as its only member.
func (s *ChatService) CreateChat(ctx context.Context, actor models.User, input CreateChatInput) (models.Chat, error) {
	if input.ChatType == models.ChatTypeGroup {
		return s.createGroup(ctx, actor, input.Name, input.Description)
	}

	target, err := s.users.GetByUsername(ctx, input.TargetUsername)
	if err != nil {
		return models.Chat{}, fmt.Errorf("resolve target user: %w", err)
	}
	return s.CreateNormalChatWith(ctx, actor, target)
}

// CreateNormalChatWith creates a 1:1 chat between actor and target. Both
// memberships and both users' ALL and CHATS folder associations commit
// atomically; a second normal chat between the same pair fails with Conflict.
func (s *ChatService) CreateNormalChatWith(ctx context.Context, actor, target models.User) (models.Chat, error) {
	if actor.ID == target.ID {
		return models.Chat{}, fmt.Errorf("cannot chat with yourself: %w", apperrors.ErrConflict)
	}

	chat, err := s.chats.CreateNormalChat(ctx, actor.ID, target.ID)
	if err != nil {
		return models.Chat{}, err
	}
	log.Printf("normal chat %s created between %s and %s", chat.UUID, actor.Username, target.Username)

	fx := SideEffects{
		CacheKeys: s.cacheKeysForChat(ctx, chat, chat.MemberUUIDs),
		SearchOps: []SearchOp{s.upsertChatOp(chat, []string{actor.Username, target.Username})},
		Events: []models.DomainEvent{{
			Type: models.EventChatCreated, ChatUUID: chat.UUID, ActorUUID: actor.UUID, Members: chat.MemberUUIDs,
		}},
		Notifications: []Notification{{
			Users: chat.MemberUUIDs,
			Event: models.UserEvent{Type: models.EventChatCreated, ChatUUID: chat.UUID},
		}},
	}
	s.effects.Run(ctx, fx)
	return chat, nil
}

func (s *ChatService) createGroup(ctx context.Context, actor models.User, name, description string) (models.Chat, error) {
	chat, err := s.chats.CreateGroupChat(ctx, actor.ID, name, description)
	if err != nil {
		return models.Chat{}, err
	}
	log.Printf("group %s %q created by %s", chat.UUID, name, actor.Username)

	fx := SideEffects{
		CacheKeys: s.cacheKeysForChat(ctx, chat, chat.MemberUUIDs),
		SearchOps: []SearchOp{s.upsertChatOp(chat, nil)},
		Events: []models.DomainEvent{{
			Type: models.EventChatCreated, ChatUUID: chat.UUID, ActorUUID: actor.UUID, Members: chat.MemberUUIDs,
		}},
		Notifications: []Notification{{
			Users: chat.MemberUUIDs,
			Event: models.UserEvent{Type: models.EventChatCreated, ChatUUID: chat.UUID},
		}},
	}
	s.effects.Run(ctx, fx)
	return chat, nil
}

// DeleteChat removes the chat for every member. Only current members may
// delete.
func (s *ChatService) DeleteChat(ctx context.Context, actor models.User, chatUUID string) error {
	chat, err := s.chats.GetByUUID(ctx, chatUUID)
	if err != nil {
		return err
	}

	member, err := s.chats.IsMember(ctx, chat.ID, actor.ID)
	if err != nil {
		return err
	}
	if !member {
		return fmt.Errorf("only members can delete a chat: %w", apperrors.ErrForbidden)
	}

	// collected before the delete cascades the associations away
	keys := s.cacheKeysForChat(ctx, chat, chat.MemberUUIDs)
	members := chat.MemberUUIDs

	if err := s.chats.Delete(ctx, chat.ID); err != nil {
		return err
	}
	log.Printf("chat %s deleted by %s", chat.UUID, actor.Username)

	fx := SideEffects{
		CacheKeys: keys,
		SearchOps: []SearchOp{{
			Name: "delete_chat",
			Do:   func(ctx context.Context) error { return s.index.DeleteChat(ctx, chat.UUID) },
		}},
		Events: []models.DomainEvent{{
			Type: models.EventChatDeleted, ChatUUID: chat.UUID, ActorUUID: actor.UUID,
		}},
		Notifications: []Notification{{
			Users: members,
			Event: models.UserEvent{Type: models.EventChatDeleted, ChatUUID: chat.UUID},
		}},
	}
	s.effects.Run(ctx, fx)
	return nil
}

// QuitGroup removes the actor's membership and every folder association of
// the actor for that group, custom folders included. The group itself
// persists even when emptied.
func (s *ChatService) QuitGroup(ctx context.Context, actor models.User, chatUUID string) error {
	chat, err := s.chats.GetByUUID(ctx, chatUUID)
	if err != nil {
		return err
	}
	if chat.ChatType != models.ChatTypeGroup {
		return fmt.Errorf("only groups can be quit: %w", apperrors.ErrForbidden)
	}

	keys := s.cacheKeysForChat(ctx, chat, []string{actor.UUID})

	if err := s.chats.RemoveMember(ctx, chat.ID, actor.ID); err != nil {
		return err
	}
	log.Printf("%s quit group %s", actor.Username, chat.UUID)

	remaining, err := s.chats.MemberUUIDs(ctx, chat.ID)
	if err != nil {
		log.Printf("load members after quit failed chat=%s: %v", chat.UUID, err)
		remaining = nil
	}

	fx := SideEffects{
		CacheKeys: keys,
		SearchOps: []SearchOp{{
			Name: "update_chat_members",
			Do:   func(ctx context.Context) error { return s.index.UpdateChatMembers(ctx, chat.UUID, remaining) },
		}},
		Events: []models.DomainEvent{{
			Type: models.EventMemberQuit, ChatUUID: chat.UUID, ActorUUID: actor.UUID, Members: remaining,
		}},
		Notifications: []Notification{{
			Users: append(remaining, actor.UUID),
			Event: models.UserEvent{Type: models.EventMemberQuit, ChatUUID: chat.UUID, UserUUID: actor.UUID},
		}},
	}
	s.effects.Run(ctx, fx)
	return nil
}

// AddMember adds the named user to the group. Only current members may add;
// adding an existing member fails with Conflict.
func (s *ChatService) AddMember(ctx context.Context, actor models.User, groupUUID, username string) (models.User, error) {
	chat, err := s.chats.GetByUUID(ctx, groupUUID)
	if err != nil {
		return models.User{}, err
	}
	if chat.ChatType != models.ChatTypeGroup {
		return models.User{}, fmt.Errorf("members can only be added to groups: %w", apperrors.ErrForbidden)
	}

	member, err := s.chats.IsMember(ctx, chat.ID, actor.ID)
	if err != nil {
		return models.User{}, err
	}
	if !member {
		return models.User{}, fmt.Errorf("only members can add users: %w", apperrors.ErrForbidden)
	}

	target, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return models.User{}, fmt.Errorf("resolve target user: %w", err)
	}

	if err := s.JoinGroup(ctx, chat, target); err != nil {
		return models.User{}, err
	}
	return target, nil
}

// JoinGroup inserts the target's membership and system folder associations.
// Authority is the caller's concern: AddMember checks the acting member,
// mediators derive it from an approved request or a valid invitation.
func (s *ChatService) JoinGroup(ctx context.Context, group models.Chat, target models.User) error {
	if group.ChatType != models.ChatTypeGroup {
		return fmt.Errorf("not a group: %w", apperrors.ErrForbidden)
	}

	if err := s.chats.AddMember(ctx, group, target.ID); err != nil {
		return err
	}
	log.Printf("%s joined group %s", target.Username, group.UUID)

	members, err := s.chats.MemberUUIDs(ctx, group.ID)
	if err != nil {
		log.Printf("load members after join failed chat=%s: %v", group.UUID, err)
		members = nil
	}

	fx := SideEffects{
		CacheKeys: append(s.cacheKeysForChat(ctx, group, []string{target.UUID}), cache.FoldersKey(target.UUID)),
		SearchOps: []SearchOp{{
			Name: "update_chat_members",
			Do:   func(ctx context.Context) error { return s.index.UpdateChatMembers(ctx, group.UUID, members) },
		}},
		Events: []models.DomainEvent{{
			Type: models.EventMemberAdded, ChatUUID: group.UUID, ActorUUID: target.UUID, Members: members,
		}},
		Notifications: []Notification{{
			Users: members,
			Event: models.UserEvent{Type: models.EventMemberAdded, ChatUUID: group.UUID, UserUUID: target.UUID},
		}},
	}
	s.effects.Run(ctx, fx)
	return nil
}

// PinChat toggles the actor's membership pin flag and returns the new value.
func (s *ChatService) PinChat(ctx context.Context, actor models.User, chatUUID string) (bool, error) {
	chat, err := s.chats.GetByUUID(ctx, chatUUID)
	if err != nil {
		return false, err
	}

	pinned, err := s.chats.TogglePin(ctx, chat.ID, actor.ID)
	if err != nil {
		return false, err
	}

	s.effects.Run(ctx, SideEffects{
		CacheKeys: s.cacheKeysForChat(ctx, chat, []string{actor.UUID}),
	})
	return pinned, nil
}

// ListChats returns the actor's chats rendered for display, read through the
// ALL folder's cache scope.
func (s *ChatService) ListChats(ctx context.Context, actor models.User) ([]models.ChatView, error) {
	system, err := s.folders.SystemFolders(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	return s.ChatsInFolder(ctx, actor, system.All)
}

// ChatsInFolder returns the folder's chats rendered for the actor. Cache
// miss falls back to the ledger and repopulates with a TTL.
func (s *ChatService) ChatsInFolder(ctx context.Context, actor models.User, folder models.Folder) ([]models.ChatView, error) {
	if folder.UserID != actor.ID {
		return nil, fmt.Errorf("not your folder: %w", apperrors.ErrForbidden)
	}

	key := cache.ChatsKey(folder.UUID, actor.UUID)
	var views []models.ChatView
	if s.store != nil {
		hit, err := s.store.Get(ctx, key, &views)
		if err != nil {
			log.Printf("cache read failed key=%s: %v", key, err)
		} else if hit {
			return views, nil
		}
	}

	chats, err := s.chats.ListInFolder(ctx, folder.ID)
	if err != nil {
		return nil, err
	}

	views = make([]models.ChatView, 0, len(chats))
	for _, chat := range chats {
		members, err := s.chats.Members(ctx, chat.ID)
		if err != nil {
			return nil, err
		}
		views = append(views, buildChatView(actor, chat, members))
	}

	if s.store != nil {
		if err := s.store.Set(ctx, key, views); err != nil {
			log.Printf("cache write failed key=%s: %v", key, err)
		}
	}
	return views, nil
}

// buildChatView renders a chat for one user: groups keep their own
// attributes, normal chats take the other participant's.
func buildChatView(actor models.User, chat models.MemberChat, members []models.User) models.ChatView {
	view := models.ChatView{
		UUID:      chat.UUID,
		ChatType:  chat.ChatType,
		IsPinned:  chat.IsPinned,
		CreatedAt: chat.CreatedAt,
	}
	for _, member := range members {
		view.MemberUUIDs = append(view.MemberUUIDs, member.UUID)
	}

	if chat.ChatType == models.ChatTypeGroup {
		view.Name = chat.Name
		view.Description = chat.Description
		view.Avatar = chat.Avatar
		return view
	}

	for _, member := range members {
		if member.ID != actor.ID {
			view.Name = member.Username
			view.Description = member.Description
			view.Avatar = member.Avatar
			break
		}
	}
	return view
}

// cacheKeysForChat collects the cache keys touched by a change to the chat,
// restricted to the given users: each referencing (folder, user) scope plus
// the users' folder listings.
func (s *ChatService) cacheKeysForChat(ctx context.Context, chat models.Chat, userUUIDs []string) []string {
	scoped := make(map[string]bool, len(userUUIDs))
	for _, userUUID := range userUUIDs {
		scoped[userUUID] = true
	}

	var keys []string
	refs, err := s.folders.RefsForChat(ctx, chat.ID)
	if err != nil {
		log.Printf("collect folder refs failed chat=%s: %v", chat.UUID, err)
	} else {
		for _, ref := range refs {
			if scoped[ref.UserUUID] {
				keys = append(keys, cache.ChatsKey(ref.FolderUUID, ref.UserUUID))
			}
		}
	}
	for _, userUUID := range userUUIDs {
		keys = append(keys, cache.FoldersKey(userUUID))
	}
	return keys
}

// upsertChatOp builds the deferred projection of a freshly created chat.
func (s *ChatService) upsertChatOp(chat models.Chat, userNames []string) SearchOp {
	doc := search.ChatDocument{
		ChatType:          chat.ChatType,
		Name:              chat.Name,
		Description:       chat.Description,
		Avatar:            chat.Avatar,
		Members:           chat.MemberUUIDs,
		UserNames:         userNames,
		IsVisible:         chat.IsVisible,
		IsOpenForMessages: chat.IsOpenForMessages,
	}
	return SearchOp{
		Name: "upsert_chat",
		Do:   func(ctx context.Context) error { return s.index.UpsertChat(ctx, chat.UUID, doc) },
	}
}
