package services

import (
	"context"
	"fmt"
	"log"

	"messenger-service/internal/apperrors"
	"messenger-service/internal/cache"
	"messenger-service/internal/models"
	"messenger-service/internal/repositories"
)

// FolderService manages custom folders. System folders are created at
// registration and only ever read here; every mutation on them fails with
// Forbidden.
type FolderService struct {
	folders repositories.FolderRepository
	chats   repositories.ChatRepository
	store   cache.Store
	effects *Dispatcher
}

// NewFolderService constructs a FolderService.
func NewFolderService(
	folders repositories.FolderRepository,
	chats repositories.ChatRepository,
	store cache.Store,
	effects *Dispatcher,
) *FolderService {
	return &FolderService{folders: folders, chats: chats, store: store, effects: effects}
}

// GetOwned fetches a folder and checks the actor owns it.
func (s *FolderService) GetOwned(ctx context.Context, actor models.User, folderUUID string) (models.Folder, error) {
	folder, err := s.folders.GetByUUID(ctx, folderUUID)
	if err != nil {
		return models.Folder{}, err
	}
	if folder.UserID != actor.ID {
		return models.Folder{}, fmt.Errorf("not your folder: %w", apperrors.ErrForbidden)
	}
	return folder, nil
}

// ListFolders returns the actor's folders with contents, read through the
// cache.
func (s *FolderService) ListFolders(ctx context.Context, actor models.User) ([]models.FolderView, error) {
	key := cache.FoldersKey(actor.UUID)
	var views []models.FolderView
	if s.store != nil {
		hit, err := s.store.Get(ctx, key, &views)
		if err != nil {
			log.Printf("cache read failed key=%s: %v", key, err)
		} else if hit {
			return views, nil
		}
	}

	folders, err := s.folders.ListForUser(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	views = make([]models.FolderView, 0, len(folders))
	for _, folder := range folders {
		chatUUIDs, pinned, err := s.folders.ChatUUIDs(ctx, folder.ID)
		if err != nil {
			return nil, err
		}
		views = append(views, models.FolderView{
			UUID:        folder.UUID,
			Name:        folder.DisplayName(),
			FolderType:  folder.FolderType,
			Position:    folder.Position,
			ChatUUIDs:   chatUUIDs,
			PinnedChats: pinned,
		})
	}

	if s.store != nil {
		if err := s.store.Set(ctx, key, views); err != nil {
			log.Printf("cache write failed key=%s: %v", key, err)
		}
	}
	return views, nil
}

// CreateFolder appends a custom folder to the actor's ordering.
func (s *FolderService) CreateFolder(ctx context.Context, actor models.User, name string) (models.Folder, error) {
	folder, err := s.folders.CreateCustom(ctx, actor.ID, name)
	if err != nil {
		return models.Folder{}, err
	}

	s.effects.Run(ctx, SideEffects{CacheKeys: []string{cache.FoldersKey(actor.UUID)}})
	return folder, nil
}

// RenameFolder renames a custom folder owned by the actor.
func (s *FolderService) RenameFolder(ctx context.Context, actor models.User, folderUUID, name string) error {
	folder, err := s.GetOwned(ctx, actor, folderUUID)
	if err != nil {
		return err
	}
	if folder.FolderType.IsSystem() {
		return fmt.Errorf("system folders cannot be renamed: %w", apperrors.ErrForbidden)
	}

	if err := s.folders.Rename(ctx, folder.ID, name); err != nil {
		return err
	}

	s.effects.Run(ctx, SideEffects{CacheKeys: []string{cache.FoldersKey(actor.UUID)}})
	return nil
}

// DeleteFolder deletes a custom folder owned by the actor and repacks the
// remaining positions densely.
func (s *FolderService) DeleteFolder(ctx context.Context, actor models.User, folderUUID string) error {
	folder, err := s.GetOwned(ctx, actor, folderUUID)
	if err != nil {
		return err
	}
	if folder.FolderType.IsSystem() {
		return fmt.Errorf("system folders cannot be deleted: %w", apperrors.ErrForbidden)
	}

	if err := s.folders.Delete(ctx, folder); err != nil {
		return err
	}

	s.effects.Run(ctx, SideEffects{CacheKeys: []string{
		cache.FoldersKey(actor.UUID),
		cache.ChatsKey(folder.UUID, actor.UUID),
	}})
	return nil
}

// MoveFolder shifts a folder to a new position in the actor's ordering.
func (s *FolderService) MoveFolder(ctx context.Context, actor models.User, folderUUID string, position int) error {
	folder, err := s.GetOwned(ctx, actor, folderUUID)
	if err != nil {
		return err
	}
	if position < 0 {
		return fmt.Errorf("negative position: %w", apperrors.ErrConflict)
	}

	// Clamp to the last slot so the sequence stays dense at 0..N-1.
	all, err := s.folders.ListForUser(ctx, actor.ID)
	if err != nil {
		return err
	}
	if last := len(all) - 1; position > last {
		position = last
	}

	if err := s.folders.Move(ctx, folder, position); err != nil {
		return err
	}

	s.effects.Run(ctx, SideEffects{CacheKeys: []string{cache.FoldersKey(actor.UUID)}})
	return nil
}

// AddChatToFolder files a chat the actor is a member of into one of the
// actor's custom folders.
func (s *FolderService) AddChatToFolder(ctx context.Context, actor models.User, folderUUID, chatUUID string) error {
	folder, err := s.GetOwned(ctx, actor, folderUUID)
	if err != nil {
		return err
	}
	if folder.FolderType.IsSystem() {
		return fmt.Errorf("system folders are managed automatically: %w", apperrors.ErrForbidden)
	}

	chat, err := s.chats.GetByUUID(ctx, chatUUID)
	if err != nil {
		return err
	}
	member, err := s.chats.IsMember(ctx, chat.ID, actor.ID)
	if err != nil {
		return err
	}
	if !member {
		return fmt.Errorf("only members can file a chat: %w", apperrors.ErrForbidden)
	}

	if err := s.folders.AddChat(ctx, folder.ID, chat.ID); err != nil {
		return err
	}

	s.effects.Run(ctx, SideEffects{CacheKeys: []string{
		cache.FoldersKey(actor.UUID),
		cache.ChatsKey(folder.UUID, actor.UUID),
	}})
	return nil
}

// RemoveChatFromFolder removes a chat from one of the actor's custom
// folders.
func (s *FolderService) RemoveChatFromFolder(ctx context.Context, actor models.User, folderUUID, chatUUID string) error {
	folder, err := s.GetOwned(ctx, actor, folderUUID)
	if err != nil {
		return err
	}
	if folder.FolderType.IsSystem() {
		return fmt.Errorf("system folders are managed automatically: %w", apperrors.ErrForbidden)
	}

	chat, err := s.chats.GetByUUID(ctx, chatUUID)
	if err != nil {
		return err
	}

	if err := s.folders.RemoveChat(ctx, folder.ID, chat.ID); err != nil {
		return err
	}

	s.effects.Run(ctx, SideEffects{CacheKeys: []string{
		cache.FoldersKey(actor.UUID),
		cache.ChatsKey(folder.UUID, actor.UUID),
	}})
	return nil
}

// PinChatInFolder toggles the folder association's pin flag.
func (s *FolderService) PinChatInFolder(ctx context.Context, actor models.User, folderUUID, chatUUID string) (bool, error) {
	folder, err := s.GetOwned(ctx, actor, folderUUID)
	if err != nil {
		return false, err
	}

	chat, err := s.chats.GetByUUID(ctx, chatUUID)
	if err != nil {
		return false, err
	}

	pinned, err := s.folders.ToggleChatPin(ctx, folder.ID, chat.ID)
	if err != nil {
		return false, err
	}

	s.effects.Run(ctx, SideEffects{CacheKeys: []string{cache.ChatsKey(folder.UUID, actor.UUID)}})
	return pinned, nil
}
