package service

import (
	"context"
	"fmt"
	"strings"

	"practicevault/internal/domain"
)

// FolderService отвечает за жизненный цикл папок: создание, переименование,
// вступление и списки. Каскадное удаление — у CascadeService.
type FolderService struct {
	folderRepo    FolderStore
	itemRepo      ItemStore
	guard         *AccessGuard
	foldersPublic bool
}

func NewFolderService(folderRepo FolderStore, itemRepo ItemStore, guard *AccessGuard, foldersPublic bool) *FolderService {
	return &FolderService{
		folderRepo:    folderRepo,
		itemRepo:      itemRepo,
		guard:         guard,
		foldersPublic: foldersPublic,
	}
}

// CreateFolder создает папку; состав участников — {владелец}.
func (s *FolderService) CreateFolder(ctx context.Context, name, ownerID string) (*domain.Folder, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("folder name is required")
	}
	if ownerID == "" {
		return nil, fmt.Errorf("owner id is required")
	}

	folder := &domain.Folder{
		Name:     name,
		OwnerID:  ownerID,
		IsPublic: s.foldersPublic,
	}

	if err := s.folderRepo.Create(ctx, folder); err != nil {
		return nil, fmt.Errorf("failed to create folder: %w", err)
	}

	return folder, nil
}

// RenameFolder переименовывает папку. Только владелец.
func (s *FolderService) RenameFolder(ctx context.Context, folderID int64, newName, userID string) error {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return fmt.Errorf("new name is required")
	}

	folder, err := s.folderRepo.GetByID(ctx, folderID)
	if err != nil {
		return err
	}

	if !s.guard.IsOwner(folder, userID) {
		return fmt.Errorf("%w: only the owner can rename folder %d", domain.ErrPermissionDenied, folderID)
	}

	return s.folderRepo.Rename(ctx, folderID, folder.OwnerID, newName)
}

// JoinFolder добавляет пользователя в участники. Идемпотентно: повторное
// вступление — no-op, не ошибка.
func (s *FolderService) JoinFolder(ctx context.Context, folderID int64, userID string) (*domain.Folder, error) {
	folder, err := s.folderRepo.GetByID(ctx, folderID)
	if err != nil {
		return nil, err
	}

	// Уже участник — ничего не делаем
	if s.guard.IsMember(folder, userID) {
		return folder, nil
	}

	if !folder.IsPublic {
		return nil, fmt.Errorf("%w: folder %d is not open for joining", domain.ErrPermissionDenied, folderID)
	}

	if err := s.folderRepo.AddMember(ctx, folderID, userID); err != nil {
		return nil, fmt.Errorf("failed to join folder: %w", err)
	}

	folder.MemberIDs = append(folder.MemberIDs, userID)
	return folder, nil
}

// ListFolders возвращает папки пользователя, новые сверху.
func (s *FolderService) ListFolders(ctx context.Context, userID string) ([]domain.Folder, error) {
	return s.folderRepo.ListForUser(ctx, userID)
}

// GetFolderContent возвращает папку вместе с файлами. Только для участников.
func (s *FolderService) GetFolderContent(ctx context.Context, folderID int64, userID string) (*domain.FolderContent, error) {
	folder, err := s.folderRepo.GetByID(ctx, folderID)
	if err != nil {
		return nil, err
	}

	if !s.guard.IsMember(folder, userID) {
		return nil, fmt.Errorf("%w: user %s is not a member of folder %d", domain.ErrPermissionDenied, userID, folderID)
	}

	items, err := s.itemRepo.ListByFolder(ctx, folderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list folder items: %w", err)
	}

	return &domain.FolderContent{
		Folder: *folder,
		Items:  items,
	}, nil
}
