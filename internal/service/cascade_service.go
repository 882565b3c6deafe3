package service

import (
	"context"
	"fmt"
	"log"

	"practicevault/internal/domain"
	"practicevault/internal/service/s3"
)

// CascadeService сносит папку целиком: блобы, записи файлов, членства,
// саму папку и возврат квоты каждому загрузившему — как одну логическую
// операцию.
//
// Политика при отказе удаления блоба: best-effort. Осиротевший блоб
// не нарушает ни одного инварианта учета, а прерванное удаление лишает
// пользователя возможности вернуть квоту, поэтому блоб логируется как
// осиротевший, метаданные сносятся в любом случае.
type CascadeService struct {
	folderRepo FolderStore
	itemRepo   ItemStore
	s3Client   s3.Storage
	guard      *AccessGuard
}

func NewCascadeService(folderRepo FolderStore, itemRepo ItemStore, s3Client s3.Storage, guard *AccessGuard) *CascadeService {
	return &CascadeService{
		folderRepo: folderRepo,
		itemRepo:   itemRepo,
		s3Client:   s3Client,
		guard:      guard,
	}
}

// DeleteFolder удаляет папку со всем содержимым. Только владелец.
func (s *CascadeService) DeleteFolder(ctx context.Context, folderID int64, requesterID string) error {
	folder, err := s.folderRepo.GetByID(ctx, folderID)
	if err != nil {
		return err
	}

	if !s.guard.IsOwner(folder, requesterID) {
		return fmt.Errorf("%w: only the owner can delete folder %d", domain.ErrPermissionDenied, folderID)
	}

	items, err := s.itemRepo.ListByFolder(ctx, folderID)
	if err != nil {
		return fmt.Errorf("failed to enumerate folder items: %w", err)
	}

	// Проход по блобам, строго последовательно; отказы не прерывают снос
	for _, item := range items {
		if err := s.s3Client.DeleteObject(ctx, item.BlobKey); err != nil {
			log.Printf("[CascadeService] orphaned blob %s (item %s): %v", item.BlobKey, item.UUID, err)
		}
	}

	// Весь снос метаданных — одна транзакция: возврат квоты ровно один раз
	// на файл, никаких записей без папки и папки с записями.
	if err := s.folderRepo.CascadeDelete(ctx, folderID); err != nil {
		// Блобы к этому моменту могли быть уже удалены; сообщаем об этом
		// отличимо от полного отказа — повторный вызов безопасен, удаление
		// блобов идемпотентно.
		return fmt.Errorf("%w: metadata teardown for folder %d failed after blob pass: %v",
			domain.ErrPartialFailure, folderID, err)
	}

	log.Printf("[CascadeService] folder %d deleted with %d items", folderID, len(items))
	return nil
}
