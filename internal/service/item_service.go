package service

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"practicevault/internal/domain"
	"practicevault/internal/service/s3"
)

const (
	downloadURLTTL   = 15 * time.Minute
	releaseRetryBase = 100 * time.Millisecond
	releaseRetryCap  = 5 * time.Second
)

// ItemService — учет файлов в папках. Загрузка проходит пять строго
// последовательных шагов: папка, членство, резерв квоты, блоб, запись.
type ItemService struct {
	itemRepo   ItemStore
	folderRepo FolderStore
	quotaRepo  QuotaStore
	s3Client   s3.Storage
	guard      *AccessGuard
}

func NewItemService(
	itemRepo ItemStore,
	folderRepo FolderStore,
	quotaRepo QuotaStore,
	s3Client s3.Storage,
	guard *AccessGuard,
) *ItemService {
	return &ItemService{
		itemRepo:   itemRepo,
		folderRepo: folderRepo,
		quotaRepo:  quotaRepo,
		s3Client:   s3Client,
		guard:      guard,
	}
}

// AddItem загружает файл в папку. Единственный ограничитель размера —
// квота пользователя. Она резервируется до записи блоба; при любой
// последующей ошибке резерв обязан вернуться — утекший резерв навсегда
// сжимает доступное место пользователя.
func (s *ItemService) AddItem(ctx context.Context, folderID int64, uploaderID string, upload *domain.ItemUpload) (*domain.Item, error) {
	if upload == nil || upload.Title == "" || len(upload.Data) == 0 {
		return nil, fmt.Errorf("title and file data are required")
	}

	// Шаг 1: папка
	folder, err := s.folderRepo.GetByID(ctx, folderID)
	if err != nil {
		return nil, err
	}

	// Шаг 2: членство
	if !s.guard.IsMember(folder, uploaderID) {
		return nil, fmt.Errorf("%w: user %s is not a member of folder %d", domain.ErrPermissionDenied, uploaderID, folderID)
	}

	// Шаг 3: резерв квоты. При отказе — ни блоба, ни записи, квота не тронута.
	size := int64(len(upload.Data))
	if err := s.quotaRepo.Reserve(ctx, uploaderID, size); err != nil {
		return nil, err
	}

	itemUUID := uuid.New()
	blobKey := fmt.Sprintf("folder_files/%s/%d/%s", folder.OwnerID, folder.ID, itemUUID.String())

	contentType := upload.MIMEType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	// Шаг 4: блоб
	if err := s.s3Client.UploadBytes(ctx, blobKey, upload.Data); err != nil {
		s.releaseReserved(ctx, uploaderID, size)
		return nil, fmt.Errorf("%w: failed to upload blob: %v", domain.ErrStorageBackend, err)
	}

	item := &domain.Item{
		UUID:       itemUUID,
		FolderID:   folder.ID,
		UploaderID: uploaderID,
		Title:      upload.Title,
		FileName:   filepath.Clean(upload.FileName),
		MIMEType:   contentType,
		BlobKey:    blobKey,
		SizeBytes:  size,
	}

	// Шаг 5: запись в базе
	if err := s.itemRepo.Create(ctx, item); err != nil {
		// Компенсация: блоб убираем, резерв возвращаем
		if deleteErr := s.s3Client.DeleteObject(ctx, blobKey); deleteErr != nil {
			log.Printf("[ItemService] failed to delete blob %s after db error: %v", blobKey, deleteErr)
		}
		s.releaseReserved(ctx, uploaderID, size)
		return nil, err
	}

	return item, nil
}

// releaseReserved возвращает резерв квоты, повторяя попытки до успеха.
// Сдаемся только вместе с контекстом запроса; тогда утечка фиксируется
// в логе как нарушение инварианта для ручной сверки.
func (s *ItemService) releaseReserved(ctx context.Context, uploaderID string, bytes int64) {
	delay := releaseRetryBase
	for {
		err := s.quotaRepo.Release(ctx, uploaderID, bytes)
		if err == nil {
			return
		}

		log.Printf("[ItemService] failed to release %d reserved bytes for %s, retrying in %v: %v",
			bytes, uploaderID, delay, err)

		select {
		case <-ctx.Done():
			log.Printf("[ItemService] %v: leaked reservation of %d bytes for %s: %v",
				domain.ErrInvariantViolation, bytes, uploaderID, ctx.Err())
			return
		case <-time.After(delay):
		}

		delay *= 2
		if delay > releaseRetryCap {
			delay = releaseRetryCap
		}
	}
}

// RemoveItem удаляет файл. Только владелец папки. Запись и возврат квоты
// применяются одной транзакцией, блоб удаляется до них: его потеря из
// хранилища при живой записи безопаснее осиротевшей записи.
func (s *ItemService) RemoveItem(ctx context.Context, itemUUID uuid.UUID, requesterID string) error {
	item, err := s.itemRepo.GetByUUID(ctx, itemUUID)
	if err != nil {
		return err
	}

	folder, err := s.folderRepo.GetByID(ctx, item.FolderID)
	if err != nil {
		return err
	}

	if !s.guard.IsOwner(folder, requesterID) {
		return fmt.Errorf("%w: only the folder owner can remove items", domain.ErrPermissionDenied)
	}

	if err := s.s3Client.DeleteObject(ctx, item.BlobKey); err != nil {
		log.Printf("[ItemService] orphaned blob %s: %v", item.BlobKey, err)
	}

	return s.itemRepo.DeleteWithRelease(ctx, itemUUID)
}

// ListItems возвращает файлы папки в порядке добавления. Только участникам.
func (s *ItemService) ListItems(ctx context.Context, folderID int64, requesterID string) ([]domain.Item, error) {
	folder, err := s.folderRepo.GetByID(ctx, folderID)
	if err != nil {
		return nil, err
	}

	if !s.guard.IsMember(folder, requesterID) {
		return nil, fmt.Errorf("%w: user %s is not a member of folder %d", domain.ErrPermissionDenied, requesterID, folderID)
	}

	return s.itemRepo.ListByFolder(ctx, folderID)
}

// DownloadURL выдает участнику временную ссылку на скачивание файла.
func (s *ItemService) DownloadURL(ctx context.Context, itemUUID uuid.UUID, requesterID string) (string, error) {
	item, err := s.itemRepo.GetByUUID(ctx, itemUUID)
	if err != nil {
		return "", err
	}

	folder, err := s.folderRepo.GetByID(ctx, item.FolderID)
	if err != nil {
		return "", err
	}

	if !s.guard.IsMember(folder, requesterID) {
		return "", fmt.Errorf("%w: user %s is not a member of folder %d", domain.ErrPermissionDenied, requesterID, folder.ID)
	}

	url, err := s.s3Client.PresignDownload(ctx, item.BlobKey, downloadURLTTL)
	if err != nil {
		return "", fmt.Errorf("%w: failed to presign download: %v", domain.ErrStorageBackend, err)
	}

	return url, nil
}
