package service

import (
	"context"

	"github.com/google/uuid"

	"practicevault/internal/domain"
)

// Интерфейсы хранилищ, которыми пользуются сервисы. Реализации живут
// в internal/repository; узкие интерфейсы здесь позволяют проверять
// логику сервисов без живой базы.

type FolderStore interface {
	Create(ctx context.Context, folder *domain.Folder) error
	GetByID(ctx context.Context, id int64) (*domain.Folder, error)
	Rename(ctx context.Context, folderID int64, ownerID, newName string) error
	AddMember(ctx context.Context, folderID int64, userID string) error
	ListForUser(ctx context.Context, userID string) ([]domain.Folder, error)
	CascadeDelete(ctx context.Context, folderID int64) error
}

type ItemStore interface {
	Create(ctx context.Context, item *domain.Item) error
	GetByUUID(ctx context.Context, itemUUID uuid.UUID) (*domain.Item, error)
	ListByFolder(ctx context.Context, folderID int64) ([]domain.Item, error)
	DeleteWithRelease(ctx context.Context, itemUUID uuid.UUID) error
}

type QuotaStore interface {
	GetQuota(ctx context.Context, ownerID string) (*domain.StorageQuota, error)
	Reserve(ctx context.Context, ownerID string, bytes int64) error
	Release(ctx context.Context, ownerID string, bytes int64) error
	UpdateQuotaLimit(ctx context.Context, ownerID string, newLimit int64) error
}

type CounterStore interface {
	Consume(ctx context.Context, ownerID, periodKey string, limit int64) error
	Get(ctx context.Context, ownerID, periodKey string) (*domain.UsageCounter, error)
}
