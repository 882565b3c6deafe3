package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"practicevault/internal/domain"
)

// fakeStore — память вместо Postgres; контракты те же, что у репозиториев,
// включая атомарный условный резерв квоты.
type fakeStore struct {
	mu sync.Mutex

	folders      map[int64]*domain.Folder
	nextFolderID int64
	clock        time.Time

	items map[uuid.UUID]*domain.Item

	quotas       map[string]*domain.StorageQuota
	defaultLimit int64

	counters map[string]int64

	failItemCreate bool
	releaseErrs    int // сколько вызовов Release завалить перед успехом
}

func newFakeStore(defaultLimit int64) *fakeStore {
	return &fakeStore{
		folders:      make(map[int64]*domain.Folder),
		items:        make(map[uuid.UUID]*domain.Item),
		quotas:       make(map[string]*domain.StorageQuota),
		counters:     make(map[string]int64),
		defaultLimit: defaultLimit,
		clock:        time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (f *fakeStore) tick() time.Time {
	f.clock = f.clock.Add(time.Second)
	return f.clock
}

// --- FolderStore ---

func (f *fakeStore) Create(ctx context.Context, folder *domain.Folder) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextFolderID++
	folder.ID = f.nextFolderID
	folder.CreatedAt = f.tick()
	folder.UpdatedAt = folder.CreatedAt
	folder.MemberIDs = []string{folder.OwnerID}

	stored := *folder
	stored.MemberIDs = append([]string(nil), folder.MemberIDs...)
	f.folders[folder.ID] = &stored
	return nil
}

func (f *fakeStore) GetByID(ctx context.Context, id int64) (*domain.Folder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	stored, ok := f.folders[id]
	if !ok {
		return nil, fmt.Errorf("%w: folder %d", domain.ErrNotFound, id)
	}

	folder := *stored
	folder.MemberIDs = append([]string(nil), stored.MemberIDs...)
	return &folder, nil
}

func (f *fakeStore) Rename(ctx context.Context, folderID int64, ownerID, newName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	stored, ok := f.folders[folderID]
	if !ok || stored.OwnerID != ownerID {
		return fmt.Errorf("%w: folder %d", domain.ErrNotFound, folderID)
	}

	stored.Name = newName
	stored.UpdatedAt = f.tick()
	return nil
}

func (f *fakeStore) AddMember(ctx context.Context, folderID int64, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	stored, ok := f.folders[folderID]
	if !ok {
		return fmt.Errorf("%w: folder %d", domain.ErrNotFound, folderID)
	}

	for _, id := range stored.MemberIDs {
		if id == userID {
			return nil
		}
	}
	stored.MemberIDs = append(stored.MemberIDs, userID)
	return nil
}

func (f *fakeStore) ListForUser(ctx context.Context, userID string) ([]domain.Folder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	folders := make([]domain.Folder, 0)
	for _, stored := range f.folders {
		for _, id := range stored.MemberIDs {
			if id == userID {
				folder := *stored
				folder.MemberIDs = append([]string(nil), stored.MemberIDs...)
				folders = append(folders, folder)
				break
			}
		}
	}

	sort.Slice(folders, func(i, j int) bool {
		return folders[i].CreatedAt.After(folders[j].CreatedAt)
	})
	return folders, nil
}

func (f *fakeStore) CascadeDelete(ctx context.Context, folderID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.folders[folderID]; !ok {
		return fmt.Errorf("%w: folder %d", domain.ErrNotFound, folderID)
	}

	for itemUUID, item := range f.items {
		if item.FolderID != folderID {
			continue
		}
		if quota, ok := f.quotas[item.UploaderID]; ok {
			quota.UsedBytes -= item.SizeBytes
			if quota.UsedBytes < 0 {
				quota.UsedBytes = 0
			}
		}
		delete(f.items, itemUUID)
	}

	delete(f.folders, folderID)
	return nil
}

// --- ItemStore ---

func (f *fakeStore) CreateItem(ctx context.Context, item *domain.Item) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failItemCreate {
		return fmt.Errorf("%w: insert failed", domain.ErrStorageBackend)
	}

	item.CreatedAt = f.tick()
	stored := *item
	f.items[item.UUID] = &stored
	return nil
}

func (f *fakeStore) GetByUUID(ctx context.Context, itemUUID uuid.UUID) (*domain.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	stored, ok := f.items[itemUUID]
	if !ok {
		return nil, fmt.Errorf("%w: item %s", domain.ErrNotFound, itemUUID)
	}

	item := *stored
	return &item, nil
}

func (f *fakeStore) ListByFolder(ctx context.Context, folderID int64) ([]domain.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	items := make([]domain.Item, 0)
	for _, stored := range f.items {
		if stored.FolderID == folderID {
			items = append(items, *stored)
		}
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	return items, nil
}

func (f *fakeStore) DeleteWithRelease(ctx context.Context, itemUUID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	stored, ok := f.items[itemUUID]
	if !ok {
		return fmt.Errorf("%w: item %s", domain.ErrNotFound, itemUUID)
	}

	if quota, ok := f.quotas[stored.UploaderID]; ok {
		quota.UsedBytes -= stored.SizeBytes
		if quota.UsedBytes < 0 {
			quota.UsedBytes = 0
		}
	}

	delete(f.items, itemUUID)
	return nil
}

// --- QuotaStore ---

func (f *fakeStore) quotaLocked(ownerID string) *domain.StorageQuota {
	quota, ok := f.quotas[ownerID]
	if !ok {
		quota = &domain.StorageQuota{
			OwnerID:         ownerID,
			TotalBytesLimit: f.defaultLimit,
		}
		f.quotas[ownerID] = quota
	}
	return quota
}

func (f *fakeStore) GetQuota(ctx context.Context, ownerID string) (*domain.StorageQuota, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	quota := *f.quotaLocked(ownerID)
	return &quota, nil
}

func (f *fakeStore) Reserve(ctx context.Context, ownerID string, bytes int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	quota := f.quotaLocked(ownerID)
	if quota.UsedBytes+bytes > quota.TotalBytesLimit {
		return fmt.Errorf("%w: reservation of %d bytes for %s rejected", domain.ErrQuotaExceeded, bytes, ownerID)
	}
	quota.UsedBytes += bytes
	return nil
}

func (f *fakeStore) Release(ctx context.Context, ownerID string, bytes int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.releaseErrs > 0 {
		f.releaseErrs--
		return fmt.Errorf("%w: release failed", domain.ErrStorageBackend)
	}

	quota := f.quotaLocked(ownerID)
	quota.UsedBytes -= bytes
	if quota.UsedBytes < 0 {
		quota.UsedBytes = 0
	}
	return nil
}

func (f *fakeStore) UpdateQuotaLimit(ctx context.Context, ownerID string, newLimit int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.quotaLocked(ownerID).TotalBytesLimit = newLimit
	return nil
}

func (f *fakeStore) usedBytes(ownerID string) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()

	quota, ok := f.quotas[ownerID]
	if !ok {
		return 0
	}
	return quota.UsedBytes
}

// --- CounterStore ---

func (f *fakeStore) Consume(ctx context.Context, ownerID, periodKey string, limit int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := ownerID + "|" + periodKey
	if f.counters[key]+1 > limit {
		return fmt.Errorf("%w: counter %s at limit %d", domain.ErrQuotaExceeded, key, limit)
	}
	f.counters[key]++
	return nil
}

func (f *fakeStore) Get(ctx context.Context, ownerID, periodKey string) (*domain.UsageCounter, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return &domain.UsageCounter{
		OwnerID:   ownerID,
		PeriodKey: periodKey,
		UsedCount: f.counters[ownerID+"|"+periodKey],
	}, nil
}

// itemStoreAdapter разводит имена: у ItemStore метод называется Create,
// как и у FolderStore.
type itemStoreAdapter struct {
	*fakeStore
}

func (a itemStoreAdapter) Create(ctx context.Context, item *domain.Item) error {
	return a.CreateItem(ctx, item)
}

// fakeBlob — память вместо S3.
type fakeBlob struct {
	mu         sync.Mutex
	objects    map[string][]byte
	deleted    []string
	failUpload bool
	failDelete bool
}

func newFakeBlob() *fakeBlob {
	return &fakeBlob{objects: make(map[string][]byte)}
}

func (b *fakeBlob) UploadBytes(ctx context.Context, key string, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.failUpload {
		return fmt.Errorf("upload failed")
	}
	b.objects[key] = append([]byte(nil), data...)
	return nil
}

func (b *fakeBlob) DeleteObject(ctx context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.failDelete {
		return fmt.Errorf("delete failed")
	}
	delete(b.objects, key)
	b.deleted = append(b.deleted, key)
	return nil
}

func (b *fakeBlob) PresignDownload(ctx context.Context, key string, expires time.Duration) (string, error) {
	return "https://blob.test/" + key, nil
}

func (b *fakeBlob) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.objects)
}
