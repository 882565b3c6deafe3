package service

import (
	"context"
	"fmt"

	"practicevault/internal/domain"
)

type StorageQuotaService struct {
	quotaRepo QuotaStore
}

func NewStorageQuotaService(quotaRepo QuotaStore) *StorageQuotaService {
	return &StorageQuotaService{
		quotaRepo: quotaRepo,
	}
}

func (s *StorageQuotaService) GetQuotaInfo(ctx context.Context, ownerID string) (*domain.QuotaInfo, error) {
	quota, err := s.quotaRepo.GetQuota(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get quota: %w", err)
	}

	availableSpace := quota.TotalBytesLimit - quota.UsedBytes
	usagePercent := float64(quota.UsedBytes) / float64(quota.TotalBytesLimit) * 100

	return &domain.QuotaInfo{
		TotalSpace:     quota.TotalBytesLimit,
		UsedSpace:      quota.UsedBytes,
		AvailableSpace: availableSpace,
		UsagePercent:   usagePercent,
	}, nil
}

// Reserve резервирует bytes у пользователя; отказ — ErrQuotaExceeded.
func (s *StorageQuotaService) Reserve(ctx context.Context, ownerID string, bytes int64) error {
	return s.quotaRepo.Reserve(ctx, ownerID, bytes)
}

// Release возвращает bytes пользователю.
func (s *StorageQuotaService) Release(ctx context.Context, ownerID string, bytes int64) error {
	return s.quotaRepo.Release(ctx, ownerID, bytes)
}

func (s *StorageQuotaService) UpdateQuotaLimit(ctx context.Context, ownerID string, newLimit int64) error {
	if newLimit < 0 {
		return fmt.Errorf("new quota limit cannot be negative")
	}
	return s.quotaRepo.UpdateQuotaLimit(ctx, ownerID, newLimit)
}
