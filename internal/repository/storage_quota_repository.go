package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"

	"practicevault/internal/domain"
)

type StorageQuotaRepository struct {
	db           *sqlx.DB
	defaultLimit int64
}

func NewStorageQuotaRepository(db *sqlx.DB, defaultLimit int64) *StorageQuotaRepository {
	return &StorageQuotaRepository{db: db, defaultLimit: defaultLimit}
}

func (r *StorageQuotaRepository) GetQuota(ctx context.Context, ownerID string) (*domain.StorageQuota, error) {
	var quota domain.StorageQuota

	err := r.db.GetContext(ctx, &quota,
		`SELECT * FROM storage_quotas WHERE owner_id = $1`,
		ownerID)

	if err != nil {
		// Если квота не найдена, создаем новую с дефолтным лимитом
		if err == sql.ErrNoRows {
			quota = domain.StorageQuota{
				OwnerID:         ownerID,
				TotalBytesLimit: r.defaultLimit,
				UsedBytes:       0,
			}

			err = r.create(ctx, &quota)
			if err != nil {
				return nil, fmt.Errorf("failed to create quota: %w", err)
			}
			return &quota, nil
		}
		return nil, fmt.Errorf("%w: failed to get quota: %v", domain.ErrStorageBackend, err)
	}

	return &quota, nil
}

func (r *StorageQuotaRepository) create(ctx context.Context, quota *domain.StorageQuota) error {
	query := `
        INSERT INTO storage_quotas (owner_id, total_bytes_limit, used_bytes)
        VALUES ($1, $2, $3)
        ON CONFLICT (owner_id) DO UPDATE SET updated_at = storage_quotas.updated_at
        RETURNING id, total_bytes_limit, used_bytes, created_at, updated_at`

	return r.db.QueryRowContext(ctx, query,
		quota.OwnerID,
		quota.TotalBytesLimit,
		quota.UsedBytes,
	).Scan(&quota.ID, &quota.TotalBytesLimit, &quota.UsedBytes, &quota.CreatedAt, &quota.UpdatedAt)
}

// Reserve атомарно резервирует bytes у пользователя. Проверка лимита и
// инкремент выполняются одним условным UPDATE на стороне базы: отдельное
// чтение с последующей записью — гонка, при которой параллельные загрузки
// вместе пробивают лимит.
func (r *StorageQuotaRepository) Reserve(ctx context.Context, ownerID string, bytes int64) error {
	if bytes < 0 {
		return fmt.Errorf("reserve size cannot be negative: %d", bytes)
	}

	// Гарантируем наличие строки квоты перед условным инкрементом
	_, err := r.db.ExecContext(ctx, `
        INSERT INTO storage_quotas (owner_id, total_bytes_limit, used_bytes)
        VALUES ($1, $2, 0)
        ON CONFLICT (owner_id) DO NOTHING`,
		ownerID, r.defaultLimit)
	if err != nil {
		return fmt.Errorf("%w: failed to ensure quota row: %v", domain.ErrStorageBackend, err)
	}

	query := `
        UPDATE storage_quotas
        SET used_bytes = used_bytes + $1,
            updated_at = CURRENT_TIMESTAMP
        WHERE owner_id = $2
        AND used_bytes + $1 <= total_bytes_limit`

	result, err := r.db.ExecContext(ctx, query, bytes, ownerID)
	if err != nil {
		return fmt.Errorf("%w: failed to reserve quota: %v", domain.ErrStorageBackend, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("%w: reservation of %d bytes for %s rejected", domain.ErrQuotaExceeded, bytes, ownerID)
	}

	return nil
}

// Release атомарно возвращает bytes пользователю. Значение ниже нуля —
// нарушение инварианта: логируем и прижимаем к нулю, отрицательный
// баланс наружу не отдаем.
func (r *StorageQuotaRepository) Release(ctx context.Context, ownerID string, bytes int64) error {
	if bytes < 0 {
		return fmt.Errorf("release size cannot be negative: %d", bytes)
	}

	query := `
        UPDATE storage_quotas sq
        SET used_bytes = GREATEST(0, sq.used_bytes - $1),
            updated_at = CURRENT_TIMESTAMP
        FROM storage_quotas old
        WHERE old.id = sq.id AND sq.owner_id = $2
        RETURNING old.used_bytes`

	var before int64
	err := r.db.QueryRowContext(ctx, query, bytes, ownerID).Scan(&before)
	if err != nil {
		if err == sql.ErrNoRows {
			log.Printf("[QuotaRepository] release for unknown owner %s (%d bytes)", ownerID, bytes)
			return nil
		}
		return fmt.Errorf("%w: failed to release quota: %v", domain.ErrStorageBackend, err)
	}

	if before < bytes {
		log.Printf("[QuotaRepository] %v: release of %d bytes for %s would go negative (had %d), clamped to zero",
			domain.ErrInvariantViolation, bytes, ownerID, before)
	}

	return nil
}

func (r *StorageQuotaRepository) UpdateQuotaLimit(ctx context.Context, ownerID string, newLimit int64) error {
	query := `
        UPDATE storage_quotas
        SET total_bytes_limit = $1,
            updated_at = CURRENT_TIMESTAMP
        WHERE owner_id = $2`

	result, err := r.db.ExecContext(ctx, query, newLimit, ownerID)
	if err != nil {
		return fmt.Errorf("failed to update quota limit: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("%w: quota for owner %s", domain.ErrNotFound, ownerID)
	}

	return nil
}
