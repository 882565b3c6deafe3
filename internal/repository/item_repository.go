package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"practicevault/internal/domain"
)

type ItemRepository struct {
	db *sqlx.DB
}

func NewItemRepository(db *sqlx.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

func (r *ItemRepository) Create(ctx context.Context, item *domain.Item) error {
	query := `
        INSERT INTO folder_items (uuid, folder_id, uploader_id, title, file_name, mime_type, blob_key, size_bytes)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query,
		item.UUID,
		item.FolderID,
		item.UploaderID,
		item.Title,
		item.FileName,
		item.MIMEType,
		item.BlobKey,
		item.SizeBytes,
	).Scan(&item.CreatedAt)

	if err != nil {
		return fmt.Errorf("%w: failed to create item: %v", domain.ErrStorageBackend, err)
	}

	return nil
}

func (r *ItemRepository) GetByUUID(ctx context.Context, itemUUID uuid.UUID) (*domain.Item, error) {
	var item domain.Item
	err := r.db.GetContext(ctx, &item,
		`SELECT * FROM folder_items WHERE uuid = $1`,
		itemUUID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: item %s", domain.ErrNotFound, itemUUID)
		}
		return nil, fmt.Errorf("%w: failed to get item: %v", domain.ErrStorageBackend, err)
	}

	return &item, nil
}

// ListByFolder возвращает файлы папки в порядке добавления.
func (r *ItemRepository) ListByFolder(ctx context.Context, folderID int64) ([]domain.Item, error) {
	items := make([]domain.Item, 0)
	query := `
        SELECT * FROM folder_items
        WHERE folder_id = $1
        ORDER BY created_at ASC`

	err := r.db.SelectContext(ctx, &items, query, folderID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list items: %v", domain.ErrStorageBackend, err)
	}

	return items, nil
}

// DeleteWithRelease удаляет запись файла и возвращает квоту загрузившему
// одной транзакцией: наполовину примененное удаление — нарушение
// инварианта, такого состояния в базе быть не должно.
func (r *ItemRepository) DeleteWithRelease(ctx context.Context, itemUUID uuid.UUID) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var uploaderID string
	var sizeBytes int64
	err = tx.QueryRowContext(ctx, `
        DELETE FROM folder_items WHERE uuid = $1
        RETURNING uploader_id, size_bytes
    `, itemUUID).Scan(&uploaderID, &sizeBytes)
	if err != nil {
		if err == sql.ErrNoRows {
			return fmt.Errorf("%w: item %s", domain.ErrNotFound, itemUUID)
		}
		return fmt.Errorf("%w: failed to delete item: %v", domain.ErrStorageBackend, err)
	}

	var before int64
	err = tx.QueryRowContext(ctx, `
        UPDATE storage_quotas sq
        SET used_bytes = GREATEST(0, sq.used_bytes - $1),
            updated_at = CURRENT_TIMESTAMP
        FROM storage_quotas old
        WHERE old.id = sq.id AND sq.owner_id = $2
        RETURNING old.used_bytes
    `, sizeBytes, uploaderID).Scan(&before)
	if err != nil {
		if err == sql.ErrNoRows {
			log.Printf("[ItemRepository] delete of %s: no quota row for uploader %s", itemUUID, uploaderID)
		} else {
			return fmt.Errorf("%w: failed to release quota: %v", domain.ErrStorageBackend, err)
		}
	} else if before < sizeBytes {
		log.Printf("[ItemRepository] %v: release of %d bytes for %s would go negative (had %d), clamped",
			domain.ErrInvariantViolation, sizeBytes, uploaderID, before)
	}

	return tx.Commit()
}
