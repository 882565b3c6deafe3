package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"practicevault/internal/domain"
)

type FolderRepository struct {
	db *sqlx.DB
}

func NewFolderRepository(db *sqlx.DB) *FolderRepository {
	return &FolderRepository{db: db}
}

// Create создает папку и членство владельца одной транзакцией:
// папка без владельца в составе участников существовать не должна.
func (r *FolderRepository) Create(ctx context.Context, folder *domain.Folder) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
        INSERT INTO folders (name, owner_id, is_public)
        VALUES ($1, $2, $3)
        RETURNING id, created_at, updated_at`

	err = tx.QueryRowContext(
		ctx,
		query,
		folder.Name,
		folder.OwnerID,
		folder.IsPublic,
	).Scan(&folder.ID, &folder.CreatedAt, &folder.UpdatedAt)

	if err != nil {
		return fmt.Errorf("%w: failed to create folder: %v", domain.ErrStorageBackend, err)
	}

	_, err = tx.ExecContext(ctx, `
        INSERT INTO folder_members (folder_id, user_id)
        VALUES ($1, $2)`,
		folder.ID, folder.OwnerID)
	if err != nil {
		return fmt.Errorf("%w: failed to add owner membership: %v", domain.ErrStorageBackend, err)
	}

	folder.MemberIDs = []string{folder.OwnerID}

	return tx.Commit()
}

func (r *FolderRepository) GetByID(ctx context.Context, id int64) (*domain.Folder, error) {
	query := `
        SELECT
            f.id, f.name, f.owner_id, f.is_public, f.created_at, f.updated_at,
            array_agg(fm.user_id ORDER BY fm.joined_at) AS member_ids
        FROM folders f
        JOIN folder_members fm ON fm.folder_id = f.id
        WHERE f.id = $1
        GROUP BY f.id`

	var folder domain.Folder
	var members pq.StringArray
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&folder.ID,
		&folder.Name,
		&folder.OwnerID,
		&folder.IsPublic,
		&folder.CreatedAt,
		&folder.UpdatedAt,
		&members,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: folder %d", domain.ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: failed to get folder: %v", domain.ErrStorageBackend, err)
	}

	folder.MemberIDs = members
	return &folder, nil
}

// Rename обновляет имя папки. Проверка прав выполняется в сервисе,
// owner_id в WHERE — вторая линия обороны.
func (r *FolderRepository) Rename(ctx context.Context, folderID int64, ownerID, newName string) error {
	query := `
        UPDATE folders
        SET name = $1, updated_at = CURRENT_TIMESTAMP
        WHERE id = $2 AND owner_id = $3`

	result, err := r.db.ExecContext(ctx, query, newName, folderID, ownerID)
	if err != nil {
		return fmt.Errorf("%w: failed to rename folder: %v", domain.ErrStorageBackend, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("%w: folder %d", domain.ErrNotFound, folderID)
	}

	return nil
}

// AddMember добавляет участника. Повторное вступление — no-op, не ошибка.
func (r *FolderRepository) AddMember(ctx context.Context, folderID int64, userID string) error {
	query := `
        INSERT INTO folder_members (folder_id, user_id)
        VALUES ($1, $2)
        ON CONFLICT (folder_id, user_id) DO NOTHING`

	_, err := r.db.ExecContext(ctx, query, folderID, userID)
	if err != nil {
		return fmt.Errorf("%w: failed to add member: %v", domain.ErrStorageBackend, err)
	}

	return nil
}

// ListForUser возвращает папки, где пользователь состоит участником,
// новые сверху.
func (r *FolderRepository) ListForUser(ctx context.Context, userID string) ([]domain.Folder, error) {
	query := `
        SELECT
            f.id, f.name, f.owner_id, f.is_public, f.created_at, f.updated_at,
            array_agg(all_m.user_id ORDER BY all_m.joined_at) AS member_ids
        FROM folders f
        JOIN folder_members fm ON fm.folder_id = f.id AND fm.user_id = $1
        JOIN folder_members all_m ON all_m.folder_id = f.id
        GROUP BY f.id
        ORDER BY f.created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list folders: %v", domain.ErrStorageBackend, err)
	}
	defer rows.Close()

	folders := make([]domain.Folder, 0)
	for rows.Next() {
		var folder domain.Folder
		var members pq.StringArray
		if err := rows.Scan(
			&folder.ID,
			&folder.Name,
			&folder.OwnerID,
			&folder.IsPublic,
			&folder.CreatedAt,
			&folder.UpdatedAt,
			&members,
		); err != nil {
			return nil, fmt.Errorf("failed to scan folder: %w", err)
		}
		folder.MemberIDs = members
		folders = append(folders, folder)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: failed to iterate folders: %v", domain.ErrStorageBackend, err)
	}

	return folders, nil
}

// CascadeDelete сносит папку целиком одной транзакцией: возврат квоты
// каждому загрузившему, записи файлов, членства и сама папка. Наблюдатель
// никогда не увидит живую запись файла при мертвой папке и наоборот,
// а квота возвращается ровно один раз на файл.
func (r *FolderRepository) CascadeDelete(ctx context.Context, folderID int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Суммы возврата считаем по состоянию внутри транзакции, а не по
	// снимку, который видел вызывающий: файлы могли добавиться.
	var releases []struct {
		UploaderID string `db:"uploader_id"`
		TotalBytes int64  `db:"total_bytes"`
	}
	err = tx.SelectContext(ctx, &releases, `
        SELECT uploader_id, COALESCE(SUM(size_bytes), 0) AS total_bytes
        FROM folder_items
        WHERE folder_id = $1
        GROUP BY uploader_id
    `, folderID)
	if err != nil {
		return fmt.Errorf("%w: failed to sum item sizes: %v", domain.ErrStorageBackend, err)
	}

	for _, rel := range releases {
		res, err := tx.ExecContext(ctx, `
            UPDATE storage_quotas
            SET used_bytes = GREATEST(0, used_bytes - $1),
                updated_at = CURRENT_TIMESTAMP
            WHERE owner_id = $2
        `, rel.TotalBytes, rel.UploaderID)
		if err != nil {
			return fmt.Errorf("%w: failed to release quota for %s: %v", domain.ErrStorageBackend, rel.UploaderID, err)
		}
		rows, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get affected rows: %w", err)
		}
		if rows == 0 {
			log.Printf("[FolderRepository] cascade delete: no quota row for uploader %s (%d bytes)",
				rel.UploaderID, rel.TotalBytes)
		}
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM folder_items WHERE folder_id = $1`, folderID); err != nil {
		return fmt.Errorf("%w: failed to delete items: %v", domain.ErrStorageBackend, err)
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM folder_members WHERE folder_id = $1`, folderID); err != nil {
		return fmt.Errorf("%w: failed to delete memberships: %v", domain.ErrStorageBackend, err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM folders WHERE id = $1`, folderID)
	if err != nil {
		return fmt.Errorf("%w: failed to delete folder: %v", domain.ErrStorageBackend, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: folder %d", domain.ErrNotFound, folderID)
	}

	return tx.Commit()
}
