package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"practicevault/internal/domain"
)

// UsageCounterRepository — та же абстракция, что и квота хранилища,
// но с ключом (владелец, период) и фиксированным лимитом на период.
// Дневной счетчик запросов помощи сбрасывается сам: каждый день —
// новый period_key.
type UsageCounterRepository struct {
	db *sqlx.DB
}

func NewUsageCounterRepository(db *sqlx.DB) *UsageCounterRepository {
	return &UsageCounterRepository{db: db}
}

// Consume атомарно списывает одну единицу в пределах limit.
// Проверка и инкремент — один условный UPDATE, как и у квоты.
func (r *UsageCounterRepository) Consume(ctx context.Context, ownerID, periodKey string, limit int64) error {
	_, err := r.db.ExecContext(ctx, `
        INSERT INTO usage_counters (owner_id, period_key, used_count)
        VALUES ($1, $2, 0)
        ON CONFLICT (owner_id, period_key) DO NOTHING`,
		ownerID, periodKey)
	if err != nil {
		return fmt.Errorf("%w: failed to ensure counter row: %v", domain.ErrStorageBackend, err)
	}

	result, err := r.db.ExecContext(ctx, `
        UPDATE usage_counters
        SET used_count = used_count + 1,
            updated_at = CURRENT_TIMESTAMP
        WHERE owner_id = $1
        AND period_key = $2
        AND used_count + 1 <= $3`,
		ownerID, periodKey, limit)
	if err != nil {
		return fmt.Errorf("%w: failed to consume counter: %v", domain.ErrStorageBackend, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("%w: counter %s/%s at limit %d", domain.ErrQuotaExceeded, ownerID, periodKey, limit)
	}

	return nil
}

func (r *UsageCounterRepository) Get(ctx context.Context, ownerID, periodKey string) (*domain.UsageCounter, error) {
	counter := domain.UsageCounter{
		OwnerID:   ownerID,
		PeriodKey: periodKey,
	}

	err := r.db.GetContext(ctx, &counter, `
        SELECT * FROM usage_counters
        WHERE owner_id = $1 AND period_key = $2`,
		ownerID, periodKey)
	if err != nil {
		// Отсутствие строки — ноль израсходовано
		if err == sql.ErrNoRows {
			return &counter, nil
		}
		return nil, fmt.Errorf("%w: failed to get counter: %v", domain.ErrStorageBackend, err)
	}

	return &counter, nil
}
