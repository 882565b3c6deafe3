package domain

import "time"

type StorageQuota struct {
	ID              int64     `json:"id" db:"id"`
	OwnerID         string    `json:"owner_id" db:"owner_id"`
	TotalBytesLimit int64     `json:"total_bytes_limit" db:"total_bytes_limit"`
	UsedBytes       int64     `json:"used_bytes" db:"used_bytes"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

type QuotaInfo struct {
	TotalSpace     int64   `json:"total_space"`
	UsedSpace      int64   `json:"used_space"`
	AvailableSpace int64   `json:"available_space"`
	UsagePercent   float64 `json:"usage_percent"`
}

// UsageCounter — счетчик с лимитом по произвольному периоду.
// Для дневного лимита PeriodKey = дата в формате YYYY-MM-DD,
// сброс происходит сам собой: каждый день — отдельный ключ.
type UsageCounter struct {
	OwnerID   string    `json:"owner_id" db:"owner_id"`
	PeriodKey string    `json:"period_key" db:"period_key"`
	UsedCount int64     `json:"used_count" db:"used_count"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
