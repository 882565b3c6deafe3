// storage.go
package s3

import (
	"context"
	"time"
)

// Storage определяет интерфейс для работы с S3-совместимым хранилищем.
// Скачивание идет только через временные ссылки, поэтому чтения объектов
// здесь нет.
type Storage interface {
	UploadBytes(ctx context.Context, key string, data []byte) error
	DeleteObject(ctx context.Context, key string) error
	PresignDownload(ctx context.Context, key string, expires time.Duration) (string, error)
}
