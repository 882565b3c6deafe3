package domain

import (
	"github.com/google/uuid"
	"time"
)

// Item представляет один загруженный файл внутри папки.
// SizeBytes фиксируется при создании и не меняется.
type Item struct {
	UUID       uuid.UUID `json:"uuid" db:"uuid"`
	FolderID   int64     `json:"folder_id" db:"folder_id"`
	UploaderID string    `json:"uploader_id" db:"uploader_id"`
	Title      string    `json:"title" db:"title"`
	FileName   string    `json:"file_name" db:"file_name"`
	MIMEType   string    `json:"mime_type" db:"mime_type"`
	BlobKey    string    `json:"-" db:"blob_key"`
	SizeBytes  int64     `json:"size_bytes" db:"size_bytes"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// ItemUpload описывает входные данные загрузки.
type ItemUpload struct {
	Title    string
	FileName string
	MIMEType string
	Data     []byte
}
