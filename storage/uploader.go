package storage

import (
	"context"
	"time"
)

// UploadURLResult — подписанный URL для прямой загрузки клиентом.
type UploadURLResult struct {
	UploadURL string    `json:"uploadUrl"`
	PublicURL string    `json:"publicUrl"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type UploadSigner interface {
	// PresignUpload выдаёт time-limited URL для PUT по ключу key.
	PresignUpload(ctx context.Context, key, contentType string, ttl time.Duration) (*UploadURLResult, error)

	GetPublicURL(key string) string
}
