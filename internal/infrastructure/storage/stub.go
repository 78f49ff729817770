package storage

import (
	"context"
	"time"

	groupbuyapp "github.com/groupbuy/backend/internal/application/groupbuy"
)

// DisabledImageStorage is used when object storage is switched off.
// Every upload request fails with STORAGE_UNAVAILABLE.
type DisabledImageStorage struct{}

var _ groupbuyapp.ImageStorage = DisabledImageStorage{}

// GenerateUploadURL always fails
func (DisabledImageStorage) GenerateUploadURL(context.Context, string, string, time.Duration) (string, time.Time, error) {
	return "", time.Time{}, groupbuyapp.ErrStorageUnavailable
}

// PublicURL returns an empty string
func (DisabledImageStorage) PublicURL(string) string {
	return ""
}
