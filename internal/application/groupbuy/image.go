package groupbuy

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/groupbuy/backend/internal/domain/shared"
)

// ImageStorage issues upload URLs on object storage.
// It is implemented by the infrastructure layer.
type ImageStorage interface {
	// GenerateUploadURL returns a presigned PUT URL and its expiry
	GenerateUploadURL(ctx context.Context, storageKey, contentType string, expiresIn time.Duration) (string, time.Time, error)
	// PublicURL is where the object is readable once uploaded
	PublicURL(storageKey string) string
}

// ErrStorageUnavailable is returned when image storage is not configured
var ErrStorageUnavailable = shared.NewDomainError("STORAGE_UNAVAILABLE", "Image storage is not available")

// allowedImageTypes maps accepted content types to file extensions.
// SVG is excluded because it can carry scripts.
var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

const uploadURLExpiry = 15 * time.Minute

// RequestImageUpload returns a presigned URL the client uploads the image to,
// and the public URL to put into image_url afterwards.
func (s *GroupBuyService) RequestImageUpload(ctx context.Context, userID uuid.UUID, input ImageUploadInput) (*ImageUploadResult, error) {
	if s.storage == nil {
		return nil, ErrStorageUnavailable
	}
	contentType := strings.ToLower(strings.TrimSpace(input.ContentType))
	ext, ok := allowedImageTypes[contentType]
	if !ok {
		return nil, shared.NewDomainError("INVALID_CONTENT_TYPE",
			fmt.Sprintf("Content type '%s' is not allowed. Use JPEG, PNG, WebP or GIF", input.ContentType))
	}
	if ext == ".jpg" && strings.EqualFold(filepath.Ext(input.Filename), ".jpeg") {
		ext = ".jpeg"
	}

	key := fmt.Sprintf("group-buys/%s/%s%s", userID, uuid.New(), ext)
	uploadURL, expiresAt, err := s.storage.GenerateUploadURL(ctx, key, contentType, uploadURLExpiry)
	if err != nil {
		return nil, err
	}
	return &ImageUploadResult{
		UploadURL:  uploadURL,
		PublicURL:  s.storage.PublicURL(key),
		StorageKey: key,
		ExpiresAt:  expiresAt,
	}, nil
}
