package catalog

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/seafresh/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ObjectStorageService is the port for the image bucket
type ObjectStorageService interface {
	// Upload stores data under storageKey
	Upload(ctx context.Context, storageKey string, data []byte, contentType string) error

	// GenerateUploadURL generates a presigned URL for uploading a file
	// Returns the upload URL and expiration time
	GenerateUploadURL(ctx context.Context, storageKey, contentType string, expiresIn time.Duration) (string, time.Time, error)

	// DeleteObject deletes an object from storage
	DeleteObject(ctx context.Context, storageKey string) error

	// ObjectExists checks if an object exists in storage
	ObjectExists(ctx context.Context, storageKey string) (bool, error)

	// PublicURL returns the URL customers load the object from
	PublicURL(storageKey string) string
}

// UploadServiceConfig holds configuration for the upload service
type UploadServiceConfig struct {
	MaxImageBytes   int64
	UploadURLExpiry time.Duration
	KeyPrefix       string
}

// DefaultUploadServiceConfig returns the default upload limits
func DefaultUploadServiceConfig() UploadServiceConfig {
	return UploadServiceConfig{
		MaxImageBytes:   5 << 20,
		UploadURLExpiry: 15 * time.Minute,
		KeyPrefix:       "products",
	}
}

var imageExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

// UploadService stores product images
type UploadService struct {
	storage ObjectStorageService
	config  UploadServiceConfig
	logger  *zap.Logger
	now     func() time.Time
}

// NewUploadService creates a new UploadService
func NewUploadService(storage ObjectStorageService, config UploadServiceConfig, logger *zap.Logger) *UploadService {
	if config.MaxImageBytes <= 0 {
		config.MaxImageBytes = DefaultUploadServiceConfig().MaxImageBytes
	}
	if config.UploadURLExpiry <= 0 {
		config.UploadURLExpiry = DefaultUploadServiceConfig().UploadURLExpiry
	}
	if config.KeyPrefix == "" {
		config.KeyPrefix = DefaultUploadServiceConfig().KeyPrefix
	}
	return &UploadService{
		storage: storage,
		config:  config,
		logger:  logger,
		now:     time.Now,
	}
}

// MaxImageBytes is the largest accepted image
func (s *UploadService) MaxImageBytes() int64 {
	return s.config.MaxImageBytes
}

// UploadImage validates the file contents and stores it
func (s *UploadService) UploadImage(ctx context.Context, data []byte) (*UploadResponse, error) {
	if len(data) == 0 {
		return nil, shared.NewDomainError("INVALID_FILE", "File is empty")
	}
	if int64(len(data)) > s.config.MaxImageBytes {
		return nil, shared.NewDomainError("FILE_TOO_LARGE",
			fmt.Sprintf("Image cannot exceed %d MB", s.config.MaxImageBytes>>20))
	}

	contentType := http.DetectContentType(data)
	ext, ok := imageExtensions[contentType]
	if !ok {
		return nil, shared.NewDomainError("UNSUPPORTED_FILE_TYPE", "Only JPEG, PNG and WebP images are allowed")
	}

	key := s.newKey(ext)
	if err := s.storage.Upload(ctx, key, data, contentType); err != nil {
		return nil, fmt.Errorf("upload image: %w", err)
	}

	s.logger.Info("product image uploaded",
		zap.String("key", key),
		zap.Int("size", len(data)),
		zap.String("content_type", contentType))

	return &UploadResponse{
		Key:         key,
		URL:         s.storage.PublicURL(key),
		ContentType: contentType,
		Size:        int64(len(data)),
	}, nil
}

// PresignUpload returns a URL the admin UI can PUT an image to
func (s *UploadService) PresignUpload(ctx context.Context, req PresignRequest) (*PresignResponse, error) {
	ext, ok := imageExtensions[req.ContentType]
	if !ok {
		return nil, shared.NewDomainError("UNSUPPORTED_FILE_TYPE", "Only JPEG, PNG and WebP images are allowed")
	}
	key := s.newKey(ext)
	url, expiresAt, err := s.storage.GenerateUploadURL(ctx, key, req.ContentType, s.config.UploadURLExpiry)
	if err != nil {
		return nil, fmt.Errorf("presign upload: %w", err)
	}
	return &PresignResponse{
		Key:       key,
		UploadURL: url,
		PublicURL: s.storage.PublicURL(key),
		ExpiresAt: expiresAt,
	}, nil
}

// DeleteImage removes an uploaded image. Only keys under the product prefix may be deleted.
func (s *UploadService) DeleteImage(ctx context.Context, key string) error {
	key = strings.TrimPrefix(strings.TrimSpace(key), "/")
	if key == "" || strings.Contains(key, "..") || !strings.HasPrefix(key, s.config.KeyPrefix+"/") {
		return shared.NewDomainError("INVALID_KEY", "Invalid image key")
	}
	exists, err := s.storage.ObjectExists(ctx, key)
	if err != nil {
		return fmt.Errorf("check image: %w", err)
	}
	if !exists {
		return shared.ErrNotFound
	}
	if err := s.storage.DeleteObject(ctx, key); err != nil {
		return fmt.Errorf("delete image: %w", err)
	}
	s.logger.Info("product image deleted", zap.String("key", key))
	return nil
}

func (s *UploadService) newKey(ext string) string {
	now := s.now().UTC()
	return fmt.Sprintf("%s/%04d/%02d/%s.%s", s.config.KeyPrefix, now.Year(), int(now.Month()), uuid.New().String(), ext)
}
