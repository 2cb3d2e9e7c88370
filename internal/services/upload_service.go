package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/lewlew/lewlew-server/internal/config"
	"github.com/lewlew/lewlew-server/internal/models"
)

const maxUploadBytes = 10 << 20 // 10 MB

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

// UploadService pushes images to Cloudinary and records each upload so
// orphaned assets can be traced back.
type UploadService struct {
	db  *gorm.DB
	cld *cloudinary.Cloudinary
}

func NewUploadService(db *gorm.DB, cfg *config.Config) (*UploadService, error) {
	if cfg.CloudinaryURL == "" {
		return nil, errors.New("CLOUDINARY_URL not configured")
	}
	cld, err := cloudinary.NewFromURL(cfg.CloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("init cloudinary: %w", err)
	}
	return &UploadService{db: db, cld: cld}, nil
}

// UploadImage stores one image for a user and returns the bookkeeping row
// with the hosted URL.
func (s *UploadService) UploadImage(ctx context.Context, userID uuid.UUID, header *multipart.FileHeader) (*models.Upload, error) {
	if header.Size > maxUploadBytes {
		return nil, validationErr("image exceeds 10 MB limit")
	}
	mimeType := header.Header.Get("Content-Type")
	if !allowedImageTypes[mimeType] {
		return nil, validationErr(fmt.Sprintf("unsupported content type %q", mimeType))
	}

	file, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer file.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(file); err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}

	publicID := fmt.Sprintf("user_%s_%d", userID, time.Now().Unix())
	uploadCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	result, err := s.cld.Upload.Upload(uploadCtx, bytes.NewReader(buf.Bytes()), uploader.UploadParams{
		Folder:   "lewlew/posts",
		PublicID: publicID,
	})
	if err != nil {
		return nil, fmt.Errorf("cloudinary upload: %w", err)
	}

	upload := models.Upload{
		ID:           uuid.New(),
		UserID:       userID,
		URL:          result.SecureURL,
		Filename:     result.PublicID,
		OriginalName: header.Filename,
		MimeType:     mimeType,
		Size:         header.Size,
		Status:       "stored",
		Metadata:     datatypes.JSON([]byte(fmt.Sprintf(`{"format":%q,"width":%d,"height":%d}`, result.Format, result.Width, result.Height))),
	}
	if err := s.db.WithContext(ctx).Create(&upload).Error; err != nil {
		return nil, fmt.Errorf("record upload: %w", err)
	}
	return &upload, nil
}

func (s *UploadService) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Upload, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	q := s.db.WithContext(ctx).Model(&models.Upload{}).Where("user_id = ?", userID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count uploads: %w", err)
	}

	var uploads []models.Upload
	err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&uploads).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list uploads: %w", err)
	}
	return uploads, total, nil
}

// DeleteImage removes a hosted asset. Only the uploader may delete it.
func (s *UploadService) DeleteImage(ctx context.Context, userID, uploadID uuid.UUID) error {
	var upload models.Upload
	if err := s.db.WithContext(ctx).First(&upload, "id = ?", uploadID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrForbidden
		}
		return fmt.Errorf("get upload: %w", err)
	}
	if upload.UserID != userID {
		return ErrForbidden
	}

	publicID := strings.TrimSuffix(upload.Filename, "/")
	delCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if _, err := s.cld.Upload.Destroy(delCtx, uploader.DestroyParams{PublicID: publicID}); err != nil {
		return fmt.Errorf("cloudinary destroy: %w", err)
	}

	return s.db.WithContext(ctx).Delete(&upload).Error
}
