package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lewlew/lewlew-server/internal/dto"
	"github.com/lewlew/lewlew-server/internal/models"
)

// GormReportStore is the Postgres-backed ReportStore.
type GormReportStore struct {
	db *gorm.DB
}

func NewGormReportStore(db *gorm.DB) *GormReportStore {
	return &GormReportStore{db: db}
}

func (s *GormReportStore) Create(ctx context.Context, report *models.Report) error {
	if err := s.db.WithContext(ctx).Create(report).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateReport
		}
		return fmt.Errorf("create report: %w", err)
	}
	return nil
}

func (s *GormReportStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Report, error) {
	var report models.Report
	if err := s.db.WithContext(ctx).First(&report, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReportNotFound
		}
		return nil, fmt.Errorf("get report: %w", err)
	}
	return &report, nil
}

func (s *GormReportStore) Exists(ctx context.Context, postID, reporterID uuid.UUID) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Report{}).
		Where("post_id = ? AND reporter_id = ?", postID, reporterID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check report exists: %w", err)
	}
	return count > 0, nil
}

func (s *GormReportStore) Update(ctx context.Context, report *models.Report) error {
	if err := s.db.WithContext(ctx).Save(report).Error; err != nil {
		return fmt.Errorf("update report: %w", err)
	}
	return nil
}

func (s *GormReportStore) TransitionFromPending(ctx context.Context, reportID uuid.UUID, updates map[string]interface{}) (bool, error) {
	res := s.db.WithContext(ctx).Model(&models.Report{}).
		Where("id = ? AND status = ?", reportID, models.ReportStatusPending).
		Updates(updates)
	if res.Error != nil {
		return false, fmt.Errorf("transition report: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *GormReportStore) List(ctx context.Context, status models.ReportStatus, reason models.ReportReason, limit, offset int) ([]models.Report, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.Report{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if reason != "" {
		q = q.Where("reason = ?", reason)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count reports: %w", err)
	}

	var reports []models.Report
	err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&reports).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list reports: %w", err)
	}
	return reports, total, nil
}

func (s *GormReportStore) ListByReporter(ctx context.Context, reporterID uuid.UUID, limit, offset int) ([]models.Report, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.Report{}).Where("reporter_id = ?", reporterID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count reporter reports: %w", err)
	}

	var reports []models.Report
	err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&reports).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list reporter reports: %w", err)
	}
	return reports, total, nil
}

func (s *GormReportStore) Stats(ctx context.Context) (*dto.ReportStatsResponse, error) {
	stats := &dto.ReportStatsResponse{
		ByStatus: make(map[string]int64),
		ByReason: make(map[string]int64),
	}

	if err := s.db.WithContext(ctx).Model(&models.Report{}).Count(&stats.Total).Error; err != nil {
		return nil, fmt.Errorf("count reports: %w", err)
	}

	type bucket struct {
		Key   string
		Count int64
	}
	var statusBuckets []bucket
	err := s.db.WithContext(ctx).Model(&models.Report{}).
		Select("status AS key, COUNT(*) AS count").Group("status").Scan(&statusBuckets).Error
	if err != nil {
		return nil, fmt.Errorf("status buckets: %w", err)
	}
	for _, b := range statusBuckets {
		stats.ByStatus[b.Key] = b.Count
	}

	var reasonBuckets []bucket
	err = s.db.WithContext(ctx).Model(&models.Report{}).
		Select("reason AS key, COUNT(*) AS count").Group("reason").Scan(&reasonBuckets).Error
	if err != nil {
		return nil, fmt.Errorf("reason buckets: %w", err)
	}
	for _, b := range reasonBuckets {
		stats.ByReason[b.Key] = b.Count
	}

	err = s.db.WithContext(ctx).Model(&models.Report{}).
		Where("auto_resolved = true").Count(&stats.AutoResolved).Error
	if err != nil {
		return nil, fmt.Errorf("count auto-resolved: %w", err)
	}

	err = s.db.WithContext(ctx).Model(&models.Report{}).
		Where("created_at > ?", time.Now().Add(-24*time.Hour)).Count(&stats.Last24Hours).Error
	if err != nil {
		return nil, fmt.Errorf("count recent reports: %w", err)
	}
	return stats, nil
}
