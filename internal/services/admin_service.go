package services

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/lewlew/lewlew-server/internal/dto"
	"github.com/lewlew/lewlew-server/internal/models"
)

type AdminService struct {
	db      *gorm.DB
	reports *ReportService
}

func NewAdminService(db *gorm.DB, reports *ReportService) *AdminService {
	return &AdminService{db: db, reports: reports}
}

// Dashboard aggregates platform counters for the admin overview.
func (s *AdminService) Dashboard(ctx context.Context) (*dto.AdminDashboardResponse, error) {
	resp := &dto.AdminDashboardResponse{}

	if err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id <> ?", models.SystemModeratorID).Count(&resp.TotalUsers).Error; err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	if err := s.db.WithContext(ctx).Model(&models.Post{}).Count(&resp.TotalPosts).Error; err != nil {
		return nil, fmt.Errorf("count posts: %w", err)
	}
	if err := s.db.WithContext(ctx).Model(&models.Post{}).
		Where("is_deleted = false AND expires_at > ?", time.Now()).Count(&resp.ActivePosts).Error; err != nil {
		return nil, fmt.Errorf("count active posts: %w", err)
	}
	if err := s.db.WithContext(ctx).Model(&models.Post{}).
		Where("is_deleted = true").Count(&resp.DeletedPosts).Error; err != nil {
		return nil, fmt.Errorf("count deleted posts: %w", err)
	}
	if err := s.db.WithContext(ctx).Model(&models.Report{}).
		Where("status = ?", models.ReportStatusPending).Count(&resp.PendingReports).Error; err != nil {
		return nil, fmt.Errorf("count pending reports: %w", err)
	}

	stats, err := s.reports.Stats(ctx)
	if err != nil {
		return nil, err
	}
	resp.Reports = *stats
	return resp, nil
}
