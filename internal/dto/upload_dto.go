package dto

import (
	"time"

	"github.com/google/uuid"
)

type UploadResponse struct {
	ID        uuid.UUID `json:"id"`
	URL       string    `json:"url"`
	Filename  string    `json:"filename"`
	MimeType  string    `json:"mime_type"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

type AdminDashboardResponse struct {
	TotalUsers     int64               `json:"total_users"`
	TotalPosts     int64               `json:"total_posts"`
	ActivePosts    int64               `json:"active_posts"`
	DeletedPosts   int64               `json:"deleted_posts"`
	PendingReports int64               `json:"pending_reports"`
	Reports        ReportStatsResponse `json:"reports"`
}
