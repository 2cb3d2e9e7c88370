package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateReportRequest struct {
	PostID      uuid.UUID `json:"post_id"`
	Reason      string    `json:"reason"`
	Description string    `json:"description,omitempty"`
}

type UpdateReportStatusRequest struct {
	Status        string `json:"status"`
	ReviewComment string `json:"review_comment,omitempty"`
}

type ReportResponse struct {
	ID                uuid.UUID     `json:"id"`
	PostID            uuid.UUID     `json:"post_id"`
	ReporterID        uuid.UUID     `json:"reporter_id"`
	Reason            string        `json:"reason"`
	Description       string        `json:"description,omitempty"`
	Status            string        `json:"status"`
	AIPrediction      string        `json:"ai_prediction,omitempty"`
	AIConfidenceScore *float64      `json:"ai_confidence_score,omitempty"`
	AutoResolved      bool          `json:"auto_resolved"`
	ReviewedBy        *uuid.UUID    `json:"reviewed_by,omitempty"`
	ReviewedAt        *time.Time    `json:"reviewed_at,omitempty"`
	ReviewComment     string        `json:"review_comment,omitempty"`
	Post              *PostResponse `json:"post,omitempty"`
	CreatedAt         time.Time     `json:"created_at"`
}

type ReportListResponse struct {
	Reports []ReportResponse `json:"reports"`
	Total   int64            `json:"total"`
	Limit   int              `json:"limit"`
	Offset  int              `json:"offset"`
}

type ReportStatsResponse struct {
	Total        int64            `json:"total"`
	ByStatus     map[string]int64 `json:"by_status"`
	ByReason     map[string]int64 `json:"by_reason"`
	AutoResolved int64            `json:"auto_resolved"`
	Last24Hours  int64            `json:"last_24_hours"`
}
