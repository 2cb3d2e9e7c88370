package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ReportStatus string

const (
	ReportStatusPending   ReportStatus = "pending"
	ReportStatusReviewing ReportStatus = "reviewing"
	ReportStatusResolved  ReportStatus = "resolved"
	ReportStatusRejected  ReportStatus = "rejected"
)

type ReportReason string

const (
	ReasonInappropriateContent ReportReason = "inappropriate_content"
	ReasonSpam                 ReportReason = "spam"
	ReasonHarassment           ReportReason = "harassment"
	ReasonViolence             ReportReason = "violence"
	ReasonHateSpeech           ReportReason = "hate_speech"
	ReasonGore                 ReportReason = "gore"
	ReasonBlood                ReportReason = "blood"
	ReasonGraphicViolence      ReportReason = "graphic_violence"
	ReasonOther                ReportReason = "other"
)

var validReasons = map[ReportReason]bool{
	ReasonInappropriateContent: true,
	ReasonSpam:                 true,
	ReasonHarassment:           true,
	ReasonViolence:             true,
	ReasonHateSpeech:           true,
	ReasonGore:                 true,
	ReasonBlood:                true,
	ReasonGraphicViolence:      true,
	ReasonOther:                true,
}

func (r ReportReason) Valid() bool {
	return validReasons[r]
}

var reasonDisplayTexts = map[ReportReason]string{
	ReasonInappropriateContent: "Inappropriate Content",
	ReasonSpam:                 "Spam",
	ReasonHarassment:           "Harassment or Bullying",
	ReasonViolence:             "Violence or Dangerous Content",
	ReasonHateSpeech:           "Hate Speech",
	ReasonOther:                "Other Violation",
}

// DisplayText is the human-readable form used inside notification messages.
func (r ReportReason) DisplayText() string {
	if text, ok := reasonDisplayTexts[r]; ok {
		return text
	}
	return string(r)
}

type AIPrediction string

const (
	PredictionViolation AIPrediction = "violation"
	PredictionSafe      AIPrediction = "safe"
	PredictionError     AIPrediction = "error"
)

// Report lifecycle: created pending by a user, mutated once by the async
// analysis job (AI fields, possibly resolved), optionally mutated again by an
// admin decision. Never deleted.
type Report struct {
	ID          uuid.UUID    `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	PostID      uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_reports_post_reporter" json:"post_id"`
	ReporterID  uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_reports_post_reporter" json:"reporter_id"`
	Reason      ReportReason `gorm:"size:50;not null;index" json:"reason"`
	Description string       `gorm:"size:500" json:"description,omitempty"`
	Status      ReportStatus `gorm:"size:20;not null;default:'pending';index" json:"status"`

	AIConfidenceScore *float64       `json:"ai_confidence_score,omitempty"`
	AIPrediction      AIPrediction   `gorm:"size:20" json:"ai_prediction,omitempty"`
	AIAnalysis        datatypes.JSON `gorm:"type:jsonb" json:"ai_analysis,omitempty"`
	AutoResolved      bool           `gorm:"default:false" json:"auto_resolved"`

	ReviewedBy    *uuid.UUID `gorm:"type:uuid" json:"reviewed_by,omitempty"`
	ReviewedAt    *time.Time `json:"reviewed_at,omitempty"`
	ReviewComment string     `gorm:"size:1000" json:"review_comment,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Post     Post `gorm:"foreignKey:PostID" json:"-"`
	Reporter User `gorm:"foreignKey:ReporterID" json:"-"`
}

func (s ReportStatus) Terminal() bool {
	return s == ReportStatusResolved || s == ReportStatusRejected
}
