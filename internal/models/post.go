package models

import (
	"time"

	"github.com/google/uuid"
)

// Post is a geotagged image that expires 24 hours after creation. Removal by
// moderation is a soft delete: the row survives with the deletion audit
// fields set, so resolved reports keep a valid reference.
type Post struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	ImageURL  string    `gorm:"size:500;not null" json:"image_url"`
	Caption   string    `gorm:"size:500" json:"caption"`
	Latitude  float64   `gorm:"not null;index:idx_posts_location" json:"latitude"`
	Longitude float64   `gorm:"not null;index:idx_posts_location" json:"longitude"`
	PlaceName string    `gorm:"size:255" json:"place_name"`

	LikeCount    int `gorm:"default:0" json:"like_count"`
	CommentCount int `gorm:"default:0" json:"comment_count"`

	ExpiresAt time.Time `gorm:"not null;index" json:"expires_at"`

	IsDeleted      bool       `gorm:"default:false;index" json:"is_deleted"`
	DeletedAt      *time.Time `json:"deleted_at,omitempty"`
	DeletedBy      *uuid.UUID `gorm:"type:uuid" json:"deleted_by,omitempty"`
	DeletionReason string     `gorm:"size:500" json:"deletion_reason,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (p *Post) Expired(now time.Time) bool {
	return !p.ExpiresAt.After(now)
}
