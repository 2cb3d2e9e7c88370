package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SystemModeratorID is the reserved actor for decisions taken by the
// moderation pipeline without a human reviewer. Seeded at migration time so
// deleted_by references stay valid.
var SystemModeratorID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

type User struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	PhoneNumber string    `gorm:"size:20;not null;uniqueIndex" json:"phone_number"`
	Username    string    `gorm:"size:50;not null;uniqueIndex" json:"username"`
	FullName    string    `gorm:"size:100;not null" json:"full_name"`
	Password    string    `gorm:"not null" json:"-"`
	Avatar      string    `gorm:"size:500" json:"avatar"`
	Bio         string    `gorm:"size:500" json:"bio"`
	Role        string    `gorm:"size:20;default:'user'" json:"role"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`

	NotificationRadiusKm int  `gorm:"default:5" json:"notification_radius_km"`
	PushNotifications    bool `gorm:"default:true" json:"push_notifications"`

	LastActiveAt *time.Time     `json:"last_active_at,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}
