package models

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationLike              NotificationType = "like"
	NotificationComment           NotificationType = "comment"
	NotificationFriendRequest     NotificationType = "friend_request"
	NotificationFriendAccept      NotificationType = "friend_accept"
	NotificationNearbyPost        NotificationType = "nearby_post"
	NotificationFriendPost        NotificationType = "friend_post"
	NotificationPostRemoved       NotificationType = "post_removed"
	NotificationReportApproved    NotificationType = "report_approved"
	NotificationReportRejected    NotificationType = "report_rejected"
	NotificationReportUnderReview NotificationType = "report_under_review"
)

// Notification with a NULL sender is system-generated (moderation outcomes).
type Notification struct {
	ID          uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RecipientID uuid.UUID        `gorm:"type:uuid;not null;index:idx_notifications_recipient_read" json:"recipient_id"`
	SenderID    *uuid.UUID       `gorm:"type:uuid" json:"sender_id,omitempty"`
	Type        NotificationType `gorm:"size:30;not null" json:"type"`
	PostID      *uuid.UUID       `gorm:"type:uuid" json:"post_id,omitempty"`
	CommentID   *uuid.UUID       `gorm:"type:uuid" json:"comment_id,omitempty"`
	Message     string           `gorm:"size:500" json:"message"`
	Read        bool             `gorm:"default:false;index:idx_notifications_recipient_read" json:"read"`
	CreatedAt   time.Time        `gorm:"index" json:"created_at"`

	Recipient User  `gorm:"foreignKey:RecipientID" json:"-"`
	Sender    *User `gorm:"foreignKey:SenderID" json:"-"`
}
