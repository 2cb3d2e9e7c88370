package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lewlew/lewlew-server/internal/dto"
	"github.com/lewlew/lewlew-server/internal/models"
	"github.com/lewlew/lewlew-server/internal/ws"
)

// EventPusher delivers real-time events to connected clients. Satisfied by
// *ws.Hub.
type EventPusher interface {
	SendToUser(userID uuid.UUID, event ws.Event)
}

// NotificationService persists notifications and mirrors them to live
// websocket connections. The database row is the durable copy; the push is
// best effort.
type NotificationService struct {
	db     *gorm.DB
	pusher EventPusher
}

func NewNotificationService(db *gorm.DB, pusher EventPusher) *NotificationService {
	return &NotificationService{db: db, pusher: pusher}
}

func (s *NotificationService) create(ctx context.Context, n *models.Notification) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if err := s.db.WithContext(ctx).Create(n).Error; err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	if s.pusher != nil {
		s.pusher.SendToUser(n.RecipientID, ws.Event{Type: "notification", Payload: n})
	}
	return nil
}

// System notifications carry no sender; clients render them as coming from
// the platform.

func (s *NotificationService) NotifyPostRemoved(ctx context.Context, ownerID, postID uuid.UUID, message string) error {
	return s.create(ctx, &models.Notification{
		RecipientID: ownerID,
		Type:        models.NotificationPostRemoved,
		PostID:      &postID,
		Message:     message,
	})
}

func (s *NotificationService) NotifyReportOutcome(ctx context.Context, reporterID, postID uuid.UUID, nType models.NotificationType, message string) error {
	return s.create(ctx, &models.Notification{
		RecipientID: reporterID,
		Type:        nType,
		PostID:      &postID,
		Message:     message,
	})
}

func (s *NotificationService) NotifyLike(ctx context.Context, recipientID, senderID uuid.UUID, postID *uuid.UUID, commentID *uuid.UUID, message string) error {
	return s.create(ctx, &models.Notification{
		RecipientID: recipientID,
		SenderID:    &senderID,
		Type:        models.NotificationLike,
		PostID:      postID,
		CommentID:   commentID,
		Message:     message,
	})
}

func (s *NotificationService) NotifyComment(ctx context.Context, recipientID, senderID, postID, commentID uuid.UUID, message string) error {
	return s.create(ctx, &models.Notification{
		RecipientID: recipientID,
		SenderID:    &senderID,
		Type:        models.NotificationComment,
		PostID:      &postID,
		CommentID:   &commentID,
		Message:     message,
	})
}

func (s *NotificationService) NotifyFriendEvent(ctx context.Context, recipientID, senderID uuid.UUID, nType models.NotificationType, message string) error {
	return s.create(ctx, &models.Notification{
		RecipientID: recipientID,
		SenderID:    &senderID,
		Type:        nType,
		Message:     message,
	})
}

func (s *NotificationService) NotifyNewPost(ctx context.Context, recipientID, senderID, postID uuid.UUID, nType models.NotificationType, message string) error {
	return s.create(ctx, &models.Notification{
		RecipientID: recipientID,
		SenderID:    &senderID,
		Type:        nType,
		PostID:      &postID,
		Message:     message,
	})
}

func (s *NotificationService) List(ctx context.Context, userID uuid.UUID, limit, offset int) (*dto.NotificationListResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var notifications []models.Notification
	err := s.db.WithContext(ctx).
		Preload("Sender").
		Where("recipient_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&notifications).Error
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}

	var total, unread int64
	if err := s.db.WithContext(ctx).Model(&models.Notification{}).Where("recipient_id = ?", userID).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count notifications: %w", err)
	}
	if err := s.db.WithContext(ctx).Model(&models.Notification{}).Where("recipient_id = ? AND read = false", userID).Count(&unread).Error; err != nil {
		return nil, fmt.Errorf("count unread: %w", err)
	}

	resp := &dto.NotificationListResponse{
		Notifications: make([]dto.NotificationResponse, 0, len(notifications)),
		UnreadCount:   unread,
		Total:         total,
	}
	for i := range notifications {
		resp.Notifications = append(resp.Notifications, toNotificationResponse(&notifications[i]))
	}
	return resp, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	res := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND recipient_id = ?", notificationID, userID).
		Update("read", true)
	if res.Error != nil {
		return fmt.Errorf("mark read: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrForbidden
	}
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	err := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("recipient_id = ? AND read = false", userID).
		Update("read", true).Error
	if err != nil {
		return fmt.Errorf("mark all read: %w", err)
	}
	return nil
}

func toNotificationResponse(n *models.Notification) dto.NotificationResponse {
	resp := dto.NotificationResponse{
		ID:        n.ID,
		Type:      string(n.Type),
		Message:   n.Message,
		PostID:    n.PostID,
		CommentID: n.CommentID,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}
	if n.Sender != nil {
		sender := UserToResponse(n.Sender, false)
		resp.Sender = &sender
	}
	return resp
}

// logNotifyErr keeps notification failures from breaking the calling flow.
func logNotifyErr(err error, action string) {
	if err != nil {
		slog.Error("notification failed", "action", action, "error", err)
	}
}
