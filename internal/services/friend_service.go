package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lewlew/lewlew-server/internal/dto"
	"github.com/lewlew/lewlew-server/internal/models"
)

type FriendService struct {
	db            *gorm.DB
	notifications *NotificationService
}

func NewFriendService(db *gorm.DB, notifications *NotificationService) *FriendService {
	return &FriendService{db: db, notifications: notifications}
}

// orderPair canonicalizes a user pair so each relation is stored once.
func orderPair(a, b uuid.UUID) (uuid.UUID, uuid.UUID) {
	if a.String() < b.String() {
		return a, b
	}
	return b, a
}

func (s *FriendService) findRelation(ctx context.Context, a, b uuid.UUID) (*models.FriendRelation, error) {
	id1, id2 := orderPair(a, b)
	var rel models.FriendRelation
	err := s.db.WithContext(ctx).Where("user_id_1 = ? AND user_id_2 = ?", id1, id2).First(&rel).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFriends
	}
	if err != nil {
		return nil, fmt.Errorf("find relation: %w", err)
	}
	return &rel, nil
}

// Request sends a friend request. A previously rejected pair can try again;
// the old row is reused with a fresh requester. Requesting someone who
// already has a pending request towards you accepts it instead.
func (s *FriendService) Request(ctx context.Context, requesterID, targetID uuid.UUID) error {
	if requesterID == targetID {
		return ErrSelfFriend
	}
	var target models.User
	if err := s.db.WithContext(ctx).First(&target, "id = ?", targetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("get target user: %w", err)
	}

	rel, err := s.findRelation(ctx, requesterID, targetID)
	switch {
	case err == nil:
		switch {
		case rel.Status == models.FriendStatusRejected:
			rel.Status = models.FriendStatusPending
			rel.RequesterID = requesterID
			if err := s.db.WithContext(ctx).Save(rel).Error; err != nil {
				return fmt.Errorf("renew friend request: %w", err)
			}
		case rel.Status == models.FriendStatusPending && rel.RequesterID != requesterID:
			return s.Respond(ctx, requesterID, targetID, true)
		default:
			return ErrAlreadyFriends
		}
	case errors.Is(err, ErrNotFriends):
		id1, id2 := orderPair(requesterID, targetID)
		rel = &models.FriendRelation{
			ID:          uuid.New(),
			UserID1:     id1,
			UserID2:     id2,
			RequesterID: requesterID,
			Status:      models.FriendStatusPending,
		}
		if err := s.db.WithContext(ctx).Create(rel).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyFriends
			}
			return fmt.Errorf("create friend request: %w", err)
		}
	default:
		return err
	}

	var requester models.User
	if err := s.db.WithContext(ctx).First(&requester, "id = ?", requesterID).Error; err == nil {
		msg := fmt.Sprintf("%s sent you a friend request", requester.Username)
		logNotifyErr(s.notifications.NotifyFriendEvent(ctx, targetID, requesterID, models.NotificationFriendRequest, msg), "friend_request")
	}
	return nil
}

// Respond accepts or rejects a pending request. Only the non-requesting
// side may respond.
func (s *FriendService) Respond(ctx context.Context, userID, otherID uuid.UUID, accept bool) error {
	rel, err := s.findRelation(ctx, userID, otherID)
	if err != nil {
		return err
	}
	if rel.Status != models.FriendStatusPending {
		return ErrAlreadyFriends
	}
	if rel.RequesterID == userID {
		return ErrForbidden
	}

	if accept {
		rel.Status = models.FriendStatusAccepted
	} else {
		rel.Status = models.FriendStatusRejected
	}
	if err := s.db.WithContext(ctx).Save(rel).Error; err != nil {
		return fmt.Errorf("respond to friend request: %w", err)
	}

	if accept {
		var responder models.User
		if err := s.db.WithContext(ctx).First(&responder, "id = ?", userID).Error; err == nil {
			msg := fmt.Sprintf("%s accepted your friend request", responder.Username)
			logNotifyErr(s.notifications.NotifyFriendEvent(ctx, rel.RequesterID, userID, models.NotificationFriendAccept, msg), "friend_accept")
		}
	}
	return nil
}

// Remove deletes an accepted friendship or withdraws a pending request.
func (s *FriendService) Remove(ctx context.Context, userID, otherID uuid.UUID) error {
	rel, err := s.findRelation(ctx, userID, otherID)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(rel).Error; err != nil {
		return fmt.Errorf("remove friend: %w", err)
	}
	return nil
}

// List returns accepted friends by default. Filter "incoming" returns
// pending requests awaiting the user's response, "sent" returns pending
// requests the user initiated.
func (s *FriendService) List(ctx context.Context, userID uuid.UUID, filter string) (*dto.FriendListResponse, error) {
	q := s.db.WithContext(ctx).Where("user_id_1 = ? OR user_id_2 = ?", userID, userID)
	switch filter {
	case "incoming":
		q = q.Where("status = ? AND requester_id <> ?", models.FriendStatusPending, userID)
	case "sent":
		q = q.Where("status = ? AND requester_id = ?", models.FriendStatusPending, userID)
	case "":
		q = q.Where("status = ?", models.FriendStatusAccepted)
	default:
		return nil, validationErr("unknown filter, expected incoming or sent")
	}

	var relations []models.FriendRelation
	if err := q.Find(&relations).Error; err != nil {
		return nil, fmt.Errorf("list friends: %w", err)
	}

	resp := &dto.FriendListResponse{
		Friends: make([]dto.FriendResponse, 0, len(relations)),
		Total:   int64(len(relations)),
	}
	for i := range relations {
		rel := &relations[i]
		var other models.User
		if err := s.db.WithContext(ctx).First(&other, "id = ?", rel.Other(userID)).Error; err != nil {
			continue
		}
		resp.Friends = append(resp.Friends, dto.FriendResponse{
			User:      UserToResponse(&other, false),
			Status:    string(rel.Status),
			Requester: rel.RequesterID == userID,
			CreatedAt: rel.CreatedAt,
		})
	}
	return resp, nil
}

// StatusBetween describes the relation from the viewer's side: none,
// friends, pending_sent or pending_received.
func (s *FriendService) StatusBetween(ctx context.Context, viewerID, otherID uuid.UUID) (string, error) {
	if viewerID == otherID {
		return "self", nil
	}
	rel, err := s.findRelation(ctx, viewerID, otherID)
	if errors.Is(err, ErrNotFriends) {
		return "none", nil
	}
	if err != nil {
		return "", err
	}
	switch rel.Status {
	case models.FriendStatusAccepted:
		return "friends", nil
	case models.FriendStatusPending:
		if rel.RequesterID == viewerID {
			return "pending_sent", nil
		}
		return "pending_received", nil
	default:
		return "none", nil
	}
}

func (s *FriendService) FriendCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.FriendRelation{}).
		Where("(user_id_1 = ? OR user_id_2 = ?) AND status = ?", userID, userID, models.FriendStatusAccepted).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count friends: %w", err)
	}
	return count, nil
}
