package models

import (
	"time"

	"github.com/google/uuid"
)

type FriendStatus string

const (
	FriendStatusPending  FriendStatus = "pending"
	FriendStatusAccepted FriendStatus = "accepted"
	FriendStatusRejected FriendStatus = "rejected"
)

// FriendRelation stores one row per user pair. Requester identifies which of
// the two sent the pending request; friendship is the accepted status.
type FriendRelation struct {
	ID          uuid.UUID    `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID1     uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_friend_pair" json:"user_id_1"`
	UserID2     uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_friend_pair" json:"user_id_2"`
	RequesterID uuid.UUID    `gorm:"type:uuid;not null;index" json:"requester_id"`
	Status      FriendStatus `gorm:"size:20;not null;default:'pending';index" json:"status"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// Other returns the counterpart of userID in this relation.
func (fr *FriendRelation) Other(userID uuid.UUID) uuid.UUID {
	if fr.UserID1 == userID {
		return fr.UserID2
	}
	return fr.UserID1
}

func (fr *FriendRelation) Involves(userID uuid.UUID) bool {
	return fr.UserID1 == userID || fr.UserID2 == userID
}
