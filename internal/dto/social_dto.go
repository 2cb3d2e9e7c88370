package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateCommentRequest struct {
	Text     string `json:"text"`
	ImageURL string `json:"image_url,omitempty"`
}

type CommentResponse struct {
	ID        uuid.UUID    `json:"id"`
	PostID    uuid.UUID    `json:"post_id"`
	User      UserResponse `json:"user"`
	Text      string       `json:"text"`
	ImageURL  string       `json:"image_url,omitempty"`
	LikeCount int          `json:"like_count"`
	Liked     bool         `json:"liked"`
	CreatedAt time.Time    `json:"created_at"`
}

type CommentListResponse struct {
	Comments []CommentResponse `json:"comments"`
	Total    int64             `json:"total"`
}

type LikeResponse struct {
	Liked     bool `json:"liked"`
	LikeCount int  `json:"like_count"`
}

type FriendRequestRequest struct {
	UserID uuid.UUID `json:"user_id"`
}

type FriendResponse struct {
	User      UserResponse `json:"user"`
	Status    string       `json:"status"`
	Requester bool         `json:"requester"`
	CreatedAt time.Time    `json:"created_at"`
}

type FriendListResponse struct {
	Friends []FriendResponse `json:"friends"`
	Total   int64            `json:"total"`
}

// ProfileResponse is a user seen through another user's eyes.
type ProfileResponse struct {
	UserResponse
	FriendStatus string `json:"friend_status"`
	FriendCount  int64  `json:"friend_count"`
}

type UserSearchResult struct {
	UserResponse
	FriendStatus string `json:"friend_status"`
}

type NotificationResponse struct {
	ID        uuid.UUID     `json:"id"`
	Type      string        `json:"type"`
	Message   string        `json:"message"`
	Sender    *UserResponse `json:"sender,omitempty"`
	PostID    *uuid.UUID    `json:"post_id,omitempty"`
	CommentID *uuid.UUID    `json:"comment_id,omitempty"`
	Read      bool          `json:"read"`
	CreatedAt time.Time     `json:"created_at"`
}

type NotificationListResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
	UnreadCount   int64                  `json:"unread_count"`
	Total         int64                  `json:"total"`
}
