package models

import (
	"time"

	"github.com/google/uuid"
)

type LikeTarget string

const (
	LikeTargetPost    LikeTarget = "post"
	LikeTargetComment LikeTarget = "comment"
)

// Like is one user's like of a post or comment. The partial unique indexes
// are split per target: a combined index over both nullable FK columns would
// never conflict in Postgres, because NULLs compare distinct.
type Like struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_likes_user_post,priority:1;uniqueIndex:idx_likes_user_comment,priority:1" json:"user_id"`
	Target    LikeTarget `gorm:"size:10;not null;index" json:"target"`
	PostID    *uuid.UUID `gorm:"type:uuid;index;uniqueIndex:idx_likes_user_post,priority:2,where:target = 'post'" json:"post_id,omitempty"`
	CommentID *uuid.UUID `gorm:"type:uuid;index;uniqueIndex:idx_likes_user_comment,priority:2,where:target = 'comment'" json:"comment_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (Like) TableName() string {
	return "likes"
}
