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

type LikeService struct {
	db            *gorm.DB
	posts         *PostService
	notifications *NotificationService
}

func NewLikeService(db *gorm.DB, posts *PostService, notifications *NotificationService) *LikeService {
	return &LikeService{db: db, posts: posts, notifications: notifications}
}

// LikePost records a like on a visible post. The in-transaction existence
// check handles double-taps; the partial unique index catches concurrent
// inserts the check cannot see.
func (s *LikeService) LikePost(ctx context.Context, userID, postID uuid.UUID) (*dto.LikeResponse, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	like := models.Like{
		ID:     uuid.New(),
		UserID: userID,
		Target: models.LikeTargetPost,
		PostID: &postID,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&models.Like{}).
			Where("user_id = ? AND target = ? AND post_id = ?", userID, models.LikeTargetPost, postID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return ErrAlreadyLiked
		}
		if err := tx.Create(&like).Error; err != nil {
			return err
		}
		return tx.Model(&models.Post{}).Where("id = ?", postID).
			UpdateColumn("like_count", gorm.Expr("like_count + 1")).Error
	})
	if err != nil {
		if errors.Is(err, ErrAlreadyLiked) || errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyLiked
		}
		return nil, fmt.Errorf("like post: %w", err)
	}

	if post.UserID != userID {
		var liker models.User
		if err := s.db.WithContext(ctx).First(&liker, "id = ?", userID).Error; err == nil {
			msg := fmt.Sprintf("%s liked your post", liker.Username)
			logNotifyErr(s.notifications.NotifyLike(ctx, post.UserID, userID, &postID, nil, msg), "like_post")
		}
	}

	return s.postLikeState(ctx, userID, postID)
}

func (s *LikeService) UnlikePost(ctx context.Context, userID, postID uuid.UUID) (*dto.LikeResponse, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND target = ? AND post_id = ?", userID, models.LikeTargetPost, postID).
			Delete(&models.Like{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotLiked
		}
		return tx.Model(&models.Post{}).
			Where("id = ? AND like_count > 0", postID).
			UpdateColumn("like_count", gorm.Expr("like_count - 1")).Error
	})
	if err != nil {
		if errors.Is(err, ErrNotLiked) {
			return nil, err
		}
		return nil, fmt.Errorf("unlike post: %w", err)
	}
	return s.postLikeState(ctx, userID, postID)
}

func (s *LikeService) LikeComment(ctx context.Context, userID, commentID uuid.UUID) (*dto.LikeResponse, error) {
	var comment models.Comment
	if err := s.db.WithContext(ctx).First(&comment, "id = ?", commentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, fmt.Errorf("get comment: %w", err)
	}

	like := models.Like{
		ID:        uuid.New(),
		UserID:    userID,
		Target:    models.LikeTargetComment,
		CommentID: &commentID,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&models.Like{}).
			Where("user_id = ? AND target = ? AND comment_id = ?", userID, models.LikeTargetComment, commentID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return ErrAlreadyLiked
		}
		if err := tx.Create(&like).Error; err != nil {
			return err
		}
		return tx.Model(&models.Comment{}).Where("id = ?", commentID).
			UpdateColumn("like_count", gorm.Expr("like_count + 1")).Error
	})
	if err != nil {
		if errors.Is(err, ErrAlreadyLiked) || errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyLiked
		}
		return nil, fmt.Errorf("like comment: %w", err)
	}

	if comment.UserID != userID {
		var liker models.User
		if err := s.db.WithContext(ctx).First(&liker, "id = ?", userID).Error; err == nil {
			msg := fmt.Sprintf("%s liked your comment", liker.Username)
			logNotifyErr(s.notifications.NotifyLike(ctx, comment.UserID, userID, &comment.PostID, &commentID, msg), "like_comment")
		}
	}
	return s.commentLikeState(ctx, userID, commentID)
}

func (s *LikeService) UnlikeComment(ctx context.Context, userID, commentID uuid.UUID) (*dto.LikeResponse, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND target = ? AND comment_id = ?", userID, models.LikeTargetComment, commentID).
			Delete(&models.Like{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotLiked
		}
		return tx.Model(&models.Comment{}).
			Where("id = ? AND like_count > 0", commentID).
			UpdateColumn("like_count", gorm.Expr("like_count - 1")).Error
	})
	if err != nil {
		if errors.Is(err, ErrNotLiked) {
			return nil, err
		}
		return nil, fmt.Errorf("unlike comment: %w", err)
	}
	return s.commentLikeState(ctx, userID, commentID)
}

func (s *LikeService) postLikeState(ctx context.Context, userID, postID uuid.UUID) (*dto.LikeResponse, error) {
	var post models.Post
	if err := s.db.WithContext(ctx).Select("like_count").First(&post, "id = ?", postID).Error; err != nil {
		return nil, fmt.Errorf("post like state: %w", err)
	}
	var count int64
	s.db.WithContext(ctx).Model(&models.Like{}).
		Where("user_id = ? AND target = ? AND post_id = ?", userID, models.LikeTargetPost, postID).
		Count(&count)
	return &dto.LikeResponse{Liked: count > 0, LikeCount: post.LikeCount}, nil
}

func (s *LikeService) commentLikeState(ctx context.Context, userID, commentID uuid.UUID) (*dto.LikeResponse, error) {
	var comment models.Comment
	if err := s.db.WithContext(ctx).Select("like_count").First(&comment, "id = ?", commentID).Error; err != nil {
		return nil, fmt.Errorf("comment like state: %w", err)
	}
	var count int64
	s.db.WithContext(ctx).Model(&models.Like{}).
		Where("user_id = ? AND target = ? AND comment_id = ?", userID, models.LikeTargetComment, commentID).
		Count(&count)
	return &dto.LikeResponse{Liked: count > 0, LikeCount: comment.LikeCount}, nil
}
