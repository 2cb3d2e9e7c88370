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

type CommentService struct {
	db            *gorm.DB
	posts         *PostService
	notifications *NotificationService
}

func NewCommentService(db *gorm.DB, posts *PostService, notifications *NotificationService) *CommentService {
	return &CommentService{db: db, posts: posts, notifications: notifications}
}

// Create adds a comment to a visible post and notifies the post owner.
func (s *CommentService) Create(ctx context.Context, userID, postID uuid.UUID, req *dto.CreateCommentRequest) (*models.Comment, error) {
	if req.Text == "" && req.ImageURL == "" {
		return nil, validationErr("comment must have text or an image")
	}
	if len(req.Text) > 1000 {
		return nil, validationErr("comment text too long")
	}

	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	comment := models.Comment{
		ID:       uuid.New(),
		PostID:   postID,
		UserID:   userID,
		Text:     req.Text,
		ImageURL: req.ImageURL,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&comment).Error; err != nil {
			return err
		}
		return tx.Model(&models.Post{}).Where("id = ?", postID).
			UpdateColumn("comment_count", gorm.Expr("comment_count + 1")).Error
	})
	if err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}

	if post.UserID != userID {
		var commenter models.User
		if err := s.db.WithContext(ctx).First(&commenter, "id = ?", userID).Error; err == nil {
			msg := fmt.Sprintf("%s commented on your post", commenter.Username)
			logNotifyErr(s.notifications.NotifyComment(ctx, post.UserID, userID, postID, comment.ID, msg), "comment")
		}
	}
	return &comment, nil
}

func (s *CommentService) List(ctx context.Context, viewerID, postID uuid.UUID, limit, offset int) (*dto.CommentListResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		return nil, err
	}

	var comments []models.Comment
	err := s.db.WithContext(ctx).
		Preload("User").
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Limit(limit).Offset(offset).
		Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}

	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Comment{}).Where("post_id = ?", postID).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count comments: %w", err)
	}

	liked, err := s.likedCommentIDs(ctx, viewerID, comments)
	if err != nil {
		return nil, err
	}

	resp := &dto.CommentListResponse{
		Comments: make([]dto.CommentResponse, 0, len(comments)),
		Total:    total,
	}
	for i := range comments {
		c := &comments[i]
		resp.Comments = append(resp.Comments, dto.CommentResponse{
			ID:        c.ID,
			PostID:    c.PostID,
			User:      UserToResponse(&c.User, false),
			Text:      c.Text,
			ImageURL:  c.ImageURL,
			LikeCount: c.LikeCount,
			Liked:     liked[c.ID],
			CreatedAt: c.CreatedAt,
		})
	}
	return resp, nil
}

// Delete removes a comment. Allowed for the comment author and the post
// owner.
func (s *CommentService) Delete(ctx context.Context, userID, commentID uuid.UUID) error {
	var comment models.Comment
	if err := s.db.WithContext(ctx).First(&comment, "id = ?", commentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCommentNotFound
		}
		return fmt.Errorf("get comment: %w", err)
	}

	if comment.UserID != userID {
		var post models.Post
		if err := s.db.WithContext(ctx).First(&post, "id = ?", comment.PostID).Error; err != nil {
			return fmt.Errorf("get post: %w", err)
		}
		if post.UserID != userID {
			return ErrForbidden
		}
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("comment_id = ?", commentID).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&comment).Error; err != nil {
			return err
		}
		return tx.Model(&models.Post{}).
			Where("id = ? AND comment_count > 0", comment.PostID).
			UpdateColumn("comment_count", gorm.Expr("comment_count - 1")).Error
	})
}

func (s *CommentService) likedCommentIDs(ctx context.Context, viewerID uuid.UUID, comments []models.Comment) (map[uuid.UUID]bool, error) {
	if viewerID == uuid.Nil || len(comments) == 0 {
		return map[uuid.UUID]bool{}, nil
	}
	ids := make([]uuid.UUID, 0, len(comments))
	for i := range comments {
		ids = append(ids, comments[i].ID)
	}
	var likedIDs []uuid.UUID
	err := s.db.WithContext(ctx).Model(&models.Like{}).
		Where("user_id = ? AND target = ? AND comment_id IN ?", viewerID, models.LikeTargetComment, ids).
		Pluck("comment_id", &likedIDs).Error
	if err != nil {
		return nil, fmt.Errorf("liked comments: %w", err)
	}
	liked := make(map[uuid.UUID]bool, len(likedIDs))
	for _, id := range likedIDs {
		liked[id] = true
	}
	return liked, nil
}
