package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lewlew/lewlew-server/internal/config"
	"github.com/lewlew/lewlew-server/internal/dto"
	"github.com/lewlew/lewlew-server/internal/models"
)

const earthRadiusKm = 6371.0

// distanceSQL renders the great-circle distance in km between a post row
// and the given point. Coordinates are validated floats, so interpolation
// is safe, and a literal expression can be reused in ORDER BY.
func distanceSQL(lat, lon float64) string {
	return fmt.Sprintf(
		"(6371 * acos(least(1.0, cos(radians(%[1]f)) * cos(radians(latitude)) * cos(radians(longitude) - radians(%[2]f)) + sin(radians(%[1]f)) * sin(radians(latitude)))))",
		lat, lon)
}

type PostService struct {
	db            *gorm.DB
	cfg           *config.Config
	notifications *NotificationService
}

func NewPostService(db *gorm.DB, cfg *config.Config, notifications *NotificationService) *PostService {
	return &PostService{db: db, cfg: cfg, notifications: notifications}
}

// Create publishes a geotagged post that expires after the configured TTL,
// then fans out notifications to friends and nearby users in the background.
func (s *PostService) Create(ctx context.Context, userID uuid.UUID, req *dto.CreatePostRequest) (*models.Post, error) {
	if req.ImageURL == "" {
		return nil, validationErr("image_url is required")
	}
	if req.Latitude < -90 || req.Latitude > 90 || req.Longitude < -180 || req.Longitude > 180 {
		return nil, validationErr("coordinates out of range")
	}

	post := models.Post{
		ID:        uuid.New(),
		UserID:    userID,
		ImageURL:  req.ImageURL,
		Caption:   req.Caption,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		PlaceName: req.PlaceName,
		ExpiresAt: time.Now().Add(s.cfg.PostTTL),
	}
	if err := s.db.WithContext(ctx).Create(&post).Error; err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}

	go s.fanOutNewPost(post)

	return &post, nil
}

// fanOutNewPost notifies accepted friends and nearby users with push
// enabled. Failures are logged, never surfaced to the author.
func (s *PostService) fanOutNewPost(post models.Post) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("post fan-out panic", "post_id", post.ID, "panic", r)
		}
	}()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var author models.User
	if err := s.db.WithContext(ctx).First(&author, "id = ?", post.UserID).Error; err != nil {
		slog.Error("post fan-out author lookup", "post_id", post.ID, "error", err)
		return
	}

	var relations []models.FriendRelation
	err := s.db.WithContext(ctx).
		Where("(user_id_1 = ? OR user_id_2 = ?) AND status = ?", post.UserID, post.UserID, models.FriendStatusAccepted).
		Find(&relations).Error
	if err != nil {
		slog.Error("post fan-out friends lookup", "post_id", post.ID, "error", err)
		return
	}

	friendIDs := make(map[uuid.UUID]bool, len(relations))
	for i := range relations {
		friendIDs[relations[i].Other(post.UserID)] = true
	}

	msg := fmt.Sprintf("%s shared a new post", author.Username)
	for friendID := range friendIDs {
		logNotifyErr(s.notifications.NotifyNewPost(ctx, friendID, post.UserID, post.ID, models.NotificationFriendPost, msg), "friend_post")
	}

	// Nearby users: each user's own notification radius decides whether the
	// post is close enough. Friends already got the friend_post variant.
	var nearby []models.User
	err = s.db.WithContext(ctx).
		Where("id <> ? AND push_notifications = true AND id <> ?", post.UserID, models.SystemModeratorID).
		Where("last_active_at > ?", time.Now().Add(-7*24*time.Hour)).
		Find(&nearby).Error
	if err != nil {
		slog.Error("post fan-out nearby lookup", "post_id", post.ID, "error", err)
		return
	}

	nearbyMsg := fmt.Sprintf("New post near you at %s", post.PlaceName)
	if post.PlaceName == "" {
		nearbyMsg = "New post near you"
	}
	for i := range nearby {
		u := &nearby[i]
		if friendIDs[u.ID] {
			continue
		}
		dist := haversineKm(post.Latitude, post.Longitude, u.Latitude, u.Longitude)
		if dist <= float64(u.NotificationRadiusKm) {
			logNotifyErr(s.notifications.NotifyNewPost(ctx, u.ID, post.UserID, post.ID, models.NotificationNearbyPost, nearbyMsg), "nearby_post")
		}
	}
}

func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// visible scopes queries to posts that are neither removed nor expired.
func visible(db *gorm.DB) *gorm.DB {
	return db.Where("is_deleted = false AND expires_at > ?", time.Now())
}

// GetByID returns a post regardless of expiry so permalinks keep working
// until the purge job removes the row. Removed posts read as not found.
func (s *PostService) GetByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	var post models.Post
	err := s.db.WithContext(ctx).Preload("User").First(&post, "id = ? AND is_deleted = false", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("get post: %w", err)
	}
	return &post, nil
}

// Nearby returns visible posts within radiusKm of the given point, closest
// first, with per-post distances.
func (s *PostService) Nearby(ctx context.Context, viewerID uuid.UUID, req *dto.NearbyPostsRequest) (*dto.PostListResponse, error) {
	if req.RadiusKm <= 0 || req.RadiusKm > 100 {
		req.RadiusKm = 10
	}
	if req.Limit <= 0 || req.Limit > 100 {
		req.Limit = 20
	}

	if req.Latitude < -90 || req.Latitude > 90 || req.Longitude < -180 || req.Longitude > 180 {
		return nil, validationErr("coordinates out of range")
	}
	dist := distanceSQL(req.Latitude, req.Longitude)

	var posts []models.Post
	err := s.db.WithContext(ctx).
		Scopes(visible).
		Preload("User").
		Where(dist+" <= ?", req.RadiusKm).
		Order(dist + " ASC").
		Limit(req.Limit).Offset(req.Offset).
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("nearby posts: %w", err)
	}

	resp, err := s.toListResponse(ctx, viewerID, posts, req.Limit, req.Offset)
	if err != nil {
		return nil, err
	}
	for i := range resp.Posts {
		d := haversineKm(req.Latitude, req.Longitude, resp.Posts[i].Latitude, resp.Posts[i].Longitude)
		resp.Posts[i].DistanceKm = &d
	}
	return resp, nil
}

// FriendsFeed returns visible posts from accepted friends, newest first.
func (s *PostService) FriendsFeed(ctx context.Context, userID uuid.UUID, limit, offset int) (*dto.PostListResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	friendSub := s.db.Model(&models.FriendRelation{}).
		Select("CASE WHEN user_id_1 = ? THEN user_id_2 ELSE user_id_1 END", userID).
		Where("(user_id_1 = ? OR user_id_2 = ?) AND status = ?", userID, userID, models.FriendStatusAccepted)

	var posts []models.Post
	err := s.db.WithContext(ctx).
		Scopes(visible).
		Preload("User").
		Where("user_id IN (?)", friendSub).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("friends feed: %w", err)
	}
	return s.toListResponse(ctx, userID, posts, limit, offset)
}

// UserPosts lists a user's own visible posts, newest first.
func (s *PostService) UserPosts(ctx context.Context, viewerID, ownerID uuid.UUID, limit, offset int) (*dto.PostListResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var posts []models.Post
	err := s.db.WithContext(ctx).
		Scopes(visible).
		Preload("User").
		Where("user_id = ?", ownerID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("user posts: %w", err)
	}
	return s.toListResponse(ctx, viewerID, posts, limit, offset)
}

// Delete lets the owner remove their own post.
func (s *PostService) Delete(ctx context.Context, userID, postID uuid.UUID) error {
	now := time.Now()
	res := s.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ? AND user_id = ? AND is_deleted = false", postID, userID).
		Updates(map[string]interface{}{
			"is_deleted":      true,
			"deleted_at":      now,
			"deleted_by":      userID,
			"deletion_reason": "Deleted by owner",
		})
	if res.Error != nil {
		return fmt.Errorf("delete post: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrPostNotFound
	}
	return nil
}

// SoftDeleteByModeration removes a post on behalf of a moderation decision.
// The conditional update makes concurrent removals idempotent: only the
// first caller sees a row change, later ones get not found.
func (s *PostService) SoftDeleteByModeration(ctx context.Context, postID, deletedBy uuid.UUID, reason string) error {
	now := time.Now()
	res := s.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ? AND is_deleted = false", postID).
		Updates(map[string]interface{}{
			"is_deleted":      true,
			"deleted_at":      now,
			"deleted_by":      deletedBy,
			"deletion_reason": reason,
		})
	if res.Error != nil {
		return fmt.Errorf("moderation delete: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrPostNotFound
	}
	return nil
}

// PurgeExpired hard-deletes posts whose expiry passed more than the purge
// window ago, along with their comments and likes. Reports survive because
// moderation history outlives content.
func (s *PostService) PurgeExpired(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan)

	var ids []uuid.UUID
	if err := s.db.WithContext(ctx).Model(&models.Post{}).Where("expires_at < ?", cutoff).Pluck("id", &ids).Error; err != nil {
		return 0, fmt.Errorf("purge lookup: %w", err)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id IN ?", ids).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id IN ?", ids).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Where("id IN ?", ids).Delete(&models.Post{}).Error
	})
	if err != nil {
		return 0, fmt.Errorf("purge posts: %w", err)
	}
	return int64(len(ids)), nil
}

func (s *PostService) toListResponse(ctx context.Context, viewerID uuid.UUID, posts []models.Post, limit, offset int) (*dto.PostListResponse, error) {
	liked, err := s.likedPostIDs(ctx, viewerID, posts)
	if err != nil {
		return nil, err
	}
	resp := &dto.PostListResponse{
		Posts:  make([]dto.PostResponse, 0, len(posts)),
		Total:  int64(len(posts)),
		Limit:  limit,
		Offset: offset,
	}
	for i := range posts {
		resp.Posts = append(resp.Posts, PostToResponse(&posts[i], liked[posts[i].ID]))
	}
	return resp, nil
}

func (s *PostService) likedPostIDs(ctx context.Context, viewerID uuid.UUID, posts []models.Post) (map[uuid.UUID]bool, error) {
	if viewerID == uuid.Nil || len(posts) == 0 {
		return map[uuid.UUID]bool{}, nil
	}
	ids := make([]uuid.UUID, 0, len(posts))
	for i := range posts {
		ids = append(ids, posts[i].ID)
	}
	var likedIDs []uuid.UUID
	err := s.db.WithContext(ctx).Model(&models.Like{}).
		Where("user_id = ? AND target = ? AND post_id IN ?", viewerID, models.LikeTargetPost, ids).
		Pluck("post_id", &likedIDs).Error
	if err != nil {
		return nil, fmt.Errorf("liked posts: %w", err)
	}
	liked := make(map[uuid.UUID]bool, len(likedIDs))
	for _, id := range likedIDs {
		liked[id] = true
	}
	return liked, nil
}

func PostToResponse(p *models.Post, liked bool) dto.PostResponse {
	return dto.PostResponse{
		ID:           p.ID,
		User:         UserToResponse(&p.User, false),
		ImageURL:     p.ImageURL,
		Caption:      p.Caption,
		Latitude:     p.Latitude,
		Longitude:    p.Longitude,
		PlaceName:    p.PlaceName,
		LikeCount:    p.LikeCount,
		CommentCount: p.CommentCount,
		Liked:        liked,
		ExpiresAt:    p.ExpiresAt,
		CreatedAt:    p.CreatedAt,
	}
}
