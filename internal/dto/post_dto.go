package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreatePostRequest struct {
	ImageURL  string  `json:"image_url"`
	Caption   string  `json:"caption,omitempty"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	PlaceName string  `json:"place_name,omitempty"`
}

type PostResponse struct {
	ID           uuid.UUID    `json:"id"`
	User         UserResponse `json:"user"`
	ImageURL     string       `json:"image_url"`
	Caption      string       `json:"caption,omitempty"`
	Latitude     float64      `json:"latitude"`
	Longitude    float64      `json:"longitude"`
	PlaceName    string       `json:"place_name,omitempty"`
	LikeCount    int          `json:"like_count"`
	CommentCount int          `json:"comment_count"`
	Liked        bool         `json:"liked"`
	DistanceKm   *float64     `json:"distance_km,omitempty"`
	ExpiresAt    time.Time    `json:"expires_at"`
	CreatedAt    time.Time    `json:"created_at"`
}

type NearbyPostsRequest struct {
	Latitude  float64 `query:"latitude"`
	Longitude float64 `query:"longitude"`
	RadiusKm  float64 `query:"radius_km"`
	Limit     int     `query:"limit"`
	Offset    int     `query:"offset"`
}

type PostListResponse struct {
	Posts  []PostResponse `json:"posts"`
	Total  int64          `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

type DeletePostRequest struct {
	Reason string `json:"reason,omitempty"`
}
