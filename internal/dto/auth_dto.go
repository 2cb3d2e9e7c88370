package dto

import (
	"time"

	"github.com/google/uuid"
)

type RequestCodeRequest struct {
	PhoneNumber string `json:"phone_number"`
}

type RequestCodeResponse struct {
	Message   string `json:"message"`
	ExpiresIn int    `json:"expires_in_seconds"`
}

type VerifyCodeRequest struct {
	PhoneNumber string `json:"phone_number"`
	Code        string `json:"code"`
}

type VerifyCodeResponse struct {
	Verified   bool   `json:"verified"`
	IsNewUser  bool   `json:"is_new_user"`
	Token      string `json:"token,omitempty"`
	SignupHint string `json:"signup_hint,omitempty"`
}

type RegisterRequest struct {
	PhoneNumber string   `json:"phone_number"`
	Code        string   `json:"code"`
	Username    string   `json:"username"`
	FullName    string   `json:"full_name"`
	Password    string   `json:"password"`
	Avatar      string   `json:"avatar,omitempty"`
	Bio         string   `json:"bio,omitempty"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
}

type LoginRequest struct {
	PhoneNumber string `json:"phone_number,omitempty"`
	Username    string `json:"username,omitempty"`
	Password    string `json:"password"`
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

type UserResponse struct {
	ID                   uuid.UUID `json:"id"`
	PhoneNumber          string    `json:"phone_number,omitempty"`
	Username             string    `json:"username"`
	FullName             string    `json:"full_name"`
	Avatar               string    `json:"avatar,omitempty"`
	Bio                  string    `json:"bio,omitempty"`
	Role                 string    `json:"role"`
	NotificationRadiusKm int       `json:"notification_radius_km"`
	PushNotifications    bool      `json:"push_notifications"`
	CreatedAt            time.Time `json:"created_at"`
}

type UpdateProfileRequest struct {
	Username             *string  `json:"username,omitempty"`
	FullName             *string  `json:"full_name,omitempty"`
	Avatar               *string  `json:"avatar,omitempty"`
	Bio                  *string  `json:"bio,omitempty"`
	NotificationRadiusKm *int     `json:"notification_radius_km,omitempty"`
	PushNotifications    *bool    `json:"push_notifications,omitempty"`
	Password             *string  `json:"password,omitempty"`
}

type UpdateLocationRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type ErrorResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	DB        string `json:"db"`
}
