package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/lewlew/lewlew-server/internal/cache"
	"github.com/lewlew/lewlew-server/internal/config"
	"github.com/lewlew/lewlew-server/internal/dto"
	"github.com/lewlew/lewlew-server/internal/models"
)

// E.164: leading + and 7-15 digits.
var phonePattern = regexp.MustCompile(`^\+[1-9]\d{6,14}$`)

const smsThrottleLimit = 5

type AuthService struct {
	db    *gorm.DB
	cfg   *config.Config
	cache *cache.Cache
	sms   *SMSService
}

func NewAuthService(db *gorm.DB, cfg *config.Config, c *cache.Cache, sms *SMSService) *AuthService {
	return &AuthService{db: db, cfg: cfg, cache: c, sms: sms}
}

// RequestCode generates a verification code for a phone number, stores it
// with a TTL and sends it over SMS. Repeated requests within the TTL window
// are throttled per phone number.
func (s *AuthService) RequestCode(ctx context.Context, req *dto.RequestCodeRequest) (*dto.RequestCodeResponse, error) {
	if !phonePattern.MatchString(req.PhoneNumber) {
		return nil, validationErr("phone number must be in E.164 format")
	}

	count, err := s.cache.IncrementCounter(ctx, "sms_throttle:"+req.PhoneNumber, time.Hour)
	if err != nil {
		return nil, err
	}
	if count > smsThrottleLimit {
		return nil, ErrSMSThrottled
	}

	code, err := s.sms.GenerateCode()
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetVerificationCode(ctx, req.PhoneNumber, code, s.cfg.VerifyCodeExpiry); err != nil {
		return nil, fmt.Errorf("store verification code: %w", err)
	}
	if err := s.sms.SendCode(req.PhoneNumber, code); err != nil {
		return nil, err
	}

	return &dto.RequestCodeResponse{
		Message:   "verification code sent",
		ExpiresIn: int(s.cfg.VerifyCodeExpiry.Seconds()),
	}, nil
}

func (s *AuthService) checkCode(ctx context.Context, phoneNumber, code string) error {
	stored, err := s.cache.GetVerificationCode(ctx, phoneNumber)
	if err != nil {
		if errors.Is(err, cache.ErrNotFound) {
			return ErrCodeInvalid
		}
		return err
	}
	if stored != code {
		return ErrCodeInvalid
	}
	return nil
}

// VerifyCode validates a pending code. Existing users get a session token
// straight away; unknown numbers are told to complete registration. The
// code stays valid until registration consumes it.
func (s *AuthService) VerifyCode(ctx context.Context, req *dto.VerifyCodeRequest) (*dto.VerifyCodeResponse, error) {
	if err := s.checkCode(ctx, req.PhoneNumber, req.Code); err != nil {
		return nil, err
	}

	var user models.User
	err := s.db.WithContext(ctx).Where("phone_number = ?", req.PhoneNumber).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &dto.VerifyCodeResponse{
			Verified:   true,
			IsNewUser:  true,
			SignupHint: "complete registration with the same code",
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	_ = s.cache.DeleteVerificationCode(ctx, req.PhoneNumber)
	token, err := s.GenerateToken(&user)
	if err != nil {
		return nil, err
	}
	return &dto.VerifyCodeResponse{Verified: true, Token: token}, nil
}

// Register creates an account after phone verification. The code is
// consumed on success so it cannot seed a second account.
func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	if err := s.checkCode(ctx, req.PhoneNumber, req.Code); err != nil {
		return nil, err
	}
	if len(req.Username) < 3 {
		return nil, validationErr("username must be at least 3 characters")
	}
	if len(req.Password) < 8 {
		return nil, validationErr("password must be at least 8 characters")
	}

	var existing models.User
	if err := s.db.WithContext(ctx).Where("phone_number = ?", req.PhoneNumber).First(&existing).Error; err == nil {
		return nil, ErrPhoneTaken
	}
	if err := s.db.WithContext(ctx).Where("username = ?", req.Username).First(&existing).Error; err == nil {
		return nil, ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		ID:          uuid.New(),
		PhoneNumber: req.PhoneNumber,
		Username:    req.Username,
		FullName:    req.FullName,
		Password:    string(hash),
		Avatar:      req.Avatar,
		Bio:         req.Bio,
		Role:        "user",
	}
	if req.Latitude != nil && req.Longitude != nil {
		user.Latitude = *req.Latitude
		user.Longitude = *req.Longitude
	}

	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		// Concurrent registration slipped past the pre-checks.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			if s.db.WithContext(ctx).Where("username = ?", req.Username).First(&existing).Error == nil {
				return nil, ErrUsernameTaken
			}
			return nil, ErrPhoneTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	_ = s.cache.DeleteVerificationCode(ctx, req.PhoneNumber)

	token, err := s.GenerateToken(&user)
	if err != nil {
		return nil, err
	}
	return &dto.AuthResponse{Token: token, User: UserToResponse(&user, true)}, nil
}

func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	var user models.User
	q := s.db.WithContext(ctx)
	switch {
	case req.PhoneNumber != "":
		q = q.Where("phone_number = ?", req.PhoneNumber)
	case req.Username != "":
		q = q.Where("username = ?", req.Username)
	default:
		return nil, validationErr("phone_number or username is required")
	}
	if err := q.First(&user).Error; err != nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.GenerateToken(&user)
	if err != nil {
		return nil, err
	}
	return &dto.AuthResponse{Token: token, User: UserToResponse(&user, true)}, nil
}

// GenerateToken issues a signed session token with the user ID as subject.
func (s *AuthService) GenerateToken(user *models.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  user.ID.String(),
		"role": user.Role,
		"iat":  now.Unix(),
		"exp":  now.Add(s.cfg.JWTExpiry).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// UserToResponse maps a user row to its API shape. The phone number is
// only included for the owner's own profile.
func UserToResponse(u *models.User, includePhone bool) dto.UserResponse {
	resp := dto.UserResponse{
		ID:                   u.ID,
		Username:             u.Username,
		FullName:             u.FullName,
		Avatar:               u.Avatar,
		Bio:                  u.Bio,
		Role:                 u.Role,
		NotificationRadiusKm: u.NotificationRadiusKm,
		PushNotifications:    u.PushNotifications,
		CreatedAt:            u.CreatedAt,
	}
	if includePhone {
		resp.PhoneNumber = u.PhoneNumber
	}
	return resp
}
