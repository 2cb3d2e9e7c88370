package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Redis (verification codes)
	RedisURL string

	// JWT
	JWTSecret string
	JWTExpiry time.Duration

	// Sightengine image moderation
	SightengineAPIUser   string
	SightengineAPISecret string
	SightengineURL       string
	ModerationTimeout    time.Duration
	AnalysisWorkers      int

	// Twilio SMS
	TwilioAccountSID  string
	TwilioAuthToken   string
	TwilioFromNumber  string
	SMSEnabled        bool
	DevelopmentMode   bool
	FixedVerifyCode   string
	VerifyCodeExpiry  time.Duration

	// Cloudinary
	CloudinaryURL string

	// Posts
	PostTTL           time.Duration
	PostPurgeAfter    time.Duration
	LogRetentionDays  int

	// Admin
	AdminUserIDs string

	// Server
	Port        string
	CORSOrigins string
}

func Load() *Config {
	// Missing .env is fine; real environments set variables directly.
	_ = godotenv.Load()

	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "lewlew"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379/0"),

		JWTSecret: getEnv("JWT_SECRET", ""),
		JWTExpiry: parseDuration(getEnv("JWT_EXPIRY", "168h"), 168*time.Hour),

		SightengineAPIUser:   getEnv("SIGHTENGINE_API_USER", ""),
		SightengineAPISecret: getEnv("SIGHTENGINE_API_SECRET", ""),
		SightengineURL:       getEnv("SIGHTENGINE_URL", "https://api.sightengine.com/1.0/check.json"),
		ModerationTimeout:    parseDuration(getEnv("MODERATION_TIMEOUT", "10s"), 10*time.Second),
		AnalysisWorkers:      parseInt(getEnv("ANALYSIS_WORKERS", "2"), 2),

		TwilioAccountSID: getEnv("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:  getEnv("TWILIO_AUTH_TOKEN", ""),
		TwilioFromNumber: getEnv("TWILIO_PHONE_NUMBER", ""),
		SMSEnabled:       getEnv("SMS_ENABLED", "false") == "true",
		DevelopmentMode:  getEnv("DEVELOPMENT_MODE", "false") == "true",
		FixedVerifyCode:  getEnv("FIXED_VERIFICATION_CODE", "123456"),
		VerifyCodeExpiry: parseDuration(getEnv("VERIFY_CODE_EXPIRY", "10m"), 10*time.Minute),

		CloudinaryURL: getEnv("CLOUDINARY_URL", ""),

		PostTTL:          parseDuration(getEnv("POST_TTL", "24h"), 24*time.Hour),
		PostPurgeAfter:   parseDuration(getEnv("POST_PURGE_AFTER", "168h"), 168*time.Hour),
		LogRetentionDays: parseInt(getEnv("LOG_RETENTION_DAYS", "30"), 30),

		AdminUserIDs: getEnv("ADMIN_USER_IDS", ""),

		Port:        getEnv("PORT", "8080"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
	}
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}
