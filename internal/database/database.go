package database

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/lewlew/lewlew-server/internal/config"
	"github.com/lewlew/lewlew-server/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func Connect(cfg *config.Config) error {
	var err error
	DB, err = gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetMaxIdleConns(25)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	slog.Info("database connected")
	return nil
}

func Migrate() error {
	if err := DB.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Comment{},
		&models.Like{},
		&models.FriendRelation{},
		&models.Notification{},
		&models.Report{},
		&models.Upload{},
		&models.SystemLog{},
	); err != nil {
		return err
	}
	return seedSystemModerator()
}

// seedSystemModerator ensures the reserved moderation actor exists so posts
// removed by the pipeline carry a valid deleted_by reference.
func seedSystemModerator() error {
	user := models.User{
		ID:          models.SystemModeratorID,
		PhoneNumber: "system",
		Username:    "system",
		FullName:    "LewLew Moderation",
		Password:    "",
		Role:        "system",
	}
	return DB.Where("id = ?", models.SystemModeratorID).
		FirstOrCreate(&user).Error
}

func Ping() error {
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
