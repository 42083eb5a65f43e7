package utils

import (
	"fmt"
	"studytrack/backend/config"
	"studytrack/backend/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func InitDB(cfg *config.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	return db, nil
}

// AutoMigrate creates or updates every table the app uses.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Settings{},
		&models.Subject{},
		&models.Topic{},
		&models.Task{},
		&models.Goal{},
		&models.CalendarEvent{},
		&models.StudySession{},
		&models.Note{},
		&models.ProgressSnapshot{},
		&models.Badge{},
	)
}
