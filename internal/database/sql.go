package database

import (
	"fmt"

	"lms/internal/models"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func InitDB(config models.DatabaseConfiguration) *gorm.DB {
	sslMode := config.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%d sslmode=%s",
		config.Host, config.User, config.Password, config.Name, config.Port, sslMode,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		zap.L().Fatal("Failed to connect to database", zap.Error(err))
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.UserProfile{},
		&models.LoginFailures{},
		&models.AllowedAuthUser{},
		&models.ThirdPartyLink{},
		&models.RelyingParty{},
		&models.StudentModule{},
		&models.CourseEnrollment{},
		&models.CourseAccessRole{},
		&models.CourseTeam{},
		&models.CourseTeamMembership{},
	)
	if err != nil {
		zap.L().Fatal("Failed to migrate database schema", zap.Error(err))
	}

	return db
}
