package database

import (
	"gorm.io/gorm"

	"github.com/noah-isme/mentora-api/internal/models"
)

// Migrate creates or updates the tables owned by the API.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.CompanyRequest{},
		&models.MentorApplication{},
		&models.Program{},
		&models.ReviewDecision{},
		&models.ActivityLog{},
		&models.Notification{},
	)
}
