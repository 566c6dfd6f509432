package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/noah-isme/eduworld-api/internal/models"
)

// Models lists every table managed by the API.
func Models() []interface{} {
	return []interface{}{
		&models.Class{},
		&models.Subject{},
		&models.Unit{},
		&models.Quiz{},
		&models.Student{},
		&models.ResourceProgress{},
		&models.QuizProgress{},
		&models.UploadRecord{},
	}
}

// Migrate creates or updates the schema for all managed models.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	return nil
}
