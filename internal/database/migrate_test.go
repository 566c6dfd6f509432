package database

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/eduworld-api/internal/models"
)

func TestMigrateCreatesTables(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, Migrate(db))

	for _, model := range Models() {
		require.True(t, db.Migrator().HasTable(model))
	}
	require.True(t, db.Migrator().HasTable("student_classes"))
	require.True(t, db.Migrator().HasTable("student_subjects"))
	require.True(t, db.Migrator().HasIndex(&models.ResourceProgress{}, "idx_resource_progress_entry"))
	require.True(t, db.Migrator().HasIndex(&models.QuizProgress{}, "idx_quiz_progress_entry"))
}
