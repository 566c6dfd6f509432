package service

import (
	"fmt"
	"io"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/eduworld-api/internal/database"
	"github.com/noah-isme/eduworld-api/internal/models"
	"github.com/noah-isme/eduworld-api/internal/repository"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))
	return db
}

func newProgressRepos(db *gorm.DB) ProgressRepositories {
	return ProgressRepositories{
		Students: repository.NewStudentRepository(db),
		Classes:  repository.NewClassRepository(db),
		Subjects: repository.NewSubjectRepository(db),
		Units:    repository.NewUnitRepository(db),
		Quizzes:  repository.NewQuizRepository(db),
	}
}

func newTestProgressService(db *gorm.DB) ProgressService {
	return NewProgressService(newProgressRepos(db), validator.New(), testLogger(), true)
}

func resources(urls ...string) datatypes.JSONSlice[models.UnitResource] {
	items := make(datatypes.JSONSlice[models.UnitResource], 0, len(urls))
	for i, url := range urls {
		items = append(items, models.UnitResource{URL: url, Name: fmt.Sprintf("Resource %d", i+1)})
	}
	return items
}

type catalogFixture struct {
	class   models.Class
	subject models.Subject
	unit    models.Unit
	student models.Student
}

// seedCatalog creates class C1 with subject S1 and unit U1 (2 videos, 1 pdf) and a student
// enrolled in C1 without explicit subjects.
func seedCatalog(t *testing.T, db *gorm.DB) catalogFixture {
	t.Helper()

	class := models.Class{Name: "C1"}
	require.NoError(t, db.Create(&class).Error)
	subject := models.Subject{ClassID: class.ID, Name: "S1"}
	require.NoError(t, db.Create(&subject).Error)
	unit := models.Unit{
		SubjectID: subject.ID,
		Title:     "U1",
		Videos:    resources("/uploads/v1.mp4", "/uploads/v2.mp4"),
		PDFs:      resources("/uploads/notes.pdf"),
	}
	require.NoError(t, db.Create(&unit).Error)

	student := models.Student{Username: "learner", EnrolledClasses: []models.Class{class}}
	require.NoError(t, db.Create(&student).Error)

	return catalogFixture{class: class, subject: subject, unit: unit, student: student}
}
