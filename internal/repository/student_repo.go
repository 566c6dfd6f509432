package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/eduworld-api/internal/models"
)

// StudentRepository persists students, their enrollments and completion ledgers.
type StudentRepository interface {
	List(ctx context.Context) ([]models.Student, error)
	GetByID(ctx context.Context, id uint) (models.Student, error)
	GetWithEnrollments(ctx context.Context, id uint) (models.Student, error)
	IdentityTaken(ctx context.Context, username string, email *string, excludeID uint) (bool, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	ReplaceEnrollments(ctx context.Context, student *models.Student, classes []models.Class, subjects []models.Subject) error
	Delete(ctx context.Context, id uint) error
	UpdateOverallProgress(ctx context.Context, id uint, percent int) error
	AddResourceProgress(ctx context.Context, entry *models.ResourceProgress) error
	UpsertQuizProgress(ctx context.Context, entry *models.QuizProgress) error
}

type studentRepository struct {
	db *gorm.DB
}

// NewStudentRepository creates a new student repository instance.
func NewStudentRepository(db *gorm.DB) StudentRepository {
	return &studentRepository{db: db}
}

func (r *studentRepository) List(ctx context.Context) ([]models.Student, error) {
	var students []models.Student
	err := r.db.WithContext(ctx).
		Preload("EnrolledClasses", orderByID).
		Preload("EnrolledSubjects", orderByID).
		Order("created_at DESC").
		Find(&students).Error
	if err != nil {
		return nil, err
	}

	return students, nil
}

func (r *studentRepository) GetByID(ctx context.Context, id uint) (models.Student, error) {
	var student models.Student
	if err := r.db.WithContext(ctx).First(&student, id).Error; err != nil {
		return models.Student{}, err
	}

	return student, nil
}

// GetWithEnrollments loads everything the progress aggregator reads in one snapshot.
func (r *studentRepository) GetWithEnrollments(ctx context.Context, id uint) (models.Student, error) {
	var student models.Student
	err := r.db.WithContext(ctx).
		Preload("EnrolledClasses", orderByID).
		Preload("EnrolledClasses.Subjects", orderByID).
		Preload("EnrolledSubjects", orderByID).
		Preload("ResourceProgress", orderByID).
		Preload("QuizProgress", orderByID).
		First(&student, id).Error
	if err != nil {
		return models.Student{}, err
	}

	return student, nil
}

func (r *studentRepository) IdentityTaken(ctx context.Context, username string, email *string, excludeID uint) (bool, error) {
	query := r.db.WithContext(ctx).Model(&models.Student{})

	normalized := strings.ToLower(strings.TrimSpace(username))
	if email != nil && strings.TrimSpace(*email) != "" {
		query = query.Where("(username = ? OR email = ?)", normalized, strings.ToLower(strings.TrimSpace(*email)))
	} else {
		query = query.Where("username = ?", normalized)
	}

	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r *studentRepository) Create(ctx context.Context, student *models.Student) error {
	return r.db.WithContext(ctx).Create(student).Error
}

func (r *studentRepository) Update(ctx context.Context, student *models.Student) error {
	return r.db.WithContext(ctx).
		Omit("EnrolledClasses", "EnrolledSubjects", "ResourceProgress", "QuizProgress", "overall_progress").
		Save(student).Error
}

func (r *studentRepository) ReplaceEnrollments(ctx context.Context, student *models.Student, classes []models.Class, subjects []models.Subject) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if classes != nil {
			if err := tx.Model(student).Association("EnrolledClasses").Replace(classes); err != nil {
				return err
			}
		}
		if subjects != nil {
			if err := tx.Model(student).Association("EnrolledSubjects").Replace(subjects); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *studentRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("student_id = ?", id).Delete(&models.ResourceProgress{}).Error; err != nil {
			return err
		}
		if err := tx.Where("student_id = ?", id).Delete(&models.QuizProgress{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM student_classes WHERE student_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM student_subjects WHERE student_id = ?", id).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.Student{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// UpdateOverallProgress overwrites the cached percentage without touching timestamps or hooks.
func (r *studentRepository) UpdateOverallProgress(ctx context.Context, id uint, percent int) error {
	result := r.db.WithContext(ctx).Model(&models.Student{}).
		Where("id = ?", id).
		UpdateColumn("overall_progress", percent)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

// AddResourceProgress appends a ledger entry; an existing identical entry is kept as is.
func (r *studentRepository) AddResourceProgress(ctx context.Context, entry *models.ResourceProgress) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "student_id"}, {Name: "unit_id"}, {Name: "resource_type"}, {Name: "resource_url"},
			},
			DoNothing: true,
		}).
		Create(entry).Error
}

// UpsertQuizProgress keeps exactly one row per student and quiz, replacing score and time.
func (r *studentRepository) UpsertQuizProgress(ctx context.Context, entry *models.QuizProgress) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "student_id"}, {Name: "quiz_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"score", "completed_at"}),
		}).
		Create(entry).Error
}

func orderByID(db *gorm.DB) *gorm.DB {
	return db.Order("id ASC")
}
