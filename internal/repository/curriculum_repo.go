package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/eduworld-api/internal/models"
)

// CurriculumRepository removes catalogue branches together with everything that hangs off them.
// Each delete returns the media URLs owned by the removed units so callers can clean up storage.
type CurriculumRepository interface {
	DeleteClass(ctx context.Context, id uint) ([]string, error)
	DeleteSubject(ctx context.Context, id uint) ([]string, error)
	DeleteUnit(ctx context.Context, id uint) ([]string, error)
	DeleteQuiz(ctx context.Context, id uint) error
}

type curriculumRepository struct {
	db *gorm.DB
}

// NewCurriculumRepository constructs the cascade repository.
func NewCurriculumRepository(db *gorm.DB) CurriculumRepository {
	return &curriculumRepository{db: db}
}

func (r *curriculumRepository) DeleteClass(ctx context.Context, id uint) ([]string, error) {
	var urls []string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var subjectIDs []uint
		if err := tx.Model(&models.Subject{}).Where("class_id = ?", id).Pluck("id", &subjectIDs).Error; err != nil {
			return err
		}

		removed, err := deleteSubjects(tx, subjectIDs)
		if err != nil {
			return err
		}
		urls = removed

		if err := tx.Exec("DELETE FROM student_classes WHERE class_id = ?", id).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.Class{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return urls, nil
}

func (r *curriculumRepository) DeleteSubject(ctx context.Context, id uint) ([]string, error) {
	var urls []string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Subject{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return gorm.ErrRecordNotFound
		}

		removed, err := deleteSubjects(tx, []uint{id})
		urls = removed
		return err
	})
	if err != nil {
		return nil, err
	}

	return urls, nil
}

func (r *curriculumRepository) DeleteUnit(ctx context.Context, id uint) ([]string, error) {
	var urls []string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var units []models.Unit
		if err := tx.Where("id = ?", id).Find(&units).Error; err != nil {
			return err
		}
		if len(units) == 0 {
			return gorm.ErrRecordNotFound
		}

		removed, err := deleteUnits(tx, units)
		urls = removed
		return err
	})
	if err != nil {
		return nil, err
	}

	return urls, nil
}

func (r *curriculumRepository) DeleteQuiz(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("quiz_id = ?", id).Delete(&models.QuizProgress{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.Quiz{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func deleteSubjects(tx *gorm.DB, subjectIDs []uint) ([]string, error) {
	if len(subjectIDs) == 0 {
		return nil, nil
	}

	var units []models.Unit
	if err := tx.Where("subject_id IN ?", subjectIDs).Find(&units).Error; err != nil {
		return nil, err
	}

	urls, err := deleteUnits(tx, units)
	if err != nil {
		return nil, err
	}

	if err := tx.Exec("DELETE FROM student_subjects WHERE subject_id IN ?", subjectIDs).Error; err != nil {
		return nil, err
	}
	if err := tx.Where("id IN ?", subjectIDs).Delete(&models.Subject{}).Error; err != nil {
		return nil, err
	}

	return urls, nil
}

// deleteUnits drops the units, their quizzes and quiz ledger rows. Resource ledger rows stay behind
// and no longer match any curriculum key.
func deleteUnits(tx *gorm.DB, units []models.Unit) ([]string, error) {
	if len(units) == 0 {
		return nil, nil
	}

	unitIDs := make([]uint, 0, len(units))
	urls := make([]string, 0)
	for _, unit := range units {
		unitIDs = append(unitIDs, unit.ID)
		urls = append(urls, unit.ResourceURLs()...)
	}

	var quizIDs []uint
	if err := tx.Model(&models.Quiz{}).Where("unit_id IN ?", unitIDs).Pluck("id", &quizIDs).Error; err != nil {
		return nil, err
	}
	if len(quizIDs) > 0 {
		if err := tx.Where("quiz_id IN ?", quizIDs).Delete(&models.QuizProgress{}).Error; err != nil {
			return nil, err
		}
		if err := tx.Where("id IN ?", quizIDs).Delete(&models.Quiz{}).Error; err != nil {
			return nil, err
		}
	}

	if err := tx.Where("id IN ?", unitIDs).Delete(&models.Unit{}).Error; err != nil {
		return nil, err
	}

	return urls, nil
}
