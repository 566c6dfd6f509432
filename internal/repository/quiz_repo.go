package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/eduworld-api/internal/models"
)

// QuizRepository defines persistence operations for quizzes.
type QuizRepository interface {
	ListAll(ctx context.Context) ([]models.Quiz, error)
	ListByUnit(ctx context.Context, unitID uint, enabledOnly bool) ([]models.Quiz, error)
	ListByUnitIDs(ctx context.Context, unitIDs []uint) ([]models.Quiz, error)
	ListByIDs(ctx context.Context, ids []uint) ([]models.Quiz, error)
	GetByID(ctx context.Context, id uint) (models.Quiz, error)
	Create(ctx context.Context, quiz *models.Quiz) error
	Update(ctx context.Context, quiz *models.Quiz) error
	SetEnabled(ctx context.Context, id uint, enabled bool) error
}

type quizRepository struct {
	db *gorm.DB
}

// NewQuizRepository instantiates a GORM-backed repository.
func NewQuizRepository(db *gorm.DB) QuizRepository {
	return &quizRepository{db: db}
}

func (r *quizRepository) ListAll(ctx context.Context) ([]models.Quiz, error) {
	var quizzes []models.Quiz
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&quizzes).Error; err != nil {
		return nil, err
	}

	return quizzes, nil
}

func (r *quizRepository) ListByUnit(ctx context.Context, unitID uint, enabledOnly bool) ([]models.Quiz, error) {
	query := r.db.WithContext(ctx).Where("unit_id = ?", unitID)
	if enabledOnly {
		query = query.Where("enabled = ?", true)
	}

	var quizzes []models.Quiz
	if err := query.Order("created_at DESC").Find(&quizzes).Error; err != nil {
		return nil, err
	}

	return quizzes, nil
}

// ListByUnitIDs returns quizzes attached to any of the units regardless of their enabled flag.
func (r *quizRepository) ListByUnitIDs(ctx context.Context, unitIDs []uint) ([]models.Quiz, error) {
	if len(unitIDs) == 0 {
		return []models.Quiz{}, nil
	}

	var quizzes []models.Quiz
	if err := r.db.WithContext(ctx).Where("unit_id IN ?", unitIDs).Order("id ASC").Find(&quizzes).Error; err != nil {
		return nil, err
	}

	return quizzes, nil
}

func (r *quizRepository) ListByIDs(ctx context.Context, ids []uint) ([]models.Quiz, error) {
	if len(ids) == 0 {
		return []models.Quiz{}, nil
	}

	var quizzes []models.Quiz
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("id ASC").Find(&quizzes).Error; err != nil {
		return nil, err
	}

	return quizzes, nil
}

func (r *quizRepository) GetByID(ctx context.Context, id uint) (models.Quiz, error) {
	var quiz models.Quiz
	if err := r.db.WithContext(ctx).First(&quiz, id).Error; err != nil {
		return models.Quiz{}, err
	}

	return quiz, nil
}

func (r *quizRepository) Create(ctx context.Context, quiz *models.Quiz) error {
	return r.db.WithContext(ctx).Create(quiz).Error
}

func (r *quizRepository) Update(ctx context.Context, quiz *models.Quiz) error {
	return r.db.WithContext(ctx).Save(quiz).Error
}

func (r *quizRepository) SetEnabled(ctx context.Context, id uint, enabled bool) error {
	result := r.db.WithContext(ctx).Model(&models.Quiz{}).Where("id = ?", id).Update("enabled", enabled)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
