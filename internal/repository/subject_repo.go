package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/eduworld-api/internal/models"
)

// SubjectRepository defines persistence operations for subjects.
type SubjectRepository interface {
	ListByClass(ctx context.Context, classID uint) ([]models.Subject, error)
	ListByIDs(ctx context.Context, ids []uint) ([]models.Subject, error)
	GetByID(ctx context.Context, id uint) (models.Subject, error)
	Create(ctx context.Context, subject *models.Subject) error
	Update(ctx context.Context, subject *models.Subject) error
}

type subjectRepository struct {
	db *gorm.DB
}

// NewSubjectRepository instantiates a GORM-backed repository.
func NewSubjectRepository(db *gorm.DB) SubjectRepository {
	return &subjectRepository{db: db}
}

func (r *subjectRepository) ListByClass(ctx context.Context, classID uint) ([]models.Subject, error) {
	var subjects []models.Subject
	if err := r.db.WithContext(ctx).Where("class_id = ?", classID).Order("id ASC").Find(&subjects).Error; err != nil {
		return nil, err
	}

	return subjects, nil
}

func (r *subjectRepository) ListByIDs(ctx context.Context, ids []uint) ([]models.Subject, error) {
	if len(ids) == 0 {
		return []models.Subject{}, nil
	}

	var subjects []models.Subject
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("id ASC").Find(&subjects).Error; err != nil {
		return nil, err
	}

	return subjects, nil
}

func (r *subjectRepository) GetByID(ctx context.Context, id uint) (models.Subject, error) {
	var subject models.Subject
	if err := r.db.WithContext(ctx).First(&subject, id).Error; err != nil {
		return models.Subject{}, err
	}

	return subject, nil
}

func (r *subjectRepository) Create(ctx context.Context, subject *models.Subject) error {
	return r.db.WithContext(ctx).Create(subject).Error
}

func (r *subjectRepository) Update(ctx context.Context, subject *models.Subject) error {
	return r.db.WithContext(ctx).Save(subject).Error
}
