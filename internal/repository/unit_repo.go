package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/eduworld-api/internal/models"
)

// UnitRepository defines persistence operations for units.
type UnitRepository interface {
	ListBySubject(ctx context.Context, subjectID uint) ([]models.Unit, error)
	ListBySubjectIDs(ctx context.Context, subjectIDs []uint) ([]models.Unit, error)
	ListByIDs(ctx context.Context, ids []uint) ([]models.Unit, error)
	GetByID(ctx context.Context, id uint) (models.Unit, error)
	Create(ctx context.Context, unit *models.Unit) error
	Update(ctx context.Context, unit *models.Unit) error
}

type unitRepository struct {
	db *gorm.DB
}

// NewUnitRepository instantiates a GORM-backed repository.
func NewUnitRepository(db *gorm.DB) UnitRepository {
	return &unitRepository{db: db}
}

func (r *unitRepository) ListBySubject(ctx context.Context, subjectID uint) ([]models.Unit, error) {
	var units []models.Unit
	if err := r.db.WithContext(ctx).Where("subject_id = ?", subjectID).Order("id ASC").Find(&units).Error; err != nil {
		return nil, err
	}

	return units, nil
}

// ListBySubjectIDs returns every unit owned by any of the subjects, ordered by id.
func (r *unitRepository) ListBySubjectIDs(ctx context.Context, subjectIDs []uint) ([]models.Unit, error) {
	if len(subjectIDs) == 0 {
		return []models.Unit{}, nil
	}

	var units []models.Unit
	if err := r.db.WithContext(ctx).Where("subject_id IN ?", subjectIDs).Order("id ASC").Find(&units).Error; err != nil {
		return nil, err
	}

	return units, nil
}

func (r *unitRepository) ListByIDs(ctx context.Context, ids []uint) ([]models.Unit, error) {
	if len(ids) == 0 {
		return []models.Unit{}, nil
	}

	var units []models.Unit
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("id ASC").Find(&units).Error; err != nil {
		return nil, err
	}

	return units, nil
}

func (r *unitRepository) GetByID(ctx context.Context, id uint) (models.Unit, error) {
	var unit models.Unit
	if err := r.db.WithContext(ctx).First(&unit, id).Error; err != nil {
		return models.Unit{}, err
	}

	return unit, nil
}

func (r *unitRepository) Create(ctx context.Context, unit *models.Unit) error {
	return r.db.WithContext(ctx).Create(unit).Error
}

func (r *unitRepository) Update(ctx context.Context, unit *models.Unit) error {
	return r.db.WithContext(ctx).Save(unit).Error
}
