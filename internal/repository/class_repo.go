package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/noah-isme/eduworld-api/internal/models"
)

// ClassRepository defines persistence operations for classes.
type ClassRepository interface {
	List(ctx context.Context) ([]models.Class, error)
	GetByID(ctx context.Context, id uint) (models.Class, error)
	ListByIDs(ctx context.Context, ids []uint) ([]models.Class, error)
	NameTaken(ctx context.Context, name string, excludeID uint) (bool, error)
	Create(ctx context.Context, class *models.Class) error
	Update(ctx context.Context, class *models.Class) error
}

type classRepository struct {
	db *gorm.DB
}

// NewClassRepository instantiates a GORM-backed repository.
func NewClassRepository(db *gorm.DB) ClassRepository {
	return &classRepository{db: db}
}

func (r *classRepository) List(ctx context.Context) ([]models.Class, error) {
	var classes []models.Class
	if err := r.db.WithContext(ctx).Preload("Subjects", orderByID).Order("name ASC").Find(&classes).Error; err != nil {
		return nil, err
	}

	return classes, nil
}

func (r *classRepository) GetByID(ctx context.Context, id uint) (models.Class, error) {
	var class models.Class
	if err := r.db.WithContext(ctx).Preload("Subjects", orderByID).First(&class, id).Error; err != nil {
		return models.Class{}, err
	}

	return class, nil
}

func (r *classRepository) ListByIDs(ctx context.Context, ids []uint) ([]models.Class, error) {
	if len(ids) == 0 {
		return []models.Class{}, nil
	}

	var classes []models.Class
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("id ASC").Find(&classes).Error; err != nil {
		return nil, err
	}

	return classes, nil
}

func (r *classRepository) NameTaken(ctx context.Context, name string, excludeID uint) (bool, error) {
	query := r.db.WithContext(ctx).Model(&models.Class{}).
		Where("LOWER(name) = ?", strings.ToLower(strings.TrimSpace(name)))
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r *classRepository) Create(ctx context.Context, class *models.Class) error {
	return r.db.WithContext(ctx).Omit("Subjects").Create(class).Error
}

func (r *classRepository) Update(ctx context.Context, class *models.Class) error {
	return r.db.WithContext(ctx).Omit("Subjects").Save(class).Error
}
