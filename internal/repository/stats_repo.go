package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/eduworld-api/internal/models"
)

// ResourceTotals counts the media attached to every unit.
type ResourceTotals struct {
	Videos int64
	PDFs   int64
}

// StatsRepository provides the aggregate counts shown on the admin dashboard.
type StatsRepository interface {
	CountStudents(ctx context.Context) (int64, error)
	CountClasses(ctx context.Context) (int64, error)
	CountSubjects(ctx context.Context) (int64, error)
	CountUnits(ctx context.Context) (int64, error)
	CountAttachedQuizzes(ctx context.Context) (int64, error)
	SumResources(ctx context.Context) (ResourceTotals, error)
}

type statsRepository struct {
	db *gorm.DB
}

// NewStatsRepository constructs the admin statistics repository.
func NewStatsRepository(db *gorm.DB) StatsRepository {
	return &statsRepository{db: db}
}

func (r *statsRepository) CountStudents(ctx context.Context) (int64, error) {
	return r.count(ctx, &models.Student{})
}

func (r *statsRepository) CountClasses(ctx context.Context) (int64, error) {
	return r.count(ctx, &models.Class{})
}

func (r *statsRepository) CountSubjects(ctx context.Context) (int64, error) {
	return r.count(ctx, &models.Subject{})
}

func (r *statsRepository) CountUnits(ctx context.Context) (int64, error) {
	return r.count(ctx, &models.Unit{})
}

// CountAttachedQuizzes ignores quizzes whose unit no longer exists.
func (r *statsRepository) CountAttachedQuizzes(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Quiz{}).
		Joins("JOIN units ON units.id = quizzes.unit_id").
		Count(&total).Error
	return total, err
}

func (r *statsRepository) SumResources(ctx context.Context) (ResourceTotals, error) {
	var units []models.Unit
	if err := r.db.WithContext(ctx).Select("id", "videos", "pdfs").Find(&units).Error; err != nil {
		return ResourceTotals{}, err
	}

	var totals ResourceTotals
	for _, unit := range units {
		totals.Videos += int64(len(unit.Videos))
		totals.PDFs += int64(len(unit.PDFs))
	}

	return totals, nil
}

func (r *statsRepository) count(ctx context.Context, model interface{}) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(model).Count(&total).Error
	return total, err
}
