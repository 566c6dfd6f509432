package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/eduworld-api/internal/models"
)

// UploadRepository persists metadata about uploaded unit media.
type UploadRepository interface {
	Create(ctx context.Context, record *models.UploadRecord) error
	DeleteByURLs(ctx context.Context, urls []string) error
}

type uploadRepository struct {
	db *gorm.DB
}

// NewUploadRepository constructs a repository for upload records.
func NewUploadRepository(db *gorm.DB) UploadRepository {
	return &uploadRepository{db: db}
}

func (r *uploadRepository) Create(ctx context.Context, record *models.UploadRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *uploadRepository) DeleteByURLs(ctx context.Context, urls []string) error {
	if len(urls) == 0 {
		return nil
	}

	return r.db.WithContext(ctx).Where("url IN ?", urls).Delete(&models.UploadRecord{}).Error
}
