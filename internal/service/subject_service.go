package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/eduworld-api/internal/dto"
	"github.com/noah-isme/eduworld-api/internal/models"
	"github.com/noah-isme/eduworld-api/internal/repository"
)

// ErrSubjectNotFound indicates the subject does not exist.
var ErrSubjectNotFound = errors.New("subject not found")

// SubjectService manages subjects inside classes.
type SubjectService interface {
	ListByClass(ctx context.Context, classID uint) ([]dto.SubjectResponse, error)
	Create(ctx context.Context, req dto.SubjectCreateRequest) (dto.SubjectResponse, error)
	Update(ctx context.Context, id uint, req dto.SubjectUpdateRequest) (dto.SubjectResponse, error)
	Delete(ctx context.Context, id uint) error
}

type subjectService struct {
	repo       repository.SubjectRepository
	classes    repository.ClassRepository
	curriculum repository.CurriculumRepository
	media      MediaService
	validator  *validator.Validate
	logger     zerolog.Logger
	policy     *bluemonday.Policy
}

// NewSubjectService constructs the subject service.
func NewSubjectService(repo repository.SubjectRepository, classes repository.ClassRepository, curriculum repository.CurriculumRepository, media MediaService, validate *validator.Validate, logger zerolog.Logger) SubjectService {
	return &subjectService{
		repo:       repo,
		classes:    classes,
		curriculum: curriculum,
		media:      media,
		validator:  validate,
		logger:     logger.With().Str("component", "subject_service").Logger(),
		policy:     bluemonday.StrictPolicy(),
	}
}

func (s *subjectService) ListByClass(ctx context.Context, classID uint) ([]dto.SubjectResponse, error) {
	subjects, err := s.repo.ListByClass(ctx, classID)
	if err != nil {
		return nil, err
	}

	return dto.NewSubjectResponseSlice(subjects), nil
}

func (s *subjectService) Create(ctx context.Context, req dto.SubjectCreateRequest) (dto.SubjectResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.SubjectResponse{}, err
	}

	name := cleanText(s.policy, req.Name)
	if name == "" {
		return dto.SubjectResponse{}, ErrNameRequired
	}

	if _, err := s.classes.GetByID(ctx, req.ClassID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubjectResponse{}, ErrClassNotFound
		}
		return dto.SubjectResponse{}, err
	}

	subject := models.Subject{
		ClassID:     req.ClassID,
		Name:        name,
		Description: cleanText(s.policy, req.Description),
	}
	if err := s.repo.Create(ctx, &subject); err != nil {
		return dto.SubjectResponse{}, fmt.Errorf("create subject: %w", err)
	}

	return dto.NewSubjectResponse(subject), nil
}

func (s *subjectService) Update(ctx context.Context, id uint, req dto.SubjectUpdateRequest) (dto.SubjectResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.SubjectResponse{}, err
	}

	subject, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubjectResponse{}, ErrSubjectNotFound
		}
		return dto.SubjectResponse{}, err
	}

	if req.Name != nil {
		if name := cleanText(s.policy, *req.Name); name != "" {
			subject.Name = name
		}
	}
	if req.Description != nil {
		subject.Description = cleanText(s.policy, *req.Description)
	}

	if err := s.repo.Update(ctx, &subject); err != nil {
		return dto.SubjectResponse{}, fmt.Errorf("update subject: %w", err)
	}

	return dto.NewSubjectResponse(subject), nil
}

func (s *subjectService) Delete(ctx context.Context, id uint) error {
	urls, err := s.curriculum.DeleteSubject(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSubjectNotFound
		}
		return fmt.Errorf("delete subject: %w", err)
	}

	s.logger.Info().Uint("subject_id", id).Msg("subject deleted with units")
	removeMediaAfterCommit(ctx, s.media, s.logger, urls)
	return nil
}
