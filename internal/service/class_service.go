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

var (
	// ErrClassNotFound indicates the class does not exist.
	ErrClassNotFound = errors.New("class not found")
	// ErrClassNameTaken indicates another class already uses the name.
	ErrClassNameTaken = errors.New("class name already exists")
)

// ClassService manages classes and their cascade deletion.
type ClassService interface {
	List(ctx context.Context) ([]dto.ClassResponse, error)
	Get(ctx context.Context, id uint) (dto.ClassResponse, error)
	Create(ctx context.Context, req dto.ClassCreateRequest) (dto.ClassResponse, error)
	Update(ctx context.Context, id uint, req dto.ClassUpdateRequest) (dto.ClassResponse, error)
	Delete(ctx context.Context, id uint) error
}

type classService struct {
	repo       repository.ClassRepository
	curriculum repository.CurriculumRepository
	media      MediaService
	validator  *validator.Validate
	logger     zerolog.Logger
	policy     *bluemonday.Policy
}

// NewClassService constructs the class service.
func NewClassService(repo repository.ClassRepository, curriculum repository.CurriculumRepository, media MediaService, validate *validator.Validate, logger zerolog.Logger) ClassService {
	return &classService{
		repo:       repo,
		curriculum: curriculum,
		media:      media,
		validator:  validate,
		logger:     logger.With().Str("component", "class_service").Logger(),
		policy:     bluemonday.StrictPolicy(),
	}
}

func (s *classService) List(ctx context.Context) ([]dto.ClassResponse, error) {
	classes, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	return dto.NewClassResponseSlice(classes), nil
}

func (s *classService) Get(ctx context.Context, id uint) (dto.ClassResponse, error) {
	class, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ClassResponse{}, ErrClassNotFound
		}
		return dto.ClassResponse{}, err
	}

	return dto.NewClassResponse(class), nil
}

func (s *classService) Create(ctx context.Context, req dto.ClassCreateRequest) (dto.ClassResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.ClassResponse{}, err
	}

	name := cleanText(s.policy, req.Name)
	if name == "" {
		return dto.ClassResponse{}, ErrNameRequired
	}

	taken, err := s.repo.NameTaken(ctx, name, 0)
	if err != nil {
		return dto.ClassResponse{}, err
	}
	if taken {
		return dto.ClassResponse{}, ErrClassNameTaken
	}

	class := models.Class{Name: name, Description: cleanText(s.policy, req.Description)}
	if err := s.repo.Create(ctx, &class); err != nil {
		return dto.ClassResponse{}, fmt.Errorf("create class: %w", err)
	}

	s.logger.Info().Uint("class_id", class.ID).Msg("class created")
	return dto.NewClassResponse(class), nil
}

func (s *classService) Update(ctx context.Context, id uint, req dto.ClassUpdateRequest) (dto.ClassResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.ClassResponse{}, err
	}

	class, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ClassResponse{}, ErrClassNotFound
		}
		return dto.ClassResponse{}, err
	}

	if req.Name != nil {
		if name := cleanText(s.policy, *req.Name); name != "" && name != class.Name {
			taken, err := s.repo.NameTaken(ctx, name, class.ID)
			if err != nil {
				return dto.ClassResponse{}, err
			}
			if taken {
				return dto.ClassResponse{}, ErrClassNameTaken
			}
			class.Name = name
		}
	}
	if req.Description != nil {
		if description := cleanText(s.policy, *req.Description); description != "" {
			class.Description = description
		}
	}

	if err := s.repo.Update(ctx, &class); err != nil {
		return dto.ClassResponse{}, fmt.Errorf("update class: %w", err)
	}

	return dto.NewClassResponse(class), nil
}

func (s *classService) Delete(ctx context.Context, id uint) error {
	urls, err := s.curriculum.DeleteClass(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrClassNotFound
		}
		return fmt.Errorf("delete class: %w", err)
	}

	s.logger.Info().Uint("class_id", id).Msg("class deleted with subjects and units")
	removeMediaAfterCommit(ctx, s.media, s.logger, urls)
	return nil
}
