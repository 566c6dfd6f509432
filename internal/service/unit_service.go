package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/eduworld-api/internal/dto"
	"github.com/noah-isme/eduworld-api/internal/models"
	"github.com/noah-isme/eduworld-api/internal/repository"
)

var (
	// ErrUnitNotFound indicates the unit does not exist.
	ErrUnitNotFound = errors.New("unit not found")
	// ErrUnitRequiresVideo is returned when a unit would be left without videos.
	ErrUnitRequiresVideo = errors.New("unit must have at least one video")
)

// UnitUploads holds the media files attached to a unit request.
type UnitUploads struct {
	Videos []*multipart.FileHeader
	PDFs   []*multipart.FileHeader
}

// UnitService manages units and their media.
type UnitService interface {
	ListBySubject(ctx context.Context, subjectID uint) ([]dto.UnitResponse, error)
	Create(ctx context.Context, req dto.UnitCreateRequest, uploads UnitUploads, uploadedBy *uint) (dto.UnitResponse, error)
	Update(ctx context.Context, id uint, req dto.UnitUpdateRequest, uploads UnitUploads, uploadedBy *uint) (dto.UnitResponse, error)
	Delete(ctx context.Context, id uint) error
}

type unitService struct {
	repo       repository.UnitRepository
	subjects   repository.SubjectRepository
	curriculum repository.CurriculumRepository
	media      MediaService
	validator  *validator.Validate
	logger     zerolog.Logger
	policy     *bluemonday.Policy
}

// NewUnitService constructs the unit service.
func NewUnitService(repo repository.UnitRepository, subjects repository.SubjectRepository, curriculum repository.CurriculumRepository, media MediaService, validate *validator.Validate, logger zerolog.Logger) UnitService {
	return &unitService{
		repo:       repo,
		subjects:   subjects,
		curriculum: curriculum,
		media:      media,
		validator:  validate,
		logger:     logger.With().Str("component", "unit_service").Logger(),
		policy:     bluemonday.StrictPolicy(),
	}
}

func (s *unitService) ListBySubject(ctx context.Context, subjectID uint) ([]dto.UnitResponse, error) {
	units, err := s.repo.ListBySubject(ctx, subjectID)
	if err != nil {
		return nil, err
	}

	return dto.NewUnitResponseSlice(units), nil
}

func (s *unitService) Create(ctx context.Context, req dto.UnitCreateRequest, uploads UnitUploads, uploadedBy *uint) (dto.UnitResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.UnitResponse{}, err
	}

	title := cleanText(s.policy, req.Title)
	if title == "" {
		return dto.UnitResponse{}, ErrNameRequired
	}
	if len(uploads.Videos) == 0 {
		return dto.UnitResponse{}, ErrUnitRequiresVideo
	}

	if _, err := s.subjects.GetByID(ctx, req.SubjectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.UnitResponse{}, ErrSubjectNotFound
		}
		return dto.UnitResponse{}, err
	}

	videos, pdfs, stored, err := s.storeUploads(ctx, uploads, req.VideoNames, req.PDFNames, uploadedBy)
	if err != nil {
		return dto.UnitResponse{}, err
	}

	unit := models.Unit{
		SubjectID:   req.SubjectID,
		Title:       title,
		Description: cleanText(s.policy, req.Description),
		Videos:      datatypes.JSONSlice[models.UnitResource](videos),
		PDFs:        datatypes.JSONSlice[models.UnitResource](pdfs),
	}
	if err := s.repo.Create(ctx, &unit); err != nil {
		s.media.Remove(ctx, stored)
		return dto.UnitResponse{}, mapUnitModelError(err, "create unit")
	}

	s.logger.Info().Uint("unit_id", unit.ID).Int("videos", len(videos)).Int("pdfs", len(pdfs)).Msg("unit created")
	return dto.NewUnitResponse(unit), nil
}

func (s *unitService) Update(ctx context.Context, id uint, req dto.UnitUpdateRequest, uploads UnitUploads, uploadedBy *uint) (dto.UnitResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.UnitResponse{}, err
	}

	unit, err := s.load(ctx, id)
	if err != nil {
		return dto.UnitResponse{}, err
	}

	if req.Title != nil {
		title := cleanText(s.policy, *req.Title)
		if title == "" {
			return dto.UnitResponse{}, ErrNameRequired
		}
		unit.Title = title
	}
	if req.Description != nil {
		unit.Description = cleanText(s.policy, *req.Description)
	}

	videos := renameResources(unit.Videos, req.RenameVideoNames, s.policy)
	pdfs := renameResources(unit.PDFs, req.RenamePDFNames, s.policy)

	videos, removedVideos := removeResources(videos, req.RemoveVideoURLs)
	pdfs, removedPDFs := removeResources(pdfs, req.RemovePDFURLs)
	if len(videos) == 0 && len(uploads.Videos) == 0 {
		return dto.UnitResponse{}, ErrUnitRequiresVideo
	}

	newVideos, newPDFs, stored, err := s.storeUploads(ctx, uploads, req.VideoNames, req.PDFNames, uploadedBy)
	if err != nil {
		return dto.UnitResponse{}, err
	}

	unit.Videos = datatypes.JSONSlice[models.UnitResource](append(videos, newVideos...))
	unit.PDFs = datatypes.JSONSlice[models.UnitResource](append(pdfs, newPDFs...))

	if err := s.repo.Update(ctx, &unit); err != nil {
		s.media.Remove(ctx, stored)
		return dto.UnitResponse{}, mapUnitModelError(err, "update unit")
	}

	removeMediaAfterCommit(ctx, s.media, s.logger, append(removedVideos, removedPDFs...))
	return dto.NewUnitResponse(unit), nil
}

func (s *unitService) Delete(ctx context.Context, id uint) error {
	urls, err := s.curriculum.DeleteUnit(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUnitNotFound
		}
		return fmt.Errorf("delete unit: %w", err)
	}

	s.logger.Info().Uint("unit_id", id).Msg("unit deleted with quizzes")
	removeMediaAfterCommit(ctx, s.media, s.logger, urls)
	return nil
}

func (s *unitService) load(ctx context.Context, id uint) (models.Unit, error) {
	unit, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Unit{}, ErrUnitNotFound
		}
		return models.Unit{}, err
	}
	return unit, nil
}

// storeUploads writes every file and rolls back what was stored when one of them fails.
func (s *unitService) storeUploads(ctx context.Context, uploads UnitUploads, videoNames, pdfNames []string, uploadedBy *uint) ([]models.UnitResource, []models.UnitResource, []string, error) {
	stored := make([]string, 0, len(uploads.Videos)+len(uploads.PDFs))

	store := func(kind string, files []*multipart.FileHeader, names []string, fallback string) ([]models.UnitResource, error) {
		items := make([]models.UnitResource, 0, len(files))
		for idx, file := range files {
			resp, err := s.media.Store(ctx, kind, file, uploadedBy)
			if err != nil {
				return nil, err
			}
			stored = append(stored, resp.URL)
			items = append(items, models.UnitResource{
				URL:  resp.URL,
				Name: cleanText(s.policy, displayName(names, idx, file, fallback)),
			})
		}
		return items, nil
	}

	videos, err := store(models.ResourceTypeVideo, uploads.Videos, videoNames, "Video")
	if err != nil {
		s.media.Remove(ctx, stored)
		return nil, nil, nil, err
	}
	pdfs, err := store(models.ResourceTypePDF, uploads.PDFs, pdfNames, "PDF")
	if err != nil {
		s.media.Remove(ctx, stored)
		return nil, nil, nil, err
	}

	return videos, pdfs, stored, nil
}

func renameResources(resources []models.UnitResource, renames map[string]string, policy *bluemonday.Policy) []models.UnitResource {
	items := make([]models.UnitResource, 0, len(resources))
	for _, resource := range resources {
		if name, ok := renames[resource.URL]; ok {
			if cleaned := cleanText(policy, name); cleaned != "" {
				resource.Name = cleaned
			}
		}
		items = append(items, resource)
	}
	return items
}

// removeResources drops the listed urls and reports which of them were actually attached.
func removeResources(resources []models.UnitResource, urls []string) ([]models.UnitResource, []string) {
	if len(urls) == 0 {
		return resources, nil
	}

	drop := make(map[string]struct{}, len(urls))
	for _, url := range urls {
		drop[url] = struct{}{}
	}

	kept := make([]models.UnitResource, 0, len(resources))
	removed := make([]string, 0, len(urls))
	for _, resource := range resources {
		if _, ok := drop[resource.URL]; ok {
			removed = append(removed, resource.URL)
			continue
		}
		kept = append(kept, resource)
	}
	return kept, removed
}

func mapUnitModelError(err error, action string) error {
	switch {
	case errors.Is(err, models.ErrUnitWithoutVideo):
		return ErrUnitRequiresVideo
	case errors.Is(err, models.ErrUnitTitleRequired):
		return ErrNameRequired
	default:
		return fmt.Errorf("%s: %w", action, err)
	}
}
