package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

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
	// ErrQuizNotFound indicates the quiz does not exist.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrQuizAnswerNotInOptions is returned when a correct answer is not one of the options.
	ErrQuizAnswerNotInOptions = errors.New("correct answer must match one of the options")
)

// QuizService manages quizzes attached to units.
type QuizService interface {
	ListByUnit(ctx context.Context, unitID uint, includeDisabled bool) ([]dto.QuizResponse, error)
	ListAll(ctx context.Context) ([]dto.QuizSummaryResponse, error)
	Create(ctx context.Context, req dto.QuizCreateRequest) (dto.QuizResponse, error)
	Update(ctx context.Context, id uint, req dto.QuizUpdateRequest) (dto.QuizResponse, error)
	Toggle(ctx context.Context, id uint) (dto.QuizResponse, error)
	Delete(ctx context.Context, id uint) error
}

type quizService struct {
	repo       repository.QuizRepository
	units      repository.UnitRepository
	curriculum repository.CurriculumRepository
	validator  *validator.Validate
	logger     zerolog.Logger
	policy     *bluemonday.Policy
}

// NewQuizService constructs the quiz service.
func NewQuizService(repo repository.QuizRepository, units repository.UnitRepository, curriculum repository.CurriculumRepository, validate *validator.Validate, logger zerolog.Logger) QuizService {
	return &quizService{
		repo:       repo,
		units:      units,
		curriculum: curriculum,
		validator:  validate,
		logger:     logger.With().Str("component", "quiz_service").Logger(),
		policy:     bluemonday.StrictPolicy(),
	}
}

// ListByUnit returns every quiz for administrators. Students only see enabled quizzes and never
// the correct answers.
func (s *quizService) ListByUnit(ctx context.Context, unitID uint, includeDisabled bool) ([]dto.QuizResponse, error) {
	quizzes, err := s.repo.ListByUnit(ctx, unitID, !includeDisabled)
	if err != nil {
		return nil, err
	}

	return dto.NewQuizResponseSlice(quizzes, includeDisabled), nil
}

func (s *quizService) ListAll(ctx context.Context) ([]dto.QuizSummaryResponse, error) {
	quizzes, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	return dto.NewQuizSummarySlice(quizzes), nil
}

func (s *quizService) Create(ctx context.Context, req dto.QuizCreateRequest) (dto.QuizResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.QuizResponse{}, err
	}

	if _, err := s.units.GetByID(ctx, req.UnitID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.QuizResponse{}, ErrUnitNotFound
		}
		return dto.QuizResponse{}, err
	}

	questions, err := s.buildQuestions(req.Questions)
	if err != nil {
		return dto.QuizResponse{}, err
	}

	quiz := models.Quiz{
		UnitID:    req.UnitID,
		Name:      cleanText(s.policy, req.Name),
		Enabled:   false,
		Questions: questions,
	}
	if err := s.repo.Create(ctx, &quiz); err != nil {
		return dto.QuizResponse{}, fmt.Errorf("create quiz: %w", err)
	}

	s.logger.Info().Uint("quiz_id", quiz.ID).Uint("unit_id", quiz.UnitID).Msg("quiz created disabled")
	return dto.NewQuizResponse(quiz, true), nil
}

func (s *quizService) Update(ctx context.Context, id uint, req dto.QuizUpdateRequest) (dto.QuizResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.QuizResponse{}, err
	}

	quiz, err := s.load(ctx, id)
	if err != nil {
		return dto.QuizResponse{}, err
	}

	if req.Name != nil {
		quiz.Name = cleanText(s.policy, *req.Name)
	}
	if len(req.Questions) > 0 {
		questions, err := s.buildQuestions(req.Questions)
		if err != nil {
			return dto.QuizResponse{}, err
		}
		quiz.Questions = questions
	}

	if err := s.repo.Update(ctx, &quiz); err != nil {
		return dto.QuizResponse{}, fmt.Errorf("update quiz: %w", err)
	}

	return dto.NewQuizResponse(quiz, true), nil
}

func (s *quizService) Toggle(ctx context.Context, id uint) (dto.QuizResponse, error) {
	quiz, err := s.load(ctx, id)
	if err != nil {
		return dto.QuizResponse{}, err
	}

	quiz.Enabled = !quiz.Enabled
	if err := s.repo.SetEnabled(ctx, id, quiz.Enabled); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.QuizResponse{}, ErrQuizNotFound
		}
		return dto.QuizResponse{}, fmt.Errorf("toggle quiz: %w", err)
	}

	s.logger.Info().Uint("quiz_id", id).Bool("enabled", quiz.Enabled).Msg("quiz toggled")
	return dto.NewQuizResponse(quiz, true), nil
}

func (s *quizService) Delete(ctx context.Context, id uint) error {
	if err := s.curriculum.DeleteQuiz(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrQuizNotFound
		}
		return fmt.Errorf("delete quiz: %w", err)
	}

	return nil
}

func (s *quizService) load(ctx context.Context, id uint) (models.Quiz, error) {
	quiz, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Quiz{}, ErrQuizNotFound
		}
		return models.Quiz{}, err
	}
	return quiz, nil
}

func (s *quizService) buildQuestions(payload []dto.QuizQuestionPayload) (datatypes.JSONSlice[models.QuizQuestion], error) {
	questions := make(datatypes.JSONSlice[models.QuizQuestion], 0, len(payload))
	for _, item := range payload {
		options := make([]string, 0, len(item.Options))
		for _, option := range item.Options {
			options = append(options, cleanText(s.policy, option))
		}

		answer := cleanText(s.policy, item.CorrectAnswer)
		matched := false
		for _, option := range options {
			if strings.EqualFold(option, answer) {
				answer = option
				matched = true
				break
			}
		}
		if !matched {
			return nil, ErrQuizAnswerNotInOptions
		}

		text := cleanText(s.policy, item.QuestionText)
		if text == "" {
			return nil, ErrNameRequired
		}

		questions = append(questions, models.QuizQuestion{
			QuestionText:  text,
			Options:       options,
			CorrectAnswer: answer,
		})
	}
	return questions, nil
}
