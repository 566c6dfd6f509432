package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/eduworld-api/internal/dto"
	"github.com/noah-isme/eduworld-api/internal/models"
	"github.com/noah-isme/eduworld-api/internal/observability"
	"github.com/noah-isme/eduworld-api/internal/repository"
)

var (
	// ErrStudentNotFound indicates the student does not exist.
	ErrStudentNotFound = errors.New("student not found")
	// ErrInvalidResourceType is returned for resource types other than video or pdf.
	ErrInvalidResourceType = errors.New("resource type must be video or pdf")
)

const (
	triggerRead     = "read"
	triggerResource = "resource"
	triggerQuiz     = "quiz"
)

// ProgressService computes and records student completion progress.
type ProgressService interface {
	GetAggregatedProgress(ctx context.Context, studentID uint) (dto.AggregatedProgressResponse, error)
	GetDetailedProgress(ctx context.Context, studentID uint) (dto.DetailedProgressResponse, error)
	LogResourceProgress(ctx context.Context, studentID uint, req dto.ResourceProgressRequest) (dto.ProgressUpdateResponse, error)
	RecordQuizResult(ctx context.Context, studentID uint, req dto.QuizResultRequest) (dto.ProgressUpdateResponse, error)
	GetQuizHistory(ctx context.Context, studentID uint) ([]dto.QuizHistoryItem, error)
}

// ProgressRepositories groups the collaborators the progress service reads from.
type ProgressRepositories struct {
	Students repository.StudentRepository
	Classes  repository.ClassRepository
	Subjects repository.SubjectRepository
	Units    repository.UnitRepository
	Quizzes  repository.QuizRepository
}

type progressService struct {
	students  repository.StudentRepository
	classes   repository.ClassRepository
	subjects  repository.SubjectRepository
	units     repository.UnitRepository
	quizzes   repository.QuizRepository
	validator *validator.Validate
	logger    zerolog.Logger
	tracer    trace.Tracer
	debug     bool
	now       func() time.Time
}

// NewProgressService wires the progress aggregation engine to its repositories.
func NewProgressService(repos ProgressRepositories, validate *validator.Validate, logger zerolog.Logger, debug bool) ProgressService {
	return &progressService{
		students:  repos.Students,
		classes:   repos.Classes,
		subjects:  repos.Subjects,
		units:     repos.Units,
		quizzes:   repos.Quizzes,
		validator: validate,
		logger:    logger.With().Str("component", "progress_service").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/eduworld-api/internal/service/progress"),
		debug:     debug,
		now:       time.Now,
	}
}

func (s *progressService) GetAggregatedProgress(ctx context.Context, studentID uint) (dto.AggregatedProgressResponse, error) {
	student, err := s.loadStudent(ctx, studentID)
	if err != nil {
		return dto.AggregatedProgressResponse{}, err
	}

	result, _, _, err := s.recompute(ctx, student, triggerRead)
	if err != nil {
		return dto.AggregatedProgressResponse{}, err
	}

	s.persistPercent(ctx, studentID, result.OverallPercent)
	return result, nil
}

func (s *progressService) GetDetailedProgress(ctx context.Context, studentID uint) (dto.DetailedProgressResponse, error) {
	student, err := s.loadStudent(ctx, studentID)
	if err != nil {
		return dto.DetailedProgressResponse{}, err
	}

	result, curriculum, subjectIDs, err := s.recompute(ctx, student, triggerRead)
	if err != nil {
		return dto.DetailedProgressResponse{}, err
	}
	s.persistPercent(ctx, studentID, result.OverallPercent)

	ledger := ReduceLedger(student.ResourceProgress, student.QuizProgress)
	return BuildProgressTree(student, subjectIDs, curriculum, ledger), nil
}

func (s *progressService) LogResourceProgress(ctx context.Context, studentID uint, req dto.ResourceProgressRequest) (dto.ProgressUpdateResponse, error) {
	if !models.IsValidResourceType(req.ResourceType) {
		return dto.ProgressUpdateResponse{}, ErrInvalidResourceType
	}
	if err := s.validator.Struct(req); err != nil {
		return dto.ProgressUpdateResponse{}, err
	}

	student, err := s.loadStudent(ctx, studentID)
	if err != nil {
		return dto.ProgressUpdateResponse{}, err
	}

	if _, err := s.units.GetByID(ctx, req.UnitID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ProgressUpdateResponse{}, ErrUnitNotFound
		}
		return dto.ProgressUpdateResponse{}, fmt.Errorf("load unit: %w", err)
	}

	normalized := NormalizeResourceURL(req.ResourceURL)
	if !hasResourceEntry(student.ResourceProgress, req.UnitID, req.ResourceType, normalized) {
		entry := models.ResourceProgress{
			StudentID:    studentID,
			UnitID:       req.UnitID,
			ResourceType: req.ResourceType,
			ResourceURL:  normalized,
			CompletedAt:  s.now().UTC(),
		}
		if err := s.students.AddResourceProgress(ctx, &entry); err != nil {
			return dto.ProgressUpdateResponse{}, fmt.Errorf("append resource progress: %w", err)
		}
	}

	return s.refresh(ctx, studentID, triggerResource), nil
}

func (s *progressService) RecordQuizResult(ctx context.Context, studentID uint, req dto.QuizResultRequest) (dto.ProgressUpdateResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.ProgressUpdateResponse{}, err
	}

	if _, err := s.loadStudent(ctx, studentID); err != nil {
		return dto.ProgressUpdateResponse{}, err
	}

	if _, err := s.quizzes.GetByID(ctx, req.QuizID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ProgressUpdateResponse{}, ErrQuizNotFound
		}
		return dto.ProgressUpdateResponse{}, fmt.Errorf("load quiz: %w", err)
	}

	entry := models.QuizProgress{
		StudentID:   studentID,
		QuizID:      req.QuizID,
		Score:       req.Score,
		CompletedAt: s.now().UTC(),
	}
	if err := s.students.UpsertQuizProgress(ctx, &entry); err != nil {
		return dto.ProgressUpdateResponse{}, fmt.Errorf("record quiz progress: %w", err)
	}

	return s.refresh(ctx, studentID, triggerQuiz), nil
}

func (s *progressService) GetQuizHistory(ctx context.Context, studentID uint) ([]dto.QuizHistoryItem, error) {
	student, err := s.loadStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if len(student.QuizProgress) == 0 {
		return []dto.QuizHistoryItem{}, nil
	}

	quizIDs := make([]uint, 0, len(student.QuizProgress))
	for _, entry := range student.QuizProgress {
		quizIDs = append(quizIDs, entry.QuizID)
	}
	quizzes, err := s.quizzes.ListByIDs(ctx, quizIDs)
	if err != nil {
		return nil, fmt.Errorf("load quizzes: %w", err)
	}
	quizByID := make(map[uint]models.Quiz, len(quizzes))
	unitIDs := make([]uint, 0, len(quizzes))
	for _, quiz := range quizzes {
		quizByID[quiz.ID] = quiz
		unitIDs = append(unitIDs, quiz.UnitID)
	}

	units, err := s.units.ListByIDs(ctx, unitIDs)
	if err != nil {
		return nil, fmt.Errorf("load units: %w", err)
	}
	unitByID := make(map[uint]models.Unit, len(units))
	subjectIDs := make([]uint, 0, len(units))
	for _, unit := range units {
		unitByID[unit.ID] = unit
		subjectIDs = append(subjectIDs, unit.SubjectID)
	}

	subjects, err := s.subjects.ListByIDs(ctx, subjectIDs)
	if err != nil {
		return nil, fmt.Errorf("load subjects: %w", err)
	}
	subjectByID := make(map[uint]models.Subject, len(subjects))
	classIDs := make([]uint, 0, len(subjects))
	for _, subject := range subjects {
		subjectByID[subject.ID] = subject
		classIDs = append(classIDs, subject.ClassID)
	}

	classes, err := s.classes.ListByIDs(ctx, classIDs)
	if err != nil {
		return nil, fmt.Errorf("load classes: %w", err)
	}
	classByID := make(map[uint]models.Class, len(classes))
	for _, class := range classes {
		classByID[class.ID] = class
	}

	history := make([]dto.QuizHistoryItem, 0, len(student.QuizProgress))
	for _, entry := range student.QuizProgress {
		item := dto.QuizHistoryItem{
			QuizID:      entry.QuizID,
			QuizName:    "Quiz",
			Score:       entry.Score,
			CompletedAt: entry.CompletedAt,
		}

		quiz, ok := quizByID[entry.QuizID]
		if !ok {
			history = append(history, item)
			continue
		}
		if quiz.Name != "" {
			item.QuizName = quiz.Name
		}
		item.QuestionCount = len(quiz.Questions)

		if unit, ok := unitByID[quiz.UnitID]; ok {
			item.UnitID = uintPtr(unit.ID)
			item.UnitTitle = unit.Title
			if subject, ok := subjectByID[unit.SubjectID]; ok {
				item.SubjectID = uintPtr(subject.ID)
				item.SubjectName = subject.Name
				if class, ok := classByID[subject.ClassID]; ok {
					item.ClassID = uintPtr(class.ID)
					item.ClassName = class.Name
				}
			}
		}

		history = append(history, item)
	}

	return history, nil
}

// refresh recomputes after a successful ledger write. Failures degrade to a response without a
// percentage instead of failing the write.
func (s *progressService) refresh(ctx context.Context, studentID uint, trigger string) dto.ProgressUpdateResponse {
	student, err := s.students.GetWithEnrollments(ctx, studentID)
	if err == nil {
		var result dto.AggregatedProgressResponse
		result, _, _, err = s.recompute(ctx, student, trigger)
		if err == nil {
			s.persistPercent(ctx, studentID, result.OverallPercent)
			percent := result.OverallPercent
			return dto.ProgressUpdateResponse{OverallPercent: &percent}
		}
	}

	observability.ProgressRecomputeFailures().WithLabelValues(trigger).Inc()
	s.logger.Warn().Err(err).Uint("student_id", studentID).Str("trigger", trigger).Msg("progress recompute failed after ledger write")
	return dto.ProgressUpdateResponse{}
}

func (s *progressService) recompute(ctx context.Context, student models.Student, trigger string) (dto.AggregatedProgressResponse, Curriculum, map[uint]struct{}, error) {
	ctx, span := s.tracer.Start(ctx, "progress.recompute", trace.WithAttributes(
		attribute.Int64("student.id", int64(student.ID)),
		attribute.String("progress.trigger", trigger),
	))
	defer span.End()

	start := time.Now()
	observability.ProgressRecomputes().WithLabelValues(trigger).Inc()
	defer func() {
		observability.ProgressRecomputeLatency().Observe(time.Since(start).Seconds())
	}()

	subjectIDs := ResolveSubjectIDs(student)
	if len(subjectIDs) == 0 {
		return dto.AggregatedProgressResponse{}, BuildCurriculum(nil, nil), subjectIDs, nil
	}

	ids := make([]uint, 0, len(subjectIDs))
	for id := range subjectIDs {
		ids = append(ids, id)
	}

	units, err := s.units.ListBySubjectIDs(ctx, ids)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load units")
		return dto.AggregatedProgressResponse{}, Curriculum{}, nil, fmt.Errorf("load units: %w", err)
	}

	unitIDs := make([]uint, 0, len(units))
	for _, unit := range units {
		unitIDs = append(unitIDs, unit.ID)
	}
	quizzes, err := s.quizzes.ListByUnitIDs(ctx, unitIDs)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load quizzes")
		return dto.AggregatedProgressResponse{}, Curriculum{}, nil, fmt.Errorf("load quizzes: %w", err)
	}

	curriculum := BuildCurriculum(units, quizzes)
	ledger := ReduceLedger(student.ResourceProgress, student.QuizProgress)
	result := ComputeProgress(ledger, curriculum)

	span.SetAttributes(
		attribute.Int("progress.total_items", result.TotalItems),
		attribute.Int("progress.completed_items", result.CompletedItems),
	)

	if s.debug {
		s.logger.Debug().
			Uint("student_id", student.ID).
			Int("subjects", len(subjectIDs)).
			Int("units", len(curriculum.Units)).
			Int("resources", len(curriculum.ResourceKeys)).
			Int("quiz_units", len(curriculum.QuizUnits)).
			Int("completed_resources", len(ledger.CompletedResources)).
			Int("completed_quizzes", len(ledger.CompletedQuizzes)).
			Int("total_items", result.TotalItems).
			Int("completed_items", result.CompletedItems).
			Int("overall_percent", result.OverallPercent).
			Msg("progress recomputed")
	}

	return result, curriculum, subjectIDs, nil
}

func (s *progressService) persistPercent(ctx context.Context, studentID uint, percent int) {
	if err := s.students.UpdateOverallProgress(ctx, studentID, percent); err != nil {
		s.logger.Warn().Err(err).Uint("student_id", studentID).Msg("failed to store cached progress")
	}
}

func (s *progressService) loadStudent(ctx context.Context, studentID uint) (models.Student, error) {
	student, err := s.students.GetWithEnrollments(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Student{}, ErrStudentNotFound
		}
		return models.Student{}, fmt.Errorf("load student: %w", err)
	}
	return student, nil
}

func hasResourceEntry(entries []models.ResourceProgress, unitID uint, resourceType, normalizedURL string) bool {
	for _, entry := range entries {
		if entry.UnitID == unitID && entry.ResourceType == resourceType && NormalizeResourceURL(entry.ResourceURL) == normalizedURL {
			return true
		}
	}
	return false
}

func uintPtr(value uint) *uint {
	return &value
}
