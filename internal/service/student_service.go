package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/eduworld-api/internal/dto"
	"github.com/noah-isme/eduworld-api/internal/models"
	"github.com/noah-isme/eduworld-api/internal/repository"
)

// ErrStudentIdentityTaken indicates the username or email belongs to another student.
var ErrStudentIdentityTaken = errors.New("username or email already in use")

// StudentService covers student administration and the student's own profile.
type StudentService interface {
	List(ctx context.Context) ([]dto.StudentResponse, error)
	Get(ctx context.Context, id uint) (dto.StudentResponse, error)
	Create(ctx context.Context, req dto.StudentCreateRequest) (dto.StudentResponse, error)
	Update(ctx context.Context, id uint, req dto.StudentUpdateRequest) (dto.StudentResponse, error)
	Delete(ctx context.Context, id uint) error
	UpdateProfile(ctx context.Context, id uint, req dto.ProfileUpdateRequest) (dto.StudentResponse, error)
	EnrolledClasses(ctx context.Context, id uint) ([]dto.ClassResponse, error)
}

type studentService struct {
	repo      repository.StudentRepository
	classes   repository.ClassRepository
	subjects  repository.SubjectRepository
	validator *validator.Validate
	logger    zerolog.Logger
	policy    *bluemonday.Policy
}

// NewStudentService constructs the student service.
func NewStudentService(repo repository.StudentRepository, classes repository.ClassRepository, subjects repository.SubjectRepository, validate *validator.Validate, logger zerolog.Logger) StudentService {
	return &studentService{
		repo:      repo,
		classes:   classes,
		subjects:  subjects,
		validator: validate,
		logger:    logger.With().Str("component", "student_service").Logger(),
		policy:    bluemonday.StrictPolicy(),
	}
}

func (s *studentService) List(ctx context.Context) ([]dto.StudentResponse, error) {
	students, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	return dto.NewStudentResponseSlice(students), nil
}

func (s *studentService) Get(ctx context.Context, id uint) (dto.StudentResponse, error) {
	student, err := s.load(ctx, id)
	if err != nil {
		return dto.StudentResponse{}, err
	}

	return dto.NewStudentResponse(student), nil
}

func (s *studentService) Create(ctx context.Context, req dto.StudentCreateRequest) (dto.StudentResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.StudentResponse{}, err
	}

	taken, err := s.repo.IdentityTaken(ctx, req.Username, req.Email, 0)
	if err != nil {
		return dto.StudentResponse{}, err
	}
	if taken {
		return dto.StudentResponse{}, ErrStudentIdentityTaken
	}

	classes, err := s.resolveClasses(ctx, req.ClassIDs)
	if err != nil {
		return dto.StudentResponse{}, err
	}
	subjects, err := s.resolveSubjects(ctx, req.SubjectIDs)
	if err != nil {
		return dto.StudentResponse{}, err
	}

	student := models.Student{
		Username:         req.Username,
		Name:             cleanText(s.policy, req.Name),
		Email:            req.Email,
		SchoolName:       cleanText(s.policy, req.SchoolName),
		EnrolledClasses:  classes,
		EnrolledSubjects: subjects,
	}
	if err := s.repo.Create(ctx, &student); err != nil {
		return dto.StudentResponse{}, fmt.Errorf("create student: %w", err)
	}

	s.logger.Info().Uint("student_id", student.ID).Int("classes", len(classes)).Int("subjects", len(subjects)).Msg("student created")
	return dto.NewStudentResponse(student), nil
}

func (s *studentService) Update(ctx context.Context, id uint, req dto.StudentUpdateRequest) (dto.StudentResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.StudentResponse{}, err
	}

	student, err := s.load(ctx, id)
	if err != nil {
		return dto.StudentResponse{}, err
	}

	username := student.Username
	if req.Username != nil && strings.TrimSpace(*req.Username) != "" {
		username = *req.Username
	}
	email := student.Email
	if req.Email != nil {
		email = req.Email
	}
	if req.Username != nil || req.Email != nil {
		taken, err := s.repo.IdentityTaken(ctx, username, email, student.ID)
		if err != nil {
			return dto.StudentResponse{}, err
		}
		if taken {
			return dto.StudentResponse{}, ErrStudentIdentityTaken
		}
	}

	student.Username = username
	student.Email = email
	if req.Name != nil {
		student.Name = cleanText(s.policy, *req.Name)
	}
	if req.SchoolName != nil {
		student.SchoolName = cleanText(s.policy, *req.SchoolName)
	}

	if err := s.repo.Update(ctx, &student); err != nil {
		return dto.StudentResponse{}, fmt.Errorf("update student: %w", err)
	}

	if req.ClassIDs != nil || req.SubjectIDs != nil {
		var classes []models.Class
		var subjects []models.Subject
		if req.ClassIDs != nil {
			if classes, err = s.resolveClasses(ctx, *req.ClassIDs); err != nil {
				return dto.StudentResponse{}, err
			}
		}
		if req.SubjectIDs != nil {
			if subjects, err = s.resolveSubjects(ctx, *req.SubjectIDs); err != nil {
				return dto.StudentResponse{}, err
			}
		}
		if err := s.repo.ReplaceEnrollments(ctx, &student, classes, subjects); err != nil {
			return dto.StudentResponse{}, fmt.Errorf("replace enrollments: %w", err)
		}
	}

	return s.Get(ctx, id)
}

func (s *studentService) Delete(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrStudentNotFound
		}
		return fmt.Errorf("delete student: %w", err)
	}

	s.logger.Info().Uint("student_id", id).Msg("student deleted")
	return nil
}

func (s *studentService) UpdateProfile(ctx context.Context, id uint, req dto.ProfileUpdateRequest) (dto.StudentResponse, error) {
	return s.Update(ctx, id, dto.StudentUpdateRequest{
		Name:       req.Name,
		Email:      req.Email,
		SchoolName: req.SchoolName,
	})
}

// EnrolledClasses lists the student's classes, narrowing subjects to explicit enrollments when any exist.
func (s *studentService) EnrolledClasses(ctx context.Context, id uint) ([]dto.ClassResponse, error) {
	student, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	explicit := make(map[uint]struct{}, len(student.EnrolledSubjects))
	for _, subject := range student.EnrolledSubjects {
		explicit[subject.ID] = struct{}{}
	}

	classes := make([]models.Class, 0, len(student.EnrolledClasses))
	for _, class := range student.EnrolledClasses {
		if len(explicit) > 0 {
			filtered := make([]models.Subject, 0, len(class.Subjects))
			for _, subject := range class.Subjects {
				if _, ok := explicit[subject.ID]; ok {
					filtered = append(filtered, subject)
				}
			}
			class.Subjects = filtered
		}
		classes = append(classes, class)
	}

	return dto.NewClassResponseSlice(classes), nil
}

func (s *studentService) load(ctx context.Context, id uint) (models.Student, error) {
	student, err := s.repo.GetWithEnrollments(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Student{}, ErrStudentNotFound
		}
		return models.Student{}, err
	}
	return student, nil
}

func (s *studentService) resolveClasses(ctx context.Context, ids []uint) ([]models.Class, error) {
	unique := uniqueIDs(ids)
	classes, err := s.classes.ListByIDs(ctx, unique)
	if err != nil {
		return nil, err
	}
	if len(classes) != len(unique) {
		return nil, ErrClassNotFound
	}
	return classes, nil
}

func (s *studentService) resolveSubjects(ctx context.Context, ids []uint) ([]models.Subject, error) {
	unique := uniqueIDs(ids)
	subjects, err := s.subjects.ListByIDs(ctx, unique)
	if err != nil {
		return nil, err
	}
	if len(subjects) != len(unique) {
		return nil, ErrSubjectNotFound
	}
	return subjects, nil
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	unique := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	return unique
}
