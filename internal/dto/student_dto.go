package dto

import (
	"time"

	"github.com/noah-isme/eduworld-api/internal/models"
)

// StudentCreateRequest describes the payload for registering a student.
type StudentCreateRequest struct {
	Username   string  `json:"username" validate:"required,min=3,max=64"`
	Name       string  `json:"name" validate:"omitempty,max=255"`
	Email      *string `json:"email" validate:"omitempty,email"`
	SchoolName string  `json:"school_name" validate:"omitempty,max=255"`
	ClassIDs   []uint  `json:"class_ids"`
	SubjectIDs []uint  `json:"subject_ids"`
}

// StudentUpdateRequest updates profile fields and, when present, replaces enrollments.
type StudentUpdateRequest struct {
	Username   *string `json:"username" validate:"omitempty,min=3,max=64"`
	Name       *string `json:"name" validate:"omitempty,max=255"`
	Email      *string `json:"email" validate:"omitempty,email"`
	SchoolName *string `json:"school_name" validate:"omitempty,max=255"`
	ClassIDs   *[]uint `json:"class_ids"`
	SubjectIDs *[]uint `json:"subject_ids"`
}

// ProfileUpdateRequest is the subset a student may edit on their own profile.
type ProfileUpdateRequest struct {
	Name       *string `json:"name" validate:"omitempty,max=255"`
	Email      *string `json:"email" validate:"omitempty,email"`
	SchoolName *string `json:"school_name" validate:"omitempty,max=255"`
}

// EnrollmentRef is a compact class or subject reference.
type EnrollmentRef struct {
	ID      uint   `json:"id"`
	ClassID uint   `json:"class_id,omitempty"`
	Name    string `json:"name"`
}

// StudentResponse serializes a student with enrollments and cached progress.
type StudentResponse struct {
	ID               uint            `json:"id"`
	Username         string          `json:"username"`
	Name             string          `json:"name"`
	Email            *string         `json:"email"`
	SchoolName       string          `json:"school_name"`
	OverallProgress  int             `json:"overall_progress"`
	EnrolledClasses  []EnrollmentRef `json:"enrolled_classes"`
	EnrolledSubjects []EnrollmentRef `json:"enrolled_subjects"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// NewStudentResponse converts a model into a DTO.
func NewStudentResponse(model models.Student) StudentResponse {
	classes := make([]EnrollmentRef, 0, len(model.EnrolledClasses))
	for _, class := range model.EnrolledClasses {
		classes = append(classes, EnrollmentRef{ID: class.ID, Name: class.Name})
	}
	subjects := make([]EnrollmentRef, 0, len(model.EnrolledSubjects))
	for _, subject := range model.EnrolledSubjects {
		subjects = append(subjects, EnrollmentRef{ID: subject.ID, ClassID: subject.ClassID, Name: subject.Name})
	}

	return StudentResponse{
		ID:               model.ID,
		Username:         model.Username,
		Name:             model.DisplayName(),
		Email:            model.Email,
		SchoolName:       model.SchoolName,
		OverallProgress:  model.OverallProgress,
		EnrolledClasses:  classes,
		EnrolledSubjects: subjects,
		CreatedAt:        model.CreatedAt,
		UpdatedAt:        model.UpdatedAt,
	}
}

// NewStudentResponseSlice converts a slice of models into DTOs.
func NewStudentResponseSlice(students []models.Student) []StudentResponse {
	responses := make([]StudentResponse, 0, len(students))
	for _, student := range students {
		responses = append(responses, NewStudentResponse(student))
	}
	return responses
}
