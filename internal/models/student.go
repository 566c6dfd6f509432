package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Student represents a learner enrolled in classes and subjects.
type Student struct {
	ID               uint               `gorm:"primaryKey" json:"id"`
	Username         string             `gorm:"size:255;uniqueIndex;not null" json:"username"`
	Name             string             `gorm:"size:255" json:"name"`
	Email            *string            `gorm:"size:255;uniqueIndex" json:"email"`
	SchoolName       string             `gorm:"size:255" json:"school_name"`
	OverallProgress  int                `gorm:"not null;default:0" json:"overall_progress"`
	EnrolledClasses  []Class            `gorm:"many2many:student_classes;" json:"enrolled_classes"`
	EnrolledSubjects []Subject          `gorm:"many2many:student_subjects;" json:"enrolled_subjects"`
	ResourceProgress []ResourceProgress `gorm:"foreignKey:StudentID" json:"resource_progress"`
	QuizProgress     []QuizProgress     `gorm:"foreignKey:StudentID" json:"quiz_progress"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
}

// BeforeSave normalises identity fields.
func (s *Student) BeforeSave(tx *gorm.DB) error {
	s.Username = strings.ToLower(strings.TrimSpace(s.Username))
	if s.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*s.Email))
		if email == "" {
			s.Email = nil
		} else {
			s.Email = &email
		}
	}
	if s.OverallProgress < 0 {
		s.OverallProgress = 0
	}
	if s.OverallProgress > 100 {
		s.OverallProgress = 100
	}
	return nil
}

// DisplayName falls back to the username when no name is set.
func (s Student) DisplayName() string {
	if strings.TrimSpace(s.Name) != "" {
		return s.Name
	}
	return s.Username
}
