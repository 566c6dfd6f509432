package models

import (
	"time"

	"gorm.io/datatypes"
)

// QuizQuestion is one multiple choice question.
type QuizQuestion struct {
	QuestionText  string   `json:"question_text"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
}

// Quiz belongs to a unit. New quizzes start disabled.
type Quiz struct {
	ID        uint                             `gorm:"primaryKey" json:"id"`
	UnitID    uint                             `gorm:"not null;index" json:"unit_id"`
	Name      string                           `gorm:"size:255" json:"name"`
	Enabled   bool                             `gorm:"not null;default:false" json:"enabled"`
	Questions datatypes.JSONSlice[QuizQuestion] `gorm:"column:questions" json:"questions"`
	CreatedAt time.Time                        `json:"created_at"`
	UpdatedAt time.Time                        `json:"updated_at"`
}
