package dto

import (
	"time"

	"github.com/noah-isme/eduworld-api/internal/models"
)

// QuizQuestionPayload is one multiple choice question in a create or update request.
type QuizQuestionPayload struct {
	QuestionText  string   `json:"question_text" validate:"required,max=2000"`
	Options       []string `json:"options" validate:"required,min=2,dive,required"`
	CorrectAnswer string   `json:"correct_answer" validate:"required"`
}

// QuizCreateRequest describes the payload for creating a quiz.
type QuizCreateRequest struct {
	UnitID    uint                  `json:"unit_id" validate:"required"`
	Name      string                `json:"name" validate:"omitempty,max=255"`
	Questions []QuizQuestionPayload `json:"questions" validate:"required,min=1,dive"`
}

// QuizUpdateRequest describes the payload for updating a quiz.
type QuizUpdateRequest struct {
	Name      *string               `json:"name" validate:"omitempty,max=255"`
	Questions []QuizQuestionPayload `json:"questions" validate:"omitempty,min=1,dive"`
}

// QuizQuestionResponse omits the correct answer for students.
type QuizQuestionResponse struct {
	QuestionText  string   `json:"question_text"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer,omitempty"`
}

// QuizResponse is the serialized representation of a quiz.
type QuizResponse struct {
	ID            uint                   `json:"id"`
	UnitID        uint                   `json:"unit_id"`
	Name          string                 `json:"name"`
	Enabled       bool                   `json:"enabled"`
	QuestionCount int                    `json:"question_count"`
	Questions     []QuizQuestionResponse `json:"questions,omitempty"`
	CreatedAt     time.Time              `json:"created_at"`
	UpdatedAt     time.Time              `json:"updated_at"`
}

// NewQuizResponse converts a model into a DTO, optionally revealing correct answers.
func NewQuizResponse(model models.Quiz, includeAnswers bool) QuizResponse {
	questions := make([]QuizQuestionResponse, 0, len(model.Questions))
	for _, question := range model.Questions {
		item := QuizQuestionResponse{QuestionText: question.QuestionText, Options: question.Options}
		if includeAnswers {
			item.CorrectAnswer = question.CorrectAnswer
		}
		questions = append(questions, item)
	}

	return QuizResponse{
		ID:            model.ID,
		UnitID:        model.UnitID,
		Name:          model.Name,
		Enabled:       model.Enabled,
		QuestionCount: len(model.Questions),
		Questions:     questions,
		CreatedAt:     model.CreatedAt,
		UpdatedAt:     model.UpdatedAt,
	}
}

// NewQuizResponseSlice converts a slice of models into DTOs.
func NewQuizResponseSlice(quizzes []models.Quiz, includeAnswers bool) []QuizResponse {
	responses := make([]QuizResponse, 0, len(quizzes))
	for _, quiz := range quizzes {
		responses = append(responses, NewQuizResponse(quiz, includeAnswers))
	}
	return responses
}

// QuizSummaryResponse is the compact admin listing row.
type QuizSummaryResponse struct {
	ID      uint   `json:"id"`
	UnitID  uint   `json:"unit_id"`
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
}

// NewQuizSummarySlice converts quizzes into admin listing rows.
func NewQuizSummarySlice(quizzes []models.Quiz) []QuizSummaryResponse {
	responses := make([]QuizSummaryResponse, 0, len(quizzes))
	for _, quiz := range quizzes {
		responses = append(responses, QuizSummaryResponse{ID: quiz.ID, UnitID: quiz.UnitID, Name: quiz.Name, Enabled: quiz.Enabled})
	}
	return responses
}
