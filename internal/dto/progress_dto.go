package dto

import "time"

// ResourceProgressRequest marks a unit video or pdf as consumed.
type ResourceProgressRequest struct {
	UnitID       uint   `json:"unit_id" validate:"required"`
	ResourceType string `json:"resource_type" validate:"required,oneof=video pdf"`
	ResourceURL  string `json:"resource_url" validate:"required"`
}

// QuizResultRequest records the score obtained on a quiz.
type QuizResultRequest struct {
	QuizID uint    `json:"quiz_id" validate:"required"`
	Score  float64 `json:"score" validate:"gte=0"`
}

// AggregatedProgressResponse is the flat completion summary of a student.
type AggregatedProgressResponse struct {
	OverallPercent int `json:"overall_percent"`
	TotalItems     int `json:"total_items"`
	CompletedItems int `json:"completed_items"`
}

// ProgressUpdateResponse is returned by ledger writes. OverallPercent is omitted when the
// recomputation after a successful write failed.
type ProgressUpdateResponse struct {
	OverallPercent *int `json:"overall_percent,omitempty"`
}

// DetailedProgressResponse is the class → subject → unit → resource status tree.
type DetailedProgressResponse struct {
	Classes []ClassStatusNode `json:"classes"`
}

// ClassStatusNode rolls up the statuses of its subjects.
type ClassStatusNode struct {
	ID       uint                `json:"id"`
	Name     string              `json:"name"`
	Status   string              `json:"status"`
	Subjects []SubjectStatusNode `json:"subjects"`
}

// SubjectStatusNode rolls up the statuses of its units.
type SubjectStatusNode struct {
	ID        uint             `json:"id"`
	Name      string           `json:"name"`
	Status    string           `json:"status"`
	UnitCount int              `json:"unit_count"`
	Units     []UnitStatusNode `json:"units"`
}

// UnitStatusNode describes per-resource and quiz completion inside a unit.
type UnitStatusNode struct {
	ID         uint                 `json:"id"`
	Title      string               `json:"title"`
	Status     string               `json:"status"`
	Videos     []ResourceStatusNode `json:"videos"`
	PDFs       []ResourceStatusNode `json:"pdfs"`
	HasQuiz    bool                 `json:"has_quiz"`
	QuizStatus string               `json:"quiz_status"`
}

// ResourceStatusNode is a single video or pdf with its completion status.
type ResourceStatusNode struct {
	Type   string `json:"type"`
	URL    string `json:"url"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

// QuizHistoryItem is one quiz ledger entry enriched with catalogue names.
type QuizHistoryItem struct {
	QuizID        uint      `json:"quiz_id"`
	QuizName      string    `json:"quiz_name"`
	UnitID        *uint     `json:"unit_id"`
	UnitTitle     string    `json:"unit_title"`
	SubjectID     *uint     `json:"subject_id"`
	SubjectName   string    `json:"subject_name"`
	ClassID       *uint     `json:"class_id"`
	ClassName     string    `json:"class_name"`
	QuestionCount int       `json:"question_count"`
	Score         float64   `json:"score"`
	CompletedAt   time.Time `json:"completed_at"`
}
