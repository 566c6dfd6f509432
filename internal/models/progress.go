package models

import "time"

const (
	// ResourceTypeVideo identifies a unit video.
	ResourceTypeVideo = "video"
	// ResourceTypePDF identifies a unit pdf.
	ResourceTypePDF = "pdf"
)

// ResourceProgress is one entry of a student's resource completion ledger.
type ResourceProgress struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	StudentID    uint      `gorm:"not null;uniqueIndex:idx_resource_progress_entry,priority:1" json:"student_id"`
	UnitID       uint      `gorm:"not null;uniqueIndex:idx_resource_progress_entry,priority:2" json:"unit_id"`
	ResourceType string    `gorm:"size:16;not null;uniqueIndex:idx_resource_progress_entry,priority:3" json:"resource_type"`
	ResourceURL  string    `gorm:"size:1024;not null;uniqueIndex:idx_resource_progress_entry,priority:4" json:"resource_url"`
	CompletedAt  time.Time `gorm:"not null" json:"completed_at"`
}

// QuizProgress is the single live quiz result a student holds for a quiz.
type QuizProgress struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	StudentID   uint      `gorm:"not null;uniqueIndex:idx_quiz_progress_entry,priority:1" json:"student_id"`
	QuizID      uint      `gorm:"not null;uniqueIndex:idx_quiz_progress_entry,priority:2;index" json:"quiz_id"`
	Score       float64   `json:"score"`
	CompletedAt time.Time `gorm:"not null" json:"completed_at"`
}

// IsValidResourceType reports whether the type is tracked by the ledger.
func IsValidResourceType(resourceType string) bool {
	return resourceType == ResourceTypeVideo || resourceType == ResourceTypePDF
}
