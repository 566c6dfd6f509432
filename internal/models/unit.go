package models

import (
	"errors"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	// ErrUnitTitleRequired is returned when a unit is saved without a title.
	ErrUnitTitleRequired = errors.New("unit title is required")
	// ErrUnitWithoutVideo is returned when a unit would be saved with no videos.
	ErrUnitWithoutVideo = errors.New("unit requires at least one video")
)

// UnitResource is a single video or pdf attached to a unit.
type UnitResource struct {
	URL  string `json:"url"`
	Name string `json:"name"`
}

// Unit is a lesson inside a subject with its media resources.
type Unit struct {
	ID          uint                             `gorm:"primaryKey" json:"id"`
	SubjectID   uint                             `gorm:"not null;index" json:"subject_id"`
	Title       string                           `gorm:"size:255;not null" json:"title"`
	Description string                           `gorm:"type:text" json:"description"`
	Videos      datatypes.JSONSlice[UnitResource] `gorm:"column:videos" json:"videos"`
	PDFs        datatypes.JSONSlice[UnitResource] `gorm:"column:pdfs" json:"pdfs"`
	CreatedAt   time.Time                        `json:"created_at"`
	UpdatedAt   time.Time                        `json:"updated_at"`
}

// BeforeSave enforces the title and at-least-one-video rules.
func (u *Unit) BeforeSave(tx *gorm.DB) error {
	u.Title = strings.TrimSpace(u.Title)
	if u.Title == "" {
		return ErrUnitTitleRequired
	}
	if len(u.Videos) == 0 {
		return ErrUnitWithoutVideo
	}
	if u.PDFs == nil {
		u.PDFs = datatypes.JSONSlice[UnitResource]{}
	}
	return nil
}

// ResourceURLs lists every video and pdf url of the unit.
func (u Unit) ResourceURLs() []string {
	urls := make([]string, 0, len(u.Videos)+len(u.PDFs))
	for _, video := range u.Videos {
		urls = append(urls, video.URL)
	}
	for _, pdf := range u.PDFs {
		urls = append(urls, pdf.URL)
	}
	return urls
}
