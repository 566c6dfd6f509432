package dto

import (
	"time"

	"github.com/noah-isme/eduworld-api/internal/models"
)

// UnitCreateRequest carries the text fields of a multipart unit creation.
type UnitCreateRequest struct {
	SubjectID   uint     `form:"subject_id" json:"subject_id" validate:"required"`
	Title       string   `form:"title" json:"title" validate:"required,max=255"`
	Description string   `form:"description" json:"description" validate:"omitempty,max=5000"`
	VideoNames  []string `form:"video_names" json:"video_names"`
	PDFNames    []string `form:"pdf_names" json:"pdf_names"`
}

// UnitUpdateRequest carries the text fields of a multipart unit update.
// Rename maps are keyed by the stored resource url.
type UnitUpdateRequest struct {
	Title            *string           `form:"title" json:"title" validate:"omitempty,max=255"`
	Description      *string           `form:"description" json:"description" validate:"omitempty,max=5000"`
	VideoNames       []string          `form:"video_names" json:"video_names"`
	PDFNames         []string          `form:"pdf_names" json:"pdf_names"`
	RenameVideoNames map[string]string `json:"rename_video_names"`
	RenamePDFNames   map[string]string `json:"rename_pdf_names"`
	RemoveVideoURLs  []string          `form:"remove_video_urls" json:"remove_video_urls"`
	RemovePDFURLs    []string          `form:"remove_pdf_urls" json:"remove_pdf_urls"`
}

// UnitResourceResponse is a stored video or pdf.
type UnitResourceResponse struct {
	URL  string `json:"url"`
	Name string `json:"name"`
}

// UnitResponse is the serialized representation of a unit.
type UnitResponse struct {
	ID          uint                   `json:"id"`
	SubjectID   uint                   `json:"subject_id"`
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	Videos      []UnitResourceResponse `json:"videos"`
	PDFs        []UnitResourceResponse `json:"pdfs"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
}

// NewUnitResponse converts a model into a DTO.
func NewUnitResponse(model models.Unit) UnitResponse {
	return UnitResponse{
		ID:          model.ID,
		SubjectID:   model.SubjectID,
		Title:       model.Title,
		Description: model.Description,
		Videos:      newUnitResources(model.Videos),
		PDFs:        newUnitResources(model.PDFs),
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}

// NewUnitResponseSlice converts a slice of models into DTOs.
func NewUnitResponseSlice(units []models.Unit) []UnitResponse {
	responses := make([]UnitResponse, 0, len(units))
	for _, unit := range units {
		responses = append(responses, NewUnitResponse(unit))
	}
	return responses
}

func newUnitResources(resources []models.UnitResource) []UnitResourceResponse {
	items := make([]UnitResourceResponse, 0, len(resources))
	for _, resource := range resources {
		items = append(items, UnitResourceResponse{URL: resource.URL, Name: resource.Name})
	}
	return items
}
