package dto

import "time"

// AdminStatsResponse aggregates platform-wide counters for the admin dashboard.
type AdminStatsResponse struct {
	Students    int64     `json:"students"`
	Classes     int64     `json:"classes"`
	Subjects    int64     `json:"subjects"`
	Units       int64     `json:"units"`
	Quizzes     int64     `json:"quizzes"`
	Videos      int64     `json:"videos"`
	PDFs        int64     `json:"pdfs"`
	GeneratedAt time.Time `json:"generated_at"`
}

// UploadResponse describes a stored media file.
type UploadResponse struct {
	URL      string `json:"url"`
	FileName string `json:"file_name"`
	MimeType string `json:"mime_type"`
	Size     int64  `json:"size"`
	Checksum string `json:"checksum"`
}
