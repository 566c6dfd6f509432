package models

import "time"

// UploadRecord stores metadata about stored unit media.
type UploadRecord struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UploadedBy *uint     `gorm:"index" json:"uploaded_by"`
	Kind       string    `gorm:"size:16;not null" json:"kind"`
	FileName   string    `gorm:"size:255;not null" json:"file_name"`
	URL        string    `gorm:"size:1024;not null;index" json:"url"`
	MimeType   string    `gorm:"size:128;not null" json:"mime_type"`
	SizeBytes  int64     `gorm:"not null" json:"size_bytes"`
	Checksum   string    `gorm:"size:128;index" json:"checksum"`
	CreatedAt  time.Time `json:"created_at"`
}
