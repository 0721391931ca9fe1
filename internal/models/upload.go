package models

import "time"

// UploadRecord persists metadata about a blob pushed to cloud storage.
type UploadRecord struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	FileID    string    `gorm:"size:255;uniqueIndex;not null" json:"fileId"`
	FileName  string    `gorm:"size:255;not null" json:"fileName"`
	URL       string    `gorm:"size:512;not null" json:"url"`
	MimeType  string    `gorm:"size:64" json:"mimeType"`
	SizeBytes int64     `json:"sizeBytes"`
	Checksum  string    `gorm:"size:64" json:"checksum"`
	UserID    *uint     `json:"userId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
