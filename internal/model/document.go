package model

import "time"

// Document is an uploaded file stored inline together with its metadata.
type Document struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	FileName    string    `json:"fileName" gorm:"size:255;not null;index"`
	FileType    string    `json:"fileType" gorm:"size:255"`
	FileSize    int64     `json:"fileSize" gorm:"not null"`
	FileData    []byte    `json:"fileData,omitempty" gorm:"not null"`
	Checksum    string    `json:"checksum" gorm:"size:16"`
	Category    string    `json:"category" gorm:"size:100;index"`
	Description string    `json:"description"`
	UserID      uint      `json:"userId" gorm:"not null;index"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// DocumentStats aggregates storage counters for the admin dashboard.
type DocumentStats struct {
	TotalDocuments int64 `json:"totalDocuments"`
	TotalSize      int64 `json:"totalSize"`
}
