package models

import "time"

// File is the metadata of an uploaded band asset. The bytes live in blob
// storage at FilePath.
type File struct {
	Base
	Name         string    `gorm:"not null" json:"name"`
	OriginalName string    `gorm:"not null" json:"originalName"`
	MimeType     string    `gorm:"not null" json:"mimeType"`
	Size         int64     `gorm:"not null" json:"size"`
	Category     string    `gorm:"not null;default:general;index" json:"category"`
	Description  *string   `json:"description,omitempty"`
	FilePath     string    `gorm:"not null" json:"-"`
	UploadedBy   string    `gorm:"type:uuid;not null;index" json:"uploadedBy"`
	UploadedAt   time.Time `gorm:"not null;index" json:"uploadedAt"`

	// Relationships
	Uploader User `gorm:"foreignKey:UploadedBy;constraint:OnDelete:CASCADE" json:"-"`
}

// OwnerID returns the id of the uploader.
func (f *File) OwnerID() string {
	return f.UploadedBy
}
