package models

import (
	"time"
)

// CourseMaterial is a downloadable file attached to a course. Files live on
// external storage; this service only keeps the pointer and proxies downloads.
type CourseMaterial struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	CourseID uint   `json:"course_id" gorm:"not null;index"`
	Title    string `json:"title" gorm:"not null;size:200"`

	FileURL  string `json:"file_url" gorm:"not null;size:500"`
	FileType string `json:"file_type" gorm:"size:50"`
	FileSize int64  `json:"file_size"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Course Course `json:"-" gorm:"foreignKey:CourseID"`
}

func (CourseMaterial) TableName() string {
	return "course_materials"
}
