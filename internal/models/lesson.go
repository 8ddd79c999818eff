package models

import (
	"time"
)

type Lesson struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	CourseID    uint    `json:"course_id" gorm:"not null;index;uniqueIndex:idx_course_lesson_order"`
	Title       string  `json:"title" gorm:"not null;size:200"`
	Description *string `json:"description" gorm:"type:text"`

	// Opaque identifier on the external video host; playback happens in the
	// host's embed, this service never touches the stream itself.
	VideoID  string  `json:"video_id" gorm:"size:100"`
	VideoURL *string `json:"video_url" gorm:"size:500"`

	// 1-based position within the course, unique per course.
	LessonOrder int    `json:"lesson_order" gorm:"not null;uniqueIndex:idx_course_lesson_order"`
	Duration    string `json:"duration" gorm:"size:20"`

	// Preview lessons are playable without enrollment on paid courses.
	IsPreview bool `json:"is_preview" gorm:"default:false"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Course Course `json:"-" gorm:"foreignKey:CourseID"`
}

func (Lesson) TableName() string {
	return "lessons"
}
