package models

import (
	"time"
)

// Enrollment grants a user access to a course. Progress is a denormalized
// cache of the LessonProgress rows for the pair; it is written only by the
// progress service inside the same transaction that recounts completions.
type Enrollment struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	UserID   string `json:"user_id" gorm:"not null;size:255;index;uniqueIndex:idx_user_course"`
	CourseID uint   `json:"course_id" gorm:"not null;index;uniqueIndex:idx_user_course"`

	// Completion percentage, 0-100.
	Progress    int        `json:"progress" gorm:"default:0"`
	EnrolledAt  time.Time  `json:"enrolled_at"`
	CompletedAt *time.Time `json:"completed_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	User   User   `json:"-" gorm:"foreignKey:UserID"`
	Course Course `json:"course,omitempty" gorm:"foreignKey:CourseID"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}

// LessonProgress records that a user finished a lesson. One row per
// (user, lesson); a duplicate completion event only refreshes CompletedAt.
type LessonProgress struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	UserID   string `json:"user_id" gorm:"not null;size:255;index;uniqueIndex:idx_user_lesson"`
	LessonID uint   `json:"lesson_id" gorm:"not null;index;uniqueIndex:idx_user_lesson"`

	CompletedAt time.Time `json:"completed_at"`

	// Relations
	Lesson Lesson `json:"-" gorm:"foreignKey:LessonID"`
}

func (LessonProgress) TableName() string {
	return "lesson_progress"
}
