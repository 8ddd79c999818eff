package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type CourseLevel string

const (
	LevelBeginner     CourseLevel = "beginner"
	LevelIntermediate CourseLevel = "intermediate"
	LevelAdvanced     CourseLevel = "advanced"
)

type Course struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	Title       string `json:"title" gorm:"not null;size:200;index"`
	Description string `json:"description" gorm:"type:text"`
	Instructor  string `json:"instructor" gorm:"size:100"`

	// Pricing
	Price         float64 `json:"price"`
	OriginalPrice float64 `json:"original_price"`

	// Static checkout URLs keyed by payment method ("credit_card", "pix", "boleto").
	// Payment itself is handled entirely by the external provider.
	PaymentLinks datatypes.JSON `json:"payment_links" gorm:"type:jsonb"`

	// Presentation
	Level         CourseLevel `json:"level" gorm:"size:20;default:beginner"`
	Category      *string     `json:"category" gorm:"size:100"`
	ImageURL      *string     `json:"image_url" gorm:"size:500"`
	TotalDuration string      `json:"total_duration" gorm:"size:50"`
	Rating        float64     `json:"rating"`
	StudentsCount int         `json:"students_count"`

	// Visibility flags
	IsActive bool `json:"is_active" gorm:"default:true;index"`
	// IsLeadMagnet marks the registration-gated free course: every lesson is
	// locked for non-enrolled viewers, and new users are enrolled automatically.
	IsLeadMagnet bool `json:"is_lead_magnet" gorm:"default:false"`
	// IsRestricted marks closed-class courses never offered in recommendations.
	IsRestricted bool `json:"is_restricted" gorm:"default:false"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Lessons   []Lesson         `json:"lessons,omitempty" gorm:"foreignKey:CourseID"`
	Materials []CourseMaterial `json:"materials,omitempty" gorm:"foreignKey:CourseID"`
}

func (Course) TableName() string {
	return "courses"
}
