package validator

// CourseCreateRequest is the admin payload for creating a course.
type CourseCreateRequest struct {
	Title         string            `json:"title" validate:"required,max=200"`
	Description   *string           `json:"description" validate:"omitempty,max=5000"`
	Instructor    *string           `json:"instructor" validate:"omitempty,max=100"`
	Price         float64           `json:"price" validate:"min=0"`
	OriginalPrice *float64          `json:"original_price" validate:"omitempty,min=0"`
	Level         string            `json:"level" validate:"omitempty,course_level"`
	Category      *string           `json:"category" validate:"omitempty,max=100"`
	ImageURL      *string           `json:"image_url" validate:"omitempty,url,max=500"`
	TotalDuration *string           `json:"total_duration" validate:"omitempty,max=50"`
	PaymentLinks  map[string]string `json:"payment_links" validate:"omitempty,dive,url"`
	IsActive      *bool             `json:"is_active"`
	IsLeadMagnet  *bool             `json:"is_lead_magnet"`
	IsRestricted  *bool             `json:"is_restricted"`
}

// CourseUpdateRequest is the admin payload for updating a course. All fields
// optional; nil means leave unchanged.
type CourseUpdateRequest struct {
	Title         *string           `json:"title" validate:"omitempty,max=200"`
	Description   *string           `json:"description" validate:"omitempty,max=5000"`
	Instructor    *string           `json:"instructor" validate:"omitempty,max=100"`
	Price         *float64          `json:"price" validate:"omitempty,min=0"`
	OriginalPrice *float64          `json:"original_price" validate:"omitempty,min=0"`
	Level         *string           `json:"level" validate:"omitempty,course_level"`
	Category      *string           `json:"category" validate:"omitempty,max=100"`
	ImageURL      *string           `json:"image_url" validate:"omitempty,url,max=500"`
	TotalDuration *string           `json:"total_duration" validate:"omitempty,max=50"`
	PaymentLinks  map[string]string `json:"payment_links" validate:"omitempty,dive,url"`
	IsActive      *bool             `json:"is_active"`
	IsLeadMagnet  *bool             `json:"is_lead_magnet"`
	IsRestricted  *bool             `json:"is_restricted"`
}

// LessonCreateRequest is the admin payload for adding a lesson to a course.
type LessonCreateRequest struct {
	Title       string  `json:"title" validate:"required,max=200"`
	Description *string `json:"description" validate:"omitempty,max=5000"`
	VideoID     string  `json:"video_id" validate:"required,max=100"`
	VideoURL    *string `json:"video_url" validate:"omitempty,url,max=500"`
	LessonOrder int     `json:"lesson_order" validate:"required,lesson_order"`
	Duration    *string `json:"duration" validate:"omitempty,max=20"`
	IsPreview   bool    `json:"is_preview"`
}

// LessonUpdateRequest is the admin payload for updating a lesson.
type LessonUpdateRequest struct {
	Title       *string `json:"title" validate:"omitempty,max=200"`
	Description *string `json:"description" validate:"omitempty,max=5000"`
	VideoID     *string `json:"video_id" validate:"omitempty,max=100"`
	VideoURL    *string `json:"video_url" validate:"omitempty,url,max=500"`
	LessonOrder *int    `json:"lesson_order" validate:"omitempty,lesson_order"`
	Duration    *string `json:"duration" validate:"omitempty,max=20"`
	IsPreview   *bool   `json:"is_preview"`
}

// MaterialCreateRequest is the admin payload for attaching a material to a course.
type MaterialCreateRequest struct {
	CourseID uint   `json:"course_id" validate:"required"`
	Title    string `json:"title" validate:"required,max=200"`
	FileURL  string `json:"file_url" validate:"required,url,max=500"`
	FileType string `json:"file_type" validate:"omitempty,max=50"`
	FileSize int64  `json:"file_size" validate:"omitempty,min=0"`
}

// EnrollmentCreateRequest is the admin payload for manually enrolling a user.
type EnrollmentCreateRequest struct {
	UserID   string `json:"user_id" validate:"required"`
	CourseID uint   `json:"course_id" validate:"required"`
}

// CompleteLessonRequest is the viewer payload reporting a playback-ended event.
type CompleteLessonRequest struct {
	LessonID uint `json:"lesson_id" validate:"required"`
}
