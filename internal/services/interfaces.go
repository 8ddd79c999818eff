package services

import (
	"context"
	"io"

	"github.com/masterproject/course-platform/internal/models"
	"github.com/masterproject/course-platform/internal/repositories"
	"github.com/masterproject/course-platform/internal/validator"
)

// ===== REQUEST/RESPONSE DTOs =====

// Use validator DTO types for admin payloads
type CreateCourseRequest = validator.CourseCreateRequest
type UpdateCourseRequest = validator.CourseUpdateRequest
type CreateLessonRequest = validator.LessonCreateRequest
type UpdateLessonRequest = validator.LessonUpdateRequest
type CreateMaterialRequest = validator.MaterialCreateRequest
type CreateEnrollmentRequest = validator.EnrollmentCreateRequest

// AccessReason explains an access decision so the caller can pick the right
// call-to-action without re-deriving the rule.
type AccessReason string

const (
	AccessGrantedEnrolled AccessReason = "enrolled"
	AccessGrantedPreview  AccessReason = "preview"

	// The lead-magnet course is gated behind registration, not purchase.
	AccessDeniedRegistrationRequired AccessReason = "registration_required"
	AccessDeniedPurchaseRequired     AccessReason = "purchase_required"
)

// AccessDecision is the outcome of evaluating one lesson for one viewer.
type AccessDecision struct {
	Allowed bool         `json:"allowed"`
	Reason  AccessReason `json:"reason"`
}

// CourseProgress is the live aggregate of a user's completions in a course.
type CourseProgress struct {
	Completed          int    `json:"completed"`
	Total              int    `json:"total"`
	Percentage         int    `json:"percentage"`
	CompletedLessonIDs []uint `json:"completed_lesson_ids"`
}

// LessonView is a lesson annotated with the viewer's access decision and
// completion badge.
type LessonView struct {
	*models.Lesson
	Access    AccessDecision `json:"access"`
	Completed bool           `json:"completed"`
}

type CourseDetailResponse struct {
	*models.Course
	Lessons    []LessonView    `json:"lessons"`
	IsEnrolled bool            `json:"is_enrolled"`
	Progress   *CourseProgress `json:"progress,omitempty"`
}

type CourseListResponse struct {
	Courses []*models.Course `json:"courses"`
	Total   int64            `json:"total"`
	Page    int              `json:"page"`
	Size    int              `json:"size"`
}

// PurchaseOptions carries the static checkout links and the conversion action
// ("register" for the lead-magnet course, "purchase" otherwise).
type PurchaseOptions struct {
	CourseID      uint              `json:"course_id"`
	Title         string            `json:"title"`
	Price         float64           `json:"price"`
	OriginalPrice float64           `json:"original_price"`
	Action        string            `json:"action"`
	Links         map[string]string `json:"links"`
}

// LessonVideoResponse exposes the external video identifier once access is granted.
type LessonVideoResponse struct {
	LessonID uint         `json:"lesson_id"`
	VideoID  string       `json:"video_id"`
	VideoURL *string      `json:"video_url,omitempty"`
	Reason   AccessReason `json:"reason"`
}

type EnrolledCourseResponse struct {
	*models.Course
	Progress   int    `json:"progress"`
	EnrolledAt string `json:"enrolled_at"`
}

type EnrollmentListResponse struct {
	Enrollments []*models.Enrollment `json:"enrollments"`
	Total       int64                `json:"total"`
}

// DownloadResult streams a proxied material file to the caller. Body must be
// closed by the caller.
type DownloadResult struct {
	Filename    string
	ContentType string
	Body        io.ReadCloser
}

// ===== SERVICE INTERFACES =====

// AccessService decides whether a viewer may open a lesson. Pure and total:
// it never errors, and unknown input degrades to deny.
type AccessService interface {
	Evaluate(lesson *models.Lesson, course *models.Course, enrolled bool) AccessDecision
}

// ProgressService records completion events and aggregates them per course.
type ProgressService interface {
	// RecordCompletion upserts the completion and refreshes the enrollment's
	// cached percentage in one transaction. Duplicate events are tolerated.
	RecordCompletion(ctx context.Context, userID string, lessonID uint) error

	// GetProgress returns the zero-value aggregate for unknown users or
	// courses; an error means the datastore could not answer.
	GetProgress(ctx context.Context, userID string, courseID uint) (*CourseProgress, error)

	IsLessonCompleted(ctx context.Context, userID string, lessonID uint) (bool, error)
}

type CourseService interface {
	// Core CRUD operations (admin)
	Create(ctx context.Context, req *CreateCourseRequest) (*models.Course, error)
	Update(ctx context.Context, id uint, req *UpdateCourseRequest) (*models.Course, error)
	Delete(ctx context.Context, id uint) error

	// Viewer operations; userID is empty for anonymous viewers
	GetByID(ctx context.Context, id uint) (*models.Course, error)
	GetDetail(ctx context.Context, id uint, userID string) (*CourseDetailResponse, error)
	List(ctx context.Context, filters repositories.CourseFilters) (*CourseListResponse, error)
	GetRecommended(ctx context.Context, userID string) ([]*models.Course, error)
	GetPurchaseOptions(ctx context.Context, id uint) (*PurchaseOptions, error)

	// GetLessonVideo gates the video identifier behind the access evaluator.
	GetLessonVideo(ctx context.Context, lessonID uint, userID string) (*LessonVideoResponse, error)

	// Lesson management (admin)
	AddLesson(ctx context.Context, courseID uint, req *CreateLessonRequest) (*models.Lesson, error)
	UpdateLesson(ctx context.Context, lessonID uint, req *UpdateLessonRequest) (*models.Lesson, error)
	RemoveLesson(ctx context.Context, lessonID uint) error
}

type EnrollmentService interface {
	// Enroll grants course access; origin is "admin", "registration" or "purchase".
	Enroll(ctx context.Context, userID string, courseID uint, origin string) (*models.Enrollment, error)
	IsEnrolled(ctx context.Context, userID string, courseID uint) (bool, error)
	GetUserCourses(ctx context.Context, userID string) ([]*EnrolledCourseResponse, error)
	ListByCourse(ctx context.Context, courseID uint, filters repositories.EnrollmentFilters) (*EnrollmentListResponse, error)

	// EnsureUserProvisioned mirrors the identity-provider user locally and,
	// on first sight, enrolls them into the lead-magnet course.
	EnsureUserProvisioned(ctx context.Context, user *models.User) error
}

type MaterialService interface {
	ListByCourse(ctx context.Context, courseID uint, userID string) ([]*models.CourseMaterial, error)
	Create(ctx context.Context, req *CreateMaterialRequest) (*models.CourseMaterial, error)
	Delete(ctx context.Context, id uint) error

	// FetchForDownload proxies the external file so the browser gets a
	// Content-Disposition attachment. Enrollment-gated like ListByCourse.
	FetchForDownload(ctx context.Context, materialID uint, userID string) (*DownloadResult, error)
}

// ReportService builds admin exports.
type ReportService interface {
	// CourseEnrollmentsReport renders an .xlsx workbook of every enrollment
	// in a course with the learner's live progress.
	CourseEnrollmentsReport(ctx context.Context, courseID uint) ([]byte, error)
}

// ===== SERVICE MANAGER =====

type ServiceManager interface {
	Access() AccessService
	Course() CourseService
	Progress() ProgressService
	Enrollment() EnrollmentService
	Material() MaterialService
	Report() ReportService

	// Health and lifecycle
	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
