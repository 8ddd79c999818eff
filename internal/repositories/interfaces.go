package repositories

import (
	"context"

	"github.com/masterproject/course-platform/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type CourseFilters struct {
	IsActive     *bool               `json:"is_active"`
	IsLeadMagnet *bool               `json:"is_lead_magnet"`
	Category     *string             `json:"category"`
	Level        *models.CourseLevel `json:"level"`
	Query        string              `json:"query"`
	Limit        int                 `json:"limit"`
	Offset       int                 `json:"offset"`
	SortBy       string              `json:"sort_by"`    // "created_at", "title", "price"
	SortOrder    string              `json:"sort_order"` // "asc", "desc"
}

type EnrollmentFilters struct {
	UserID   *string `json:"user_id"`
	CourseID *uint   `json:"course_id"`
	Limit    int     `json:"limit"`
	Offset   int     `json:"offset"`
}

// ===== REPOSITORY INTERFACES =====

type CourseRepository interface {
	Create(ctx context.Context, course *models.Course) error
	GetByID(ctx context.Context, id uint) (*models.Course, error)
	GetByIDWithLessons(ctx context.Context, id uint) (*models.Course, error)
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, id uint) error

	List(ctx context.Context, filters CourseFilters) ([]*models.Course, int64, error)
	// GetRecommended returns active, non-restricted courses the user is not
	// enrolled in.
	GetRecommended(ctx context.Context, userID string, limit int) ([]*models.Course, error)
	// GetLeadMagnet returns the distinguished registration-gated course, or a
	// not-found error when none is flagged.
	GetLeadMagnet(ctx context.Context) (*models.Course, error)

	ExistsByID(ctx context.Context, id uint) (bool, error)
}

type LessonRepository interface {
	Create(ctx context.Context, lesson *models.Lesson) error
	GetByID(ctx context.Context, id uint) (*models.Lesson, error)
	Update(ctx context.Context, lesson *models.Lesson) error
	Delete(ctx context.Context, id uint) error

	// ListByCourse returns lessons ordered by lesson_order ascending.
	ListByCourse(ctx context.Context, courseID uint) ([]*models.Lesson, error)
	CountByCourse(ctx context.Context, courseID uint) (int64, error)
}

type EnrollmentRepository interface {
	Create(ctx context.Context, enrollment *models.Enrollment) error
	GetByUserAndCourse(ctx context.Context, userID string, courseID uint) (*models.Enrollment, error)
	ExistsByUserAndCourse(ctx context.Context, userID string, courseID uint) (bool, error)

	ListByUser(ctx context.Context, userID string) ([]*models.Enrollment, error)
	ListByCourse(ctx context.Context, courseID uint, filters EnrollmentFilters) ([]*models.Enrollment, int64, error)

	// UpdateProgress writes the cached completion percentage. It is the only
	// mutation path for Enrollment.Progress.
	UpdateProgress(ctx context.Context, userID string, courseID uint, progress int) error
}

type LessonProgressRepository interface {
	// Upsert records a completion idempotently: a repeat event refreshes
	// completed_at without creating a second row.
	Upsert(ctx context.Context, userID string, lessonID uint) error

	IsCompleted(ctx context.Context, userID string, lessonID uint) (bool, error)
	CountCompletedByCourse(ctx context.Context, userID string, courseID uint) (int64, error)
	ListCompletedLessonIDs(ctx context.Context, userID string, courseID uint) ([]uint, error)
}

type MaterialRepository interface {
	Create(ctx context.Context, material *models.CourseMaterial) error
	GetByID(ctx context.Context, id uint) (*models.CourseMaterial, error)
	Delete(ctx context.Context, id uint) error

	ListByCourse(ctx context.Context, courseID uint) ([]*models.CourseMaterial, error)
}

// LocalUserRepository maintains the local mirror of identity-provider users
// so enrollments and progress rows have something to reference.
type LocalUserRepository interface {
	// Upsert inserts or refreshes the mirror row; created reports whether the
	// user was seen for the first time.
	Upsert(ctx context.Context, user *models.User) (created bool, err error)
	GetByID(ctx context.Context, id string) (*models.User, error)
}
