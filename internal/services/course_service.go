package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/masterproject/course-platform/internal/models"
	"github.com/masterproject/course-platform/internal/repositories"
	"github.com/masterproject/course-platform/internal/utils"
	"github.com/masterproject/course-platform/internal/validator"
)

type courseService struct {
	repo      repositories.Repository
	access    AccessService
	progress  ProgressService
	validator *validator.Validator
	logger    utils.Logger
}

// NewCourseService builds the catalog service.
func NewCourseService(repo repositories.Repository, access AccessService, progress ProgressService, v *validator.Validator, logger utils.Logger) CourseService {
	return &courseService{
		repo:      repo,
		access:    access,
		progress:  progress,
		validator: v,
		logger:    logger,
	}
}

// ===== ADMIN CRUD =====

func (s *courseService) Create(ctx context.Context, req *CreateCourseRequest) (*models.Course, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	course := &models.Course{
		Title:    req.Title,
		Price:    req.Price,
		Level:    models.LevelBeginner,
		Category: req.Category,
		ImageURL: req.ImageURL,
		IsActive: true,
	}
	if req.Description != nil {
		course.Description = *req.Description
	}
	if req.Instructor != nil {
		course.Instructor = *req.Instructor
	}
	if req.OriginalPrice != nil {
		course.OriginalPrice = *req.OriginalPrice
	}
	if req.Level != "" {
		course.Level = models.CourseLevel(req.Level)
	}
	if req.TotalDuration != nil {
		course.TotalDuration = *req.TotalDuration
	}
	if req.IsActive != nil {
		course.IsActive = *req.IsActive
	}
	if req.IsLeadMagnet != nil {
		course.IsLeadMagnet = *req.IsLeadMagnet
	}
	if req.IsRestricted != nil {
		course.IsRestricted = *req.IsRestricted
	}
	if len(req.PaymentLinks) > 0 {
		links, err := json.Marshal(req.PaymentLinks)
		if err != nil {
			return nil, fmt.Errorf("failed to encode payment links: %w", err)
		}
		course.PaymentLinks = links
	}

	if err := s.repo.Course().Create(ctx, course); err != nil {
		return nil, fmt.Errorf("failed to create course: %w", err)
	}

	s.logger.Info("Course created", "course_id", course.ID, "title", course.Title)
	return course, nil
}

func (s *courseService) Update(ctx context.Context, id uint, req *UpdateCourseRequest) (*models.Course, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	course, err := s.repo.Course().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to load course %d: %w", id, err)
	}

	if req.Title != nil {
		course.Title = *req.Title
	}
	if req.Description != nil {
		course.Description = *req.Description
	}
	if req.Instructor != nil {
		course.Instructor = *req.Instructor
	}
	if req.Price != nil {
		course.Price = *req.Price
	}
	if req.OriginalPrice != nil {
		course.OriginalPrice = *req.OriginalPrice
	}
	if req.Level != nil {
		course.Level = models.CourseLevel(*req.Level)
	}
	if req.Category != nil {
		course.Category = req.Category
	}
	if req.ImageURL != nil {
		course.ImageURL = req.ImageURL
	}
	if req.TotalDuration != nil {
		course.TotalDuration = *req.TotalDuration
	}
	if req.IsActive != nil {
		course.IsActive = *req.IsActive
	}
	if req.IsLeadMagnet != nil {
		course.IsLeadMagnet = *req.IsLeadMagnet
	}
	if req.IsRestricted != nil {
		course.IsRestricted = *req.IsRestricted
	}
	if req.PaymentLinks != nil {
		links, err := json.Marshal(req.PaymentLinks)
		if err != nil {
			return nil, fmt.Errorf("failed to encode payment links: %w", err)
		}
		course.PaymentLinks = links
	}

	if err := s.repo.Course().Update(ctx, course); err != nil {
		return nil, fmt.Errorf("failed to update course %d: %w", id, err)
	}

	s.logger.Info("Course updated", "course_id", course.ID)
	return course, nil
}

func (s *courseService) Delete(ctx context.Context, id uint) error {
	if err := s.repo.Course().Delete(ctx, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrCourseNotFound
		}
		return fmt.Errorf("failed to delete course %d: %w", id, err)
	}

	s.logger.Info("Course deleted", "course_id", id)
	return nil
}

// ===== VIEWER OPERATIONS =====

func (s *courseService) GetByID(ctx context.Context, id uint) (*models.Course, error) {
	course, err := s.repo.Course().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to load course %d: %w", id, err)
	}
	return course, nil
}

// GetDetail assembles the course page: every lesson annotated with the
// viewer's access decision and, for enrolled viewers, their live progress.
// Anonymous viewers pass an empty userID.
func (s *courseService) GetDetail(ctx context.Context, id uint, userID string) (*CourseDetailResponse, error) {
	course, err := s.repo.Course().GetByIDWithLessons(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to load course %d: %w", id, err)
	}

	enrolled := false
	if userID != "" {
		enrolled, err = s.repo.Enrollment().ExistsByUserAndCourse(ctx, userID, id)
		if err != nil {
			return nil, fmt.Errorf("failed to check enrollment: %w", err)
		}
	}

	var progress *CourseProgress
	completed := make(map[uint]bool)
	if enrolled {
		progress, err = s.progress.GetProgress(ctx, userID, id)
		if err != nil {
			return nil, err
		}
		for _, lessonID := range progress.CompletedLessonIDs {
			completed[lessonID] = true
		}
	}

	lessons := make([]LessonView, 0, len(course.Lessons))
	for i := range course.Lessons {
		lesson := &course.Lessons[i]
		view := LessonView{
			Lesson:    lesson,
			Access:    s.access.Evaluate(lesson, course, enrolled),
			Completed: completed[lesson.ID],
		}
		// The video identifier stays server-side until access is granted;
		// the streaming endpoint re-checks and hands it out.
		if !view.Access.Allowed {
			redacted := *lesson
			redacted.VideoID = ""
			redacted.VideoURL = nil
			view.Lesson = &redacted
		}
		lessons = append(lessons, view)
	}

	return &CourseDetailResponse{
		Course:     course,
		Lessons:    lessons,
		IsEnrolled: enrolled,
		Progress:   progress,
	}, nil
}

func (s *courseService) List(ctx context.Context, filters repositories.CourseFilters) (*CourseListResponse, error) {
	if filters.Limit <= 0 || filters.Limit > 100 {
		filters.Limit = 20
	}
	if filters.Offset < 0 {
		filters.Offset = 0
	}

	courses, total, err := s.repo.Course().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}

	return &CourseListResponse{
		Courses: courses,
		Total:   total,
		Page:    filters.Offset/filters.Limit + 1,
		Size:    filters.Limit,
	}, nil
}

func (s *courseService) GetRecommended(ctx context.Context, userID string) ([]*models.Course, error) {
	courses, err := s.repo.Course().GetRecommended(ctx, userID, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to load recommendations: %w", err)
	}
	return courses, nil
}

// GetPurchaseOptions returns the checkout links for the paywall screen. The
// lead-magnet course carries the "register" action instead of links.
func (s *courseService) GetPurchaseOptions(ctx context.Context, id uint) (*PurchaseOptions, error) {
	course, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !course.IsActive {
		return nil, ErrCourseInactive
	}

	options := &PurchaseOptions{
		CourseID:      course.ID,
		Title:         course.Title,
		Price:         course.Price,
		OriginalPrice: course.OriginalPrice,
		Action:        "purchase",
		Links:         map[string]string{},
	}
	if course.IsLeadMagnet {
		options.Action = "register"
		return options, nil
	}

	if len(course.PaymentLinks) > 0 {
		if err := json.Unmarshal(course.PaymentLinks, &options.Links); err != nil {
			return nil, fmt.Errorf("failed to decode payment links for course %d: %w", id, err)
		}
	}

	return options, nil
}

// GetLessonVideo runs the access evaluator and, only on allow, releases the
// external video identifier. A denial carries the reason so the caller can
// show the right call-to-action.
func (s *courseService) GetLessonVideo(ctx context.Context, lessonID uint, userID string) (*LessonVideoResponse, error) {
	lesson, err := s.repo.Lesson().GetByID(ctx, lessonID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrLessonNotFound
		}
		return nil, fmt.Errorf("failed to load lesson %d: %w", lessonID, err)
	}

	course, err := s.repo.Course().GetByID(ctx, lesson.CourseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to load course %d: %w", lesson.CourseID, err)
	}

	enrolled := false
	if userID != "" {
		enrolled, err = s.repo.Enrollment().ExistsByUserAndCourse(ctx, userID, lesson.CourseID)
		if err != nil {
			return nil, fmt.Errorf("failed to check enrollment: %w", err)
		}
	}

	decision := s.access.Evaluate(lesson, course, enrolled)
	if !decision.Allowed {
		return nil, &AccessDeniedError{Reason: decision.Reason}
	}

	return &LessonVideoResponse{
		LessonID: lesson.ID,
		VideoID:  lesson.VideoID,
		VideoURL: lesson.VideoURL,
		Reason:   decision.Reason,
	}, nil
}

// ===== LESSON MANAGEMENT (ADMIN) =====

func (s *courseService) AddLesson(ctx context.Context, courseID uint, req *CreateLessonRequest) (*models.Lesson, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	exists, err := s.repo.Course().ExistsByID(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to check course %d: %w", courseID, err)
	}
	if !exists {
		return nil, ErrCourseNotFound
	}

	lesson := &models.Lesson{
		CourseID:    courseID,
		Title:       req.Title,
		Description: req.Description,
		VideoID:     req.VideoID,
		VideoURL:    req.VideoURL,
		LessonOrder: req.LessonOrder,
		IsPreview:   req.IsPreview,
	}
	if req.Duration != nil {
		lesson.Duration = *req.Duration
	}

	if err := s.repo.Lesson().Create(ctx, lesson); err != nil {
		return nil, fmt.Errorf("failed to create lesson: %w", err)
	}

	s.logger.Info("Lesson created", "lesson_id", lesson.ID, "course_id", courseID)
	return lesson, nil
}

func (s *courseService) UpdateLesson(ctx context.Context, lessonID uint, req *UpdateLessonRequest) (*models.Lesson, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	lesson, err := s.repo.Lesson().GetByID(ctx, lessonID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrLessonNotFound
		}
		return nil, fmt.Errorf("failed to load lesson %d: %w", lessonID, err)
	}

	if req.Title != nil {
		lesson.Title = *req.Title
	}
	if req.Description != nil {
		lesson.Description = req.Description
	}
	if req.VideoID != nil {
		lesson.VideoID = *req.VideoID
	}
	if req.VideoURL != nil {
		lesson.VideoURL = req.VideoURL
	}
	if req.LessonOrder != nil {
		lesson.LessonOrder = *req.LessonOrder
	}
	if req.Duration != nil {
		lesson.Duration = *req.Duration
	}
	if req.IsPreview != nil {
		lesson.IsPreview = *req.IsPreview
	}

	if err := s.repo.Lesson().Update(ctx, lesson); err != nil {
		return nil, fmt.Errorf("failed to update lesson %d: %w", lessonID, err)
	}

	return lesson, nil
}

func (s *courseService) RemoveLesson(ctx context.Context, lessonID uint) error {
	if err := s.repo.Lesson().Delete(ctx, lessonID); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrLessonNotFound
		}
		return fmt.Errorf("failed to delete lesson %d: %w", lessonID, err)
	}
	return nil
}
