package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/masterproject/course-platform/internal/events"
	"github.com/masterproject/course-platform/internal/models"
	"github.com/masterproject/course-platform/internal/repositories"
	"github.com/masterproject/course-platform/internal/utils"
)

type enrollmentService struct {
	repo      repositories.Repository
	publisher events.EventPublisher
	logger    utils.Logger
}

// NewEnrollmentService builds the enrollment manager.
func NewEnrollmentService(repo repositories.Repository, publisher events.EventPublisher, logger utils.Logger) EnrollmentService {
	return &enrollmentService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
}

func (s *enrollmentService) Enroll(ctx context.Context, userID string, courseID uint, origin string) (*models.Enrollment, error) {
	course, err := s.repo.Course().GetByID(ctx, courseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to load course %d: %w", courseID, err)
	}
	if !course.IsActive {
		return nil, ErrCourseInactive
	}

	exists, err := s.repo.Enrollment().ExistsByUserAndCourse(ctx, userID, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to check enrollment: %w", err)
	}
	if exists {
		return nil, ErrEnrollmentExists
	}

	enrollment := &models.Enrollment{
		UserID:     userID,
		CourseID:   courseID,
		Progress:   0,
		EnrolledAt: time.Now().UTC(),
	}
	if err := s.repo.Enrollment().Create(ctx, enrollment); err != nil {
		return nil, fmt.Errorf("failed to create enrollment: %w", err)
	}

	s.logger.Info("User enrolled",
		"user_id", userID,
		"course_id", courseID,
		"origin", origin)

	event := events.NewEvent(events.EventEnrollmentCreated, events.EnrollmentCreatedEvent{
		UserID:   userID,
		CourseID: courseID,
		Origin:   origin,
	})
	if err := s.publisher.Publish(event); err != nil {
		s.logger.Error("Failed to publish enrollment created event",
			"error", err,
			"user_id", userID,
			"course_id", courseID)
	}

	return enrollment, nil
}

func (s *enrollmentService) IsEnrolled(ctx context.Context, userID string, courseID uint) (bool, error) {
	return s.repo.Enrollment().ExistsByUserAndCourse(ctx, userID, courseID)
}

func (s *enrollmentService) GetUserCourses(ctx context.Context, userID string) ([]*EnrolledCourseResponse, error) {
	enrollments, err := s.repo.Enrollment().ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list enrollments: %w", err)
	}

	courses := make([]*EnrolledCourseResponse, 0, len(enrollments))
	for _, enrollment := range enrollments {
		courses = append(courses, &EnrolledCourseResponse{
			Course:     &enrollment.Course,
			Progress:   enrollment.Progress,
			EnrolledAt: enrollment.EnrolledAt.Format(time.RFC3339),
		})
	}
	return courses, nil
}

func (s *enrollmentService) ListByCourse(ctx context.Context, courseID uint, filters repositories.EnrollmentFilters) (*EnrollmentListResponse, error) {
	exists, err := s.repo.Course().ExistsByID(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to check course %d: %w", courseID, err)
	}
	if !exists {
		return nil, ErrCourseNotFound
	}

	if filters.Limit <= 0 || filters.Limit > 100 {
		filters.Limit = 50
	}

	enrollments, total, err := s.repo.Enrollment().ListByCourse(ctx, courseID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list enrollments: %w", err)
	}

	return &EnrollmentListResponse{
		Enrollments: enrollments,
		Total:       total,
	}, nil
}

// EnsureUserProvisioned mirrors the identity-provider user into the local
// users table. The first time a user is seen they are enrolled into the
// lead-magnet course; registration is the conversion event for it.
func (s *enrollmentService) EnsureUserProvisioned(ctx context.Context, user *models.User) error {
	created, err := s.repo.LocalUser().Upsert(ctx, user)
	if err != nil {
		return fmt.Errorf("failed to provision user %s: %w", user.ID, err)
	}
	if !created {
		return nil
	}

	s.logger.Info("New user provisioned", "user_id", user.ID)

	leadMagnet, err := s.repo.Course().GetLeadMagnet(ctx)
	if err != nil {
		// No flagged course is a valid configuration.
		if repositories.IsNotFoundError(err) {
			return nil
		}
		return fmt.Errorf("failed to load lead magnet course: %w", err)
	}

	if _, err := s.Enroll(ctx, user.ID, leadMagnet.ID, "registration"); err != nil {
		// A concurrent request may have enrolled them already.
		if errors.Is(err, ErrEnrollmentExists) {
			return nil
		}
		return fmt.Errorf("failed to auto-enroll user %s: %w", user.ID, err)
	}

	return nil
}
