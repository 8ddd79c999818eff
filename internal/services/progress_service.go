package services

import (
	"context"
	"fmt"
	"math"

	"github.com/masterproject/course-platform/internal/cache"
	"github.com/masterproject/course-platform/internal/events"
	"github.com/masterproject/course-platform/internal/repositories"
	"github.com/masterproject/course-platform/internal/utils"
)

type progressService struct {
	repo         repositories.Repository
	cacheManager *cache.CacheManager
	publisher    events.EventPublisher
	logger       utils.Logger
}

// NewProgressService builds the completion recorder and aggregator.
func NewProgressService(repo repositories.Repository, cacheManager *cache.CacheManager, publisher events.EventPublisher, logger utils.Logger) ProgressService {
	return &progressService{
		repo:         repo,
		cacheManager: cacheManager,
		publisher:    publisher,
		logger:       logger,
	}
}

// roundPercentage is the single place completion percentages are derived, so
// the live aggregate and the value stored on the enrollment cannot diverge on
// rounding. 0/0 is 0.
func roundPercentage(completed, total int64) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}

// RecordCompletion marks a lesson completed and refreshes the enrollment's
// percentage from a recount inside the same transaction. Repeat calls for the
// same lesson are harmless.
func (s *progressService) RecordCompletion(ctx context.Context, userID string, lessonID uint) error {
	var courseID uint
	var percentage int

	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		lesson, err := txRepo.Lesson().GetByID(ctx, lessonID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrLessonNotFound
			}
			return fmt.Errorf("failed to load lesson %d: %w", lessonID, err)
		}
		courseID = lesson.CourseID

		if err := txRepo.LessonProgress().Upsert(ctx, userID, lessonID); err != nil {
			return fmt.Errorf("failed to record completion: %w", err)
		}

		// Recount after the upsert so the stored percentage reflects this
		// completion even under concurrent writers.
		completed, err := txRepo.LessonProgress().CountCompletedByCourse(ctx, userID, courseID)
		if err != nil {
			return fmt.Errorf("failed to count completions: %w", err)
		}
		total, err := txRepo.Lesson().CountByCourse(ctx, courseID)
		if err != nil {
			return fmt.Errorf("failed to count lessons: %w", err)
		}
		percentage = roundPercentage(completed, total)

		if err := txRepo.Enrollment().UpdateProgress(ctx, userID, courseID, percentage); err != nil {
			// Completions are valid without an enrollment (previews, revoked
			// access); keep the progress row and move on.
			if repositories.IsNotFoundError(err) {
				s.logger.Debug("No enrollment to update",
					"user_id", userID,
					"course_id", courseID)
				return nil
			}
			return fmt.Errorf("failed to update enrollment progress: %w", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	cache.InvalidateProgressCache(ctx, s.cacheManager, userID, courseID)

	// Events are best-effort; the completion is already durable.
	event := events.NewEvent(events.EventLessonCompleted, events.LessonCompletedEvent{
		UserID:     userID,
		LessonID:   lessonID,
		CourseID:   courseID,
		Percentage: percentage,
	})
	if err := s.publisher.Publish(event); err != nil {
		s.logger.Error("Failed to publish lesson completed event",
			"error", err,
			"user_id", userID,
			"lesson_id", lessonID)
	}

	return nil
}

// GetProgress returns the live aggregate for one user and course. Unknown
// users or empty courses yield the zero-value aggregate, not an error.
func (s *progressService) GetProgress(ctx context.Context, userID string, courseID uint) (*CourseProgress, error) {
	var progress CourseProgress

	cacheKey := fmt.Sprintf("user:%s:course:%d", userID, courseID)
	err := s.cacheManager.Progress.CacheOrExecute(ctx, cacheKey, &progress, cache.ProgressCacheConfig.TTL, func() (interface{}, error) {
		return s.computeProgress(ctx, userID, courseID)
	})
	if err != nil {
		return nil, err
	}

	return &progress, nil
}

func (s *progressService) computeProgress(ctx context.Context, userID string, courseID uint) (*CourseProgress, error) {
	total, err := s.repo.Lesson().CountByCourse(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to count lessons: %w", err)
	}

	completedIDs, err := s.repo.LessonProgress().ListCompletedLessonIDs(ctx, userID, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list completed lessons: %w", err)
	}

	return &CourseProgress{
		Completed:          len(completedIDs),
		Total:              int(total),
		Percentage:         roundPercentage(int64(len(completedIDs)), total),
		CompletedLessonIDs: completedIDs,
	}, nil
}

func (s *progressService) IsLessonCompleted(ctx context.Context, userID string, lessonID uint) (bool, error) {
	return s.repo.LessonProgress().IsCompleted(ctx, userID, lessonID)
}
