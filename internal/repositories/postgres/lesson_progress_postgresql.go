package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/masterproject/course-platform/internal/cache"
	"github.com/masterproject/course-platform/internal/models"
	"github.com/masterproject/course-platform/internal/repositories"
)

type LessonProgressPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewLessonProgressPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.LessonProgressRepository {
	return &LessonProgressPostgreSQL{
		db:           db,
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

// Upsert inserts the completion row or, on the (user_id, lesson_id) conflict,
// refreshes completed_at. The row count never grows for a repeat event.
func (p *LessonProgressPostgreSQL) Upsert(ctx context.Context, userID string, lessonID uint) error {
	progress := models.LessonProgress{
		UserID:      userID,
		LessonID:    lessonID,
		CompletedAt: time.Now().UTC(),
	}

	err := p.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "lesson_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"completed_at"}),
		}).
		Create(&progress).Error
	if err != nil {
		return fmt.Errorf("failed to upsert lesson progress: %w", err)
	}

	return nil
}

func (p *LessonProgressPostgreSQL) IsCompleted(ctx context.Context, userID string, lessonID uint) (bool, error) {
	var count int64
	err := p.db.WithContext(ctx).
		Model(&models.LessonProgress{}).
		Where("user_id = ? AND lesson_id = ?", userID, lessonID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check lesson completion: %w", err)
	}
	return count > 0, nil
}

func (p *LessonProgressPostgreSQL) CountCompletedByCourse(ctx context.Context, userID string, courseID uint) (int64, error) {
	var count int64
	err := p.db.WithContext(ctx).
		Model(&models.LessonProgress{}).
		Joins("INNER JOIN lessons ON lessons.id = lesson_progress.lesson_id").
		Where("lesson_progress.user_id = ? AND lessons.course_id = ?", userID, courseID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count completed lessons: %w", err)
	}
	return count, nil
}

func (p *LessonProgressPostgreSQL) ListCompletedLessonIDs(ctx context.Context, userID string, courseID uint) ([]uint, error) {
	var ids []uint
	err := p.db.WithContext(ctx).
		Model(&models.LessonProgress{}).
		Joins("INNER JOIN lessons ON lessons.id = lesson_progress.lesson_id").
		Where("lesson_progress.user_id = ? AND lessons.course_id = ?", userID, courseID).
		Order("lessons.lesson_order ASC").
		Pluck("lesson_progress.lesson_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list completed lessons: %w", err)
	}
	return ids, nil
}
