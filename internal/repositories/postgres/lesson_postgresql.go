package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/masterproject/course-platform/internal/cache"
	"github.com/masterproject/course-platform/internal/models"
	"github.com/masterproject/course-platform/internal/repositories"
)

type LessonPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewLessonPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.LessonRepository {
	return &LessonPostgreSQL{
		db:           db,
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (l *LessonPostgreSQL) Create(ctx context.Context, lesson *models.Lesson) error {
	if err := l.db.WithContext(ctx).Create(lesson).Error; err != nil {
		return fmt.Errorf("failed to create lesson: %w", err)
	}
	cache.InvalidateCourseCache(ctx, l.cacheManager, lesson.CourseID)
	return nil
}

func (l *LessonPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Lesson, error) {
	cacheKey := fmt.Sprintf("id:%d", id)
	var lesson models.Lesson

	err := l.cacheManager.Lesson.CacheOrExecute(ctx, cacheKey, &lesson, cache.LessonCacheConfig.TTL, func() (interface{}, error) {
		var dbLesson models.Lesson
		if err := l.db.WithContext(ctx).First(&dbLesson, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, repositories.ErrNotFound
			}
			return nil, fmt.Errorf("failed to get lesson: %w", err)
		}
		return &dbLesson, nil
	})
	if err != nil {
		return nil, err
	}

	return &lesson, nil
}

func (l *LessonPostgreSQL) Update(ctx context.Context, lesson *models.Lesson) error {
	if err := l.db.WithContext(ctx).Save(lesson).Error; err != nil {
		return fmt.Errorf("failed to update lesson: %w", err)
	}
	cache.SafeDelete(ctx, l.cacheManager.Lesson, fmt.Sprintf("id:%d", lesson.ID))
	cache.InvalidateCourseCache(ctx, l.cacheManager, lesson.CourseID)
	return nil
}

func (l *LessonPostgreSQL) Delete(ctx context.Context, id uint) error {
	lesson, err := l.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := l.db.WithContext(ctx).Delete(&models.Lesson{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete lesson: %w", err)
	}
	cache.SafeDelete(ctx, l.cacheManager.Lesson, fmt.Sprintf("id:%d", id))
	cache.InvalidateCourseCache(ctx, l.cacheManager, lesson.CourseID)
	return nil
}

func (l *LessonPostgreSQL) ListByCourse(ctx context.Context, courseID uint) ([]*models.Lesson, error) {
	var lessons []*models.Lesson
	err := l.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("lesson_order ASC").
		Find(&lessons).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list lessons: %w", err)
	}
	return lessons, nil
}

func (l *LessonPostgreSQL) CountByCourse(ctx context.Context, courseID uint) (int64, error) {
	var count int64
	err := l.db.WithContext(ctx).
		Model(&models.Lesson{}).
		Where("course_id = ?", courseID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count lessons: %w", err)
	}
	return count, nil
}
