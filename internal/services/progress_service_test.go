package services

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/masterproject/course-platform/internal/cache"
	"github.com/masterproject/course-platform/internal/events"
	"github.com/masterproject/course-platform/internal/models"
	"github.com/masterproject/course-platform/internal/utils"
)

func newProgressFixture(t *testing.T) (*mockRepository, *events.MockEventPublisher, ProgressService) {
	t.Helper()
	repo := newMockRepository()
	publisher := events.NewMockEventPublisher(slog.Default())
	cm := cache.NewCacheManager(nil)
	svc := NewProgressService(repo, cm, publisher, utils.NewSlogLogger(slog.Default()))
	return repo, publisher, svc
}

func seedCourseWithLessons(repo *mockRepository, courseID uint, lessonCount int) []uint {
	repo.addCourse(&models.Course{ID: courseID, Title: "Course", IsActive: true})
	ids := make([]uint, 0, lessonCount)
	for i := 1; i <= lessonCount; i++ {
		lesson := repo.addLesson(&models.Lesson{CourseID: courseID, LessonOrder: i, Title: "Lesson"})
		ids = append(ids, lesson.ID)
	}
	return ids
}

func TestProgressService_RecordCompletion(t *testing.T) {
	ctx := context.Background()
	repo, publisher, svc := newProgressFixture(t)

	lessonIDs := seedCourseWithLessons(repo, 1, 5)
	repo.addEnrollment("user-1", 1)

	if err := svc.RecordCompletion(ctx, "user-1", lessonIDs[0]); err != nil {
		t.Fatalf("RecordCompletion() error = %v", err)
	}
	if err := svc.RecordCompletion(ctx, "user-1", lessonIDs[1]); err != nil {
		t.Fatalf("RecordCompletion() error = %v", err)
	}

	// 2 of 5 lessons rounds to 40
	enrollment, err := repo.Enrollment().GetByUserAndCourse(ctx, "user-1", 1)
	if err != nil {
		t.Fatalf("GetByUserAndCourse() error = %v", err)
	}
	if enrollment.Progress != 40 {
		t.Errorf("enrollment progress = %d, want 40", enrollment.Progress)
	}

	published := publisher.GetPublishedEvents()
	if len(published) != 2 {
		t.Fatalf("published %d events, want 2", len(published))
	}
	if published[1].Type != events.EventLessonCompleted {
		t.Errorf("event type = %q, want %q", published[1].Type, events.EventLessonCompleted)
	}
	data, ok := published[1].Data.(events.LessonCompletedEvent)
	if !ok {
		t.Fatalf("event data type = %T, want LessonCompletedEvent", published[1].Data)
	}
	if data.Percentage != 40 {
		t.Errorf("event percentage = %d, want 40", data.Percentage)
	}
}

func TestProgressService_RecordCompletion_Idempotent(t *testing.T) {
	ctx := context.Background()
	repo, _, svc := newProgressFixture(t)

	lessonIDs := seedCourseWithLessons(repo, 1, 4)
	repo.addEnrollment("user-1", 1)

	for i := 0; i < 3; i++ {
		if err := svc.RecordCompletion(ctx, "user-1", lessonIDs[0]); err != nil {
			t.Fatalf("RecordCompletion() attempt %d error = %v", i+1, err)
		}
	}

	progress, err := svc.GetProgress(ctx, "user-1", 1)
	if err != nil {
		t.Fatalf("GetProgress() error = %v", err)
	}
	if progress.Completed != 1 {
		t.Errorf("completed = %d, want 1 after duplicate events", progress.Completed)
	}
	if progress.Percentage != 25 {
		t.Errorf("percentage = %d, want 25", progress.Percentage)
	}

	enrollment, _ := repo.Enrollment().GetByUserAndCourse(ctx, "user-1", 1)
	if enrollment.Progress != 25 {
		t.Errorf("enrollment progress = %d, want 25", enrollment.Progress)
	}
}

func TestProgressService_RecordCompletion_NoEnrollment(t *testing.T) {
	ctx := context.Background()
	repo, _, svc := newProgressFixture(t)

	lessonIDs := seedCourseWithLessons(repo, 1, 3)

	// Preview viewers can complete lessons without an enrollment row.
	if err := svc.RecordCompletion(ctx, "anon-user", lessonIDs[0]); err != nil {
		t.Fatalf("RecordCompletion() without enrollment error = %v", err)
	}

	completed, err := svc.IsLessonCompleted(ctx, "anon-user", lessonIDs[0])
	if err != nil {
		t.Fatalf("IsLessonCompleted() error = %v", err)
	}
	if !completed {
		t.Error("completion was not recorded for non-enrolled user")
	}
}

func TestProgressService_RecordCompletion_UnknownLesson(t *testing.T) {
	ctx := context.Background()
	_, _, svc := newProgressFixture(t)

	err := svc.RecordCompletion(ctx, "user-1", 999)
	if !errors.Is(err, ErrLessonNotFound) {
		t.Errorf("RecordCompletion() error = %v, want ErrLessonNotFound", err)
	}
}

func TestProgressService_RecordCompletion_UpsertFailureAborts(t *testing.T) {
	ctx := context.Background()
	repo, publisher, svc := newProgressFixture(t)

	lessonIDs := seedCourseWithLessons(repo, 1, 3)
	repo.addEnrollment("user-1", 1)

	repo.failNext = errors.New("connection reset")

	if err := svc.RecordCompletion(ctx, "user-1", lessonIDs[0]); err == nil {
		t.Fatal("RecordCompletion() expected error, got nil")
	}

	if got := len(publisher.GetPublishedEvents()); got != 0 {
		t.Errorf("published %d events after failed recording, want 0", got)
	}
}

func TestProgressService_GetProgress(t *testing.T) {
	ctx := context.Background()
	repo, _, svc := newProgressFixture(t)

	lessonIDs := seedCourseWithLessons(repo, 1, 3)
	repo.addEnrollment("user-1", 1)

	tests := []struct {
		name           string
		userID         string
		courseID       uint
		complete       []uint
		wantCompleted  int
		wantTotal      int
		wantPercentage int
	}{
		{
			name:           "no completions yet",
			userID:         "user-1",
			courseID:       1,
			wantCompleted:  0,
			wantTotal:      3,
			wantPercentage: 0,
		},
		{
			name:           "one of three rounds up to 33",
			userID:         "user-1",
			courseID:       1,
			complete:       lessonIDs[:1],
			wantCompleted:  1,
			wantTotal:      3,
			wantPercentage: 33,
		},
		{
			name:           "two of three rounds to 67",
			userID:         "user-1",
			courseID:       1,
			complete:       lessonIDs[1:2],
			wantCompleted:  2,
			wantTotal:      3,
			wantPercentage: 67,
		},
		{
			name:           "all complete is 100",
			userID:         "user-1",
			courseID:       1,
			complete:       lessonIDs[2:],
			wantCompleted:  3,
			wantTotal:      3,
			wantPercentage: 100,
		},
		{
			name:           "unknown user gets zero values",
			userID:         "stranger",
			courseID:       1,
			wantCompleted:  0,
			wantTotal:      3,
			wantPercentage: 0,
		},
		{
			name:           "unknown course gets zero values",
			userID:         "user-1",
			courseID:       999,
			wantCompleted:  0,
			wantTotal:      0,
			wantPercentage: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, lessonID := range tt.complete {
				if err := svc.RecordCompletion(ctx, tt.userID, lessonID); err != nil {
					t.Fatalf("RecordCompletion() error = %v", err)
				}
			}

			progress, err := svc.GetProgress(ctx, tt.userID, tt.courseID)
			if err != nil {
				t.Fatalf("GetProgress() error = %v", err)
			}
			if progress.Completed != tt.wantCompleted {
				t.Errorf("completed = %d, want %d", progress.Completed, tt.wantCompleted)
			}
			if progress.Total != tt.wantTotal {
				t.Errorf("total = %d, want %d", progress.Total, tt.wantTotal)
			}
			if progress.Percentage != tt.wantPercentage {
				t.Errorf("percentage = %d, want %d", progress.Percentage, tt.wantPercentage)
			}
		})
	}
}

// The enrollment's stored percentage and the live aggregate must agree after
// every completion, since both come from the same rounding.
func TestProgressService_StoredAndLiveAgree(t *testing.T) {
	ctx := context.Background()
	repo, _, svc := newProgressFixture(t)

	lessonIDs := seedCourseWithLessons(repo, 1, 7)
	repo.addEnrollment("user-1", 1)

	for _, lessonID := range lessonIDs {
		if err := svc.RecordCompletion(ctx, "user-1", lessonID); err != nil {
			t.Fatalf("RecordCompletion() error = %v", err)
		}

		progress, err := svc.GetProgress(ctx, "user-1", 1)
		if err != nil {
			t.Fatalf("GetProgress() error = %v", err)
		}
		enrollment, err := repo.Enrollment().GetByUserAndCourse(ctx, "user-1", 1)
		if err != nil {
			t.Fatalf("GetByUserAndCourse() error = %v", err)
		}
		if progress.Percentage != enrollment.Progress {
			t.Errorf("after %d completions: live = %d, stored = %d",
				progress.Completed, progress.Percentage, enrollment.Progress)
		}
	}
}

func TestRoundPercentage(t *testing.T) {
	tests := []struct {
		completed int64
		total     int64
		want      int
	}{
		{0, 0, 0},
		{0, 10, 0},
		{1, 3, 33},
		{2, 3, 67},
		{1, 2, 50},
		{2, 5, 40},
		{1, 8, 13}, // 12.5 rounds half up
		{7, 7, 100},
	}
	for _, tt := range tests {
		if got := roundPercentage(tt.completed, tt.total); got != tt.want {
			t.Errorf("roundPercentage(%d, %d) = %d, want %d", tt.completed, tt.total, got, tt.want)
		}
	}
}
