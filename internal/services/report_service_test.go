package services

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/masterproject/course-platform/internal/cache"
	"github.com/masterproject/course-platform/internal/events"
	"github.com/masterproject/course-platform/internal/models"
	"github.com/masterproject/course-platform/internal/utils"
)

func newReportFixture(t *testing.T) (*mockRepository, ReportService) {
	t.Helper()
	repo := newMockRepository()
	logger := utils.NewSlogLogger(slog.Default())
	publisher := events.NewMockEventPublisher(slog.Default())
	progress := NewProgressService(repo, cache.NewCacheManager(nil), publisher, logger)
	svc := NewReportService(repo, progress, logger)
	return repo, svc
}

func TestReportService_CourseEnrollmentsReport(t *testing.T) {
	ctx := context.Background()
	repo, svc := newReportFixture(t)

	repo.addCourse(&models.Course{ID: 1, Title: "Course", IsActive: true})
	var lessonIDs []uint
	for i := 1; i <= 4; i++ {
		lesson := repo.addLesson(&models.Lesson{CourseID: 1, LessonOrder: i})
		lessonIDs = append(lessonIDs, lesson.ID)
	}
	repo.addEnrollment("user-1", 1)
	repo.addEnrollment("user-2", 1)
	repo.users["user-1"] = &models.User{ID: "user-1", FullName: "Ana Silva", Email: "ana@example.com"}

	_ = repo.LessonProgress().Upsert(ctx, "user-1", lessonIDs[0])
	_ = repo.LessonProgress().Upsert(ctx, "user-1", lessonIDs[1])

	data, err := svc.CourseEnrollmentsReport(ctx, 1)
	if err != nil {
		t.Fatalf("CourseEnrollmentsReport() error = %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("report is not a valid workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Enrollments")
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want header + 2 enrollments", len(rows))
	}
	if rows[0][0] != "User ID" {
		t.Errorf("header cell = %q, want %q", rows[0][0], "User ID")
	}

	byUser := map[string][]string{}
	for _, row := range rows[1:] {
		byUser[row[0]] = row
	}
	if byUser["user-1"][1] != "Ana Silva" {
		t.Errorf("name = %q, want Ana Silva", byUser["user-1"][1])
	}
	// 2 of 4 lessons
	if byUser["user-1"][6] != "50" {
		t.Errorf("progress = %q, want 50", byUser["user-1"][6])
	}
	if byUser["user-2"][6] != "0" {
		t.Errorf("progress = %q, want 0", byUser["user-2"][6])
	}
}

func TestReportService_CourseEnrollmentsReport_UnknownCourse(t *testing.T) {
	ctx := context.Background()
	_, svc := newReportFixture(t)

	_, err := svc.CourseEnrollmentsReport(ctx, 42)
	if !errors.Is(err, ErrCourseNotFound) {
		t.Errorf("CourseEnrollmentsReport() error = %v, want ErrCourseNotFound", err)
	}
}
