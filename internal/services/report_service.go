package services

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/masterproject/course-platform/internal/models"
	"github.com/masterproject/course-platform/internal/repositories"
	"github.com/masterproject/course-platform/internal/utils"
)

type reportService struct {
	repo     repositories.Repository
	progress ProgressService
	logger   utils.Logger
}

// NewReportService builds the admin export service.
func NewReportService(repo repositories.Repository, progress ProgressService, logger utils.Logger) ReportService {
	return &reportService{
		repo:     repo,
		progress: progress,
		logger:   logger,
	}
}

// reportPageSize bounds each enrollment query in the export loop.
const reportPageSize = 500

// CourseEnrollmentsReport renders an .xlsx workbook listing every learner in
// the course with their enrollment date and live, recounted progress.
func (s *reportService) CourseEnrollmentsReport(ctx context.Context, courseID uint) ([]byte, error) {
	course, err := s.repo.Course().GetByID(ctx, courseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to load course %d: %w", courseID, err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Enrollments"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	headers := []string{"User ID", "Name", "Email", "Enrolled At", "Completed Lessons", "Total Lessons", "Progress (%)"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}
	if err := f.SetCellStyle(sheet, "A1", "G1", headerStyle); err != nil {
		return nil, fmt.Errorf("failed to style header: %w", err)
	}

	row := 2
	offset := 0
	for {
		enrollments, _, err := s.repo.Enrollment().ListByCourse(ctx, courseID, repositories.EnrollmentFilters{
			Limit:  reportPageSize,
			Offset: offset,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list enrollments: %w", err)
		}
		if len(enrollments) == 0 {
			break
		}

		users, err := s.lookupUsers(ctx, enrollments)
		if err != nil {
			return nil, err
		}

		for _, enrollment := range enrollments {
			progress, err := s.progress.GetProgress(ctx, enrollment.UserID, courseID)
			if err != nil {
				return nil, err
			}

			name, email := "", ""
			if user, ok := users[enrollment.UserID]; ok {
				name, email = user.FullName, user.Email
			}

			values := []interface{}{
				enrollment.UserID,
				name,
				email,
				enrollment.EnrolledAt.Format(time.RFC3339),
				progress.Completed,
				progress.Total,
				progress.Percentage,
			}
			for i, value := range values {
				cell, _ := excelize.CoordinatesToCellName(i+1, row)
				if err := f.SetCellValue(sheet, cell, value); err != nil {
					return nil, fmt.Errorf("failed to write row %d: %w", row, err)
				}
			}
			row++
		}

		offset += reportPageSize
	}

	if err := f.SetColWidth(sheet, "A", "D", 28); err != nil {
		return nil, fmt.Errorf("failed to set column width: %w", err)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to serialize report: %w", err)
	}

	s.logger.Info("Enrollment report generated",
		"course_id", courseID,
		"course_title", course.Title,
		"rows", row-2)

	return buf.Bytes(), nil
}

// lookupUsers batch-resolves learner names from the identity provider. A
// lookup failure degrades to blank name columns rather than failing the export.
func (s *reportService) lookupUsers(ctx context.Context, enrollments []*models.Enrollment) (map[string]*models.User, error) {
	ids := make([]string, 0, len(enrollments))
	for _, enrollment := range enrollments {
		ids = append(ids, enrollment.UserID)
	}

	byID := make(map[string]*models.User, len(ids))
	users, err := s.repo.User().GetByIDs(ctx, ids)
	if err != nil {
		s.logger.Warn("Failed to resolve users for report", "error", err)
		return byID, nil
	}
	for _, user := range users {
		byID[user.ID] = user
	}
	return byID, nil
}
