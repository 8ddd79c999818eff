package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/masterproject/course-platform/internal/models"
	"github.com/masterproject/course-platform/internal/utils"
	"github.com/masterproject/course-platform/internal/validator"
)

func newMaterialFixture(t *testing.T) (*mockRepository, MaterialService) {
	t.Helper()
	repo := newMockRepository()
	svc := NewMaterialService(repo, validator.New(), utils.NewSlogLogger(slog.Default()))
	return repo, svc
}

func TestMaterialService_ListByCourse_Gated(t *testing.T) {
	ctx := context.Background()
	repo, svc := newMaterialFixture(t)

	repo.addCourse(&models.Course{ID: 1, IsActive: true})
	_ = repo.Material().Create(ctx, &models.CourseMaterial{
		CourseID: 1,
		Title:    "Workbook",
		FileURL:  "https://files.example.com/workbook.pdf",
	})
	repo.addEnrollment("buyer", 1)

	materials, err := svc.ListByCourse(ctx, 1, "buyer")
	if err != nil {
		t.Fatalf("ListByCourse() error = %v", err)
	}
	if len(materials) != 1 {
		t.Errorf("got %d materials, want 1", len(materials))
	}

	_, err = svc.ListByCourse(ctx, 1, "stranger")
	var denied *AccessDeniedError
	if !errors.As(err, &denied) {
		t.Fatalf("ListByCourse() error = %v, want AccessDeniedError", err)
	}
	if denied.Reason != AccessDeniedPurchaseRequired {
		t.Errorf("denial reason = %q, want %q", denied.Reason, AccessDeniedPurchaseRequired)
	}

	_, err = svc.ListByCourse(ctx, 42, "buyer")
	if !errors.Is(err, ErrCourseNotFound) {
		t.Errorf("ListByCourse() error = %v, want ErrCourseNotFound", err)
	}
}

func TestMaterialService_FetchForDownload(t *testing.T) {
	ctx := context.Background()
	repo, svc := newMaterialFixture(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.4 fake"))
	}))
	defer server.Close()

	repo.addCourse(&models.Course{ID: 1, IsActive: true})
	material := &models.CourseMaterial{
		CourseID: 1,
		Title:    "Workbook",
		FileURL:  server.URL + "/workbook.pdf",
	}
	_ = repo.Material().Create(ctx, material)
	repo.addEnrollment("buyer", 1)

	result, err := svc.FetchForDownload(ctx, material.ID, "buyer")
	if err != nil {
		t.Fatalf("FetchForDownload() error = %v", err)
	}
	defer result.Body.Close()

	if result.ContentType != "application/pdf" {
		t.Errorf("content type = %q, want application/pdf", result.ContentType)
	}
	if result.Filename != "Workbook.pdf" {
		t.Errorf("filename = %q, want Workbook.pdf", result.Filename)
	}

	body, err := io.ReadAll(result.Body)
	if err != nil {
		t.Fatalf("reading body: %v", err)
	}
	if string(body) != "%PDF-1.4 fake" {
		t.Errorf("body = %q", body)
	}
}

func TestMaterialService_FetchForDownload_Denied(t *testing.T) {
	ctx := context.Background()
	repo, svc := newMaterialFixture(t)

	repo.addCourse(&models.Course{ID: 1, IsActive: true})
	material := &models.CourseMaterial{CourseID: 1, Title: "Workbook", FileURL: "https://files.example.com/w.pdf"}
	_ = repo.Material().Create(ctx, material)

	_, err := svc.FetchForDownload(ctx, material.ID, "stranger")
	var denied *AccessDeniedError
	if !errors.As(err, &denied) {
		t.Fatalf("FetchForDownload() error = %v, want AccessDeniedError", err)
	}

	_, err = svc.FetchForDownload(ctx, 999, "stranger")
	if !errors.Is(err, ErrMaterialNotFound) {
		t.Errorf("FetchForDownload() error = %v, want ErrMaterialNotFound", err)
	}
}
