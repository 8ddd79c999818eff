package services

import (
	"context"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/masterproject/course-platform/internal/models"
	"github.com/masterproject/course-platform/internal/repositories"
	"github.com/masterproject/course-platform/internal/utils"
	"github.com/masterproject/course-platform/internal/validator"
)

type materialService struct {
	repo      repositories.Repository
	validator *validator.Validator
	client    *resty.Client
	logger    utils.Logger
}

// NewMaterialService builds the course material service. Downloads are
// proxied through this service so the storage URLs never reach the browser.
func NewMaterialService(repo repositories.Repository, v *validator.Validator, logger utils.Logger) MaterialService {
	client := resty.New().
		SetTimeout(2 * time.Minute).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond)

	return &materialService{
		repo:      repo,
		validator: v,
		client:    client,
		logger:    logger,
	}
}

// ListByCourse returns a course's materials. Materials are an enrollment
// benefit; previews do not include them.
func (s *materialService) ListByCourse(ctx context.Context, courseID uint, userID string) ([]*models.CourseMaterial, error) {
	exists, err := s.repo.Course().ExistsByID(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to check course %d: %w", courseID, err)
	}
	if !exists {
		return nil, ErrCourseNotFound
	}

	enrolled, err := s.repo.Enrollment().ExistsByUserAndCourse(ctx, userID, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to check enrollment: %w", err)
	}
	if !enrolled {
		return nil, &AccessDeniedError{Reason: AccessDeniedPurchaseRequired}
	}

	materials, err := s.repo.Material().ListByCourse(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list materials: %w", err)
	}
	return materials, nil
}

func (s *materialService) Create(ctx context.Context, req *CreateMaterialRequest) (*models.CourseMaterial, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	exists, err := s.repo.Course().ExistsByID(ctx, req.CourseID)
	if err != nil {
		return nil, fmt.Errorf("failed to check course %d: %w", req.CourseID, err)
	}
	if !exists {
		return nil, ErrCourseNotFound
	}

	material := &models.CourseMaterial{
		CourseID: req.CourseID,
		Title:    req.Title,
		FileURL:  req.FileURL,
		FileType: req.FileType,
		FileSize: req.FileSize,
	}
	if err := s.repo.Material().Create(ctx, material); err != nil {
		return nil, fmt.Errorf("failed to create material: %w", err)
	}

	s.logger.Info("Material created", "material_id", material.ID, "course_id", material.CourseID)
	return material, nil
}

func (s *materialService) Delete(ctx context.Context, id uint) error {
	if err := s.repo.Material().Delete(ctx, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrMaterialNotFound
		}
		return fmt.Errorf("failed to delete material %d: %w", id, err)
	}
	return nil
}

// FetchForDownload streams the external file for an enrolled user. The
// response body is handed to the caller unread; the caller must close it.
func (s *materialService) FetchForDownload(ctx context.Context, materialID uint, userID string) (*DownloadResult, error) {
	material, err := s.repo.Material().GetByID(ctx, materialID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrMaterialNotFound
		}
		return nil, fmt.Errorf("failed to load material %d: %w", materialID, err)
	}

	enrolled, err := s.repo.Enrollment().ExistsByUserAndCourse(ctx, userID, material.CourseID)
	if err != nil {
		return nil, fmt.Errorf("failed to check enrollment: %w", err)
	}
	if !enrolled {
		return nil, &AccessDeniedError{Reason: AccessDeniedPurchaseRequired}
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(material.FileURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch material %d: %w", materialID, err)
	}
	if resp.StatusCode() != http.StatusOK {
		resp.RawBody().Close()
		return nil, fmt.Errorf("material storage returned status %d for material %d", resp.StatusCode(), materialID)
	}

	contentType := resp.Header().Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	return &DownloadResult{
		Filename:    downloadFilename(material),
		ContentType: contentType,
		Body:        resp.RawBody(),
	}, nil
}

// downloadFilename derives the attachment name from the material title,
// keeping the extension of the stored file.
func downloadFilename(material *models.CourseMaterial) string {
	name := strings.TrimSpace(material.Title)
	if name == "" {
		name = path.Base(material.FileURL)
	}
	if ext := path.Ext(material.FileURL); ext != "" && !strings.HasSuffix(name, ext) {
		name += ext
	}
	return name
}
