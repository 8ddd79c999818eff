package services

import (
	"context"
	"fmt"

	"github.com/masterproject/course-platform/internal/cache"
	"github.com/masterproject/course-platform/internal/events"
	"github.com/masterproject/course-platform/internal/repositories"
	"github.com/masterproject/course-platform/internal/utils"
	"github.com/masterproject/course-platform/internal/validator"
)

type serviceManager struct {
	repo         repositories.Repository
	cacheManager *cache.CacheManager
	publisher    events.EventPublisher
	logger       utils.Logger

	access     AccessService
	course     CourseService
	progress   ProgressService
	enrollment EnrollmentService
	material   MaterialService
	report     ReportService
}

// NewServiceManager wires all services over one repository and event publisher.
func NewServiceManager(repo repositories.Repository, cacheManager *cache.CacheManager, publisher events.EventPublisher, v *validator.Validator, logger utils.Logger) ServiceManager {
	access := NewAccessService()
	progress := NewProgressService(repo, cacheManager, publisher, logger)

	return &serviceManager{
		repo:         repo,
		cacheManager: cacheManager,
		publisher:    publisher,
		logger:       logger,
		access:       access,
		progress:     progress,
		course:       NewCourseService(repo, access, progress, v, logger),
		enrollment:   NewEnrollmentService(repo, publisher, logger),
		material:     NewMaterialService(repo, v, logger),
		report:       NewReportService(repo, progress, logger),
	}
}

func (m *serviceManager) Access() AccessService         { return m.access }
func (m *serviceManager) Course() CourseService         { return m.course }
func (m *serviceManager) Progress() ProgressService     { return m.progress }
func (m *serviceManager) Enrollment() EnrollmentService { return m.enrollment }
func (m *serviceManager) Material() MaterialService     { return m.material }
func (m *serviceManager) Report() ReportService         { return m.report }

func (m *serviceManager) Initialize(ctx context.Context) error {
	if err := m.repo.Ping(ctx); err != nil {
		return fmt.Errorf("repository not reachable: %w", err)
	}
	m.logger.Info("Service manager initialized")
	return nil
}

func (m *serviceManager) HealthCheck(ctx context.Context) error {
	if err := m.repo.Ping(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}

	if err := m.cacheManager.HealthCheck(ctx); err != nil && err != cache.ErrCacheNotAvailable {
		// The cache is an accelerator; being down degrades latency, not
		// correctness, so report it without failing the check.
		m.logger.Warn("Cache health check failed", "error", err)
	}

	return nil
}

func (m *serviceManager) Shutdown(ctx context.Context) error {
	if err := m.publisher.Close(); err != nil {
		m.logger.Error("Failed to close event publisher", "error", err)
	}
	return m.repo.Close()
}
