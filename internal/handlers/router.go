package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/masterproject/course-platform/internal/config"
	"github.com/masterproject/course-platform/internal/models"
	"github.com/masterproject/course-platform/internal/repositories"
	"github.com/masterproject/course-platform/internal/services"
	"github.com/masterproject/course-platform/internal/utils"
	"github.com/masterproject/course-platform/internal/validator"
)

type HandlerManager struct {
	courseHandler     *CourseHandler
	progressHandler   *ProgressHandler
	enrollmentHandler *EnrollmentHandler
	materialHandler   *MaterialHandler
	userHandler       *UserHandler
	authMiddleware    *CasdoorAuthMiddleware
	serviceManager    services.ServiceManager
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	validator *validator.Validator,
	logger utils.Logger,
	casdoorConfig config.CasdoorConfig,
	userRepo repositories.UserRepository,
) *HandlerManager {
	authMiddleware := NewCasdoorAuthMiddleware(casdoorConfig, userRepo, serviceManager.Enrollment(), logger)

	return &HandlerManager{
		courseHandler:     NewCourseHandler(serviceManager.Course(), validator, logger),
		progressHandler:   NewProgressHandler(serviceManager.Progress(), validator, logger),
		enrollmentHandler: NewEnrollmentHandler(serviceManager.Enrollment(), serviceManager.Report(), validator, logger),
		materialHandler:   NewMaterialHandler(serviceManager.Material(), logger),
		userHandler:       NewUserHandler(userRepo, logger),
		authMiddleware:    authMiddleware,
		serviceManager:    serviceManager,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", hm.healthCheck)

	v1 := router.Group("/api/v1")

	// Catalog routes are public; optional auth lets the access evaluator see
	// enrollments for signed-in viewers.
	catalog := v1.Group("")
	catalog.Use(hm.authMiddleware.OptionalAuthMiddleware())
	{
		catalog.GET("/courses", hm.courseHandler.ListCourses)
		catalog.GET("/courses/recommended", hm.courseHandler.GetRecommendedCourses)
		catalog.GET("/courses/:id", hm.courseHandler.GetCourse)
		catalog.GET("/courses/:id/purchase-options", hm.courseHandler.GetPurchaseOptions)
		catalog.GET("/lessons/:id/video", hm.courseHandler.GetLessonVideo)
	}

	// Learner routes require authentication
	learner := v1.Group("")
	learner.Use(hm.authMiddleware.AuthMiddleware())
	{
		learner.GET("/me", hm.userHandler.GetMe)
		learner.GET("/me/courses", hm.enrollmentHandler.GetMyCourses)

		learner.POST("/progress/complete", hm.progressHandler.CompleteLesson)
		learner.GET("/courses/:id/progress", hm.progressHandler.GetCourseProgress)
		learner.GET("/lessons/:id/completed", hm.progressHandler.IsLessonCompleted)

		learner.GET("/courses/:id/materials", hm.materialHandler.ListCourseMaterials)
		learner.GET("/materials/:id/download", hm.materialHandler.DownloadMaterial)
	}

	// Admin routes
	admin := v1.Group("/admin")
	admin.Use(hm.authMiddleware.AuthMiddleware())
	admin.Use(hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin))
	{
		admin.POST("/courses", hm.courseHandler.CreateCourse)
		admin.PUT("/courses/:id", hm.courseHandler.UpdateCourse)
		admin.DELETE("/courses/:id", hm.courseHandler.DeleteCourse)

		admin.POST("/courses/:id/lessons", hm.courseHandler.AddLesson)
		admin.PUT("/lessons/:id", hm.courseHandler.UpdateLesson)
		admin.DELETE("/lessons/:id", hm.courseHandler.DeleteLesson)

		admin.POST("/enrollments", hm.enrollmentHandler.CreateEnrollment)
		admin.GET("/courses/:id/enrollments", hm.enrollmentHandler.ListCourseEnrollments)
		admin.GET("/courses/:id/enrollments/export", hm.enrollmentHandler.ExportCourseEnrollments)

		admin.POST("/materials", hm.materialHandler.CreateMaterial)
		admin.DELETE("/materials/:id", hm.materialHandler.DeleteMaterial)

		admin.GET("/users", hm.userHandler.ListUsers)
		admin.GET("/users/search", hm.userHandler.SearchUsers)
		admin.GET("/users/:id", hm.userHandler.GetUser)
	}
}

func (hm *HandlerManager) healthCheck(c *gin.Context) {
	if err := hm.serviceManager.HealthCheck(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "course-platform",
	})
}
