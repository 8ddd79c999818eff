package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/masterproject/course-platform/internal/repositories"
	"github.com/masterproject/course-platform/internal/services"
	"github.com/masterproject/course-platform/internal/utils"
	"github.com/masterproject/course-platform/internal/validator"
)

type EnrollmentHandler struct {
	BaseHandler
	enrollmentService services.EnrollmentService
	reportService     services.ReportService
	validator         *validator.Validator
}

func NewEnrollmentHandler(
	enrollmentService services.EnrollmentService,
	reportService services.ReportService,
	validator *validator.Validator,
	logger utils.Logger,
) *EnrollmentHandler {
	return &EnrollmentHandler{
		BaseHandler:       NewBaseHandler(logger),
		enrollmentService: enrollmentService,
		reportService:     reportService,
		validator:         validator,
	}
}

// GetMyCourses returns the authenticated user's enrollments with progress
// @Summary My courses
// @Tags enrollments
// @Produce json
// @Success 200 {array} services.EnrolledCourseResponse
// @Router /me/courses [get]
func (h *EnrollmentHandler) GetMyCourses(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	courses, err := h.enrollmentService.GetUserCourses(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, courses)
}

// CreateEnrollment grants a user course access (admin grant path)
// @Summary Enroll user
// @Tags admin
// @Accept json
// @Produce json
// @Param enrollment body validator.EnrollmentCreateRequest true "Enrollment"
// @Success 201 {object} models.Enrollment
// @Failure 409 {object} ErrorResponse
// @Router /admin/enrollments [post]
func (h *EnrollmentHandler) CreateEnrollment(c *gin.Context) {
	var req validator.EnrollmentCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "bad_request",
			Message: "invalid request payload",
			Details: err.Error(),
		})
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "Creating enrollment", "target_user_id", req.UserID, "course_id", req.CourseID)

	enrollment, err := h.enrollmentService.Enroll(c.Request.Context(), req.UserID, req.CourseID, "admin")
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, enrollment)
}

// ListCourseEnrollments lists a course's learners
// @Summary Course enrollments
// @Tags admin
// @Produce json
// @Param id path uint true "Course ID"
// @Success 200 {object} services.EnrollmentListResponse
// @Router /admin/courses/{id}/enrollments [get]
func (h *EnrollmentHandler) ListCourseEnrollments(c *gin.Context) {
	courseID := h.parseIDParam(c, "id")
	if courseID == 0 {
		return
	}

	filters := repositories.EnrollmentFilters{Limit: 50}
	if limit, err := strconv.Atoi(c.Query("limit")); err == nil && limit > 0 {
		filters.Limit = limit
	}
	if offset, err := strconv.Atoi(c.Query("offset")); err == nil && offset > 0 {
		filters.Offset = offset
	}

	result, err := h.enrollmentService.ListByCourse(c.Request.Context(), courseID, filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ExportCourseEnrollments streams an .xlsx report of a course's learners
// @Summary Export enrollments
// @Tags admin
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path uint true "Course ID"
// @Success 200 {file} binary
// @Router /admin/courses/{id}/enrollments/export [get]
func (h *EnrollmentHandler) ExportCourseEnrollments(c *gin.Context) {
	courseID := h.parseIDParam(c, "id")
	if courseID == 0 {
		return
	}

	h.LogRequest(c, "Exporting enrollment report", "course_id", courseID)

	report, err := h.reportService.CourseEnrollmentsReport(c.Request.Context(), courseID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("course-%d-enrollments.xlsx", courseID)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		report)
}
