package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/masterproject/course-platform/internal/models"
	"github.com/masterproject/course-platform/internal/repositories"
	"github.com/masterproject/course-platform/internal/services"
	"github.com/masterproject/course-platform/internal/utils"
	"github.com/masterproject/course-platform/internal/validator"
)

type CourseHandler struct {
	BaseHandler
	courseService services.CourseService
	validator     *validator.Validator
}

func NewCourseHandler(
	courseService services.CourseService,
	validator *validator.Validator,
	logger utils.Logger,
) *CourseHandler {
	return &CourseHandler{
		BaseHandler:   NewBaseHandler(logger),
		courseService: courseService,
		validator:     validator,
	}
}

// ListCourses returns the public catalog with filters and pagination
// @Summary List courses
// @Tags courses
// @Produce json
// @Success 200 {object} services.CourseListResponse
// @Router /courses [get]
func (h *CourseHandler) ListCourses(c *gin.Context) {
	filters := parseCourseFilters(c)

	// The public catalog only shows active courses; admins can ask for all.
	if _, isAdmin := adminFromContext(c); !isAdmin {
		active := true
		filters.IsActive = &active
	}

	result, err := h.courseService.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetCourse returns the course detail page with per-lesson access decisions
// @Summary Get course detail
// @Tags courses
// @Produce json
// @Param id path uint true "Course ID"
// @Success 200 {object} services.CourseDetailResponse
// @Failure 404 {object} ErrorResponse
// @Router /courses/{id} [get]
func (h *CourseHandler) GetCourse(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	detail, err := h.courseService.GetDetail(c.Request.Context(), id, h.currentUserID(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

// GetRecommendedCourses returns active courses the viewer is not enrolled in
// @Summary Recommended courses
// @Tags courses
// @Produce json
// @Success 200 {array} models.Course
// @Router /courses/recommended [get]
func (h *CourseHandler) GetRecommendedCourses(c *gin.Context) {
	courses, err := h.courseService.GetRecommended(c.Request.Context(), h.currentUserID(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, courses)
}

// GetPurchaseOptions returns checkout links for the paywall screen
// @Summary Purchase options
// @Tags courses
// @Produce json
// @Param id path uint true "Course ID"
// @Success 200 {object} services.PurchaseOptions
// @Failure 404 {object} ErrorResponse
// @Router /courses/{id}/purchase-options [get]
func (h *CourseHandler) GetPurchaseOptions(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	options, err := h.courseService.GetPurchaseOptions(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, options)
}

// GetLessonVideo releases the video identifier when the access evaluator allows it
// @Summary Get lesson video
// @Tags lessons
// @Produce json
// @Param id path uint true "Lesson ID"
// @Success 200 {object} services.LessonVideoResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /lessons/{id}/video [get]
func (h *CourseHandler) GetLessonVideo(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	video, err := h.courseService.GetLessonVideo(c.Request.Context(), id, h.currentUserID(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, video)
}

// CreateCourse creates a course
// @Summary Create course
// @Tags admin
// @Accept json
// @Produce json
// @Success 201 {object} models.Course
// @Failure 400 {object} ErrorResponse
// @Router /admin/courses [post]
func (h *CourseHandler) CreateCourse(c *gin.Context) {
	var req services.CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "bad_request",
			Message: "invalid request payload",
			Details: err.Error(),
		})
		return
	}

	course, err := h.courseService.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, course)
}

// UpdateCourse updates a course
// @Summary Update course
// @Tags admin
// @Accept json
// @Produce json
// @Param id path uint true "Course ID"
// @Success 200 {object} models.Course
// @Failure 404 {object} ErrorResponse
// @Router /admin/courses/{id} [put]
func (h *CourseHandler) UpdateCourse(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.UpdateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "bad_request",
			Message: "invalid request payload",
			Details: err.Error(),
		})
		return
	}

	course, err := h.courseService.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, course)
}

// DeleteCourse removes a course
// @Summary Delete course
// @Tags admin
// @Param id path uint true "Course ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /admin/courses/{id} [delete]
func (h *CourseHandler) DeleteCourse(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Deleting course", "course_id", id)

	if err := h.courseService.Delete(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// AddLesson appends a lesson to a course
// @Summary Add lesson
// @Tags admin
// @Accept json
// @Produce json
// @Param id path uint true "Course ID"
// @Success 201 {object} models.Lesson
// @Failure 404 {object} ErrorResponse
// @Router /admin/courses/{id}/lessons [post]
func (h *CourseHandler) AddLesson(c *gin.Context) {
	courseID := h.parseIDParam(c, "id")
	if courseID == 0 {
		return
	}

	var req services.CreateLessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "bad_request",
			Message: "invalid request payload",
			Details: err.Error(),
		})
		return
	}

	lesson, err := h.courseService.AddLesson(c.Request.Context(), courseID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, lesson)
}

// UpdateLesson updates a lesson
// @Summary Update lesson
// @Tags admin
// @Accept json
// @Produce json
// @Param id path uint true "Lesson ID"
// @Success 200 {object} models.Lesson
// @Failure 404 {object} ErrorResponse
// @Router /admin/lessons/{id} [put]
func (h *CourseHandler) UpdateLesson(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.UpdateLessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "bad_request",
			Message: "invalid request payload",
			Details: err.Error(),
		})
		return
	}

	lesson, err := h.courseService.UpdateLesson(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, lesson)
}

// DeleteLesson removes a lesson
// @Summary Delete lesson
// @Tags admin
// @Param id path uint true "Lesson ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /admin/lessons/{id} [delete]
func (h *CourseHandler) DeleteLesson(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.courseService.RemoveLesson(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func parseCourseFilters(c *gin.Context) repositories.CourseFilters {
	filters := repositories.CourseFilters{
		Query:     c.Query("q"),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
		Limit:     20,
	}

	if limit, err := strconv.Atoi(c.Query("limit")); err == nil && limit > 0 {
		filters.Limit = limit
	}
	if offset, err := strconv.Atoi(c.Query("offset")); err == nil && offset > 0 {
		filters.Offset = offset
	}
	if category := c.Query("category"); category != "" {
		filters.Category = &category
	}
	if level := c.Query("level"); level != "" {
		courseLevel := models.CourseLevel(level)
		filters.Level = &courseLevel
	}
	if isActive := c.Query("is_active"); isActive != "" {
		active := isActive == "true"
		filters.IsActive = &active
	}

	return filters
}

// adminFromContext reports the authenticated user ID and whether they are an
// admin.
func adminFromContext(c *gin.Context) (string, bool) {
	userID, exists := c.Get("user_id")
	if !exists {
		return "", false
	}
	id, _ := userID.(string)

	role, exists := c.Get("user_role")
	if !exists {
		return id, false
	}
	return id, role == models.RoleAdmin
}
