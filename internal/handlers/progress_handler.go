package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/masterproject/course-platform/internal/services"
	"github.com/masterproject/course-platform/internal/utils"
	"github.com/masterproject/course-platform/internal/validator"
)

type ProgressHandler struct {
	BaseHandler
	progressService services.ProgressService
	validator       *validator.Validator
}

func NewProgressHandler(
	progressService services.ProgressService,
	validator *validator.Validator,
	logger utils.Logger,
) *ProgressHandler {
	return &ProgressHandler{
		BaseHandler:     NewBaseHandler(logger),
		progressService: progressService,
		validator:       validator,
	}
}

// CompleteLesson records a playback-ended event
// @Summary Complete lesson
// @Tags progress
// @Accept json
// @Produce json
// @Param completion body validator.CompleteLessonRequest true "Completed lesson"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /progress/complete [post]
func (h *ProgressHandler) CompleteLesson(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	var req validator.CompleteLessonRequest
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

	h.LogRequest(c, "Recording lesson completion", "lesson_id", req.LessonID)

	if err := h.progressService.RecordCompletion(c.Request.Context(), userID, req.LessonID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Data: gin.H{"completed": true}})
}

// IsLessonCompleted reports whether the viewer finished one lesson
// @Summary Lesson completed
// @Tags progress
// @Produce json
// @Param id path uint true "Lesson ID"
// @Success 200 {object} SuccessResponse
// @Router /lessons/{id}/completed [get]
func (h *ProgressHandler) IsLessonCompleted(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	lessonID := h.parseIDParam(c, "id")
	if lessonID == 0 {
		return
	}

	completed, err := h.progressService.IsLessonCompleted(c.Request.Context(), userID, lessonID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Data: gin.H{"completed": completed}})
}

// GetCourseProgress returns the viewer's aggregate for one course
// @Summary Course progress
// @Tags progress
// @Produce json
// @Param id path uint true "Course ID"
// @Success 200 {object} services.CourseProgress
// @Router /courses/{id}/progress [get]
func (h *ProgressHandler) GetCourseProgress(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	courseID := h.parseIDParam(c, "id")
	if courseID == 0 {
		return
	}

	progress, err := h.progressService.GetProgress(c.Request.Context(), userID, courseID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, progress)
}
