package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/masterproject/course-platform/internal/services"
	"github.com/masterproject/course-platform/internal/utils"
	"github.com/masterproject/course-platform/internal/validator"
)

// ErrorResponse is the uniform error payload.
type ErrorResponse struct {
	Error   string      `json:"error"`
	Message string      `json:"message,omitempty"`
	Details interface{} `json:"details,omitempty"`
	// Reason is set on access denials so the client can pick the right
	// call-to-action ("registration_required" or "purchase_required").
	Reason string `json:"reason,omitempty"`
}

// SuccessResponse wraps payloads that need metadata alongside the data.
type SuccessResponse struct {
	Data interface{} `json:"data"`
	Meta interface{} `json:"meta,omitempty"`
}

// BaseHandler carries the logger and error mapping shared by all handlers.
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

// LogRequest logs a handler entry with the request-scoped logger.
func (h *BaseHandler) LogRequest(c *gin.Context, msg string, args ...any) {
	utils.FromContext(c.Request.Context()).Info(msg, args...)
}

// LogError logs a handler failure with the request-scoped logger.
func (h *BaseHandler) LogError(c *gin.Context, err error, msg string, args ...any) {
	utils.FromContext(c.Request.Context()).Error(msg, append([]any{"error", err}, args...)...)
}

// parseIDParam parses a positive uint path parameter, writing a 400 response
// and returning 0 on failure.
func (h *BaseHandler) parseIDParam(c *gin.Context, name string) uint {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "bad_request",
			Message: "invalid " + name + " parameter",
		})
		return 0
	}
	return uint(id)
}

// currentUserID returns the authenticated user ID, or "" for anonymous
// requests that passed through the optional auth middleware.
func (h *BaseHandler) currentUserID(c *gin.Context) string {
	if userID, exists := c.Get("user_id"); exists {
		if id, ok := userID.(string); ok {
			return id
		}
	}
	return ""
}

// requireUserID returns the authenticated user ID or writes a 401.
func (h *BaseHandler) requireUserID(c *gin.Context) (string, bool) {
	userID := h.currentUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "user not authenticated",
		})
		return "", false
	}
	return userID, true
}

// handleServiceError maps service errors onto HTTP statuses.
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_failed",
			Message: "request validation failed",
			Details: validationErrs,
		})
		return
	}

	var accessDenied *services.AccessDeniedError
	if errors.As(err, &accessDenied) {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Error:   "access_denied",
			Message: accessDenied.Error(),
			Reason:  string(accessDenied.Reason),
		})
		return
	}

	var permissionErr *services.PermissionError
	if errors.As(err, &permissionErr) {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Error:   "forbidden",
			Message: permissionErr.Error(),
		})
		return
	}

	switch {
	case services.IsNotFound(err):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: err.Error(),
		})
	case errors.Is(err, services.ErrEnrollmentExists):
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "conflict",
			Message: err.Error(),
		})
	case errors.Is(err, services.ErrCourseInactive):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "unprocessable",
			Message: err.Error(),
		})
	default:
		utils.FromContext(c.Request.Context()).Error("Unhandled service error", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "an unexpected error occurred",
		})
	}
}
