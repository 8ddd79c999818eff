package services

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by services. Handlers map them onto HTTP statuses.
var (
	ErrCourseNotFound   = errors.New("course not found")
	ErrLessonNotFound   = errors.New("lesson not found")
	ErrMaterialNotFound = errors.New("material not found")
	ErrUserNotFound     = errors.New("user not found")

	ErrEnrollmentExists   = errors.New("user is already enrolled in this course")
	ErrEnrollmentNotFound = errors.New("enrollment not found")

	ErrCourseInactive = errors.New("course is not active")
)

// AccessDeniedError is returned when the access evaluator blocks a lesson.
// Reason tells the handler which conversion action to offer.
type AccessDeniedError struct {
	Reason AccessReason
}

func (e *AccessDeniedError) Error() string {
	return fmt.Sprintf("lesson access denied: %s", e.Reason)
}

// PermissionError is returned when a user attempts an operation on a resource
// they are not allowed to touch.
type PermissionError struct {
	UserID   string
	Resource string
	Action   string
	Reason   string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("user %s cannot %s %s: %s", e.UserID, e.Action, e.Resource, e.Reason)
}

func NewPermissionError(userID, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:   userID,
		Resource: resource,
		Action:   action,
		Reason:   reason,
	}
}

// IsNotFound reports whether err is one of the service-level not-found errors.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrCourseNotFound) ||
		errors.Is(err, ErrLessonNotFound) ||
		errors.Is(err, ErrMaterialNotFound) ||
		errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrEnrollmentNotFound)
}
