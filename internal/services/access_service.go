package services

import (
	"github.com/masterproject/course-platform/internal/models"
)

// FreePreviewLessonCount is how many leading lessons of a paid course are
// open to everyone, counted by lesson_order.
const FreePreviewLessonCount = 3

type accessService struct{}

// NewAccessService builds the lesson access evaluator.
func NewAccessService() AccessService {
	return &accessService{}
}

// Evaluate applies the gating rules in precedence order:
//
//  1. enrolled viewers see everything
//  2. the lead-magnet course has no previews; non-enrolled viewers are
//     asked to register, which enrolls them
//  3. preview lessons and the first FreePreviewLessonCount lessons are open
//  4. everything else requires purchase
//
// Missing lesson or course data degrades to the deny outcome.
func (s *accessService) Evaluate(lesson *models.Lesson, course *models.Course, enrolled bool) AccessDecision {
	if enrolled {
		return AccessDecision{Allowed: true, Reason: AccessGrantedEnrolled}
	}

	if course == nil || lesson == nil {
		return AccessDecision{Allowed: false, Reason: AccessDeniedPurchaseRequired}
	}

	if course.IsLeadMagnet {
		return AccessDecision{Allowed: false, Reason: AccessDeniedRegistrationRequired}
	}

	if lesson.IsPreview || lesson.LessonOrder <= FreePreviewLessonCount {
		return AccessDecision{Allowed: true, Reason: AccessGrantedPreview}
	}

	return AccessDecision{Allowed: false, Reason: AccessDeniedPurchaseRequired}
}
