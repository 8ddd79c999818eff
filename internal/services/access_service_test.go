package services

import (
	"testing"

	"github.com/masterproject/course-platform/internal/models"
)

func TestAccessService_Evaluate(t *testing.T) {
	paidCourse := &models.Course{ID: 1, Title: "Advanced Trading", Price: 499}
	leadMagnet := &models.Course{ID: 2, Title: "Getting Started", Price: 0, IsLeadMagnet: true}

	tests := []struct {
		name        string
		lesson      *models.Lesson
		course      *models.Course
		enrolled    bool
		wantAllowed bool
		wantReason  AccessReason
	}{
		{
			name:        "enrolled user sees any lesson",
			lesson:      &models.Lesson{ID: 10, LessonOrder: 42},
			course:      paidCourse,
			enrolled:    true,
			wantAllowed: true,
			wantReason:  AccessGrantedEnrolled,
		},
		{
			name:        "enrolled wins even on lead magnet",
			lesson:      &models.Lesson{ID: 10, LessonOrder: 1},
			course:      leadMagnet,
			enrolled:    true,
			wantAllowed: true,
			wantReason:  AccessGrantedEnrolled,
		},
		{
			name:        "lead magnet lesson one is locked for anonymous",
			lesson:      &models.Lesson{ID: 10, LessonOrder: 1},
			course:      leadMagnet,
			wantAllowed: false,
			wantReason:  AccessDeniedRegistrationRequired,
		},
		{
			name:        "lead magnet ignores preview flag",
			lesson:      &models.Lesson{ID: 10, LessonOrder: 5, IsPreview: true},
			course:      leadMagnet,
			wantAllowed: false,
			wantReason:  AccessDeniedRegistrationRequired,
		},
		{
			name:        "preview lesson is open on paid course",
			lesson:      &models.Lesson{ID: 10, LessonOrder: 12, IsPreview: true},
			course:      paidCourse,
			wantAllowed: true,
			wantReason:  AccessGrantedPreview,
		},
		{
			name:        "first lesson is open without preview flag",
			lesson:      &models.Lesson{ID: 10, LessonOrder: 1},
			course:      paidCourse,
			wantAllowed: true,
			wantReason:  AccessGrantedPreview,
		},
		{
			name:        "third lesson is the last free one",
			lesson:      &models.Lesson{ID: 10, LessonOrder: 3},
			course:      paidCourse,
			wantAllowed: true,
			wantReason:  AccessGrantedPreview,
		},
		{
			name:        "fourth lesson needs purchase",
			lesson:      &models.Lesson{ID: 10, LessonOrder: 4},
			course:      paidCourse,
			wantAllowed: false,
			wantReason:  AccessDeniedPurchaseRequired,
		},
		{
			name:        "nil course denies",
			lesson:      &models.Lesson{ID: 10, LessonOrder: 1},
			course:      nil,
			wantAllowed: false,
			wantReason:  AccessDeniedPurchaseRequired,
		},
		{
			name:        "nil lesson denies",
			lesson:      nil,
			course:      paidCourse,
			wantAllowed: false,
			wantReason:  AccessDeniedPurchaseRequired,
		},
	}

	svc := NewAccessService()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := svc.Evaluate(tt.lesson, tt.course, tt.enrolled)
			if decision.Allowed != tt.wantAllowed {
				t.Errorf("Evaluate() allowed = %v, want %v", decision.Allowed, tt.wantAllowed)
			}
			if decision.Reason != tt.wantReason {
				t.Errorf("Evaluate() reason = %q, want %q", decision.Reason, tt.wantReason)
			}
		})
	}
}

func TestAccessService_Evaluate_FreeWindowBoundary(t *testing.T) {
	svc := NewAccessService()
	course := &models.Course{ID: 1, Price: 100}

	for order := 1; order <= FreePreviewLessonCount+2; order++ {
		decision := svc.Evaluate(&models.Lesson{LessonOrder: order}, course, false)
		wantAllowed := order <= FreePreviewLessonCount
		if decision.Allowed != wantAllowed {
			t.Errorf("lesson order %d: allowed = %v, want %v", order, decision.Allowed, wantAllowed)
		}
	}
}
