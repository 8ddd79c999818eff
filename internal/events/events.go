package events

import (
	"time"

	"github.com/google/uuid"
)

const Source = "course-platform"

// Event types published by this service.
const (
	EventLessonCompleted   = "lesson.completed"
	EventEnrollmentCreated = "enrollment.created"
)

// Event is the envelope for all domain events.
type Event struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Source    string      `json:"source"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// NewEvent builds an event envelope with a fresh ID and timestamp.
func NewEvent(eventType string, data interface{}) Event {
	return Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Source:    Source,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

// LessonCompletedEvent is emitted after a completion is durably recorded and
// the enrollment percentage recomputed.
type LessonCompletedEvent struct {
	UserID     string `json:"user_id"`
	LessonID   uint   `json:"lesson_id"`
	CourseID   uint   `json:"course_id"`
	Percentage int    `json:"percentage"`
}

// EnrollmentCreatedEvent is emitted when a user gains access to a course,
// whether by purchase, admin grant or the automatic lead-magnet enrollment.
type EnrollmentCreatedEvent struct {
	UserID   string `json:"user_id"`
	CourseID uint   `json:"course_id"`
	// "admin", "registration" or "purchase"
	Origin string `json:"origin"`
}
