package models

import (
	"time"

	"github.com/google/uuid"
)

// CourseProgress is keyed uniquely by (EnrollmentID, LessonID) with
// upsert semantics.
type CourseProgress struct {
	ID           uuid.UUID  `json:"id"`
	EnrollmentID uuid.UUID  `json:"enrollment_id"`
	LessonID     uuid.UUID  `json:"lesson_id"`
	StudentID    uuid.UUID  `json:"student_id"`
	Progress     float64    `json:"progress"` // 0-100 for this lesson
	TimeSpent    int        `json:"time_spent"` // minutes
	WatchTime    int        `json:"watch_time"` // minutes, video lessons
	LastPosition int        `json:"last_position"` // seconds, video lessons
	Completed    bool       `json:"completed"`
	StartedAt    time.Time  `json:"started_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// ProgressPatch carries the fields a client may merge over an existing
// progress record. Nil fields are left untouched.
type ProgressPatch struct {
	Progress     *float64 `json:"progress,omitempty"`
	TimeSpent    *int     `json:"time_spent,omitempty"`
	WatchTime    *int     `json:"watch_time,omitempty"`
	LastPosition *int     `json:"last_position,omitempty"`
	Completed    *bool    `json:"completed,omitempty"`
}
