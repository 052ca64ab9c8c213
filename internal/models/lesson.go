package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	LessonTypeVideo      = "video"
	LessonTypeText       = "text"
	LessonTypeQuiz       = "quiz"
	LessonTypeAssignment = "assignment"
	LessonTypeResource   = "resource"
)

type CourseLesson struct {
	ID          uuid.UUID `json:"id"`
	CourseID    uuid.UUID `json:"course_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	LessonOrder int       `json:"lesson_order"`
	Duration    int       `json:"duration"` // minutes
	Type        string    `json:"type"`
	ContentURL  string    `json:"content_url,omitempty"`
	IsPreview   bool      `json:"is_preview"`
	IsRequired  bool      `json:"is_required"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
