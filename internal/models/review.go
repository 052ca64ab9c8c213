package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	ReviewSortNewest  = "newest"
	ReviewSortHelpful = "helpful"
)

// CourseReview is unique per (CourseID, StudentID) and only allowed for
// completed enrollments.
type CourseReview struct {
	ID           uuid.UUID `json:"id"`
	CourseID     uuid.UUID `json:"course_id"`
	StudentID    uuid.UUID `json:"student_id"`
	Rating       int       `json:"rating"` // 1-5
	Title        string    `json:"title,omitempty"`
	Comment      string    `json:"comment"`
	Pros         []string  `json:"pros,omitempty"`
	Cons         []string  `json:"cons,omitempty"`
	HelpfulCount int       `json:"helpful_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
